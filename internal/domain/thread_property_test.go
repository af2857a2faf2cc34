package domain

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

// genThread builds a thread with parents top-level comments, each carrying
// replies replies. Ids are unique across the tree.
func genThread(parents, replies int) Thread {
	var flat []Comment
	next := int64(1)
	for p := 0; p < parents; p++ {
		pid := next
		flat = append(flat, NewTopLevelComment(pid, "p", "parent"))
		next++
		for r := 0; r < replies; r++ {
			flat = append(flat, NewReply(next, pid, "r", "reply"))
			next++
		}
	}
	t, _ := BuildThread(1, len(flat), flat)
	return t
}

func occurrences(t Thread, id int64) int {
	n := 0
	for _, c := range t.Flat() {
		if c.ID == id {
			n++
		}
	}
	return n
}

func TestProperty_BuildThreadKeepsEveryComment(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	properties.Property("Count equals the number of flat comments when none are orphaned", prop.ForAll(
		func(parents, replies int) bool {
			thread := genThread(parents, replies)
			return thread.Count() == parents*(1+replies) && len(thread.Flat()) == thread.Count()
		},
		gen.IntRange(0, 20),
		gen.IntRange(0, 6),
	))

	properties.TestingRun(t)
}

func TestProperty_PrependAddsExactlyOne(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	properties.Property("Prepend puts the new comment first and adds one to Total", prop.ForAll(
		func(parents, replies int) bool {
			before := genThread(parents, replies)
			after, err := before.Prepend(NewTopLevelComment(10_000, "n", "new"))
			if err != nil {
				return false
			}
			return after.Total == before.Total+1 &&
				after.Count() == before.Count()+1 &&
				after.Comments[0].ID == 10_000
		},
		gen.IntRange(0, 20),
		gen.IntRange(0, 6),
	))

	properties.TestingRun(t)
}

func TestProperty_ReplyBelongsToExactlyOneParent(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	properties.Property("a submitted reply appears once, under its parent, and adds one to Total", prop.ForAll(
		func(parents, replies, pick int) bool {
			before := genThread(parents, replies)
			parentID := before.Comments[pick%parents].ID

			after, err := before.AppendReply(parentID, Comment{ID: 10_000, Content: "r"})
			if err != nil {
				return false
			}
			parent, _ := after.Find(parentID)
			last := parent.Replies[len(parent.Replies)-1]
			return after.Total == before.Total+1 &&
				occurrences(after, 10_000) == 1 &&
				last.ID == 10_000 && *last.ParentID == parentID
		},
		gen.IntRange(1, 20),
		gen.IntRange(0, 6),
		gen.IntRange(0, 1000),
	))

	properties.TestingRun(t)
}

func TestProperty_ApplyLikeIsIdempotent(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	properties.Property("applying the same like response twice equals applying it once", prop.ForAll(
		func(parents, pick, likes int, liked bool) bool {
			thread := genThread(parents, 2)
			target := thread.Comments[pick%parents]

			once, err := thread.ApplyLike(target.ID, false, 0, likes, liked)
			if err != nil {
				return false
			}
			twice, err := once.ApplyLike(target.ID, false, 0, likes, liked)
			if err != nil {
				return false
			}
			got, _ := twice.Find(target.ID)
			return got.Likes == likes && got.LikedByUser == liked && twice.Total == thread.Total
		},
		gen.IntRange(1, 20),
		gen.IntRange(0, 1000),
		gen.IntRange(0, 500),
		gen.Bool(),
	))

	properties.TestingRun(t)
}

func TestProperty_ToggleTwiceRestoresClosedBox(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	properties.Property("opening, typing and closing leaves the entry idle", prop.ForAll(
		func(parents, pick int, draft string) bool {
			thread := genThread(parents, 1)
			id := thread.Comments[pick%parents].ID

			opened, _ := thread.ToggleReplyBox(id)
			typed, _ := opened.SetDraft(id, draft)
			closed, _ := typed.ToggleReplyBox(id)

			entry, _ := closed.Find(id)
			return !entry.ReplyBoxOpen && entry.Draft == "" && closed.Total == thread.Total
		},
		gen.IntRange(1, 20),
		gen.IntRange(0, 1000),
		gen.AnyString(),
	))

	properties.TestingRun(t)
}
