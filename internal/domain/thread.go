package domain

// CommentEntry is a top-level comment inside a thread together with the
// transient reply box state. The UI fields are never serialized.
type CommentEntry struct {
	Comment
	ReplyBoxOpen bool   `json:"-"`
	Draft        string `json:"-"`
}

// EntryState is the UI state of one entry, keyed by comment id in UIState
type EntryState struct {
	ReplyBoxOpen bool
	Draft        string
}

// Thread is the comment tree of a post. Thread values are treated as
// immutable: every mutation returns a new Thread.
type Thread struct {
	PostID   int64
	Total    int
	Comments []CommentEntry
}

// BuildThread turns the flat list returned by the platform into a two-level
// tree. Entries with no parent become top-level in server order; entries with
// a parent are appended to that parent's replies, merged with any replies the
// server already nested and de-duplicated by id. Replies whose parent is not
// in the list are returned as orphans and left out of the tree.
func BuildThread(postID int64, total int, flat []Comment) (Thread, []Comment) {
	t := Thread{PostID: postID, Total: total}
	index := make(map[int64]int)

	for _, c := range flat {
		if c.Kind() != TopLevel {
			continue
		}
		if _, dup := index[c.ID]; dup {
			continue
		}
		entry := CommentEntry{Comment: c.clone()}
		entry.ParentID = nil
		entry.Replies = dedupeReplies(entry.ID, entry.Replies, nil)
		index[c.ID] = len(t.Comments)
		t.Comments = append(t.Comments, entry)
	}

	var orphans []Comment
	for _, c := range flat {
		if c.Kind() != Reply {
			continue
		}
		i, ok := index[*c.ParentID]
		if !ok {
			orphans = append(orphans, c)
			continue
		}
		parent := &t.Comments[i]
		parent.Replies = dedupeReplies(parent.ID, parent.Replies, []Comment{c})
	}
	return t, orphans
}

func dedupeReplies(parentID int64, existing, extra []Comment) []Comment {
	if len(existing) == 0 && len(extra) == 0 {
		return existing
	}
	seen := make(map[int64]bool, len(existing)+len(extra))
	out := make([]Comment, 0, len(existing)+len(extra))
	for _, group := range [][]Comment{existing, extra} {
		for _, r := range group {
			if seen[r.ID] {
				continue
			}
			seen[r.ID] = true
			r = r.clone()
			pid := parentID
			r.ParentID = &pid
			r.Replies = nil
			out = append(out, r)
		}
	}
	return out
}

// Clone returns a deep copy of t
func (t Thread) Clone() Thread {
	out := Thread{PostID: t.PostID, Total: t.Total}
	if t.Comments != nil {
		out.Comments = make([]CommentEntry, len(t.Comments))
		for i, e := range t.Comments {
			out.Comments[i] = CommentEntry{Comment: e.Comment.clone(), ReplyBoxOpen: e.ReplyBoxOpen, Draft: e.Draft}
		}
	}
	return out
}

// Flat returns every comment in display order: each parent followed by its replies
func (t Thread) Flat() []Comment {
	var out []Comment
	for _, e := range t.Comments {
		parent := e.Comment.clone()
		replies := parent.Replies
		parent.Replies = nil
		out = append(out, parent)
		out = append(out, replies...)
	}
	return out
}

// Count returns the number of parents plus replies held in the tree
func (t Thread) Count() int {
	n := len(t.Comments)
	for _, e := range t.Comments {
		n += len(e.Replies)
	}
	return n
}

// Find returns the top-level entry with the given id
func (t Thread) Find(id int64) (CommentEntry, bool) {
	for _, e := range t.Comments {
		if e.ID == id {
			return e, true
		}
	}
	return CommentEntry{}, false
}

func (t Thread) indexOf(id int64) int {
	for i, e := range t.Comments {
		if e.ID == id {
			return i
		}
	}
	return -1
}

// Prepend returns a thread with c inserted first and Total increased by one
func (t Thread) Prepend(c Comment) (Thread, error) {
	if c.Kind() == Reply {
		return Thread{}, ErrNestedReply
	}
	out := t.Clone()
	entry := CommentEntry{Comment: c.clone()}
	out.Comments = append([]CommentEntry{entry}, out.Comments...)
	out.Total++
	return out, nil
}

// AppendReply returns a thread with r appended to the replies of parentID,
// the parent's reply box closed and its draft cleared, and Total increased by one.
func (t Thread) AppendReply(parentID int64, r Comment) (Thread, error) {
	i := t.indexOf(parentID)
	if i < 0 {
		return Thread{}, ErrCommentNotFound
	}
	out := t.Clone()
	parent, err := out.Comments[i].Comment.AppendReply(r)
	if err != nil {
		return Thread{}, err
	}
	out.Comments[i] = CommentEntry{Comment: parent}
	out.Total++
	return out, nil
}

// ToggleReplyBox flips the reply box of a top-level entry and clears its draft
func (t Thread) ToggleReplyBox(id int64) (Thread, error) {
	i := t.indexOf(id)
	if i < 0 {
		return Thread{}, ErrCommentNotFound
	}
	out := t.Clone()
	out.Comments[i].ReplyBoxOpen = !out.Comments[i].ReplyBoxOpen
	out.Comments[i].Draft = ""
	return out, nil
}

// SetDraft stores the reply draft of a top-level entry
func (t Thread) SetDraft(id int64, text string) (Thread, error) {
	i := t.indexOf(id)
	if i < 0 {
		return Thread{}, ErrCommentNotFound
	}
	out := t.Clone()
	out.Comments[i].Draft = text
	return out, nil
}

// ApplyLike overwrites the like count and flag of a comment. For replies the
// reply is looked up under parentID.
func (t Thread) ApplyLike(id int64, isReply bool, parentID int64, likes int, liked bool) (Thread, error) {
	out := t.Clone()
	if !isReply {
		i := out.indexOf(id)
		if i < 0 {
			return Thread{}, ErrCommentNotFound
		}
		out.Comments[i].Likes = likes
		out.Comments[i].LikedByUser = liked
		return out, nil
	}

	i := out.indexOf(parentID)
	if i < 0 {
		return Thread{}, ErrCommentNotFound
	}
	for j := range out.Comments[i].Replies {
		r := &out.Comments[i].Replies[j]
		if r.ID == id {
			r.Likes = likes
			r.LikedByUser = liked
			return out, nil
		}
	}
	return Thread{}, ErrCommentNotFound
}

// UIState returns the reply box state of every entry that has one
func (t Thread) UIState() map[int64]EntryState {
	state := make(map[int64]EntryState)
	for _, e := range t.Comments {
		if e.ReplyBoxOpen || e.Draft != "" {
			state[e.ID] = EntryState{ReplyBoxOpen: e.ReplyBoxOpen, Draft: e.Draft}
		}
	}
	return state
}

// WithUIState returns a copy of t with state re-applied by comment id.
// Ids no longer present are ignored.
func (t Thread) WithUIState(state map[int64]EntryState) Thread {
	out := t.Clone()
	for i := range out.Comments {
		if s, ok := state[out.Comments[i].ID]; ok {
			out.Comments[i].ReplyBoxOpen = s.ReplyBoxOpen
			out.Comments[i].Draft = s.Draft
		}
	}
	return out
}
