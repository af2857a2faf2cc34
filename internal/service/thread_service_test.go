package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"hoainiem-portal/internal/auth"
	"hoainiem-portal/internal/cache"
	"hoainiem-portal/internal/client"
	"hoainiem-portal/internal/domain"
	"hoainiem-portal/internal/repository"
)

func twoCommentThread() *client.CommentList {
	return &client.CommentList{
		TotalComments: 2,
		Comments: []domain.Comment{
			domain.NewTopLevelComment(5, "An", "first"),
			domain.NewTopLevelComment(6, "Binh", "second"),
		},
	}
}

func newThreadService(t *testing.T, comments client.CommentClient, token string) ThreadService {
	t.Helper()
	tokens, _ := newTokenStore(t, token, "7")
	store := cache.New[domain.Thread]("threads", nil, zap.NewNop())
	return NewThreadService(comments, tokens, store, nil, zap.NewNop())
}

func TestThreadViewModel_LoadWithoutTokenMakesNoRequest(t *testing.T) {
	comments := &MockCommentClient{}
	svc := newThreadService(t, comments, "")

	thread, err := svc.ForPost(1).Load(context.Background())

	assert.ErrorIs(t, err, ErrNotAuthenticated)
	assert.Empty(t, thread.Comments)
	list, _, _, _ := comments.calls()
	assert.Equal(t, 0, list)
}

func TestThreadService_ForPostReturnsSameViewModel(t *testing.T) {
	svc := newThreadService(t, &MockCommentClient{}, "tok")
	assert.Same(t, svc.ForPost(3), svc.ForPost(3))
	assert.NotSame(t, svc.ForPost(3), svc.ForPost(4))
}

func TestThreadViewModel_LoadBuildsTree(t *testing.T) {
	parent := int64(5)
	comments := &MockCommentClient{
		ListFunc: func(ctx context.Context, token string, postID int64) (*client.CommentList, error) {
			assert.Equal(t, "tok", token)
			assert.Equal(t, int64(1), postID)
			return &client.CommentList{
				TotalComments: 3,
				Comments: []domain.Comment{
					domain.NewTopLevelComment(5, "An", "first"),
					{ID: 9, Content: "reply", ParentID: &parent},
					domain.NewTopLevelComment(6, "Binh", "second"),
				},
			}, nil
		},
	}
	svc := newThreadService(t, comments, "tok")

	thread, err := svc.ForPost(1).Load(context.Background())
	require.NoError(t, err)

	require.Len(t, thread.Comments, 2)
	require.Len(t, thread.Comments[0].Replies, 1)
	assert.Equal(t, int64(9), thread.Comments[0].Replies[0].ID)
	assert.Equal(t, thread.Total, thread.Count())
}

func TestThreadViewModel_ConcurrentLoadsShareOneRequest(t *testing.T) {
	release := make(chan struct{})
	comments := &MockCommentClient{
		ListFunc: func(ctx context.Context, token string, postID int64) (*client.CommentList, error) {
			<-release
			return twoCommentThread(), nil
		},
	}
	svc := newThreadService(t, comments, "tok")
	vm := svc.ForPost(1)

	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := vm.Load(context.Background())
			assert.NoError(t, err)
		}()
	}
	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()

	list, _, _, _ := comments.calls()
	assert.Equal(t, 1, list)
}

func TestThreadViewModel_AddComment(t *testing.T) {
	comments := &MockCommentClient{
		ListFunc: func(ctx context.Context, token string, postID int64) (*client.CommentList, error) {
			return twoCommentThread(), nil
		},
		CreateFunc: func(ctx context.Context, token string, postID int64, content string) (*domain.Comment, error) {
			c := domain.NewTopLevelComment(10, "Tester", content)
			return &c, nil
		},
	}
	svc := newThreadService(t, comments, "tok")
	vm := svc.ForPost(1)

	_, err := vm.Load(context.Background())
	require.NoError(t, err)

	thread, err := vm.AddComment(context.Background(), "hello")
	require.NoError(t, err)

	flat := thread.Flat()
	require.Len(t, flat, 3)
	assert.Equal(t, 3, thread.Total)
	assert.Equal(t, "hello", flat[0].Content)
	assert.Equal(t, int64(10), flat[0].ID)

	list, create, _, _ := comments.calls()
	assert.Equal(t, 1, list, "adding a comment does not reload the thread")
	assert.Equal(t, 1, create)
}

func TestThreadViewModel_AddBlankCommentIsNoOp(t *testing.T) {
	comments := &MockCommentClient{
		ListFunc: func(ctx context.Context, token string, postID int64) (*client.CommentList, error) {
			return twoCommentThread(), nil
		},
	}
	svc := newThreadService(t, comments, "tok")
	vm := svc.ForPost(1)

	before, err := vm.Load(context.Background())
	require.NoError(t, err)

	for _, text := range []string{"", "   ", "\n\t "} {
		after, err := vm.AddComment(context.Background(), text)
		require.NoError(t, err)
		assert.Equal(t, before, after)
	}

	_, create, _, _ := comments.calls()
	assert.Equal(t, 0, create)
}

func TestThreadViewModel_ReplyFlow(t *testing.T) {
	comments := &MockCommentClient{
		ListFunc: func(ctx context.Context, token string, postID int64) (*client.CommentList, error) {
			return twoCommentThread(), nil
		},
	}
	svc := newThreadService(t, comments, "tok")
	vm := svc.ForPost(1)
	ctx := context.Background()

	_, err := vm.Load(ctx)
	require.NoError(t, err)

	thread, err := vm.ToggleReplyInput(ctx, 5)
	require.NoError(t, err)
	entry, _ := thread.Find(5)
	assert.True(t, entry.ReplyBoxOpen)
	assert.Empty(t, entry.Draft)

	_, err = vm.SetReplyDraft(ctx, 5, "nice post")
	require.NoError(t, err)

	thread, err = vm.SubmitReply(ctx, 5)
	require.NoError(t, err)

	entry, _ = thread.Find(5)
	require.Len(t, entry.Replies, 1)
	assert.Equal(t, "nice post", entry.Replies[0].Content)
	assert.Equal(t, domain.Reply, entry.Replies[0].Kind())
	assert.False(t, entry.ReplyBoxOpen)
	assert.Empty(t, entry.Draft)
	assert.Equal(t, 3, thread.Total)
	assert.Equal(t, thread.Total, thread.Count())
}

func TestThreadViewModel_SubmitEmptyDraftIsNoOp(t *testing.T) {
	comments := &MockCommentClient{
		ListFunc: func(ctx context.Context, token string, postID int64) (*client.CommentList, error) {
			return twoCommentThread(), nil
		},
	}
	svc := newThreadService(t, comments, "tok")
	vm := svc.ForPost(1)
	ctx := context.Background()

	_, err := vm.Load(ctx)
	require.NoError(t, err)
	_, err = vm.ToggleReplyInput(ctx, 5)
	require.NoError(t, err)
	_, err = vm.SetReplyDraft(ctx, 5, "   ")
	require.NoError(t, err)

	thread, err := vm.SubmitReply(ctx, 5)
	require.NoError(t, err)

	entry, _ := thread.Find(5)
	assert.Empty(t, entry.Replies)
	assert.True(t, entry.ReplyBoxOpen)
	_, _, reply, _ := comments.calls()
	assert.Equal(t, 0, reply)
}

func TestThreadViewModel_ToggleLikeUsesLatestServerAnswer(t *testing.T) {
	answers := []client.LikeResult{
		{TotalLikes: 1, IsLikedByUser: true},
		{TotalLikes: 0, IsLikedByUser: false},
		{TotalLikes: 4, IsLikedByUser: true},
	}
	var n int
	comments := &MockCommentClient{
		ListFunc: func(ctx context.Context, token string, postID int64) (*client.CommentList, error) {
			return twoCommentThread(), nil
		},
		LikeFunc: func(ctx context.Context, token string, commentID int64) (*client.LikeResult, error) {
			res := answers[n]
			n++
			return &res, nil
		},
	}
	svc := newThreadService(t, comments, "tok")
	vm := svc.ForPost(1)
	ctx := context.Background()

	_, err := vm.Load(ctx)
	require.NoError(t, err)

	var thread domain.Thread
	for range answers {
		thread, err = vm.ToggleLike(ctx, 6, false, 0)
		require.NoError(t, err)
	}

	entry, _ := thread.Find(6)
	assert.Equal(t, 4, entry.Likes)
	assert.True(t, entry.LikedByUser)
}

func TestThreadViewModel_LikeReply(t *testing.T) {
	parent := int64(5)
	comments := &MockCommentClient{
		ListFunc: func(ctx context.Context, token string, postID int64) (*client.CommentList, error) {
			return &client.CommentList{
				TotalComments: 2,
				Comments: []domain.Comment{
					domain.NewTopLevelComment(5, "An", "first"),
					{ID: 9, Content: "reply", ParentID: &parent},
				},
			}, nil
		},
		LikeFunc: func(ctx context.Context, token string, commentID int64) (*client.LikeResult, error) {
			assert.Equal(t, int64(9), commentID)
			return &client.LikeResult{TotalLikes: 2, IsLikedByUser: true}, nil
		},
	}
	svc := newThreadService(t, comments, "tok")
	vm := svc.ForPost(1)

	_, err := vm.Load(context.Background())
	require.NoError(t, err)

	thread, err := vm.ToggleLike(context.Background(), 9, true, 5)
	require.NoError(t, err)
	entry, _ := thread.Find(5)
	assert.Equal(t, 2, entry.Replies[0].Likes)
	assert.True(t, entry.Replies[0].LikedByUser)
	assert.Equal(t, 0, entry.Likes)
}

func TestThreadViewModel_FailedMutationRevalidates(t *testing.T) {
	var loads int
	comments := &MockCommentClient{
		ListFunc: func(ctx context.Context, token string, postID int64) (*client.CommentList, error) {
			loads++
			list := twoCommentThread()
			if loads > 1 {
				// another reader commented meanwhile
				list.TotalComments = 3
				list.Comments = append(list.Comments, domain.NewTopLevelComment(7, "Chi", "third"))
			}
			return list, nil
		},
		ReplyFunc: func(ctx context.Context, token string, commentID int64, content string) (*domain.Comment, error) {
			return nil, &client.APIError{StatusCode: 500, Message: "Server Error"}
		},
	}
	svc := newThreadService(t, comments, "tok")
	vm := svc.ForPost(1)
	ctx := context.Background()

	_, err := vm.Load(ctx)
	require.NoError(t, err)
	_, err = vm.ToggleReplyInput(ctx, 5)
	require.NoError(t, err)
	_, err = vm.SetReplyDraft(ctx, 5, "will fail")
	require.NoError(t, err)
	_, err = vm.ToggleReplyInput(ctx, 6)
	require.NoError(t, err)

	_, err = vm.SubmitReply(ctx, 5)
	var apiErr *client.APIError
	require.True(t, errors.As(err, &apiErr), "the original error is returned")
	assert.Equal(t, 500, apiErr.StatusCode)

	thread, ok := vm.Snapshot(ctx)
	require.True(t, ok)
	assert.Equal(t, 2, loads, "thread fetched again once")
	assert.Equal(t, 3, thread.Total, "server state replaces local state")
	assert.Len(t, thread.Comments, 3)

	five, _ := thread.Find(5)
	assert.True(t, five.ReplyBoxOpen)
	assert.Equal(t, "will fail", five.Draft)
	assert.Empty(t, five.Replies)
	six, _ := thread.Find(6)
	assert.True(t, six.ReplyBoxOpen)
}

func TestThreadViewModel_FailedAddCommentLeavesNoLocalComment(t *testing.T) {
	comments := &MockCommentClient{
		ListFunc: func(ctx context.Context, token string, postID int64) (*client.CommentList, error) {
			return twoCommentThread(), nil
		},
		CreateFunc: func(ctx context.Context, token string, postID int64, content string) (*domain.Comment, error) {
			return nil, errors.New("connection reset")
		},
	}
	svc := newThreadService(t, comments, "tok")
	vm := svc.ForPost(1)
	ctx := context.Background()

	_, err := vm.Load(ctx)
	require.NoError(t, err)

	_, err = vm.AddComment(ctx, "hello")
	assert.EqualError(t, err, "connection reset")

	thread, _ := vm.Snapshot(ctx)
	assert.Equal(t, 2, thread.Total)
	assert.Len(t, thread.Flat(), 2)
}

func TestThreadViewModel_LocalOperationsNeedLoad(t *testing.T) {
	svc := newThreadService(t, &MockCommentClient{}, "tok")
	vm := svc.ForPost(1)

	_, err := vm.ToggleReplyInput(context.Background(), 5)
	assert.ErrorIs(t, err, ErrThreadNotLoaded)
	_, err = vm.SetReplyDraft(context.Background(), 5, "x")
	assert.ErrorIs(t, err, ErrThreadNotLoaded)
	_, _, err = vm.Subscribe(context.Background())
	assert.ErrorIs(t, err, ErrThreadNotLoaded)
	_, ok := vm.Snapshot(context.Background())
	assert.False(t, ok)
}

func TestThreadViewModel_ToggleUnknownComment(t *testing.T) {
	comments := &MockCommentClient{
		ListFunc: func(ctx context.Context, token string, postID int64) (*client.CommentList, error) {
			return twoCommentThread(), nil
		},
	}
	svc := newThreadService(t, comments, "tok")
	vm := svc.ForPost(1)
	_, err := vm.Load(context.Background())
	require.NoError(t, err)

	_, err = vm.ToggleReplyInput(context.Background(), 99)
	assert.ErrorIs(t, err, domain.ErrCommentNotFound)
}

func TestThreadViewModel_SubscribeReceivesMutations(t *testing.T) {
	comments := &MockCommentClient{
		ListFunc: func(ctx context.Context, token string, postID int64) (*client.CommentList, error) {
			return twoCommentThread(), nil
		},
	}
	svc := newThreadService(t, comments, "tok")
	vm := svc.ForPost(1)
	_, err := vm.Load(context.Background())
	require.NoError(t, err)

	ch, cancel, err := vm.Subscribe(context.Background())
	require.NoError(t, err)
	defer cancel()

	_, err = vm.ToggleReplyInput(context.Background(), 6)
	require.NoError(t, err)

	select {
	case thread := <-ch:
		entry, _ := thread.Find(6)
		assert.True(t, entry.ReplyBoxOpen)
	case <-time.After(time.Second):
		t.Fatal("no snapshot published")
	}
}

func TestThreadViewModel_SessionsKeepTheirOwnState(t *testing.T) {
	comments := &MockCommentClient{
		ListFunc: func(ctx context.Context, token string, postID int64) (*client.CommentList, error) {
			return twoCommentThread(), nil
		},
		LikeFunc: func(ctx context.Context, token string, commentID int64) (*client.LikeResult, error) {
			assert.Equal(t, "tok-a", token, "each session posts with its own token")
			return &client.LikeResult{TotalLikes: 1, IsLikedByUser: true}, nil
		},
	}
	tokens := auth.NewScopedTokenStore(repository.NewMemoryKeyValueStore(), nil)
	alice := auth.WithSessionID(context.Background(), "alice")
	bob := auth.WithSessionID(context.Background(), "bob")
	require.NoError(t, tokens.Set(alice, "tok-a", "1"))
	require.NoError(t, tokens.Set(bob, "tok-b", "2"))

	svc := NewThreadService(comments, tokens, cache.New[domain.Thread]("threads", nil, nil), nil, zap.NewNop())
	vm := svc.ForPost(1)

	_, err := vm.Load(alice)
	require.NoError(t, err)
	_, err = vm.Load(bob)
	require.NoError(t, err)

	_, err = vm.ToggleReplyInput(alice, 5)
	require.NoError(t, err)
	_, err = vm.SetReplyDraft(alice, 5, "only mine")
	require.NoError(t, err)
	_, err = vm.ToggleLike(alice, 6, false, 0)
	require.NoError(t, err)

	theirs, ok := vm.Snapshot(bob)
	require.True(t, ok)
	five, _ := theirs.Find(5)
	assert.False(t, five.ReplyBoxOpen)
	assert.Empty(t, five.Draft)

	mine, _ := vm.Snapshot(alice)
	five, _ = mine.Find(5)
	assert.Equal(t, "only mine", five.Draft)

	_, err = vm.ToggleReplyInput(context.Background(), 5)
	assert.ErrorIs(t, err, ErrNotAuthenticated)
	_, err = vm.AddComment(context.Background(), "anonymous")
	assert.ErrorIs(t, err, ErrNotAuthenticated)
	_, create, _, _ := comments.calls()
	assert.Zero(t, create)
}

func TestThreadViewModel_SubmitReplyBeforeLoadMakesNoRequest(t *testing.T) {
	comments := &MockCommentClient{}
	svc := newThreadService(t, comments, "tok")

	_, err := svc.ForPost(1).SubmitReply(context.Background(), 5)

	assert.ErrorIs(t, err, ErrThreadNotLoaded)
	list, _, reply, _ := comments.calls()
	assert.Zero(t, list)
	assert.Zero(t, reply)
}

func TestThreadService_Sweep(t *testing.T) {
	svc := newThreadService(t, &MockCommentClient{}, "tok").(*threadServiceImpl)
	now := time.Date(2026, 10, 18, 8, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	idle := svc.ForPost(1)
	svc.ForPost(2)
	now = now.Add(time.Hour)
	svc.ForPost(2)

	assert.Equal(t, 1, svc.Sweep(30*time.Minute))
	assert.NotSame(t, idle, svc.ForPost(1), "a swept post gets a new view-model")
	assert.Zero(t, svc.Sweep(30*time.Minute))
}
