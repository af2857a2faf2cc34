package service

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"hoainiem-portal/internal/auth"
	"hoainiem-portal/internal/cache"
	"hoainiem-portal/internal/client"
	"hoainiem-portal/internal/domain"
	"hoainiem-portal/internal/metrics"
)

// ThreadService hands out the comment thread view-model of each post
type ThreadService interface {
	// ForPost returns the view-model of postID, creating it on first use.
	// The same post gets the same view-model until it is swept.
	ForPost(postID int64) *ThreadViewModel
	// Sweep drops the view-models not used for idle and returns how many
	Sweep(idle time.Duration) int
}

type threadServiceImpl struct {
	comments client.CommentClient
	tokens   auth.TokenStore
	threads  *cache.Store[domain.Thread]
	metrics  *metrics.Metrics
	logger   *zap.Logger
	now      func() time.Time

	mu     sync.Mutex
	models map[int64]*ThreadViewModel
}

// NewThreadService creates a new ThreadService
func NewThreadService(comments client.CommentClient, tokens auth.TokenStore, threads *cache.Store[domain.Thread], m *metrics.Metrics, logger *zap.Logger) ThreadService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &threadServiceImpl{
		comments: comments,
		tokens:   tokens,
		threads:  threads,
		metrics:  m,
		logger:   logger,
		now:      time.Now,
		models:   make(map[int64]*ThreadViewModel),
	}
}

func (s *threadServiceImpl) ForPost(postID int64) *ThreadViewModel {
	s.mu.Lock()
	defer s.mu.Unlock()

	vm, ok := s.models[postID]
	if !ok {
		vm = &ThreadViewModel{postID: postID, svc: s}
		s.models[postID] = vm
		s.metrics.SetActiveThreads(len(s.models))
	}
	vm.used.Store(s.now().UnixNano())
	return vm
}

func (s *threadServiceImpl) Sweep(idle time.Duration) int {
	cutoff := s.now().Add(-idle).UnixNano()

	s.mu.Lock()
	defer s.mu.Unlock()
	dropped := 0
	for postID, vm := range s.models {
		if vm.used.Load() < cutoff {
			delete(s.models, postID)
			dropped++
		}
	}
	s.metrics.SetActiveThreads(len(s.models))
	return dropped
}

// ThreadViewModel is the comment section of one post. Each session sees its
// own copy: the thread lives in the cache under the key (comments path,
// token), so reply boxes and drafts never leak between sessions.
//
// Server mutations are applied from the server's answer only. When one fails
// the thread is fetched again once, the open reply boxes and drafts are put
// back by comment id, and the original error is returned.
type ThreadViewModel struct {
	postID int64
	svc    *threadServiceImpl
	// used is the unix nano time of the last ForPost
	used atomic.Int64
}

// PostID returns the post the thread belongs to
func (vm *ThreadViewModel) PostID() int64 {
	return vm.postID
}

func (vm *ThreadViewModel) session(ctx context.Context) (domain.Session, error) {
	session, err := vm.svc.tokens.Get(ctx)
	if err != nil {
		return domain.Session{}, err
	}
	if !session.Authenticated() {
		return domain.Session{}, ErrNotAuthenticated
	}
	return session, nil
}

func (vm *ThreadViewModel) keyFor(token string) string {
	return cache.Key(client.CommentsPath(vm.postID), token)
}

// sessionKey returns the cache key of the thread as seen by the session of ctx
func (vm *ThreadViewModel) sessionKey(ctx context.Context) (string, error) {
	session, err := vm.session(ctx)
	if err != nil {
		return "", err
	}
	return vm.keyFor(session.Token), nil
}

func (vm *ThreadViewModel) fetch(token string) cache.FetchFunc[domain.Thread] {
	return func(ctx context.Context) (domain.Thread, error) {
		list, err := vm.svc.comments.List(ctx, token, vm.postID)
		if err != nil {
			return domain.Thread{}, err
		}
		thread, orphans := domain.BuildThread(vm.postID, list.TotalComments, list.Comments)
		for _, o := range orphans {
			vm.svc.logger.Warn("Dropping reply whose parent is not in the thread",
				zap.Int64("post_id", vm.postID),
				zap.Int64("comment_id", o.ID),
				zap.Int64("parent_id", *o.ParentID),
			)
		}
		if n := thread.Count(); n != thread.Total {
			vm.svc.logger.Debug("Comment total differs from loaded comments",
				zap.Int64("post_id", vm.postID),
				zap.Int("total", thread.Total),
				zap.Int("loaded", n),
			)
		}
		return thread, nil
	}
}

// Load returns the thread, fetching it when not cached. Concurrent loads share
// one request.
func (vm *ThreadViewModel) Load(ctx context.Context) (domain.Thread, error) {
	session, err := vm.session(ctx)
	if err != nil {
		return domain.Thread{}, err
	}
	thread, err := vm.load(ctx, session.Token)
	vm.svc.metrics.RecordThreadLoad(err)
	if err != nil {
		vm.svc.logger.Error("Failed to load comment thread",
			zap.Int64("post_id", vm.postID),
			zap.Error(err),
		)
		return domain.Thread{}, err
	}
	return thread.Clone(), nil
}

func (vm *ThreadViewModel) load(ctx context.Context, token string) (domain.Thread, error) {
	return vm.svc.threads.Get(ctx, vm.keyFor(token), vm.fetch(token))
}

// AddComment posts a top-level comment and puts the server's copy first.
// Blank text does nothing.
func (vm *ThreadViewModel) AddComment(ctx context.Context, text string) (domain.Thread, error) {
	if domain.IsBlank(text) {
		return vm.snapshotOrEmpty(ctx), nil
	}
	session, err := vm.session(ctx)
	if err != nil {
		return domain.Thread{}, err
	}
	if _, err := vm.load(ctx, session.Token); err != nil {
		return domain.Thread{}, err
	}

	created, err := vm.svc.comments.Create(ctx, session.Token, vm.postID, text)
	if err != nil {
		return domain.Thread{}, vm.revalidateOnError(ctx, session.Token, "add_comment", err)
	}
	comment := *created
	comment.ParentID = nil

	thread, err := vm.mutate(vm.keyFor(session.Token), func(t domain.Thread) (domain.Thread, error) {
		return t.Prepend(comment)
	})
	if err != nil {
		return domain.Thread{}, err
	}
	vm.svc.metrics.IncrementCommentAdded()
	return thread, nil
}

// ToggleReplyInput opens or closes the reply box of a top-level comment and
// clears its draft
func (vm *ThreadViewModel) ToggleReplyInput(ctx context.Context, commentID int64) (domain.Thread, error) {
	key, err := vm.sessionKey(ctx)
	if err != nil {
		return domain.Thread{}, err
	}
	return vm.mutate(key, func(t domain.Thread) (domain.Thread, error) {
		return t.ToggleReplyBox(commentID)
	})
}

// SetReplyDraft stores the reply draft of a top-level comment
func (vm *ThreadViewModel) SetReplyDraft(ctx context.Context, commentID int64, text string) (domain.Thread, error) {
	key, err := vm.sessionKey(ctx)
	if err != nil {
		return domain.Thread{}, err
	}
	return vm.mutate(key, func(t domain.Thread) (domain.Thread, error) {
		return t.SetDraft(commentID, text)
	})
}

// SubmitReply posts the draft of commentID as a reply. A blank draft does
// nothing. The draft lives in the loaded thread, so an unloaded thread fails
// with ErrThreadNotLoaded without a request.
func (vm *ThreadViewModel) SubmitReply(ctx context.Context, commentID int64) (domain.Thread, error) {
	session, err := vm.session(ctx)
	if err != nil {
		return domain.Thread{}, err
	}
	thread, ok := vm.svc.threads.Peek(vm.keyFor(session.Token))
	if !ok {
		return domain.Thread{}, ErrThreadNotLoaded
	}
	entry, ok := thread.Find(commentID)
	if !ok {
		return domain.Thread{}, domain.ErrCommentNotFound
	}
	if domain.IsBlank(entry.Draft) {
		return thread.Clone(), nil
	}

	created, err := vm.svc.comments.Reply(ctx, session.Token, commentID, entry.Draft)
	if err != nil {
		return domain.Thread{}, vm.revalidateOnError(ctx, session.Token, "reply", err)
	}
	reply := *created
	parentID := commentID
	reply.ParentID = &parentID

	thread, err = vm.mutate(vm.keyFor(session.Token), func(t domain.Thread) (domain.Thread, error) {
		return t.AppendReply(commentID, reply)
	})
	if err != nil {
		return domain.Thread{}, err
	}
	vm.svc.metrics.IncrementReplyAdded()
	return thread, nil
}

// ToggleLike likes or unlikes a comment and stores the server's count and flag.
// For a reply parentID names its top-level comment.
func (vm *ThreadViewModel) ToggleLike(ctx context.Context, commentID int64, isReply bool, parentID int64) (domain.Thread, error) {
	session, err := vm.session(ctx)
	if err != nil {
		return domain.Thread{}, err
	}
	if _, err := vm.load(ctx, session.Token); err != nil {
		return domain.Thread{}, err
	}

	res, err := vm.svc.comments.Like(ctx, session.Token, commentID)
	if err != nil {
		return domain.Thread{}, vm.revalidateOnError(ctx, session.Token, "like", err)
	}

	thread, err := vm.mutate(vm.keyFor(session.Token), func(t domain.Thread) (domain.Thread, error) {
		return t.ApplyLike(commentID, isReply, parentID, res.TotalLikes, res.IsLikedByUser)
	})
	if err != nil {
		return domain.Thread{}, err
	}
	vm.svc.metrics.IncrementLikeToggled()
	return thread, nil
}

// Snapshot returns a copy of the thread cached for the session of ctx. ok is
// false before the session's first load.
func (vm *ThreadViewModel) Snapshot(ctx context.Context) (domain.Thread, bool) {
	key, err := vm.sessionKey(ctx)
	if err != nil {
		return domain.Thread{}, false
	}
	thread, ok := vm.svc.threads.Peek(key)
	if !ok {
		return domain.Thread{}, false
	}
	return thread.Clone(), true
}

// Subscribe streams every new snapshot of the thread loaded by the session of
// ctx until cancel is called
func (vm *ThreadViewModel) Subscribe(ctx context.Context) (<-chan domain.Thread, func(), error) {
	key, err := vm.sessionKey(ctx)
	if err != nil {
		return nil, nil, err
	}
	if _, ok := vm.svc.threads.Peek(key); !ok {
		return nil, nil, ErrThreadNotLoaded
	}
	ch, cancel := vm.svc.threads.Subscribe(key)
	vm.svc.metrics.AddStreamSubscribers(1)

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			cancel()
			vm.svc.metrics.AddStreamSubscribers(-1)
		})
	}, nil
}

func (vm *ThreadViewModel) snapshotOrEmpty(ctx context.Context) domain.Thread {
	if thread, ok := vm.Snapshot(ctx); ok {
		return thread
	}
	return domain.Thread{PostID: vm.postID}
}

func (vm *ThreadViewModel) mutate(key string, fn func(domain.Thread) (domain.Thread, error)) (domain.Thread, error) {
	thread, err := vm.svc.threads.Mutate(key, func(current domain.Thread, ok bool) (domain.Thread, error) {
		if !ok {
			return current, ErrThreadNotLoaded
		}
		return fn(current)
	})
	if err != nil {
		return domain.Thread{}, err
	}
	return thread.Clone(), nil
}

// revalidateOnError re-fetches the thread after a failed mutation, keeping the
// UI state of the entries that survive, and returns cause
func (vm *ThreadViewModel) revalidateOnError(ctx context.Context, token, op string, cause error) error {
	vm.svc.metrics.IncrementRevalidation()
	vm.svc.logger.Warn("Comment mutation failed, revalidating thread",
		zap.String("operation", op),
		zap.Int64("post_id", vm.postID),
		zap.Error(cause),
	)

	key := vm.keyFor(token)
	var state map[int64]domain.EntryState
	if current, ok := vm.svc.threads.Peek(key); ok {
		state = current.UIState()
	}

	fetch := vm.fetch(token)
	_, err := vm.svc.threads.Revalidate(ctx, key, func(ctx context.Context) (domain.Thread, error) {
		thread, err := fetch(ctx)
		if err != nil {
			return domain.Thread{}, err
		}
		return thread.WithUIState(state), nil
	})
	if err == nil && len(state) > 0 {
		// the fetch may have been shared with another revalidation
		_, err = vm.svc.threads.Mutate(key, func(current domain.Thread, ok bool) (domain.Thread, error) {
			if !ok {
				return current, ErrThreadNotLoaded
			}
			return current.WithUIState(state), nil
		})
	}
	if err != nil && !errors.Is(err, context.Canceled) {
		vm.svc.logger.Error("Failed to revalidate comment thread",
			zap.Int64("post_id", vm.postID),
			zap.Error(err),
		)
	}
	return cause
}
