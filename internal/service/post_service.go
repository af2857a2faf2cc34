package service

import (
	"context"

	"go.uber.org/zap"

	"hoainiem-portal/internal/auth"
	"hoainiem-portal/internal/client"
	"hoainiem-portal/internal/domain"
	"hoainiem-portal/internal/validation"
)

// PostService manages the post the signed-in user writes
type PostService interface {
	Draft(ctx context.Context) (*domain.NewsDraft, error)
	// Submit validates form and posts it. image may be nil when form.Image
	// already holds an uploaded URL.
	Submit(ctx context.Context, form domain.NewsForm, image *client.Upload) (string, error)
}

type postServiceImpl struct {
	api       client.PostClient
	tokens    auth.TokenStore
	uploader  client.ImageUploader
	validator *validation.Validator
	logger    *zap.Logger
}

// NewPostService creates a new PostService. uploader may be nil, in which case
// images are sent to the platform as file parts.
func NewPostService(api client.PostClient, tokens auth.TokenStore, uploader client.ImageUploader, v *validation.Validator, logger *zap.Logger) PostService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &postServiceImpl{api: api, tokens: tokens, uploader: uploader, validator: v, logger: logger}
}

func (s *postServiceImpl) Draft(ctx context.Context) (*domain.NewsDraft, error) {
	session, err := requireUser(ctx, s.tokens)
	if err != nil {
		return nil, err
	}
	return s.api.NewsDetail(ctx, session.Token, session.UserID)
}

func (s *postServiceImpl) Submit(ctx context.Context, form domain.NewsForm, image *client.Upload) (string, error) {
	if image != nil {
		form.Image = image.FileName
	}
	if err := s.validator.Struct(form); err != nil {
		return "", err
	}
	session, err := requireUser(ctx, s.tokens)
	if err != nil {
		return "", err
	}

	image, form.Image, err = uploadImage(ctx, s.uploader, client.ImageKindNews, session.UserID, image, form.Image)
	if err != nil {
		return "", err
	}

	msg, err := s.api.UpdateNews(ctx, session.Token, session.UserID, form, image)
	if err != nil {
		s.logger.Warn("Failed to submit post", zap.String("user_id", session.UserID), zap.Error(err))
		return "", err
	}
	return msg, nil
}

// ProfileService edits the signed-in user's profile
type ProfileService interface {
	Update(ctx context.Context, form domain.ProfileForm, image *client.Upload) (string, error)
}

type profileServiceImpl struct {
	api       client.ProfileClient
	tokens    auth.TokenStore
	uploader  client.ImageUploader
	validator *validation.Validator
	logger    *zap.Logger
}

// NewProfileService creates a new ProfileService
func NewProfileService(api client.ProfileClient, tokens auth.TokenStore, uploader client.ImageUploader, v *validation.Validator, logger *zap.Logger) ProfileService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &profileServiceImpl{api: api, tokens: tokens, uploader: uploader, validator: v, logger: logger}
}

func (s *profileServiceImpl) Update(ctx context.Context, form domain.ProfileForm, image *client.Upload) (string, error) {
	if image != nil {
		form.ProfileImage = image.FileName
	}
	if err := s.validator.Struct(form); err != nil {
		return "", err
	}
	session, err := requireUser(ctx, s.tokens)
	if err != nil {
		return "", err
	}

	image, form.ProfileImage, err = uploadImage(ctx, s.uploader, client.ImageKindProfile, session.UserID, image, form.ProfileImage)
	if err != nil {
		return "", err
	}

	msg, err := s.api.Update(ctx, session.Token, session.UserID, form, image)
	if err != nil {
		s.logger.Warn("Failed to update profile", zap.String("user_id", session.UserID), zap.Error(err))
		return "", err
	}
	return msg, nil
}

// requireUser returns the session when it has both a token and a user id
func requireUser(ctx context.Context, tokens auth.TokenStore) (domain.Session, error) {
	session, err := tokens.Get(ctx)
	if err != nil {
		return domain.Session{}, err
	}
	if !session.Authenticated() || session.UserID == "" {
		return domain.Session{}, ErrNotAuthenticated
	}
	return session, nil
}

// uploadImage sends image to the uploader when one is configured and returns
// the file still to be posted (nil once uploaded) and the image value of the form
func uploadImage(ctx context.Context, uploader client.ImageUploader, kind, owner string, image *client.Upload, current string) (*client.Upload, string, error) {
	if image == nil || uploader == nil {
		return image, current, nil
	}
	url, err := uploader.Upload(ctx, kind, owner, image)
	if err != nil {
		return nil, "", err
	}
	return nil, url, nil
}
