package handler

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"hoainiem-portal/internal/client"
	"hoainiem-portal/internal/domain"
	"hoainiem-portal/internal/dto"
	"hoainiem-portal/internal/middleware"
	"hoainiem-portal/internal/response"
	"hoainiem-portal/internal/service"
)

const maxImageSize = 10 << 20

type PostHandler struct {
	postService    service.PostService
	profileService service.ProfileService
	logger         *zap.Logger
}

func NewPostHandler(postService service.PostService, profileService service.ProfileService, logger *zap.Logger) *PostHandler {
	return &PostHandler{
		postService:    postService,
		profileService: profileService,
		logger:         logger,
	}
}

// Draft godoc
// @Summary      Current post of the user
// @Description  Returns the post the signed-in user is editing, used to prefill the form
// @Tags         posts
// @Produce      json
// @Success      200 {object} response.SuccessResponse{data=domain.NewsDraft}
// @Failure      401 {object} response.ErrorResponse "Login required"
// @Failure      502 {object} response.ErrorResponse
// @Router       /posts/draft [get]
func (h *PostHandler) Draft(c *gin.Context) {
	draft, err := h.postService.Draft(c.Request.Context())
	if err != nil {
		handleServiceError(c, h.logger, err)
		return
	}
	response.SendSuccess(c, http.StatusOK, draft)
}

// SubmitPost godoc
// @Summary      Add or update the user's post
// @Description  Multipart form. Either upload a file in "image" or send the current image URL in the "image" field.
// @Tags         posts
// @Accept       multipart/form-data
// @Produce      json
// @Param        category formData string true "Category ID"
// @Param        release_date formData string true "Release date"
// @Param        title formData string true "Title"
// @Param        short_title formData string true "Short title"
// @Param        description formData string true "Body"
// @Param        tags formData string true "Tags"
// @Param        image formData file false "Cover image"
// @Success      200 {object} response.SuccessResponse{data=dto.MessageResponse}
// @Failure      400 {object} response.ErrorResponse "Invalid input"
// @Failure      401 {object} response.ErrorResponse "Login required"
// @Failure      502 {object} response.ErrorResponse
// @Router       /posts [post]
func (h *PostHandler) SubmitPost(c *gin.Context) {
	var form domain.NewsForm
	if err := c.ShouldBind(&form); err != nil {
		response.SendError(c, http.StatusBadRequest, response.ErrCodeValidation, "Invalid form")
		return
	}

	image, closeImage, err := formImage(c, "image")
	if err != nil {
		response.SendError(c, http.StatusBadRequest, response.ErrCodeValidation, err.Error())
		return
	}
	defer closeImage()

	msg, err := h.postService.Submit(c.Request.Context(), form, image)
	if err != nil {
		handleServiceError(c, h.logger, err)
		return
	}
	h.logger.Info("Post submitted", zap.String("user_id", sessionUserID(c)), zap.Bool("with_file", image != nil))
	response.SendSuccess(c, http.StatusOK, dto.MessageResponse{Message: msg})
}

// UpdateProfile godoc
// @Summary      Update the user's profile
// @Description  Multipart form. Either upload a file in "profile_image" or send the current image URL in the "profile_image" field.
// @Tags         profile
// @Accept       multipart/form-data
// @Produce      json
// @Param        email formData string true "Email"
// @Param        contact_no formData string true "Phone number, 10 digits"
// @Param        full_name formData string true "Full name"
// @Param        sex formData string true "male or female"
// @Param        birth_date formData string true "YYYY-MM-DD"
// @Param        address_one formData string true "Address"
// @Param        profile_image formData file false "Avatar"
// @Success      200 {object} response.SuccessResponse{data=dto.MessageResponse}
// @Failure      400 {object} response.ErrorResponse "Invalid input"
// @Failure      401 {object} response.ErrorResponse "Login required"
// @Failure      502 {object} response.ErrorResponse
// @Router       /profile [put]
func (h *PostHandler) UpdateProfile(c *gin.Context) {
	var form domain.ProfileForm
	if err := c.ShouldBind(&form); err != nil {
		response.SendError(c, http.StatusBadRequest, response.ErrCodeValidation, "Invalid form")
		return
	}

	image, closeImage, err := formImage(c, "profile_image")
	if err != nil {
		response.SendError(c, http.StatusBadRequest, response.ErrCodeValidation, err.Error())
		return
	}
	defer closeImage()

	msg, err := h.profileService.Update(c.Request.Context(), form, image)
	if err != nil {
		handleServiceError(c, h.logger, err)
		return
	}
	h.logger.Info("Profile updated", zap.String("user_id", sessionUserID(c)))
	response.SendSuccess(c, http.StatusOK, dto.MessageResponse{Message: msg})
}

// formImage opens the uploaded file of field. It returns a nil upload when
// the request carries no file.
func formImage(c *gin.Context, field string) (*client.Upload, func(), error) {
	noop := func() {}
	header, err := c.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
		return nil, noop, nil
	}
	if err != nil {
		return nil, noop, errors.New("invalid " + field + " upload")
	}
	if header.Size > maxImageSize {
		return nil, noop, errors.New(field + " is larger than 10MB")
	}

	f, err := header.Open()
	if err != nil {
		return nil, noop, errors.New("invalid " + field + " upload")
	}
	upload := &client.Upload{
		FileName:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Body:        io.Reader(f),
	}
	return upload, func() { f.Close() }, nil
}

// sessionUserID returns the user id of the session RequireSession stored, if any
func sessionUserID(c *gin.Context) string {
	session, ok := middleware.GetSession(c)
	if !ok {
		return ""
	}
	return session.UserID
}
