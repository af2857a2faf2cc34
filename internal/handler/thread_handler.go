package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"hoainiem-portal/internal/domain"
	"hoainiem-portal/internal/dto"
	"hoainiem-portal/internal/middleware"
	"hoainiem-portal/internal/response"
	"hoainiem-portal/internal/service"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
)

var upgrader = websocket.Upgrader{
	CheckOrigin:     func(r *http.Request) bool { return true },
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
}

// ThreadHandler serves the comment thread of a post
type ThreadHandler struct {
	threadService service.ThreadService
	logger        *zap.Logger
}

func NewThreadHandler(threadService service.ThreadService, logger *zap.Logger) *ThreadHandler {
	return &ThreadHandler{
		threadService: threadService,
		logger:        logger,
	}
}

// viewModel returns the thread of the :postId route. It must run behind
// middleware.RequireSession so anonymous callers never create a view-model.
func (h *ThreadHandler) viewModel(c *gin.Context) (*service.ThreadViewModel, bool) {
	if _, ok := middleware.GetSession(c); !ok {
		response.SendError(c, http.StatusUnauthorized, response.ErrCodeUnauthorized, "Login required")
		return nil, false
	}
	postID, err := strconv.ParseInt(c.Param("postId"), 10, 64)
	if err != nil || postID <= 0 {
		response.SendError(c, http.StatusBadRequest, response.ErrCodeValidation, "Invalid post ID")
		return nil, false
	}
	return h.threadService.ForPost(postID), true
}

func commentID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		response.SendError(c, http.StatusBadRequest, response.ErrCodeValidation, "Invalid comment ID")
		return 0, false
	}
	return id, true
}

func (h *ThreadHandler) respond(c *gin.Context, status int, thread domain.Thread, err error) {
	if err != nil {
		handleServiceError(c, h.logger, err)
		return
	}
	response.SendSuccess(c, status, dto.NewThreadResponse(thread))
}

// GetThread godoc
// @Summary      Comment thread
// @Description  Loads the comments of a post. Concurrent loads of the same thread share one platform request.
// @Tags         threads
// @Produce      json
// @Param        postId path int true "Post ID"
// @Success      200 {object} response.SuccessResponse{data=dto.ThreadResponse}
// @Failure      400 {object} response.ErrorResponse "Invalid post ID"
// @Failure      401 {object} response.ErrorResponse "Login required"
// @Failure      502 {object} response.ErrorResponse
// @Router       /threads/{postId} [get]
func (h *ThreadHandler) GetThread(c *gin.Context) {
	vm, ok := h.viewModel(c)
	if !ok {
		return
	}
	thread, err := vm.Load(c.Request.Context())
	h.respond(c, http.StatusOK, thread, err)
}

// AddComment godoc
// @Summary      Add a comment
// @Description  Posts a top-level comment. Blank content leaves the thread unchanged.
// @Tags         threads
// @Accept       json
// @Produce      json
// @Param        postId path int true "Post ID"
// @Param        request body dto.AddCommentRequest true "Comment"
// @Success      201 {object} response.SuccessResponse{data=dto.ThreadResponse}
// @Failure      400 {object} response.ErrorResponse
// @Failure      401 {object} response.ErrorResponse "Login required"
// @Failure      502 {object} response.ErrorResponse
// @Router       /threads/{postId}/comments [post]
func (h *ThreadHandler) AddComment(c *gin.Context) {
	vm, ok := h.viewModel(c)
	if !ok {
		return
	}
	var req dto.AddCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.SendError(c, http.StatusBadRequest, response.ErrCodeValidation, "Invalid request body")
		return
	}

	thread, err := vm.AddComment(c.Request.Context(), req.Content)
	h.respond(c, http.StatusCreated, thread, err)
}

// ToggleReplyBox godoc
// @Summary      Toggle the reply box of a comment
// @Tags         threads
// @Produce      json
// @Param        postId path int true "Post ID"
// @Param        id path int true "Comment ID"
// @Success      200 {object} response.SuccessResponse{data=dto.ThreadResponse}
// @Failure      401 {object} response.ErrorResponse "Login required"
// @Failure      404 {object} response.ErrorResponse "Unknown comment"
// @Failure      409 {object} response.ErrorResponse "Thread not loaded"
// @Router       /threads/{postId}/comments/{id}/reply-box [post]
func (h *ThreadHandler) ToggleReplyBox(c *gin.Context) {
	vm, ok := h.viewModel(c)
	if !ok {
		return
	}
	id, ok := commentID(c)
	if !ok {
		return
	}
	thread, err := vm.ToggleReplyInput(c.Request.Context(), id)
	h.respond(c, http.StatusOK, thread, err)
}

// SetDraft godoc
// @Summary      Store the reply draft of a comment
// @Tags         threads
// @Accept       json
// @Produce      json
// @Param        postId path int true "Post ID"
// @Param        id path int true "Comment ID"
// @Param        request body dto.ReplyDraftRequest true "Draft"
// @Success      200 {object} response.SuccessResponse{data=dto.ThreadResponse}
// @Failure      401 {object} response.ErrorResponse "Login required"
// @Failure      404 {object} response.ErrorResponse "Unknown comment"
// @Failure      409 {object} response.ErrorResponse "Thread not loaded"
// @Router       /threads/{postId}/comments/{id}/draft [put]
func (h *ThreadHandler) SetDraft(c *gin.Context) {
	vm, ok := h.viewModel(c)
	if !ok {
		return
	}
	id, ok := commentID(c)
	if !ok {
		return
	}
	var req dto.ReplyDraftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.SendError(c, http.StatusBadRequest, response.ErrCodeValidation, "Invalid request body")
		return
	}
	thread, err := vm.SetReplyDraft(c.Request.Context(), id, req.Text)
	h.respond(c, http.StatusOK, thread, err)
}

// SubmitReply godoc
// @Summary      Submit a reply
// @Description  Sends the stored draft as a reply. A blank draft leaves the thread unchanged.
// @Tags         threads
// @Produce      json
// @Param        postId path int true "Post ID"
// @Param        id path int true "Comment ID"
// @Success      201 {object} response.SuccessResponse{data=dto.ThreadResponse}
// @Failure      401 {object} response.ErrorResponse "Login required"
// @Failure      404 {object} response.ErrorResponse "Unknown comment"
// @Failure      409 {object} response.ErrorResponse "Thread not loaded"
// @Failure      502 {object} response.ErrorResponse
// @Router       /threads/{postId}/comments/{id}/replies [post]
func (h *ThreadHandler) SubmitReply(c *gin.Context) {
	vm, ok := h.viewModel(c)
	if !ok {
		return
	}
	id, ok := commentID(c)
	if !ok {
		return
	}
	thread, err := vm.SubmitReply(c.Request.Context(), id)
	h.respond(c, http.StatusCreated, thread, err)
}

// ToggleLike godoc
// @Summary      Toggle a like
// @Description  Likes or unlikes a comment or a reply. The platform's counters are applied to the thread.
// @Tags         threads
// @Accept       json
// @Produce      json
// @Param        postId path int true "Post ID"
// @Param        id path int true "Comment or reply ID"
// @Param        request body dto.LikeRequest false "Target kind"
// @Success      200 {object} response.SuccessResponse{data=dto.ThreadResponse}
// @Failure      400 {object} response.ErrorResponse "parentId missing for a reply"
// @Failure      401 {object} response.ErrorResponse "Login required"
// @Failure      404 {object} response.ErrorResponse "Unknown comment"
// @Router       /threads/{postId}/comments/{id}/like [post]
func (h *ThreadHandler) ToggleLike(c *gin.Context) {
	vm, ok := h.viewModel(c)
	if !ok {
		return
	}
	id, ok := commentID(c)
	if !ok {
		return
	}
	var req dto.LikeRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.SendError(c, http.StatusBadRequest, response.ErrCodeValidation, "Invalid request body")
			return
		}
	}
	if req.IsReply && req.ParentID <= 0 {
		response.SendError(c, http.StatusBadRequest, response.ErrCodeValidation, "parentId is required for a reply")
		return
	}
	thread, err := vm.ToggleLike(c.Request.Context(), id, req.IsReply, req.ParentID)
	h.respond(c, http.StatusOK, thread, err)
}

// Stream godoc
// @Summary      Thread snapshots
// @Description  WebSocket. Sends the thread on connect, then every new snapshot. A slow client only receives the latest one.
// @Tags         threads
// @Param        postId path int true "Post ID"
// @Success      101 "Switching Protocols"
// @Failure      401 {object} response.ErrorResponse "Login required"
// @Router       /threads/{postId}/stream [get]
func (h *ThreadHandler) Stream(c *gin.Context) {
	vm, ok := h.viewModel(c)
	if !ok {
		return
	}

	thread, err := vm.Load(c.Request.Context())
	if err != nil {
		handleServiceError(c, h.logger, err)
		return
	}
	updates, cancel, err := vm.Subscribe(c.Request.Context())
	if err != nil {
		handleServiceError(c, h.logger, err)
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		cancel()
		h.logger.Error("WebSocket upgrade failed", zap.Error(err))
		return
	}

	h.logger.Info("Thread stream opened", zap.Int64("postId", vm.PostID()))
	go h.readPump(conn, cancel)
	h.writePump(conn, thread, updates, cancel)
	h.logger.Info("Thread stream closed", zap.Int64("postId", vm.PostID()))
}

// readPump discards client frames and cancels the subscription when the peer goes away
func (h *ThreadHandler) readPump(conn *websocket.Conn, cancel func()) {
	defer cancel()

	conn.SetReadLimit(maxMessageSize)
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.logger.Warn("Thread stream read error", zap.Error(err))
			}
			return
		}
	}
}

func (h *ThreadHandler) writePump(conn *websocket.Conn, first domain.Thread, updates <-chan domain.Thread, cancel func()) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		cancel()
		conn.Close()
	}()

	conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := conn.WriteJSON(dto.NewThreadResponse(first)); err != nil {
		return
	}

	for {
		select {
		case thread, ok := <-updates:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := conn.WriteJSON(dto.NewThreadResponse(thread)); err != nil {
				return
			}
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
