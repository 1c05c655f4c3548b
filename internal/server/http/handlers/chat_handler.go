package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/polkiloo/prowriters/internal/server/http/dto"
	"github.com/polkiloo/prowriters/internal/server/http/middleware"
)

// ChatHandler serves order conversations over HTTP and websocket.
type ChatHandler struct {
	facade ChatFacade
	logger *slog.Logger
}

// NewChatHandler constructs ChatHandler.
func NewChatHandler(facade ChatFacade, logger *slog.Logger) *ChatHandler {
	return &ChatHandler{facade: facade, logger: logger}
}

// History handles GET /api/orders/:id/messages.
func (h *ChatHandler) History(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	entries, err := h.facade.ChatHistory(c.Request.Context(), CurrentPrincipal(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	response := make([]dto.MessageResponse, 0, len(entries))
	for i := range entries {
		response = append(response, toMessageResponse(&entries[i]))
	}
	c.JSON(http.StatusOK, response)
}

// Post handles POST /api/orders/:id/messages.
func (h *ChatHandler) Post(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req dto.MessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.AbortWithError(c, http.StatusBadRequest, "invalid request body")
		return
	}
	entry, err := h.facade.PostMessage(c.Request.Context(), CurrentPrincipal(c), id, req.Text)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toMessageResponse(entry))
}

// Connect handles GET /ws/orders/:id/chat. Access is checked before the
// upgrade so refused callers get a plain HTTP error.
func (h *ChatHandler) Connect(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	participant, err := h.facade.JoinChat(c.Request.Context(), CurrentPrincipal(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	// the upgrader has already answered the request when Serve fails
	if err := h.facade.ServeChat(c.Writer, c.Request, participant); err != nil {
		h.logger.Debug("chat session ended",
			slog.Int64("order_id", id),
			slog.String("error", err.Error()),
		)
	}
	c.Abort()
}
