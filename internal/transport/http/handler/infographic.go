package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"pdfchatbot/internal/app"
	"pdfchatbot/internal/transport/http/response"
)

type InfographicGenerator interface {
	Generate(ctx context.Context, conversationText string) (string, error)
}

type InfographicRequest struct {
	ConversationText string `json:"conversationText"`
}

type InfographicResponse struct {
	ImageURL string `json:"imageUrl"`
}

type InfographicHandler struct {
	images InfographicGenerator
}

func NewInfographicHandler(images InfographicGenerator) *InfographicHandler {
	return &InfographicHandler{images: images}
}

func (h *InfographicHandler) Generate(c *gin.Context) {
	var req InfographicRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "Invalid request payload", err.Error())
		return
	}

	url, err := h.images.Generate(c.Request.Context(), req.ConversationText)
	if err != nil {
		_ = c.Error(err)
		if errors.Is(err, app.ErrInvalidInput) {
			response.Error(c, http.StatusBadRequest, "Conversation text is required", err.Error())
			return
		}
		response.Error(c, http.StatusInternalServerError, "Error generating image", err.Error())
		return
	}
	response.OK(c, InfographicResponse{ImageURL: url})
}
