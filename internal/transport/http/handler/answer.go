package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"pdfchatbot/internal/app"
	"pdfchatbot/internal/transport/http/response"
)

const noQuestionMessage = "No question provided."

type Answerer interface {
	Answer(ctx context.Context, question string) (*app.AnswerResult, error)
}

type AnswerRequest struct {
	UserQuery string `json:"userQuery"`
}

type AnswerHandler struct {
	answers Answerer
}

func NewAnswerHandler(answers Answerer) *AnswerHandler {
	return &AnswerHandler{answers: answers}
}

func (h *AnswerHandler) Answer(c *gin.Context) {
	var req AnswerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Text(c, http.StatusBadRequest, noQuestionMessage)
		return
	}

	result, err := h.answers.Answer(c.Request.Context(), req.UserQuery)
	if err != nil {
		_ = c.Error(err)
		if errors.Is(err, app.ErrInvalidInput) {
			response.Text(c, http.StatusBadRequest, noQuestionMessage)
			return
		}
		response.Text(c, http.StatusInternalServerError, err.Error())
		return
	}
	response.OK(c, result)
}
