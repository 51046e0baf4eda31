package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// ErrorBody is the JSON error shape of the infographic endpoint.
type ErrorBody struct {
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

type UploadBody struct {
	Success    bool   `json:"success"`
	Message    string `json:"message"`
	DocumentID string `json:"documentId"`
	Chunks     int    `json:"chunks"`
}

func OK(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, data)
}

// Text writes a plain-text body, the error shape of /upload and /answer.
func Text(c *gin.Context, httpStatus int, message string) {
	c.String(httpStatus, message)
}

func Error(c *gin.Context, httpStatus int, message, details string) {
	c.JSON(httpStatus, ErrorBody{
		Message: message,
		Details: details,
	})
}
