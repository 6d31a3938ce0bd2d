package utils

import (
	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/restaurant-backoffice/models"
)

// JSONResponse is the envelope of every gateway answer. Redirect is set when
// the dashboard must navigate away, as on an expired session.
type JSONResponse struct {
	Status   bool           `json:"status"`
	Message  string         `json:"message"`
	Data     interface{}    `json:"data,omitempty"`
	Notice   *models.Notice `json:"notice,omitempty"`
	Error    string         `json:"error,omitempty"`
	Redirect string         `json:"redirect,omitempty"`
}

func RespondJSON(c *gin.Context, code int, message string, data interface{}) {
	c.JSON(code, JSONResponse{
		Status:  code >= 200 && code < 300,
		Message: message,
		Data:    data,
	})
}

// RespondNotice answers a mutation with a toast for the dashboard.
func RespondNotice(c *gin.Context, code int, notice models.Notice, data interface{}) {
	c.JSON(code, JSONResponse{
		Status:  code >= 200 && code < 300,
		Message: notice.Message,
		Data:    data,
		Notice:  &notice,
	})
}

func RespondError(c *gin.Context, code int, err error) {
	c.JSON(code, JSONResponse{
		Status:  false,
		Message: err.Error(),
		Data:    nil,
		Error:   err.Error(),
	})
}

// RespondErrorData is RespondError with a payload, such as field errors.
func RespondErrorData(c *gin.Context, code int, message string, data interface{}) {
	notice := models.ErrorNotice(message)
	c.JSON(code, JSONResponse{
		Status:  false,
		Message: message,
		Data:    data,
		Notice:  &notice,
		Error:   message,
	})
}

// RespondRedirect rejects a request and tells the dashboard where to go.
func RespondRedirect(c *gin.Context, code int, message, redirect string) {
	c.AbortWithStatusJSON(code, JSONResponse{
		Status:   false,
		Message:  message,
		Error:    message,
		Redirect: redirect,
	})
}
