// Package core holds the response envelope shared by the HTTP handlers.
package core

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kiosk404/hookmind/pkg/errorx"
	"github.com/kiosk404/hookmind/pkg/logger"
)

// ErrResponse defines the return messages when an error occurred.
type ErrResponse struct {
	// Code defines the business error code.
	Code int `json:"code"`

	// Message contains the detail of this message.
	Message string `json:"message"`

	// Reference returns the reference document which maybe useful to solve this error.
	Reference string `json:"reference,omitempty"`
}

// WriteResponse writes an error or the response data into the http response
// body. It uses errorx.ParseCoder to map any error to its registered code.
func WriteResponse(c *gin.Context, err error, data interface{}) {
	if err != nil {
		coder := errorx.ParseCoder(err)
		if coder.HTTPStatus() >= http.StatusInternalServerError {
			logger.Error("[API] %s %s: %v", c.Request.Method, c.Request.URL.Path, err)
		} else {
			logger.Debug("[API] %s %s: %v", c.Request.Method, c.Request.URL.Path, err)
		}
		c.JSON(coder.HTTPStatus(), ErrResponse{
			Code:      coder.Code(),
			Message:   coder.String() + ": " + err.Error(),
			Reference: coder.Reference(),
		})
		return
	}

	c.JSON(http.StatusOK, data)
}
