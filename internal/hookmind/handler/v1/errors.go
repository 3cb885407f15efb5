package v1

import (
	"errors"
	"net/http"

	"github.com/kiosk404/hookmind/internal/hookmind/service/plugin"
	"github.com/kiosk404/hookmind/pkg/errorx"
)

// Hookmind handler error codes.
// Code format: 1XXYYZ
//   - 1:  module prefix (hookmind handler)
//   - XX: resource group (00=common, 01=plugin, 02=hook, 03=lifecycle log)
//   - YY: sequential error number
//   - Z:  reserved (0)

const (
	// Common request errors (100xxx).
	ErrBind       = 100001
	ErrValidation = 100002

	// Plugin errors (1001xx).
	ErrPluginNotFound  = 100101
	ErrPluginConflict  = 100102
	ErrPluginInvalid   = 100103
	ErrPluginOperation = 100104

	// Hook errors (1002xx).
	ErrEventUnknown   = 100201
	ErrHandlerFailed  = 100202
	ErrDispatchFailed = 100203

	// Lifecycle log errors (1003xx).
	ErrLifecycleList = 100301
)

func init() {
	// Common.
	errorx.MustRegister(newCoder(ErrBind, http.StatusBadRequest, "Request body binding failed"))
	errorx.MustRegister(newCoder(ErrValidation, http.StatusBadRequest, "Request validation failed"))

	// Plugin.
	errorx.MustRegister(newCoder(ErrPluginNotFound, http.StatusNotFound, "Plugin not found"))
	errorx.MustRegister(newCoder(ErrPluginConflict, http.StatusConflict, "Plugin state conflict"))
	errorx.MustRegister(newCoder(ErrPluginInvalid, http.StatusUnprocessableEntity, "Plugin definition is invalid"))
	errorx.MustRegister(newCoder(ErrPluginOperation, http.StatusInternalServerError, "Plugin operation failed"))

	// Hook.
	errorx.MustRegister(newCoder(ErrEventUnknown, http.StatusNotFound, "Unknown event"))
	errorx.MustRegister(newCoder(ErrHandlerFailed, http.StatusUnprocessableEntity, "Hook handler failed"))
	errorx.MustRegister(newCoder(ErrDispatchFailed, http.StatusInternalServerError, "Dispatch failed"))

	// Lifecycle log.
	errorx.MustRegister(newCoder(ErrLifecycleList, http.StatusInternalServerError, "Failed to list lifecycle events"))
}

type coder struct {
	code int
	http int
	msg  string
}

func newCoder(code, httpStatus int, msg string) *coder {
	return &coder{code: code, http: httpStatus, msg: msg}
}

func (c *coder) Code() int         { return c.code }
func (c *coder) HTTPStatus() int   { return c.http }
func (c *coder) String() string    { return c.msg }
func (c *coder) Reference() string { return "" }

// pluginCode maps a registry error to its handler code.
func pluginCode(err error) int {
	var (
		orderErr *plugin.LifecycleOrderError
		parseErr *plugin.MetadataParseError
		declErr  *plugin.InvalidHookDeclarationError
	)
	switch {
	case errors.Is(err, plugin.ErrPluginNotFound):
		return ErrPluginNotFound
	case errors.As(err, &orderErr),
		errors.Is(err, plugin.ErrSlotOccupied),
		errors.Is(err, plugin.ErrSlotDisabled),
		errors.Is(err, plugin.ErrAlreadyLoaded):
		return ErrPluginConflict
	case errors.As(err, &parseErr), errors.As(err, &declErr):
		return ErrPluginInvalid
	default:
		return ErrPluginOperation
	}
}
