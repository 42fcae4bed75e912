// Package tools exposes the canvas operations as a flat, name-addressed
// catalog with a uniform result envelope, for callers that dispatch by tool
// name rather than by HTTP route.
package tools

import (
	"context"
	"errors"

	"github.com/yungbote/bmc-backend/internal/apierr"
)

type Tool interface {
	Name() string
	Description() string
	// Schema describes the accepted arguments as a JSON-schema style map.
	Schema() map[string]interface{}
	Execute(ctx context.Context, args map[string]interface{}) *Result
}

type Result struct {
	Success bool         `json:"success"`
	Data    interface{}  `json:"data,omitempty"`
	Error   *ResultError `json:"error,omitempty"`
}

type ResultError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func OK(data interface{}) *Result {
	return &Result{Success: true, Data: data}
}

func Fail(code apierr.Code, message string) *Result {
	return &Result{Success: false, Error: &ResultError{Code: string(code), Message: message}}
}

// FailErr maps a service error onto the envelope, keeping the typed code
// when there is one.
func FailErr(err error) *Result {
	code := apierr.CodeOf(err)
	message := err.Error()
	var ae *apierr.Error
	if errors.As(err, &ae) && ae.Message != "" {
		message = ae.Message
	}
	return Fail(code, message)
}
