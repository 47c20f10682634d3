package runtime

import (
	"context"
	"errors"
	"fmt"
)

// ErrorType classifies error severity and retry behavior.
type ErrorType string

const (
	// ErrorTypeTransient signals the operation can be retried.
	ErrorTypeTransient ErrorType = "transient"
	// ErrorTypePermanent signals the operation should not be retried.
	ErrorTypePermanent ErrorType = "permanent"
	// ErrorTypeTimeout signals the operation was cancelled by a deadline.
	ErrorTypeTimeout ErrorType = "timeout"
)

// Error codes shared by the runtime and node plugins. Plugins may use any
// other string.
const (
	ErrorCodeRuntimeError           = "RUNTIME_ERROR"
	ErrorCodeContextCancelled       = "CONTEXT_CANCELLED"
	ErrorCodeDeadlineExceeded       = "DEADLINE_EXCEEDED"
	ErrorCodeValidation             = "VALIDATION_ERROR"
	ErrorCodeAuthenticationRequired = "AUTHENTICATION_REQUIRED"
	ErrorCodeUnsupportedOperation   = "UNSUPPORTED_OPERATION"
	ErrorCodeTransport              = "TRANSPORT_ERROR"
	ErrorCodeUnknownNode            = "UNKNOWN_NODE"
)

// NodeOperationError is the error returned for a node execution that is not
// running in continue-on-fail mode. It is JSON-serializable so the HTTP
// entrypoint can return it as is.
type NodeOperationError struct {
	Type    ErrorType `json:"type"`
	Code    string    `json:"code"`
	Message string    `json:"message"`
	Node    string    `json:"node"`
	Item    int       `json:"item"`
	Cause   error     `json:"-"`
}

func (e *NodeOperationError) Error() string {
	return fmt.Sprintf("[%s/%s] %s (node: %s, item: %d)", e.Type, e.Code, e.Message, e.Node, e.Item)
}

func (e *NodeOperationError) Unwrap() error {
	return e.Cause
}

// NewNodeOperationError classifies err for node at item.
func NewNodeOperationError(node string, item int, err error) *NodeOperationError {
	var existing *NodeOperationError
	if errors.As(err, &existing) {
		return existing
	}

	return &NodeOperationError{
		Type:    classifyError(err),
		Code:    errorCode(err),
		Message: err.Error(),
		Node:    node,
		Item:    item,
		Cause:   err,
	}
}

// ToMap converts the error to a map suitable for item output.
func (e *NodeOperationError) ToMap() map[string]any {
	return map[string]any{
		"type":    string(e.Type),
		"code":    e.Code,
		"message": e.Message,
		"node":    e.Node,
		"item":    e.Item,
	}
}

type coder interface {
	ErrorCode() string
}

type temporary interface {
	Temporary() bool
}

func errorCode(err error) string {
	var c coder
	if errors.As(err, &c) {
		return c.ErrorCode()
	}
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return ErrorCodeDeadlineExceeded
	case errors.Is(err, context.Canceled):
		return ErrorCodeContextCancelled
	}
	return ErrorCodeRuntimeError
}

func classifyError(err error) ErrorType {
	if errors.Is(err, context.DeadlineExceeded) {
		return ErrorTypeTimeout
	}
	var t temporary
	if errors.As(err, &t) && t.Temporary() {
		return ErrorTypeTransient
	}
	return ErrorTypePermanent
}
