package eip1193

import (
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/rpc"
)

// Standard provider error codes.
const (
	CodeRejectedRequest   = 4001
	CodeUnauthorized      = 4100
	CodeUnsupportedMethod = 4200
	CodeDisconnected      = 4900
	CodeChainDisconnected = 4901
)

// ProviderRpcError is the only error shape surfaced to callers.
type ProviderRpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

func (e *ProviderRpcError) Error() string {
	return fmt.Sprintf("%s (code %d)", e.Message, e.Code)
}

// ErrorCode and ErrorData let the error travel through go-ethereum rpc
// servers unchanged.
func (e *ProviderRpcError) ErrorCode() int { return e.Code }

func (e *ProviderRpcError) ErrorData() any { return e.Data }

// Is matches any ProviderRpcError with the same code, so callers can write
// errors.Is(err, eip1193.ErrUnsupportedMethod).
func (e *ProviderRpcError) Is(target error) bool {
	t, ok := target.(*ProviderRpcError)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

var (
	ErrRejectedRequest   = &ProviderRpcError{Code: CodeRejectedRequest, Message: "The user rejected the request."}
	ErrUnauthorized      = &ProviderRpcError{Code: CodeUnauthorized, Message: "The requested method and/or account has not been authorized by the user."}
	ErrUnsupportedMethod = &ProviderRpcError{Code: CodeUnsupportedMethod, Message: "The Provider does not support the requested method."}
	ErrDisconnected      = &ProviderRpcError{Code: CodeDisconnected, Message: "The Provider is disconnected from all chains."}
	ErrChainDisconnected = &ProviderRpcError{Code: CodeChainDisconnected, Message: "The Provider is not connected to the requested chain."}
)

func NewUnsupportedMethodError(method Method) *ProviderRpcError {
	return &ProviderRpcError{
		Code:    CodeUnsupportedMethod,
		Message: fmt.Sprintf("The Provider does not support the requested method: %s", method),
		Data:    map[string]any{"method": string(method)},
	}
}

func NewDisconnectedError(reason string) *ProviderRpcError {
	msg := ErrDisconnected.Message
	if reason != "" {
		msg = reason
	}
	return &ProviderRpcError{Code: CodeDisconnected, Message: msg}
}

// AsRpcError extracts the code, message and data of err without rewriting
// them. It understands ProviderRpcError and go-ethereum rpc.Error /
// rpc.DataError values; ok is false for anything else.
func AsRpcError(err error) (*ProviderRpcError, bool) {
	if err == nil {
		return nil, false
	}
	var perr *ProviderRpcError
	if errors.As(err, &perr) {
		return perr, true
	}
	var rerr rpc.Error
	if errors.As(err, &rerr) {
		out := &ProviderRpcError{Code: rerr.ErrorCode(), Message: rerr.Error()}
		var derr rpc.DataError
		if errors.As(err, &derr) {
			out.Data = derr.ErrorData()
		}
		return out, true
	}
	return nil, false
}
