package apoerrors

import (
	"fmt"
)

// TransientNetwork wraps ledger or gateway hiccups that are retried at the
// loop or fetch level and are never fatal to the process.
type TransientNetwork GenericError

func NewTransientNetwork(operation string, cause error) *TransientNetwork {
	var e TransientNetwork
	e.Code = ErrorCodeTransientNetwork
	e.Message = fmt.Sprintf(ErrorMessageTransientNetwork, operation)
	e.Details = map[string]interface{}{"Operation": operation}
	e.Err = cause
	return &e
}

func (e *TransientNetwork) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s", e.Message, e.Err)
	}
	return e.Message
}

func (e *TransientNetwork) Unwrap() error {
	return e.Err
}

func (e *TransientNetwork) GetCode() string {
	return ErrorCodeTransientNetwork
}

func (e *TransientNetwork) GetMessage() string {
	return e.Message
}

func (e *TransientNetwork) GetDetails() map[string]interface{} {
	return e.Details
}

const (
	ErrorCodeTransientNetwork = "error-transient-network"

	ErrorMessageTransientNetwork = "Transient network failure during %s"
)

var _ ApodeixisErrorInterface = (*TransientNetwork)(nil)
