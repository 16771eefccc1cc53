package apoerrors

import (
	"fmt"
)

// ProtocolViolation marks a submission the node must never make, e.g. a
// reveal without a settled commit. Guarded locally, before any network call.
type ProtocolViolation GenericError

func NewProtocolViolation(msg string) *ProtocolViolation {
	var e ProtocolViolation
	e.Code = ErrorCodeProtocolViolation
	e.Message = fmt.Sprintf(ErrorMessageProtocolViolation, msg)
	e.Details = make(map[string]interface{})
	e.Err = fmt.Errorf("%s", e.Message)
	return &e
}

func (e *ProtocolViolation) Error() string {
	return e.Message
}

func (e *ProtocolViolation) GetCode() string {
	return ErrorCodeProtocolViolation
}

func (e *ProtocolViolation) GetMessage() string {
	return e.Message
}

func (e *ProtocolViolation) GetDetails() map[string]interface{} {
	return e.Details
}

const (
	ErrorCodeProtocolViolation = "error-protocol-violation"

	ErrorMessageProtocolViolation = "Protocol violation: %s"
)

var _ ApodeixisErrorInterface = (*ProtocolViolation)(nil)
