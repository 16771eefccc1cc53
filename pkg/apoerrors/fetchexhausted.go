package apoerrors

import (
	"fmt"
)

// FetchExhausted is returned when every candidate gateway failed to serve an
// artifact. Fatal to the task being processed, never to the node.
type FetchExhausted GenericError

func NewFetchExhausted(cid string, cause error) *FetchExhausted {
	var e FetchExhausted
	e.Code = ErrorCodeFetchExhausted
	e.Message = fmt.Sprintf(ErrorMessageFetchExhausted, cid)
	e.Details = map[string]interface{}{"CID": cid}
	e.Err = cause
	return &e
}

func (e *FetchExhausted) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s", e.Message, e.Err)
	}
	return e.Message
}

func (e *FetchExhausted) Unwrap() error {
	return e.Err
}

func (e *FetchExhausted) GetCode() string {
	return ErrorCodeFetchExhausted
}

func (e *FetchExhausted) GetMessage() string {
	return e.Message
}

func (e *FetchExhausted) GetDetails() map[string]interface{} {
	return e.Details
}

const (
	ErrorCodeFetchExhausted = "error-fetch-exhausted"

	ErrorMessageFetchExhausted = "All gateways failed for artifact %s"
)

var _ ApodeixisErrorInterface = (*FetchExhausted)(nil)
