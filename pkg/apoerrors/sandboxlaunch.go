package apoerrors

import (
	"fmt"
)

// SandboxLaunch is returned when the verification container could not be
// created or started at all, e.g. missing runtime or missing image.
type SandboxLaunch GenericError

func NewSandboxLaunch(image string, cause error) *SandboxLaunch {
	var e SandboxLaunch
	e.Code = ErrorCodeSandboxLaunch
	e.Message = fmt.Sprintf(ErrorMessageSandboxLaunch, image)
	e.Details = map[string]interface{}{"Image": image}
	e.Err = cause
	return &e
}

func (e *SandboxLaunch) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s", e.Message, e.Err)
	}
	return e.Message
}

func (e *SandboxLaunch) Unwrap() error {
	return e.Err
}

func (e *SandboxLaunch) GetCode() string {
	return ErrorCodeSandboxLaunch
}

func (e *SandboxLaunch) GetMessage() string {
	return e.Message
}

func (e *SandboxLaunch) GetDetails() map[string]interface{} {
	return e.Details
}

const (
	ErrorCodeSandboxLaunch = "error-sandbox-launch"

	ErrorMessageSandboxLaunch = "Unable to launch verification sandbox %s"
)

var _ ApodeixisErrorInterface = (*SandboxLaunch)(nil)
