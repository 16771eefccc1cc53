package apoerrors

// ApodeixisErrorInterface is implemented by every typed error in this
// package so callers can branch on the code without knowing the kind.
type ApodeixisErrorInterface interface {
	Error() string
	GetCode() string
	GetMessage() string
	GetDetails() map[string]interface{}
}

type GenericError struct {
	Code    string                 `json:"Code"`
	Message string                 `json:"Message"`
	Details map[string]interface{} `json:"Details"`
	Err     error                  `json:"-"`
}
