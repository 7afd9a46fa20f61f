package shared

import "fmt"

type ApiErrorType string

const (
	// request never reached the server
	ApiErrorTypeNetwork ApiErrorType = "network"

	ApiErrorTypeBadRequest ApiErrorType = "bad_request"

	// 5xx; the backend sleeps when idle and cold starts slowly
	ApiErrorTypeServerTransient ApiErrorType = "server_transient"

	// 2xx response carrying success=false
	ApiErrorTypeServerLogical ApiErrorType = "server_logical"

	// response body didn't match the expected shape
	ApiErrorTypeDataFormat ApiErrorType = "data_format"

	ApiErrorTypeOther ApiErrorType = "other"
)

type ApiError struct {
	Type   ApiErrorType `json:"type"`
	Status int          `json:"status"`
	Msg    string       `json:"msg"`
}

func (e *ApiError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s (status %d): %s", e.Type, e.Status, e.Msg)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Msg)
}

func (e *ApiError) IsRetryable() bool {
	return e.Type == ApiErrorTypeNetwork || e.Type == ApiErrorTypeServerTransient
}
