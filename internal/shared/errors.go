package shared

import (
	"errors"
	"fmt"
)

// RequestError is used when we want a specific error message and StatusCode.
// Sane defaults are listed below. For failures that need custom error messages,
// a request error can be generated at the call site and the handler expects the
// boundary to return the exact message inside the request error msg.
//
// Error codes should be bubbled where the RequestError msg is expected to be
// returned to the user. If the user should see a generic error message but
// the error chain should include more detail for logging purposes, then a generic
// error should be added that provides context
type RequestError struct {
	StatusCode int
	Err        error
}

func (r *RequestError) Error() string {
	return fmt.Sprintf("status %d: err %v", r.StatusCode, r.Err)
}

var (
	ErrMissingAuth   = &RequestError{Err: errors.New("missing authorization header"), StatusCode: 401}
	ErrInvalidFormat = &RequestError{Err: errors.New("invalid authentication format"), StatusCode: 401}

	ErrInvalidRequest = &RequestError{Err: errors.New("invalid request body"), StatusCode: 400}
	ErrMissingImage   = &RequestError{Err: errors.New("image is required"), StatusCode: 400}

	ErrInternalServerError = &RequestError{Err: errors.New("internal server error"), StatusCode: 500}

	ErrImageDecode     = &MetricsError{Msg: "invalid base64 image data", Code: "image_decode_err"}
	ErrImageUnreadable = &MetricsError{Msg: "decoded bytes are not a readable image", Code: "image_unreadable_err"}
	ErrImageFormat     = &MetricsError{Msg: "image format not allowed", Code: "image_format_err"}
	ErrImageTooLarge   = &MetricsError{Msg: "image exceeds pixel limit", Code: "image_too_large_err"}

	ErrModelUnreachable = &MetricsError{Msg: "failed to send http request to model", Code: "model_http_err"}
	ErrModelAuth        = &MetricsError{Msg: "model rejected credentials", Code: "model_auth_err"}
	ErrModelRateLimited = &MetricsError{Msg: "model rate limited the request", Code: "model_rate_limit_err"}
	ErrModelStatus      = &MetricsError{Msg: "model responded with non-200", Code: "model_http_status_err"}
	ErrModelReply       = &MetricsError{Msg: "model reply did not match expected schema", Code: "model_reply_err"}
)

// MetricsError tags a failure class with a stable code for metric labels.
// User facing text lives on the RequestError it is joined with.
type MetricsError struct {
	Msg  string
	Code string
}

func (m *MetricsError) Error() string {
	return m.String()
}

func (m *MetricsError) String() string {
	return m.Msg
}
