package types

const (
	// CodeSuccess is the envelope code of every successful response
	CodeSuccess = 0
	// CodeFailure is the envelope code used by transports that report errors in-band
	CodeFailure = 1

	messageSuccess = "success"
)

// Response is the envelope returned to external callers
type Response[T any] struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    *T     `json:"data"`
}

// Success wraps data in a success envelope
func Success[T any](data T) Response[T] {
	return Response[T]{
		Code:    CodeSuccess,
		Message: messageSuccess,
		Data:    &data,
	}
}

// Failure builds an error envelope carrying a single textual message
func Failure(message string) Response[any] {
	return Response[any]{
		Code:    CodeFailure,
		Message: message,
	}
}
