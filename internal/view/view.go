package view

// Response is the envelope every endpoint returns.
type Response[T any] struct {
	Data    T      `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
	Message string `json:"message,omitempty"`
}

// ErrorResponse and MessageResponse only exist to give the API docs
// concrete schemas; handlers always go through CreateResponse.
type ErrorResponse struct {
	Error string `json:"error"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

// CreateResponse builds the envelope. The request argument is accepted for
// call-site symmetry and future request echoing; it is not serialized.
func CreateResponse[T any](data T, err error, _ any, message string) Response[T] {
	resp := Response[T]{
		Data:    data,
		Message: message,
	}
	if err != nil {
		resp.Error = err.Error()
	}
	return resp
}
