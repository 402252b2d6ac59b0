package apimodel

// ErrorResponse is the body the backend returns with any non-2xx status
type ErrorResponse struct {
	Detail string `json:"detail"`
}
