package sdk

import "fmt"

// APIError is a non-2xx response from the server.
type APIError struct {
	StatusCode int    `json:"-"`
	Code       string `json:"code"`
	Message    string `json:"message"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("towersearch: %d %s: %s", e.StatusCode, e.Code, e.Message)
}
