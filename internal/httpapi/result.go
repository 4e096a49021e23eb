package httpapi

// ErrorResult is the error envelope the data-entry pages expect: a success
// flag plus a human-readable message. Successful responses reuse the service
// result types directly, which carry the same envelope shape.
type ErrorResult struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

func Fail(message string) ErrorResult {
	return ErrorResult{Success: false, Error: message}
}
