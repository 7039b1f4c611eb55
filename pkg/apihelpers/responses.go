package apihelpers

// ErrorResponse is the JSON error payload of the survey API. Trace carries
// the request's rolling diagnostic log when debug responses are enabled.
type ErrorResponse struct {
	Error string   `json:"error"`
	Trace []string `json:"trace,omitempty"`
}
