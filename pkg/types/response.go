package types

// Envelope is the single response shape for every endpoint. Status mirrors
// the HTTP status code written with it.
type Envelope struct {
	Status  int    `json:"status"`
	Message string `json:"message"`
	Data    any    `json:"data"`
	Code    string `json:"code,omitempty"`
	Details any    `json:"details,omitempty"`
}
