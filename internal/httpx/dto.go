package httpx

import "encoding/json"

// RequestEnvelope is the body shape every write endpoint expects.
type RequestEnvelope struct {
	Data json.RawMessage `json:"data"`
}

// DataResponse wraps a record or a list of records.
type DataResponse struct {
	Data any `json:"data"`
}

// ErrorResponse is written for every rejected request.
type ErrorResponse struct {
	Status  int    `json:"status"`
	Message string `json:"message"`
}
