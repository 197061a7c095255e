package transport

import "encoding/json"

// Envelope is the response wrapper every endpoint uses: exactly one of
// Data or Error is set. Clients check for Error; Data being absent means
// the call failed.
type Envelope struct {
	Data  interface{} `json:"data,omitempty"`
	Error *ErrorBody  `json:"error,omitempty"`
}

// ErrorBody carries the machine code and the human message.
type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// NewSuccess returns a data envelope.
func NewSuccess(data interface{}) Envelope {
	return Envelope{Data: data}
}

// NewError returns an error envelope.
func NewError(code, message string) Envelope {
	return Envelope{Error: &ErrorBody{Code: code, Message: message}}
}

// String returns the JSON representation (best-effort) for logging purposes.
func (e Envelope) String() string {
	out, err := json.Marshal(e)
	if err != nil {
		return "{}"
	}
	return string(out)
}
