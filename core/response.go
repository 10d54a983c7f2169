package core

import "encoding/json"

type Status string

const (
	StatusSuccess Status = "Success"
	StatusFailure Status = "Failure"
)

// Response is the envelope every endpoint answers with:
//
//	{ status: "Success" | "Failure", data?, message?, error? }
//
// Success envelopes always carry data (possibly null). Failure envelopes
// never do.
type Response struct {
	Status  Status `json:"status"`
	Data    any    `json:"data,omitempty"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

func Success(data any, message string) Response {
	return Response{Status: StatusSuccess, Data: data, Message: message}
}

func Failure(err string) Response {
	return Response{Status: StatusFailure, Error: err}
}

func (r Response) MarshalJSON() ([]byte, error) {
	if r.Status == StatusFailure {
		return json.Marshal(struct {
			Status  Status `json:"status"`
			Message string `json:"message,omitempty"`
			Error   string `json:"error,omitempty"`
		}{r.Status, r.Message, r.Error})
	}

	return json.Marshal(struct {
		Status  Status `json:"status"`
		Data    any    `json:"data"`
		Message string `json:"message,omitempty"`
	}{r.Status, r.Data, r.Message})
}
