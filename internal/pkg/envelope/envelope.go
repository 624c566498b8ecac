// Package envelope implements the uniform response wrapper every
// orchestrator operation returns: a success/fail flag, an HTTP-like status,
// user-facing and developer-facing messages, the result payload, and a
// running trail of messages appended across the call chain.
package envelope

import (
	"errors"
	"net/http"
	"time"

	"github.com/light-bringer/catalog-service/internal/app/catalog/domain"
)

// Message is one entry of the operation trail. Layers append entries;
// nothing ever rewrites or reorders them.
type Message struct {
	Process    string    `json:"process"`
	Type       string    `json:"type"`
	Status     int       `json:"status"`
	MessageUSR string    `json:"messageUSR"`
	MessageDEV string    `json:"messageDEV"`
	Timestamp  time.Time `json:"timestamp"`
}

// Message types.
const (
	TypeOK   = "OK"
	TypeFail = "FAIL"
)

// Bitacora is the response envelope.
type Bitacora struct {
	Success     bool      `json:"success"`
	Status      int       `json:"status"`
	Process     string    `json:"process"`
	ProcessType string    `json:"processType"`
	LoggedUser  string    `json:"loggedUser"`
	DBServer    string    `json:"dbServer"`
	API         string    `json:"api,omitempty"`
	MessageUSR  string    `json:"messageUSR"`
	MessageDEV  string    `json:"messageDEV"`
	DataRes     any       `json:"dataRes"`
	FinalRes    bool      `json:"finalRes"`
	Messages    []Message `json:"messages"`
}

// New creates an empty envelope.
func New() *Bitacora {
	return &Bitacora{Messages: []Message{}}
}

// AddMessage appends one entry to the trail and mirrors it on the
// envelope's top-level fields, so the last appended message is the one a
// caller sees first.
func (b *Bitacora) AddMessage(process string, typ string, status int, messageUSR, messageDEV string) *Bitacora {
	b.Process = process
	b.Status = status
	b.Success = typ == TypeOK
	b.MessageUSR = messageUSR
	b.MessageDEV = messageDEV
	b.Messages = append(b.Messages, Message{
		Process:    process,
		Type:       typ,
		Status:     status,
		MessageUSR: messageUSR,
		MessageDEV: messageDEV,
		Timestamp:  time.Now().UTC(),
	})
	return b
}

// OK marks the envelope successful with the given result payload.
func (b *Bitacora) OK(process, messageUSR string, data any) *Bitacora {
	b.DataRes = data
	b.FinalRes = true
	return b.AddMessage(process, TypeOK, http.StatusOK, messageUSR, "operation completed")
}

// Fail marks the envelope failed with an explicit status.
func (b *Bitacora) Fail(process string, status int, messageUSR, messageDEV string) *Bitacora {
	b.FinalRes = true
	return b.AddMessage(process, TypeFail, status, messageUSR, messageDEV)
}

// FailErr marks the envelope failed, deriving the status and user-facing
// message from the error taxonomy.
func (b *Bitacora) FailErr(process string, err error) *Bitacora {
	status, messageUSR := Classify(err)
	return b.Fail(process, status, messageUSR, err.Error())
}

// Classify maps an error to the envelope status and a user-safe message.
// Validation failures and key conflicts are 400 (conflicts are 400 rather
// than 409 by convention of this system), missing records 404, an unknown
// backend selector and anything unexpected 500.
func Classify(err error) (int, string) {
	switch {
	case domain.IsValidation(err):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, domain.ErrDuplicateKey):
		return http.StatusBadRequest, "a record with that key already exists"
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, "the requested record was not found"
	case errors.Is(err, domain.ErrUnsupportedBackend):
		return http.StatusInternalServerError, "the requested storage backend is not available"
	default:
		return http.StatusInternalServerError, "an unexpected error occurred"
	}
}
