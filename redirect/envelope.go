package redirect

import (
	"net/http"

	apperrors "github.com/kbukum/socialauth/errors"
)

// Status is the outcome carried by an Envelope.
type Status string

const (
	StatusSuccess Status = "success"
	StatusError   Status = "error"
)

// emptyResponse is the error text of an envelope built from an empty URL.
const emptyResponse = "empty response"

// Envelope is the message relayed from the login window to the opener.
type Envelope struct {
	Status Status `json:"status"`
	Params Params `json:"params"`
	Error  string `json:"error,omitempty"`
}

// NewEnvelope parses location and wraps the result.
func NewEnvelope(location string) (Envelope, error) {
	p, err := Parse(location)
	if err != nil {
		return Envelope{}, err
	}
	return EnvelopeFor(p), nil
}

// EnvelopeFor wraps p. The status is error when the provider returned an
// error or no recognized key is present.
func EnvelopeFor(p Params) Envelope {
	switch {
	case p.HasError():
		return Envelope{Status: StatusError, Params: p, Error: p.Error + ": " + p.ErrorDescription}
	case p.IsEmpty():
		return Envelope{Status: StatusError, Params: p, Error: emptyResponse}
	default:
		return Envelope{Status: StatusSuccess, Params: p}
	}
}

// OK reports whether the envelope carries a successful response.
func (e Envelope) OK() bool {
	return e.Status == StatusSuccess
}

// Err returns nil for a successful envelope and a provider error otherwise.
func (e Envelope) Err() error {
	if e.OK() {
		return nil
	}
	if e.Params.HasError() {
		return apperrors.ProviderError(e.Params.Error, e.Params.ErrorDescription)
	}
	return apperrors.New(apperrors.ErrCodeProviderError, e.Error, http.StatusBadGateway)
}
