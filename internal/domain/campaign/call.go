package campaign

import (
	"time"

	"github.com/google/uuid"

	"github.com/davidleathers/voice-outreach-backend/internal/domain/contact"
)

// CallRequest is one dispatch attempt: a contact plus the script rendered for
// them. Created at campaign start and discarded after dispatch.
type CallRequest struct {
	Contact    contact.Contact `json:"contact"`
	ScriptText string          `json:"script_text"`
	CampaignID uuid.UUID       `json:"campaign_id"`
	DryRun     bool            `json:"dry_run"`
}

// ResultKind discriminates the CallResult variant.
type ResultKind int

const (
	ResultSuccess ResultKind = iota
	ResultRejected
	ResultProviderError
)

func (k ResultKind) String() string {
	switch k {
	case ResultSuccess:
		return "success"
	case ResultRejected:
		return "rejected"
	case ResultProviderError:
		return "provider_error"
	default:
		return "unknown"
	}
}

// RejectReason explains a local rejection before any network call.
type RejectReason int

const (
	ReasonInvalidPhone RejectReason = iota
	ReasonOutsideHours
	ReasonDoNotCall
)

func (r RejectReason) String() string {
	switch r {
	case ReasonInvalidPhone:
		return "invalid_phone"
	case ReasonOutsideHours:
		return "outside_hours"
	case ReasonDoNotCall:
		return "do_not_call"
	default:
		return "unknown"
	}
}

// CallResult is the immutable outcome of one dispatch attempt. Exactly one
// variant applies, selected by Kind; every failure path is a value, never a
// panic or error escaping the dispatcher.
type CallResult struct {
	Contact contact.Contact `json:"contact"`
	Kind    ResultKind      `json:"kind"`

	// Success fields
	ProviderCallID string `json:"provider_call_id,omitempty"`
	Status         string `json:"status,omitempty"`

	// Rejected fields
	Reason RejectReason `json:"reason,omitempty"`

	// ProviderError fields
	Message    string `json:"message,omitempty"`
	HTTPStatus int    `json:"http_status,omitempty"`

	At time.Time `json:"at"`
}

// NewSuccess records a call accepted by the provider.
func NewSuccess(c contact.Contact, providerCallID, status string) CallResult {
	return CallResult{
		Contact:        c,
		Kind:           ResultSuccess,
		ProviderCallID: providerCallID,
		Status:         status,
		At:             time.Now().UTC(),
	}
}

// NewRejected records a call blocked before reaching the provider.
func NewRejected(c contact.Contact, reason RejectReason) CallResult {
	return CallResult{
		Contact: c,
		Kind:    ResultRejected,
		Reason:  reason,
		At:      time.Now().UTC(),
	}
}

// NewProviderError records a non-2xx or transport failure from the provider.
func NewProviderError(c contact.Contact, message string, httpStatus int) CallResult {
	return CallResult{
		Contact:    c,
		Kind:       ResultProviderError,
		Message:    message,
		HTTPStatus: httpStatus,
		At:         time.Now().UTC(),
	}
}

// IsSuccess reports whether the dispatch was accepted by the provider (or
// synthesized in dry-run mode).
func (r CallResult) IsSuccess() bool {
	return r.Kind == ResultSuccess
}
