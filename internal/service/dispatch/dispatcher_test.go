package dispatch

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/davidleathers/voice-outreach-backend/internal/domain/campaign"
	"github.com/davidleathers/voice-outreach-backend/internal/domain/contact"
	"github.com/davidleathers/voice-outreach-backend/internal/domain/dnc"
	"github.com/davidleathers/voice-outreach-backend/internal/domain/values"
	"github.com/davidleathers/voice-outreach-backend/internal/infrastructure/config"
	"github.com/davidleathers/voice-outreach-backend/internal/infrastructure/dncstore"
	"github.com/davidleathers/voice-outreach-backend/internal/infrastructure/provider"
	"github.com/davidleathers/voice-outreach-backend/internal/service/compliance"
)

// fakeProvider records submissions and plays back a scripted response.
type fakeProvider struct {
	calls    []provider.CallSubmission
	response *provider.SubmitResponse
	err      error
}

func (f *fakeProvider) SubmitCall(_ context.Context, s provider.CallSubmission) (*provider.SubmitResponse, error) {
	f.calls = append(f.calls, s)
	if f.err != nil {
		return nil, f.err
	}
	return f.response, nil
}

// tuesdayNoon is inside the default call window in New York.
var tuesdayNoon = time.Date(2024, 6, 4, 12, 0, 0, 0, mustLoc("America/New_York"))

func mustLoc(name string) *time.Location {
	loc, err := time.LoadLocation(name)
	if err != nil {
		panic(err)
	}
	return loc
}

func newDispatcher(t *testing.T, store dnc.Store, p *fakeProvider) *Dispatcher {
	t.Helper()
	gate := compliance.NewGate(config.ComplianceConfig{
		CallHoursStart: "09:00",
		CallHoursEnd:   "17:00",
		Timezone:       "America/New_York",
	}, store, nil)

	d := NewDispatcher(gate, p, config.ProviderConfig{
		FromNumber:    "+15550000000",
		CallbackURL:   "http://localhost:8080/webhook",
		SubmitTimeout: time.Second,
	}, nil, nil)
	d.SetClock(&campaign.MockClock{CurrentTime: tuesdayNoon})
	return d
}

func request(t *testing.T, dryRun bool) campaign.CallRequest {
	t.Helper()
	c, err := contact.New("Jordan Reyes", "+15551234567", "jordan@example.com", "Acme")
	require.NoError(t, err)
	return campaign.CallRequest{
		Contact:    c,
		ScriptText: "Hello Jordan, this is a reminder call.",
		CampaignID: uuid.New(),
		DryRun:     dryRun,
	}
}

func TestDispatcher_Success(t *testing.T) {
	p := &fakeProvider{response: &provider.SubmitResponse{CallID: "call-1", Status: "queued"}}
	d := newDispatcher(t, dncstore.NewMemoryStore(), p)

	result := d.Dispatch(context.Background(), request(t, false), nil)

	require.Equal(t, campaign.ResultSuccess, result.Kind)
	assert.Equal(t, "call-1", result.ProviderCallID)
	require.Len(t, p.calls, 1)

	submission := p.calls[0]
	assert.Equal(t, "+15551234567", submission.To)
	assert.Equal(t, "+15550000000", submission.From)
	assert.Equal(t, "http://localhost:8080/webhook", submission.CallbackURL)
	assert.Equal(t, "Jordan Reyes", submission.Metadata["contactName"])
	assert.Equal(t, "jordan@example.com", submission.Metadata["contactEmail"])
	assert.NotEmpty(t, submission.Metadata["campaignId"])
	assert.NotEmpty(t, submission.Metadata["timestamp"])
}

func TestDispatcher_InvalidPhoneSkipsEverything(t *testing.T) {
	p := &fakeProvider{}
	d := newDispatcher(t, dncstore.NewMemoryStore(), p)

	req := request(t, false)
	req.Contact.PhoneNumber = values.PhoneNumber{}

	result := d.Dispatch(context.Background(), req, nil)

	assert.Equal(t, campaign.ResultRejected, result.Kind)
	assert.Equal(t, campaign.ReasonInvalidPhone, result.Reason)
	assert.Empty(t, p.calls)
}

func TestDispatcher_DryRunNeverTouchesProvider(t *testing.T) {
	p := &fakeProvider{}
	d := newDispatcher(t, dncstore.NewMemoryStore(), p)

	result := d.Dispatch(context.Background(), request(t, true), nil)

	require.Equal(t, campaign.ResultSuccess, result.Kind)
	assert.Contains(t, result.ProviderCallID, "dry-run-")
	assert.Equal(t, "simulated", result.Status)
	assert.Empty(t, p.calls)
}

func TestDispatcher_DoNotCallShortCircuits(t *testing.T) {
	store := dncstore.NewMemoryStore()
	entry, err := dnc.NewEntry("+15551234567", "user opt-out", "")
	require.NoError(t, err)
	_, err = store.Add(context.Background(), entry)
	require.NoError(t, err)

	p := &fakeProvider{}
	d := newDispatcher(t, store, p)

	result := d.Dispatch(context.Background(), request(t, false), nil)

	assert.Equal(t, campaign.ResultRejected, result.Kind)
	assert.Equal(t, campaign.ReasonDoNotCall, result.Reason)
	assert.Empty(t, p.calls, "provider must not be invoked for listed numbers")
}

func TestDispatcher_OutsideHours(t *testing.T) {
	p := &fakeProvider{}
	d := newDispatcher(t, dncstore.NewMemoryStore(), p)
	// Sunday midday.
	d.SetClock(&campaign.MockClock{CurrentTime: time.Date(2024, 6, 9, 12, 0, 0, 0, mustLoc("America/New_York"))})

	result := d.Dispatch(context.Background(), request(t, false), nil)

	assert.Equal(t, campaign.ResultRejected, result.Kind)
	assert.Equal(t, campaign.ReasonOutsideHours, result.Reason)
	assert.Empty(t, p.calls)
}

func TestDispatcher_ProviderErrorsBecomeValues(t *testing.T) {
	t.Run("non-2xx status", func(t *testing.T) {
		p := &fakeProvider{err: &provider.StatusError{StatusCode: http.StatusServiceUnavailable, Message: "carrier unavailable"}}
		d := newDispatcher(t, dncstore.NewMemoryStore(), p)

		result := d.Dispatch(context.Background(), request(t, false), nil)

		assert.Equal(t, campaign.ResultProviderError, result.Kind)
		assert.Equal(t, http.StatusServiceUnavailable, result.HTTPStatus)
		assert.Equal(t, "carrier unavailable", result.Message)
	})

	t.Run("transport failure", func(t *testing.T) {
		p := &fakeProvider{err: context.DeadlineExceeded}
		d := newDispatcher(t, dncstore.NewMemoryStore(), p)

		result := d.Dispatch(context.Background(), request(t, false), nil)

		assert.Equal(t, campaign.ResultProviderError, result.Kind)
		assert.Equal(t, 0, result.HTTPStatus)
		assert.Contains(t, result.Message, "call submission failed")
	})
}
