package provider

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/davidleathers/voice-outreach-backend/internal/infrastructure/config"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	return NewClient(config.ProviderConfig{
		BaseURL:       srv.URL,
		APIKey:        "test-key",
		FromNumber:    "+15550000000",
		CallbackURL:   "http://localhost:8080/webhook",
		SubmitTimeout: 5 * time.Second,
	}, nil)
}

func TestClient_SubmitCall(t *testing.T) {
	var received CallSubmission
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/calls", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))

		json.NewEncoder(w).Encode(SubmitResponse{CallID: "call-abc123", Status: "queued"})
	})

	resp, err := client.SubmitCall(context.Background(), CallSubmission{
		To:          "+15551234567",
		From:        "+15550000000",
		ScriptText:  "Hello Jordan, this is a reminder call.",
		CallbackURL: "http://localhost:8080/webhook",
		Metadata: map[string]string{
			"contact_name": "Jordan Reyes",
			"campaign_id":  "cmp-1",
		},
	})

	require.NoError(t, err)
	assert.Equal(t, "call-abc123", resp.CallID)
	assert.Equal(t, "queued", resp.Status)
	assert.Equal(t, "+15551234567", received.To)
	assert.Equal(t, "Jordan Reyes", received.Metadata["contact_name"])
}

func TestClient_SubmitCall_NonTwoHundred(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusPaymentRequired)
		json.NewEncoder(w).Encode(map[string]string{"error": "insufficient balance"})
	})

	_, err := client.SubmitCall(context.Background(), CallSubmission{To: "+15551234567"})

	var statusErr *StatusError
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, http.StatusPaymentRequired, statusErr.StatusCode)
	assert.Equal(t, "insufficient balance", statusErr.Message)
}

func TestClient_SubmitCall_MissingCallID(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"status": "queued"})
	})

	_, err := client.SubmitCall(context.Background(), CallSubmission{To: "+15551234567"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing call id")
}

func TestClient_SendMessage(t *testing.T) {
	var received SMSMessage
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/messages", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		w.WriteHeader(http.StatusAccepted)
	})

	err := client.SendMessage(context.Background(), SMSMessage{
		To:   "+15551234567",
		From: "+15550000000",
		Body: "Thanks for your interest, we'll follow up shortly.",
	})

	require.NoError(t, err)
	assert.Equal(t, "+15551234567", received.To)
}

func TestClient_ContextCancellation(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		// Drain the body so the server's background read can observe the
		// client disconnect and cancel the request context; otherwise this
		// handler never unblocks and srv.Close deadlocks in cleanup.
		io.Copy(io.Discard, r.Body)
		<-r.Context().Done()
	})

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := client.SubmitCall(ctx, CallSubmission{To: "+15551234567"})
	require.Error(t, err)
}
