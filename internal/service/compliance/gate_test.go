package compliance

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/davidleathers/voice-outreach-backend/internal/domain/campaign"
	"github.com/davidleathers/voice-outreach-backend/internal/domain/contact"
	"github.com/davidleathers/voice-outreach-backend/internal/domain/dnc"
	"github.com/davidleathers/voice-outreach-backend/internal/infrastructure/config"
	"github.com/davidleathers/voice-outreach-backend/internal/infrastructure/dncstore"
)

func testContact(t *testing.T) contact.Contact {
	t.Helper()
	c, err := contact.New("Jordan Reyes", "+15551234567", "jordan@example.com", "Acme")
	require.NoError(t, err)
	return c
}

func hoursConfig(tz string) config.ComplianceConfig {
	return config.ComplianceConfig{
		CallHoursStart: "09:00",
		CallHoursEnd:   "17:00",
		Timezone:       tz,
		MaxAttempts:    3,
	}
}

func TestGate_CallingHoursBoundaries(t *testing.T) {
	// 2024-06-03 is a Monday.
	monday := time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC)

	boundaries := []struct {
		name    string
		hour    int
		minute  int
		allowed bool
	}{
		{name: "minute before start", hour: 8, minute: 59, allowed: false},
		{name: "start minute", hour: 9, minute: 0, allowed: true},
		{name: "end minute", hour: 17, minute: 0, allowed: true},
		{name: "minute after end", hour: 17, minute: 1, allowed: false},
	}

	for _, tz := range []string{"America/New_York", "Asia/Tokyo"} {
		loc, err := time.LoadLocation(tz)
		require.NoError(t, err)

		gate := NewGate(hoursConfig(tz), dncstore.NewMemoryStore(), nil)

		for day := 0; day < 5; day++ {
			for _, b := range boundaries {
				t.Run(tz+"/"+monday.AddDate(0, 0, day).Weekday().String()+"/"+b.name, func(t *testing.T) {
					d := monday.AddDate(0, 0, day)
					now := time.Date(d.Year(), d.Month(), d.Day(), b.hour, b.minute, 0, 0, loc)

					decision := gate.Allowed(context.Background(), testContact(t), now, nil)

					assert.Equal(t, b.allowed, decision.Allowed)
					if !b.allowed {
						assert.Equal(t, campaign.ReasonOutsideHours, decision.Reason)
					}
				})
			}
		}
	}
}

func TestGate_WeekendsDenied(t *testing.T) {
	gate := NewGate(hoursConfig("America/New_York"), dncstore.NewMemoryStore(), nil)
	loc, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)

	// Saturday and Sunday at midday, well inside the weekday window.
	for _, day := range []int{8, 9} { // 2024-06-08 Sat, 2024-06-09 Sun
		now := time.Date(2024, 6, day, 12, 0, 0, 0, loc)
		decision := gate.Allowed(context.Background(), testContact(t), now, nil)
		assert.False(t, decision.Allowed, "weekday=%s", now.Weekday())
		assert.Equal(t, campaign.ReasonOutsideHours, decision.Reason)
	}
}

func TestGate_FailsClosed(t *testing.T) {
	tests := []struct {
		name string
		cfg  config.ComplianceConfig
	}{
		{
			name: "unresolvable timezone",
			cfg: config.ComplianceConfig{
				CallHoursStart: "09:00",
				CallHoursEnd:   "17:00",
				Timezone:       "Mars/Olympus_Mons",
			},
		},
		{
			name: "malformed start",
			cfg: config.ComplianceConfig{
				CallHoursStart: "nine",
				CallHoursEnd:   "17:00",
				Timezone:       "America/New_York",
			},
		},
		{
			name: "malformed end",
			cfg: config.ComplianceConfig{
				CallHoursStart: "09:00",
				CallHoursEnd:   "17:61",
				Timezone:       "America/New_York",
			},
		},
	}

	// Tuesday midday: would pass with a valid config.
	now := time.Date(2024, 6, 4, 12, 0, 0, 0, time.UTC)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gate := NewGate(tt.cfg, dncstore.NewMemoryStore(), nil)
			decision := gate.Allowed(context.Background(), testContact(t), now, nil)
			assert.False(t, decision.Allowed)
			assert.Equal(t, campaign.ReasonOutsideHours, decision.Reason)
		})
	}
}

func TestGate_DoNotCall(t *testing.T) {
	loc, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)
	// Wednesday midday, inside hours.
	now := time.Date(2024, 6, 5, 12, 0, 0, 0, loc)

	t.Run("persisted store membership denies", func(t *testing.T) {
		store := dncstore.NewMemoryStore()
		entry, err := dnc.NewEntry("+15551234567", "user opt-out", "")
		require.NoError(t, err)
		_, err = store.Add(context.Background(), entry)
		require.NoError(t, err)

		gate := NewGate(hoursConfig("America/New_York"), store, nil)
		decision := gate.Allowed(context.Background(), testContact(t), now, nil)

		assert.False(t, decision.Allowed)
		assert.Equal(t, campaign.ReasonDoNotCall, decision.Reason)
	})

	t.Run("extra list membership denies with unnormalized input", func(t *testing.T) {
		gate := NewGate(hoursConfig("America/New_York"), dncstore.NewMemoryStore(), nil)
		decision := gate.Allowed(context.Background(), testContact(t), now, []string{"(555) 123-4567"})

		assert.False(t, decision.Allowed)
		assert.Equal(t, campaign.ReasonDoNotCall, decision.Reason)
	})

	t.Run("unlisted number passes", func(t *testing.T) {
		gate := NewGate(hoursConfig("America/New_York"), dncstore.NewMemoryStore(), nil)
		decision := gate.Allowed(context.Background(), testContact(t), now, []string{"(555) 999-0000"})
		assert.True(t, decision.Allowed)
	})

	t.Run("store failure denies", func(t *testing.T) {
		gate := NewGate(hoursConfig("America/New_York"), failingStore{}, nil)
		decision := gate.Allowed(context.Background(), testContact(t), now, nil)

		assert.False(t, decision.Allowed)
		assert.Equal(t, campaign.ReasonDoNotCall, decision.Reason)
	})
}

type failingStore struct{}

func (failingStore) Add(context.Context, *dnc.Entry) (bool, error) {
	return false, assert.AnError
}

func (failingStore) Contains(context.Context, string) (bool, error) {
	return false, assert.AnError
}

func (failingStore) Size(context.Context) (int64, error) {
	return 0, assert.AnError
}
