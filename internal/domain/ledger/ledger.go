package ledger

import "context"

// Channel selects which status column group an update targets. One record
// exists per contact per channel.
type Channel string

const (
	ChannelVoice Channel = "voice"
	ChannelEmail Channel = "email"
)

// ColumnPrefix maps a channel to its ledger column group, e.g. the voice
// channel's columns are CallStatus, CallNotes, CallLastUpdated.
func (c Channel) ColumnPrefix() string {
	if c == ChannelEmail {
		return "Email"
	}
	return "Call"
}

// Lookup identifies a row by exact email or phone match. Exactly one key is
// required, never both.
type Lookup struct {
	Email string
	Phone string
}

// StatusUpdate carries the new column values. Every named field is
// overwritten on match; all other columns are preserved untouched.
type StatusUpdate struct {
	Channel     Channel
	Status      string
	Notes       string
	LastUpdated string
}

// Store is the external contact ledger. Update reports (false, nil) when no
// row matches: nothing to do is not an error. Absent status columns are a
// precondition failure reported as an error; the store never adds columns on
// a write path.
type Store interface {
	Update(ctx context.Context, lookup Lookup, update StatusUpdate) (bool, error)
}
