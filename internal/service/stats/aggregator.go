package stats

import (
	domain "github.com/davidleathers/voice-outreach-backend/internal/domain/outcome"
	"github.com/davidleathers/voice-outreach-backend/internal/service/outcome"
)

// Summary is the campaign-level view computed from the event log. It is
// derived state: recomputed on demand, never persisted as a source of truth.
type Summary struct {
	Total             int     `json:"total"`
	Completed         int     `json:"completed"`
	Failed            int     `json:"failed"`
	Answered          int     `json:"answered"`
	Voicemail         int     `json:"voicemail"`
	ScheduledMeetings int     `json:"scheduled_meetings"`
	OptedOut          int     `json:"opted_out"`
	TotalDuration     int     `json:"total_duration_seconds"`
	AverageDuration   float64 `json:"average_duration_seconds"`
	AnswerRate        float64 `json:"answer_rate"`
	ConversionRate    float64 `json:"conversion_rate"`
}

// Aggregate computes the summary over a slice of log events. The log is a
// multiset, so duplicate provider retries count twice. Router audit entries
// are skipped; only call events contribute to the counters. Rates are
// percentages and divide-by-zero cases are defined as 0, not NaN.
func Aggregate(events []domain.Event) Summary {
	var s Summary

	for _, e := range events {
		if e.Status == outcome.StatusAction {
			continue
		}

		s.Total++

		switch e.Status {
		case domain.StatusCompleted:
			s.Completed++
			s.TotalDuration += e.DurationSeconds
		case domain.StatusFailed:
			s.Failed++
		}

		switch e.Outcome {
		case domain.OutcomeAnswered:
			s.Answered++
		case domain.OutcomeVoicemail:
			s.Voicemail++
		}

		switch outcome.Classify(e) {
		case domain.Choice1:
			s.ScheduledMeetings++
		case domain.Choice2:
			s.OptedOut++
		}
	}

	if s.Completed > 0 {
		s.AverageDuration = float64(s.TotalDuration) / float64(s.Completed)
	}
	if s.Total > 0 {
		s.AnswerRate = round2(float64(s.Answered) / float64(s.Total) * 100)
	}
	if s.Answered > 0 {
		s.ConversionRate = round2(float64(s.ScheduledMeetings) / float64(s.Answered) * 100)
	}

	return s
}

func round2(f float64) float64 {
	return float64(int(f*100+0.5)) / 100
}
