package campaign

import "fmt"

// Summary holds the aggregate counters for one campaign run. Counters are
// accumulated incrementally as results arrive; the summary is derived state,
// the ordered result list is the source of truth.
type Summary struct {
	Total       int     `json:"total"`
	Successful  int     `json:"successful"`
	Failed      int     `json:"failed"`
	SuccessRate float64 `json:"success_rate"`
}

// Record folds one result into the summary and recomputes the rate.
func (s *Summary) Record(r CallResult) {
	s.Total++
	if r.IsSuccess() {
		s.Successful++
	} else {
		s.Failed++
	}
	s.SuccessRate = float64(s.Successful) / float64(s.Total) * 100
}

func (s Summary) String() string {
	return fmt.Sprintf("total=%d successful=%d failed=%d success_rate=%.2f%%",
		s.Total, s.Successful, s.Failed, s.SuccessRate)
}
