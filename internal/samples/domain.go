// Package samples tracks laboratory samples through their lifecycle, from
// registration against an analysis template to a completed result sheet.
package samples

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Fallback display values for samples whose client or status record has
// been removed.
const (
	UnknownClientName = "N/A"
	UnknownStatusName = "N/A"
)

// Result is one row of a sample's result sheet. Value holds whatever JSON
// the technician records, a string, a number or a boolean, and stays null
// until a measurement is entered.
type Result struct {
	Name        string          `json:"name"`
	Measurement string          `json:"measurement"`
	Standard    string          `json:"standard"`
	Value       json.RawMessage `json:"value"`
}

// HasValue reports whether a measurement has been recorded. JSON null marks
// an unrecorded value, same as an absent one.
func (r Result) HasValue() bool {
	return len(r.Value) > 0 && string(r.Value) != "null"
}

// ValueText renders the recorded value for display. Strings lose their
// quotes; numbers and booleans keep their JSON text.
func (r Result) ValueText() string {
	if !r.HasValue() {
		return ""
	}
	var s string
	if err := json.Unmarshal(r.Value, &s); err == nil {
		return s
	}
	return string(r.Value)
}

// Sample is a specimen registered for one analysis. Its result rows are
// copied from the analysis template at registration time so later template
// edits never rewrite historical sheets.
type Sample struct {
	ID           uuid.UUID `json:"id"`
	ClientID     uuid.UUID `json:"clientId"`
	StatusID     uuid.UUID `json:"statusId"`
	AnalysisName string    `json:"analysisName"`
	Results      []Result  `json:"results"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// View is a sample enriched with display data from its client and status.
type View struct {
	Sample
	ClientName  string `json:"clientName"`
	StatusName  string `json:"statusName"`
	StatusColor string `json:"statusColor"`
}

// Update carries a partial sample mutation; nil fields stay untouched.
type Update struct {
	ClientID *uuid.UUID `json:"clientId"`
	StatusID *uuid.UUID `json:"statusId"`
	Results  *[]Result  `json:"results"`
}

// Pending reports whether the sample still has work outstanding: an empty
// sheet or any result row without a recorded value.
func (s Sample) Pending() bool {
	if len(s.Results) == 0 {
		return true
	}
	for _, r := range s.Results {
		if !r.HasValue() {
			return true
		}
	}
	return false
}
