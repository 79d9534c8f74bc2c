// Package dashboard aggregates the landing-page statistics.
package dashboard

// Stats summarises laboratory activity. Pending counts samples whose
// result sheet is empty or still has unrecorded values; the period counts
// bucket sample registrations with the week starting on Monday.
type Stats struct {
	TotalClients     int64 `json:"totalClients"`
	PendingSamples   int64 `json:"pendingSamples"`
	SamplesToday     int64 `json:"samplesToday"`
	SamplesThisWeek  int64 `json:"samplesThisWeek"`
	SamplesThisMonth int64 `json:"samplesThisMonth"`
	SamplesThisYear  int64 `json:"samplesThisYear"`
}
