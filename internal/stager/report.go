package stager

import "time"

// Outcome classifies how a staging run ended.
type Outcome string

const (
	OutcomeSuccess Outcome = "success"
	OutcomeFailed  Outcome = "failed"
)

// PageResult records what happened to a single page during a run.
type PageResult struct {
	Destination string        `json:"destination"`
	Source      string        `json:"source"`
	Bytes       int           `json:"bytes"`
	Rewrites    int           `json:"rewrites"`
	Fingerprint string        `json:"fingerprint"`
	Duration    time.Duration `json:"duration"`
}

// Report summarizes one staging run. On a failed run Pages holds the pages
// completed before the failure and Err the error that stopped it.
type Report struct {
	RunID     string        `json:"run_id"`
	StartedAt time.Time     `json:"started_at"`
	Duration  time.Duration `json:"duration"`
	Outcome   Outcome       `json:"outcome"`
	Pages     []PageResult  `json:"pages"`
	Err       error         `json:"-"`
}

// TotalBytes returns the total content size written across all pages.
func (r *Report) TotalBytes() int {
	var n int
	for _, p := range r.Pages {
		n += p.Bytes
	}
	return n
}

// TotalRewrites returns the total number of rewrite occurrences applied.
func (r *Report) TotalRewrites() int {
	var n int
	for _, p := range r.Pages {
		n += p.Rewrites
	}
	return n
}
