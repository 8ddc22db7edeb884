package relance

import (
	"fmt"
	"strings"
	"time"
)

// Outcome is what happened to one folder during a batch run
type Outcome string

const (
	OutcomeSent            Outcome = "sent"
	OutcomeSkippedNoEmail  Outcome = "skipped:no-email"
	OutcomeSkippedCooldown Outcome = "skipped:cooldown"
	OutcomeFailedSend      Outcome = "failed:send-error"
	OutcomeFailedPersist   Outcome = "failed:persist-error"
	OutcomeDryRun          Outcome = "dry-run"
)

// outcomeOrder fixes the order outcomes are printed in
var outcomeOrder = []Outcome{
	OutcomeSent,
	OutcomeDryRun,
	OutcomeSkippedNoEmail,
	OutcomeSkippedCooldown,
	OutcomeFailedSend,
	OutcomeFailedPersist,
}

// Outcomes lists every outcome in display order
func Outcomes() []Outcome {
	return append([]Outcome(nil), outcomeOrder...)
}

// IsFailure reports whether the outcome is one of the failed:* categories
func (o Outcome) IsFailure() bool {
	return strings.HasPrefix(string(o), "failed:")
}

// FolderResult is the outcome recorded for a single folder
type FolderResult struct {
	FolderID  uint    `json:"folder_id"`
	Outcome   Outcome `json:"outcome"`
	Recipient string  `json:"recipient,omitempty"`
	RecordID  uint    `json:"record_id,omitempty"`
	Error     string  `json:"error,omitempty"`
}

// BatchSummary aggregates one batch run
type BatchSummary struct {
	RanAt        time.Time       `json:"ran_at"`
	CooldownDays int             `json:"cooldown_days"`
	DryRun       bool            `json:"dry_run"`
	Elapsed      time.Duration   `json:"elapsed"`
	Counts       map[Outcome]int `json:"counts"`
	Results      []FolderResult  `json:"results"`
}

func newBatchSummary(now time.Time, cooldownDays int, dryRun bool) *BatchSummary {
	return &BatchSummary{
		RanAt:        now,
		CooldownDays: cooldownDays,
		DryRun:       dryRun,
		Counts:       make(map[Outcome]int),
		Results:      make([]FolderResult, 0),
	}
}

func (s *BatchSummary) record(r FolderResult) {
	s.Counts[r.Outcome]++
	s.Results = append(s.Results, r)
}

// Count returns how many folders ended with outcome o
func (s *BatchSummary) Count(o Outcome) int {
	return s.Counts[o]
}

// Failures returns the number of folders with a failed:* outcome
func (s *BatchSummary) Failures() int {
	n := 0
	for o, c := range s.Counts {
		if o.IsFailure() {
			n += c
		}
	}
	return n
}

// String renders the summary for the operational log
func (s *BatchSummary) String() string {
	parts := make([]string, 0, len(outcomeOrder))
	for _, o := range outcomeOrder {
		if c := s.Counts[o]; c > 0 {
			parts = append(parts, fmt.Sprintf("%s=%d", o, c))
		}
	}
	if len(parts) == 0 {
		parts = append(parts, "nothing to do")
	}
	return fmt.Sprintf("reminder batch: %d folders, %s", len(s.Results), strings.Join(parts, " "))
}
