package domain

import "time"

// Candidate is an item selected for notification in the current run.
type Candidate struct {
	Name     string
	DaysLeft int
}

// ExpiringItem is the projection the scan query returns.
type ExpiringItem struct {
	UserID     string
	Name       string
	ExpiryDate Date
}

// RunOutcome summarises how a daily expiry check ended.
type RunOutcome string

const (
	OutcomeNoCandidates RunOutcome = "no_candidates"
	OutcomeDispatched   RunOutcome = "dispatched"
	OutcomeFailed       RunOutcome = "failed"
	OutcomeSkipped      RunOutcome = "skipped"
)

// UserFailure records why a single user's send did not go through.
type UserFailure struct {
	UserID string `json:"user_id"`
	Reason string `json:"reason"`
}

// RunReport is the aggregate result of one expiry check.
type RunReport struct {
	Date            Date          `json:"date"`
	TimeZone        string        `json:"time_zone"`
	Outcome         RunOutcome    `json:"outcome"`
	ItemsFetched    int           `json:"items_fetched"`
	Candidates      int           `json:"candidates"`
	Users           int           `json:"users"`
	UsersSkipped    int           `json:"users_skipped"`
	Dispatched      int           `json:"dispatched"`
	Succeeded       int           `json:"succeeded"`
	Failed          []UserFailure `json:"failed,omitempty"`
	TokensSucceeded int           `json:"tokens_succeeded"`
	TokensFailed    int           `json:"tokens_failed"`
	Error           string        `json:"error,omitempty"`
	StartedAt       time.Time     `json:"started_at"`
	Duration        time.Duration `json:"duration_ns"`
}

// FailedUserIDs lists the users whose dispatch failed, in report order.
func (r *RunReport) FailedUserIDs() []string {
	ids := make([]string, len(r.Failed))
	for i, f := range r.Failed {
		ids[i] = f.UserID
	}
	return ids
}
