package ptal

import (
	"fmt"
	"time"
)

// Record links one announcement message to the PR it reports on. Identity
// fields and the description are immutable after creation; the reconciler is
// the only writer of the store.
type Record struct {
	ID          int64
	ChannelID   string
	MessageID   string
	Owner       string
	Repository  string
	PRNumber    int
	Description string
	Requester   string
	CreatedAt   *time.Time
}

func (r Record) PRURL() string {
	return fmt.Sprintf("https://github.com/%s/%s/pull/%d", r.Owner, r.Repository, r.PRNumber)
}

// Status is the small canonical PR status the whole system converges on.
type Status string

const (
	StatusDraft    Status = "draft"
	StatusWaiting  Status = "waiting"
	StatusApproved Status = "approved"
	StatusChanges  Status = "changes"
	StatusMerged   Status = "merged"
)

// PRDetail carries the PR fields status derivation needs, plus the title for
// rendering. Mergeable is nil while GitHub is still computing it.
type PRDetail struct {
	Title          string
	Draft          bool
	Merged         bool
	Mergeable      *bool
	MergeableState string
}

// RawReview is one entry of the chronological review list as fetched.
type RawReview struct {
	Author string
	State  string // APPROVED, CHANGES_REQUESTED, COMMENTED, DISMISSED
}

type Decision string

const (
	DecisionCommented        Decision = "commented"
	DecisionApproved         Decision = "approved"
	DecisionChangesRequested Decision = "changesRequested"
	DecisionUnknown          Decision = "unknown"
)

// Review is the deduplicated form: one final decision per human author.
type Review struct {
	Author   string
	Decision Decision
}

// Outcome reports what a reconciliation did to the record.
type Outcome string

const (
	// OutcomeUpdated means the message was edited and the record kept.
	OutcomeUpdated Outcome = "updated"
	// OutcomeRetired means a merged state was rendered and the record deleted.
	OutcomeRetired Outcome = "retired"
	// OutcomeOrphaned means the PR or message vanished and the record was
	// deleted without a final render.
	OutcomeOrphaned Outcome = "orphaned"
)
