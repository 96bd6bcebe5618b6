package domain

import "context"

// EventKind values mirror the GitHub webhook event names the service reacts
// to. Routing uses only the PR identity; the kind is kept for logging.
type EventKind string

const (
	EventPullRequest       EventKind = "pull_request"
	EventPullRequestReview EventKind = "pull_request_review"
	EventReviewComment     EventKind = "pull_request_review_comment"
)

func (k EventKind) Known() bool {
	switch k {
	case EventPullRequest, EventPullRequestReview, EventReviewComment:
		return true
	}
	return false
}

// Event is a normalized PR event. The raw webhook payload is deliberately not
// carried: status is always recomputed from freshly fetched data.
type Event struct {
	Kind     EventKind
	Owner    string
	Repo     string
	PRNumber int
}

type EventBus interface {
	Publish(ctx context.Context, e Event)
}
