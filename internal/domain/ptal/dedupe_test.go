package ptal_test

import (
	"reflect"
	"testing"

	"ptalsvc/internal/domain/ptal"
)

func TestDedupeReviewsLatestWins(t *testing.T) {
	raw := []ptal.RawReview{
		{Author: "alice", State: "APPROVED"},
		{Author: "alice", State: "CHANGES_REQUESTED"},
		{Author: "bob", State: "COMMENTED"},
	}

	got := ptal.DedupeReviews(raw, ptal.DedupePolicy{})
	want := []ptal.Review{
		{Author: "alice", Decision: ptal.DecisionChangesRequested},
		{Author: "bob", Decision: ptal.DecisionCommented},
	}

	if !reflect.DeepEqual(got, want) {
		t.Fatalf("DedupeReviews = %+v, want %+v", got, want)
	}
}

func TestDedupeReviewsRepeatedIdenticalDecision(t *testing.T) {
	raw := []ptal.RawReview{
		{Author: "alice", State: "APPROVED"},
		{Author: "bob", State: "COMMENTED"},
		{Author: "alice", State: "APPROVED"},
	}

	got := ptal.DedupeReviews(raw, ptal.DedupePolicy{})
	want := []ptal.Review{
		{Author: "alice", Decision: ptal.DecisionApproved},
		{Author: "bob", Decision: ptal.DecisionCommented},
	}

	if !reflect.DeepEqual(got, want) {
		t.Fatalf("DedupeReviews = %+v, want %+v", got, want)
	}
}

func TestDedupeReviewsSkipsDismissedAndAuthorless(t *testing.T) {
	raw := []ptal.RawReview{
		{Author: "alice", State: "DISMISSED"},
		{Author: "", State: "APPROVED"},
		{Author: "bob", State: "APPROVED"},
	}

	got := ptal.DedupeReviews(raw, ptal.DedupePolicy{})
	want := []ptal.Review{
		{Author: "bob", Decision: ptal.DecisionApproved},
	}

	if !reflect.DeepEqual(got, want) {
		t.Fatalf("DedupeReviews = %+v, want %+v", got, want)
	}
}

func TestDedupeReviewsBotPolicy(t *testing.T) {
	raw := []ptal.RawReview{
		{Author: "ci[bot]", State: "APPROVED"},
		{Author: "alice", State: "COMMENTED"},
	}

	humansOnly := ptal.DedupeReviews(raw, ptal.DedupePolicy{})
	if len(humansOnly) != 1 || humansOnly[0].Author != "alice" {
		t.Fatalf("expected bots excluded by default, got %+v", humansOnly)
	}

	withBots := ptal.DedupeReviews(raw, ptal.DedupePolicy{IncludeBots: true})
	want := []ptal.Review{
		{Author: "ci[bot]", Decision: ptal.DecisionApproved},
		{Author: "alice", Decision: ptal.DecisionCommented},
	}
	if !reflect.DeepEqual(withBots, want) {
		t.Fatalf("DedupeReviews with bots = %+v, want %+v", withBots, want)
	}
}

func TestDedupeReviewsUnknownState(t *testing.T) {
	got := ptal.DedupeReviews([]ptal.RawReview{{Author: "alice", State: "PENDING"}}, ptal.DedupePolicy{})
	if len(got) != 1 || got[0].Decision != ptal.DecisionUnknown {
		t.Fatalf("expected unknown decision, got %+v", got)
	}
}
