package ptal_test

import (
	"testing"

	"ptalsvc/internal/domain/ptal"
)

func boolPtr(b bool) *bool { return &b }

func TestDeriveStatus(t *testing.T) {
	approved := []ptal.Review{{Author: "alice", Decision: ptal.DecisionApproved}}
	changes := []ptal.Review{{Author: "alice", Decision: ptal.DecisionChangesRequested}}

	cases := []struct {
		name    string
		pr      ptal.PRDetail
		reviews []ptal.Review
		want    ptal.Status
	}{
		{
			name:    "draft overrides everything",
			pr:      ptal.PRDetail{Draft: true, Merged: false, Mergeable: boolPtr(true)},
			reviews: changes,
			want:    ptal.StatusDraft,
		},
		{
			name:    "merged wins even when unmergeable",
			pr:      ptal.PRDetail{Merged: true, Mergeable: boolPtr(false)},
			reviews: approved,
			want:    ptal.StatusMerged,
		},
		{
			name:    "merged wins with nil mergeable",
			pr:      ptal.PRDetail{Merged: true},
			reviews: nil,
			want:    ptal.StatusMerged,
		},
		{
			name:    "no reviews means waiting",
			pr:      ptal.PRDetail{Mergeable: boolPtr(true), MergeableState: "clean"},
			reviews: nil,
			want:    ptal.StatusWaiting,
		},
		{
			name:    "not mergeable means waiting",
			pr:      ptal.PRDetail{Mergeable: boolPtr(false)},
			reviews: approved,
			want:    ptal.StatusWaiting,
		},
		{
			name:    "nil mergeable means waiting",
			pr:      ptal.PRDetail{Mergeable: nil},
			reviews: approved,
			want:    ptal.StatusWaiting,
		},
		{
			name:    "blocked means waiting",
			pr:      ptal.PRDetail{Mergeable: boolPtr(true), MergeableState: "blocked"},
			reviews: approved,
			want:    ptal.StatusWaiting,
		},
		{
			name:    "changes requested",
			pr:      ptal.PRDetail{Mergeable: boolPtr(true), MergeableState: "clean"},
			reviews: changes,
			want:    ptal.StatusChanges,
		},
		{
			name:    "approved",
			pr:      ptal.PRDetail{Mergeable: boolPtr(true), MergeableState: "clean"},
			reviews: approved,
			want:    ptal.StatusApproved,
		},
		{
			name: "commented-only reviews are approved when mergeable",
			pr:   ptal.PRDetail{Mergeable: boolPtr(true), MergeableState: "clean"},
			reviews: []ptal.Review{
				{Author: "bob", Decision: ptal.DecisionCommented},
			},
			want: ptal.StatusApproved,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := ptal.DeriveStatus(tc.pr, tc.reviews)
			if got != tc.want {
				t.Fatalf("DeriveStatus = %q, want %q", got, tc.want)
			}

			again := ptal.DeriveStatus(tc.pr, tc.reviews)
			if again != got {
				t.Fatalf("DeriveStatus not deterministic: %q then %q", got, again)
			}
		})
	}
}
