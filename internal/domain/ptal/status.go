package ptal

// DeriveStatus maps raw PR data and deduplicated reviews to a Status. The
// check order is a contract: draft overrides everything, and merged must be
// decided before the mergeability heuristics because merged PRs frequently
// report a stale or nil mergeable flag.
func DeriveStatus(pr PRDetail, reviews []Review) Status {
	if pr.Draft {
		return StatusDraft
	}

	if pr.Merged {
		return StatusMerged
	}

	mergeable := pr.Mergeable != nil && *pr.Mergeable
	if !mergeable || len(reviews) == 0 || pr.MergeableState == "blocked" {
		return StatusWaiting
	}

	for _, r := range reviews {
		if r.Decision == DecisionChangesRequested {
			return StatusChanges
		}
	}

	return StatusApproved
}
