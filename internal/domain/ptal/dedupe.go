package ptal

import "strings"

// DedupePolicy controls which review authors survive deduplication. Status
// computation always runs with ExcludeBots; the displayed list may not,
// depending on configuration.
type DedupePolicy struct {
	IncludeBots bool
}

func isBot(login string) bool {
	return strings.HasSuffix(login, "[bot]")
}

func decisionFromState(state string) Decision {
	switch state {
	case "APPROVED":
		return DecisionApproved
	case "CHANGES_REQUESTED":
		return DecisionChangesRequested
	case "COMMENTED":
		return DecisionCommented
	}
	return DecisionUnknown
}

// DedupeReviews collapses the chronological review list to one decision per
// author: the latest entry wins, dismissed reviews and authorless entries are
// dropped, bots are dropped unless the policy includes them. Output order is
// the first-seen order of the surviving authors.
func DedupeReviews(raw []RawReview, policy DedupePolicy) []Review {
	latest := make(map[string]Decision, len(raw))
	order := make([]string, 0, len(raw))

	for _, r := range raw {
		if r.Author == "" {
			continue
		}
		if r.State == "DISMISSED" {
			continue
		}
		if !policy.IncludeBots && isBot(r.Author) {
			continue
		}

		if _, seen := latest[r.Author]; !seen {
			order = append(order, r.Author)
		}
		latest[r.Author] = decisionFromState(r.State)
	}

	out := make([]Review, 0, len(order))
	for _, author := range order {
		out = append(out, Review{Author: author, Decision: latest[author]})
	}
	return out
}
