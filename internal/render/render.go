// Package render builds the announcement payload. Everything here is pure;
// the reconciler decides when to render, the chat client decides how the
// payload goes on the wire.
package render

import (
	"fmt"
	"strings"

	"ptalsvc/internal/domain/ptal"
)

const brandColor = 0x5865F2

var statusLabels = map[ptal.Status]string{
	ptal.StatusDraft:    ":white_circle: Draft",
	ptal.StatusApproved: ":white_check_mark: Approved",
	ptal.StatusChanges:  ":no_entry_sign: Changes requested",
	ptal.StatusMerged:   ":purple_circle: Merged",
	ptal.StatusWaiting:  ":hourglass: Awaiting reviews",
}

var decisionEmoji = map[ptal.Decision]string{
	ptal.DecisionApproved:         ":white_check_mark:",
	ptal.DecisionChangesRequested: ":no_entry_sign:",
	ptal.DecisionCommented:        ":speech_balloon:",
	ptal.DecisionUnknown:          ":question:",
}

// StatusLabel is exported for the HTTP layer's response bodies.
func StatusLabel(s ptal.Status) string {
	if label, ok := statusLabels[s]; ok {
		return label
	}
	return statusLabels[ptal.StatusWaiting]
}

func reviewLines(reviews []ptal.Review) string {
	if len(reviews) == 0 {
		return "*No reviews yet*"
	}

	lines := make([]string, 0, len(reviews))
	for _, r := range reviews {
		lines = append(lines, fmt.Sprintf("%s [@%s](https://github.com/%s)",
			decisionEmoji[r.Decision], r.Author, r.Author))
	}
	return strings.Join(lines, "\n")
}

// Payload renders one announcement. Identical input yields identical output,
// which is what makes repeated reconciliation idempotent at the surface.
func Payload(in ptal.RenderInput) ptal.DisplayPayload {
	var content strings.Builder
	if in.RolePing != "" {
		content.WriteString(fmt.Sprintf("<@&%s>\n", in.RolePing))
	}
	content.WriteString("# PTAL / Ready for Review\n\n")
	content.WriteString(in.Description)

	return ptal.DisplayPayload{
		Content: content.String(),
		Embed: ptal.Embed{
			Title:  in.Title,
			Author: in.Requester,
			Color:  brandColor,
			Fields: []ptal.EmbedField{
				{Name: "Repository", Value: fmt.Sprintf("[%s](%s)", in.RepoSlug, in.PRURL)},
				{Name: "Status", Value: StatusLabel(in.Status)},
				{Name: "Reviews", Value: reviewLines(in.Reviews)},
			},
			Timestamp: in.Timestamp,
		},
		Buttons: []ptal.Button{
			{Label: "See on GitHub", URL: in.PRURL},
			{Label: "View Files", URL: in.PRURL + "/files"},
		},
	}
}
