package handler

import (
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"ptalsvc/internal/app/dto"
	"ptalsvc/internal/domain/ptal"
	"ptalsvc/internal/render"
)

func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// PtalCreate is the command-layer entry point: it resolves the PR URL and
// hands the identity to the engine.
func (h *Handler) PtalCreate(c *gin.Context) {
	var body dto.CreateAnnouncementRequest

	if err := c.ShouldBindJSON(&body); err != nil {
		h.badRequest(c, "invalid JSON")
		return
	}

	if body.GitHubURL == "" || body.Description == "" || body.ChannelID == "" {
		h.badRequest(c, "github_url, description, channel_id are required")
		return
	}

	owner, repo, number, err := parsePRURL(body.GitHubURL)
	if err != nil {
		h.badRequest(c, err.Error())
		return
	}

	rec, payload, err := h.PtalSvc.CreateAnnouncement(c.Request.Context(), ptal.CreateInput{
		Owner:       owner,
		Repository:  repo,
		PRNumber:    number,
		Description: body.Description,
		ChannelID:   body.ChannelID,
		Requester:   body.Requester,
	})
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.CreateAnnouncementResponse{
		Record: dto.PtalRecord{
			ID:          rec.ID,
			ChannelID:   rec.ChannelID,
			MessageID:   rec.MessageID,
			Owner:       rec.Owner,
			Repository:  rec.Repository,
			PRNumber:    rec.PRNumber,
			Description: rec.Description,
			Requester:   rec.Requester,
			CreatedAt:   rec.CreatedAt,
		},
		StatusLabel: statusFieldValue(payload),
	})
}

func statusFieldValue(p ptal.DisplayPayload) string {
	for _, f := range p.Embed.Fields {
		if f.Name == "Status" {
			return f.Value
		}
	}
	return render.StatusLabel(ptal.StatusWaiting)
}

func parsePRURL(raw string) (owner, repo string, number int, err error) {
	u, err := url.Parse(raw)
	if err != nil || u.Host != "github.com" || !strings.Contains(u.Path, "/pull/") {
		return "", "", 0, fmt.Errorf("github_url must be a valid PR URL")
	}

	parts := strings.SplitN(u.Path, "/pull/", 2)
	slug := strings.Split(strings.TrimPrefix(parts[0], "/"), "/")
	if len(slug) != 2 || slug[0] == "" || slug[1] == "" {
		return "", "", 0, fmt.Errorf("github_url must include owner and repository")
	}

	numPart := strings.SplitN(parts[1], "/", 2)[0]
	number, err = strconv.Atoi(numPart)
	if err != nil || number <= 0 {
		return "", "", 0, fmt.Errorf("github_url must end with a PR number")
	}

	return slug[0], slug[1], number, nil
}
