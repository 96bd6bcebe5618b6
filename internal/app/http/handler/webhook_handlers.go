package handler

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"ptalsvc/internal/domain"
)

type webhookPayload struct {
	Repository struct {
		Name  string `json:"name"`
		Owner struct {
			Login string `json:"login"`
		} `json:"owner"`
	} `json:"repository"`
	PullRequest struct {
		Number int `json:"number"`
	} `json:"pull_request"`
}

// Webhook accepts GitHub PR events. Only the PR identity is extracted; status
// is always recomputed from fresh fetches, never from the payload.
func (h *Handler) Webhook(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		h.badRequest(c, "unreadable body")
		return
	}

	if h.WebhookSecret != "" && !validSignature(body, c.GetHeader("X-Hub-Signature-256"), h.WebhookSecret) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "bad signature"})
		return
	}

	kind := domain.EventKind(c.GetHeader("X-GitHub-Event"))
	if !kind.Known() {
		c.Status(http.StatusNoContent)
		return
	}

	var payload webhookPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		h.badRequest(c, "invalid JSON")
		return
	}

	if payload.Repository.Owner.Login == "" || payload.Repository.Name == "" || payload.PullRequest.Number <= 0 {
		h.badRequest(c, "event is missing a PR identity")
		return
	}

	e := domain.Event{
		Kind:     kind,
		Owner:    payload.Repository.Owner.Login,
		Repo:     payload.Repository.Name,
		PRNumber: payload.PullRequest.Number,
	}

	h.Events.Publish(c.Request.Context(), e)
	h.Log.Debug("webhook accepted",
		zap.String("kind", string(kind)),
		zap.String("owner", e.Owner),
		zap.String("repo", e.Repo),
		zap.Int("pr_number", e.PRNumber),
	)

	c.Status(http.StatusAccepted)
}

func validSignature(body []byte, header, secret string) bool {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	want := "sha256=" + hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(want), []byte(header))
}
