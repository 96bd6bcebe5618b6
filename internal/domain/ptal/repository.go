package ptal

import (
	"context"
	"time"
)

// Repository is the record store. Create fails with a conflict when the
// message id already owns a record; Delete of an unknown id is a no-op.
type Repository interface {
	Create(ctx context.Context, rec Record) (Record, error)
	GetByPRIdentity(ctx context.Context, owner, repository string, prNumber int) ([]Record, error)
	GetAll(ctx context.Context) ([]Record, error)
	Delete(ctx context.Context, id int64) error
}

// GitHubClient is the remote code-review API. FetchPR returns a not-found
// domain error for vanished PRs and a transient one for everything retryable.
type GitHubClient interface {
	FetchPR(ctx context.Context, owner, repo string, number int) (PRDetail, error)
	FetchReviews(ctx context.Context, owner, repo string, number int) ([]RawReview, error)
}

// ChatClient is the remote chat surface the announcements live on.
type ChatClient interface {
	SendMessage(ctx context.Context, channelID string, payload DisplayPayload) (messageID string, err error)
	FetchMessage(ctx context.Context, channelID, messageID string) error
	EditMessage(ctx context.Context, channelID, messageID string, payload DisplayPayload) error
	DeleteMessage(ctx context.Context, channelID, messageID string) error
}

// RenderInput is everything the renderer may use. It is assembled by the
// reconciler from fetched state plus the record's immutable fields.
type RenderInput struct {
	Status      Status
	Title       string
	Reviews     []Review
	Description string
	PRURL       string
	RepoSlug    string // owner/repo#number
	Requester   string
	RolePing    string // chat role id to mention, empty for none
	Timestamp   time.Time
}

// Renderer turns a RenderInput into a chat payload. Pure.
type Renderer func(in RenderInput) DisplayPayload

// DisplayPayload is the chat-surface-neutral message shape. The chat client
// owns the translation to its wire format.
type DisplayPayload struct {
	Content string
	Embed   Embed
	Buttons []Button
}

type Embed struct {
	Title     string
	Author    string
	Color     int
	Fields    []EmbedField
	Timestamp time.Time
}

type EmbedField struct {
	Name  string
	Value string
}

type Button struct {
	Label string
	URL   string
}
