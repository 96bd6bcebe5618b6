package dto

import "time"

type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type ErrorResponse struct {
	Error Error `json:"error"`
}

type CreateAnnouncementRequest struct {
	GitHubURL   string `json:"github_url"`
	Description string `json:"description"`
	ChannelID   string `json:"channel_id"`
	Requester   string `json:"requester"`
}

type PtalRecord struct {
	ID          int64      `json:"id"`
	ChannelID   string     `json:"channel_id"`
	MessageID   string     `json:"message_id"`
	Owner       string     `json:"owner"`
	Repository  string     `json:"repository"`
	PRNumber    int        `json:"pr_number"`
	Description string     `json:"description"`
	Requester   string     `json:"requester,omitempty"`
	CreatedAt   *time.Time `json:"created_at,omitempty"`
}

type CreateAnnouncementResponse struct {
	Record      PtalRecord `json:"record"`
	StatusLabel string     `json:"status_label"`
}
