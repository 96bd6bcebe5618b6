package handler

import (
	"go.uber.org/zap"

	"ptalsvc/internal/domain"
	"ptalsvc/internal/domain/ptal"
)

type Handler struct {
	PtalSvc       ptal.Service
	Events        domain.EventBus
	WebhookSecret string
	Log           *zap.Logger
}

func New(ptalSvc ptal.Service, events domain.EventBus, webhookSecret string, log *zap.Logger) *Handler {
	return &Handler{
		PtalSvc:       ptalSvc,
		Events:        events,
		WebhookSecret: webhookSecret,
		Log:           log,
	}
}
