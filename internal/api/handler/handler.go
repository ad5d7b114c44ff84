package handler

import (
	"chatline/backend/internal/auth"
	"chatline/backend/internal/chathub"
	"chatline/backend/internal/storage"
)

// Handler carries the dependencies shared by all HTTP endpoints.
type Handler struct {
	Hub     *chathub.Hub
	Storage storage.Storage
	Auth    *auth.Service
}

func NewHandler(hub *chathub.Hub, s storage.Storage, a *auth.Service) *Handler {
	return &Handler{Hub: hub, Storage: s, Auth: a}
}
