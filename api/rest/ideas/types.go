package ideas

import (
	"context"

	"codeberg.org/incdrops/server/incdrops/ideas"
	"codeberg.org/incdrops/server/internal/generator"
)

type Store interface {
	ListHistory(ctx context.Context, accountID string) ([]ideas.HistoryEntry, error)
	ToggleSaved(ctx context.Context, accountID string, idea generator.Idea) (bool, error)
	RemoveSaved(ctx context.Context, accountID, ideaID string) error
	ListSaved(ctx context.Context, accountID string) ([]generator.Idea, error)
}

type HistoryResponse struct {
	History []ideas.HistoryEntry `json:"history"`
}

type SavedResponse struct {
	Saved []generator.Idea `json:"saved"`
}

// the idea to toggle, as returned by a generation
type ToggleRequest struct {
	ID          string   `json:"id" binding:"required,max=64"`
	Title       string   `json:"title" binding:"max=500"`
	Description string   `json:"description" binding:"max=5000"`
	Platforms   []string `json:"platforms" binding:"max=20"`
	Hashtags    []string `json:"hashtags" binding:"max=50"`
	Type        string   `json:"type" binding:"max=100"`
	ContentType string   `json:"contentType" binding:"max=20"`
}

type ToggleResponse struct {
	ID    string `json:"id"`
	Saved bool   `json:"saved"`
}
