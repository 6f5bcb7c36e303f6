package handlers

import (
	"context"

	"github.com/sarkari/portal/internal/server/dto"
	"github.com/sarkari/portal/internal/storage/git"
)

const defaultHistoryLimit = 50

// HistoryHandler lists the commits recorded for mutating requests.
type HistoryHandler struct {
	repo *git.Repo // may be nil
}

// NewHistoryHandler creates a history handler. A nil repo serves an empty
// history.
func NewHistoryHandler(repo *git.Repo) *HistoryHandler {
	return &HistoryHandler{repo: repo}
}

// History returns the latest commits, newest first.
func (h *HistoryHandler) History(ctx context.Context, req *dto.HistoryRequest) (*dto.HistoryResponse, error) {
	resp := &dto.HistoryResponse{Commits: []git.Commit{}}
	if h.repo == nil {
		return resp, nil
	}
	limit := req.Limit
	if limit == 0 {
		limit = defaultHistoryLimit
	}
	commits, err := h.repo.History(ctx, limit)
	if err != nil {
		return nil, dto.InternalWithError("Failed to read history", err)
	}
	if commits != nil {
		resp.Commits = commits
	}
	return resp, nil
}
