// Handles the read-only public pages: detail, listings, search and coaching.

package handlers

import (
	"context"

	"github.com/sarkari/portal/internal/detail"
	"github.com/sarkari/portal/internal/listing"
	"github.com/sarkari/portal/internal/record"
	"github.com/sarkari/portal/internal/server/dto"
	"github.com/sarkari/portal/internal/storage"
)

// ViewHandler serves the public read-only views.
type ViewHandler struct {
	repo      storage.Repository
	projector *detail.Projector
	listing   *listing.Service
}

// NewViewHandler creates a new view handler.
func NewViewHandler(svc *Services) *ViewHandler {
	return &ViewHandler{repo: svc.Repo, projector: svc.Detail, listing: svc.Listing}
}

// Detail returns the detail page of any record id. Unknown ids get a
// placeholder page.
func (h *ViewHandler) Detail(ctx context.Context, req *dto.DetailRequest) (*detail.Detail, error) {
	d, err := h.projector.Project(ctx, req.ID)
	if err != nil {
		return nil, dto.StorageError(err)
	}
	return d, nil
}

// Category lists the records of one category.
func (h *ViewHandler) Category(ctx context.Context, req *dto.CategoryRequest) (*listing.CategoryPage, error) {
	p, err := h.listing.Category(ctx, req.Name)
	if err != nil {
		return nil, apiError(err, "Category")
	}
	return p, nil
}

// Section lists one collection by its page slug.
func (h *ViewHandler) Section(ctx context.Context, req *dto.SectionRequest) (*listing.Section, error) {
	s, err := h.listing.Section(ctx, req.Slug)
	if err != nil {
		return nil, apiError(err, "Section")
	}
	return s, nil
}

// Home returns the home page feed.
func (h *ViewHandler) Home(ctx context.Context, req *dto.EmptyRequest) (*listing.Home, error) {
	home, err := h.listing.Home(ctx)
	if err != nil {
		return nil, apiError(err, "Home")
	}
	return home, nil
}

// Search matches record titles.
func (h *ViewHandler) Search(ctx context.Context, req *dto.SearchRequest) (*dto.SearchResponse, error) {
	hits, err := h.listing.Search(ctx, req.Query)
	if err != nil {
		return nil, apiError(err, "Search")
	}
	return &dto.SearchResponse{Query: req.Query, Results: hits}, nil
}

// Coaching returns the institutes linked to a title.
func (h *ViewHandler) Coaching(ctx context.Context, req *dto.CoachingRequest) (*dto.CoachingResponse, error) {
	t, err := h.repo.Coaching(ctx)
	if err != nil {
		return nil, dto.StorageError(err)
	}
	institutes := t.Lookup(req.Title)
	if institutes == nil {
		institutes = []record.Coaching{}
	}
	return &dto.CoachingResponse{Title: req.Title, Institutes: institutes}, nil
}

// CoachingTable returns the whole coaching side table.
func (h *ViewHandler) CoachingTable(ctx context.Context, req *dto.EmptyRequest) (*record.CoachingTable, error) {
	t, err := h.repo.Coaching(ctx)
	if err != nil {
		return nil, dto.StorageError(err)
	}
	return t, nil
}
