// Handles the CRUD endpoints of every record collection.

package handlers

import (
	"context"

	"github.com/sarkari/portal/internal/content"
	"github.com/sarkari/portal/internal/record"
	"github.com/sarkari/portal/internal/server/dto"
)

// Collection binds an API path to a record kind and to the JSON keys its
// responses use.
type Collection struct {
	Path    string
	Kind    record.Kind
	ListKey string
	Noun    string
}

// Collections lists every CRUD endpoint.
var Collections = []Collection{
	{"jobs", record.Job, "jobs", "job"},
	{"results", record.Result, "results", "result"},
	{"answerkeys", record.AnswerKey, "answerKeys", "answerKey"},
	{"admitcards", record.AdmitCard, "admitCards", "admitCard"},
	{"yojanas", record.Yojana, "sarkariYojana", "yojana"},
	{"internships", record.Internship, "internships", "internship"},
	{"scholarships", record.Scholarship, "scholarships", "scholarship"},
}

// RecordHandler serves one collection.
type RecordHandler struct {
	content *content.Service
	coll    Collection
}

// NewRecordHandler creates a handler for coll.
func NewRecordHandler(svc *content.Service, coll Collection) *RecordHandler {
	return &RecordHandler{content: svc, coll: coll}
}

// List returns the whole collection, or the children of one job.
func (h *RecordHandler) List(ctx context.Context, req *dto.ListRecordsRequest) (*dto.ListRecordsResponse, error) {
	rows, err := h.content.List(ctx, h.coll.Kind, req.JobID)
	if err != nil {
		return nil, apiError(err, h.coll.Kind.Label())
	}
	return &dto.ListRecordsResponse{Key: h.coll.ListKey, Items: rows}, nil
}

// Save creates a record, or updates it for the kinds whose POST accepts an
// existing id.
func (h *RecordHandler) Save(ctx context.Context, req *dto.RecordRequest) (*dto.SaveRecordResponse, error) {
	in := req.Fields
	if in == nil {
		in = record.Record{}
	}
	var (
		res content.SaveResult
		err error
	)
	switch k := h.coll.Kind; k {
	case record.Job:
		res, err = h.content.SaveJob(ctx, in)
	case record.Yojana:
		res, err = h.content.SaveYojana(ctx, in, req.Posts)
	case record.Internship:
		res, err = h.content.SaveInternship(ctx, in)
	case record.Scholarship:
		res, err = h.content.SaveScholarship(ctx, in)
	default:
		res.Record, err = h.content.CreateChild(ctx, k, in)
		res.Created = true
	}
	if err != nil {
		return nil, apiError(err, h.coll.Kind.Label())
	}
	return &dto.SaveRecordResponse{Noun: h.coll.Noun, Record: res.Record, Created: res.Created, Updated: !res.Created}, nil
}

// Patch overwrites the supplied fields of a child record.
func (h *RecordHandler) Patch(ctx context.Context, req *dto.RecordRequest) (*dto.SaveRecordResponse, error) {
	r, err := h.content.PatchChild(ctx, h.coll.Kind, req.Fields)
	if err != nil {
		return nil, apiError(err, h.coll.Kind.Label())
	}
	return &dto.SaveRecordResponse{Noun: h.coll.Noun, Record: r, Updated: true}, nil
}

// Delete removes a record by id.
func (h *RecordHandler) Delete(ctx context.Context, req *dto.DeleteRecordRequest) (*dto.OkResponse, error) {
	if err := h.content.Delete(ctx, h.coll.Kind, req.ID); err != nil {
		return nil, apiError(err, h.coll.Kind.Label())
	}
	return &dto.OkResponse{Success: true}, nil
}
