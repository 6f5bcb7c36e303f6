package dto

import (
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/sarkari/portal/internal/record"
)

func TestAPIError(t *testing.T) {
	t.Run("NewAPIError", func(t *testing.T) {
		err := NewAPIError(http.StatusNotFound, ErrorCodeNotFound, "resource not found")
		if err.StatusCode() != http.StatusNotFound {
			t.Errorf("Expected status code %d, got %d", http.StatusNotFound, err.StatusCode())
		}
		if err.Code() != ErrorCodeNotFound {
			t.Errorf("Expected code %s, got %s", ErrorCodeNotFound, err.Code())
		}
		if err.Error() != "resource not found" {
			t.Errorf("Expected message 'resource not found', got '%s'", err.Error())
		}
		if err.Details() == nil {
			t.Error("Expected Details() to return non-nil map")
		}
	})
	t.Run("WithDetail initializes nil map", func(t *testing.T) {
		err := (&APIError{statusCode: http.StatusBadRequest, code: ErrorCodeValidationFailed}).WithDetail("key", "value")
		if err.Details()["key"] != "value" {
			t.Error("Expected WithDetail to initialize nil map")
		}
	})
	t.Run("Wrap", func(t *testing.T) {
		origErr := errors.New("disk full")
		err := StorageError(origErr)
		if !errors.Is(err, origErr) {
			t.Error("Expected errors.Is to find the wrapped error")
		}
		if err.Error() != "Failed to access data store: disk full" {
			t.Errorf("Error() = %q", err.Error())
		}
		if err.Message() != "Failed to access data store" {
			t.Errorf("Message() = %q", err.Message())
		}
	})
}

func TestErrorConstructors(t *testing.T) {
	tests := []struct {
		name   string
		err    *APIError
		status int
		code   ErrorCode
	}{
		{"NotFound", NotFound("Job"), http.StatusNotFound, ErrorCodeNotFound},
		{"BadRequest", BadRequest("bad"), http.StatusBadRequest, ErrorCodeValidationFailed},
		{"MissingField", MissingField("Missing job ID"), http.StatusBadRequest, ErrorCodeMissingField},
		{"Unauthorized", Unauthorized("no"), http.StatusUnauthorized, ErrorCodeUnauthorized},
		{"Internal", Internal("x"), http.StatusInternalServerError, ErrorCodeInternal},
		{"StorageError", StorageError(errors.New("x")), http.StatusInternalServerError, ErrorCodeStorageError},
		{"RateLimitExceeded", RateLimitExceeded(12), http.StatusTooManyRequests, ErrorCodeRateLimitExceeded},
		{"PayloadTooLarge", PayloadTooLarge(1024), http.StatusRequestEntityTooLarge, ErrorCodePayloadTooLarge},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err.StatusCode() != tt.status {
				t.Errorf("StatusCode() = %d, want %d", tt.err.StatusCode(), tt.status)
			}
			if tt.err.Code() != tt.code {
				t.Errorf("Code() = %s, want %s", tt.err.Code(), tt.code)
			}
		})
	}
	if got := RateLimitExceeded(12).Details()["retry_after"]; got != 12 {
		t.Errorf("retry_after = %v", got)
	}
	if got := NotFound("Job").Error(); got != "Job not found" {
		t.Errorf("NotFound message = %q", got)
	}
}

func TestRecordRequest(t *testing.T) {
	t.Run("scalars", func(t *testing.T) {
		var req RecordRequest
		if err := json.Unmarshal([]byte(`{"id":"jobs_1","totalVacancies":120,"urgent":true,"note":null,"nested":{"a":1}}`), &req); err != nil {
			t.Fatalf("Unmarshal failed: %v", err)
		}
		want := record.Record{"id": "jobs_1", "totalVacancies": "120", "urgent": "true", "note": ""}
		if len(req.Fields) != len(want) {
			t.Fatalf("Fields = %v, want %v", req.Fields, want)
		}
		for k, v := range want {
			if req.Fields[k] != v {
				t.Errorf("%s = %q, want %q", k, req.Fields[k], v)
			}
		}
		if req.Posts != nil {
			t.Errorf("Posts = %v, want nil", req.Posts)
		}
	})
	t.Run("eligibilityPosts", func(t *testing.T) {
		var req RecordRequest
		body := `{"title":"PM Kisan","eligibilityPosts":[{"name":"Farmer","eligibility":"Land","ageLimit":"18+"},{"postName":"Helper"}]}`
		if err := json.Unmarshal([]byte(body), &req); err != nil {
			t.Fatalf("Unmarshal failed: %v", err)
		}
		if len(req.Posts) != 2 || req.Posts[0].Name != "Farmer" || req.Posts[1].Name != "Helper" {
			t.Errorf("Posts = %+v", req.Posts)
		}
		if _, ok := req.Fields["eligibilityPosts"]; ok {
			t.Error("eligibilityPosts leaked into Fields")
		}
	})
	t.Run("empty list", func(t *testing.T) {
		var req RecordRequest
		if err := json.Unmarshal([]byte(`{"eligibilityPosts":[]}`), &req); err != nil {
			t.Fatalf("Unmarshal failed: %v", err)
		}
		if req.Posts == nil || len(req.Posts) != 0 {
			t.Errorf("Posts = %#v, want empty non-nil", req.Posts)
		}
	})
}

func TestSaveRecordResponse(t *testing.T) {
	data, err := json.Marshal(&SaveRecordResponse{Noun: "job", Record: record.Record{"id": "jobs_3"}, Updated: true})
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if m["success"] != true || m["updated"] != true || m["id"] != "jobs_3" {
		t.Errorf("got %s", data)
	}
	if _, ok := m["created"]; ok {
		t.Errorf("unexpected created in %s", data)
	}
	data, err = json.Marshal(&ListRecordsResponse{Key: "sarkariYojana"})
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	if string(data) != `{"sarkariYojana":[]}` {
		t.Errorf("got %s", data)
	}
}
