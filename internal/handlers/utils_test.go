package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestWriteJSONResponse(t *testing.T) {
	rr := httptest.NewRecorder()
	writeJSONResponse(rr, http.StatusOK, map[string]string{"ok": "true"})

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if ct := rr.Header().Get("Content-Type"); ct != "application/json" {
		t.Fatalf("unexpected content-type: %s", ct)
	}
	if body := rr.Body.String(); body == "" {
		t.Fatalf("empty body")
	}
}

func TestWriteSuccess_Envelope(t *testing.T) {
	rr := httptest.NewRecorder()
	writeSuccess(rr, http.StatusCreated, "Created.", map[string]int{"id": 1})

	var resp map[string]interface{}
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if rr.Code != http.StatusCreated || resp["status"] != "success" || resp["message"] != "Created." {
		t.Fatalf("unexpected envelope: %d %v", rr.Code, resp)
	}
	if _, ok := resp["errors"]; ok {
		t.Fatalf("errors must be omitted on success")
	}
}

func TestWriteValidationErrors(t *testing.T) {
	rr := httptest.NewRecorder()
	writeValidationErrors(rr, "Validation failed.", map[string][]string{"name": {"required"}})

	var resp Response
	_ = json.Unmarshal(rr.Body.Bytes(), &resp)
	if rr.Code != http.StatusUnprocessableEntity || resp.Status != "error" || resp.Errors["name"][0] != "required" {
		t.Fatalf("unexpected response: %d %+v", rr.Code, resp)
	}
}

func TestPathID(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/api/v1/airports/5?:id=5", nil)
	id, err := pathID(r)
	if err != nil || id != 5 {
		t.Fatalf("expected id 5, got %d err=%v", id, err)
	}

	for _, raw := range []string{"abc", "0", "-3", ""} {
		r := httptest.NewRequest(http.MethodGet, "/api/v1/airports/x?:id="+raw, nil)
		if _, err := pathID(r); err == nil {
			t.Fatalf("expected error for %q", raw)
		}
	}
}

func TestPagination(t *testing.T) {
	cases := []struct {
		query         string
		limit, offset int
	}{
		{"", 50, 0},
		{"limit=10&offset=20", 10, 20},
		{"limit=500", 50, 0},
		{"limit=-1&offset=-5", 50, 0},
		{"limit=x&offset=y", 50, 0},
		{"limit=200", 200, 0},
	}
	for _, tc := range cases {
		r := httptest.NewRequest(http.MethodGet, "/api/v1/cars?"+tc.query, nil)
		limit, offset := pagination(r)
		if limit != tc.limit || offset != tc.offset {
			t.Fatalf("%q: expected %d/%d, got %d/%d", tc.query, tc.limit, tc.offset, limit, offset)
		}
	}
}

func TestDecodeJSON_TrailingData(t *testing.T) {
	var dst map[string]interface{}
	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"a":1}{"b":2}`))
	if err := decodeJSON(r, &dst); err == nil {
		t.Fatalf("expected error for trailing object")
	}

	r = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"a":1}`))
	if err := decodeJSON(r, &dst); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
