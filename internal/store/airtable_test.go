package store

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func newTestAirtableStore(baseURL string) *AirtableStore {
	return &AirtableStore{
		baseURL:    baseURL,
		apiKey:     "key",
		baseID:     "appBase",
		table:      "Leads Table",
		httpClient: &http.Client{Timeout: 5 * time.Second},
	}
}

func TestAirtableStore_Store(t *testing.T) {
	var gotPath, gotAuth string
	var gotBody map[string]any

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.EscapedPath()
		gotAuth = r.Header.Get("Authorization")
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("failed to decode request body: %v", err)
		}
		w.Write([]byte(`{"id": "recABC123"}`))
	}))
	defer srv.Close()

	s := newTestAirtableStore(srv.URL)
	id, err := s.Store(context.Background(), sampleRecord("a", "u1"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id != "recABC123" {
		t.Errorf("record id = %q, want recABC123", id)
	}

	if gotPath != "/appBase/Leads%20Table" {
		t.Errorf("request path = %q", gotPath)
	}
	if gotAuth != "Bearer key" {
		t.Errorf("authorization header = %q", gotAuth)
	}

	fields, ok := gotBody["fields"].(map[string]any)
	if !ok {
		t.Fatalf("request body has no fields object: %v", gotBody)
	}
	if fields["User ID"] != "u1" || fields["Session ID"] != "s1" {
		t.Errorf("identifier fields = %v / %v", fields["User ID"], fields["Session ID"])
	}
	if fields["Lead Score"] != 7.5 {
		t.Errorf("Lead Score = %v, want 7.5", fields["Lead Score"])
	}
	if fields["Full Conversation"] != "USER: hola\nASSISTANT: buenas" {
		t.Errorf("Full Conversation = %q", fields["Full Conversation"])
	}
	points, _ := fields["Talking Points"].([]any)
	if len(points) != 2 || points[0] != "roi" {
		t.Errorf("Talking Points = %v", fields["Talking Points"])
	}
}

func TestAirtableStore_RemoteFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		w.Write([]byte(`{"error": "INVALID_VALUE"}`))
	}))
	defer srv.Close()

	s := newTestAirtableStore(srv.URL)
	_, err := s.Store(context.Background(), sampleRecord("a", "u1"))
	if err == nil {
		t.Fatal("expected an error")
	}

	var reqErr *RequestError
	if !errors.As(err, &reqErr) {
		t.Fatalf("error is %T, want *RequestError", err)
	}
	if reqErr.StatusCode != http.StatusUnprocessableEntity {
		t.Errorf("status = %d, want 422", reqErr.StatusCode)
	}
	if reqErr.Body != `{"error": "INVALID_VALUE"}` {
		t.Errorf("body = %q", reqErr.Body)
	}
}
