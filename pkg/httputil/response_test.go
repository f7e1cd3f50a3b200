package httputil

import (
	"encoding/json"
	"net/http/httptest"
	"testing"
)

func TestWriteUnauthorized_SetsBearerChallenge(t *testing.T) {
	w := httptest.NewRecorder()
	WriteUnauthorized(w, "invalid or expired token")

	if w.Code != 401 {
		t.Errorf("status = %d, want 401", w.Code)
	}
	if got := w.Header().Get("WWW-Authenticate"); got != "Bearer" {
		t.Errorf("WWW-Authenticate = %q, want Bearer", got)
	}

	var body map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid JSON body: %v", err)
	}
	if body["error"] != "invalid or expired token" {
		t.Errorf("error = %q", body["error"])
	}
}

func TestWriteRateLimited_SetsRetryAfter(t *testing.T) {
	w := httptest.NewRecorder()
	WriteRateLimited(w, 7)

	if w.Code != 429 {
		t.Errorf("status = %d, want 429", w.Code)
	}
	if got := w.Header().Get("Retry-After"); got != "7" {
		t.Errorf("Retry-After = %q, want 7", got)
	}

	var body map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid JSON body: %v", err)
	}
	if body["retry_after"].(float64) != 7 {
		t.Errorf("retry_after = %v, want 7", body["retry_after"])
	}
}

func TestWriteInternalError_HidesDetail(t *testing.T) {
	w := httptest.NewRecorder()
	WriteInternalError(w)

	if w.Code != 500 {
		t.Errorf("status = %d, want 500", w.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid JSON body: %v", err)
	}
	if body["error"] != "internal server error" {
		t.Errorf("error = %q, want generic message", body["error"])
	}
}
