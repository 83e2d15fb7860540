package proxy

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/talent-gateway/internal/domain"
	"github.com/spec-kit/talent-gateway/internal/observability"
)

func testDispatcher(baseURL string, timeout time.Duration) *Dispatcher {
	return NewDispatcher(baseURL, timeout, zap.NewNop(), observability.NewMetrics(), nil)
}

func candidateIdentity() *domain.Identity {
	return &domain.Identity{
		SubjectID: "subj-7",
		Email:     "cand@example.com",
		Role:      domain.RoleCandidate,
		Status:    "active",
	}
}

func TestDispatchInjectsTrustedIdentityHeaders(t *testing.T) {
	t.Parallel()

	var gotID, gotEmail, gotRole string
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotID = r.Header.Get(HeaderUserID)
		gotEmail = r.Header.Get(HeaderUserEmail)
		gotRole = r.Header.Get(HeaderUserRole)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer backend.Close()

	d := testDispatcher(backend.URL, time.Second)
	resp, err := d.Dispatch(context.Background(), Request{
		Method:   http.MethodGet,
		Path:     "/api/jobs",
		Identity: candidateIdentity(),
	})
	if err != nil {
		t.Fatalf("Dispatch: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Errorf("StatusCode = %d, want 200", resp.StatusCode)
	}

	if gotID != "subj-7" {
		t.Errorf("%s = %q, want %q", HeaderUserID, gotID, "subj-7")
	}
	if gotEmail != "cand@example.com" {
		t.Errorf("%s = %q, want %q", HeaderUserEmail, gotEmail, "cand@example.com")
	}
	if gotRole != string(domain.RoleCandidate) {
		t.Errorf("%s = %q, want %q", HeaderUserRole, gotRole, domain.RoleCandidate)
	}
}

func TestDispatchOmitsIdentityHeadersWithoutIdentity(t *testing.T) {
	t.Parallel()

	var sawRole bool
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, sawRole = r.Header[http.CanonicalHeaderKey(HeaderUserRole)]
		_, _ = w.Write([]byte(`{}`))
	}))
	defer backend.Close()

	d := testDispatcher(backend.URL, time.Second)
	if _, err := d.Dispatch(context.Background(), Request{Method: http.MethodGet, Path: "/"}); err != nil {
		t.Fatalf("Dispatch: %v", err)
	}
	if sawRole {
		t.Errorf("%s header present without a session identity", HeaderUserRole)
	}
}

func TestDispatchForwardsMethodQueryAndBody(t *testing.T) {
	t.Parallel()

	var gotMethod, gotQuery, gotBody, gotContentType string
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotQuery = r.URL.RawQuery
		body, _ := io.ReadAll(r.Body)
		gotBody = string(body)
		gotContentType = r.Header.Get("Content-Type")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"created":true}`))
	}))
	defer backend.Close()

	d := testDispatcher(backend.URL, time.Second)
	resp, err := d.Dispatch(context.Background(), Request{
		Method:      http.MethodPost,
		Path:        "/api/applications",
		RawQuery:    "job=123&source=search",
		Body:        []byte(`{"cover":"hello"}`),
		ContentType: "application/json",
		Identity:    candidateIdentity(),
	})
	if err != nil {
		t.Fatalf("Dispatch: %v", err)
	}

	if gotMethod != http.MethodPost {
		t.Errorf("method = %q, want POST", gotMethod)
	}
	if gotQuery != "job=123&source=search" {
		t.Errorf("query = %q", gotQuery)
	}
	if gotBody != `{"cover":"hello"}` {
		t.Errorf("body = %q", gotBody)
	}
	if gotContentType != "application/json" {
		t.Errorf("content type = %q", gotContentType)
	}
	if resp.StatusCode != http.StatusCreated {
		t.Errorf("StatusCode = %d, want 201", resp.StatusCode)
	}
	if string(resp.Body) != `{"created":true}` {
		t.Errorf("Body = %q", resp.Body)
	}
}

func TestDispatchPassesJSONErrorsVerbatim(t *testing.T) {
	t.Parallel()

	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":"not found"}`))
	}))
	defer backend.Close()

	d := testDispatcher(backend.URL, time.Second)
	resp, err := d.Dispatch(context.Background(), Request{
		Method:   http.MethodGet,
		Path:     "/api/admin/applications/xyz/release",
		Identity: candidateIdentity(),
		Fallback: "Release failed",
	})
	if err != nil {
		t.Fatalf("Dispatch: %v", err)
	}
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("StatusCode = %d, want 404", resp.StatusCode)
	}
	if string(resp.Body) != `{"error":"not found"}` {
		t.Errorf("Body = %q, want verbatim backend error", resp.Body)
	}
}

func TestDispatchSubstitutesFallbackForNonJSONErrors(t *testing.T) {
	t.Parallel()

	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte("<html>upstream exploded</html>"))
	}))
	defer backend.Close()

	d := testDispatcher(backend.URL, time.Second)
	resp, err := d.Dispatch(context.Background(), Request{
		Method:   http.MethodGet,
		Path:     "/api/jobs",
		Fallback: "Unable to fetch jobs",
	})
	if err != nil {
		t.Fatalf("Dispatch: %v", err)
	}
	if resp.StatusCode != http.StatusBadGateway {
		t.Errorf("StatusCode = %d, want 502", resp.StatusCode)
	}

	var shaped map[string]string
	if err := json.Unmarshal(resp.Body, &shaped); err != nil {
		t.Fatalf("fallback body is not JSON: %q", resp.Body)
	}
	if shaped["error"] != "Unable to fetch jobs" {
		t.Errorf(`error = %q, want "Unable to fetch jobs"`, shaped["error"])
	}
}

func TestDispatchConnectionFailure(t *testing.T) {
	t.Parallel()

	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	backend.Close() // nothing listening anymore

	d := testDispatcher(backend.URL, time.Second)
	_, err := d.Dispatch(context.Background(), Request{Method: http.MethodGet, Path: "/api/jobs"})
	if !errors.Is(err, ErrUpstreamUnavailable) {
		t.Fatalf("Dispatch = %v, want ErrUpstreamUnavailable", err)
	}
}

func TestDispatchTimeout(t *testing.T) {
	t.Parallel()

	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(300 * time.Millisecond)
	}))
	defer backend.Close()

	d := testDispatcher(backend.URL, 50*time.Millisecond)
	_, err := d.Dispatch(context.Background(), Request{Method: http.MethodGet, Path: "/api/jobs"})
	if !errors.Is(err, ErrUpstreamUnavailable) {
		t.Fatalf("Dispatch = %v, want ErrUpstreamUnavailable", err)
	}
}

func TestDispatchBreakerOpensAfterRepeatedFailures(t *testing.T) {
	t.Parallel()

	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	backend.Close()

	d := testDispatcher(backend.URL, 100*time.Millisecond)
	for i := 0; i < 5; i++ {
		_, err := d.Dispatch(context.Background(), Request{Method: http.MethodGet, Path: "/api/jobs"})
		if !errors.Is(err, ErrUpstreamUnavailable) {
			t.Fatalf("request %d: Dispatch = %v, want ErrUpstreamUnavailable", i, err)
		}
	}
}
