package update

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/angrygoose0/gitvis-sub000/internal/version"
)

func withVersion(t *testing.T, v string) {
	t.Helper()
	old := version.Version
	version.Version = v
	t.Cleanup(func() { version.Version = old })
}

func releaseServer(t *testing.T, tag string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `{"tag_name": %q}`, tag)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestCheck_NewerAvailable(t *testing.T) {
	withVersion(t, "1.2.0")
	srv := releaseServer(t, "v1.3.0")

	status, err := Check(srv.URL)
	if err != nil {
		t.Fatalf("Check: %v", err)
	}
	if !status.Newer || status.Latest != "1.3.0" {
		t.Errorf("status = %+v, want newer 1.3.0", status)
	}
}

func TestCheck_UpToDate(t *testing.T) {
	withVersion(t, "1.3.0")
	srv := releaseServer(t, "v1.3.0")

	status, err := Check(srv.URL)
	if err != nil {
		t.Fatalf("Check: %v", err)
	}
	if status.Newer {
		t.Errorf("status = %+v, want not newer", status)
	}
}

func TestCheck_DevBuild(t *testing.T) {
	withVersion(t, "dev")

	status, err := Check("http://invalid.test")
	if err != nil {
		t.Fatalf("Check: %v", err)
	}
	if status.Newer || status.Latest != "" {
		t.Errorf("dev build should skip the release lookup, got %+v", status)
	}
}

func TestCheck_BadStatus(t *testing.T) {
	withVersion(t, "1.0.0")
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	t.Cleanup(srv.Close)

	if _, err := Check(srv.URL); err == nil {
		t.Fatal("expected error on non-200 release response")
	}
}
