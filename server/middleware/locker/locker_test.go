package locker_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi"

	"github.com/nasa-jpl/idslab/generichttp"
	"github.com/nasa-jpl/idslab/server/middleware/locker"
)

type table generichttp.RouteTable

func (t table) RT() generichttp.RouteTable { return generichttp.RouteTable(t) }

func TestLockedRoutes(t *testing.T) {
	ok := func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) }
	rt := table{
		{Method: http.MethodGet, Path: "/exposure-time"}: ok,
		{Method: http.MethodPost, Path: "/abort"}:        ok,
	}
	l := locker.New()
	locker.Inject(rt, l)

	r := chi.NewRouter()
	r.Use(l.Check)
	generichttp.RouteTable(rt).Bind(r)
	root := chi.NewRouter()
	root.Mount("/cam", r)

	send := func(method, path, body string) int {
		w := httptest.NewRecorder()
		root.ServeHTTP(w, httptest.NewRequest(method, path, strings.NewReader(body)))
		return w.Code
	}

	if code := send(http.MethodPost, "/cam/lock", `{"bool":true}`); code != http.StatusOK {
		t.Fatalf("expected locking to succeed, got %d", code)
	}
	if !l.Locked() {
		t.Fatal("expected the locker to be locked")
	}
	if code := send(http.MethodGet, "/cam/exposure-time", ""); code != http.StatusLocked {
		t.Errorf("expected 423 while locked, got %d", code)
	}
	if code := send(http.MethodPost, "/cam/abort", ""); code != http.StatusOK {
		t.Errorf("expected abort to pass the lock, got %d", code)
	}
	if code := send(http.MethodPost, "/cam/lock", `{"bool":false}`); code != http.StatusOK {
		t.Fatalf("expected unlocking to succeed, got %d", code)
	}
	if code := send(http.MethodGet, "/cam/exposure-time", ""); code != http.StatusOK {
		t.Errorf("expected 200 once unlocked, got %d", code)
	}
}
