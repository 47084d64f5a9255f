package generichttp_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi"

	"github.com/nasa-jpl/idslab/generichttp"
)

type teapot struct{}

func (teapot) Error() string   { return "short and stout" }
func (teapot) StatusCode() int { return http.StatusTeapot }

func TestSubMuxSanitize(t *testing.T) {
	cases := map[string]string{"": "/", "/": "/", "cam": "/cam", "/cam/": "/cam", "a/b/": "/a/b"}
	for in, want := range cases {
		if got := generichttp.SubMuxSanitize(in); got != want {
			t.Errorf("SubMuxSanitize(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestErrorUsesStatusCoder(t *testing.T) {
	w := httptest.NewRecorder()
	generichttp.Error(w, teapot{})
	if w.Code != http.StatusTeapot {
		t.Errorf("expected 418, got %d", w.Code)
	}
	w = httptest.NewRecorder()
	generichttp.Error(w, errors.New("plain"))
	if w.Code != http.StatusInternalServerError {
		t.Errorf("expected 500, got %d", w.Code)
	}
}

func TestBindGetSetBool(t *testing.T) {
	state := false
	rt := generichttp.RouteTable{
		{Method: http.MethodGet, Path: "/on"}:  generichttp.GetBool(func() (bool, error) { return state, nil }),
		{Method: http.MethodPost, Path: "/on"}: generichttp.SetBool(func(b bool) error { state = b; return nil }),
	}
	r := chi.NewRouter()
	rt.Bind(r)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/on", strings.NewReader(`{"bool":true}`)))
	if w.Code != http.StatusOK || !state {
		t.Fatalf("expected POST to set state, code %d state %v", w.Code, state)
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/on", nil))
	if strings.TrimSpace(w.Body.String()) != `{"bool":true}` {
		t.Errorf("unexpected GET body %q", w.Body.String())
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/on", strings.NewReader(`not json`)))
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected a bad body to give 400, got %d", w.Code)
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/endpoints", nil))
	if !strings.Contains(w.Body.String(), "GET /on") || !strings.Contains(w.Body.String(), "POST /on") {
		t.Errorf("expected endpoints to be listed, got %s", w.Body.String())
	}
}

func TestGetFloatError(t *testing.T) {
	h := generichttp.GetFloat(func() (float64, error) { return 0, teapot{} })
	w := httptest.NewRecorder()
	h(w, httptest.NewRequest(http.MethodGet, "/", nil))
	if w.Code != http.StatusTeapot {
		t.Errorf("expected the error's status, got %d", w.Code)
	}
}
