package imgrec

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi"

	"github.com/nasa-jpl/idslab/generichttp"
)

func fixedRecorder(t *testing.T, prefix string) (*Recorder, string) {
	t.Helper()
	root := t.TempDir()
	r := New(root, prefix)
	r.now = func() time.Time { return time.Date(2026, 10, 16, 12, 0, 0, 0, time.UTC) }
	return r, filepath.Join(root, "2026-10-16")
}

func TestRecordIncrements(t *testing.T) {
	r, day := fixedRecorder(t, "cam-")
	for i := 0; i < 3; i++ {
		fn, err := r.Record([]byte("SIMPLE"))
		if err != nil {
			t.Fatal(err)
		}
		want := filepath.Join(day, "cam-00000"+string(rune('0'+i))+".fits")
		if fn != want {
			t.Errorf("expected %s, got %s", want, fn)
		}
	}
}

func TestRecordContinuesAfterExisting(t *testing.T) {
	r, day := fixedRecorder(t, "x")
	if err := os.MkdirAll(day, 0777); err != nil {
		t.Fatal(err)
	}
	for _, fn := range []string{"x000007.fits", "x000002.fits", "y000099.fits", "xnotanumber.fits"} {
		if err := os.WriteFile(filepath.Join(day, fn), nil, 0666); err != nil {
			t.Fatal(err)
		}
	}
	fn, err := r.Record([]byte("SIMPLE"))
	if err != nil {
		t.Fatal(err)
	}
	if filepath.Base(fn) != "x000008.fits" {
		t.Errorf("expected x000008.fits, got %s", filepath.Base(fn))
	}
}

func TestRecordNeverOverwrites(t *testing.T) {
	r, day := fixedRecorder(t, "")
	if _, err := r.Record([]byte("one")); err != nil {
		t.Fatal(err)
	}
	// a file appears behind the recorder's back
	if err := os.WriteFile(filepath.Join(day, "000001.fits"), []byte("other"), 0666); err != nil {
		t.Fatal(err)
	}
	fn, err := r.Record([]byte("two"))
	if err != nil {
		t.Fatal(err)
	}
	if filepath.Base(fn) != "000002.fits" {
		t.Errorf("expected the taken name to be skipped, got %s", fn)
	}
	b, _ := os.ReadFile(filepath.Join(day, "000001.fits"))
	if string(b) != "other" {
		t.Error("existing file was overwritten")
	}
}

func TestRecordDisabled(t *testing.T) {
	r := New("", "p")
	if _, err := r.Record(nil); !errors.Is(err, ErrDisabled) {
		t.Errorf("expected ErrDisabled with no root, got %v", err)
	}
	r2, _ := fixedRecorder(t, "p")
	r2.SetEnabled(false)
	if _, err := r2.Record(nil); !errors.Is(err, ErrDisabled) {
		t.Errorf("expected ErrDisabled when disabled, got %v", err)
	}
}

type table generichttp.RouteTable

func (t table) RT() generichttp.RouteTable { return generichttp.RouteTable(t) }

func TestInjectRoutes(t *testing.T) {
	r, _ := fixedRecorder(t, "a")
	rt := table{}
	r.Inject(rt)
	mux := chi.NewRouter()
	generichttp.RouteTable(rt).Bind(mux)

	w := httptest.NewRecorder()
	mux.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/autowrite/prefix", strings.NewReader(`{"str":"b"}`)))
	if w.Code != http.StatusOK || r.Prefix() != "b" {
		t.Fatalf("expected prefix b, got %q (code %d)", r.Prefix(), w.Code)
	}
	w = httptest.NewRecorder()
	mux.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/autowrite/enabled", nil))
	if strings.TrimSpace(w.Body.String()) != `{"bool":true}` {
		t.Errorf("unexpected body %q", w.Body.String())
	}
}
