package telemetry

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"
)

type thermo struct {
	t   float64
	err error
}

func (th thermo) GetTemperature() (float64, error) { return th.t, th.err }

type sink struct {
	mu   sync.Mutex
	msgs map[string][][]byte
	got  chan struct{}
}

func newSink() *sink {
	return &sink{msgs: map[string][][]byte{}, got: make(chan struct{}, 16)}
}

func (s *sink) Publish(topic string, payload []byte) error {
	s.mu.Lock()
	s.msgs[topic] = append(s.msgs[topic], payload)
	s.mu.Unlock()
	select {
	case s.got <- struct{}{}:
	default:
	}
	return nil
}

func TestReport(t *testing.T) {
	s := newSink()
	at := time.Date(2026, 10, 16, 8, 30, 0, 0, time.UTC)
	r := &Reporter{Source: thermo{t: 37.5}, Pub: s, Topic: "lab/cam", Serial: "4103000001", now: func() time.Time { return at }}
	if err := r.Report(); err != nil {
		t.Fatal(err)
	}
	if len(s.msgs["lab/cam"]) != 1 {
		t.Fatalf("expected one message, got %d", len(s.msgs["lab/cam"]))
	}
	rd := Reading{}
	if err := json.Unmarshal(s.msgs["lab/cam"][0], &rd); err != nil {
		t.Fatal(err)
	}
	want := Reading{Serial: "4103000001", Temperature: 37.5, Time: at}
	if !rd.Time.Equal(want.Time) || rd.Serial != want.Serial || rd.Temperature != want.Temperature {
		t.Errorf("expected %+v, got %+v", want, rd)
	}
}

func TestReportSourceError(t *testing.T) {
	boom := errors.New("boom")
	r := &Reporter{Source: thermo{err: boom}, Pub: newSink(), Topic: "x"}
	if err := r.Report(); !errors.Is(err, boom) {
		t.Errorf("expected the source error, got %v", err)
	}
}

func TestRunStopsOnCancel(t *testing.T) {
	s := newSink()
	r := &Reporter{Source: thermo{t: 20}, Pub: s, Topic: "x", Interval: time.Millisecond}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error)
	go func() { done <- r.Run(ctx) }()
	select {
	case <-s.got:
	case <-time.After(5 * time.Second):
		t.Fatal("no report within 5 s")
	}
	cancel()
	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}
