package logging

import (
	"strings"
	"testing"
	"time"

	log "github.com/sirupsen/logrus"
)

func fire(t *testing.T, r *Ring, msg string, data log.Fields) {
	t.Helper()
	entry := &log.Entry{
		Logger:  log.StandardLogger(),
		Time:    time.Date(2025, 3, 1, 10, 30, 0, 0, time.UTC),
		Message: msg,
		Data:    data,
	}
	if err := r.Fire(entry); err != nil {
		t.Fatalf("Fire: %v", err)
	}
}

func TestRingCapsAtCapacity(t *testing.T) {
	r := NewRing(3)
	for _, m := range []string{"a", "b", "c", "d", "e"} {
		fire(t, r, m, nil)
	}
	if r.Len() != 3 {
		t.Fatalf("Len = %d, want 3", r.Len())
	}
	lines := r.Tail(0)
	for i, want := range []string{"c", "d", "e"} {
		if !strings.HasSuffix(lines[i], " "+want) {
			t.Errorf("line %d = %q, want suffix %q", i, lines[i], want)
		}
	}
}

func TestRingTailReturnsMostRecent(t *testing.T) {
	r := NewRing(10)
	for _, m := range []string{"one", "two", "three"} {
		fire(t, r, m, nil)
	}
	lines := r.Tail(2)
	if len(lines) != 2 {
		t.Fatalf("Tail(2) returned %d lines", len(lines))
	}
	if !strings.HasSuffix(lines[0], "two") || !strings.HasSuffix(lines[1], "three") {
		t.Errorf("Tail(2) = %v", lines)
	}
}

func TestRingIncludesTimestampAndFields(t *testing.T) {
	r := NewRing(10)
	fire(t, r, "saved image", log.Fields{"image": 2, "batch_id": "abc"})
	line := r.Tail(1)[0]
	if !strings.HasPrefix(line, "10:30:00 ") {
		t.Errorf("line missing timestamp prefix: %q", line)
	}
	if !strings.Contains(line, "batch_id=abc") || !strings.Contains(line, "image=2") {
		t.Errorf("line missing fields: %q", line)
	}
}
