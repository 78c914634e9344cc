package logging

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"

	log "github.com/sirupsen/logrus"
)

const ringCapacity = 100

// Ring is a logrus hook that retains the most recent formatted lines so the
// panel can show a session log without re-reading any file.
type Ring struct {
	mu    sync.Mutex
	cap   int
	lines []string
}

// NewRing returns a ring hook holding up to capacity lines.
func NewRing(capacity int) *Ring {
	if capacity <= 0 {
		capacity = ringCapacity
	}
	return &Ring{cap: capacity}
}

// Levels implements logrus.Hook.
func (r *Ring) Levels() []log.Level {
	return log.AllLevels
}

// Fire implements logrus.Hook. Entries arrive already filtered by the logger
// level, so everything seen here is meant to be visible.
func (r *Ring) Fire(e *log.Entry) error {
	line := e.Time.Format("15:04:05") + " " + e.Message
	if len(e.Data) > 0 {
		keys := make([]string, 0, len(e.Data))
		for k := range e.Data {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		parts := make([]string, 0, len(keys))
		for _, k := range keys {
			parts = append(parts, fmt.Sprintf("%s=%v", k, e.Data[k]))
		}
		line += " (" + strings.Join(parts, " ") + ")"
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.lines = append(r.lines, line)
	if len(r.lines) > r.cap {
		r.lines = r.lines[len(r.lines)-r.cap:]
	}
	return nil
}

// Tail returns up to n of the most recent lines, oldest first.
func (r *Ring) Tail(n int) []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if n <= 0 || n > len(r.lines) {
		n = len(r.lines)
	}
	out := make([]string, n)
	copy(out, r.lines[len(r.lines)-n:])
	return out
}

// Len returns the number of retained lines.
func (r *Ring) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.lines)
}

// Setup configures the standard logrus logger and installs the session ring.
// Pass io.Discard as out while the TUI owns the terminal.
func Setup(verbose bool, out io.Writer) *Ring {
	log.SetOutput(out)
	log.SetFormatter(&log.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "15:04:05",
	})
	if verbose {
		log.SetLevel(log.DebugLevel)
	} else {
		log.SetLevel(log.InfoLevel)
	}
	ring := NewRing(ringCapacity)
	log.AddHook(ring)
	return ring
}
