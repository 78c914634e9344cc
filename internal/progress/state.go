package progress

import (
	"errors"
	"fmt"
	"sync"

	"artassist/internal/model"
)

// DefaultNoiseThreshold is the largest backward jump, in percentage points,
// still treated as measurement jitter rather than a genuine correction.
const DefaultNoiseThreshold = 10.0

// noImage marks last-seen-image before the first accepted reading of a batch.
const noImage = -1

// ErrActive is returned by Begin when a batch is already running.
var ErrActive = errors.New("a batch is already running")

// BatchState is the single shared record of the currently running batch. The
// orchestrator writes it as the batch advances; the polling loop reads it to
// attribute raw server progress to the right image. One instance exists per
// process and batches never overlap.
type BatchState struct {
	mu             sync.Mutex
	task           model.Task
	imageIndex     int
	totalImages    int
	expectedStages int
	lastPercent    float64
	lastImageIndex int
	noiseThreshold float64
}

// NewBatchState returns an idle BatchState. noiseThreshold <= 0 selects
// DefaultNoiseThreshold.
func NewBatchState(noiseThreshold float64) *BatchState {
	if noiseThreshold <= 0 {
		noiseThreshold = DefaultNoiseThreshold
	}
	return &BatchState{
		lastImageIndex: noImage,
		noiseThreshold: noiseThreshold,
	}
}

// Begin marks a batch as running and resets the per-batch progress memory.
// It fails with ErrActive while another batch is running.
func (s *BatchState) Begin(task model.Task, totalImages, expectedStages int) error {
	if task == model.TaskNone {
		return errors.New("cannot begin a batch without a task")
	}
	if totalImages < 1 {
		return fmt.Errorf("total image count must be >= 1, got %d", totalImages)
	}
	if expectedStages < 1 {
		expectedStages = 1
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.task != model.TaskNone {
		return ErrActive
	}
	s.task = task
	s.imageIndex = 0
	s.totalImages = totalImages
	s.expectedStages = expectedStages
	s.lastPercent = 0
	s.lastImageIndex = noImage
	return nil
}

// Advance records that the orchestrator is about to generate image i.
func (s *BatchState) Advance(i int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.imageIndex = i
}

// Finish clears the active task. The last accepted percent is kept so the
// polling loop can report the just-completed state until the next batch.
func (s *BatchState) Finish() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.task = model.TaskNone
}

// Active reports whether a batch is currently running.
func (s *BatchState) Active() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.task != model.TaskNone
}

// Snapshot is a point-in-time copy of the batch fields. A snapshot may be
// slightly stale; the next poll corrects it.
type Snapshot struct {
	Task           model.Task
	ImageIndex     int
	TotalImages    int
	ExpectedStages int
	LastPercent    float64
	LastImageIndex int
}

// Snapshot returns a copy of the current state.
func (s *BatchState) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Snapshot{
		Task:           s.task,
		ImageIndex:     s.imageIndex,
		TotalImages:    s.totalImages,
		ExpectedStages: s.expectedStages,
		LastPercent:    s.lastPercent,
		LastImageIndex: s.lastImageIndex,
	}
}

// Observe folds one per-image progress fraction into the overall batch
// percent and returns the accepted value in [0,100].
//
// A reading for a new image is always accepted, even when lower than the
// previous value. On the same image a higher reading is accepted directly; a
// lower one is kept only when it dropped by at least the noise threshold,
// which means the previous reading was itself a bad spike.
func (s *BatchState) Observe(imageProgress float64) float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.task == model.TaskNone || s.totalImages < 1 {
		return s.lastPercent
	}

	raw := (float64(s.imageIndex) + imageProgress) / float64(s.totalImages) * 100

	accepted := raw
	if s.lastImageIndex == s.imageIndex {
		if raw < s.lastPercent && s.lastPercent-raw < s.noiseThreshold {
			accepted = s.lastPercent
		}
	} else {
		s.lastImageIndex = s.imageIndex
	}
	s.lastPercent = accepted
	return accepted
}

// DisplayPercent converts the last accepted percent into what the user sees:
// at most 99 while a batch is active, 100 reserved for just-completed, 0 when
// idle.
func DisplayPercent(active bool, lastPercent float64) int {
	if !active {
		if lastPercent > 0 {
			return 100
		}
		return 0
	}
	p := int(lastPercent)
	if p > 99 {
		p = 99
	}
	if p < 0 {
		p = 0
	}
	return p
}

// Label renders the short "(i/N) P%" progress label, 1-based for humans.
func Label(imageIndex, totalImages, percent int) string {
	return fmt.Sprintf("(%d/%d) %d%%", imageIndex+1, totalImages, percent)
}
