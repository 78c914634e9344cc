package progress

import "artassist/internal/model"

// Phase identifies a high-level step of a running batch.
type Phase string

const (
	PhaseStarting   Phase = "starting"
	PhaseModel      Phase = "model"
	PhaseGenerating Phase = "generating"
	PhaseCompleted  Phase = "completed"
	PhaseCancelled  Phase = "cancelled"
	PhaseError      Phase = "error"
)

// Update conveys phase changes for a batch.
type Update struct {
	BatchID string
	Phase   Phase
	Image   int // 0-based index of the image being generated
	Total   int
	Message string // short human-friendly status line
}

// ImageDone is emitted once per generated image, as soon as it is on disk,
// so observers see partial results while the batch is still running.
type ImageDone struct {
	BatchID string
	Index   int
	Result  model.ResultImage
}

// Result is emitted once per batch when it completes, is cancelled, or fails.
type Result struct {
	BatchID   string
	Images    []model.ResultImage
	Cancelled bool
	Err       error // nil on success and on cancellation
}

// Reporter is implemented by UI or any observer interested in batch events.
type Reporter interface {
	Update(u Update)
	Image(i ImageDone)
	Result(r Result)
}
