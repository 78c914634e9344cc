package progress

import "artassist/internal/model"

// DefaultFirstPollGuard is the overall fraction below which a nonzero stage
// index on the first image is distrusted. Right after submission the server
// sometimes still reports the stage index of the previous job.
const DefaultFirstPollGuard = 0.05

// Sample is one raw reading from the server's job status endpoint. All three
// fields may be stale or wrong; the normalizer exists to absorb that.
type Sample struct {
	Fraction   float64 // overall fraction for the in-flight job, nominally 0..1
	StageIndex int     // reported position in the job's internal stage list
	StageCount int     // reported stage count, may undercount always-on stages
}

// Normalizer converts raw samples into a per-image progress fraction.
type Normalizer struct {
	firstPollGuard float64
}

// NewNormalizer returns a Normalizer. firstPollGuard <= 0 selects
// DefaultFirstPollGuard.
func NewNormalizer(firstPollGuard float64) Normalizer {
	if firstPollGuard <= 0 {
		firstPollGuard = DefaultFirstPollGuard
	}
	return Normalizer{firstPollGuard: firstPollGuard}
}

// ImageProgress returns how far the current image has progressed through all
// of its stages, in [0,1].
//
// The face-fix pipeline is special-cased: its base pass is a no-op the server
// still counts, so the refinement stage is mapped onto the back half of the
// server's own fraction scale. Every other pipeline divides the fraction
// evenly across the effective stage count, trusting the orchestrator's
// scheduled count over the server's when the server reports fewer.
func (n Normalizer) ImageProgress(task model.Task, firstImage bool, expectedStages int, s Sample) float64 {
	stage := s.StageIndex
	if firstImage && s.Fraction < n.firstPollGuard && stage > 0 {
		stage = 0
	}

	var p float64
	if task == model.TaskFaceFix {
		if stage <= 0 {
			p = 0
		} else {
			p = (s.Fraction - 0.5) / 0.5
		}
	} else {
		effective := s.StageCount
		if expectedStages > effective {
			effective = expectedStages
		}
		if effective < 1 {
			effective = 1
		}
		if stage > effective-1 {
			stage = effective - 1
		}
		if stage < 0 {
			stage = 0
		}
		p = (float64(stage) + s.Fraction) / float64(effective)
	}
	return clamp01(p)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
