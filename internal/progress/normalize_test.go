package progress

import (
	"math"
	"testing"

	"artassist/internal/model"
)

func TestImageProgress(t *testing.T) {
	n := NewNormalizer(0)

	tests := []struct {
		name           string
		task           model.Task
		firstImage     bool
		expectedStages int
		sample         Sample
		want           float64
	}{
		{
			name:           "first image stale stage index forced to zero",
			task:           model.TaskCleanup,
			firstImage:     true,
			expectedStages: 3,
			sample:         Sample{Fraction: 0.02, StageIndex: 1, StageCount: 3},
			want:           0.02 / 3,
		},
		{
			name:           "guard only applies to the first image",
			task:           model.TaskCleanup,
			firstImage:     false,
			expectedStages: 3,
			sample:         Sample{Fraction: 0.02, StageIndex: 1, StageCount: 3},
			want:           1.02 / 3,
		},
		{
			name:           "guard not triggered above the threshold",
			task:           model.TaskCleanup,
			firstImage:     true,
			expectedStages: 3,
			sample:         Sample{Fraction: 0.06, StageIndex: 1, StageCount: 3},
			want:           1.06 / 3,
		},
		{
			name:           "face fix still in base pass",
			task:           model.TaskFaceFix,
			expectedStages: 2,
			sample:         Sample{Fraction: 0.3, StageIndex: 0, StageCount: 2},
			want:           0,
		},
		{
			name:           "face fix refinement just started",
			task:           model.TaskFaceFix,
			expectedStages: 2,
			sample:         Sample{Fraction: 0.5, StageIndex: 1, StageCount: 2},
			want:           0,
		},
		{
			name:           "face fix refinement halfway",
			task:           model.TaskFaceFix,
			expectedStages: 2,
			sample:         Sample{Fraction: 0.75, StageIndex: 1, StageCount: 2},
			want:           0.5,
		},
		{
			name:           "face fix refinement done",
			task:           model.TaskFaceFix,
			expectedStages: 2,
			sample:         Sample{Fraction: 1.0, StageIndex: 1, StageCount: 2},
			want:           1.0,
		},
		{
			name:           "face fix fraction behind handoff clamps to zero",
			task:           model.TaskFaceFix,
			expectedStages: 2,
			sample:         Sample{Fraction: 0.4, StageIndex: 1, StageCount: 2},
			want:           0,
		},
		{
			name:           "server undercounts stages",
			task:           model.TaskCleanup,
			expectedStages: 3,
			sample:         Sample{Fraction: 0.5, StageIndex: 2, StageCount: 1},
			want:           2.5 / 3,
		},
		{
			name:           "server overcounts stages",
			task:           model.TaskCleanup,
			expectedStages: 1,
			sample:         Sample{Fraction: 0.5, StageIndex: 1, StageCount: 2},
			want:           1.5 / 2,
		},
		{
			name:           "stage index beyond effective count is clamped",
			task:           model.TaskCleanup,
			expectedStages: 2,
			sample:         Sample{Fraction: 0.5, StageIndex: 5, StageCount: 2},
			want:           1.5 / 2,
		},
		{
			name:           "zero counts fall back to a single stage",
			task:           model.TaskCleanup,
			expectedStages: 0,
			sample:         Sample{Fraction: 0.4, StageIndex: 0, StageCount: 0},
			want:           0.4,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := n.ImageProgress(tt.task, tt.firstImage, tt.expectedStages, tt.sample)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("ImageProgress() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestImageProgressAlwaysInRange(t *testing.T) {
	n := NewNormalizer(0)
	fractions := []float64{-0.5, 0, 0.02, 0.3, 0.5, 0.9, 1.0, 1.7}

	for _, task := range []model.Task{model.TaskCleanup, model.TaskFaceFix} {
		for _, first := range []bool{true, false} {
			for stage := -1; stage <= 5; stage++ {
				for count := 0; count <= 4; count++ {
					for expected := 0; expected <= 4; expected++ {
						for _, f := range fractions {
							s := Sample{Fraction: f, StageIndex: stage, StageCount: count}
							got := n.ImageProgress(task, first, expected, s)
							if got < 0 || got > 1 {
								t.Fatalf("ImageProgress(%s, first=%v, expected=%d, %+v) = %v, out of [0,1]",
									task, first, expected, s, got)
							}
						}
					}
				}
			}
		}
	}
}

func TestNormalizerGuardThreshold(t *testing.T) {
	// A wider guard distrusts early stage indexes for longer.
	wide := NewNormalizer(0.2)
	got := wide.ImageProgress(model.TaskCleanup, true, 2, Sample{Fraction: 0.1, StageIndex: 1, StageCount: 2})
	if want := 0.1 / 2; math.Abs(got-want) > 1e-9 {
		t.Errorf("wide guard: ImageProgress = %v, want %v", got, want)
	}

	// The default guard leaves the same sample alone.
	def := NewNormalizer(0)
	got = def.ImageProgress(model.TaskCleanup, true, 2, Sample{Fraction: 0.1, StageIndex: 1, StageCount: 2})
	if want := 1.1 / 2; math.Abs(got-want) > 1e-9 {
		t.Errorf("default guard: ImageProgress = %v, want %v", got, want)
	}
}
