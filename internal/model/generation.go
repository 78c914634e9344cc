package model

import "fmt"

// Task identifies which pipeline owns the currently running batch.
type Task string

const (
	TaskNone    Task = ""
	TaskCleanup Task = "cleanup"
	TaskFaceFix Task = "facefix"
)

// StrengthLabel is a discrete strength selector mapped to numeric denoise
// values by the pipeline's strength tables.
type StrengthLabel string

const (
	StrengthWeak   StrengthLabel = "weak"
	StrengthMedium StrengthLabel = "medium"
	StrengthStrong StrengthLabel = "strong"
)

// ParseStrength validates a flag value as a StrengthLabel.
func ParseStrength(s string) (StrengthLabel, error) {
	switch StrengthLabel(s) {
	case StrengthWeak, StrengthMedium, StrengthStrong:
		return StrengthLabel(s), nil
	default:
		return "", fmt.Errorf("invalid strength %q (expected weak|medium|strong)", s)
	}
}

// Detector model files understood by the server's detailer script.
const (
	DetectorFace = "face_yolov8s.pt"
	DetectorHand = "hand_yolov8n.pt"
)

// DetailMode selects which detection-refinement passes run after the base
// pass of the cleanup pipeline.
type DetailMode string

const (
	DetailNone      DetailMode = "none"
	DetailFace      DetailMode = "face"
	DetailHands     DetailMode = "hands"
	DetailFaceHands DetailMode = "face-hands"
)

// ParseDetail validates a flag value as a DetailMode.
func ParseDetail(s string) (DetailMode, error) {
	switch DetailMode(s) {
	case DetailNone, DetailFace, DetailHands, DetailFaceHands:
		return DetailMode(s), nil
	default:
		return "", fmt.Errorf("invalid detail mode %q (expected none|face|hands|face-hands)", s)
	}
}

// StageCount returns the number of sequential sub-jobs the server runs per
// image for this mode: the base pass plus one per enabled detector.
func (d DetailMode) StageCount() int {
	switch d {
	case DetailFace, DetailHands:
		return 2
	case DetailFaceHands:
		return 3
	default:
		return 1
	}
}

// Detectors returns the detector model files for the mode, in run order.
func (d DetailMode) Detectors() []string {
	switch d {
	case DetailFace:
		return []string{DetectorFace}
	case DetailHands:
		return []string{DetectorHand}
	case DetailFaceHands:
		return []string{DetectorFace, DetectorHand}
	default:
		return nil
	}
}

// BatchRequest describes one user-requested batch of generations.
type BatchRequest struct {
	Task      Task
	ImagePath string
	Hint      string        // free-text hint, translated before payload build
	Count     int           // number of images, >= 1
	Strength  StrengthLabel // weak | medium | strong
	Detail    DetailMode    // cleanup only; facefix always refines the face
	Seed      int64         // -1 = let the server randomize
}

// ExpectedStages returns how many sequential sub-jobs the server will run per
// image, regardless of what its status endpoint later claims.
func (r BatchRequest) ExpectedStages() int {
	if r.Task == TaskFaceFix {
		return 2
	}
	return r.Detail.StageCount()
}

// Validate checks the request fields that do not require server contact.
func (r BatchRequest) Validate() error {
	switch r.Task {
	case TaskCleanup, TaskFaceFix:
	default:
		return fmt.Errorf("no pipeline selected")
	}
	if r.ImagePath == "" {
		return fmt.Errorf("no source image")
	}
	if r.Count < 1 {
		return fmt.Errorf("batch count must be >= 1, got %d", r.Count)
	}
	if _, err := ParseStrength(string(r.Strength)); err != nil {
		return err
	}
	if r.Task == TaskCleanup {
		if _, err := ParseDetail(string(r.Detail)); err != nil {
			return err
		}
	}
	return nil
}

// ResultImage is one generated output persisted to disk.
type ResultImage struct {
	Path       string
	Bytes      int64
	Seed       int64
	Parameters string // generation metadata string reported by the server
}

// BatchResult carries everything a finished (or stopped) batch produced.
type BatchResult struct {
	Images    []ResultImage
	Cancelled bool
}
