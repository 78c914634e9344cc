// Package cli assembles batch requests from command-line flags.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/pflag"

	"artassist/internal/model"
)

// BindBatchFlags registers the flags shared by the cleanup and facefix
// commands. The detail flag only applies to cleanup; facefix always runs the
// face detector.
func BindBatchFlags(fs *pflag.FlagSet, withDetail bool) {
	fs.String("hint", "", "Free-text hint describing the drawing (translated before use)")
	fs.IntP("count", "n", 1, "Number of images to generate")
	fs.String("strength", "medium", "Strength: weak, medium, strong")
	if withDetail {
		fs.String("detail", "face", "Detection passes: none, face, hands, face-hands")
	}
	fs.Int64("seed", -1, "Base seed; -1 lets the server randomize")
}

// BatchRequest builds a validated request for the given pipeline from parsed
// flags and the positional source-image argument.
func BatchRequest(fs *pflag.FlagSet, task model.Task, imagePath string) (model.BatchRequest, error) {
	var zero model.BatchRequest

	if _, err := os.Stat(imagePath); err != nil {
		return zero, fmt.Errorf("source image: %w", err)
	}

	hint, _ := fs.GetString("hint")
	count, _ := fs.GetInt("count")
	seed, _ := fs.GetInt64("seed")

	rawStrength, _ := fs.GetString("strength")
	strength, err := model.ParseStrength(rawStrength)
	if err != nil {
		return zero, err
	}

	detail := model.DetailNone
	if task == model.TaskCleanup {
		raw, _ := fs.GetString("detail")
		if detail, err = model.ParseDetail(raw); err != nil {
			return zero, err
		}
	}

	req := model.BatchRequest{
		Task:      task,
		ImagePath: imagePath,
		Hint:      hint,
		Count:     count,
		Strength:  strength,
		Detail:    detail,
		Seed:      seed,
	}
	if err := req.Validate(); err != nil {
		return zero, err
	}
	return req, nil
}
