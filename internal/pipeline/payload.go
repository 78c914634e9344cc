package pipeline

import (
	"artassist/internal/config"
	"artassist/internal/imageio"
	"artassist/internal/model"
	"artassist/internal/sdapi"
)

// SeedFor returns the seed for the image at index i. A fixed base seed is
// advanced per image so the batch does not produce N identical results; -1
// stays -1 and lets the server randomize every image.
func SeedFor(base int64, i int) int64 {
	if base == -1 {
		return -1
	}
	return base + int64(i)
}

// strengthFor looks the discrete label up in the pipeline's table. The
// fallback is the medium value each table was tuned around.
func strengthFor(table map[string]float64, label model.StrengthLabel, fallback float64) float64 {
	if v, ok := table[string(label)]; ok {
		return v
	}
	return fallback
}

// buildRequest assembles the img2img payload for image i of the batch.
//
// Cleanup regenerates the whole drawing at the selected denoise strength,
// with optional detection passes at that same strength. Face-fix keeps the
// base pass a no-op (denoise 0) and does all its work in the face detection
// pass, so only the detected region is touched.
func buildRequest(req model.BatchRequest, gen config.Generation, prep imageio.Prepared, pos, neg string, i int) *sdapi.Img2ImgRequest {
	out := &sdapi.Img2ImgRequest{
		InitImages:     []string{prep.Base64},
		Prompt:         pos,
		NegativePrompt: neg,
		Seed:           SeedFor(req.Seed, i),
		Steps:          gen.Steps,
		Width:          prep.Width,
		Height:         prep.Height,
		CFGScale:       gen.CFGScale,
		SamplerName:    gen.Sampler,
		Scheduler:      gen.Scheduler,
		BatchSize:      1,
	}

	switch req.Task {
	case model.TaskFaceFix:
		out.DenoisingStrength = 0
		strength := strengthFor(gen.FaceFixStrength, req.Strength, 0.5)
		out.AlwaysonScripts = map[string]sdapi.ScriptArgs{
			sdapi.ScriptADetailer: sdapi.DetailerArgs(sdapi.DetailerStage{
				Model:      model.DetectorFace,
				Strength:   strength,
				Confidence: gen.DetailConfidence,
			}),
		}
	default:
		strength := strengthFor(gen.CleanupStrength, req.Strength, 0.4)
		out.DenoisingStrength = strength
		if detectors := req.Detail.Detectors(); len(detectors) > 0 {
			stages := make([]sdapi.DetailerStage, 0, len(detectors))
			for _, d := range detectors {
				stages = append(stages, sdapi.DetailerStage{
					Model:      d,
					Strength:   strength,
					Confidence: gen.DetailConfidence,
				})
			}
			out.AlwaysonScripts = map[string]sdapi.ScriptArgs{
				sdapi.ScriptADetailer: sdapi.DetailerArgs(stages...),
			}
		}
	}
	return out
}
