package sdapi

import "encoding/json"

// ProgressState is the nested state block of a progress response. job_no and
// job_count describe the server's position in its internal stage list and
// are known to be stale or wrong around stage boundaries.
type ProgressState struct {
	JobCount      int    `json:"job_count"`
	JobNo         int    `json:"job_no"`
	Job           string `json:"job"`
	SamplingStep  int    `json:"sampling_step"`
	SamplingSteps int    `json:"sampling_steps"`
}

// ProgressResponse mirrors GET /sdapi/v1/progress.
type ProgressResponse struct {
	Progress    float64       `json:"progress"`
	ETARelative float64       `json:"eta_relative"`
	State       ProgressState `json:"state"`
}

// Img2ImgRequest mirrors POST /sdapi/v1/img2img, limited to the fields this
// app sets.
type Img2ImgRequest struct {
	InitImages        []string              `json:"init_images"`
	Prompt            string                `json:"prompt"`
	NegativePrompt    string                `json:"negative_prompt"`
	DenoisingStrength float64               `json:"denoising_strength"`
	Seed              int64                 `json:"seed"`
	Steps             int                   `json:"steps"`
	Width             int                   `json:"width"`
	Height            int                   `json:"height"`
	CFGScale          float64               `json:"cfg_scale"`
	SamplerName       string                `json:"sampler_name"`
	Scheduler         string                `json:"scheduler"`
	BatchSize         int                   `json:"batch_size"`
	AlwaysonScripts   map[string]ScriptArgs `json:"alwayson_scripts,omitempty"`
}

// ScriptArgs is the argument envelope for one always-on script.
type ScriptArgs struct {
	Args []any `json:"args"`
}

// Img2ImgResponse mirrors the img2img response body.
type Img2ImgResponse struct {
	Images []string `json:"images"`
	Info   string   `json:"info"`
}

// Infotexts unpacks the per-image metadata strings from the response's info
// JSON. Returns nil when the info block is absent or unparsable.
func (r *Img2ImgResponse) Infotexts() []string {
	if r.Info == "" {
		return nil
	}
	var payload struct {
		Infotexts []string `json:"infotexts"`
	}
	if err := json.Unmarshal([]byte(r.Info), &payload); err != nil {
		return nil
	}
	return payload.Infotexts
}

// Options mirrors the subset of /sdapi/v1/options this app reads or writes.
type Options struct {
	SDModelCheckpoint string `json:"sd_model_checkpoint"`
}

// Model is one entry of GET /sdapi/v1/sd-models.
type Model struct {
	Title     string `json:"title"`
	ModelName string `json:"model_name"`
	Hash      string `json:"hash"`
	Filename  string `json:"filename"`
}

// ScriptADetailer is the always-on script key for detection refinement.
const ScriptADetailer = "ADetailer"

// DetailerStage configures one detection-refinement slot.
type DetailerStage struct {
	Model      string  `json:"ad_model"`
	Strength   float64 `json:"ad_denoising_strength"`
	Confidence float64 `json:"ad_confidence"`
}

// disabledStage fills an unused detailer slot so the script does not fall
// back to its own defaults for it.
type disabledStage struct {
	Model string `json:"ad_model"`
}

// DetailerArgs assembles the ADetailer argument list: a leading enable flag,
// one entry per detector in run order, and a disabling sentinel when only a
// single slot is used.
func DetailerArgs(stages ...DetailerStage) ScriptArgs {
	args := []any{true}
	for _, st := range stages {
		args = append(args, st)
	}
	if len(stages) == 1 {
		args = append(args, disabledStage{Model: "None"})
	}
	return ScriptArgs{Args: args}
}
