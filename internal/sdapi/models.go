package sdapi

import (
	"context"
	"strings"
)

// EnsureModel makes sure the active checkpoint matches keyword. When the
// active one already contains the keyword nothing is written; otherwise the
// first installed model whose title or name contains the keyword is
// activated. Returns the title active after the call.
//
// Switching loads the checkpoint into the server, so this is resolved once
// per batch, not per image.
func EnsureModel(ctx context.Context, api API, keyword string) (string, error) {
	opts, err := api.Options(ctx)
	if err != nil {
		return "", err
	}
	if keyword == "" || strings.Contains(opts.SDModelCheckpoint, keyword) {
		return opts.SDModelCheckpoint, nil
	}

	models, err := api.Models(ctx)
	if err != nil {
		return "", err
	}
	for _, m := range models {
		if strings.Contains(m.Title, keyword) || strings.Contains(m.ModelName, keyword) {
			if err := api.SetOptions(ctx, Options{SDModelCheckpoint: m.Title}); err != nil {
				return "", err
			}
			return m.Title, nil
		}
	}
	return "", &ModelNotFoundError{Keyword: keyword}
}
