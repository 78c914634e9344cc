package prompt

import (
	"context"
	"strings"

	log "github.com/sirupsen/logrus"
)

// Quality tags appended to every positive prompt, and the fixed negative
// prompt. These match what the target checkpoint was tuned for.
const (
	QualityTags    = "masterpiece, best quality"
	NegativePrompt = "bad quality, worst quality, worst detail"
)

// Translator turns a hint written in the user's language into English.
type Translator interface {
	Translate(ctx context.Context, text string) (string, error)
}

// Builder renders the positive and negative prompt for a generation request.
type Builder struct {
	translator Translator // nil disables translation
}

// NewBuilder returns a Builder. Pass a nil translator to send hints as-is.
func NewBuilder(tr Translator) *Builder {
	return &Builder{translator: tr}
}

// Build returns the positive and negative prompt for the given hint. A
// translation failure falls back to the raw hint text so generation still
// proceeds; it is logged, not surfaced.
func (b *Builder) Build(ctx context.Context, hint string) (string, string) {
	hint = strings.TrimSpace(hint)
	if hint == "" {
		return QualityTags, NegativePrompt
	}

	text := hint
	if b.translator != nil {
		translated, err := b.translator.Translate(ctx, hint)
		switch {
		case err != nil:
			log.WithError(err).Warn("hint translation failed, using raw text")
		case translated != "":
			text = translated
			log.WithFields(log.Fields{"from": hint, "to": translated}).Info("hint translated")
		}
	}
	return text + ", " + QualityTags, NegativePrompt
}
