package prompt

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const defaultTranslateEndpoint = "https://translate.googleapis.com/translate_a/single"

// GoogleTranslator translates hints through the public Google Translate gtx
// endpoint. No API key is needed; failures simply fall back to the raw hint.
type GoogleTranslator struct {
	endpoint string
	source   string
	http     *http.Client
}

// NewGoogleTranslator returns a translator from the given source language
// (e.g. "ja") to English.
func NewGoogleTranslator(source string) *GoogleTranslator {
	return &GoogleTranslator{
		endpoint: defaultTranslateEndpoint,
		source:   source,
		http:     &http.Client{Timeout: 10 * time.Second},
	}
}

// Translate implements Translator.
func (g *GoogleTranslator) Translate(ctx context.Context, text string) (string, error) {
	q := url.Values{}
	q.Set("client", "gtx")
	q.Set("sl", g.source)
	q.Set("tl", "en")
	q.Set("dt", "t")
	q.Set("q", text)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.endpoint+"?"+q.Encode(), nil)
	if err != nil {
		return "", err
	}
	res, err := g.http.Do(req)
	if err != nil {
		return "", err
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		return "", fmt.Errorf("translate: status %d", res.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(res.Body, 1<<20))
	if err != nil {
		return "", err
	}
	return parseGtx(body)
}

// parseGtx extracts the translated text from the gtx response, a nested
// array of the form [[["translated","source",...],...],...].
func parseGtx(body []byte) (string, error) {
	var outer []json.RawMessage
	if err := json.Unmarshal(body, &outer); err != nil || len(outer) == 0 {
		return "", fmt.Errorf("translate: unexpected response shape")
	}
	var sentences [][]json.RawMessage
	if err := json.Unmarshal(outer[0], &sentences); err != nil {
		return "", fmt.Errorf("translate: unexpected response shape")
	}
	var b strings.Builder
	for _, s := range sentences {
		if len(s) == 0 {
			continue
		}
		var part string
		if err := json.Unmarshal(s[0], &part); err != nil {
			continue
		}
		b.WriteString(part)
	}
	if b.Len() == 0 {
		return "", fmt.Errorf("translate: empty result")
	}
	return b.String(), nil
}
