package sdapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	pathProgress  = "/sdapi/v1/progress"
	pathImg2Img   = "/sdapi/v1/img2img"
	pathInterrupt = "/sdapi/v1/interrupt"
	pathOptions   = "/sdapi/v1/options"
	pathModels    = "/sdapi/v1/sd-models"
)

// DefaultGenerateTimeout is the ceiling for a single generation request. It
// has to be generous: one image with refinement passes can take minutes.
const DefaultGenerateTimeout = 10 * time.Minute

const (
	pingTimeout    = 3 * time.Second
	controlTimeout = 15 * time.Second
)

// API is the surface of the WebUI server this app depends on. The HTTP
// client implements it; tests substitute scripted fakes.
type API interface {
	Ping(ctx context.Context) error
	Progress(ctx context.Context) (ProgressResponse, error)
	Img2Img(ctx context.Context, req *Img2ImgRequest) (*Img2ImgResponse, error)
	Interrupt(ctx context.Context) error
	Options(ctx context.Context) (Options, error)
	SetOptions(ctx context.Context, o Options) error
	Models(ctx context.Context) ([]Model, error)
}

// Client talks to an AUTOMATIC1111-compatible server over HTTP.
type Client struct {
	base       string
	http       *http.Client
	genTimeout time.Duration
}

var _ API = (*Client)(nil)

// Option mutates a Client during construction.
type Option func(*Client)

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) {
		if h != nil {
			c.http = h
		}
	}
}

// WithGenerateTimeout sets the per-request ceiling for Img2Img.
func WithGenerateTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.genTimeout = d
		}
	}
}

// NewClient returns a Client for the given normalized base URL.
func NewClient(base string, opts ...Option) *Client {
	// Local servers must not go through a system proxy.
	tr := http.DefaultTransport.(*http.Transport).Clone()
	tr.Proxy = nil

	c := &Client{
		base:       strings.TrimRight(base, "/"),
		http:       &http.Client{Transport: tr},
		genTimeout: DefaultGenerateTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the server base URL the client was built with.
func (c *Client) BaseURL() string {
	return c.base
}

// Ping checks reachability with a short deadline. A reachable server answers
// the progress endpoint even while idle.
func (c *Client) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	return c.get(ctx, pathProgress, nil)
}

// Progress fetches the current job status.
func (c *Client) Progress(ctx context.Context) (ProgressResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	var out ProgressResponse
	err := c.get(ctx, pathProgress, &out)
	return out, err
}

// Img2Img submits one generation request and blocks until the server is done
// with it or the generate timeout expires. A 422 naming the detailer script
// maps to ErrDetailerMissing.
func (c *Client) Img2Img(ctx context.Context, req *Img2ImgRequest) (*Img2ImgResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, c.genTimeout)
	defer cancel()

	var out Img2ImgResponse
	if err := c.post(ctx, pathImg2Img, req, &out); err != nil {
		var se *StatusError
		if errors.As(err, &se) && se.Code == http.StatusUnprocessableEntity &&
			strings.Contains(se.Body, "Script 'ADetailer' not found") {
			return nil, ErrDetailerMissing
		}
		return nil, err
	}
	return &out, nil
}

// Interrupt asks the server to abort whatever it is generating right now.
// Fire-and-forget: the in-flight job may still complete normally.
func (c *Client) Interrupt(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, controlTimeout)
	defer cancel()
	return c.post(ctx, pathInterrupt, nil, nil)
}

// Options reads the server options.
func (c *Client) Options(ctx context.Context) (Options, error) {
	ctx, cancel := context.WithTimeout(ctx, controlTimeout)
	defer cancel()
	var out Options
	err := c.get(ctx, pathOptions, &out)
	return out, err
}

// SetOptions writes server options. Switching the checkpoint makes the
// server load the model, which can take a while; use a generous deadline.
func (c *Client) SetOptions(ctx context.Context, o Options) error {
	ctx, cancel := context.WithTimeout(ctx, c.genTimeout)
	defer cancel()
	return c.post(ctx, pathOptions, o, nil)
}

// Models lists the installed checkpoints.
func (c *Client) Models(ctx context.Context) ([]Model, error) {
	ctx, cancel := context.WithTimeout(ctx, controlTimeout)
	defer cancel()
	var out []Model
	err := c.get(ctx, pathModels, &out)
	return out, err
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.base+path, nil)
	if err != nil {
		return err
	}
	return c.do(req, out)
}

func (c *Client) post(ctx context.Context, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		buf, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode %s request: %w", path, err)
		}
		body = bytes.NewReader(buf)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out any) error {
	res, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		// Keep enough of the body for capability checks and error messages.
		buf, _ := io.ReadAll(io.LimitReader(res.Body, 8<<10))
		return &StatusError{Code: res.StatusCode, Body: string(buf)}
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, res.Body)
		return nil
	}
	if err := json.NewDecoder(res.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", req.URL.Path, err)
	}
	return nil
}
