// Package openai provides a Transcriber backed by the OpenAI audio
// transcription API.
package openai

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	oai "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/tallyvox/tallyvox/pkg/provider/stt"
)

// defaultModel is used when no model is configured.
const defaultModel = "whisper-1"

// Transcriber implements stt.Transcriber using the OpenAI API.
type Transcriber struct {
	client oai.Client
	model  string
}

// config holds optional configuration for the transcriber.
type config struct {
	baseURL string
	timeout time.Duration
}

// Option is a functional option for Transcriber.
type Option func(*config)

// WithBaseURL overrides the default OpenAI API base URL.
func WithBaseURL(url string) Option {
	return func(c *config) {
		c.baseURL = url
	}
}

// WithTimeout sets a per-request HTTP timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *config) {
		c.timeout = d
	}
}

// New constructs a new OpenAI Transcriber.
func New(apiKey string, model string, opts ...Option) (*Transcriber, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("openai: apiKey must not be empty")
	}
	if model == "" {
		model = defaultModel
	}

	cfg := &config{}
	for _, o := range opts {
		o(cfg)
	}

	reqOpts := []option.RequestOption{
		option.WithAPIKey(apiKey),
	}
	if cfg.baseURL != "" {
		reqOpts = append(reqOpts, option.WithBaseURL(cfg.baseURL))
	}
	if cfg.timeout > 0 {
		reqOpts = append(reqOpts, option.WithRequestTimeout(cfg.timeout))
	}

	return &Transcriber{
		client: oai.NewClient(reqOpts...),
		model:  model,
	}, nil
}

// Transcribe implements [stt.Transcriber]. Vocabulary hints are joined into
// the transcription prompt, which biases the model towards those spellings.
func (t *Transcriber) Transcribe(ctx context.Context, audio io.Reader, hints []string) (stt.Transcript, error) {
	params := oai.AudioTranscriptionNewParams{
		Model: oai.AudioModel(t.model),
		File:  oai.File(audio, "utterance.wav", "audio/wav"),
	}
	if len(hints) > 0 {
		params.Prompt = oai.String("Names that may occur: " + strings.Join(hints, ", "))
	}

	res, err := t.client.Audio.Transcriptions.New(ctx, params)
	if err != nil {
		return stt.Transcript{}, fmt.Errorf("openai: transcribe: %w", err)
	}

	return stt.Transcript{Text: strings.TrimSpace(res.Text)}, nil
}

// Ensure Transcriber implements stt.Transcriber at compile time.
var _ stt.Transcriber = (*Transcriber)(nil)
