// Package openai provides a Speaker backed by the OpenAI speech API.
package openai

import (
	"context"
	"fmt"
	"io"
	"time"

	oai "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/tallyvox/tallyvox/pkg/provider/tts"
)

const (
	defaultModel = "tts-1"
	defaultVoice = "alloy"
)

// Speaker implements tts.Speaker using the OpenAI API.
type Speaker struct {
	client oai.Client
	model  string
}

// config holds optional configuration for the speaker.
type config struct {
	baseURL string
	timeout time.Duration
}

// Option is a functional option for Speaker.
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

// New constructs a new OpenAI Speaker.
func New(apiKey string, model string, opts ...Option) (*Speaker, error) {
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

	return &Speaker{
		client: oai.NewClient(reqOpts...),
		model:  model,
	}, nil
}

// Synthesize implements [tts.Speaker]. The returned reader streams WAV audio
// directly from the API response body.
func (s *Speaker) Synthesize(ctx context.Context, text, voice string) (io.ReadCloser, error) {
	if text == "" {
		return nil, fmt.Errorf("openai: text must not be empty")
	}
	if voice == "" {
		voice = defaultVoice
	}

	res, err := s.client.Audio.Speech.New(ctx, oai.AudioSpeechNewParams{
		Model:          oai.SpeechModel(s.model),
		Voice:          oai.AudioSpeechNewParamsVoice(voice),
		Input:          text,
		ResponseFormat: oai.AudioSpeechNewParamsResponseFormatWAV,
	})
	if err != nil {
		return nil, fmt.Errorf("openai: synthesize: %w", err)
	}
	return res.Body, nil
}

// Ensure Speaker implements tts.Speaker at compile time.
var _ tts.Speaker = (*Speaker)(nil)
