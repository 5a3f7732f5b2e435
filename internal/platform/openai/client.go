package openai

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	goopenai "github.com/sashabaranov/go-openai"

	"github.com/yungbote/learnhub-backend/internal/observability"
	"github.com/yungbote/learnhub-backend/internal/platform/envutil"
	"github.com/yungbote/learnhub-backend/internal/platform/logger"
)

const providerName = "openai"

type ImageGeneration struct {
	Bytes         []byte
	MimeType      string
	RevisedPrompt string
}

type Speech struct {
	Bytes    []byte
	MimeType string
}

// TextGenerator produces a JSON object from a system and user prompt.
type TextGenerator interface {
	Name() string
	GenerateJSON(ctx context.Context, system, user string) (map[string]any, error)
}

type ImageGenerator interface {
	Name() string
	GenerateImage(ctx context.Context, prompt string) (ImageGeneration, error)
}

type SpeechSynthesizer interface {
	Name() string
	Synthesize(ctx context.Context, text string) (Speech, error)
}

// Providers groups the optional generation backends. A nil member means the pipelines
// fall back to their deterministic output.
type Providers struct {
	Text   TextGenerator
	Image  ImageGenerator
	Speech SpeechSynthesizer
}

type Config struct {
	APIKey     string
	BaseURL    string
	Model      string
	ImageModel string
	ImageSize  string
	TTSModel   string
	TTSVoice   string
	Timeout    time.Duration
}

func ConfigFromEnv() Config {
	return Config{
		APIKey:     envutil.String("OPENAI_API_KEY", ""),
		BaseURL:    envutil.String("OPENAI_BASE_URL", ""),
		Model:      envutil.String("OPENAI_MODEL", "gpt-4o-mini"),
		ImageModel: envutil.String("OPENAI_IMAGE_MODEL", ""),
		ImageSize:  envutil.String("OPENAI_IMAGE_SIZE", goopenai.CreateImageSize1024x1024),
		TTSModel:   envutil.String("OPENAI_TTS_MODEL", ""),
		TTSVoice:   envutil.String("OPENAI_TTS_VOICE", string(goopenai.VoiceAlloy)),
		Timeout:    envutil.Duration("OPENAI_TIMEOUT", 90*time.Second),
	}
}

// NewProviders builds whichever providers the config enables. Image and speech need their
// own model ids; text needs only the API key.
func NewProviders(log *logger.Logger, cfg Config) Providers {
	if strings.TrimSpace(cfg.APIKey) == "" {
		log.Info("generation providers disabled (no OPENAI_API_KEY)")
		return Providers{}
	}
	c := NewClient(log, cfg)
	out := Providers{Text: c}
	if strings.TrimSpace(cfg.ImageModel) != "" {
		out.Image = c
	}
	if strings.TrimSpace(cfg.TTSModel) != "" {
		out.Speech = c
	}
	log.Info(
		"generation providers configured",
		"model", cfg.Model,
		"image_model", cfg.ImageModel,
		"tts_model", cfg.TTSModel,
	)
	return out
}

type Client struct {
	log     *logger.Logger
	api     *goopenai.Client
	cfg     Config
	metrics *observability.Metrics
}

func NewClient(log *logger.Logger, cfg Config) *Client {
	apiCfg := goopenai.DefaultConfig(cfg.APIKey)
	if base := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/"); base != "" {
		if !strings.HasSuffix(base, "/v1") {
			base += "/v1"
		}
		apiCfg.BaseURL = base
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 90 * time.Second
	}
	apiCfg.HTTPClient = &http.Client{Timeout: timeout}
	return &Client{
		log:     log.With("client", "OpenAIClient"),
		api:     goopenai.NewClientWithConfig(apiCfg),
		cfg:     cfg,
		metrics: observability.Current(),
	}
}

func (c *Client) Name() string { return providerName }

func (c *Client) GenerateJSON(ctx context.Context, system, user string) (out map[string]any, err error) {
	ctx, span := observability.StartSpan(ctx, "openai.generate_json")
	start := time.Now()
	defer func() {
		c.observe("json", start, err)
		observability.EndSpan(span, err)
	}()

	resp, err := c.api.CreateChatCompletion(ctx, goopenai.ChatCompletionRequest{
		Model: c.cfg.Model,
		Messages: []goopenai.ChatCompletionMessage{
			{Role: goopenai.ChatMessageRoleSystem, Content: system},
			{Role: goopenai.ChatMessageRoleUser, Content: user},
		},
		ResponseFormat: &goopenai.ChatCompletionResponseFormat{
			Type: goopenai.ChatCompletionResponseFormatTypeJSONObject,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, errors.New("no choices returned")
	}
	text := strings.TrimSpace(resp.Choices[0].Message.Content)
	if text == "" {
		return nil, errors.New("empty completion")
	}
	if err := json.Unmarshal([]byte(text), &out); err != nil {
		return nil, fmt.Errorf("failed to parse model JSON: %w", err)
	}
	return out, nil
}

func (c *Client) GenerateImage(ctx context.Context, prompt string) (out ImageGeneration, err error) {
	ctx, span := observability.StartSpan(ctx, "openai.generate_image")
	start := time.Now()
	defer func() {
		c.observe("image", start, err)
		observability.EndSpan(span, err)
	}()

	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return out, errors.New("image prompt required")
	}
	req := goopenai.ImageRequest{
		Model:  c.cfg.ImageModel,
		Prompt: prompt,
		N:      1,
		Size:   c.cfg.ImageSize,
	}
	// gpt-image models always return base64 and reject response_format.
	if !strings.HasPrefix(strings.ToLower(c.cfg.ImageModel), "gpt-image-") {
		req.ResponseFormat = goopenai.CreateImageResponseFormatB64JSON
	}
	resp, err := c.api.CreateImage(ctx, req)
	if err != nil {
		return out, fmt.Errorf("image generation: %w", err)
	}
	if len(resp.Data) == 0 {
		return out, errors.New("no image returned")
	}
	item := resp.Data[0]
	out.RevisedPrompt = strings.TrimSpace(item.RevisedPrompt)
	b64 := strings.TrimSpace(item.B64JSON)
	if b64 == "" {
		return out, errors.New("image response missing b64_json")
	}
	raw, err := base64.StdEncoding.DecodeString(b64)
	if err != nil {
		return out, fmt.Errorf("decode image base64: %w", err)
	}
	if len(raw) == 0 {
		return out, errors.New("empty image payload")
	}
	out.Bytes = raw
	out.MimeType = "image/png"
	return out, nil
}

func (c *Client) Synthesize(ctx context.Context, text string) (out Speech, err error) {
	ctx, span := observability.StartSpan(ctx, "openai.synthesize")
	start := time.Now()
	defer func() {
		c.observe("speech", start, err)
		observability.EndSpan(span, err)
	}()

	text = strings.TrimSpace(text)
	if text == "" {
		return out, errors.New("speech text required")
	}
	resp, err := c.api.CreateSpeech(ctx, goopenai.CreateSpeechRequest{
		Model:          goopenai.SpeechModel(c.cfg.TTSModel),
		Input:          text,
		Voice:          goopenai.SpeechVoice(c.cfg.TTSVoice),
		ResponseFormat: goopenai.SpeechResponseFormatWav,
	})
	if err != nil {
		return out, fmt.Errorf("speech synthesis: %w", err)
	}
	defer resp.Close()
	raw, err := io.ReadAll(resp)
	if err != nil {
		return out, fmt.Errorf("read speech audio: %w", err)
	}
	if len(raw) == 0 {
		return out, errors.New("empty speech payload")
	}
	out.Bytes = raw
	out.MimeType = "audio/wav"
	return out, nil
}

func (c *Client) observe(op string, start time.Time, err error) {
	status := "ok"
	if err != nil {
		status = "error"
		c.log.Warn("provider call failed", "operation", op, "error", err)
	}
	c.metrics.ObserveProvider(providerName, op, status, time.Since(start))
}
