// Package gemini implements integration with Google's Gemini API.
// It turns prompts and inline media into generated text for the bot.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"mime"
	"strings"
	"time"

	"google.golang.org/genai"

	"github.com/edgard/relaybot/internal/config"
)

// Client defines the AI operations used by the handlers.
type Client interface {
	GenerateText(ctx context.Context, prompt string) (string, error)
	GenerateFromMedia(ctx context.Context, prompt string, data []byte, mimeType string) (string, error)
}

// contentGenerator is the subset of *genai.Models the client calls.
type contentGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

type sdkClient struct {
	models        contentGenerator
	log           *slog.Logger
	contentConfig *genai.GenerateContentConfig
	modelName     string
	timeout       time.Duration
}

// Exact types accepted in addition to the image/, text/, audio/ and video/ families.
var supportedMIMETypes = map[string]bool{
	"application/pdf":          true,
	"application/json":         true,
	"application/rtf":          true,
	"application/x-javascript": true,
}

// SupportedMIMEType reports whether mimeType can be sent as inline data.
// Parameters such as charset are ignored.
func SupportedMIMEType(mimeType string) bool {
	mediaType, _, err := mime.ParseMediaType(mimeType)
	if err != nil {
		mediaType = strings.ToLower(strings.TrimSpace(strings.SplitN(mimeType, ";", 2)[0]))
	}
	if supportedMIMETypes[mediaType] {
		return true
	}
	family, sub, ok := strings.Cut(mediaType, "/")
	if !ok || sub == "" {
		return false
	}
	switch family {
	case "image", "text", "audio", "video":
		return true
	}
	return false
}

// NewClient creates a Gemini client for the configured model. It only
// builds the SDK client; no request is made.
func NewClient(ctx context.Context, cfg config.GeminiConfig, log *slog.Logger) (Client, error) { //nolint:ireturn // handlers depend on the interface
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("gemini API key is required")
	}

	gi, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}

	c := newClient(gi.Models, cfg, log)
	c.log.Info("Gemini client initialized successfully", "model", cfg.ModelName, "timeout", cfg.Timeout)
	return c, nil
}

func newClient(models contentGenerator, cfg config.GeminiConfig, log *slog.Logger) *sdkClient {
	if log == nil {
		log = slog.Default()
	}

	temperature := cfg.Temperature
	baseCfg := &genai.GenerateContentConfig{
		Temperature: &temperature,
		SafetySettings: []*genai.SafetySetting{
			{Category: genai.HarmCategoryHarassment, Threshold: genai.HarmBlockThresholdBlockOnlyHigh},
			{Category: genai.HarmCategoryHateSpeech, Threshold: genai.HarmBlockThresholdBlockOnlyHigh},
			{Category: genai.HarmCategorySexuallyExplicit, Threshold: genai.HarmBlockThresholdBlockOnlyHigh},
			{Category: genai.HarmCategoryDangerousContent, Threshold: genai.HarmBlockThresholdBlockOnlyHigh},
		},
	}
	if cfg.SystemInstruction != "" {
		baseCfg.SystemInstruction = genai.NewContentFromText(cfg.SystemInstruction, genai.RoleUser)
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = config.DefaultGeminiTimeout
	}

	return &sdkClient{
		models:        models,
		log:           log.With("component", "gemini_client"),
		contentConfig: baseCfg,
		modelName:     cfg.ModelName,
		timeout:       timeout,
	}
}

func (c *sdkClient) GenerateText(ctx context.Context, prompt string) (string, error) {
	const op = "generate_text"
	if strings.TrimSpace(prompt) == "" {
		return "", &AIError{Op: op, Reason: "empty prompt", Err: ErrEmptyPrompt}
	}

	c.log.DebugContext(ctx, "Generating text", "prompt_length", len(prompt))
	contents := []*genai.Content{genai.NewContentFromText(prompt, genai.RoleUser)}
	return c.generate(ctx, op, contents)
}

func (c *sdkClient) GenerateFromMedia(ctx context.Context, prompt string, data []byte, mimeType string) (string, error) {
	const op = "generate_from_media"
	if strings.TrimSpace(prompt) == "" {
		return "", &AIError{Op: op, Reason: "empty prompt", Err: ErrEmptyPrompt}
	}
	if !SupportedMIMEType(mimeType) {
		return "", &UnsupportedMediaError{MIMEType: mimeType}
	}
	if len(data) == 0 {
		return "", &AIError{Op: op, Reason: "empty media payload"}
	}

	c.log.DebugContext(ctx, "Generating from media", "mime_type", mimeType, "size", len(data))
	contents := []*genai.Content{genai.NewContentFromParts([]*genai.Part{
		genai.NewPartFromText(prompt),
		genai.NewPartFromBytes(data, mimeType),
	}, genai.RoleUser)}
	return c.generate(ctx, op, contents)
}

func (c *sdkClient) generate(ctx context.Context, op string, contents []*genai.Content) (string, error) {
	callCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	start := time.Now()
	resp, err := c.models.GenerateContent(callCtx, c.modelName, contents, c.contentConfig)
	if err != nil {
		if errors.Is(callCtx.Err(), context.DeadlineExceeded) && !errors.Is(err, context.DeadlineExceeded) {
			err = fmt.Errorf("%w: %v", context.DeadlineExceeded, err)
		}
		c.log.ErrorContext(ctx, "Gemini API call failed", "operation", op, "error", err, "duration", time.Since(start))
		return "", &AIError{Op: op, Reason: failureReason(err), Err: err}
	}

	text, err := c.extractTextFromResponse(ctx, op, resp)
	if err != nil {
		return "", err
	}
	c.log.DebugContext(ctx, "Gemini call succeeded", "operation", op, "response_length", len(text), "duration", time.Since(start))
	return text, nil
}

func failureReason(err error) string {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return "request timed out"
	case errors.Is(err, context.Canceled):
		return "request cancelled"
	}
	if apiErr, ok := asAPIError(err); ok {
		if apiErr.Message != "" {
			return fmt.Sprintf("API error %d: %s", apiErr.Code, apiErr.Message)
		}
		return fmt.Sprintf("API error %d", apiErr.Code)
	}
	return "request failed"
}

// asAPIError matches genai.APIError returned either by value or by pointer.
func asAPIError(err error) (genai.APIError, bool) {
	var byValue genai.APIError
	if errors.As(err, &byValue) {
		return byValue, true
	}
	var byPointer *genai.APIError
	if errors.As(err, &byPointer) && byPointer != nil {
		return *byPointer, true
	}
	return genai.APIError{}, false
}

func (c *sdkClient) extractTextFromResponse(ctx context.Context, op string, resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil {
		return "", &AIError{Op: op, Reason: "empty response", Err: ErrEmptyResponse}
	}

	if fb := resp.PromptFeedback; fb != nil && fb.BlockReason != "" && fb.BlockReason != genai.BlockedReasonUnspecified {
		reasonMsg := string(fb.BlockReason)
		if fb.BlockReasonMessage != "" {
			reasonMsg = fb.BlockReasonMessage
		}
		c.log.WarnContext(ctx, "Gemini request blocked", "operation", op, "reason", reasonMsg)
		return "", &AIError{Op: op, Reason: "blocked by safety filter: " + reasonMsg}
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		finishReason := "unknown"
		if len(resp.Candidates) > 0 && resp.Candidates[0].FinishReason != "" {
			finishReason = string(resp.Candidates[0].FinishReason)
		}
		c.log.WarnContext(ctx, "Gemini response missing candidates or content", "operation", op, "finish_reason", finishReason)
		return "", &AIError{Op: op, Reason: "no content returned, finish reason: " + finishReason, Err: ErrEmptyResponse}
	}

	text := strings.TrimSpace(resp.Text())
	if text == "" {
		c.log.WarnContext(ctx, "Gemini response text is empty", "operation", op)
		return "", &AIError{Op: op, Reason: "empty response text", Err: ErrEmptyResponse}
	}
	return text, nil
}
