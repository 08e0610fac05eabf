// Package gemini implements the conversational gateway to Google's Gemini API.
// It turns a user's bounded conversation history into model requests and maps
// transport failures to a small error taxonomy callers can branch on.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"google.golang.org/genai"

	"github.com/lingvohub/lingvobot/internal/config"
	"github.com/lingvohub/lingvobot/internal/database"
)

// Gateway failure classes. Handlers never show these to end users; they map
// every one of them to the same localized generic error message, but logging
// and tests distinguish them.
var (
	// ErrGatewayNetwork covers connectivity failures and upstream 5xx errors.
	ErrGatewayNetwork = errors.New("gateway network failure")

	// ErrGatewayThrottled covers upstream rate limiting (429).
	ErrGatewayThrottled = errors.New("gateway throttled")

	// ErrGatewayInvalidResponse covers well-formed replies with no usable
	// text, including safety-blocked prompts.
	ErrGatewayInvalidResponse = errors.New("gateway invalid response")
)

// Client defines the AI operations used by the chat and support flows.
type Client interface {
	// Complete generates the assistant's next turn from the history window
	// and the new user message. The locale steers the response language.
	Complete(ctx context.Context, history []database.Message, userText, locale string) (string, error)

	// Translate renders text into the target locale's language. Used when
	// relaying operator replies to users in other markets.
	Translate(ctx context.Context, text, targetLocale string) (string, error)
}

type sdkClient struct {
	genaiClient      *genai.Client
	log              *slog.Logger
	contentConfig    *genai.GenerateContentConfig
	defaultModelName string
	timeout          time.Duration
}

// NewClient creates a Gemini client from configuration.
func NewClient(ctx context.Context, cfg config.GeminiConfig, log *slog.Logger) (Client, error) {
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

	baseCfg := &genai.GenerateContentConfig{
		Temperature: &cfg.Temperature,
	}

	logger := log.With("component", "gemini_client")
	logger.Info("Gemini client initialized", "model", cfg.ModelName)
	return &sdkClient{
		genaiClient:      gi,
		log:              logger,
		contentConfig:    baseCfg,
		defaultModelName: cfg.ModelName,
		timeout:          cfg.Timeout,
	}, nil
}

func (c *sdkClient) Complete(ctx context.Context, history []database.Message, userText, locale string) (string, error) {
	c.log.DebugContext(ctx, "Generating completion", "history_len", len(history), "locale", locale)

	contents := make([]*genai.Content, 0, len(history)+1)
	for i := range history {
		m := &history[i]
		var role genai.Role = genai.RoleUser
		if m.Origin == database.OriginAssistant {
			role = genai.RoleModel
		}
		contents = append(contents, genai.NewContentFromText(m.Content, role))
	}
	contents = append(contents, genai.NewContentFromText(userText, genai.RoleUser))

	copyCfg := *c.contentConfig
	copyCfg.SystemInstruction = &genai.Content{
		Parts: []*genai.Part{{Text: fmt.Sprintf(assistantSystemInstruction, languageName(locale))}},
	}

	resp, err := c.generate(ctx, contents, &copyCfg)
	if err != nil {
		c.log.ErrorContext(ctx, "Completion failed", "error", err)
		return "", err
	}

	return c.extractText(ctx, resp)
}

func (c *sdkClient) Translate(ctx context.Context, text, targetLocale string) (string, error) {
	c.log.DebugContext(ctx, "Translating text", "target_locale", targetLocale, "length", len(text))

	contents := []*genai.Content{genai.NewContentFromText(text, genai.RoleUser)}

	copyCfg := *c.contentConfig
	copyCfg.SystemInstruction = &genai.Content{
		Parts: []*genai.Part{{Text: fmt.Sprintf(translatorSystemInstruction, languageName(targetLocale))}},
	}

	resp, err := c.generate(ctx, contents, &copyCfg)
	if err != nil {
		c.log.ErrorContext(ctx, "Translation failed", "error", err)
		return "", err
	}

	return c.extractText(ctx, resp)
}

// generate performs one model call under the configured timeout and converts
// the SDK error into the gateway taxonomy. Failed turns are never retried
// here; the user resubmits and the failed exchange is not persisted.
func (c *sdkClient) generate(ctx context.Context, contents []*genai.Content, cfg *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	callCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	resp, err := c.genaiClient.Models.GenerateContent(callCtx, c.defaultModelName, contents, cfg)
	if err != nil {
		return nil, classifyError(err)
	}
	return resp, nil
}

// classifyError maps an SDK error to the gateway taxonomy while keeping the
// original error in the chain.
func classifyError(err error) error {
	var apiErr *genai.APIError
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.Code == 429:
			return fmt.Errorf("%w: %w", ErrGatewayThrottled, err)
		case apiErr.Code >= 500:
			return fmt.Errorf("%w: %w", ErrGatewayNetwork, err)
		default:
			return fmt.Errorf("%w: %w", ErrGatewayInvalidResponse, err)
		}
	}

	// Anything the SDK cannot attribute to the API is treated as transport.
	return fmt.Errorf("%w: %w", ErrGatewayNetwork, err)
}

func (c *sdkClient) extractText(ctx context.Context, resp *genai.GenerateContentResponse) (string, error) {
	if resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != genai.BlockedReasonUnspecified {
		reason := fmt.Sprintf("%v", resp.PromptFeedback.BlockReason)
		if resp.PromptFeedback.BlockReasonMessage != "" {
			reason = resp.PromptFeedback.BlockReasonMessage
		}
		c.log.WarnContext(ctx, "Request blocked by safety filter", "reason", reason)
		return "", fmt.Errorf("%w: blocked by safety filter: %s", ErrGatewayInvalidResponse, reason)
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		finishReason := "unknown"
		if len(resp.Candidates) > 0 && resp.Candidates[0].FinishReason != genai.FinishReasonUnspecified {
			finishReason = fmt.Sprintf("%v", resp.Candidates[0].FinishReason)
		}
		c.log.WarnContext(ctx, "Response missing candidates or content", "finish_reason", finishReason)
		return "", fmt.Errorf("%w: no content, finish reason %s", ErrGatewayInvalidResponse, finishReason)
	}

	text := resp.Text()
	if text == "" {
		return "", fmt.Errorf("%w: empty response text", ErrGatewayInvalidResponse)
	}

	return text, nil
}

// languageName spells out the response language for the system instruction;
// model steering works noticeably better with names than with BCP 47 codes.
func languageName(locale string) string {
	switch locale {
	case "tr":
		return "Turkish"
	case "id":
		return "Indonesian"
	case "ar":
		return "Arabic"
	case "vi":
		return "Vietnamese"
	case "pt":
		return "Brazilian Portuguese"
	case "ru":
		return "Russian"
	default:
		return "English"
	}
}

const assistantSystemInstruction = `You are a helpful, friendly AI assistant chatting with a user through a messaging app.
Always answer in %s regardless of the language the user writes in, unless the user explicitly asks for another language.
Keep answers concise and conversational; this is a chat, not an essay.`

const translatorSystemInstruction = `You are a translator. Translate the user's message into %s.
Reply with the translation only, no commentary or quotes.`
