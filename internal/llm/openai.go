package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"reinvent/internal/config"
)

// ChatMessage is a single turn in an OpenAI-style conversation
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatOptions tune a single completion call
type ChatOptions struct {
	Model       string  // empty: config default
	MaxTokens   int     // 0: config default
	Temperature float64 // 0 or negative: config default
	JSONMode    bool    // ask the server for a JSON object response
}

// ChatClient talks to an OpenAI-compatible chat completions endpoint
// through the priority queue.
type ChatClient struct {
	client  *Client
	baseURL string
	apiKey  string
	model   string

	maxTokens   int
	temperature float64
}

// NewChatClient builds a chat client on top of a queue client
func NewChatClient(client *Client, cfg *config.OpenAIConfig) *ChatClient {
	return &ChatClient{
		client:      client,
		baseURL:     strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:      cfg.APIKey,
		model:       cfg.Model,
		maxTokens:   cfg.MaxTokens,
		temperature: cfg.Temperature,
	}
}

func (cc *ChatClient) headers() map[string]string {
	if cc.apiKey == "" {
		return nil
	}
	return map[string]string{"Authorization": "Bearer " + cc.apiKey}
}

func (cc *ChatClient) payload(messages []ChatMessage, opts ChatOptions, stream bool) map[string]interface{} {
	model := opts.Model
	if model == "" {
		model = cc.model
	}
	maxTokens := opts.MaxTokens
	if maxTokens <= 0 {
		maxTokens = cc.maxTokens
	}
	temperature := opts.Temperature
	if temperature <= 0 {
		temperature = cc.temperature
	}

	p := map[string]interface{}{
		"model":       model,
		"messages":    messages,
		"max_tokens":  maxTokens,
		"temperature": temperature,
		"stream":      stream,
	}
	if opts.JSONMode {
		p["response_format"] = map[string]string{"type": "json_object"}
	}
	return p
}

type chatCompletionResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// Chat runs a completion and returns the assistant message content
func (cc *ChatClient) Chat(ctx context.Context, messages []ChatMessage, opts ChatOptions) (string, error) {
	body, err := cc.client.Call(ctx, cc.baseURL+"/chat/completions", cc.headers(), cc.payload(messages, opts, false))
	if err != nil {
		return "", err
	}

	var parsed chatCompletionResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", fmt.Errorf("failed to parse completion: %w", err)
	}
	if parsed.Error != nil {
		return "", fmt.Errorf("llm error: %s", parsed.Error.Message)
	}
	if len(parsed.Choices) == 0 {
		return "", fmt.Errorf("empty completion response")
	}
	return parsed.Choices[0].Message.Content, nil
}

// ChatJSON runs a completion in JSON mode and unmarshals the content into out.
// Some servers wrap JSON in markdown fences even in JSON mode, so strip those.
func (cc *ChatClient) ChatJSON(ctx context.Context, messages []ChatMessage, opts ChatOptions, out interface{}) error {
	opts.JSONMode = true
	content, err := cc.Chat(ctx, messages, opts)
	if err != nil {
		return err
	}
	content = stripCodeFences(content)
	if err := json.Unmarshal([]byte(content), out); err != nil {
		return fmt.Errorf("llm returned invalid JSON: %w", err)
	}
	return nil
}

// ChatStream starts a streaming completion. The caller must close the
// response body and invoke cancel when done.
func (cc *ChatClient) ChatStream(ctx context.Context, messages []ChatMessage, opts ChatOptions) (*http.Response, context.CancelFunc, error) {
	return cc.client.CallStreaming(ctx, cc.baseURL+"/chat/completions", cc.headers(), cc.payload(messages, opts, true))
}

// StreamDelta is one SSE chunk's worth of generated text
type StreamDelta struct {
	Content string
	Done    bool
}

type streamChunk struct {
	Choices []struct {
		Delta struct {
			Content string `json:"content"`
		} `json:"delta"`
		FinishReason *string `json:"finish_reason"`
	} `json:"choices"`
}

// ParseStreamLine decodes a single SSE data line from a streaming completion.
// Returns ok=false for lines that carry no delta (comments, blank lines).
func ParseStreamLine(line string) (StreamDelta, bool) {
	line = strings.TrimSpace(line)
	if !strings.HasPrefix(line, "data:") {
		return StreamDelta{}, false
	}
	data := strings.TrimSpace(strings.TrimPrefix(line, "data:"))
	if data == "[DONE]" {
		return StreamDelta{Done: true}, true
	}

	var chunk streamChunk
	if err := json.Unmarshal([]byte(data), &chunk); err != nil {
		return StreamDelta{}, false
	}
	if len(chunk.Choices) == 0 {
		return StreamDelta{}, false
	}
	choice := chunk.Choices[0]
	if choice.FinishReason != nil && *choice.FinishReason != "" {
		return StreamDelta{Content: choice.Delta.Content, Done: true}, true
	}
	return StreamDelta{Content: choice.Delta.Content}, true
}

func stripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```") {
		if idx := strings.Index(s, "\n"); idx >= 0 {
			s = s[idx+1:]
		}
		s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	}
	return strings.TrimSpace(s)
}

// DefaultTimeouts for the two priority tiers
const (
	CriticalCallTimeout   = 120 * time.Second
	BackgroundCallTimeout = 300 * time.Second
)
