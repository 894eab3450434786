package assist

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

const systemPrompt = `You are a motion-graphics author. The user describes an animation;
you answer with complete replacement code in exactly two fenced blocks,
` + "```html and ```css" + `, followed by a one-paragraph explanation.
The CSS must use animation/animation-* properties with explicit durations
in seconds so the animation plays exactly once. Never answer with a diff.`

// OpenAI implements Client against an OpenAI-compatible chat completions
// endpoint. BaseURL is configurable so local gateways work too.
type OpenAI struct {
	baseURL string
	model   string
	apiKey  string
	client  *http.Client
}

// requestTimeout bounds one generation round trip so a stalled upstream
// cannot hold a handler for as long as the browser stays connected.
const requestTimeout = 90 * time.Second

// NewOpenAI returns a generation client for the given endpoint and model.
func NewOpenAI(baseURL, model, apiKey string) *OpenAI {
	return &OpenAI{
		baseURL: strings.TrimRight(baseURL, "/"),
		model:   model,
		apiKey:  apiKey,
		client:  &http.Client{Timeout: requestTimeout},
	}
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// Generate sends the prompt and current code and parses the reply into a
// Result. Errors never touch the caller's code state.
func (c *OpenAI) Generate(ctx context.Context, prompt, currentHTML, currentCSS string) (Result, error) {
	if c.apiKey == "" {
		return Result{}, fmt.Errorf("assist: API key not set")
	}

	user := prompt
	if strings.TrimSpace(currentHTML) != "" || strings.TrimSpace(currentCSS) != "" {
		user = fmt.Sprintf("%s\n\nCurrent HTML:\n```html\n%s\n```\n\nCurrent CSS:\n```css\n%s\n```",
			prompt, currentHTML, currentCSS)
	}

	body, err := json.Marshal(chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: user},
		},
	})
	if err != nil {
		return Result{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return Result{}, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return Result{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Result{}, fmt.Errorf("assist: %s", resp.Status)
	}
	var out chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return Result{}, err
	}
	if len(out.Choices) == 0 {
		return Result{}, fmt.Errorf("assist: no choices in response")
	}
	return ParseReply(out.Choices[0].Message.Content), nil
}
