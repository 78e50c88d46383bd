package llm

import (
	"context"
	"fmt"
	"io"

	openai "github.com/sashabaranov/go-openai"

	"github.com/funnydev94625/AdGen/config"
)

// Client wraps the OpenAI API for the three capabilities the pipeline
// needs: text completion, speech synthesis, and one-off image generation.
type Client struct {
	api *openai.Client
	cfg *config.Config
}

// New creates a Client from the given credential. Returns an error when
// the key is empty so misconfiguration surfaces at startup, not mid-run.
func New(apiKey string, cfg *config.Config) (*Client, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("OPENAI_API_KEY not set")
	}
	return &Client{api: openai.NewClient(apiKey), cfg: cfg}, nil
}

// Complete sends a system+user message pair and returns the assistant text.
func (c *Client) Complete(ctx context.Context, system, user string) (string, error) {
	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       c.cfg.LLM.Model,
		Temperature: float32(c.cfg.LLM.Temperature),
		MaxTokens:   c.cfg.LLM.MaxTokens,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: user},
		},
	})
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("chat completion returned no choices")
	}
	return resp.Choices[0].Message.Content, nil
}

// Speak synthesizes speech for the given text and returns the raw audio
// bytes (MP3).
func (c *Client) Speak(ctx context.Context, text string) ([]byte, error) {
	resp, err := c.api.CreateSpeech(ctx, openai.CreateSpeechRequest{
		Model: openai.SpeechModel(c.cfg.TTS.Model),
		Voice: openai.SpeechVoice(c.cfg.TTS.Voice),
		Input: text,
	})
	if err != nil {
		return nil, fmt.Errorf("speech synthesis: %w", err)
	}
	defer resp.Close()
	data, err := io.ReadAll(resp)
	if err != nil {
		return nil, fmt.Errorf("read speech audio: %w", err)
	}
	return data, nil
}

// GenerateImage creates a single DALL-E image and returns its remote URL.
func (c *Client) GenerateImage(ctx context.Context, prompt string) (string, error) {
	resp, err := c.api.CreateImage(ctx, openai.ImageRequest{
		Model:   openai.CreateImageModelDallE3,
		Prompt:  prompt,
		Size:    c.cfg.Image.Size,
		Quality: c.cfg.Image.Quality,
		Style:   c.cfg.Image.Style,
		N:       1,
	})
	if err != nil {
		return "", fmt.Errorf("image generation: %w", err)
	}
	if len(resp.Data) == 0 {
		return "", fmt.Errorf("image generation returned no data")
	}
	return resp.Data[0].URL, nil
}
