package narration

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"

	"storybook/internal/provider"
)

const elevenLabsProviderName = "elevenlabs"

const elevenLabsBaseURL = "https://api.elevenlabs.io/v1/text-to-speech/"

// ElevenLabsProvider 朗读链第一优先级
type ElevenLabsProvider struct {
	apiKey     string
	voiceID    string
	httpClient *http.Client
	baseURL    string
}

func NewElevenLabsProvider(apiKey, voiceID string) *ElevenLabsProvider {
	return &ElevenLabsProvider{
		apiKey:     apiKey,
		voiceID:    voiceID,
		httpClient: &http.Client{},
		baseURL:    elevenLabsBaseURL,
	}
}

func (p *ElevenLabsProvider) Name() string  { return elevenLabsProviderName }
func (p *ElevenLabsProvider) Enabled() bool { return p.apiKey != "" }

func (p *ElevenLabsProvider) Attempt(ctx context.Context, req Request) (Asset, error) {
	payload := map[string]any{
		"text":     req.Text,
		"model_id": "eleven_monolingual_v1",
		"voice_settings": map[string]any{
			"stability":        0.5,
			"similarity_boost": 0.5,
		},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return Asset{}, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost,
		p.baseURL+p.voiceID, bytes.NewReader(body))
	if err != nil {
		return Asset{}, err
	}
	httpReq.Header.Set("xi-api-key", p.apiKey)
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "audio/mpeg")

	res, err := p.httpClient.Do(httpReq)
	if err != nil {
		return Asset{}, &provider.TransientError{Provider: p.Name(), Err: err}
	}
	defer res.Body.Close()
	data, err := io.ReadAll(res.Body)
	if err != nil {
		return Asset{}, &provider.TransientError{Provider: p.Name(), Err: err}
	}
	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return Asset{}, provider.ClassifyHTTP(p.Name(), res.StatusCode, string(data))
	}
	if len(data) == 0 {
		return Asset{}, &provider.ValidationError{Provider: p.Name(),
			Err: fmt.Errorf("empty audio response")}
	}

	if err := os.WriteFile(req.OutPath, data, 0o644); err != nil {
		return Asset{}, fmt.Errorf("write audio: %w", err)
	}
	return Asset{Path: req.OutPath, Provider: p.Name()}, nil
}
