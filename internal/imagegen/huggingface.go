package imagegen

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

const hfProviderName = "huggingface"

const hfBaseURL = "https://api-inference.huggingface.co/models/"

// HFProvider Hugging Face推理API文生图，链内第二优先级
type HFProvider struct {
	token      string
	model      string
	httpClient *http.Client
	baseURL    string
}

func NewHFProvider(token, model string) *HFProvider {
	return &HFProvider{
		token:      token,
		model:      model,
		httpClient: &http.Client{},
		baseURL:    hfBaseURL,
	}
}

func (p *HFProvider) Name() string  { return hfProviderName }
func (p *HFProvider) Enabled() bool { return p.token != "" }

func (p *HFProvider) Attempt(ctx context.Context, req Request) (Asset, error) {
	w, h := req.Size.Dimensions()
	payload := map[string]any{
		"inputs": req.Prompt,
		"options": map[string]any{
			"wait_for_model": true,
		},
		"parameters": map[string]any{
			"width":  w,
			"height": h,
		},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return Asset{}, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+p.model, bytes.NewReader(body))
	if err != nil {
		return Asset{}, err
	}
	httpReq.Header.Set("Authorization", "Bearer "+p.token)
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "image/png")

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
			Err: fmt.Errorf("empty image response")}
	}

	if err := os.WriteFile(req.OutPath, data, 0o644); err != nil {
		return Asset{}, fmt.Errorf("write image: %w", err)
	}
	return Asset{Path: req.OutPath, Provider: p.Name()}, nil
}
