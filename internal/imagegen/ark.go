package imagegen

import (
	"context"
	"encoding/base64"
	"fmt"
	"os"
	"strings"

	"storybook/internal/ark"
	"storybook/internal/provider"
)

// ArkProvider seedream文生图，链内第一优先级
type ArkProvider struct {
	client  *ark.Client
	model   string
	enabled bool
}

func NewArkProvider(client *ark.Client, model string, enabled bool) *ArkProvider {
	return &ArkProvider{client: client, model: model, enabled: enabled}
}

func (p *ArkProvider) Name() string  { return ark.ProviderName }
func (p *ArkProvider) Enabled() bool { return p.enabled }

func (p *ArkProvider) Attempt(ctx context.Context, req Request) (Asset, error) {
	urls, err := p.client.GenerateImages(ctx, ark.ImageGenParams{
		Model:  p.model,
		Prompt: req.Prompt,
		Size:   string(req.Size),
	})
	if err != nil {
		return Asset{}, err
	}

	data, err := p.fetch(ctx, urls[0])
	if err != nil {
		return Asset{}, err
	}
	if err := os.WriteFile(req.OutPath, data, 0o644); err != nil {
		return Asset{}, fmt.Errorf("write image: %w", err)
	}
	return Asset{Path: req.OutPath, Provider: p.Name()}, nil
}

// fetch 兼容URL和data URI两种返回形态
func (p *ArkProvider) fetch(ctx context.Context, url string) ([]byte, error) {
	if strings.HasPrefix(url, "data:") {
		idx := strings.Index(url, ";base64,")
		if idx < 0 {
			return nil, &provider.ValidationError{Provider: p.Name(),
				Err: fmt.Errorf("unsupported data uri")}
		}
		data, err := base64.StdEncoding.DecodeString(url[idx+len(";base64,"):])
		if err != nil {
			return nil, &provider.ValidationError{Provider: p.Name(), Err: err}
		}
		return data, nil
	}
	return p.client.Download(ctx, url)
}
