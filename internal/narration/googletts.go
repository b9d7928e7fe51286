package narration

import (
	"context"
	"fmt"
	"os"
	"sync"

	texttospeech "cloud.google.com/go/texttospeech/apiv1"
	"cloud.google.com/go/texttospeech/apiv1/texttospeechpb"

	"storybook/internal/provider"
)

const googleProviderName = "googletts"

// GoogleTTSProvider 朗读链第二优先级，依赖ADC凭证。
// client懒初始化，未配置凭证时从不建连。
type GoogleTTSProvider struct {
	enabled bool

	mu     sync.Mutex
	client *texttospeech.Client
}

func NewGoogleTTSProvider(enabled bool) *GoogleTTSProvider {
	return &GoogleTTSProvider{enabled: enabled}
}

func (p *GoogleTTSProvider) Name() string  { return googleProviderName }
func (p *GoogleTTSProvider) Enabled() bool { return p.enabled }

func (p *GoogleTTSProvider) getClient(ctx context.Context) (*texttospeech.Client, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.client != nil {
		return p.client, nil
	}
	client, err := texttospeech.NewClient(ctx)
	if err != nil {
		return nil, &provider.AuthQuotaError{Provider: p.Name(), Err: err}
	}
	p.client = client
	return client, nil
}

func (p *GoogleTTSProvider) Attempt(ctx context.Context, req Request) (Asset, error) {
	client, err := p.getClient(ctx)
	if err != nil {
		return Asset{}, err
	}

	resp, err := client.SynthesizeSpeech(ctx, &texttospeechpb.SynthesizeSpeechRequest{
		Input: &texttospeechpb.SynthesisInput{
			InputSource: &texttospeechpb.SynthesisInput_Text{Text: req.Text},
		},
		Voice: &texttospeechpb.VoiceSelectionParams{
			LanguageCode: "en-US",
			SsmlGender:   texttospeechpb.SsmlVoiceGender_FEMALE,
		},
		AudioConfig: &texttospeechpb.AudioConfig{
			AudioEncoding: texttospeechpb.AudioEncoding_MP3,
			SpeakingRate:  0.95,
		},
	})
	if err != nil {
		return Asset{}, err
	}
	if len(resp.AudioContent) == 0 {
		return Asset{}, &provider.ValidationError{Provider: p.Name(),
			Err: fmt.Errorf("empty audio content")}
	}

	if err := os.WriteFile(req.OutPath, resp.AudioContent, 0o644); err != nil {
		return Asset{}, fmt.Errorf("write audio: %w", err)
	}
	return Asset{Path: req.OutPath, Provider: p.Name()}, nil
}

// Close 释放gRPC连接
func (p *GoogleTTSProvider) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.client == nil {
		return nil
	}
	err := p.client.Close()
	p.client = nil
	return err
}
