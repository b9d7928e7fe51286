package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config 进程级配置，从环境变量解析一次；每次生成运行只读取不修改。
// 凭证为空即视为对应provider不可用，会被自动排除出降级链。
type Config struct {
	ListenAddr string `env:"LISTEN_ADDR" envDefault:":8080"`
	OutputDir  string `env:"OUTPUT_DIR"`

	// Ark（火山方舟）：文本生成 + seedream图片生成
	ArkAPIKey     string `env:"ARK_API_KEY"`
	ArkBaseURL    string `env:"ARK_BASE_URL" envDefault:"https://ark.cn-beijing.volces.com"`
	ArkChatModel  string `env:"ARK_CHAT_MODEL" envDefault:"ep-20250220181854-c8s82"`
	ArkImageModel string `env:"ARK_IMAGE_MODEL" envDefault:"doubao-seedream-4.0"`
	ArkMock       bool   `env:"ARK_MOCK"`

	// Hugging Face推理API（第二图片provider）
	HFToken string `env:"HF_TOKEN"`
	HFModel string `env:"HF_MODEL_NAME" envDefault:"stabilityai/stable-diffusion-2-1"`

	// 朗读providers
	ElevenLabsAPIKey  string `env:"ELEVENLABS_API_KEY"`
	ElevenLabsVoiceID string `env:"ELEVENLABS_VOICE_ID" envDefault:"21m00Tcm4TlvDq8ikWAM"`
	GoogleCredentials string `env:"GOOGLE_APPLICATION_CREDENTIALS"`
	EspeakBin         string `env:"ESPEAK_BIN" envDefault:"espeak"`

	// 单次provider尝试的超时
	AttemptTimeout time.Duration `env:"PROVIDER_TIMEOUT" envDefault:"30s"`
}

// Load 解析环境变量并准备输出目录
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if cfg.OutputDir == "" {
		cfg.OutputDir = filepath.Join(os.TempDir(), "storybook")
	}
	for _, sub := range []string{"images", "audio"} {
		if err := os.MkdirAll(filepath.Join(cfg.OutputDir, sub), 0o755); err != nil {
			return nil, fmt.Errorf("ensure output dir: %w", err)
		}
	}
	return cfg, nil
}

// ImagesDir 图片输出目录
func (c *Config) ImagesDir() string { return filepath.Join(c.OutputDir, "images") }

// AudioDir 音频输出目录
func (c *Config) AudioDir() string { return filepath.Join(c.OutputDir, "audio") }
