package narration

import (
	"context"
	"fmt"
	"os"
	"os/exec"

	"storybook/internal/provider"
)

const espeakProviderName = "espeak"

// EspeakProvider 本地TTS兜底，调起espeak命令行。
// 可执行文件不存在时视为未启用。
type EspeakProvider struct {
	bin     string
	enabled bool
}

func NewEspeakProvider(bin string) *EspeakProvider {
	if bin == "" {
		bin = "espeak"
	}
	path, err := exec.LookPath(bin)
	if err != nil {
		return &EspeakProvider{bin: bin, enabled: false}
	}
	return &EspeakProvider{bin: path, enabled: true}
}

func (p *EspeakProvider) Name() string  { return espeakProviderName }
func (p *EspeakProvider) Enabled() bool { return p.enabled }

func (p *EspeakProvider) Attempt(ctx context.Context, req Request) (Asset, error) {
	cmd := exec.CommandContext(ctx, p.bin,
		"-v", "en+f3",
		"-s", "150",
		"-w", req.OutPath,
		req.Text,
	)
	if out, err := cmd.CombinedOutput(); err != nil {
		return Asset{}, &provider.TransientError{Provider: p.Name(),
			Err: fmt.Errorf("espeak failed: %v: %s", err, out)}
	}
	if info, err := os.Stat(req.OutPath); err != nil || info.Size() == 0 {
		return Asset{}, &provider.ValidationError{Provider: p.Name(),
			Err: fmt.Errorf("espeak produced no audio")}
	}
	return Asset{Path: req.OutPath, Provider: p.Name()}, nil
}
