package narration

import (
	"context"
	"io"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"storybook/internal/provider"
)

// Request 单页朗读生成请求
type Request struct {
	Text    string
	PageNum int
	OutPath string
}

// Asset 朗读生成结果
type Asset struct {
	Path     string
	Provider string
}

// Dispatcher 朗读降级链。与图片链不同，整链失败不是错误：
// 返回nil Asset，调用方把该页视为无音频。
type Dispatcher struct {
	log       *logrus.Entry
	providers []provider.Provider[Request, Asset]
	state     *provider.ChainState
	timeout   time.Duration
}

func NewDispatcher(log *logrus.Entry, providers []provider.Provider[Request, Asset],
	timeout time.Duration) *Dispatcher {
	return &Dispatcher{
		log:       log,
		providers: providers,
		state:     provider.NewChainState(),
		timeout:   timeout,
	}
}

// Narrate 按优先级尝试朗读providers，整链失败返回(nil, nil)
func (d *Dispatcher) Narrate(ctx context.Context, req Request) (*Asset, error) {
	req.Text = CleanText(req.Text)
	out, err := provider.RunChain(ctx, d.log, d.state, d.providers, req, d.timeout)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		d.log.WithFields(logrus.Fields{"page": req.PageNum, "error": err}).
			Warn("narration unavailable for page")
		return nil, nil
	}
	return &out, nil
}

// Close 释放持有外部连接的provider（如Google TTS的gRPC client）。
// 每次运行结束都必须调用，否则启用朗读的运行会泄漏连接。
func (d *Dispatcher) Close() error {
	var first error
	for _, p := range d.providers {
		c, ok := p.(io.Closer)
		if !ok {
			continue
		}
		if err := c.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// Providers 链内provider名和启用状态
func (d *Dispatcher) Providers() map[string]bool {
	out := make(map[string]bool, len(d.providers))
	for _, p := range d.providers {
		out[p.Name()] = p.Enabled()
	}
	return out
}

var pageMarkers = []string{
	"Page 1:", "Page 2:", "Page 3:", "Page 4:", "Page 5:",
	"Page 1", "Page 2", "Page 3", "Page 4", "Page 5",
}

// CleanText 去掉页码标记、折叠空白，并在句末补停顿空格
func CleanText(text string) string {
	for _, m := range pageMarkers {
		text = strings.ReplaceAll(text, m, "")
	}
	text = strings.Join(strings.Fields(text), " ")
	text = strings.ReplaceAll(text, ".", ". ")
	text = strings.ReplaceAll(text, "!", "! ")
	text = strings.ReplaceAll(text, "?", "? ")
	return strings.TrimSpace(text)
}
