package imagegen

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"storybook/internal/model"
	"storybook/internal/provider"
)

// Request 单页图片生成请求
type Request struct {
	Prompt  string
	Style   model.Style
	Size    model.Size
	OutPath string
}

// Asset 生成结果，Provider标记实际生效的provider
type Asset struct {
	Path     string
	Provider string
}

// Dispatcher 图片降级链。placeholder始终存在，链整体不会失败。
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

// RenderImage 按优先级尝试图片providers
func (d *Dispatcher) RenderImage(ctx context.Context, req Request) (Asset, error) {
	return provider.RunChain(ctx, d.log, d.state, d.providers, req, d.timeout)
}

// Providers 链内provider名和启用状态，供可用性查询
func (d *Dispatcher) Providers() map[string]bool {
	out := make(map[string]bool, len(d.providers))
	for _, p := range d.providers {
		out[p.Name()] = p.Enabled()
	}
	return out
}
