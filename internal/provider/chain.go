package provider

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/sirupsen/logrus"
)

// Provider 一次生成能力的抽象，图片链和朗读链共用同一套降级逻辑。
// 凭证缺失的provider报告Enabled()==false，链自动跳过。
type Provider[I, O any] interface {
	Name() string
	Enabled() bool
	Attempt(ctx context.Context, in I) (O, error)
}

// ChainState 跨页共享的链内状态：auth/quota失败的provider
// 在同一次运行内不再被尝试
type ChainState struct {
	mu   sync.Mutex
	dead map[string]bool
}

func NewChainState() *ChainState {
	return &ChainState{dead: make(map[string]bool)}
}

func (s *ChainState) markDead(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dead[name] = true
}

func (s *ChainState) isDead(name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dead[name]
}

// retryInterval 瞬时失败重试前的固定间隔
const retryInterval = 500 * time.Millisecond

// maxRetries 瞬时失败类的重试预算：至多重试1次
const maxRetries = 1

// RunChain 按调用方给定的优先级逐个尝试provider：
//   - 未启用或本次运行内已判死的跳过；
//   - 每次尝试带独立超时；瞬时失败在预算内重试，auth/quota与畸形响应不重试；
//   - 成功立即返回，失败记录日志并降级到下一个；
//   - 取消只发生在尝试边界，不会打断进行中的尝试。
func RunChain[I, O any](ctx context.Context, log *logrus.Entry, state *ChainState,
	providers []Provider[I, O], in I, attemptTimeout time.Duration) (O, error) {

	var zero O
	var lastErr error

	for _, p := range providers {
		if err := ctx.Err(); err != nil {
			return zero, err
		}
		if !p.Enabled() || state.isDead(p.Name()) {
			continue
		}

		var out O
		op := func() error {
			attemptCtx, cancel := context.WithTimeout(ctx, attemptTimeout)
			defer cancel()
			v, err := p.Attempt(attemptCtx, in)
			if err == nil {
				out = v
				return nil
			}
			err = Classify(p.Name(), err)
			var ae *AuthQuotaError
			var ve *ValidationError
			if errors.As(err, &ae) || errors.As(err, &ve) {
				return backoff.Permanent(err)
			}
			return err
		}

		policy := backoff.WithContext(
			backoff.WithMaxRetries(backoff.NewConstantBackOff(retryInterval), maxRetries), ctx)
		err := backoff.Retry(op, policy)
		if err == nil {
			return out, nil
		}

		lastErr = err
		var ae *AuthQuotaError
		if errors.As(err, &ae) {
			state.markDead(p.Name())
		}
		log.WithFields(logrus.Fields{"provider": p.Name(), "error": err}).
			Warn("provider attempt failed, falling through")

		if err := ctx.Err(); err != nil {
			return zero, err
		}
	}

	if lastErr == nil {
		lastErr = fmt.Errorf("no enabled provider in chain")
	}
	return zero, fmt.Errorf("all providers exhausted: %w", lastErr)
}
