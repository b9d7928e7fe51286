package pipeline

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	arkmodel "github.com/cloudwego/eino-ext/components/model/ark"
	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"storybook/internal/analyzer"
	"storybook/internal/ark"
	"storybook/internal/character"
	"storybook/internal/config"
	"storybook/internal/imagegen"
	"storybook/internal/model"
	"storybook/internal/narration"
	"storybook/internal/provider"
	"storybook/internal/story"
)

// pageWorkers 每次运行内并发处理的页数上限
const pageWorkers = 2

// Request 一次完整的故事生成请求。
// ImageRanking/AudioRanking按provider名指定本次运行的优先级，
// 留空用默认顺序；列出的未知名字被忽略。
type Request struct {
	Prompt          string      `json:"prompt" binding:"required"`
	Style           model.Style `json:"style"`
	Size            model.Size  `json:"size"`
	ImageRanking    []string    `json:"image_ranking,omitempty"`
	AudioRanking    []string    `json:"audio_ranking,omitempty"`
	EnableNarration bool        `json:"enable_narration"`
}

// Result 流水线产物：故事本体加本次运行的元数据
type Result struct {
	RunID          string        `json:"run_id"`
	Story          *model.Story  `json:"story"`
	ImageProviders []string      `json:"image_providers"` // 逐页实际生效的图片provider
	AudioProviders []string      `json:"audio_providers"` // 逐页实际生效的朗读provider，空串表示无音频
	Elapsed        time.Duration `json:"elapsed"`
}

// Pipeline 把分析、角色、故事、图片、朗读串成一次运行
type Pipeline struct {
	log       *logrus.Entry
	cfg       *config.Config
	generator *story.Generator
	arkClient *ark.Client
}

// New 按配置装配流水线。Ark key缺失时文本生成直接走模板级。
func New(ctx context.Context, log *logrus.Entry, cfg *config.Config) (*Pipeline, error) {
	arkClient := ark.NewClient(cfg.ArkBaseURL, cfg.ArkAPIKey, cfg.AttemptTimeout, cfg.ArkMock)

	var chatModel einomodel.BaseChatModel
	if cfg.ArkAPIKey != "" {
		cm, err := arkmodel.NewChatModel(ctx, &arkmodel.ChatModelConfig{
			APIKey:     cfg.ArkAPIKey,
			HTTPClient: arkClient.HTTPClient,
			Model:      cfg.ArkChatModel,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create chat model: %w", err)
		}
		chatModel = cm
	}

	return &Pipeline{
		log:       log,
		cfg:       cfg,
		generator: story.NewGenerator(log, chatModel, cfg.AttemptTimeout),
		arkClient: arkClient,
	}, nil
}

// rank 按调用方给定的名字序重排providers，未列出的名字忽略；
// ranking为空保持默认顺序
func rank[I, O any](providers []provider.Provider[I, O], ranking []string) []provider.Provider[I, O] {
	if len(ranking) == 0 {
		return providers
	}
	byName := make(map[string]provider.Provider[I, O], len(providers))
	for _, p := range providers {
		byName[p.Name()] = p
	}
	var ordered []provider.Provider[I, O]
	for _, name := range ranking {
		if p, ok := byName[name]; ok {
			ordered = append(ordered, p)
		}
	}
	return ordered
}

// newImageDispatcher 每次运行新建，provider死亡状态只在运行内生效。
// placeholder是图片链不可失败的保证，调用方的排序不能把它移除：
// 排序未列出时追加为链尾。
func (p *Pipeline) newImageDispatcher(ranking []string) *imagegen.Dispatcher {
	placeholder := imagegen.NewPlaceholderProvider()
	providers := []provider.Provider[imagegen.Request, imagegen.Asset]{
		imagegen.NewArkProvider(p.arkClient, p.cfg.ArkImageModel, p.cfg.ArkAPIKey != "" || p.cfg.ArkMock),
		imagegen.NewHFProvider(p.cfg.HFToken, p.cfg.HFModel),
		placeholder,
	}
	ordered := rank(providers, ranking)
	listed := false
	for _, pr := range ordered {
		if pr.Name() == placeholder.Name() {
			listed = true
			break
		}
	}
	if !listed {
		ordered = append(ordered, placeholder)
	}
	return imagegen.NewDispatcher(p.log, ordered, p.cfg.AttemptTimeout)
}

func (p *Pipeline) newNarrationDispatcher(ranking []string) *narration.Dispatcher {
	providers := []provider.Provider[narration.Request, narration.Asset]{
		narration.NewElevenLabsProvider(p.cfg.ElevenLabsAPIKey, p.cfg.ElevenLabsVoiceID),
		narration.NewGoogleTTSProvider(p.cfg.GoogleCredentials != ""),
		narration.NewEspeakProvider(p.cfg.EspeakBin),
	}
	return narration.NewDispatcher(p.log, rank(providers, ranking), p.cfg.AttemptTimeout)
}

// Run 执行一次完整生成。取消只在尝试边界生效，取消后丢弃部分结果。
func (p *Pipeline) Run(ctx context.Context, req Request) (*Result, error) {
	start := time.Now()
	if req.Style == "" {
		req.Style = model.StyleCartoon
	}
	if req.Size == "" {
		req.Size = model.Size1024
	}

	features := analyzer.Analyze(req.Prompt)
	ch := character.BuildCharacter(features)

	p.log.WithFields(logrus.Fields{
		"theme":     features.Theme,
		"character": ch.Name,
		"style":     req.Style,
	}).Info("starting story run")

	st, err := p.generator.Generate(ctx, features, ch, req.Style)
	if err != nil {
		return nil, fmt.Errorf("story generation: %w", err)
	}

	runID := uuid.NewString()
	images := p.newImageDispatcher(req.ImageRanking)
	var audio *narration.Dispatcher
	if req.EnableNarration {
		audio = p.newNarrationDispatcher(req.AudioRanking)
		defer func() {
			if err := audio.Close(); err != nil {
				p.log.WithField("error", err).Warn("closing narration providers")
			}
		}()
	}

	imageProviders := make([]string, len(st.Pages))
	audioProviders := make([]string, len(st.Pages))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(pageWorkers)
	for i, page := range st.Pages {
		g.Go(func() error {
			imgPath := filepath.Join(p.cfg.ImagesDir(), fmt.Sprintf("%s_page%d.png", runID, page.Page))
			asset, err := images.RenderImage(gctx, imagegen.Request{
				Prompt:  page.ImagePrompt,
				Style:   req.Style,
				Size:    req.Size,
				OutPath: imgPath,
			})
			if err != nil {
				return fmt.Errorf("page %d image: %w", page.Page, err)
			}
			page.ImagePath = asset.Path
			imageProviders[i] = asset.Provider

			if audio != nil {
				audioPath := filepath.Join(p.cfg.AudioDir(), fmt.Sprintf("%s_page%d.mp3", runID, page.Page))
				clip, err := audio.Narrate(gctx, narration.Request{
					Text:    page.Text,
					PageNum: page.Page,
					OutPath: audioPath,
				})
				if err != nil {
					return fmt.Errorf("page %d narration: %w", page.Page, err)
				}
				if clip != nil {
					page.AudioPath = clip.Path
					audioProviders[i] = clip.Provider
				}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if err := st.Validate(); err != nil {
		return nil, fmt.Errorf("assembled story invalid: %w", err)
	}
	if issues := story.ConsistencyIssues(st); len(issues) > 0 {
		// 生成器保证一致性，这里只是巡检
		p.log.WithFields(logrus.Fields{"issues": issues}).Warn("consistency check flagged pages")
	}

	p.log.WithFields(logrus.Fields{
		"run_id":  runID,
		"title":   st.Title,
		"elapsed": time.Since(start),
	}).Info("story run complete")

	return &Result{
		RunID:          runID,
		Story:          st,
		ImageProviders: imageProviders,
		AudioProviders: audioProviders,
		Elapsed:        time.Since(start),
	}, nil
}

// ProviderAvailability 各能力链内provider的启用状态
func (p *Pipeline) ProviderAvailability() map[string]map[string]bool {
	return map[string]map[string]bool{
		"text": {
			"ark-chat": p.cfg.ArkAPIKey != "",
			"template": true,
		},
		"image": p.newImageDispatcher(nil).Providers(),
		"audio": p.newNarrationDispatcher(nil).Providers(),
	}
}
