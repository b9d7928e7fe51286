package story

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"
	"github.com/sirupsen/logrus"

	"storybook/internal/model"
	"storybook/internal/provider"
)

const textProviderName = "ark-chat"

const systemPromptTemplate = `You are a children's book author creating a 5-page illustrated story.
Generate a story in JSON format with this exact structure:
{
  "title": "Story Title",
  "characters": [
    {"name": "Character Name", "description": "Detailed physical description for consistent illustration"}
  ],
  "pages": [
    {"page": 1, "text": "Story text (50-60 words, age 3-8 appropriate)", "image_prompt": "Detailed visual description for %s style illustration"}
  ]
}
Requirements:
- 5 pages total
- Each page text should be 50-60 words
- The main character is %s: %s. Keep this character identical across all pages.
- Every image_prompt must repeat this exact character description for visual consistency.
- Use %s art style
- Age appropriate for 3-8 years
- Positive, educational themes
- No copyrighted characters`

// Generator 两级故事生成：外部模型优先，失败或未配置时落到本地模板
type Generator struct {
	log       *logrus.Entry
	chatModel einomodel.BaseChatModel // nil表示文本provider未启用
	timeout   time.Duration
}

func NewGenerator(log *logrus.Entry, chatModel einomodel.BaseChatModel, timeout time.Duration) *Generator {
	return &Generator{log: log, chatModel: chatModel, timeout: timeout}
}

// Generate 产出完整5页故事。无论哪一级生成，每页图片提示词
// 都会在这里被强制嵌入角色的规范描述，一致性约束不交给provider。
func (g *Generator) Generate(ctx context.Context, features model.PromptFeatures,
	ch model.Character, style model.Style) (*model.Story, error) {

	if g.chatModel != nil {
		story, err := g.generateWithModel(ctx, features, ch, style)
		if err == nil {
			enforceConsistency(story, ch, style)
			return story, nil
		}
		if errors.Is(err, context.Canceled) {
			return nil, err
		}
		g.log.WithFields(logrus.Fields{"provider": textProviderName, "error": err}).
			Warn("external story generation failed, using template fallback")
	}

	story, err := renderTemplates(features.Theme, ch, style)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", provider.ErrGenerationUnavailable, err)
	}
	enforceConsistency(story, ch, style)
	return story, nil
}

func (g *Generator) generateWithModel(ctx context.Context, features model.PromptFeatures,
	ch model.Character, style model.Style) (*model.Story, error) {

	system := fmt.Sprintf(systemPromptTemplate, style, ch.Name, ch.Description, style)
	user := fmt.Sprintf("Create a story about: a %s story starring %s", features.Theme, ch.Name)

	var story *model.Story
	op := func() error {
		callCtx, cancel := context.WithTimeout(ctx, g.timeout)
		defer cancel()

		content, err := g.runLLM(callCtx, system, user)
		if err != nil {
			err = classifyModelErr(err)
			var ae *provider.AuthQuotaError
			if errors.As(err, &ae) {
				return backoff.Permanent(err)
			}
			return err
		}

		parsed, err := parseStory(content)
		if err != nil {
			// 畸形响应不重试，直接落到模板级
			return backoff.Permanent(&provider.ValidationError{Provider: textProviderName, Err: err})
		}
		story = parsed
		return nil
	}

	policy := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewConstantBackOff(500*time.Millisecond), 1), ctx)
	if err := backoff.Retry(op, policy); err != nil {
		return nil, err
	}

	// 注册表角色是唯一权威，覆盖模型自拟的角色表
	story.Characters = []model.Character{ch}
	if strings.TrimSpace(story.Title) == "" {
		story.Title = fmt.Sprintf("%s's Amazing Adventure", ch.Name)
	}
	if err := story.Validate(); err != nil {
		return nil, &provider.ValidationError{Provider: textProviderName, Err: err}
	}
	return story, nil
}

// runLLM 以单节点graph调用chat model
func (g *Generator) runLLM(ctx context.Context, instruction, userPrompt string) (string, error) {
	graph := compose.NewGraph[[]*schema.Message, *schema.Message]()
	graph.AddChatModelNode("model", g.chatModel)
	graph.AddEdge(compose.START, "model")
	graph.AddEdge("model", compose.END)
	agent, err := graph.Compile(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to compile graph: %w", err)
	}

	messages := []*schema.Message{
		{Role: schema.System, Content: instruction},
		{Role: schema.User, Content: userPrompt},
	}
	res, err := agent.Invoke(ctx, messages)
	if err != nil {
		return "", fmt.Errorf("graph invocation failed: %w", err)
	}
	return res.Content, nil
}

// parseStory 剥掉markdown围栏后解析JSON，并按页码排序
func parseStory(content string) (*model.Story, error) {
	cleaned := strings.TrimSpace(content)
	if strings.HasPrefix(cleaned, "```json") {
		cleaned = strings.TrimPrefix(cleaned, "```json")
		cleaned = strings.TrimSuffix(cleaned, "```")
	} else if strings.HasPrefix(cleaned, "```") {
		cleaned = strings.TrimPrefix(cleaned, "```")
		cleaned = strings.TrimSuffix(cleaned, "```")
	}
	var story model.Story
	if err := json.Unmarshal([]byte(cleaned), &story); err != nil {
		return nil, fmt.Errorf("failed to unmarshal story: %w", err)
	}
	sort.SliceStable(story.Pages, func(i, j int) bool {
		return story.Pages[i].Page < story.Pages[j].Page
	})
	return &story, nil
}

// classifyModelErr 模型SDK的错误没有结构化状态码，按错误文本归类
func classifyModelErr(err error) error {
	msg := strings.ToLower(err.Error())
	for _, marker := range []string{"401", "403", "429", "unauthorized", "quota", "api key", "rate limit"} {
		if strings.Contains(msg, marker) {
			return &provider.AuthQuotaError{Provider: textProviderName, Err: err}
		}
	}
	return &provider.TransientError{Provider: textProviderName, Err: err}
}

var styleClauses = map[model.Style]string{
	model.StyleCartoon:    "cartoon style, bright colors, simple shapes, child-friendly",
	model.StyleWatercolor: "watercolor painting style, soft brushstrokes, gentle colors, artistic",
	model.StyleFlat:       "flat design style, clean lines, minimal shading, modern illustration",
	model.StylePainterly:  "painterly style, artistic brushwork, rich colors, traditional art",
	model.StyleRealistic:  "realistic illustration style, detailed, lifelike, photographic quality",
}

// StyleClause 风格一致性短语，未知风格回退到通用短语
func StyleClause(style model.Style) string {
	if clause, ok := styleClauses[style]; ok {
		return clause
	}
	return "illustration style"
}

// enforceConsistency 保证每页图片提示词逐字包含规范角色描述和风格短语
func enforceConsistency(story *model.Story, ch model.Character, style model.Style) {
	clause := StyleClause(style)
	for _, p := range story.Pages {
		if !strings.Contains(p.ImagePrompt, ch.Description) {
			p.ImagePrompt = fmt.Sprintf("%s, featuring %s, %s", p.ImagePrompt, ch.Name, ch.Description)
		}
		if !strings.Contains(p.ImagePrompt, clause) {
			p.ImagePrompt = fmt.Sprintf("%s, %s", p.ImagePrompt, clause)
		}
	}
}

// ConsistencyIssues 巡检已组装故事的图片提示词，返回丢失角色描述的页码
func ConsistencyIssues(story *model.Story) []string {
	var issues []string
	for _, ch := range story.Characters {
		for _, p := range story.Pages {
			if !strings.Contains(p.ImagePrompt, ch.Description) {
				issues = append(issues,
					fmt.Sprintf("character %q description missing from page %d image prompt", ch.Name, p.Page))
			}
		}
	}
	return issues
}
