package story

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/sirupsen/logrus"

	"storybook/internal/model"
)

// fakeChatModel 固定返回content或err
type fakeChatModel struct {
	content string
	err     error
	calls   int
}

func (f *fakeChatModel) Generate(ctx context.Context, in []*schema.Message,
	opts ...einomodel.Option) (*schema.Message, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return &schema.Message{Role: schema.Assistant, Content: f.content}, nil
}

func (f *fakeChatModel) Stream(ctx context.Context, in []*schema.Message,
	opts ...einomodel.Option) (*schema.StreamReader[*schema.Message], error) {
	return nil, fmt.Errorf("stream not supported")
}

func testLog() *logrus.Entry {
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	return logrus.NewEntry(log)
}

var testCharacter = model.Character{
	Name:        "Poppy",
	Description: "a small fox, wearing a sky-blue scarf, shy and adventurous",
}

func validStoryJSON() string {
	var pages []string
	// 页码乱序给出，生成器应按页码重排
	for _, n := range []int{3, 1, 5, 2, 4} {
		pages = append(pages, fmt.Sprintf(
			`{"page": %d, "text": "Page %d text about Poppy and her adventures in the forest.", "image_prompt": "Poppy in scene %d"}`,
			n, n, n))
	}
	return fmt.Sprintf(`{"title": "Poppy's Gift", "characters": [{"name": "Poppy", "description": "model-invented description"}], "pages": [%s]}`,
		strings.Join(pages, ","))
}

func TestGenerateTemplateFallbackWithoutModel(t *testing.T) {
	g := NewGenerator(testLog(), nil, time.Second)
	features := model.PromptFeatures{Theme: model.ThemeSharing}

	story, err := g.Generate(context.Background(), features, testCharacter, model.StyleCartoon)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if err := story.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if len(story.Pages) != model.PageCount {
		t.Fatalf("pages = %d, want %d", len(story.Pages), model.PageCount)
	}
	if len(story.Characters) != 1 || story.Characters[0] != testCharacter {
		t.Errorf("Characters = %+v, want registry character only", story.Characters)
	}
	for _, p := range story.Pages {
		if !strings.Contains(p.ImagePrompt, testCharacter.Description) {
			t.Errorf("page %d image prompt missing character description: %q", p.Page, p.ImagePrompt)
		}
		if !strings.Contains(p.Text, "Poppy") {
			t.Errorf("page %d text missing character name: %q", p.Page, p.Text)
		}
	}
}

func TestGenerateModelSuccess(t *testing.T) {
	fake := &fakeChatModel{content: "```json\n" + validStoryJSON() + "\n```"}
	g := NewGenerator(testLog(), fake, time.Second)
	features := model.PromptFeatures{Theme: model.ThemeSharing}

	story, err := g.Generate(context.Background(), features, testCharacter, model.StyleWatercolor)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if story.Title != "Poppy's Gift" {
		t.Errorf("Title = %q, want model title", story.Title)
	}
	for i, p := range story.Pages {
		if p.Page != i+1 {
			t.Errorf("page at index %d has number %d, pages must be reordered", i, p.Page)
		}
		if !strings.Contains(p.ImagePrompt, testCharacter.Description) {
			t.Errorf("page %d image prompt missing canonical description: %q", p.Page, p.ImagePrompt)
		}
		if !strings.Contains(p.ImagePrompt, StyleClause(model.StyleWatercolor)) {
			t.Errorf("page %d image prompt missing style clause: %q", p.Page, p.ImagePrompt)
		}
	}
	// 注册表角色必须覆盖模型自拟的角色表
	if len(story.Characters) != 1 || story.Characters[0] != testCharacter {
		t.Errorf("Characters = %+v, want registry character only", story.Characters)
	}
}

func TestGenerateMalformedModelFallsToTemplates(t *testing.T) {
	// 只有3页，结构校验应拒绝并落到模板级
	short := `{"title": "Short", "characters": [{"name": "X", "description": "y"}], "pages": [
		{"page": 1, "text": "a", "image_prompt": "p"},
		{"page": 2, "text": "b", "image_prompt": "p"},
		{"page": 3, "text": "c", "image_prompt": "p"}]}`
	fake := &fakeChatModel{content: short}
	g := NewGenerator(testLog(), fake, time.Second)
	features := model.PromptFeatures{Theme: model.ThemeCreativity}

	story, err := g.Generate(context.Background(), features, testCharacter, model.StyleCartoon)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if len(story.Pages) != model.PageCount {
		t.Fatalf("pages = %d, want %d from templates", len(story.Pages), model.PageCount)
	}
	if fake.calls != 1 {
		t.Errorf("model calls = %d, malformed response must not be retried", fake.calls)
	}
}

func TestGenerateModelErrorFallsToTemplates(t *testing.T) {
	fake := &fakeChatModel{err: fmt.Errorf("connection refused")}
	g := NewGenerator(testLog(), fake, time.Second)
	features := model.PromptFeatures{Theme: model.ThemeCourage}

	story, err := g.Generate(context.Background(), features, testCharacter, model.StyleCartoon)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if err := story.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if fake.calls != 2 {
		t.Errorf("model calls = %d, transient failure gets exactly one retry", fake.calls)
	}
}

func TestGenerateAuthErrorNotRetried(t *testing.T) {
	fake := &fakeChatModel{err: fmt.Errorf("401 unauthorized")}
	g := NewGenerator(testLog(), fake, time.Second)
	features := model.PromptFeatures{Theme: model.ThemeGeneric}

	story, err := g.Generate(context.Background(), features, testCharacter, model.StyleCartoon)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if story == nil || len(story.Pages) != model.PageCount {
		t.Fatal("expected template story")
	}
	if fake.calls != 1 {
		t.Errorf("model calls = %d, auth failure must not be retried", fake.calls)
	}
}

func TestParseStoryStripsFences(t *testing.T) {
	for _, wrap := range []string{"%s", "```json\n%s\n```", "```\n%s\n```"} {
		raw := fmt.Sprintf(wrap, validStoryJSON())
		story, err := parseStory(raw)
		if err != nil {
			t.Fatalf("parseStory(%q...): %v", raw[:20], err)
		}
		if story.Title != "Poppy's Gift" {
			t.Errorf("Title = %q", story.Title)
		}
	}
}

func TestStyleClauseFallback(t *testing.T) {
	if StyleClause(model.StyleWatercolor) == StyleClause(model.StyleCartoon) {
		t.Error("distinct styles must map to distinct clauses")
	}
	if StyleClause(model.Style("unknown")) != "illustration style" {
		t.Errorf("unknown style clause = %q", StyleClause(model.Style("unknown")))
	}
}

func TestConsistencyIssues(t *testing.T) {
	story := &model.Story{
		Title:      "T",
		Characters: []model.Character{testCharacter},
		Pages: []*model.Page{
			{Page: 1, Text: "t", ImagePrompt: "scene with " + testCharacter.Description},
			{Page: 2, Text: "t", ImagePrompt: "scene without the description"},
		},
	}
	issues := ConsistencyIssues(story)
	if len(issues) != 1 {
		t.Fatalf("issues = %v, want exactly one", issues)
	}
	if !strings.Contains(issues[0], "page 2") {
		t.Errorf("issue should name page 2: %q", issues[0])
	}
}
