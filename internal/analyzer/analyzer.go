package analyzer

import (
	"regexp"
	"strings"

	"storybook/internal/model"
)

// 主角名匹配模式，按顺序尝试，取第一个命中
var namePatterns = []*regexp.Regexp{
	regexp.MustCompile(`named\s+([A-Z][a-z]+)`),
	regexp.MustCompile(`called\s+([A-Z][a-z]+)`),
	regexp.MustCompile(`([A-Z][a-z]+)\s+who\b`),
	regexp.MustCompile(`([A-Z][a-z]+)\s+the\s+`),
}

// 主题关键词表。顺序即model.Themes()的声明顺序，首个命中即为结果：
// sharing在learning前，"learns to share"归入sharing；
// creativity在courage前，"brave ... dance"归入creativity。
var themeKeywords = []struct {
	theme    model.Theme
	keywords []string
}{
	{model.ThemeFriendship, []string{"friend", "friendship", "together", "lonely"}},
	{model.ThemeSharing, []string{"share", "sharing", "give", "giving", "generous"}},
	{model.ThemeCreativity, []string{"dance", "dancing", "music", "sing", "rhythm", "paint", "draw", "create", "imagin"}},
	{model.ThemeLearning, []string{"learn", "teach", "school", "study", "read", "book", "curious"}},
	{model.ThemeCourage, []string{"brave", "courage", "scared", "afraid", "fear", "dark"}},
}

var speciesKeywords = []string{"fox", "cat", "bear", "unicorn", "mouse", "rabbit", "dog"}

var traitKeywords = []string{"shy", "brave", "curious", "kind", "friendly", "gentle"}

var colorKeywords = []string{"red", "blue", "green", "yellow", "orange", "purple", "brown"}

var accessoryKeywords = []string{"scarf", "hat", "collar"}

var featureKeywords = []string{"tail", "wings", "horn"}

// Analyze 对提示词做纯词法分析，永不失败：
// 无法识别时返回空名、空特征、generic主题。
func Analyze(prompt string) model.PromptFeatures {
	lower := strings.ToLower(prompt)

	features := model.PromptFeatures{
		ProtagonistName: extractName(prompt),
		Theme:           classifyTheme(lower),
		Small:           strings.Contains(lower, "little") || strings.Contains(lower, "small"),
	}

	for _, s := range speciesKeywords {
		if strings.Contains(lower, s) {
			features.Species = s
			break
		}
	}
	features.Traits = matchAll(lower, traitKeywords)
	features.Colors = matchAll(lower, colorKeywords)
	features.Accessories = matchAll(lower, accessoryKeywords)
	features.Features = matchAll(lower, featureKeywords)

	return features
}

func extractName(prompt string) string {
	for _, p := range namePatterns {
		if m := p.FindStringSubmatch(prompt); m != nil {
			return m[1]
		}
	}
	return ""
}

func classifyTheme(lower string) model.Theme {
	for _, entry := range themeKeywords {
		for _, kw := range entry.keywords {
			if strings.Contains(lower, kw) {
				return entry.theme
			}
		}
	}
	return model.ThemeGeneric
}

func matchAll(lower string, keywords []string) []string {
	var found []string
	for _, kw := range keywords {
		if strings.Contains(lower, kw) {
			found = append(found, kw)
		}
	}
	return found
}
