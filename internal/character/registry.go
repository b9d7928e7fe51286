package character

import (
	"fmt"
	"strings"

	"storybook/internal/model"
)

// 未识别出名字时按主题取默认名，保证相同输入可复现
var defaultNames = map[model.Theme]string{
	model.ThemeFriendship: "Benny",
	model.ThemeSharing:    "Poppy",
	model.ThemeCreativity: "Melody",
	model.ThemeLearning:   "Oliver",
	model.ThemeCourage:    "Finn",
	model.ThemeGeneric:    "Luna",
}

// 未识别出配饰时按主题补一个固定配饰
var defaultAccessories = map[model.Theme]string{
	model.ThemeFriendship: "wearing a woven friendship bracelet",
	model.ThemeSharing:    "wearing a sky-blue scarf",
	model.ThemeCreativity: "wearing a tiny red beret",
	model.ThemeLearning:   "wearing round reading glasses",
	model.ThemeCourage:    "wearing a little golden cape",
	model.ThemeGeneric:    "wearing a silver star pendant",
}

// 未识别出性格时按主题补一个固定性格
var defaultTraits = map[model.Theme]string{
	model.ThemeFriendship: "warm-hearted and loyal",
	model.ThemeSharing:    "gentle and generous",
	model.ThemeCreativity: "playful and imaginative",
	model.ThemeLearning:   "curious and thoughtful",
	model.ThemeCourage:    "brave and determined",
	model.ThemeGeneric:    "kind and adventurous",
}

var accessoryPhrases = map[string]string{
	"scarf":  "wears a colorful scarf",
	"hat":    "wears a jaunty hat",
	"collar": "wears a bright collar",
}

var featurePhrases = map[string]string{
	"tail":  "with a fluffy tail",
	"wings": "with beautiful wings",
	"horn":  "with a magical horn",
}

// BuildCharacter 由提取的特征构造唯一主角。
// 对相同的features结果逐位相同；角色一旦建成，全流程只读共享，
// 下游必须复用这一份描述，不得重新推导。
func BuildCharacter(features model.PromptFeatures) model.Character {
	name := features.ProtagonistName
	if name == "" {
		name = defaultNames[features.Theme]
		if name == "" {
			name = defaultNames[model.ThemeGeneric]
		}
	}

	species := features.Species
	if species == "" {
		species = "woodland creature"
	}

	var parts []string
	if features.Small {
		parts = append(parts, fmt.Sprintf("a small %s", species))
	} else {
		parts = append(parts, fmt.Sprintf("a %s", species))
	}

	if len(features.Colors) > 0 {
		parts = append(parts, fmt.Sprintf("with %s fur", strings.Join(features.Colors, ", ")))
	}

	if len(features.Accessories) > 0 {
		for _, a := range features.Accessories {
			if phrase, ok := accessoryPhrases[a]; ok {
				parts = append(parts, phrase)
			}
		}
	} else {
		parts = append(parts, defaultAccessories[themeOrGeneric(features.Theme)])
	}

	for _, f := range features.Features {
		if phrase, ok := featurePhrases[f]; ok {
			parts = append(parts, phrase)
		}
	}

	if len(features.Traits) > 0 {
		parts = append(parts, fmt.Sprintf("%s and adventurous", strings.Join(features.Traits, ", ")))
	} else {
		parts = append(parts, defaultTraits[themeOrGeneric(features.Theme)])
	}

	return model.Character{
		Name:        name,
		Description: strings.Join(parts, ", "),
	}
}

func themeOrGeneric(t model.Theme) model.Theme {
	switch t {
	case model.ThemeFriendship, model.ThemeSharing, model.ThemeCreativity,
		model.ThemeLearning, model.ThemeCourage:
		return t
	default:
		return model.ThemeGeneric
	}
}
