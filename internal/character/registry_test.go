package character

import (
	"reflect"
	"strings"
	"testing"

	"storybook/internal/analyzer"
	"storybook/internal/model"
)

func TestBuildCharacterFromFeatures(t *testing.T) {
	features := analyzer.Analyze("a shy little fox who learns to share")
	ch := BuildCharacter(features)

	if ch.Name != "Poppy" {
		t.Errorf("Name = %q, want Poppy (sharing default)", ch.Name)
	}
	if !strings.Contains(ch.Description, "a small fox") {
		t.Errorf("Description missing species: %q", ch.Description)
	}
	if !strings.Contains(ch.Description, "shy and adventurous") {
		t.Errorf("Description missing traits: %q", ch.Description)
	}
	if !strings.Contains(ch.Description, "wearing a sky-blue scarf") {
		t.Errorf("Description missing themed accessory: %q", ch.Description)
	}
}

func TestBuildCharacterExtractedName(t *testing.T) {
	features := analyzer.Analyze("a brave unicorn named Stella who loves to dance")
	ch := BuildCharacter(features)

	if ch.Name != "Stella" {
		t.Errorf("Name = %q, want Stella", ch.Name)
	}
	if !strings.Contains(ch.Description, "a unicorn") {
		t.Errorf("Description missing species: %q", ch.Description)
	}
	if !strings.Contains(ch.Description, "brave and adventurous") {
		t.Errorf("Description missing traits: %q", ch.Description)
	}
}

func TestBuildCharacterThemeDefaults(t *testing.T) {
	cases := []struct {
		theme model.Theme
		name  string
	}{
		{model.ThemeFriendship, "Benny"},
		{model.ThemeSharing, "Poppy"},
		{model.ThemeCreativity, "Melody"},
		{model.ThemeLearning, "Oliver"},
		{model.ThemeCourage, "Finn"},
		{model.ThemeGeneric, "Luna"},
	}
	for _, tc := range cases {
		ch := BuildCharacter(model.PromptFeatures{Theme: tc.theme})
		if ch.Name != tc.name {
			t.Errorf("theme %s: Name = %q, want %q", tc.theme, ch.Name, tc.name)
		}
		if ch.Description == "" {
			t.Errorf("theme %s: empty description", tc.theme)
		}
	}
}

// 相同特征必须构造出逐位相同的角色
func TestBuildCharacterDeterministic(t *testing.T) {
	features := analyzer.Analyze("a kind purple bear called Bumble with a fluffy tail")
	first := BuildCharacter(features)
	for i := 0; i < 5; i++ {
		if got := BuildCharacter(features); !reflect.DeepEqual(got, first) {
			t.Fatalf("BuildCharacter not deterministic: %+v vs %+v", got, first)
		}
	}
}

func TestBuildCharacterUnknownTheme(t *testing.T) {
	ch := BuildCharacter(model.PromptFeatures{Theme: model.Theme("mystery")})
	if ch.Name != "Luna" {
		t.Errorf("Name = %q, want Luna (generic default)", ch.Name)
	}
	if !strings.Contains(ch.Description, "woodland creature") {
		t.Errorf("Description missing default species: %q", ch.Description)
	}
}
