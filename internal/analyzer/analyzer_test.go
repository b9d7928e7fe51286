package analyzer

import (
	"reflect"
	"testing"

	"storybook/internal/model"
)

func TestAnalyzeThemes(t *testing.T) {
	cases := []struct {
		name   string
		prompt string
		theme  model.Theme
	}{
		{"sharing wins over learning", "a shy little fox who learns to share", model.ThemeSharing},
		{"creativity wins over courage", "a brave unicorn named Stella who loves to dance", model.ThemeCreativity},
		{"friendship", "a lonely mouse looking for a friend", model.ThemeFriendship},
		{"learning", "a curious rabbit who loves to read", model.ThemeLearning},
		{"courage", "a cat who is scared of the dark", model.ThemeCourage},
		{"generic fallback", "a wonderful day in the meadow", model.ThemeGeneric},
		{"empty prompt", "", model.ThemeGeneric},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Analyze(tc.prompt)
			if got.Theme != tc.theme {
				t.Errorf("Analyze(%q).Theme = %q, want %q", tc.prompt, got.Theme, tc.theme)
			}
		})
	}
}

func TestAnalyzeNameExtraction(t *testing.T) {
	cases := []struct {
		prompt string
		want   string
	}{
		{"a brave unicorn named Stella who loves to dance", "Stella"},
		{"a bear called Bruno", "Bruno"},
		{"Milo who lives in the forest", "Milo"},
		{"Rusty the fox goes exploring", "Rusty"},
		{"a shy little fox who learns to share", ""},
		{"", ""},
	}
	for _, tc := range cases {
		got := Analyze(tc.prompt)
		if got.ProtagonistName != tc.want {
			t.Errorf("Analyze(%q).ProtagonistName = %q, want %q", tc.prompt, got.ProtagonistName, tc.want)
		}
	}
}

func TestAnalyzeFeatures(t *testing.T) {
	got := Analyze("a small purple cat with a fluffy tail wearing a hat who is kind and curious")

	if got.Species != "cat" {
		t.Errorf("Species = %q, want cat", got.Species)
	}
	if !got.Small {
		t.Error("Small = false, want true")
	}
	if !reflect.DeepEqual(got.Colors, []string{"purple"}) {
		t.Errorf("Colors = %v, want [purple]", got.Colors)
	}
	if !reflect.DeepEqual(got.Accessories, []string{"hat"}) {
		t.Errorf("Accessories = %v, want [hat]", got.Accessories)
	}
	if !reflect.DeepEqual(got.Features, []string{"tail"}) {
		t.Errorf("Features = %v, want [tail]", got.Features)
	}
	if !reflect.DeepEqual(got.Traits, []string{"curious", "kind"}) {
		t.Errorf("Traits = %v, want [curious kind]", got.Traits)
	}
}

// 相同输入必须产出逐位相同的结果
func TestAnalyzeDeterministic(t *testing.T) {
	prompt := "a brave little blue dog named Rex who learns to share"
	first := Analyze(prompt)
	for i := 0; i < 5; i++ {
		if got := Analyze(prompt); !reflect.DeepEqual(got, first) {
			t.Fatalf("Analyze not deterministic: %+v vs %+v", got, first)
		}
	}
}

// 任何输入都不报错、不panic，最差得到generic主题
func TestAnalyzeTotal(t *testing.T) {
	for _, prompt := range []string{"", "   ", "!!!", "名前のない物語", "123 456"} {
		got := Analyze(prompt)
		if got.Theme == "" {
			t.Errorf("Analyze(%q) produced empty theme", prompt)
		}
	}
}
