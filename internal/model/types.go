package model

import (
	"fmt"
	"strconv"
	"strings"
)

// PageCount 每个故事固定的页数
const PageCount = 5

// Theme 故事主题（封闭枚举）
type Theme string

const (
	ThemeFriendship Theme = "friendship"
	ThemeSharing    Theme = "sharing"
	ThemeCreativity Theme = "creativity"
	ThemeLearning   Theme = "learning"
	ThemeCourage    Theme = "courage"
	ThemeGeneric    Theme = "generic"
)

// Themes 按声明顺序返回全部主题，关键词匹配按此顺序进行
func Themes() []Theme {
	return []Theme{
		ThemeFriendship,
		ThemeSharing,
		ThemeCreativity,
		ThemeLearning,
		ThemeCourage,
		ThemeGeneric,
	}
}

// Style 插画风格
type Style string

const (
	StyleCartoon    Style = "cartoon"
	StyleWatercolor Style = "watercolor"
	StyleFlat       Style = "flat"
	StylePainterly  Style = "painterly"
	StyleRealistic  Style = "realistic"
)

// Size 图片尺寸，如"1024x1024"
type Size string

const (
	Size1024     Size = "1024x1024"
	SizePortrait Size = "1200x1600"
	SizeTall     Size = "1024x1536"
)

// Dimensions 解析宽高，非法输入回退到1024x1024
func (s Size) Dimensions() (int, int) {
	parts := strings.SplitN(string(s), "x", 2)
	if len(parts) != 2 {
		return 1024, 1024
	}
	w, errW := strconv.Atoi(strings.TrimSpace(parts[0]))
	h, errH := strconv.Atoi(strings.TrimSpace(parts[1]))
	if errW != nil || errH != nil || w <= 0 || h <= 0 {
		return 1024, 1024
	}
	return w, h
}

// PromptFeatures 从用户提示词中提取的特征，生成过程中只读
type PromptFeatures struct {
	ProtagonistName string   `json:"protagonist_name,omitempty"` // 主角名，可能为空
	Species         string   `json:"species,omitempty"`          // 识别到的物种
	Small           bool     `json:"small,omitempty"`            // 提示词包含little/small
	Traits          []string `json:"traits,omitempty"`           // 性格特征
	Colors          []string `json:"colors,omitempty"`           // 颜色
	Accessories     []string `json:"accessories,omitempty"`      // 配饰
	Features        []string `json:"features,omitempty"`         // 身体特征（尾巴、翅膀等）
	Theme           Theme    `json:"theme"`                      // 故事主题
}

// Character 故事角色，Description是全篇图片提示词必须逐字包含的规范描述
type Character struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Page 故事单页
type Page struct {
	Page        int    `json:"page"`                 // 页码1..5
	Text        string `json:"text"`                 // 页面正文，目标50-60词
	ImagePrompt string `json:"image_prompt"`         // 图片生成提示词
	ImagePath   string `json:"image_path,omitempty"` // 生成的图片路径
	AudioPath   string `json:"audio_path,omitempty"` // 生成的朗读音频路径，可能为空
}

// Story 完整故事，是流水线的最终产物
type Story struct {
	Title      string      `json:"title"`
	Characters []Character `json:"characters"`
	Pages      []*Page     `json:"pages"`
}

// Validate 校验故事结构：恰好5页、页码连续、正文与图片提示词非空、至少一个角色
func (s *Story) Validate() error {
	if s == nil {
		return fmt.Errorf("story is nil")
	}
	if strings.TrimSpace(s.Title) == "" {
		return fmt.Errorf("empty title")
	}
	if len(s.Characters) == 0 {
		return fmt.Errorf("no characters")
	}
	for i, ch := range s.Characters {
		if strings.TrimSpace(ch.Name) == "" || strings.TrimSpace(ch.Description) == "" {
			return fmt.Errorf("character %d incomplete", i)
		}
	}
	if len(s.Pages) != PageCount {
		return fmt.Errorf("expected %d pages, got %d", PageCount, len(s.Pages))
	}
	for i, p := range s.Pages {
		if p == nil {
			return fmt.Errorf("page %d is nil", i+1)
		}
		if p.Page != i+1 {
			return fmt.Errorf("page %d has number %d", i+1, p.Page)
		}
		if strings.TrimSpace(p.Text) == "" {
			return fmt.Errorf("page %d has empty text", p.Page)
		}
		if strings.TrimSpace(p.ImagePrompt) == "" {
			return fmt.Errorf("page %d has empty image prompt", p.Page)
		}
	}
	return nil
}
