package imagegen

import (
	"context"
	"fmt"
	"hash/fnv"
	"math/rand"

	"github.com/fogleman/gg"
)

const placeholderProviderName = "placeholder"

// 固定调色板，童书配色
var palette = [][3]float64{
	{0.98, 0.80, 0.61}, // peach
	{0.64, 0.83, 0.93}, // sky blue
	{0.72, 0.89, 0.67}, // mint
	{0.95, 0.71, 0.84}, // pink
	{0.99, 0.91, 0.64}, // butter yellow
	{0.76, 0.70, 0.93}, // lavender
	{0.60, 0.78, 0.74}, // sea green
	{0.96, 0.64, 0.56}, // coral
}

// PlaceholderProvider 本地兜底图片生成，无网络依赖，始终启用。
// 同一提示词+尺寸产出逐字节一致的图片，不同提示词产出不同图片。
type PlaceholderProvider struct{}

func NewPlaceholderProvider() *PlaceholderProvider { return &PlaceholderProvider{} }

func (p *PlaceholderProvider) Name() string  { return placeholderProviderName }
func (p *PlaceholderProvider) Enabled() bool { return true }

func (p *PlaceholderProvider) Attempt(_ context.Context, req Request) (Asset, error) {
	w, h := req.Size.Dimensions()

	seed := fnv.New64a()
	seed.Write([]byte(req.Prompt))
	fmt.Fprintf(seed, "|%dx%d", w, h)
	rng := rand.New(rand.NewSource(int64(seed.Sum64())))

	dc := gg.NewContext(w, h)

	// 双色垂直渐变背景
	top := palette[rng.Intn(len(palette))]
	bottom := palette[rng.Intn(len(palette))]
	for y := 0; y < h; y++ {
		t := float64(y) / float64(h)
		dc.SetRGB(
			top[0]+(bottom[0]-top[0])*t,
			top[1]+(bottom[1]-top[1])*t,
			top[2]+(bottom[2]-top[2])*t,
		)
		dc.DrawLine(0, float64(y), float64(w), float64(y))
		dc.Stroke()
	}

	// 抽象图形层：圆与圆角矩形
	shapes := 6 + rng.Intn(5)
	for i := 0; i < shapes; i++ {
		c := palette[rng.Intn(len(palette))]
		dc.SetRGBA(c[0], c[1], c[2], 0.55+rng.Float64()*0.35)
		cx := rng.Float64() * float64(w)
		cy := rng.Float64() * float64(h)
		r := (0.05 + rng.Float64()*0.18) * float64(w)
		if rng.Intn(2) == 0 {
			dc.DrawCircle(cx, cy, r)
		} else {
			dc.DrawRoundedRectangle(cx-r, cy-r, r*2, r*2, r*0.4)
		}
		dc.Fill()
	}

	// 太阳
	sun := palette[4]
	dc.SetRGBA(sun[0], sun[1], sun[2], 0.9)
	dc.DrawCircle(float64(w)*0.82, float64(h)*0.16, float64(w)*0.08)
	dc.Fill()

	if err := dc.SavePNG(req.OutPath); err != nil {
		return Asset{}, fmt.Errorf("save placeholder png: %w", err)
	}
	return Asset{Path: req.OutPath, Provider: p.Name()}, nil
}
