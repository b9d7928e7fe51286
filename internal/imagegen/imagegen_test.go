package imagegen

import (
	"bytes"
	"context"
	"fmt"
	"image/png"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sirupsen/logrus"

	"storybook/internal/model"
	"storybook/internal/provider"
)

func testLog() *logrus.Entry {
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	return logrus.NewEntry(log)
}

// fakeImageProvider 脚本化的图片provider
type fakeImageProvider struct {
	name     string
	enabled  bool
	err      error
	attempts int
}

func (f *fakeImageProvider) Name() string  { return f.name }
func (f *fakeImageProvider) Enabled() bool { return f.enabled }

func (f *fakeImageProvider) Attempt(ctx context.Context, req Request) (Asset, error) {
	f.attempts++
	if f.err != nil {
		return Asset{}, f.err
	}
	if err := os.WriteFile(req.OutPath, []byte(f.name), 0o644); err != nil {
		return Asset{}, err
	}
	return Asset{Path: req.OutPath, Provider: f.name}, nil
}

func TestRenderImageFallsToSecondProvider(t *testing.T) {
	dir := t.TempDir()
	primary := &fakeImageProvider{name: "primary", enabled: true,
		err: &provider.ValidationError{Provider: "primary", Err: fmt.Errorf("garbled")}}
	secondary := &fakeImageProvider{name: "secondary", enabled: true}

	d := NewDispatcher(testLog(), []provider.Provider[Request, Asset]{primary, secondary}, time.Second)
	asset, err := d.RenderImage(context.Background(), Request{
		Prompt:  "a fox",
		Size:    model.Size1024,
		OutPath: filepath.Join(dir, "page1.png"),
	})
	if err != nil {
		t.Fatalf("RenderImage: %v", err)
	}
	if asset.Provider != "secondary" {
		t.Errorf("Provider = %q, want secondary", asset.Provider)
	}
	if _, err := os.Stat(asset.Path); err != nil {
		t.Errorf("asset file missing: %v", err)
	}
}

func TestRenderImagePlaceholderTerminal(t *testing.T) {
	dir := t.TempDir()
	down := &fakeImageProvider{name: "down", enabled: true,
		err: &provider.AuthQuotaError{Provider: "down", Err: fmt.Errorf("quota")}}

	d := NewDispatcher(testLog(), []provider.Provider[Request, Asset]{
		down, NewPlaceholderProvider()}, time.Second)
	asset, err := d.RenderImage(context.Background(), Request{
		Prompt:  "a fox in a garden",
		Size:    model.Size1024,
		OutPath: filepath.Join(dir, "page1.png"),
	})
	if err != nil {
		t.Fatalf("RenderImage with placeholder terminal must not fail: %v", err)
	}
	if asset.Provider != placeholderProviderName {
		t.Errorf("Provider = %q, want placeholder", asset.Provider)
	}
}

func TestPlaceholderDeterministic(t *testing.T) {
	dir := t.TempDir()
	p := NewPlaceholderProvider()

	render := func(prompt, file string) []byte {
		path := filepath.Join(dir, file)
		if _, err := p.Attempt(context.Background(), Request{
			Prompt: prompt, Size: model.Size("64x64"), OutPath: path,
		}); err != nil {
			t.Fatalf("Attempt: %v", err)
		}
		data, err := os.ReadFile(path)
		if err != nil {
			t.Fatalf("ReadFile: %v", err)
		}
		return data
	}

	a := render("a fox in a garden", "a.png")
	b := render("a fox in a garden", "b.png")
	if !bytes.Equal(a, b) {
		t.Error("same prompt must produce byte-identical images")
	}
	c := render("a bear in a cave", "c.png")
	if bytes.Equal(a, c) {
		t.Error("different prompts must produce different images")
	}
}

func TestPlaceholderHonorsSize(t *testing.T) {
	dir := t.TempDir()
	p := NewPlaceholderProvider()
	path := filepath.Join(dir, "sized.png")

	if _, err := p.Attempt(context.Background(), Request{
		Prompt: "a fox", Size: model.Size("200x300"), OutPath: path,
	}); err != nil {
		t.Fatalf("Attempt: %v", err)
	}
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer f.Close()
	cfg, err := png.DecodeConfig(f)
	if err != nil {
		t.Fatalf("DecodeConfig: %v", err)
	}
	if cfg.Width != 200 || cfg.Height != 300 {
		t.Errorf("image is %dx%d, want 200x300", cfg.Width, cfg.Height)
	}
}

func TestDispatcherProviders(t *testing.T) {
	d := NewDispatcher(testLog(), []provider.Provider[Request, Asset]{
		&fakeImageProvider{name: "on", enabled: true},
		&fakeImageProvider{name: "off", enabled: false},
	}, time.Second)

	got := d.Providers()
	if !got["on"] || got["off"] {
		t.Errorf("Providers() = %v", got)
	}
}
