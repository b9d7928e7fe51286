package tools

import (
	"context"
	"encoding/json"
	"errors"

	einotool "github.com/cloudwego/eino/components/tool"
	"github.com/cloudwego/eino/schema"

	"storybook/internal/model"
	"storybook/internal/pipeline"
)

// StorybookTool 实现eino框架的绘本生成工具，包装完整流水线
type StorybookTool struct {
	pipe *pipeline.Pipeline
}

// StorybookToolArgs 绘本生成请求参数
type StorybookToolArgs struct {
	Prompt string `json:"prompt"` // 故事提示词
	Style  string `json:"style"`  // 插画风格，可选
	Size   string `json:"size"`   // 图片尺寸，可选
}

// StorybookToolResp 绘本生成响应
type StorybookToolResp struct {
	RunID   string       `json:"run_id"`
	Story   *model.Story `json:"story"`
	Message string       `json:"message"` // 提示信息
}

// NewStorybookTool 创建绘本生成工具实例
func NewStorybookTool(pipe *pipeline.Pipeline) *StorybookTool {
	return &StorybookTool{pipe: pipe}
}

// Info 获取绘本生成工具信息
func (t *StorybookTool) Info(ctx context.Context) (*schema.ToolInfo, error) {
	params := map[string]*schema.ParameterInfo{
		"prompt": {Type: schema.String, Required: true, Desc: "故事提示词，如'a brave little fox who learns to share'"},
		"style":  {Type: schema.String, Desc: "插画风格: cartoon/watercolor/flat/painterly/realistic"},
		"size":   {Type: schema.String, Desc: "图片尺寸，如1024x1024"},
	}
	return &schema.ToolInfo{
		Name:        "storybook_generate",
		Desc:        "为儿童创作5页插画绘本，每页配插图，角色全篇一致",
		ParamsOneOf: schema.NewParamsOneOfByParams(params),
	}, nil
}

// InvokableRun 执行绘本生成任务
func (t *StorybookTool) InvokableRun(ctx context.Context, argumentsInJSON string, opts ...einotool.Option) (string, error) {
	var args StorybookToolArgs
	if err := json.Unmarshal([]byte(argumentsInJSON), &args); err != nil {
		return "", err
	}
	if args.Prompt == "" {
		return "", errors.New("prompt required")
	}

	result, err := t.pipe.Run(ctx, pipeline.Request{
		Prompt: args.Prompt,
		Style:  model.Style(args.Style),
		Size:   model.Size(args.Size),
	})
	if err != nil {
		return "", err
	}

	response := StorybookToolResp{
		RunID:   result.RunID,
		Story:   result.Story,
		Message: "绘本生成完成",
	}
	b, err := json.Marshal(response)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// 确保StorybookTool实现了einotool.InvokableTool接口
var _ einotool.InvokableTool = (*StorybookTool)(nil)
