package ark

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"storybook/internal/provider"
)

const defaultBase = "https://ark.cn-beijing.volces.com"

// ProviderName 在错误分类和资产归属里使用的provider名
const ProviderName = "ark"

type Client struct {
	BaseURL    string
	APIKey     string
	HTTPClient *http.Client
	Mock       bool
}

// NewClient Mock开启时不发起网络请求，返回固定的1x1像素，测试用
func NewClient(baseURL, apiKey string, timeout time.Duration, mock bool) *Client {
	if baseURL == "" {
		baseURL = defaultBase
	}
	return &Client{
		BaseURL:    baseURL,
		APIKey:     apiKey,
		HTTPClient: &http.Client{Timeout: timeout},
		Mock:       mock,
	}
}

type ImageGenParams struct {
	Model  string
	Prompt string
	Size   string
}

// GenerateImages 调用seedream文生图接口，返回图片URL或data URI列表
func (c *Client) GenerateImages(ctx context.Context, p ImageGenParams) ([]string, error) {
	if c.Mock {
		// 1x1 PNG pixel base64
		pixel := "iVBORw0KGgoAAAANSUhEUgAAAAEAAAABCAQAAAC1HAwCAAAAC0lEQVR4nGNgYAAAAAMAASsJTYQAAAAASUVORK5CYII="
		return []string{"data:image/png;base64," + pixel}, nil
	}
	if p.Model == "" {
		p.Model = "doubao-seedream-4.0"
	}
	if p.Size == "" {
		p.Size = "1024x1024"
	}
	body := map[string]any{
		"model":  p.Model,
		"prompt": p.Prompt,
		"size":   p.Size,
	}

	var resp struct {
		Data []struct {
			URL    string `json:"url"`
			B64    string `json:"b64_json"`
			Format string `json:"format"`
		} `json:"data"`
	}
	if err := c.postJSON(ctx, "/api/v3/images/generations", body, &resp); err != nil {
		return nil, err
	}
	urls := make([]string, 0, len(resp.Data))
	for _, d := range resp.Data {
		if d.URL != "" {
			urls = append(urls, d.URL)
			continue
		}
		if d.B64 != "" {
			fmtType := d.Format
			if fmtType == "" {
				fmtType = "png"
			}
			urls = append(urls, "data:image/"+fmtType+";base64,"+d.B64)
		}
	}
	if len(urls) == 0 {
		return nil, &provider.ValidationError{Provider: ProviderName, Err: errors.New("no images returned")}
	}
	return urls, nil
}

// Download 拉取生成结果的二进制内容
func (c *Client) Download(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	res, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, &provider.TransientError{Provider: ProviderName, Err: err}
	}
	defer res.Body.Close()
	data, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, &provider.TransientError{Provider: ProviderName, Err: err}
	}
	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return nil, provider.ClassifyHTTP(ProviderName, res.StatusCode, string(data))
	}
	return data, nil
}

func (c *Client) postJSON(ctx context.Context, path string, body any, out any) error {
	b, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+path, strings.NewReader(string(b)))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.APIKey)
	req.Header.Set("Content-Type", "application/json")
	logrus.WithFields(logrus.Fields{"url": req.URL.String()}).Debug("ark request")
	res, err := c.HTTPClient.Do(req)
	if err != nil {
		return &provider.TransientError{Provider: ProviderName, Err: err}
	}
	defer res.Body.Close()
	bodyBytes, err := io.ReadAll(res.Body)
	if err != nil {
		return &provider.TransientError{Provider: ProviderName, Err: err}
	}
	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return provider.ClassifyHTTP(ProviderName, res.StatusCode, string(bodyBytes))
	}
	if err := json.Unmarshal(bodyBytes, out); err != nil {
		return &provider.ValidationError{Provider: ProviderName, Err: err}
	}
	return nil
}
