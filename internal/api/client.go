package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/John-Robertt/recipebox/internal/domain"
	"github.com/John-Robertt/recipebox/internal/platform"
)

// 面向用户的兜底提示（后端没有给出 detail/message 时使用）。
const (
	MsgLoadFailed    = "Failed to load recipes"
	MsgExtractFailed = "Failed to extract recipe"
	MsgDeleteFailed  = "Failed to delete recipe"
	MsgGroceryFailed = "Failed to load grocery list"
	MsgExportFailed  = "Failed to export recipe"
)

// maxBody 限制单个响应体大小（导出的 PDF 也远小于该值）。
const maxBody = 32 << 20

// ExportFormats 是后端支持的导出格式。
var ExportFormats = []string{"json", "pdf"}

// Client 是后端 REST API 的类型化封装。
//
// 约束：
// - BaseURL 由调用方注入（配置/测试），不依赖包级常量
// - 不做缓存/重试：一次调用失败即返回错误
type Client struct {
	BaseURL string
	HTTP    *http.Client

	// StrictPlatforms=true 时 Extract 只接受 TikTok/Instagram 链接。
	StrictPlatforms bool
}

// New 构造 Client；hc 为空时使用 http.DefaultClient。
func New(baseURL string, hc *http.Client) (*Client, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	u, err := url.Parse(baseURL)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return nil, fmt.Errorf("api base url 非法：%q", baseURL)
	}
	if hc == nil {
		hc = http.DefaultClient
	}
	return &Client{BaseURL: baseURL, HTTP: hc}, nil
}

func (c *Client) ListRecipes(ctx context.Context) ([]domain.Recipe, error) {
	var out []domain.Recipe
	if err := c.doJSON(ctx, "list recipes", http.MethodGet, "/api/recipes", nil, &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = []domain.Recipe{}
	}
	return out, nil
}

func (c *Client) GetRecipe(ctx context.Context, id int64) (domain.Recipe, error) {
	var out domain.Recipe
	err := c.doJSON(ctx, "get recipe", http.MethodGet, recipePath(id), nil, &out)
	return out, err
}

// Extract 请求后端从视频中抽取菜谱。
// URL 校验失败时返回 *ValidationError，且不会发出任何请求。
func (c *Client) Extract(ctx context.Context, videoURL, model string) (domain.Recipe, error) {
	videoURL = strings.TrimSpace(videoURL)
	if err := platform.Validate(videoURL, c.StrictPlatforms); err != nil {
		return domain.Recipe{}, err
	}
	body := domain.ExtractRequest{VideoURL: videoURL, Model: strings.TrimSpace(model)}

	var out domain.ExtractResponse
	if err := c.doJSON(ctx, "extract", http.MethodPost, "/api/recipes/extract", body, &out); err != nil {
		return domain.Recipe{}, err
	}
	if !out.Success || out.Recipe == nil {
		return domain.Recipe{}, &AppError{Op: "extract", Message: out.Message}
	}
	return *out.Recipe, nil
}

func (c *Client) DeleteRecipe(ctx context.Context, id int64) error {
	var out domain.DeleteResponse
	if err := c.doJSON(ctx, "delete recipe", http.MethodDelete, recipePath(id), nil, &out); err != nil {
		return err
	}
	if !out.Success {
		return &AppError{Op: "delete recipe", Message: out.Message}
	}
	return nil
}

func (c *Client) GroceryList(ctx context.Context, id int64) (domain.GroceryList, error) {
	var out domain.GroceryList
	err := c.doJSON(ctx, "grocery list", http.MethodGet, recipePath(id)+"/grocery-list", nil, &out)
	return out, err
}

// Health 调用后端健康检查；只关心是否 2xx。
func (c *Client) Health(ctx context.Context) error {
	return c.doJSON(ctx, "health", http.MethodGet, "/api/health", nil, nil)
}

// ExportURL 返回后端导出地址（浏览器直接打开即可下载）。
func (c *Client) ExportURL(id int64, format string) (string, error) {
	f, err := normalizeExportFormat(format)
	if err != nil {
		return "", err
	}
	return c.BaseURL + recipePath(id) + "/export/" + f, nil
}

// DownloadExport 下载导出文件，返回内容与文件名。
// 文件名优先取 Content-Disposition，缺失时回退 recipe_<id>.<format>。
func (c *Client) DownloadExport(ctx context.Context, id int64, format string) ([]byte, string, error) {
	u, err := c.ExportURL(id, format)
	if err != nil {
		return nil, "", err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, "", err
	}
	b, resp, err := do(c.HTTP, req, "export")
	if err != nil {
		return nil, "", err
	}
	if len(b) == 0 {
		return nil, "", fmt.Errorf("export: empty response body")
	}

	f, _ := normalizeExportFormat(format)
	name := "recipe_" + strconv.FormatInt(id, 10) + "." + f
	if _, params, err := mime.ParseMediaType(resp.Header.Get("Content-Disposition")); err == nil {
		if fn := strings.TrimSpace(params["filename"]); fn != "" && !strings.ContainsAny(fn, `/\`) {
			name = fn
		}
	}
	return b, name, nil
}

// Fetch 下载后端静态资源（缩略图等）；rawURL 必须是绝对地址。
func (c *Client) Fetch(ctx context.Context, hc *http.Client, rawURL string) ([]byte, error) {
	if hc == nil {
		hc = c.HTTP
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}
	b, _, err := do(hc, req, "fetch asset")
	if err != nil {
		return nil, err
	}
	if len(b) == 0 {
		return nil, errors.New("fetch asset: empty response body")
	}
	return b, nil
}

func (c *Client) doJSON(ctx context.Context, op, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
		body = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, body)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	b, _, err := do(c.HTTP, req, op)
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(b, out); err != nil {
		return fmt.Errorf("%s: 响应不是合法 JSON：%w", op, err)
	}
	return nil
}

// do 发送请求并读完 body；非 2xx 转换为 *StatusError。
func do(hc *http.Client, req *http.Request, op string) ([]byte, *http.Response, error) {
	if hc == nil {
		hc = http.DefaultClient
	}
	resp, err := hc.Do(req)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", op, err)
	}
	defer resp.Body.Close()

	b, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", op, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, resp, &StatusError{
			Op:         op,
			URL:        req.URL.String(),
			StatusCode: resp.StatusCode,
			Detail:     detailOf(b),
		}
	}
	return b, resp, nil
}

func recipePath(id int64) string {
	return "/api/recipes/" + strconv.FormatInt(id, 10)
}

func normalizeExportFormat(format string) (string, error) {
	f := strings.ToLower(strings.TrimSpace(format))
	for _, ok := range ExportFormats {
		if f == ok {
			return f, nil
		}
	}
	return "", fmt.Errorf("不支持的导出格式：%q（可选：%s）", format, strings.Join(ExportFormats, ", "))
}

// ParseID 解析路径/命令行里的菜谱 id。
func ParseID(s string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("recipe id 非法：%q", s)
	}
	return id, nil
}
