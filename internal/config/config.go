package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	// ErrCodeNotFound 表示 --config 显式指定的文件不存在。
	ErrCodeNotFound = "config_not_found"
	// ErrCodeInvalid 表示配置文件无法读取/解析，或字段不合法。
	ErrCodeInvalid = "config_invalid"
)

const (
	FileName    = "recipebox.json"
	DotEnvName  = ".env"
	DefaultAPI  = "http://localhost:8000"
	DefaultAddr = ":8080"
	// DefaultCacheDir 相对 cwd。
	DefaultCacheDir = ".recipebox-cache"
	DefaultTimeout  = 180 * time.Second
)

// DefaultModels 的第一个元素是默认模型。
var DefaultModels = []string{"gemini-3-flash-preview", "gemini-3-pro"}

// 环境变量名。API_BASE_URL 是旧前端用过的名字，作为低优先级别名保留。
const (
	EnvAPIBaseURL       = "RECIPEBOX_API_BASE_URL"
	EnvAPIBaseURLLegacy = "API_BASE_URL"
	EnvListen           = "RECIPEBOX_LISTEN"
	EnvModel            = "RECIPEBOX_MODEL"
	EnvCacheDir         = "RECIPEBOX_CACHE_DIR"
)

// CLIArgs 保留“是否显式指定”的信息，保证 CLI 能覆盖任何低优先级来源。
type CLIArgs struct {
	// ConfigPath 非空时必须存在；为空时尝试 <cwd>/recipebox.json（可选）。
	ConfigPath string

	APIBaseURL    string
	APIBaseURLSet bool

	Listen    string
	ListenSet bool

	Model    string
	ModelSet bool
}

// FileConfig 对应 recipebox.json 的解析结构。
type FileConfig struct {
	APIBaseURL      string       `json:"api_base_url"`
	AssetBaseURL    string       `json:"asset_base_url"`
	Listen          string       `json:"listen"`
	Models          []string     `json:"models"`
	DefaultModel    string       `json:"default_model"`
	CacheDir        string       `json:"cache_dir"`
	CacheReadOnly   bool         `json:"cache_read_only"`
	TimeoutSeconds  int          `json:"timeout_seconds"`
	Proxy           *ProxyConfig `json:"proxy"`
	MediaProxy      bool         `json:"media_proxy"`
	StrictPlatforms bool         `json:"strict_platforms"`
	PlaceholderURL  string       `json:"placeholder_url"`
	CORSOrigins     []string     `json:"cors_origins"`
}

type ProxyConfig struct {
	URL string `json:"url"`
}

// EffectiveConfig 是合并并做最小规范化后的最终配置（实现层直接消费，不再做二次默认/优先级判断）。
type EffectiveConfig struct {
	APIBaseURL   string
	AssetBaseURL string
	Listen       string

	Models       []string
	DefaultModel string

	CacheDir      string
	CacheReadOnly bool
	Timeout       time.Duration

	ProxyURL   string
	MediaProxy bool

	StrictPlatforms bool
	PlaceholderURL  string
	CORSOrigins     []string

	// Source 是实际读取到的配置文件路径（未读取时为空）。
	Source string
}

// Error 是配置阶段的结构化错误（带 error_code）。
type Error struct {
	Code string
	Path string
	Err  error
}

func (e *Error) Error() string {
	switch e.Code {
	case ErrCodeNotFound:
		return fmt.Sprintf("%s：未找到配置文件 %q", e.Code, e.Path)
	case ErrCodeInvalid:
		if e.Err != nil {
			return fmt.Sprintf("%s：配置 %q 无效：%v", e.Code, e.Path, e.Err)
		}
		return fmt.Sprintf("%s：配置 %q 无效", e.Code, e.Path)
	default:
		if e.Err != nil {
			return fmt.Sprintf("%s：%v", e.Code, e.Err)
		}
		return e.Code
	}
}

func (e *Error) Unwrap() error { return e.Err }

// Code 从 error 中提取 error_code；若不是 *Error 则返回空串。
func Code(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// LookupEnv 与 os.LookupEnv 同签名，便于测试注入。
type LookupEnv func(key string) (string, bool)

// WithDotEnv 返回一个先查 next、查不到再查 <cwd>/.env 的 LookupEnv。
// .env 只补缺，不覆盖真实环境变量，也不修改进程环境。
func WithDotEnv(cwd string, next LookupEnv) (LookupEnv, error) {
	if next == nil {
		next = os.LookupEnv
	}
	p := filepath.Join(cwd, DotEnvName)
	m, err := godotenv.Read(p)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return next, nil
		}
		return nil, &Error{Code: ErrCodeInvalid, Path: p, Err: err}
	}
	return func(key string) (string, bool) {
		if v, ok := next(key); ok {
			return v, true
		}
		v, ok := m[key]
		return v, ok
	}, nil
}

// LoadEffective 读取配置文件与环境变量，然后与 CLI 参数合并为最终配置。
//
// 覆盖优先级（固定）：
// - api_base_url / listen / model：CLI > 环境变量 > 配置文件 > 默认
// - cache_dir：环境变量 > 配置文件 > 默认
// - 其他字段：仅由配置文件控制（CLI 不暴露）
func LoadEffective(cwd string, env LookupEnv, cli CLIArgs) (EffectiveConfig, error) {
	cwdAbs, err := filepath.Abs(cwd)
	if err != nil {
		return EffectiveConfig{}, &Error{Code: ErrCodeInvalid, Path: cwd, Err: err}
	}
	if env == nil {
		env = os.LookupEnv
	}

	cfgPath := filepath.Join(cwdAbs, FileName)
	required := false
	if strings.TrimSpace(cli.ConfigPath) != "" {
		cfgPath = absCleanFrom(cwdAbs, cli.ConfigPath)
		required = true
	}

	fc, exists, err := readFileConfig(cfgPath)
	if err != nil {
		return EffectiveConfig{}, &Error{Code: ErrCodeInvalid, Path: cfgPath, Err: err}
	}
	if !exists && required {
		return EffectiveConfig{}, &Error{Code: ErrCodeNotFound, Path: cfgPath, Err: os.ErrNotExist}
	}

	eff, err := merge(cwdAbs, env, cli, fc)
	if err != nil {
		return EffectiveConfig{}, &Error{Code: ErrCodeInvalid, Path: cfgPath, Err: err}
	}
	if exists {
		eff.Source = cfgPath
	}
	return eff, nil
}

func merge(cwdAbs string, env LookupEnv, cli CLIArgs, fc FileConfig) (EffectiveConfig, error) {
	// api_base_url：CLI > env > legacy env > config > 默认
	apiBase := pick(DefaultAPI, fc.APIBaseURL, envValue(env, EnvAPIBaseURLLegacy), envValue(env, EnvAPIBaseURL))
	if cli.APIBaseURLSet {
		apiBase = cli.APIBaseURL
	}
	apiBase, err := normalizeBaseURL("api_base_url", apiBase)
	if err != nil {
		return EffectiveConfig{}, err
	}

	assetBase := apiBase
	if strings.TrimSpace(fc.AssetBaseURL) != "" {
		if assetBase, err = normalizeBaseURL("asset_base_url", fc.AssetBaseURL); err != nil {
			return EffectiveConfig{}, err
		}
	}

	listen := pick(DefaultAddr, fc.Listen, envValue(env, EnvListen))
	if cli.ListenSet {
		listen = strings.TrimSpace(cli.Listen)
	}
	if listen == "" {
		return EffectiveConfig{}, fmt.Errorf("listen 不能为空")
	}

	models := normList(fc.Models)
	if len(models) == 0 {
		models = append([]string(nil), DefaultModels...)
	}
	model := pick(models[0], fc.DefaultModel, envValue(env, EnvModel))
	if cli.ModelSet {
		model = strings.TrimSpace(cli.Model)
	}
	if model == "" {
		return EffectiveConfig{}, fmt.Errorf("model 不能为空")
	}
	if !contains(models, model) {
		// 显式指定的模型不在列表里：仍然允许（后端才是最终裁判），但要让 UI 能选中它。
		models = append(models, model)
	}

	timeout := DefaultTimeout
	if fc.TimeoutSeconds < 0 {
		return EffectiveConfig{}, fmt.Errorf("timeout_seconds 不能为负数：%d", fc.TimeoutSeconds)
	}
	if fc.TimeoutSeconds > 0 {
		timeout = time.Duration(fc.TimeoutSeconds) * time.Second
	}

	proxyURL := ""
	if fc.Proxy != nil {
		proxyURL = strings.TrimSpace(fc.Proxy.URL)
	}
	if proxyURL != "" {
		u, err := url.Parse(proxyURL)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return EffectiveConfig{}, fmt.Errorf("proxy.url 无效：%q", proxyURL)
		}
	}
	if fc.MediaProxy && proxyURL == "" {
		return EffectiveConfig{}, fmt.Errorf("media_proxy=true 但 proxy.url 为空")
	}

	cacheDir := absCleanFrom(cwdAbs, pick(DefaultCacheDir, fc.CacheDir, envValue(env, EnvCacheDir)))

	return EffectiveConfig{
		APIBaseURL:      apiBase,
		AssetBaseURL:    assetBase,
		Listen:          listen,
		Models:          models,
		DefaultModel:    model,
		CacheDir:        cacheDir,
		CacheReadOnly:   fc.CacheReadOnly,
		Timeout:         timeout,
		ProxyURL:        proxyURL,
		MediaProxy:      fc.MediaProxy,
		StrictPlatforms: fc.StrictPlatforms,
		PlaceholderURL:  strings.TrimSpace(fc.PlaceholderURL),
		CORSOrigins:     normList(fc.CORSOrigins),
	}, nil
}

// pick 返回最后一个非空值（参数按优先级从低到高排列）。
func pick(def string, vals ...string) string {
	out := def
	for _, v := range vals {
		if v = strings.TrimSpace(v); v != "" {
			out = v
		}
	}
	return out
}

func envValue(env LookupEnv, key string) string {
	v, ok := env(key)
	if !ok {
		return ""
	}
	return v
}

// normalizeBaseURL 要求绝对 http(s) 地址，并去掉末尾的 '/'。
func normalizeBaseURL(field, s string) (string, error) {
	s = strings.TrimRight(strings.TrimSpace(s), "/")
	u, err := url.Parse(s)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("%s 无效：%q", field, s)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", fmt.Errorf("%s 必须是 http/https：%q", field, s)
	}
	return s, nil
}

func normList(in []string) []string {
	out := make([]string, 0, len(in))
	seen := map[string]struct{}{}
	for _, s := range in {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

// absCleanFrom 以 base 为基准，把 p 变为 clean + absolute。
func absCleanFrom(base, p string) string {
	p = filepath.Clean(strings.TrimSpace(p))
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Clean(filepath.Join(base, p))
}

// readFileConfig 读取并解析 JSON 配置文件。
// 返回值 exists 表示该文件是否存在（不存在不算错误）。
func readFileConfig(path string) (fc FileConfig, exists bool, err error) {
	b, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return FileConfig{}, false, nil
		}
		return FileConfig{}, false, err
	}
	if err := json.Unmarshal(b, &fc); err != nil {
		return FileConfig{}, true, err
	}
	return fc, true, nil
}
