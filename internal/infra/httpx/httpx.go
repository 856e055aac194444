package httpx

import (
	"errors"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	// DefaultAPITimeout 覆盖一次完整的 extract（后端要下载视频并调用模型，通常要几十秒）。
	DefaultAPITimeout   = 180 * time.Second
	DefaultMediaTimeout = 20 * time.Second

	UserAgent = "recipebox/1"
)

// Transport 把“UA + 代理 + keep-alive 策略”固化为统一策略。
//
// 约束：不做重试。请求失败直接返回给调用方，由用户决定是否重来。
type Transport struct {
	Base *http.Transport

	UserAgent string

	// DisableKeepAlives 决定是否对 Request 设置 Close=true（额外保险）。
	// 真正禁用 keep-alive 依赖 Base.DisableKeepAlives。
	DisableKeepAlives bool
}

func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	if req == nil {
		return nil, errors.New("nil request")
	}
	if t.Base == nil {
		return nil, errors.New("nil base transport")
	}

	// Clone 会复制 Header，避免在 RoundTripper 内部“污染”调用方的 request。
	r := req.Clone(req.Context())
	if r.Header.Get("User-Agent") == "" && t.UserAgent != "" {
		r.Header.Set("User-Agent", t.UserAgent)
	}
	if t.DisableKeepAlives {
		r.Close = true
	}
	return t.Base.RoundTrip(r)
}

// NewAPIClient 构造访问后端 REST API 的 HTTP client。
//
// 规则：
// - proxyURL 非空：走代理，且禁用 keep-alive（每请求新连接）
// - timeout<=0 时使用 DefaultAPITimeout
func NewAPIClient(proxyURL string, timeout time.Duration) (*http.Client, error) {
	if timeout <= 0 {
		timeout = DefaultAPITimeout
	}
	return newClient(strings.TrimSpace(proxyURL), timeout)
}

// NewMediaClient 构造下载缩略图等静态资源的 HTTP client。
//
// 规则：
// - mediaProxy=false：直连（忽略 proxyURL）
// - mediaProxy=true：走 proxyURL，且禁用 keep-alive
func NewMediaClient(proxyURL string, mediaProxy bool) (*http.Client, error) {
	if !mediaProxy {
		return newClient("", DefaultMediaTimeout)
	}
	proxyURL = strings.TrimSpace(proxyURL)
	if proxyURL == "" {
		return nil, errors.New("media_proxy=true 但 proxy.url 为空")
	}
	return newClient(proxyURL, DefaultMediaTimeout)
}

func newClient(proxyURL string, timeout time.Duration) (*http.Client, error) {
	base := &http.Transport{
		Proxy:               nil,
		TLSHandshakeTimeout: 10 * time.Second,
		MaxIdleConnsPerHost: 4,
	}

	disableKeepAlives := false
	if proxyURL != "" {
		u, err := url.Parse(proxyURL)
		if err != nil {
			return nil, err
		}
		if u.Scheme == "" || u.Host == "" {
			return nil, errors.New("proxy.url 必须是带 scheme 的绝对 URL")
		}
		base.Proxy = http.ProxyURL(u)
		base.DisableKeepAlives = true
		disableKeepAlives = true
	}

	return &http.Client{
		Transport: &Transport{
			Base:              base,
			UserAgent:         UserAgent,
			DisableKeepAlives: disableKeepAlives,
		},
		Timeout: timeout,
	}, nil
}
