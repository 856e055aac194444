package platform

import (
	"net/url"
	"strings"
)

// Platform 是视频来源平台（与后端 recipes.platform 字段的取值一致）。
type Platform string

const (
	TikTok    Platform = "tiktok"
	Instagram Platform = "instagram"
	YouTube   Platform = "youtube"
	Other     Platform = "other"
)

// hostSuffixes 按平台列出可识别的域名后缀（含短链域名）。
var hostSuffixes = map[Platform][]string{
	TikTok:    {"tiktok.com"},
	Instagram: {"instagram.com", "instagr.am"},
	YouTube:   {"youtube.com", "youtu.be"},
}

const (
	MsgEmpty   = "Please enter a video URL"
	MsgInvalid = "Please enter a valid video URL"
	MsgStrict  = "Please enter a valid Instagram or TikTok URL"
)

// ValidationError 表示视频 URL 未通过本地校验（不会发出网络请求）。
type ValidationError struct {
	// Kind: "empty" / "invalid" / "unsupported"
	Kind string
	URL  string
}

func (e *ValidationError) Error() string {
	switch e.Kind {
	case "empty":
		return MsgEmpty
	case "unsupported":
		return MsgStrict
	default:
		return MsgInvalid
	}
}

// Detect 根据 host 判断平台；无法解析或不认识的都返回 Other。
func Detect(videoURL string) Platform {
	u, err := url.Parse(strings.TrimSpace(videoURL))
	if err != nil {
		return Other
	}
	host := strings.ToLower(u.Hostname())
	for _, p := range []Platform{TikTok, Instagram, YouTube} {
		for _, suf := range hostSuffixes[p] {
			if host == suf || strings.HasSuffix(host, "."+suf) {
				return p
			}
		}
	}
	return Other
}

// Validate 校验用户输入的视频 URL。
//
// 规则：
// - 非空，且是带 host 的绝对 http(s) URL
// - strict=true 时只接受 TikTok / Instagram
func Validate(videoURL string, strict bool) error {
	s := strings.TrimSpace(videoURL)
	if s == "" {
		return &ValidationError{Kind: "empty"}
	}
	u, err := url.Parse(s)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return &ValidationError{Kind: "invalid", URL: s}
	}
	if strict {
		switch Detect(s) {
		case TikTok, Instagram:
		default:
			return &ValidationError{Kind: "unsupported", URL: s}
		}
	}
	return nil
}
