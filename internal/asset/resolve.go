package asset

import (
	"regexp"
	"strings"
)

// Category 是静态资源的顶层目录（后端以 /images、/videos、/exports 暴露）。
type Category string

const (
	Images  Category = "images"
	Videos  Category = "videos"
	Exports Category = "exports"
)

// Categories 的顺序只用于展示与遍历；规则 7 的取舍由路径段的位置决定，不看这里的顺序。
var Categories = []Category{Images, Videos, Exports}

const (
	RuleEmpty          = "empty"
	RuleCategoryPrefix = "category_prefix"
	RuleDataPrefix     = "data_prefix"
	RuleCategorySeg    = "category_segment"
	RuleImageExt       = "image_extension"
	RulePassThrough    = "pass_through"
)

var (
	driveRE    = regexp.MustCompile(`^[a-zA-Z]:/`)
	imageExtRE = regexp.MustCompile(`(?i)\.(jpg|jpeg|png|gif|webp)$`)
)

// rule 是一条 guard/transform。
// Terminal=false 的规则只做改写，结果交给下一条；Terminal=true 的规则一旦命中就直接返回。
type rule struct {
	Name     string
	Terminal bool
	Match    func(s string) bool // nil 表示总是命中
	Apply    func(s string) string
}

// rules 的顺序即优先级（固定，不对外暴露配置）。
// 后端不同代码路径会给出绝对盘符路径、容器内绝对路径或已经规范化的相对路径，
// 这里统一按顺序重新推导出 category 前缀。
var rules = []rule{
	{
		Name:  "backslash",
		Apply: func(s string) string { return strings.ReplaceAll(s, `\`, "/") },
	},
	{
		Name:  "drive_letter",
		Apply: func(s string) string { return driveRE.ReplaceAllString(s, "") },
	},
	{
		Name:  "leading_slash",
		Apply: stripRoot,
	},
	{
		// 取最后一个 /data/ 之后的部分（与 split 后取末段一致，重叠出现时按不重叠切分）。
		Name:  "data_root",
		Match: func(s string) bool { return strings.Contains(s, "/data/") },
		Apply: func(s string) string {
			parts := strings.Split(s, "/data/")
			return stripRoot(parts[len(parts)-1])
		},
	},
	{
		Name:     RuleCategoryPrefix,
		Terminal: true,
		Match:    hasCategoryPrefix,
		Apply:    func(s string) string { return s },
	},
	{
		Name:     RuleDataPrefix,
		Terminal: true,
		Match: func(s string) bool {
			return strings.HasPrefix(s, "data/") && hasCategoryPrefix(s[len("data/"):])
		},
		Apply: func(s string) string { return strings.TrimPrefix(s, "data/") },
	},
	{
		Name:     RuleCategorySeg,
		Terminal: true,
		Match:    func(s string) bool { return categorySegment(strings.Split(s, "/")) >= 0 },
		Apply: func(s string) string {
			parts := strings.Split(s, "/")
			return strings.Join(parts[categorySegment(parts):], "/")
		},
	},
	{
		Name:     RuleImageExt,
		Terminal: true,
		Match:    imageExtRE.MatchString,
		Apply: func(s string) string {
			// 去掉开头的 data/ 段，否则结果里会重新出现 /data/，再解析一次就变了。
			for strings.HasPrefix(s, "data/") {
				s = s[len("data/"):]
			}
			return string(Images) + "/" + s
		},
	},
	{
		Name:     RulePassThrough,
		Terminal: true,
		Apply:    func(s string) string { return s },
	},
}

// Resolve 把后端返回的文件路径规范化为可拼接在资源服务地址之后的相对路径。
//
// 空输入返回空串（调用方据此换成占位图）。该函数不会失败：
// 无法识别的输入按规范化后的原样返回，最坏情况只是前端出现一张坏图。
func Resolve(raw string) string {
	out, _ := Trace(raw)
	return out
}

// Trace 与 Resolve 相同，但额外返回终止解析的规则名（用于测试与排障日志）。
func Trace(raw string) (string, string) {
	if raw == "" {
		return "", RuleEmpty
	}
	s := raw
	for _, r := range rules {
		if r.Match != nil && !r.Match(s) {
			continue
		}
		s = r.Apply(s)
		if r.Terminal {
			return s, r.Name
		}
	}
	// rules 末尾是无条件终止的 pass_through，正常不会走到这里。
	return s, RulePassThrough
}

// CategoryOf 返回规范化路径所属的 category；pass-through 结果返回 false。
func CategoryOf(canonical string) (Category, bool) {
	for _, c := range Categories {
		if strings.HasPrefix(canonical, string(c)+"/") {
			return c, true
		}
	}
	return "", false
}

// URL 把 base（资源服务地址）与 Resolve(raw) 拼接为完整 URL；无资源时返回空串。
func URL(base, raw string) string {
	p := Resolve(raw)
	if p == "" {
		return ""
	}
	return strings.TrimRight(strings.TrimSpace(base), "/") + "/" + p
}

// stripRoot 去掉开头的 '/' 与盘符，直到两者都不再出现（"C:/D:/x" 这类叠加前缀也能一次去干净）。
func stripRoot(s string) string {
	for {
		t := driveRE.ReplaceAllString(strings.TrimLeft(s, "/"), "")
		if t == s {
			return s
		}
		s = t
	}
}

func hasCategoryPrefix(s string) bool {
	_, ok := CategoryOf(s)
	return ok
}

// categorySegment 返回最左侧等于 category 名的路径段下标；不存在时返回 -1。
func categorySegment(parts []string) int {
	for i, p := range parts {
		switch Category(p) {
		case Images, Videos, Exports:
			return i
		}
	}
	return -1
}
