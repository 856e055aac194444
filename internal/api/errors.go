package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/John-Robertt/recipebox/internal/platform"
)

// ValidationError 是 platform.ValidationError 的别名：输入非法，请求根本没有发出。
type ValidationError = platform.ValidationError

// StatusError 表示后端返回了非 2xx 的 HTTP 状态码。
// Detail 取自响应体 JSON 的 "detail" 字段（FastAPI 的 HTTPException 约定），没有则为空。
type StatusError struct {
	Op         string
	URL        string
	StatusCode int
	Detail     string
}

func (e *StatusError) Error() string {
	if e == nil {
		return "HTTP status error"
	}
	d := strings.TrimSpace(e.Detail)
	if d == "" {
		return fmt.Sprintf("%s: HTTP %d", e.Op, e.StatusCode)
	}
	return fmt.Sprintf("%s: HTTP %d: %s", e.Op, e.StatusCode, d)
}

// NotFound 表示后端明确返回了 404。
func (e *StatusError) NotFound() bool { return e != nil && e.StatusCode == 404 }

// AppError 表示 HTTP 200 但响应体 success=false（应用层失败）。
type AppError struct {
	Op      string
	Message string
}

func (e *AppError) Error() string {
	if e == nil {
		return "application error"
	}
	if strings.TrimSpace(e.Message) == "" {
		return e.Op + ": success=false"
	}
	return e.Op + ": " + e.Message
}

// Message 把错误转换为面向用户的提示文本；无法给出具体原因时返回 fallback。
func Message(err error, fallback string) string {
	if err == nil {
		return ""
	}
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve.Error()
	}
	var se *StatusError
	if errors.As(err, &se) && strings.TrimSpace(se.Detail) != "" {
		return strings.TrimSpace(se.Detail)
	}
	var ae *AppError
	if errors.As(err, &ae) && strings.TrimSpace(ae.Message) != "" {
		return strings.TrimSpace(ae.Message)
	}
	return fallback
}

// IsNotFound 判断 err 链里是否有 404 StatusError。
func IsNotFound(err error) bool {
	var se *StatusError
	return errors.As(err, &se) && se.NotFound()
}

// detailOf 尽力从错误响应体中取出 detail 字符串。
// FastAPI 的校验错误 detail 是数组，这里只接受字符串形式。
func detailOf(body []byte) string {
	var v struct {
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(body, &v); err != nil || len(v.Detail) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(v.Detail, &s); err != nil {
		return ""
	}
	return strings.TrimSpace(s)
}
