package domain

import (
	"bytes"
	"encoding/json"
	"strings"
	"time"
)

// Timestamp 兼容后端两种时间写法：带时区的 RFC3339，以及不带时区的 ISO（按 UTC 解释）。
// 无法解析的值保留为零值，而不是让整条记录解码失败。
type Timestamp struct {
	time.Time
	Raw string
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02",
}

// ParseTimestamp 按 timestampLayouts 顺序尝试解析；全部失败时 Time 为零值。
func ParseTimestamp(s string) Timestamp {
	s = strings.TrimSpace(s)
	ts := Timestamp{Raw: s}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			ts.Time = t.UTC()
			return ts
		}
	}
	return ts
}

func (t *Timestamp) UnmarshalJSON(b []byte) error {
	if bytes.Equal(b, []byte("null")) {
		*t = Timestamp{}
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	*t = ParseTimestamp(s)
	return nil
}

func (t Timestamp) MarshalJSON() ([]byte, error) {
	if t.Time.IsZero() {
		if t.Raw == "" {
			return []byte("null"), nil
		}
		return json.Marshal(t.Raw)
	}
	return json.Marshal(t.Time.UTC().Format(time.RFC3339Nano))
}

// Valid 表示时间是否成功解析。
func (t Timestamp) Valid() bool { return !t.Time.IsZero() }
