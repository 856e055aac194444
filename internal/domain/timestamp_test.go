package domain

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"
)

func TestParseTimestamp_Layouts(t *testing.T) {
	cases := []struct {
		in   string
		want time.Time
	}{
		{"2025-01-02T03:04:05Z", time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)},
		{"2025-01-02T11:04:05+08:00", time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)},
		{"2025-01-02T03:04:05.5", time.Date(2025, 1, 2, 3, 4, 5, 500000000, time.UTC)},
		{"2025-01-02 03:04:05", time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)},
		{"2025-01-02", time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC)},
	}
	for _, tc := range cases {
		got := ParseTimestamp(tc.in)
		if !got.Valid() || !got.Time.Equal(tc.want) || got.Location() != time.UTC {
			t.Fatalf("ParseTimestamp(%q)=%v，期望 %v", tc.in, got.Time, tc.want)
		}
	}
	if ParseTimestamp("yesterday").Valid() {
		t.Fatalf("无法解析的时间应为零值")
	}
}

func TestRecipe_DecodeNullsAndBadTime(t *testing.T) {
	raw := `{"id":3,"title":null,"created_at":"not-a-time","nutrition":null,"ingredients":null}`
	var r Recipe
	if err := json.Unmarshal([]byte(raw), &r); err != nil {
		t.Fatalf("坏时间不应导致整条记录解码失败：%v", err)
	}
	if r.Title != nil || r.Nutrition != nil || r.CreatedAt.Valid() {
		t.Fatalf("null 字段解码不符合预期：%+v", r)
	}
	if r.CreatedAt.Raw != "not-a-time" {
		t.Fatalf("应保留原始时间字符串：%q", r.CreatedAt.Raw)
	}

	b, err := json.Marshal(r)
	if err != nil {
		t.Fatalf("json.Marshal 失败：%v", err)
	}
	if !bytes.Contains(b, []byte(`"created_at":"not-a-time"`)) {
		t.Fatalf("无法解析的时间应原样回写：%s", string(b))
	}

	var null Recipe
	if err := json.Unmarshal([]byte(`{"created_at":null}`), &null); err != nil {
		t.Fatalf("null 时间不应报错：%v", err)
	}
	if b, _ := json.Marshal(null.CreatedAt); string(b) != "null" {
		t.Fatalf("空时间应输出 null：%s", string(b))
	}
}

func TestStr(t *testing.T) {
	s := "x"
	if Str(nil) != "" || Str(&s) != "x" {
		t.Fatalf("Str 不符合预期")
	}
}
