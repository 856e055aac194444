package view

import (
	"math"
	"strconv"
	"time"
)

// Missing 是数值缺失时的展示文本。
const Missing = "—"

func FormatCalories(v *float64) string {
	if v == nil {
		return Missing
	}
	return strconv.FormatInt(int64(math.Round(*v)), 10)
}

func FormatGrams(v *float64) string {
	if v == nil {
		return Missing
	}
	return strconv.FormatFloat(*v, 'f', 1, 64) + "g"
}

// FormatValue 用于份数等整数字段。
func FormatValue(v *int) string {
	if v == nil {
		return Missing
	}
	return strconv.Itoa(*v)
}

// FormatDate 零值返回空串。
func FormatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format("Jan 2, 2006")
}
