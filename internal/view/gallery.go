package view

import (
	"sort"

	"github.com/John-Robertt/recipebox/internal/domain"
)

// Gallery 映射全部记录并按 created_at 倒序排列（最新在前）。
// 时间无法解析的记录排在最后；相同时间保持输入顺序。
func (m Mapper) Gallery(recipes []domain.Recipe) []domain.VideoView {
	out := make([]domain.VideoView, 0, len(recipes))
	for _, r := range recipes {
		out = append(out, m.Map(r))
	}
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i].ProcessedAt, out[j].ProcessedAt
		if a.IsZero() || b.IsZero() {
			return !a.IsZero() && b.IsZero()
		}
		return a.After(b)
	})
	return out
}

// Upsert 把 v 放到最前面，并移除同 id 的旧条目（抽取成功后刷新画廊用）。
// 返回新切片，不修改入参。
func Upsert(gallery []domain.VideoView, v domain.VideoView) []domain.VideoView {
	out := make([]domain.VideoView, 0, len(gallery)+1)
	out = append(out, v)
	for _, g := range gallery {
		if g.ID == v.ID {
			continue
		}
		out = append(out, g)
	}
	return out
}

// Find 按 id 查找；找不到返回 false。
func Find(gallery []domain.VideoView, id string) (domain.VideoView, bool) {
	for _, g := range gallery {
		if g.ID == id {
			return g, true
		}
	}
	return domain.VideoView{}, false
}
