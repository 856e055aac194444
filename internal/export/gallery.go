package export

import (
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/John-Robertt/recipebox/internal/domain"
	"github.com/John-Robertt/recipebox/internal/view"
)

var galleryHeader = []string{
	"id", "title", "platform", "video_url", "processed_at",
	"calories", "protein", "carbs", "fat", "fiber", "servings",
	"ingredients", "steps", "thumbnail",
}

// WriteGallery 把画廊（每个视频一行）写成 csv/xlsx。
// 营养数值按展示规则格式化，缺失为 "—"。
func WriteGallery(w io.Writer, f Format, videos []domain.VideoView) error {
	if f == PDF {
		return &UnsupportedError{What: "gallery", Format: string(f)}
	}
	return writeTable(w, f, galleryHeader, galleryRows(videos))
}

func galleryRows(videos []domain.VideoView) [][]string {
	rows := make([][]string, 0, len(videos))
	for _, v := range videos {
		var rv domain.RecipeView
		if len(v.Recipes) > 0 {
			rv = v.Recipes[0]
		}
		n := rv.Nutrition

		names := make([]string, 0, len(rv.Ingredients))
		for _, ing := range rv.Ingredients {
			names = append(names, ing.Name)
		}

		processed := ""
		if !v.ProcessedAt.IsZero() {
			processed = v.ProcessedAt.UTC().Format(time.RFC3339)
		}

		rows = append(rows, []string{
			v.ID, v.Title, v.Platform, v.URL, processed,
			view.FormatCalories(n.Calories),
			view.FormatGrams(n.Protein),
			view.FormatGrams(n.Carbs),
			view.FormatGrams(n.Fat),
			view.FormatGrams(n.Fiber),
			view.FormatValue(n.Servings),
			strings.Join(names, "; "),
			strconv.Itoa(len(rv.Steps)),
			v.Thumbnail,
		})
	}
	return rows
}
