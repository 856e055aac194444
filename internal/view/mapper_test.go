package view

import (
	"encoding/json"
	"reflect"
	"testing"
	"time"

	"github.com/John-Robertt/recipebox/internal/domain"
)

func sp(s string) *string   { return &s }
func fp(f float64) *float64 { return &f }
func ip(i int) *int         { return &i }

func TestMap_FullRecord(t *testing.T) {
	raw := `{
	  "id": 7,
	  "title": "Pizza",
	  "video_url": "https://www.tiktok.com/@a/video/1",
	  "platform": "tiktok",
	  "description": "Crispy",
	  "thumbnail_path": "C:\\data\\images\\pizza.jpg",
	  "video_path": "/app/data/videos/clip1.mp4",
	  "created_at": "2025-01-02T03:04:05.123456",
	  "ingredients": [
	    {"id": 1, "name": "Flour", "quantity": "2", "unit": "cups",
	     "store_links": [{"store_name": "Walmart", "search_url": "https://w/flour"},
	                     {"store_name": "Amazon", "search_url": "https://a/flour"}]},
	    {"id": 2, "name": "Salt", "quantity": null, "unit": null}
	  ],
	  "steps": [
	    {"id": 1, "step_number": 3, "instruction": "bake"},
	    {"id": 2, "step_number": 1, "instruction": "mix"},
	    {"id": 3, "step_number": 2, "instruction": "knead"}
	  ],
	  "nutrition": {"calories": 812.6, "protein": 20.25, "fats": 11, "servings": 2}
	}`
	var r domain.Recipe
	if err := json.Unmarshal([]byte(raw), &r); err != nil {
		t.Fatalf("解码失败：%v", err)
	}

	v := Mapper{AssetBaseURL: "http://localhost:8000/"}.Map(r)

	if v.ID != "7" || v.Title != "Pizza" || v.Platform != "tiktok" {
		t.Fatalf("基础字段不符合预期：%+v", v)
	}
	if v.Thumbnail != "http://localhost:8000/images/pizza.jpg" {
		t.Fatalf("缩略图 URL 不符合预期：%q", v.Thumbnail)
	}
	if v.VideoURL != "http://localhost:8000/videos/clip1.mp4" {
		t.Fatalf("视频 URL 不符合预期：%q", v.VideoURL)
	}
	want := time.Date(2025, 1, 2, 3, 4, 5, 123456000, time.UTC)
	if !v.ProcessedAt.Equal(want) {
		t.Fatalf("无时区时间应按 UTC 解析：%v", v.ProcessedAt)
	}
	if len(v.Recipes) != 1 {
		t.Fatalf("期望 1 个 recipe，实际 %d", len(v.Recipes))
	}
	rv := v.Recipes[0]
	if !reflect.DeepEqual(rv.Steps, []string{"mix", "knead", "bake"}) {
		t.Fatalf("步骤顺序不符合预期：%v", rv.Steps)
	}
	wantLinks := []domain.PurchaseLink{
		{Item: "Flour · Walmart", URL: "https://w/flour"},
		{Item: "Flour · Amazon", URL: "https://a/flour"},
	}
	if !reflect.DeepEqual(rv.PurchaseLinks, wantLinks) {
		t.Fatalf("购买链接不符合预期：%+v", rv.PurchaseLinks)
	}
	if rv.Ingredients[0].Quantity != "2 cups" || rv.Ingredients[1].Quantity != "" {
		t.Fatalf("用量拼接不符合预期：%+v", rv.Ingredients)
	}
	n := rv.Nutrition
	if n.Calories == nil || *n.Calories != 812.6 {
		t.Fatalf("calories 应原样透传：%v", n.Calories)
	}
	if n.Fat == nil || *n.Fat != 11 {
		t.Fatalf("fats 应映射到 fat：%v", n.Fat)
	}
	if n.Carbs != nil || n.Fiber != nil {
		t.Fatalf("缺失字段应为 nil：carbs=%v fiber=%v", n.Carbs, n.Fiber)
	}
	if n.Servings == nil || *n.Servings != 2 {
		t.Fatalf("servings 不符合预期：%v", n.Servings)
	}
}

func TestMap_MissingFieldsUseDefaults(t *testing.T) {
	v := Mapper{AssetBaseURL: "http://x"}.Map(domain.Recipe{ID: 1})
	if v.Title != UntitledRecipe {
		t.Fatalf("标题兜底不符合预期：%q", v.Title)
	}
	if v.Recipes[0].Description != NoDescription {
		t.Fatalf("描述兜底不符合预期：%q", v.Recipes[0].Description)
	}
	if v.Thumbnail != DefaultPlaceholder {
		t.Fatalf("无缩略图时应使用占位图：%q", v.Thumbnail)
	}
	if v.VideoURL != "" {
		t.Fatalf("无视频路径时不应生成 URL：%q", v.VideoURL)
	}
	if v.Recipes[0].Steps == nil || v.Recipes[0].PurchaseLinks == nil {
		t.Fatalf("空集合应为非 nil 切片（JSON 输出为 []）")
	}
	if v.Recipes[0].Nutrition != (domain.NutritionView{}) {
		t.Fatalf("无营养信息时应全部为 nil：%+v", v.Recipes[0].Nutrition)
	}
}

func TestMap_CustomPlaceholder(t *testing.T) {
	v := Mapper{PlaceholderURL: "/static/none.png"}.Map(domain.Recipe{ThumbnailPath: sp("")})
	if v.Thumbnail != "/static/none.png" {
		t.Fatalf("自定义占位图未生效：%q", v.Thumbnail)
	}
}

func TestMap_StepTiesKeepOrder(t *testing.T) {
	r := domain.Recipe{Steps: []domain.Step{
		{StepNumber: 2, Instruction: "b1"},
		{StepNumber: 1, Instruction: "a"},
		{StepNumber: 2, Instruction: "b2"},
	}}
	got := Mapper{}.Map(r).Recipes[0].Steps
	if !reflect.DeepEqual(got, []string{"a", "b1", "b2"}) {
		t.Fatalf("同编号步骤应保持原顺序：%v", got)
	}
	if r.Steps[0].Instruction != "b1" {
		t.Fatalf("Map 不应修改入参")
	}
}

func TestGallery_NewestFirst(t *testing.T) {
	rs := []domain.Recipe{
		{ID: 1, CreatedAt: domain.ParseTimestamp("2025-01-01T00:00:00")},
		{ID: 2, CreatedAt: domain.ParseTimestamp("garbage")},
		{ID: 3, CreatedAt: domain.ParseTimestamp("2025-03-01T00:00:00Z")},
		{ID: 4, CreatedAt: domain.ParseTimestamp("2025-02-01T00:00:00+00:00")},
		{ID: 5},
	}
	got := Mapper{}.Gallery(rs)
	ids := make([]string, 0, len(got))
	for _, v := range got {
		ids = append(ids, v.ID)
	}
	if !reflect.DeepEqual(ids, []string{"3", "4", "1", "2", "5"}) {
		t.Fatalf("画廊排序不符合预期：%v", ids)
	}
}

func TestUpsert_ReplacesAndPrepends(t *testing.T) {
	g := []domain.VideoView{{ID: "1", Title: "old"}, {ID: "2"}}
	out := Upsert(g, domain.VideoView{ID: "2", Title: "new"})
	if len(out) != 2 || out[0].ID != "2" || out[0].Title != "new" || out[1].ID != "1" {
		t.Fatalf("Upsert 结果不符合预期：%+v", out)
	}
	if _, ok := Find(out, "1"); !ok {
		t.Fatalf("Find 应找到 id=1")
	}
	if _, ok := Find(out, "9"); ok {
		t.Fatalf("Find 不应找到 id=9")
	}
}

func TestFormatters(t *testing.T) {
	if got := FormatCalories(fp(812.6)); got != "813" {
		t.Fatalf("FormatCalories=%q", got)
	}
	if got := FormatGrams(fp(20.26)); got != "20.3g" {
		t.Fatalf("FormatGrams=%q", got)
	}
	if got := FormatGrams(fp(11)); got != "11.0g" {
		t.Fatalf("FormatGrams=%q", got)
	}
	if FormatCalories(nil) != Missing || FormatGrams(nil) != Missing || FormatValue(nil) != Missing {
		t.Fatalf("nil 应展示为 %q", Missing)
	}
	if got := FormatValue(ip(4)); got != "4" {
		t.Fatalf("FormatValue=%q", got)
	}
	if got := FormatDate(time.Date(2025, 3, 9, 0, 0, 0, 0, time.UTC)); got != "Mar 9, 2025" {
		t.Fatalf("FormatDate=%q", got)
	}
	if FormatDate(time.Time{}) != "" {
		t.Fatalf("零值时间应返回空串")
	}
}
