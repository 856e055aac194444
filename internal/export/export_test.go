package export

import (
	"bytes"
	"encoding/csv"
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/John-Robertt/recipebox/internal/domain"
)

func fp(f float64) *float64 { return &f }
func sp(s string) *string   { return &s }

func sampleGallery() []domain.VideoView {
	return []domain.VideoView{
		{
			ID: "2", Title: "Tacos", Platform: "tiktok", URL: "https://www.tiktok.com/@a/video/2",
			Thumbnail:   "http://x/images/t.jpg",
			ProcessedAt: time.Date(2025, 2, 1, 10, 0, 0, 0, time.UTC),
			Recipes: []domain.RecipeView{{
				Name:        "Tacos",
				Steps:       []string{"a", "b"},
				Ingredients: []domain.IngredientView{{Name: "Beef"}, {Name: "Tortilla"}},
				Nutrition:   domain.NutritionView{Calories: fp(512.4), Protein: fp(30)},
			}},
		},
		{ID: "1", Title: "Untitled Recipe"},
	}
}

func sampleGrocery() domain.GroceryList {
	return domain.GroceryList{
		RecipeID:    3,
		RecipeTitle: sp("Crème brûlée"),
		ShoppingList: domain.ShoppingList{
			TotalItems: 2,
			Items: []domain.ShoppingItem{
				{Ingredient: "Cream", Quantity: "2 cups", Stores: []domain.StoreLink{
					{StoreName: "Walmart", SearchURL: "https://w/cream"},
					{StoreName: "Instacart", SearchURL: "https://i/cream"},
				}},
				{Ingredient: "Sugar", Quantity: "½ cup"},
			},
			BulkShoppingLink:  "https://amazon/bulk",
			BulkShoppingLinks: map[string]string{"walmart": "https://w/bulk", "amazon": "https://amazon/bulk"},
		},
	}
}

func TestFormatFromPath(t *testing.T) {
	cases := map[string]Format{"out/list.CSV": CSV, "a.xlsx": XLSX, "/tmp/g.pdf": PDF}
	for in, want := range cases {
		got, err := FormatFromPath(in)
		if err != nil || got != want {
			t.Fatalf("FormatFromPath(%q)=%q err=%v，期望 %q", in, got, err, want)
		}
	}
	if _, err := FormatFromPath("noext"); err == nil {
		t.Fatalf("无扩展名应报错")
	}
	var ue *UnsupportedError
	if _, err := FormatFromPath("a.docx"); !errors.As(err, &ue) {
		t.Fatalf("不支持的扩展名应返回 UnsupportedError，实际 %v", err)
	}
}

func TestWriteGallery_CSV(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteGallery(&buf, CSV, sampleGallery()); err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	recs, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("csv 解析失败：%v", err)
	}
	if len(recs) != 3 || !reflect.DeepEqual(recs[0], galleryHeader) {
		t.Fatalf("csv 结构不符合预期：%v", recs)
	}
	row := recs[1]
	if row[0] != "2" || row[4] != "2025-02-01T10:00:00Z" || row[5] != "512" || row[6] != "30.0g" || row[7] != "—" {
		t.Fatalf("csv 行内容不符合预期：%v", row)
	}
	if row[11] != "Beef; Tortilla" || row[12] != "2" {
		t.Fatalf("食材/步骤列不符合预期：%v", row)
	}
	if recs[2][4] != "" || recs[2][12] != "0" {
		t.Fatalf("缺失字段应为空：%v", recs[2])
	}
}

func TestWriteGallery_XLSX(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteGallery(&buf, XLSX, sampleGallery()); err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	f, err := excelize.OpenReader(&buf)
	if err != nil {
		t.Fatalf("xlsx 打开失败：%v", err)
	}
	defer f.Close()
	rows, err := f.GetRows(sheet)
	if err != nil {
		t.Fatalf("GetRows 失败：%v", err)
	}
	if len(rows) != 3 || rows[0][0] != "id" || rows[1][1] != "Tacos" {
		t.Fatalf("xlsx 内容不符合预期：%v", rows)
	}
}

func TestWriteGallery_PDFUnsupported(t *testing.T) {
	var ue *UnsupportedError
	if err := WriteGallery(&bytes.Buffer{}, PDF, nil); !errors.As(err, &ue) {
		t.Fatalf("画廊不支持 pdf，实际 err=%v", err)
	}
}

func TestWriteGrocery_CSV(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteGrocery(&buf, CSV, sampleGrocery()); err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	recs, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("csv 解析失败：%v", err)
	}
	want := [][]string{
		groceryHeader,
		{"Cream", "2 cups", "Walmart", "https://w/cream"},
		{"Cream", "2 cups", "Instacart", "https://i/cream"},
		{"Sugar", "½ cup", "", ""},
	}
	if !reflect.DeepEqual(recs, want) {
		t.Fatalf("购物清单 csv 不符合预期：%v", recs)
	}
}

func TestWriteGrocery_PDF(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteGrocery(&buf, PDF, sampleGrocery()); err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	if !bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")) {
		t.Fatalf("输出不是 PDF：%q", buf.Bytes()[:min(16, buf.Len())])
	}
}

func TestBulkLinks_Dedup(t *testing.T) {
	got := BulkLinks(sampleGrocery().ShoppingList)
	want := [][2]string{{"amazon", "https://amazon/bulk"}, {"walmart", "https://w/bulk"}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("汇总链接不符合预期：%v", got)
	}

	only := BulkLinks(domain.ShoppingList{BulkShoppingLink: "https://amazon/x"})
	if len(only) != 1 || only[0][0] != "amazon" {
		t.Fatalf("旧字段应映射为 amazon：%v", only)
	}
}
