package export

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/jung-kurt/gofpdf/v2"

	"github.com/John-Robertt/recipebox/internal/domain"
)

var groceryHeader = []string{"ingredient", "quantity", "store", "search_url"}

// WriteGrocery 把购物清单写成 csv/xlsx/pdf。
// 表格格式每个 (食材, 商店) 一行；没有商店链接的食材也保留一行。
func WriteGrocery(w io.Writer, f Format, g domain.GroceryList) error {
	if f == PDF {
		return writeGroceryPDF(w, g)
	}
	return writeTable(w, f, groceryHeader, groceryRows(g))
}

func groceryRows(g domain.GroceryList) [][]string {
	rows := make([][]string, 0, len(g.ShoppingList.Items))
	for _, it := range g.ShoppingList.Items {
		if len(it.Stores) == 0 {
			rows = append(rows, []string{it.Ingredient, it.Quantity, "", ""})
			continue
		}
		for _, s := range it.Stores {
			rows = append(rows, []string{it.Ingredient, it.Quantity, s.StoreName, s.SearchURL})
		}
	}
	return rows
}

// BulkLinks 合并新旧两种汇总购物链接，按商店名排序。
func BulkLinks(sl domain.ShoppingList) [][2]string {
	out := make([][2]string, 0, len(sl.BulkShoppingLinks)+1)
	seen := map[string]bool{}
	keys := make([]string, 0, len(sl.BulkShoppingLinks))
	for k := range sl.BulkShoppingLinks {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		u := strings.TrimSpace(sl.BulkShoppingLinks[k])
		if u == "" {
			continue
		}
		seen[u] = true
		out = append(out, [2]string{k, u})
	}
	if u := strings.TrimSpace(sl.BulkShoppingLink); u != "" && !seen[u] {
		out = append(out, [2]string{"amazon", u})
	}
	return out
}

func writeGroceryPDF(w io.Writer, g domain.GroceryList) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	// 内置字体只支持 cp1252；先转码，避免 "·"/"—" 等字符变成乱码。
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	title := strings.TrimSpace(domain.Str(g.RecipeTitle))
	if title == "" {
		title = "Recipe"
	}
	pdf.SetTitle(tr("Grocery list: "+title), false)
	pdf.SetAuthor("recipebox", false)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 18)
	pdf.Cell(0, 10, tr("Grocery list: "+title))
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "", 11)
	pdf.Cell(0, 6, fmt.Sprintf("%d items", g.ShoppingList.TotalItems))
	pdf.Ln(10)

	for _, it := range g.ShoppingList.Items {
		pdf.SetFont("Helvetica", "B", 12)
		line := it.Ingredient
		if q := strings.TrimSpace(it.Quantity); q != "" {
			line += " (" + q + ")"
		}
		pdf.MultiCell(0, 6, tr("• "+line), "", "L", false)

		pdf.SetFont("Helvetica", "", 10)
		for _, s := range it.Stores {
			pdf.SetTextColor(0, 0, 200)
			pdf.CellFormat(0, 5, tr("    "+s.StoreName), "", 1, "L", false, 0, s.SearchURL)
			pdf.SetTextColor(0, 0, 0)
		}
		pdf.Ln(2)
	}

	if links := BulkLinks(g.ShoppingList); len(links) > 0 {
		pdf.Ln(4)
		pdf.SetFont("Helvetica", "B", 12)
		pdf.Cell(0, 8, "Buy everything at once")
		pdf.Ln(8)
		pdf.SetFont("Helvetica", "", 10)
		for _, l := range links {
			pdf.SetTextColor(0, 0, 200)
			pdf.CellFormat(0, 5, tr(l[0]), "", 1, "L", false, 0, l[1])
			pdf.SetTextColor(0, 0, 0)
		}
	}

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("write pdf: %w", err)
	}
	return nil
}
