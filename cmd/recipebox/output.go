package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/John-Robertt/recipebox/internal/domain"
	"github.com/John-Robertt/recipebox/internal/export"
	"github.com/John-Robertt/recipebox/internal/view"
)

// emit 在 stdout 是终端时调用 human，否则输出且只输出一个 JSON 值。
func (c *cli) emit(v any, human func()) {
	if c.outTTY {
		human()
		return
	}
	enc := json.NewEncoder(c.out)
	_ = enc.Encode(v)
}

func printGallery(w io.Writer, videos []domain.VideoView) {
	if len(videos) == 0 {
		fmt.Fprintln(w, "No videos processed yet")
		return
	}
	for _, v := range videos {
		date := view.FormatDate(v.ProcessedAt)
		if date == "" {
			date = "-"
		}
		platform := v.Platform
		if platform == "" {
			platform = "-"
		}
		fmt.Fprintf(w, "#%-5s %-13s %-10s %s\n", v.ID, date, platform, v.Title)
	}
}

func printVideo(w io.Writer, v domain.VideoView) {
	fmt.Fprintf(w, "#%s %s\n", v.ID, v.Title)
	if v.URL != "" {
		fmt.Fprintf(w, "  %s", v.URL)
		if v.Platform != "" {
			fmt.Fprintf(w, " (%s)", v.Platform)
		}
		fmt.Fprintln(w)
	}
	if d := view.FormatDate(v.ProcessedAt); d != "" {
		fmt.Fprintf(w, "  processed: %s\n", d)
	}
	if v.VideoURL != "" {
		fmt.Fprintf(w, "  video: %s\n", v.VideoURL)
	}

	for _, r := range v.Recipes {
		fmt.Fprintf(w, "\n%s\n", r.Description)

		n := r.Nutrition
		fmt.Fprintf(w, "\n营养（每份）：calories=%s protein=%s carbs=%s fat=%s fiber=%s servings=%s\n",
			view.FormatCalories(n.Calories), view.FormatGrams(n.Protein), view.FormatGrams(n.Carbs),
			view.FormatGrams(n.Fat), view.FormatGrams(n.Fiber), view.FormatValue(n.Servings),
		)

		if len(r.Ingredients) > 0 {
			fmt.Fprintln(w, "\n食材：")
			for _, ing := range r.Ingredients {
				fmt.Fprintf(w, "  - %s\n", strings.TrimSpace(ing.Quantity+" "+ing.Name))
			}
		}
		if len(r.Steps) > 0 {
			fmt.Fprintln(w, "\n步骤：")
			for i, s := range r.Steps {
				fmt.Fprintf(w, "  %d. %s\n", i+1, s)
			}
		}
		if len(r.PurchaseLinks) > 0 {
			fmt.Fprintln(w, "\n购买：")
			for _, l := range r.PurchaseLinks {
				fmt.Fprintf(w, "  - %s: %s\n", l.Item, l.URL)
			}
		}
	}
}

func printGrocery(w io.Writer, g domain.GroceryList) {
	title := strings.TrimSpace(domain.Str(g.RecipeTitle))
	if title == "" {
		title = view.UntitledRecipe
	}
	fmt.Fprintf(w, "购物清单：%s（%d 项）\n", title, g.ShoppingList.TotalItems)
	for _, it := range g.ShoppingList.Items {
		line := it.Ingredient
		if it.Quantity != "" {
			line += " (" + it.Quantity + ")"
		}
		fmt.Fprintf(w, "  - %s\n", line)
		for _, s := range it.Stores {
			fmt.Fprintf(w, "      %s: %s\n", s.StoreName, s.SearchURL)
		}
	}
	for _, kv := range export.BulkLinks(g.ShoppingList) {
		fmt.Fprintf(w, "一键购买 %s: %s\n", kv[0], kv[1])
	}
}
