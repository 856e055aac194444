package view

import (
	"sort"
	"strconv"
	"strings"

	"github.com/John-Robertt/recipebox/internal/asset"
	"github.com/John-Robertt/recipebox/internal/domain"
)

const (
	DefaultPlaceholder = "https://via.placeholder.com/640x360?text=No+Image"
	UntitledRecipe     = "Untitled Recipe"
	NoDescription      = "No description available."
)

// Mapper 把后端 Recipe 转成前端直接渲染的 VideoView。
//
// 约束：
// - 纯函数：不做 I/O，不修改入参
// - 任何缺失字段都有默认值，Map 不会失败
type Mapper struct {
	// AssetBaseURL 是后端静态资源服务地址（末尾 '/' 可有可无）。
	AssetBaseURL string
	// PlaceholderURL 为空时使用 DefaultPlaceholder。
	PlaceholderURL string
}

func (m Mapper) Map(r domain.Recipe) domain.VideoView {
	title := strings.TrimSpace(domain.Str(r.Title))
	if title == "" {
		title = UntitledRecipe
	}
	desc := strings.TrimSpace(domain.Str(r.Description))
	if desc == "" {
		desc = NoDescription
	}

	thumb := asset.URL(m.AssetBaseURL, domain.Str(r.ThumbnailPath))
	if thumb == "" {
		thumb = m.Placeholder()
	}

	rv := domain.RecipeView{
		Name:          title,
		Description:   desc,
		Steps:         orderedSteps(r.Steps),
		Ingredients:   ingredients(r.Ingredients),
		PurchaseLinks: purchaseLinks(r.Ingredients),
		Nutrition:     nutrition(r.Nutrition),
	}

	return domain.VideoView{
		ID:          strconv.FormatInt(r.ID, 10),
		URL:         r.VideoURL,
		Platform:    r.Platform,
		Thumbnail:   thumb,
		VideoURL:    asset.URL(m.AssetBaseURL, domain.Str(r.VideoPath)),
		Title:       title,
		Recipes:     []domain.RecipeView{rv},
		ProcessedAt: r.CreatedAt.Time,
	}
}

// Placeholder 返回实际使用的占位图地址。
func (m Mapper) Placeholder() string {
	if p := strings.TrimSpace(m.PlaceholderURL); p != "" {
		return p
	}
	return DefaultPlaceholder
}

// orderedSteps 按 step_number 升序；编号相同保持后端给出的顺序。
func orderedSteps(in []domain.Step) []string {
	steps := make([]domain.Step, len(in))
	copy(steps, in)
	sort.SliceStable(steps, func(i, j int) bool { return steps[i].StepNumber < steps[j].StepNumber })

	out := make([]string, 0, len(steps))
	for _, s := range steps {
		out = append(out, s.Instruction)
	}
	return out
}

func ingredients(in []domain.Ingredient) []domain.IngredientView {
	out := make([]domain.IngredientView, 0, len(in))
	for _, ing := range in {
		q := strings.TrimSpace(domain.Str(ing.Quantity))
		if u := strings.TrimSpace(domain.Str(ing.Unit)); u != "" {
			q = strings.TrimSpace(q + " " + u)
		}
		out = append(out, domain.IngredientView{Name: ing.Name, Quantity: q})
	}
	return out
}

// purchaseLinks 展平为 ingredient × store，顺序与后端一致。
func purchaseLinks(in []domain.Ingredient) []domain.PurchaseLink {
	out := make([]domain.PurchaseLink, 0, len(in))
	for _, ing := range in {
		for _, sl := range ing.StoreLinks {
			out = append(out, domain.PurchaseLink{
				Item: ing.Name + " · " + sl.StoreName,
				URL:  sl.SearchURL,
			})
		}
	}
	return out
}

func nutrition(n *domain.Nutrition) domain.NutritionView {
	if n == nil {
		return domain.NutritionView{}
	}
	return domain.NutritionView{
		Calories: n.Calories,
		Protein:  n.Protein,
		Carbs:    n.Carbs,
		Fat:      n.Fats,
		Fiber:    n.Fiber,
		Servings: n.Servings,
	}
}
