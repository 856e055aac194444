package domain

import "time"

// VideoView 是画廊卡片与详情页直接消费的结构（一个已处理视频）。
type VideoView struct {
	ID          string       `json:"id"`
	URL         string       `json:"url"`
	Platform    string       `json:"platform"`
	Thumbnail   string       `json:"thumbnail"`
	VideoURL    string       `json:"video_url,omitempty"`
	Title       string       `json:"title"`
	Recipes     []RecipeView `json:"recipes"`
	ProcessedAt time.Time    `json:"processed_at"`
}

type RecipeView struct {
	Name          string           `json:"name"`
	Description   string           `json:"description"`
	Steps         []string         `json:"steps"`
	Ingredients   []IngredientView `json:"ingredients"`
	PurchaseLinks []PurchaseLink   `json:"purchase_links"`
	Nutrition     NutritionView    `json:"nutrition"`
}

type IngredientView struct {
	Name     string `json:"name"`
	Quantity string `json:"quantity,omitempty"`
}

type PurchaseLink struct {
	Item string `json:"item"`
	URL  string `json:"url"`
}

// NutritionView 的字段缺失时为 nil（展示为 "—"），不做单位换算。
type NutritionView struct {
	Calories *float64 `json:"calories"`
	Protein  *float64 `json:"protein"`
	Carbs    *float64 `json:"carbs"`
	Fat      *float64 `json:"fat"`
	Fiber    *float64 `json:"fiber"`
	Servings *int     `json:"servings"`
}
