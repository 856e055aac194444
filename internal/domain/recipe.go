package domain

// Recipe 是后端 GET /api/recipes[/{id}] 返回的记录。
//
// 约束：
// - 可选字段一律允许缺失/为 null；映射层不能因为缺字段而失败
// - 路径类字段（thumbnail_path / video_path）是后端原样给出的文件路径，必须经 asset.Resolve 才能拼 URL
type Recipe struct {
	ID            int64        `json:"id"`
	Title         *string      `json:"title"`
	VideoURL      string       `json:"video_url"`
	Platform      string       `json:"platform"`
	Description   *string      `json:"description"`
	ThumbnailPath *string      `json:"thumbnail_path"`
	VideoPath     *string      `json:"video_path"`
	CreatedAt     Timestamp    `json:"created_at"`
	Ingredients   []Ingredient `json:"ingredients"`
	Steps         []Step       `json:"steps"`
	Nutrition     *Nutrition   `json:"nutrition"`
}

type Ingredient struct {
	ID         int64       `json:"id"`
	Name       string      `json:"name"`
	Quantity   *string     `json:"quantity"`
	Unit       *string     `json:"unit"`
	StoreLinks []StoreLink `json:"store_links"`
}

type StoreLink struct {
	StoreName  string `json:"store_name"`
	SearchURL  string `json:"search_url"`
	Ingredient string `json:"ingredient,omitempty"`
}

type Step struct {
	ID          int64   `json:"id"`
	StepNumber  int     `json:"step_number"`
	Instruction string  `json:"instruction"`
	Duration    *string `json:"duration"`
}

// Nutrition 的数值原样透传；取整/保留小数是展示层的事。
type Nutrition struct {
	Calories *float64 `json:"calories"`
	Protein  *float64 `json:"protein"`
	Carbs    *float64 `json:"carbs"`
	Fats     *float64 `json:"fats"`
	Fiber    *float64 `json:"fiber"`
	Servings *int     `json:"servings"`
}

// ExtractRequest 对应 POST /api/recipes/extract 的请求体。
type ExtractRequest struct {
	VideoURL string `json:"video_url"`
	Model    string `json:"model,omitempty"`
}

// ExtractResponse 即使 HTTP 200 也可能 success=false（应用层失败）。
type ExtractResponse struct {
	Success bool    `json:"success"`
	Message string  `json:"message"`
	Recipe  *Recipe `json:"recipe"`
}

type DeleteResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// GroceryList 对应 GET /api/recipes/{id}/grocery-list。
type GroceryList struct {
	RecipeID     int64        `json:"recipe_id"`
	RecipeTitle  *string      `json:"recipe_title"`
	ShoppingList ShoppingList `json:"shopping_list"`
}

type ShoppingList struct {
	TotalItems int            `json:"total_items"`
	Items      []ShoppingItem `json:"items"`

	// 新旧后端各给一种：单个 Amazon 汇总链接，或按商店名索引的多个链接。
	BulkShoppingLink  string            `json:"bulk_shopping_link,omitempty"`
	BulkShoppingLinks map[string]string `json:"bulk_shopping_links,omitempty"`
}

type ShoppingItem struct {
	Ingredient string      `json:"ingredient"`
	Quantity   string      `json:"quantity"`
	Stores     []StoreLink `json:"stores"`
}

// Str 返回可空字符串的值（nil 视为空串）。
func Str(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}
