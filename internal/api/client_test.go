package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
)

func newTestClient(t *testing.T, h http.HandlerFunc) (*Client, *int32) {
	t.Helper()
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		h(w, r)
	}))
	t.Cleanup(srv.Close)

	c, err := New(srv.URL+"/", srv.Client())
	if err != nil {
		t.Fatalf("New 失败：%v", err)
	}
	return c, &calls
}

func TestNew_RejectsBadBaseURL(t *testing.T) {
	for _, s := range []string{"", "localhost:8000", "ftp://x", "http://"} {
		if _, err := New(s, nil); err == nil {
			t.Fatalf("期望 %q 报错", s)
		}
	}
}

func TestListRecipes_Decodes(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet || r.URL.Path != "/api/recipes" {
			t.Errorf("请求不符合预期：%s %s", r.Method, r.URL.Path)
		}
		_, _ = io.WriteString(w, `[{"id":1,"title":"A","created_at":"2025-01-01T00:00:00"},{"id":2,"title":null}]`)
	})
	rs, err := c.ListRecipes(context.Background())
	if err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	if len(rs) != 2 || rs[0].ID != 1 || rs[1].Title != nil || !rs[0].CreatedAt.Valid() {
		t.Fatalf("解码结果不符合预期：%+v", rs)
	}
}

func TestListRecipes_NullIsEmpty(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `null`)
	})
	rs, err := c.ListRecipes(context.Background())
	if err != nil || rs == nil || len(rs) != 0 {
		t.Fatalf("null 应视为空列表：rs=%v err=%v", rs, err)
	}
}

func TestGetRecipe_NotFoundDetail(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = io.WriteString(w, `{"detail":"Recipe not found"}`)
	})
	_, err := c.GetRecipe(context.Background(), 42)

	var se *StatusError
	if !errors.As(err, &se) || se.StatusCode != 404 || se.Detail != "Recipe not found" {
		t.Fatalf("期望 404 StatusError，实际 %v", err)
	}
	if !IsNotFound(err) {
		t.Fatalf("IsNotFound 应为 true")
	}
	if got := Message(err, MsgLoadFailed); got != "Recipe not found" {
		t.Fatalf("应优先使用 detail：%q", got)
	}
}

func TestExtract_ValidationSkipsNetwork(t *testing.T) {
	c, calls := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("校验失败时不应发请求")
	})
	_, err := c.Extract(context.Background(), "   ", "")
	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("期望 ValidationError，实际 %v", err)
	}
	if Message(err, MsgExtractFailed) != "Please enter a video URL" {
		t.Fatalf("提示不符合预期：%q", Message(err, MsgExtractFailed))
	}

	c.StrictPlatforms = true
	if _, err := c.Extract(context.Background(), "https://youtu.be/x", ""); !errors.As(err, &ve) {
		t.Fatalf("strict 模式应拒绝 youtube：%v", err)
	}
	if atomic.LoadInt32(calls) != 0 {
		t.Fatalf("期望 0 次请求，实际 %d", *calls)
	}
}

func TestExtract_Success(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/recipes/extract" {
			t.Errorf("请求不符合预期：%s %s", r.Method, r.URL.Path)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("Content-Type=%q", ct)
		}
		var body map[string]string
		_ = json.NewDecoder(r.Body).Decode(&body)
		if body["video_url"] != "https://www.tiktok.com/@a/video/1" || body["model"] != "gemini-3-pro" {
			t.Errorf("请求体不符合预期：%v", body)
		}
		_, _ = io.WriteString(w, `{"success":true,"message":"ok","recipe":{"id":9,"title":"Soup"}}`)
	})
	r, err := c.Extract(context.Background(), " https://www.tiktok.com/@a/video/1 ", "gemini-3-pro")
	if err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	if r.ID != 9 {
		t.Fatalf("recipe 不符合预期：%+v", r)
	}
}

func TestExtract_AppFailure(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"success":false,"message":"No recipe found in video"}`)
	})
	_, err := c.Extract(context.Background(), "https://www.instagram.com/reel/x", "")
	var ae *AppError
	if !errors.As(err, &ae) {
		t.Fatalf("期望 AppError，实际 %v", err)
	}
	if got := Message(err, MsgExtractFailed); got != "No recipe found in video" {
		t.Fatalf("应使用响应 message：%q", got)
	}
}

func TestExtract_ServerErrorWithoutDetail(t *testing.T) {
	c, calls := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = io.WriteString(w, `<html>boom</html>`)
	})
	_, err := c.Extract(context.Background(), "https://www.instagram.com/reel/x", "")
	if got := Message(err, MsgExtractFailed); got != MsgExtractFailed {
		t.Fatalf("无 detail 时应使用兜底提示：%q", got)
	}
	if atomic.LoadInt32(calls) != 1 {
		t.Fatalf("失败后不应重试：calls=%d", *calls)
	}
}

func TestDeleteRecipe(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodDelete || r.URL.Path != "/api/recipes/5" {
			t.Errorf("请求不符合预期：%s %s", r.Method, r.URL.Path)
		}
		_, _ = io.WriteString(w, `{"success":true,"message":"Recipe deleted"}`)
	})
	if err := c.DeleteRecipe(context.Background(), 5); err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
}

func TestGroceryList_Decodes(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/recipes/3/grocery-list" {
			t.Errorf("路径不符合预期：%s", r.URL.Path)
		}
		_, _ = io.WriteString(w, `{"recipe_id":3,"recipe_title":"Tacos","shopping_list":{"total_items":1,
		  "items":[{"ingredient":"Beef","quantity":"1 lb","stores":[{"store_name":"Walmart","search_url":"https://w/beef"}]}],
		  "bulk_shopping_link":"https://amazon/bulk"}}`)
	})
	g, err := c.GroceryList(context.Background(), 3)
	if err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	if g.ShoppingList.TotalItems != 1 || g.ShoppingList.Items[0].Stores[0].StoreName != "Walmart" || g.ShoppingList.BulkShoppingLink == "" {
		t.Fatalf("解码结果不符合预期：%+v", g)
	}
}

func TestExportURLAndDownload(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/recipes/4/export/pdf" {
			w.Header().Set("Content-Disposition", `attachment; filename="recipe_4.pdf"`)
			_, _ = io.WriteString(w, "%PDF-1.4")
			return
		}
		_, _ = io.WriteString(w, `{"id":4}`)
	})
	u, err := c.ExportURL(4, "PDF")
	if err != nil || !strings.HasSuffix(u, "/api/recipes/4/export/pdf") {
		t.Fatalf("ExportURL 不符合预期：%q err=%v", u, err)
	}
	if _, err := c.ExportURL(4, "docx"); err == nil {
		t.Fatalf("不支持的格式应报错")
	}

	b, name, err := c.DownloadExport(context.Background(), 4, "pdf")
	if err != nil || name != "recipe_4.pdf" || string(b) != "%PDF-1.4" {
		t.Fatalf("pdf 下载不符合预期：name=%q err=%v", name, err)
	}
	b, name, err = c.DownloadExport(context.Background(), 4, "json")
	if err != nil || name != "recipe_4.json" || string(b) != `{"id":4}` {
		t.Fatalf("json 下载不符合预期：name=%q err=%v", name, err)
	}
}

func TestParseID(t *testing.T) {
	if id, err := ParseID(" 12 "); err != nil || id != 12 {
		t.Fatalf("ParseID 不符合预期：%d %v", id, err)
	}
	for _, s := range []string{"", "0", "-1", "abc"} {
		if _, err := ParseID(s); err == nil {
			t.Fatalf("期望 %q 报错", s)
		}
	}
}

func TestMessage_Fallbacks(t *testing.T) {
	if Message(nil, "x") != "" {
		t.Fatalf("nil 错误应返回空串")
	}
	if Message(errors.New("dial tcp: refused"), MsgLoadFailed) != MsgLoadFailed {
		t.Fatalf("传输错误应使用兜底提示")
	}
	if Message(&AppError{Op: "delete recipe"}, MsgDeleteFailed) != MsgDeleteFailed {
		t.Fatalf("空 message 应使用兜底提示")
	}
	if detailOf([]byte(`{"detail":[{"msg":"field required"}]}`)) != "" {
		t.Fatalf("数组形式的 detail 应忽略")
	}
}
