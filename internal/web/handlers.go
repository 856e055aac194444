package web

import (
	"bytes"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/John-Robertt/recipebox/internal/api"
	"github.com/John-Robertt/recipebox/internal/domain"
	"github.com/John-Robertt/recipebox/internal/export"
	"github.com/John-Robertt/recipebox/internal/platform"
	"github.com/John-Robertt/recipebox/internal/view"
)

type card struct {
	ID          string
	Title       string
	Thumb       string
	RecipeCount int
	ProcessedAt time.Time
}

type galleryPage struct {
	Title    string
	Error    string
	VideoURL string
	Model    string
	Models   []string
	Cards    []card
}

type detailPage struct {
	Title string
	Video domain.VideoView
}

type groceryPage struct {
	Title string
	ID    int64
	List  domain.GroceryList
	Bulk  [][2]string
}

type errorPage struct {
	Title string
	Error string
}

func (s *Server) handleGallery(c *gin.Context) {
	videos, err := s.loadGallery(c)
	page := s.newGalleryPage(videos)
	if err != nil {
		page.Error = api.Message(err, api.MsgLoadFailed)
	}
	s.render(c, http.StatusOK, "gallery", page)
}

func (s *Server) handleExtract(c *gin.Context) {
	videoURL := strings.TrimSpace(c.PostForm("video_url"))
	model := strings.TrimSpace(c.PostForm("model"))
	if model == "" {
		model = s.defaultModel
	}

	rerender := func(status int, msg string) {
		videos, _ := s.loadGallery(c)
		page := s.newGalleryPage(videos)
		page.Error = msg
		page.VideoURL = videoURL
		page.Model = model
		s.render(c, status, "gallery", page)
	}

	if !s.knownModel(model) {
		rerender(http.StatusBadRequest, "Please select a valid model")
		return
	}

	r, err := s.api.Extract(c.Request.Context(), videoURL, model)
	if err != nil {
		var ve *platform.ValidationError
		if errors.As(err, &ve) {
			rerender(http.StatusBadRequest, ve.Error())
			return
		}
		s.logger(c).Warn("extract failed", "video_url", videoURL, "model", model, "err", err)
		rerender(http.StatusBadGateway, api.Message(err, api.MsgExtractFailed))
		return
	}

	s.logger(c).Info("extracted", "recipe_id", r.ID, "platform", r.Platform)
	c.Redirect(http.StatusSeeOther, "/recipes/"+strconv.FormatInt(r.ID, 10))
}

func (s *Server) handleDetail(c *gin.Context) {
	id, ok := s.recipeID(c)
	if !ok {
		return
	}
	r, err := s.api.GetRecipe(c.Request.Context(), id)
	if err != nil {
		s.backendError(c, err, api.MsgLoadFailed)
		return
	}
	v := s.mapper.Map(r)
	s.render(c, http.StatusOK, "detail", detailPage{Title: v.Title, Video: v})
}

func (s *Server) handleDelete(c *gin.Context) {
	id, ok := s.recipeID(c)
	if !ok {
		return
	}
	if err := s.api.DeleteRecipe(c.Request.Context(), id); err != nil {
		s.backendError(c, err, api.MsgDeleteFailed)
		return
	}
	if err := s.cache.Evict(id, api.ExportFormats...); err != nil {
		s.logger(c).Warn("evict cache failed", "recipe_id", id, "err", err)
	}
	s.logger(c).Info("deleted", "recipe_id", id)
	c.Redirect(http.StatusSeeOther, "/")
}

func (s *Server) handleGrocery(c *gin.Context) {
	id, ok := s.recipeID(c)
	if !ok {
		return
	}
	g, err := s.api.GroceryList(c.Request.Context(), id)
	if err != nil {
		s.backendError(c, err, api.MsgGroceryFailed)
		return
	}
	title := strings.TrimSpace(domain.Str(g.RecipeTitle))
	if title == "" {
		title = view.UntitledRecipe
	}
	s.render(c, http.StatusOK, "grocery", groceryPage{
		Title: title,
		ID:    id,
		List:  g,
		Bulk:  export.BulkLinks(g.ShoppingList),
	})
}

func (s *Server) handleHealth(c *gin.Context) {
	if c.Query("deep") == "" {
		c.JSON(http.StatusOK, gin.H{"ok": true})
		return
	}
	if err := s.api.Health(c.Request.Context()); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"ok": false, "backend": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "backend": "ok"})
}

func (s *Server) loadGallery(c *gin.Context) ([]domain.VideoView, error) {
	rs, err := s.api.ListRecipes(c.Request.Context())
	if err != nil {
		s.logger(c).Warn("list recipes failed", "err", err)
		return nil, err
	}
	return s.mapper.Gallery(rs), nil
}

func (s *Server) newGalleryPage(videos []domain.VideoView) galleryPage {
	cards := make([]card, 0, len(videos))
	for _, v := range videos {
		thumb := v.Thumbnail
		if thumb != s.mapper.Placeholder() {
			thumb = "/thumbs/" + v.ID
		}
		cards = append(cards, card{
			ID:          v.ID,
			Title:       v.Title,
			Thumb:       thumb,
			RecipeCount: len(v.Recipes),
			ProcessedAt: v.ProcessedAt,
		})
	}
	return galleryPage{
		Model:  s.defaultModel,
		Models: s.models,
		Cards:  cards,
	}
}

func (s *Server) knownModel(m string) bool {
	for _, v := range s.models {
		if v == m {
			return true
		}
	}
	return false
}

// recipeID 解析 :id；非法时直接写 400 并返回 false。
func (s *Server) recipeID(c *gin.Context) (int64, bool) {
	id, err := api.ParseID(c.Param("id"))
	if err != nil {
		s.render(c, http.StatusBadRequest, "error", errorPage{Title: "Invalid recipe", Error: err.Error()})
		return 0, false
	}
	return id, true
}

// backendError 把后端错误映射为错误页：404 原样透出，其余一律 502。
func (s *Server) backendError(c *gin.Context, err error, fallback string) {
	status := http.StatusBadGateway
	title := "Something went wrong"
	if api.IsNotFound(err) {
		status = http.StatusNotFound
		title = "Recipe not found"
	} else {
		s.logger(c).Warn("backend call failed", "route", c.FullPath(), "err", err)
	}
	s.render(c, status, "error", errorPage{Title: title, Error: api.Message(err, fallback)})
}

// render 先渲染到缓冲区，模板出错时不会写出半个页面。
func (s *Server) render(c *gin.Context, status int, name string, data any) {
	var buf bytes.Buffer
	if err := s.pages.render(&buf, name, data); err != nil {
		s.logger(c).Error("render failed", "page", name, "err", err)
		c.String(http.StatusInternalServerError, "internal error")
		return
	}
	c.Data(status, "text/html; charset=utf-8", buf.Bytes())
}
