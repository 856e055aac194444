package web

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/John-Robertt/recipebox/internal/api"
	"github.com/John-Robertt/recipebox/internal/asset"
	"github.com/John-Robertt/recipebox/internal/domain"
	"github.com/John-Robertt/recipebox/internal/infra/cache"
	"github.com/John-Robertt/recipebox/internal/infra/imgx"
)

// thumb 是一次缩略图生成的结果：要么是 JPEG，要么是需要重定向到的地址。
type thumb struct {
	jpg      []byte
	redirect string
}

// handleThumb 返回 16:9 缩略图。
//
// 顺序：本地缓存 -> 后端原图裁切后写缓存 -> 裁切失败时重定向到原图。
// 同一 id 的并发请求只生成一次。
func (s *Server) handleThumb(c *gin.Context) {
	id, err := api.ParseID(c.Param("id"))
	if err != nil {
		c.String(http.StatusBadRequest, err.Error())
		return
	}

	if b, ok, err := s.cache.ReadThumb(id); err != nil {
		s.logger(c).Warn("read thumb cache failed", "recipe_id", id, "err", err)
	} else if ok {
		serveJPEG(c, b)
		return
	}

	v, err, _ := s.thumbs.Do(strconv.FormatInt(id, 10), func() (any, error) {
		return s.buildThumb(c, id)
	})
	if err != nil {
		if api.IsNotFound(err) {
			c.String(http.StatusNotFound, api.Message(err, "Recipe not found"))
			return
		}
		s.logger(c).Warn("thumb failed", "recipe_id", id, "err", err)
		c.Redirect(http.StatusFound, s.mapper.Placeholder())
		return
	}

	t := v.(thumb)
	if t.redirect != "" {
		c.Redirect(http.StatusFound, t.redirect)
		return
	}
	serveJPEG(c, t.jpg)
}

func (s *Server) buildThumb(c *gin.Context, id int64) (thumb, error) {
	ctx := context.WithoutCancel(c.Request.Context())
	r, err := s.api.GetRecipe(ctx, id)
	if err != nil {
		return thumb{}, err
	}
	raw := asset.URL(s.mapper.AssetBaseURL, domain.Str(r.ThumbnailPath))
	if raw == "" {
		return thumb{redirect: s.mapper.Placeholder()}, nil
	}

	src, err := s.api.Fetch(ctx, s.media, raw)
	if err != nil {
		s.logger(c).Warn("fetch thumbnail failed", "recipe_id", id, "url", raw, "err", err)
		return thumb{redirect: raw}, nil
	}
	jpg, err := imgx.Cover16x9JPEG(src)
	if err != nil {
		s.logger(c).Warn("crop thumbnail failed", "recipe_id", id, "url", raw, "err", err)
		return thumb{redirect: raw}, nil
	}

	if err := s.cache.WriteThumb(id, jpg); err != nil && !errors.Is(err, cache.ErrReadOnly) {
		s.logger(c).Warn("write thumb cache failed", "recipe_id", id, "err", err)
	}
	return thumb{jpg: jpg}, nil
}

func serveJPEG(c *gin.Context, b []byte) {
	c.Header("Cache-Control", "public, max-age=86400")
	c.Data(http.StatusOK, "image/jpeg", b)
}
