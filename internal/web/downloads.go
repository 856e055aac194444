package web

import (
	"bytes"
	"mime"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/John-Robertt/recipebox/internal/api"
	"github.com/John-Robertt/recipebox/internal/export"
)

func (s *Server) handleGroceryDownload(c *gin.Context) {
	id, ok := s.recipeID(c)
	if !ok {
		return
	}
	f, err := export.ParseFormat(c.Param("format"))
	if err != nil {
		c.String(http.StatusBadRequest, err.Error())
		return
	}
	g, err := s.api.GroceryList(c.Request.Context(), id)
	if err != nil {
		s.backendError(c, err, api.MsgGroceryFailed)
		return
	}

	var buf bytes.Buffer
	if err := export.WriteGrocery(&buf, f, g); err != nil {
		s.logger(c).Error("write grocery failed", "recipe_id", id, "format", string(f), "err", err)
		c.String(http.StatusInternalServerError, "internal error")
		return
	}
	attachment(c, "grocery_"+strconv.FormatInt(id, 10)+"."+string(f), export.ContentType(f), buf.Bytes())
}

func (s *Server) handleGalleryDownload(c *gin.Context) {
	f, err := export.ParseFormat(c.Param("format"))
	if err != nil {
		c.String(http.StatusBadRequest, err.Error())
		return
	}
	if f == export.PDF {
		c.String(http.StatusBadRequest, (&export.UnsupportedError{What: "gallery", Format: string(f)}).Error())
		return
	}
	videos, err := s.loadGallery(c)
	if err != nil {
		c.String(http.StatusBadGateway, api.Message(err, api.MsgLoadFailed))
		return
	}

	var buf bytes.Buffer
	if err := export.WriteGallery(&buf, f, videos); err != nil {
		s.logger(c).Error("write gallery failed", "format", string(f), "err", err)
		c.String(http.StatusInternalServerError, "internal error")
		return
	}
	attachment(c, "gallery."+string(f), export.ContentType(f), buf.Bytes())
}

// handleExport 把浏览器重定向到后端导出地址，文件本身不经过本服务。
func (s *Server) handleExport(c *gin.Context) {
	id, ok := s.recipeID(c)
	if !ok {
		return
	}
	u, err := s.api.ExportURL(id, c.Param("format"))
	if err != nil {
		c.String(http.StatusBadRequest, err.Error())
		return
	}
	c.Redirect(http.StatusFound, u)
}

func (s *Server) handleGalleryJSON(c *gin.Context) {
	videos, err := s.loadGallery(c)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": api.Message(err, api.MsgLoadFailed)})
		return
	}
	c.JSON(http.StatusOK, videos)
}

func attachment(c *gin.Context, filename, contentType string, b []byte) {
	c.Header("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": filename}))
	c.Data(http.StatusOK, contentType, b)
}
