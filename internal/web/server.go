package web

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/singleflight"

	"github.com/John-Robertt/recipebox/internal/api"
	"github.com/John-Robertt/recipebox/internal/infra/cache"
	"github.com/John-Robertt/recipebox/internal/view"
)

// Options 是 Server 的全部依赖；由 cmd 层根据 config.EffectiveConfig 组装。
type Options struct {
	API    *api.Client
	Media  *http.Client // 下载缩略图；为空时复用 API.HTTP
	Mapper view.Mapper
	Cache  cache.Store

	Models       []string
	DefaultModel string
	CORSOrigins  []string

	Logger *slog.Logger
}

type Server struct {
	api    *api.Client
	media  *http.Client
	mapper view.Mapper
	cache  cache.Store

	models       []string
	defaultModel string

	log    *slog.Logger
	pages  pages
	thumbs singleflight.Group
	engine *gin.Engine
}

func New(opts Options) (*Server, error) {
	if opts.API == nil {
		return nil, errors.New("api client 不能为空")
	}
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if opts.Media == nil {
		opts.Media = opts.API.HTTP
	}
	if len(opts.Models) == 0 && opts.DefaultModel != "" {
		opts.Models = []string{opts.DefaultModel}
	}

	p, err := loadPages()
	if err != nil {
		return nil, fmt.Errorf("load templates: %w", err)
	}

	s := &Server{
		api:          opts.API,
		media:        opts.Media,
		mapper:       opts.Mapper,
		cache:        opts.Cache,
		models:       opts.Models,
		defaultModel: opts.DefaultModel,
		log:          opts.Logger,
		pages:        p,
	}

	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(RequestID())
	engine.Use(RequestLogger(opts.Logger))
	if len(opts.CORSOrigins) > 0 {
		engine.Use(CORS(opts.CORSOrigins))
	}
	s.registerRoutes(engine)
	s.engine = engine

	return s, nil
}

func (s *Server) registerRoutes(r *gin.Engine) {
	r.GET("/", s.handleGallery)
	r.POST("/extract", s.handleExtract)

	recipes := r.Group("/recipes/:id")
	{
		recipes.GET("", s.handleDetail)
		recipes.POST("/delete", s.handleDelete)
		recipes.GET("/grocery", s.handleGrocery)
		recipes.GET("/grocery/:format", s.handleGroceryDownload)
		recipes.GET("/export/:format", s.handleExport)
	}

	r.GET("/thumbs/:id", s.handleThumb)
	r.GET("/gallery/export/:format", s.handleGalleryDownload)
	r.GET("/api/gallery", s.handleGalleryJSON)
	r.GET("/healthz", s.handleHealth)
}

// Handler 暴露 http.Handler（测试与嵌入使用）。
func (s *Server) Handler() http.Handler { return s.engine }

// Run 监听 addr，直到 ctx 取消后优雅退出。
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()
	s.log.Info("listening", slog.String("addr", addr))

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.log.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	}
}

// logger 返回带 request_id 的 logger。
func (s *Server) logger(c *gin.Context) *slog.Logger {
	return s.log.With(slog.String(requestIDKey, c.GetString(requestIDKey)))
}
