package main

import (
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/John-Robertt/recipebox/internal/api"
	"github.com/John-Robertt/recipebox/internal/config"
	"github.com/John-Robertt/recipebox/internal/infra/cache"
	"github.com/John-Robertt/recipebox/internal/infra/httpx"
	"github.com/John-Robertt/recipebox/internal/view"
)

// EnvLogLevel 取值 debug|info|warn|error。
const EnvLogLevel = "RECIPEBOX_LOG_LEVEL"

// app 是按生效配置组装好的依赖集合，各命令共用。
type app struct {
	eff    config.EffectiveConfig
	api    *api.Client
	media  *http.Client
	mapper view.Mapper
	cache  cache.Store
	log    *slog.Logger
}

func (c *cli) newApp(a cliArgs, defaultLevel slog.Level) (*app, error) {
	lookup, err := config.WithDotEnv(c.cwd, c.lookup)
	if err != nil {
		return nil, err
	}
	eff, err := config.LoadEffective(c.cwd, lookup, a.Config)
	if err != nil {
		return nil, err
	}

	hc, err := httpx.NewAPIClient(eff.ProxyURL, eff.Timeout)
	if err != nil {
		return nil, err
	}
	media, err := httpx.NewMediaClient(eff.ProxyURL, eff.MediaProxy)
	if err != nil {
		return nil, err
	}
	client, err := api.New(eff.APIBaseURL, hc)
	if err != nil {
		return nil, err
	}
	client.StrictPlatforms = eff.StrictPlatforms

	return &app{
		eff:    eff,
		api:    client,
		media:  media,
		mapper: view.Mapper{AssetBaseURL: eff.AssetBaseURL, PlaceholderURL: eff.PlaceholderURL},
		cache:  cache.New(eff.CacheDir, eff.CacheReadOnly),
		log:    newLogger(c.errw, c.errTTY, logLevel(lookup, defaultLevel)),
	}, nil
}

// newLogger 交互终端用 text，其余（重定向/容器）用 JSON，统一写 w（stderr）。
func newLogger(w io.Writer, tty bool, level slog.Level) *slog.Logger {
	opts := &slog.HandlerOptions{Level: level}
	if tty {
		return slog.New(slog.NewTextHandler(w, opts))
	}
	return slog.New(slog.NewJSONHandler(w, opts))
}

func logLevel(env config.LookupEnv, def slog.Level) slog.Level {
	v, ok := env(EnvLogLevel)
	if !ok || strings.TrimSpace(v) == "" {
		return def
	}
	var l slog.Level
	if err := l.UnmarshalText([]byte(strings.TrimSpace(v))); err != nil {
		return def
	}
	return l
}
