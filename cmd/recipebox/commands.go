package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/John-Robertt/recipebox/internal/api"
	"github.com/John-Robertt/recipebox/internal/export"
	"github.com/John-Robertt/recipebox/internal/infra/cache"
	"github.com/John-Robertt/recipebox/internal/infra/fsx"
	"github.com/John-Robertt/recipebox/internal/web"
)

// fileResult 是写文件类命令在非 TTY 下输出的 JSON。
type fileResult struct {
	Path   string `json:"path"`
	Bytes  int    `json:"bytes"`
	Cached bool   `json:"cached,omitempty"`
}

func (c *cli) serveCmd(ctx context.Context, a cliArgs) int {
	if len(a.Pos) != 0 {
		return c.usageError(a, "serve 不接受位置参数：%q", a.Pos)
	}
	ap, code := c.setup(a, slog.LevelInfo)
	if ap == nil {
		return code
	}

	// gin 默认 debug 模式会往 stdout 打印路由表。
	if _, ok := c.lookup(gin.EnvGinMode); !ok {
		gin.SetMode(gin.ReleaseMode)
	}
	srv, err := web.New(web.Options{
		API:          ap.api,
		Media:        ap.media,
		Mapper:       ap.mapper,
		Cache:        ap.cache,
		Models:       ap.eff.Models,
		DefaultModel: ap.eff.DefaultModel,
		CORSOrigins:  ap.eff.CORSOrigins,
		Logger:       ap.log,
	})
	if err != nil {
		fmt.Fprintf(c.errw, "初始化 Web 服务失败：%v\n", err)
		return 1
	}
	if c.errTTY {
		printEffective(c.errw, ap.eff)
	}
	if err := srv.Run(ctx, ap.eff.Listen); err != nil {
		fmt.Fprintf(c.errw, "Web 服务异常退出：%v\n", err)
		return 1
	}
	return 0
}

func (c *cli) listCmd(ctx context.Context, a cliArgs) int {
	if len(a.Pos) != 0 {
		return c.usageError(a, "list 不接受位置参数：%q", a.Pos)
	}
	ap, code := c.setup(a, slog.LevelWarn)
	if ap == nil {
		return code
	}
	rs, err := ap.api.ListRecipes(ctx)
	if err != nil {
		return c.fail("读取列表", err)
	}
	videos := ap.mapper.Gallery(rs)
	c.emit(videos, func() { printGallery(c.out, videos) })
	return 0
}

func (c *cli) showCmd(ctx context.Context, a cliArgs) int {
	id, ok := c.oneID(a)
	if !ok {
		return 2
	}
	ap, code := c.setup(a, slog.LevelWarn)
	if ap == nil {
		return code
	}
	r, err := ap.api.GetRecipe(ctx, id)
	if err != nil {
		return c.fail("读取菜谱", err)
	}
	v := ap.mapper.Map(r)
	c.emit(v, func() { printVideo(c.out, v) })
	return 0
}

func (c *cli) extractCmd(ctx context.Context, a cliArgs) int {
	if len(a.Pos) != 1 {
		return c.usageError(a, "extract 需要且只需要一个视频链接")
	}
	ap, code := c.setup(a, slog.LevelWarn)
	if ap == nil {
		return code
	}
	videoURL := strings.TrimSpace(a.Pos[0])
	model := ap.eff.DefaultModel

	var ui *waitUI
	if c.errTTY {
		ui = newWaitUI(c.errw)
		ui.Start(videoURL, model)
	}
	r, err := ap.api.Extract(ctx, videoURL, model)
	if ui != nil {
		ui.Done(err)
	}
	if err != nil {
		var ve *api.ValidationError
		if errors.As(err, &ve) {
			fmt.Fprintln(c.errw, ve.Error())
			return 1
		}
		return c.fail("提取", err)
	}
	ap.log.Info("extracted", "recipe_id", r.ID, "platform", r.Platform, "model", model)

	v := ap.mapper.Map(r)
	c.emit(v, func() { printVideo(c.out, v) })
	return 0
}

func (c *cli) deleteCmd(ctx context.Context, a cliArgs) int {
	id, ok := c.oneID(a)
	if !ok {
		return 2
	}
	ap, code := c.setup(a, slog.LevelWarn)
	if ap == nil {
		return code
	}
	if err := ap.api.DeleteRecipe(ctx, id); err != nil {
		return c.fail("删除", err)
	}
	if err := ap.cache.Evict(id, api.ExportFormats...); err != nil && !errors.Is(err, cache.ErrReadOnly) {
		ap.log.Warn("evict cache failed", "recipe_id", id, "err", err)
	}
	c.emit(map[string]any{"id": id, "deleted": true}, func() {
		fmt.Fprintf(c.out, "已删除 #%d\n", id)
	})
	return 0
}

func (c *cli) groceryCmd(ctx context.Context, a cliArgs) int {
	id, ok := c.oneID(a)
	if !ok {
		return 2
	}
	var f export.Format
	if a.OutputSet {
		var err error
		if f, err = export.FormatFromPath(a.Output); err != nil {
			return c.usageError(a, "%v", err)
		}
	}
	ap, code := c.setup(a, slog.LevelWarn)
	if ap == nil {
		return code
	}

	g, err := ap.api.GroceryList(ctx, id)
	if err != nil {
		return c.fail("读取购物清单", err)
	}
	if !a.OutputSet {
		c.emit(g, func() { printGrocery(c.out, g) })
		return 0
	}

	var buf bytes.Buffer
	if err := export.WriteGrocery(&buf, f, g); err != nil {
		return c.fail("生成购物清单", err)
	}
	return c.writeResult(a.Output, buf.Bytes(), false)
}

func (c *cli) exportCmd(ctx context.Context, a cliArgs) int {
	if len(a.Pos) != 2 {
		return c.usageError(a, "export 需要 <id> 与 <format>")
	}
	id, err := api.ParseID(a.Pos[0])
	if err != nil {
		return c.usageError(a, "%v", err)
	}
	format := strings.ToLower(strings.TrimSpace(a.Pos[1]))
	if !contains(api.ExportFormats, format) {
		return c.usageError(a, "不支持的导出格式：%q（可选：%s）", a.Pos[1], strings.Join(api.ExportFormats, ", "))
	}
	ap, code := c.setup(a, slog.LevelWarn)
	if ap == nil {
		return code
	}

	name := "recipe_" + strconv.FormatInt(id, 10) + "." + format
	var b []byte
	cached := false
	if !a.Refresh {
		data, ok, err := ap.cache.ReadExport(id, format)
		if err != nil {
			ap.log.Warn("read export cache failed", "recipe_id", id, "err", err)
		}
		b, cached = data, ok && err == nil
	}
	if !cached {
		if b, name, err = ap.api.DownloadExport(ctx, id, format); err != nil {
			return c.fail("导出", err)
		}
		if err := ap.cache.WriteExport(id, format, b); err != nil && !errors.Is(err, cache.ErrReadOnly) {
			ap.log.Warn("write export cache failed", "recipe_id", id, "err", err)
		}
	}

	out := name
	if a.OutputSet {
		out = a.Output
	}
	return c.writeResult(out, b, cached)
}

func (c *cli) galleryCmd(ctx context.Context, a cliArgs) int {
	if len(a.Pos) != 0 {
		return c.usageError(a, "gallery 不接受位置参数：%q", a.Pos)
	}
	if !a.OutputSet {
		return c.usageError(a, "gallery 需要 -o 指定输出文件")
	}
	f, err := export.FormatFromPath(a.Output)
	if err == nil && f == export.PDF {
		err = &export.UnsupportedError{What: "gallery", Format: string(f)}
	}
	if err != nil {
		return c.usageError(a, "%v", err)
	}
	ap, code := c.setup(a, slog.LevelWarn)
	if ap == nil {
		return code
	}

	rs, err := ap.api.ListRecipes(ctx)
	if err != nil {
		return c.fail("读取列表", err)
	}
	var buf bytes.Buffer
	if err := export.WriteGallery(&buf, f, ap.mapper.Gallery(rs)); err != nil {
		return c.fail("生成表格", err)
	}
	return c.writeResult(a.Output, buf.Bytes(), false)
}

// setup 组装依赖；失败时已把错误写到 stderr，返回 nil 与退出码。
func (c *cli) setup(a cliArgs, level slog.Level) (*app, int) {
	ap, err := c.newApp(a, level)
	if err != nil {
		fmt.Fprintf(c.errw, "加载配置失败：%v\n", err)
		return nil, 1
	}
	return ap, 0
}

func (c *cli) oneID(a cliArgs) (int64, bool) {
	if len(a.Pos) != 1 {
		c.usageError(a, "需要且只需要一个菜谱 id")
		return 0, false
	}
	id, err := api.ParseID(a.Pos[0])
	if err != nil {
		c.usageError(a, "%v", err)
		return 0, false
	}
	return id, true
}

// fail 输出面向用户的错误并返回退出码 1。
func (c *cli) fail(op string, err error) int {
	msg := api.Message(err, "")
	if msg == "" {
		msg = err.Error()
	}
	fmt.Fprintf(c.errw, "%s失败：%s\n", op, msg)
	return 1
}

// writeResult 把 b 写到 path（"-" 表示 stdout），随后输出结果摘要。
func (c *cli) writeResult(path string, b []byte, cached bool) int {
	if path == "-" {
		if _, err := c.out.Write(b); err != nil {
			fmt.Fprintf(c.errw, "写入 stdout 失败：%v\n", err)
			return 1
		}
		return 0
	}

	if !filepath.IsAbs(path) {
		path = filepath.Join(c.cwd, path)
	}
	path = filepath.Clean(path)
	if err := fsx.WriteFileAtomic(filepath.Dir(path), filepath.Base(path), b); err != nil {
		fmt.Fprintf(c.errw, "写入 %s 失败：%v\n", path, err)
		return 1
	}

	res := fileResult{Path: path, Bytes: len(b), Cached: cached}
	c.emit(res, func() {
		note := ""
		if cached {
			note = "（来自缓存）"
		}
		fmt.Fprintf(c.out, "已写入 %s (%d bytes)%s\n", path, len(b), note)
	})
	return 0
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
