package main

import (
	"encoding/json"
	"fmt"
	"io"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/John-Robertt/recipebox/internal/config"
)

// waitUI 在交互终端里为一次长请求（extract）输出开始/结束行与 keepalive。
//
// 约束：
// - 只写 w（stderr），不污染 stdout 的 JSON 输出
// - 长时间没有输出时按 tickerInterval 检查，超过 keepaliveThreshold 打印一行
type waitUI struct {
	w io.Writer

	mu          sync.Mutex
	startedAt   time.Time
	lastPrinted time.Time

	keepaliveThreshold time.Duration
	tickerInterval     time.Duration

	stopCh chan struct{}
	done   chan struct{}
}

func newWaitUI(w io.Writer) *waitUI {
	return &waitUI{
		w:                  w,
		keepaliveThreshold: 10 * time.Second,
		tickerInterval:     2 * time.Second,
	}
}

func (p *waitUI) Start(videoURL, model string) {
	now := time.Now()

	p.mu.Lock()
	p.startedAt = now
	fmt.Fprintf(p.w, "[%s] 提取菜谱\n", now.Format("15:04:05"))
	fmt.Fprintf(p.w, "  url: %s\n", truncate(videoURL, 120))
	fmt.Fprintf(p.w, "  model: %s\n", model)
	fmt.Fprintln(p.w, "下载、转写与分析通常需要 1~3 分钟……")
	p.lastPrinted = now
	p.mu.Unlock()

	p.startTicker()
}

// Done 停止 keepalive 并输出结果行；可重复调用。
func (p *waitUI) Done(err error) {
	p.mu.Lock()
	stop := p.stopCh
	p.stopCh = nil
	p.mu.Unlock()
	if stop == nil {
		return
	}
	close(stop)
	<-p.done

	p.mu.Lock()
	defer p.mu.Unlock()
	elapsed := time.Since(p.startedAt)
	if err != nil {
		fmt.Fprintf(p.w, "失败 (%s)\n", formatShortDuration(elapsed))
		return
	}
	fmt.Fprintf(p.w, "完成 (%s)\n", formatShortDuration(elapsed))
}

func (p *waitUI) startTicker() {
	interval := p.tickerInterval
	if interval <= 0 {
		interval = 2 * time.Second
	}
	threshold := p.keepaliveThreshold
	if threshold <= 0 {
		threshold = 10 * time.Second
	}

	p.mu.Lock()
	stop := make(chan struct{})
	p.stopCh = stop
	p.done = make(chan struct{})
	done := p.done
	p.mu.Unlock()

	go func() {
		defer close(done)
		t := time.NewTicker(interval)
		defer t.Stop()

		for {
			select {
			case <-t.C:
				p.mu.Lock()
				if time.Since(p.lastPrinted) > threshold {
					fmt.Fprintf(p.w, "仍在处理… elapsed=%s\n", formatElapsed(time.Since(p.startedAt)))
					p.lastPrinted = time.Now()
				}
				p.mu.Unlock()
			case <-stop:
				return
			}
		}
	}()
}

// printEffective 打印生效配置（serve 启动时，仅交互终端）。
func printEffective(w io.Writer, eff config.EffectiveConfig) {
	fmt.Fprintf(w, "[%s] recipebox serve\n", time.Now().Format("15:04:05"))
	fmt.Fprintln(w, "配置（生效）:")
	if eff.Source != "" {
		fmt.Fprintf(w, "  config: %s\n", eff.Source)
	}
	fmt.Fprintf(w, "  listen: %s\n", eff.Listen)
	fmt.Fprintf(w, "  api: %s\n", truncate(eff.APIBaseURL, 120))
	if eff.AssetBaseURL != eff.APIBaseURL {
		fmt.Fprintf(w, "  assets: %s\n", truncate(eff.AssetBaseURL, 120))
	}
	fmt.Fprintf(w, "  models: %s (default %s)\n", formatStringListJSON(eff.Models), eff.DefaultModel)
	fmt.Fprintf(w, "  timeout: %s\n", eff.Timeout)
	fmt.Fprintf(w, "  proxy: %s\n", formatProxy(eff.ProxyURL))
	fmt.Fprintf(w, "  media_proxy: %s\n", onOff(eff.MediaProxy))
	fmt.Fprintf(w, "  strict_platforms: %s\n", onOff(eff.StrictPlatforms))
	cacheNote := ""
	if eff.CacheReadOnly {
		cacheNote = " (read-only)"
	}
	fmt.Fprintf(w, "  cache: %s%s\n", eff.CacheDir, cacheNote)
	if len(eff.CORSOrigins) > 0 {
		fmt.Fprintf(w, "  cors_origins: %s\n", formatStringListJSON(eff.CORSOrigins))
	}
	fmt.Fprintln(w)
}

func onOff(v bool) string {
	if v {
		return "on"
	}
	return "off"
}

// formatProxy 只展示 scheme/host，不回显凭据。
func formatProxy(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "off"
	}
	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return "on (" + truncate(raw, 120) + ")"
	}
	auth := "off"
	if u.User != nil {
		auth = "on"
	}
	return fmt.Sprintf("on (%s://%s, auth=%s)", u.Scheme, u.Host, auth)
}

func formatStringListJSON(xs []string) string {
	// nil 切片 json.Marshal 得到 "null"，这里统一成 "[]"
	if xs == nil {
		xs = []string{}
	}
	b, err := json.Marshal(xs)
	if err != nil {
		return "[]"
	}
	return string(b)
}

func truncate(s string, max int) string {
	s = strings.TrimSpace(s)
	if max <= 0 || len(s) <= max {
		return s
	}
	if max <= 3 {
		return s[:max]
	}
	return s[:max-3] + "..."
}

func formatShortDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	return fmt.Sprintf("%.1fs", d.Seconds())
}

func formatElapsed(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	sec := int(d.Seconds())
	return fmt.Sprintf("%02d:%02d:%02d", sec/3600, (sec%3600)/60, sec%60)
}
