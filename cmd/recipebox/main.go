package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/John-Robertt/recipebox/internal/config"
)

func main() {
	cwd, err := os.Getwd()
	if err != nil {
		fmt.Fprintf(os.Stderr, "读取当前目录失败：%v\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	c := &cli{
		cwd:    cwd,
		lookup: os.LookupEnv,
		out:    os.Stdout,
		errw:   os.Stderr,
		outTTY: isTTY(os.Stdout),
		errTTY: isTTY(os.Stderr),
	}
	code := c.run(ctx, os.Args[1:])
	stop()
	os.Exit(code)
}

// cli 持有一次命令执行的全部外部环境，测试时整体替换。
type cli struct {
	cwd    string
	lookup config.LookupEnv

	out    io.Writer
	errw   io.Writer
	outTTY bool
	errTTY bool
}

type command struct {
	run   func(c *cli, ctx context.Context, a cliArgs) int
	allow []string
	usage string
}

var commands = map[string]command{
	"serve":   {run: (*cli).serveCmd, allow: []string{"--listen", "--model"}, usage: "serve [--listen addr] [--model name]"},
	"list":    {run: (*cli).listCmd, usage: "list"},
	"show":    {run: (*cli).showCmd, usage: "show <id>"},
	"extract": {run: (*cli).extractCmd, allow: []string{"--model"}, usage: "extract <video-url> [--model name]"},
	"delete":  {run: (*cli).deleteCmd, usage: "delete <id>"},
	"grocery": {run: (*cli).groceryCmd, allow: []string{"--output"}, usage: "grocery <id> [-o list.csv|list.xlsx|list.pdf]"},
	"export":  {run: (*cli).exportCmd, allow: []string{"--output", "--refresh"}, usage: "export <id> <json|pdf> [-o path|-] [--refresh]"},
	"gallery": {run: (*cli).galleryCmd, allow: []string{"--output"}, usage: "gallery -o gallery.csv|gallery.xlsx"},
}

var commandOrder = []string{"serve", "list", "show", "extract", "delete", "grocery", "export", "gallery"}

func (c *cli) run(ctx context.Context, args []string) int {
	if len(args) == 0 || isHelp(args[0]) {
		c.printUsage(c.out)
		return 0
	}

	cmd, ok := commands[args[0]]
	if !ok {
		fmt.Fprintf(c.errw, "未知命令：%q\n\n", args[0])
		c.printUsage(c.errw)
		return 2
	}
	for _, a := range args[1:] {
		if isHelp(a) {
			fmt.Fprintf(c.out, "用法：\n  recipebox %s\n\n%s", cmd.usage, commonFlagsHelp)
			return 0
		}
	}

	a, err := parseArgs(args[1:], cmd.allow...)
	a.usage = cmd.usage
	if err != nil {
		return c.usageError(a, "%v", err)
	}
	return cmd.run(c, ctx, a)
}

// usageError 表示命令行用法错误（退出码 2）。
func (c *cli) usageError(a cliArgs, format string, args ...any) int {
	fmt.Fprintf(c.errw, "参数错误：%s\n\n用法：\n  recipebox %s\n", fmt.Sprintf(format, args...), a.usage)
	return 2
}

func isHelp(s string) bool {
	return s == "-h" || s == "--help" || s == "help"
}

const commonFlagsHelp = `通用参数：
  --config <path>  配置文件（默认读取 ./recipebox.json，不存在则忽略）
  --api <url>      后端地址（覆盖 RECIPEBOX_API_BASE_URL 与配置文件）
  -h, --help       显示帮助
`

func (c *cli) printUsage(w io.Writer) {
	var b strings.Builder
	b.WriteString("用法：\n")
	for _, name := range commandOrder {
		fmt.Fprintf(&b, "  recipebox %s\n", commands[name].usage)
	}
	b.WriteString(`
命令：
  serve    启动 Web 界面
  list     列出已处理的视频（新的在前）
  show     查看单个菜谱
  extract  从视频链接提取菜谱
  delete   删除菜谱并清理本地缓存
  grocery  查看或导出购物清单
  export   下载后端导出的 JSON/PDF（带本地缓存）
  gallery  导出画廊为表格

stdout 不是终端时输出 JSON；提示与日志一律写 stderr。

`)
	b.WriteString(commonFlagsHelp)
	fmt.Fprint(w, b.String())
}

func isTTY(f *os.File) bool {
	fi, err := f.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}
