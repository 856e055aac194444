package main

import (
	"fmt"
	"strings"

	"github.com/John-Robertt/recipebox/internal/config"
)

type cliArgs struct {
	Config config.CLIArgs

	Output    string
	OutputSet bool
	Refresh   bool

	Pos []string

	usage string
}

// valueFlags 需要一个值；其余已知 flag 是布尔开关。
var valueFlags = map[string]bool{
	"--config": true,
	"--api":    true,
	"--listen": true,
	"--model":  true,
	"--output": true,
}

// parseArgs 解析通用参数（--config/--api）与 allow 中列出的命令参数。
// 支持 "--flag value" 与 "--flag=value" 两种写法；-o 是 --output 的简写。
func parseArgs(args []string, allow ...string) (cliArgs, error) {
	allowed := map[string]bool{"--config": true, "--api": true}
	for _, f := range allow {
		allowed[f] = true
	}

	var a cliArgs
	for i := 0; i < len(args); i++ {
		arg := args[i]
		if arg == "-" || !strings.HasPrefix(arg, "-") {
			a.Pos = append(a.Pos, arg)
			continue
		}
		if arg == "--" {
			a.Pos = append(a.Pos, args[i+1:]...)
			break
		}

		name, val, hasVal := strings.Cut(arg, "=")
		if name == "-o" {
			name = "--output"
		}
		if !allowed[name] {
			return cliArgs{}, fmt.Errorf("未知参数 %q", arg)
		}

		if valueFlags[name] {
			if !hasVal {
				if i+1 >= len(args) {
					return cliArgs{}, fmt.Errorf("%s 需要一个值", name)
				}
				i++
				val = args[i]
			}
			if strings.TrimSpace(val) == "" {
				return cliArgs{}, fmt.Errorf("%s 不能为空", name)
			}
		} else if hasVal {
			switch val {
			case "true", "false":
			default:
				return cliArgs{}, fmt.Errorf("%s 只能是 true 或 false，实际是 %q", name, val)
			}
		}

		switch name {
		case "--config":
			a.Config.ConfigPath = val
		case "--api":
			a.Config.APIBaseURL, a.Config.APIBaseURLSet = val, true
		case "--listen":
			a.Config.Listen, a.Config.ListenSet = val, true
		case "--model":
			a.Config.Model, a.Config.ModelSet = val, true
		case "--output":
			a.Output, a.OutputSet = val, true
		case "--refresh":
			a.Refresh = !hasVal || val == "true"
		}
	}
	return a, nil
}
