package main

import (
	"log/slog"
	"os"

	"github.com/alecthomas/kong"

	"github.com/sysu-ecnc-dev/shift-coverage/backend/internal/config"
)

var CLI struct {
	Profile string `help:"机构配置文件路径，默认使用 CHECK_PROFILE_PATH。" type:"path"`

	Run      RunCmd      `cmd:"" help:"检查班次覆盖情况并按需发送通知。" default:"1"`
	Validate ValidateCmd `cmd:"" help:"只校验机构配置文件。"`
}

type Context struct {
	Config  *config.Config
	Profile string
}

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	ctx := kong.Parse(&CLI,
		kong.Name("check"),
		kong.Description("值班覆盖检查"),
		kong.UsageOnError(),
	)

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("无法加载配置文件", "error", err)
		os.Exit(1)
	}

	profilePath := cfg.Check.ProfilePath
	if CLI.Profile != "" {
		profilePath = CLI.Profile
	}

	if err := ctx.Run(&Context{Config: cfg, Profile: profilePath}); err != nil {
		logger.Error("检查失败", "error", err)
		os.Exit(1)
	}
}
