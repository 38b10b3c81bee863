package main

import (
	"context"
	"flag"
	"log/slog"
	"os"

	"github.com/sysu-ecnc-dev/shift-coverage/backend/internal/config"
	"github.com/sysu-ecnc-dev/shift-coverage/backend/internal/repository"
	"github.com/sysu-ecnc-dev/shift-coverage/backend/internal/seed"
	"github.com/sysu-ecnc-dev/shift-coverage/backend/internal/utils"
)

func main() {
	var op int
	var n int
	var file string
	var emailDomain string

	flag.IntVar(&op, "op", 0, "要执行的操作 (1: 插入随机成员, 2: 从 CSV 导入成员)")
	flag.IntVar(&n, "n", 5, "要插入的记录数量")
	flag.StringVar(&file, "file", "./members.csv", "成员 CSV 文件路径，包含 name 和 email 两列")
	flag.StringVar(&emailDomain, "email-domain", "example.com", "随机成员使用的邮箱域名")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	// 读取配置文件
	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("无法读取配置文件", slog.String("error", err.Error()))
		os.Exit(1)
	}

	profile, err := config.LoadAgencyProfile(cfg.Check.ProfilePath)
	if err != nil {
		logger.Error("无法读取机构配置", slog.String("error", err.Error()))
		os.Exit(1)
	}

	dbpool, err := repository.OpenDB(cfg)
	if err != nil {
		logger.Error("无法连接到数据库", "error", err)
		return
	}
	defer dbpool.Close()

	repo := repository.NewRepository(cfg, dbpool)

	// 执行操作
	switch op {
	case 0:
		slog.Error("未指定操作")
	case 1:
		if n <= 0 {
			slog.Error("请输入合法的成员数量")
			return
		}

		cnt := 0
		for i := 0; i < n; i++ {
			member := utils.GenerateRandomMember(profile.Agency, emailDomain)
			if err := repo.UpsertMember(context.Background(), member); err != nil {
				slog.Error("无法插入成员", slog.String("error", err.Error()))
				continue
			}
			cnt++
		}

		slog.Info("插入成员成功", slog.Int("count", cnt))
	case 2:
		if _, err := seed.ImportMembers(context.Background(), repo, file, profile.Agency); err != nil {
			slog.Error("导入成员失败", slog.String("error", err.Error()))
		}
	default:
		slog.Error("指定的操作非法")
	}
}
