package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"

	"github.com/sysu-ecnc-dev/shift-coverage/backend/internal/calendar"
	"github.com/sysu-ecnc-dev/shift-coverage/backend/internal/checkrun"
	"github.com/sysu-ecnc-dev/shift-coverage/backend/internal/config"
	"github.com/sysu-ecnc-dev/shift-coverage/backend/internal/contact"
	"github.com/sysu-ecnc-dev/shift-coverage/backend/internal/mailer"
	"github.com/sysu-ecnc-dev/shift-coverage/backend/internal/repository"
	"github.com/sysu-ecnc-dev/shift-coverage/backend/internal/utils"
)

// 单次检查允许的最大天数
const maxSearchDays = 31

type RunCmd struct {
	Start string `help:"开始日期 (YYYY-MM-DD)，默认今天。"`
	End   string `help:"结束日期 (YYYY-MM-DD)，默认开始日期加 CHECK_DAYS_AHEAD 天。"`
	Send  bool   `help:"真正发送通知；不加时只检查并打印日志。"`
}

func (c *RunCmd) Run(app *Context) error {
	cfg := app.Config

	profile, err := config.LoadAgencyProfile(app.Profile)
	if err != nil {
		return err
	}

	loc, err := time.LoadLocation(cfg.Check.Timezone)
	if err != nil {
		return fmt.Errorf("无法加载时区 %s: %w", cfg.Check.Timezone, err)
	}

	start, end, err := c.searchRange(time.Now().In(loc), loc, cfg.Check.DaysAhead)
	if err != nil {
		return err
	}

	/**********************************************
	 * 连接数据库
	 **********************************************/
	dbpool, err := repository.OpenDB(cfg)
	if err != nil {
		return err
	}
	defer dbpool.Close()

	repo := repository.NewRepository(cfg, dbpool)

	/**********************************************
	 * 连接 redis
	 **********************************************/
	rdb := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Redis.Host, cfg.Redis.Port),
		Password: cfg.Redis.Password,
		DB:       0,
	})
	defer rdb.Close()

	contacts := contact.NewLookup(profile.Agency, repo, contact.NewRedisCache(rdb), time.Duration(cfg.Redis.ContactTTL)*time.Second)

	/**********************************************
	 * 只有需要发送通知时才连接 rabbitmq
	 **********************************************/
	var publisher mailer.Publisher
	if c.Send {
		conn, err := amqp.Dial(cfg.RabbitMQ.DSN)
		if err != nil {
			return fmt.Errorf("无法连接到 rabbitmq: %w", err)
		}
		defer conn.Close()

		ch, err := conn.Channel()
		if err != nil {
			return fmt.Errorf("无法建立通道: %w", err)
		}
		defer ch.Close()

		if err := mailer.DeclareQueue(ch, cfg.RabbitMQ.Queue); err != nil {
			return fmt.Errorf("无法声明队列: %w", err)
		}
		publisher = mailer.NewQueuePublisher(ch, cfg.RabbitMQ.Queue, time.Duration(cfg.RabbitMQ.PublishTimeout)*time.Second)
	}

	client := calendar.NewClient(cfg.Calendar.BaseURL, cfg.Calendar.APIKey, cfg.Calendar.CalendarKey, time.Duration(cfg.Calendar.RequestTimeout)*time.Second)
	feed := calendar.NewFeed(client, profile.Roles(), loc)

	runner, err := checkrun.NewRunner(profile, feed, contacts, repo.NotificationStore(), publisher, loc, checkrun.WithLive(c.Send))
	if err != nil {
		return err
	}

	slog.Info("开始检查", "agency", profile.Agency, "runID", runner.RunID(), "start", start, "end", end, "send", c.Send)

	result, err := runner.Run(context.Background(), start, end)
	if err != nil {
		return err
	}

	if result.Failures > 0 {
		return fmt.Errorf("有 %d 条通知未能处理", result.Failures)
	}
	return nil
}

func (c *RunCmd) searchRange(now time.Time, loc *time.Location, daysAhead int) (time.Time, time.Time, error) {
	start := now
	if c.Start != "" {
		t, err := time.ParseInLocation(time.DateOnly, c.Start, loc)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("无效的开始日期 %q: %w", c.Start, err)
		}
		start = t
	}

	end := start.AddDate(0, 0, daysAhead)
	if c.End != "" {
		t, err := time.ParseInLocation(time.DateOnly, c.End, loc)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("无效的结束日期 %q: %w", c.End, err)
		}
		end = t
	}

	if err := utils.ValidateSearchRange(start, end, maxSearchDays); err != nil {
		return time.Time{}, time.Time{}, err
	}

	return start, end, nil
}
