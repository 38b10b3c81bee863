package notification

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/sysu-ecnc-dev/shift-coverage/backend/internal/domain"
)

// Store 是只追加的通知记录存储
type Store interface {
	Get(ctx context.Context, key domain.CompoundKey) ([]domain.NotificationRecord, error)
	Put(ctx context.Context, key domain.CompoundKey, record *domain.NotificationRecord) error
}

type Notification struct {
	Category      domain.NotificationCategory
	ReportType    domain.ReportType
	ContextKey    string
	Recipients    []string
	ContentDigest string
}

type Engine struct {
	agency string
	store  Store
	runID  string
	now    func() time.Time
}

type Option func(*Engine)

func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		e.now = now
	}
}

func WithRunID(runID string) Option {
	return func(e *Engine) {
		e.runID = runID
	}
}

func NewEngine(agency string, store Store, opts ...Option) *Engine {
	e := &Engine{
		agency: agency,
		store:  store,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Engine) Key(n Notification) domain.CompoundKey {
	return domain.CompoundKey{
		Agency:     e.agency,
		Category:   n.Category,
		ReportType: n.ReportType,
		ContextKey: n.ContextKey,
	}
}

// ShouldSend 只判断是否需要发送通知，不写入任何记录。调用方在确认发送成功之后再调用 Record。
// 存储不可用时返回 false 和 ErrStoreUnavailable，调用方不应发送。
//
// 规则:
//  1. 没有任何记录时发送
//  2. 班次通知: 与时间最新的一条记录比较，收件人集合和内容摘要都相同才不发送
//  3. 错误通知: 键中已经包含日期，只要存在记录就不再发送
func (e *Engine) ShouldSend(ctx context.Context, n Notification) (bool, error) {
	key := e.Key(n)

	records, err := e.store.Get(ctx, key)
	if err != nil {
		return false, fmt.Errorf("%w: 获取 %s 的发送记录失败: %w", domain.ErrStoreUnavailable, key, err)
	}

	return needsSending(n, records)
}

// Record 追加一条发送记录，只应在通知已经成功发出之后调用
func (e *Engine) Record(ctx context.Context, n Notification) error {
	key := e.Key(n)

	now := e.now()
	record := &domain.NotificationRecord{
		Key:           key.String(),
		SentAt:        now,
		DateSent:      domain.ErrorContextKey(now),
		Recipients:    slices.Clone(n.Recipients),
		ContentDigest: n.ContentDigest,
		RunID:         e.runID,
	}
	if err := e.store.Put(ctx, key, record); err != nil {
		return fmt.Errorf("%w: 保存 %s 的发送记录失败: %w", domain.ErrStoreUnavailable, key, err)
	}

	return nil
}

func needsSending(n Notification, records []domain.NotificationRecord) (bool, error) {
	switch n.Category {
	case domain.NotificationShift:
		if len(records) == 0 {
			return true, nil
		}
		latest := Latest(records)
		return !SameRecipients(latest.Recipients, n.Recipients) || latest.ContentDigest != n.ContentDigest, nil
	case domain.NotificationError:
		return len(records) == 0, nil
	default:
		return false, fmt.Errorf("未知的通知类别 %q", n.Category)
	}
}

// Latest 返回时间戳最新的记录，records 不能为空
func Latest(records []domain.NotificationRecord) domain.NotificationRecord {
	latest := records[0]
	for _, record := range records[1:] {
		if record.SentAt.After(latest.SentAt) {
			latest = record
		}
	}
	return latest
}

// SameRecipients 比较收件人集合，与顺序无关
func SameRecipients(a, b []string) bool {
	x := slices.Clone(a)
	y := slices.Clone(b)
	slices.Sort(x)
	slices.Sort(y)
	return slices.Equal(slices.Compact(x), slices.Compact(y))
}
