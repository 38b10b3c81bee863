package domain

import (
	"fmt"
	"time"
)

type NotificationCategory string

const (
	NotificationShift NotificationCategory = "shift_notification"
	NotificationError NotificationCategory = "error_notification"
)

type ReportType string

const (
	ReportTypeDuty       ReportType = "duty"
	ReportTypeSupervisor ReportType = "supervisor"
)

// CompoundKey 唯一确定一条通知的去重状态
type CompoundKey struct {
	Agency     string               `json:"agency"`
	Category   NotificationCategory `json:"category"`
	ReportType ReportType           `json:"reportType"`
	ContextKey string               `json:"contextKey"`
}

func (k CompoundKey) String() string {
	return fmt.Sprintf("%s_%s_%s_%s", k.Agency, k.Category, k.ReportType, k.ContextKey)
}

// NotificationRecord 只追加、不修改
type NotificationRecord struct {
	Key           string    `json:"key"`
	SentAt        time.Time `json:"sentAt"`
	DateSent      string    `json:"dateSent"`
	Recipients    []string  `json:"recipients"`
	ContentDigest string    `json:"contentDigest"`
	RunID         string    `json:"runID"`
}

// ShiftContextKey 班次通知使用班次开始的小时作为上下文，同一个班次多天重复检查时共享一个键
func ShiftContextKey(start time.Time) string {
	return start.Format(HourKeyLayout)
}

// ErrorContextKey 错误通知使用当天日期作为上下文，同一天内只发送一次
func ErrorContextKey(now time.Time) string {
	return now.Format(DayKeyLayout)
}
