package domain

import (
	"fmt"
	"time"
)

const (
	HourKeyLayout = "2006010215"
	DayKeyLayout  = "20060102"
)

// TimeWindow 表示一个左闭右开的时间区间 [Start, End)
type TimeWindow struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

func (w TimeWindow) Validate() error {
	if !w.Start.Before(w.End) {
		return fmt.Errorf("时间区间的开始时间 %s 必须早于结束时间 %s", w.Start.Format(time.RFC3339), w.End.Format(time.RFC3339))
	}
	return nil
}

// Overlap 返回两个区间重叠部分的时长，不重叠时返回 0
func (w TimeWindow) Overlap(other TimeWindow) time.Duration {
	start := w.Start
	if other.Start.After(start) {
		start = other.Start
	}
	end := w.End
	if other.End.Before(end) {
		end = other.End
	}
	if !start.Before(end) {
		return 0
	}
	return end.Sub(start)
}

type RequiredWindow struct {
	ID     string `json:"id"`
	Title  string `json:"title"`
	Policy Policy `json:"policy"`
	TimeWindow
}

type OfferedWindow struct {
	ID     string `json:"id"`
	Person string `json:"person"`
	Role   Role   `json:"role"`
	Notes  string `json:"notes,omitempty"`
	TimeWindow
}

// HourSlot 是截断到整点之后的 unix 秒数，可以直接比较大小、作为 map 的键
type HourSlot int64

func NewHourSlot(t time.Time) HourSlot {
	return HourSlot(time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), 0, 0, 0, t.Location()).Unix())
}

func (h HourSlot) Time(loc *time.Location) time.Time {
	return time.Unix(int64(h), 0).In(loc)
}

func (h HourSlot) Next() HourSlot {
	return h + HourSlot(time.Hour/time.Second)
}

// Adjacent 当且仅当 next 恰好比 h 晚一个小时
func (h HourSlot) Adjacent(next HourSlot) bool {
	return h.Next() == next
}

func (h HourSlot) Key(loc *time.Location) string {
	return h.Time(loc).Format(HourKeyLayout)
}
