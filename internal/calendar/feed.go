package calendar

import (
	"context"
	"fmt"
	"time"

	"github.com/sysu-ecnc-dev/shift-coverage/backend/internal/domain"
)

// Feed 把日历事件转换为 RequiredWindow / OfferedWindow，角色在这里统一校验
type Feed struct {
	source EventSource
	roles  map[string]domain.Role // 日历中的 coverage level -> 角色
	loc    *time.Location
}

func NewFeed(source EventSource, roles map[string]domain.Role, loc *time.Location) *Feed {
	return &Feed{
		source: source,
		roles:  roles,
		loc:    loc,
	}
}

// RequiredWindows 返回的第二个值是无法解析的记录，调用方需要统计并上报
func (f *Feed) RequiredWindows(ctx context.Context, subcalendar string, policy domain.Policy, start time.Time, end time.Time) ([]domain.RequiredWindow, []error, error) {
	events, err := f.source.Events(ctx, subcalendar, start, end)
	if err != nil {
		return nil, nil, err
	}

	windows := make([]domain.RequiredWindow, 0, len(events))
	problems := make([]error, 0)
	for _, event := range events {
		window, err := f.toWindow(event)
		if err != nil {
			problems = append(problems, err)
			continue
		}
		windows = append(windows, domain.RequiredWindow{
			ID:         event.ID,
			Title:      event.Title,
			Policy:     policy,
			TimeWindow: window,
		})
	}

	return windows, problems, nil
}

// OfferedWindows 获取 offer。无法识别角色的 offer 仍然保留（角色保持原样），
// 这样包含它的班次在检查时会失败，而不是被当作没有缺口。
func (f *Feed) OfferedWindows(ctx context.Context, subcalendar string, start time.Time, end time.Time) ([]domain.OfferedWindow, []error, error) {
	events, err := f.source.Events(ctx, subcalendar, start, end)
	if err != nil {
		return nil, nil, err
	}

	offers := make([]domain.OfferedWindow, 0, len(events))
	problems := make([]error, 0)
	for _, event := range events {
		window, err := f.toWindow(event)
		if err != nil {
			problems = append(problems, err)
			continue
		}

		role, err := f.role(event)
		if err != nil {
			problems = append(problems, err)
		}

		notes := ""
		if event.Notes != nil {
			notes = *event.Notes
		}

		offers = append(offers, domain.OfferedWindow{
			ID:         event.ID,
			Person:     event.Who,
			Role:       role,
			Notes:      notes,
			TimeWindow: window,
		})
	}

	return offers, problems, nil
}

func (f *Feed) toWindow(event Event) (domain.TimeWindow, error) {
	start, err := time.Parse(time.RFC3339, event.StartDT)
	if err != nil {
		return domain.TimeWindow{}, &domain.DataException{Record: event, Reason: fmt.Sprintf("无法解析开始时间: %v", err)}
	}
	end, err := time.Parse(time.RFC3339, event.EndDT)
	if err != nil {
		return domain.TimeWindow{}, &domain.DataException{Record: event, Reason: fmt.Sprintf("无法解析结束时间: %v", err)}
	}

	window := domain.TimeWindow{Start: start.In(f.loc), End: end.In(f.loc)}
	if err := window.Validate(); err != nil {
		return domain.TimeWindow{}, &domain.DataException{Record: event, Reason: err.Error()}
	}

	return window, nil
}

func (f *Feed) role(event Event) (domain.Role, error) {
	if len(event.Custom.CoverageLevel) == 0 {
		return domain.Role(""), &domain.DataException{Record: event, Reason: "缺少 coverage level"}
	}

	label := event.Custom.CoverageLevel[0]
	if role, ok := f.roles[label]; ok {
		return role, nil
	}
	// 没有映射时也接受直接使用内部角色名的数据
	if role, err := domain.ParseRole(label); err == nil {
		return role, nil
	}

	return domain.Role(label), &domain.DataException{Record: event, Reason: fmt.Sprintf("无法识别的 coverage level %q", label)}
}
