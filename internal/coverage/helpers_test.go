package coverage_test

import (
	"time"

	"github.com/sysu-ecnc-dev/shift-coverage/backend/internal/domain"
)

var loc = time.FixedZone("EST", -5*60*60)

// at 返回 2022-01-08 (周六) 当天 hour 点，hour 超过 23 时顺延到第二天
func at(hour int) time.Time {
	return time.Date(2022, time.January, 8, 0, 0, 0, 0, loc).Add(time.Duration(hour) * time.Hour)
}

func window(start int, end int) domain.TimeWindow {
	return domain.TimeWindow{Start: at(start), End: at(end)}
}

func offer(person string, role domain.Role, start int, end int) domain.OfferedWindow {
	return domain.OfferedWindow{
		ID:         person + "-" + string(role),
		Person:     person,
		Role:       role,
		TimeWindow: window(start, end),
	}
}

func required(id string, policy domain.Policy, start int, end int) domain.RequiredWindow {
	return domain.RequiredWindow{
		ID:         id,
		Title:      id,
		Policy:     policy,
		TimeWindow: window(start, end),
	}
}
