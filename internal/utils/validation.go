package utils

import (
	"errors"
	"fmt"
	"time"

	"github.com/sysu-ecnc-dev/shift-coverage/backend/internal/domain"
)

func ValidateSearchRange(start time.Time, end time.Time, maxDays int) error {
	if !start.Before(end) {
		return errors.New("查询开始时间必须早于结束时间")
	}

	if maxDays > 0 && end.Sub(start) > time.Duration(maxDays)*24*time.Hour {
		return fmt.Errorf("查询范围不能超过 %d 天", maxDays)
	}

	return nil
}

// ValidateRequiredWindows 只检查格式，角色相关的问题留给核心逻辑按 window 处理
func ValidateRequiredWindows(windows []domain.RequiredWindow) error {
	seen := make(map[string]bool)
	for i, w := range windows {
		if err := w.Validate(); err != nil {
			return fmt.Errorf("第 %d 个班次: %w", i+1, err)
		}
		if w.ID == "" {
			continue
		}
		if seen[w.ID] {
			return fmt.Errorf("第 %d 个班次的 ID %s 重复", i+1, w.ID)
		}
		seen[w.ID] = true
	}
	return nil
}

func ValidateOfferedWindows(offers []domain.OfferedWindow) error {
	for i, offer := range offers {
		if err := offer.Validate(); err != nil {
			return fmt.Errorf("第 %d 个 offer: %w", i+1, err)
		}
		if offer.Person == "" {
			return fmt.Errorf("第 %d 个 offer 缺少人员", i+1)
		}
	}
	return nil
}
