package coverage

import (
	"slices"
	"time"

	"github.com/sysu-ecnc-dev/shift-coverage/backend/internal/domain"
)

// ConsolidateGaps 把逐小时的缺失岗位合并为连续的区间。
// 输出先按 order 给出的严重程度排列，同一类别内按时间先后排列；
// 不在 order 中的类别排在最后，按类别名称排序。
func ConsolidateGaps(missing map[domain.HourSlot][]domain.Category, order []domain.Category, loc *time.Location) []domain.GapRange {
	// 先按类别反转
	slotsByCategory := make(map[domain.Category][]domain.HourSlot)
	for slot, categories := range missing {
		for _, category := range categories {
			if slices.Contains(slotsByCategory[category], slot) {
				continue
			}
			slotsByCategory[category] = append(slotsByCategory[category], slot)
		}
	}

	categories := make([]domain.Category, 0, len(slotsByCategory))
	for _, category := range order {
		if _, exists := slotsByCategory[category]; exists && !slices.Contains(categories, category) {
			categories = append(categories, category)
		}
	}
	rest := make([]domain.Category, 0)
	for category := range slotsByCategory {
		if !slices.Contains(order, category) {
			rest = append(rest, category)
		}
	}
	slices.Sort(rest)
	categories = append(categories, rest...)

	gaps := make([]domain.GapRange, 0)
	for _, category := range categories {
		for _, run := range splitRuns(slotsByCategory[category]) {
			start := run[0].Time(loc)
			end := run[len(run)-1].Next().Time(loc)
			gaps = append(gaps, domain.GapRange{
				Start:    start,
				End:      end,
				Hours:    len(run),
				Category: category,
			})
		}
	}

	return gaps
}

// splitRuns 排序后切分为若干段，每段内相邻两个 slot 恰好相差一小时
func splitRuns(slots []domain.HourSlot) [][]domain.HourSlot {
	sorted := slices.Clone(slots)
	slices.Sort(sorted)

	runs := make([][]domain.HourSlot, 0)
	var current []domain.HourSlot
	for _, slot := range sorted {
		if len(current) > 0 && !current[len(current)-1].Adjacent(slot) {
			runs = append(runs, current)
			current = nil
		}
		current = append(current, slot)
	}
	if len(current) > 0 {
		runs = append(runs, current)
	}

	return runs
}
