package coverage

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/sysu-ecnc-dev/shift-coverage/backend/internal/domain"
)

// SortCrew 按 (role, person) 排序，保证同一组人员得到相同的签名
func SortCrew(offers []domain.OfferedWindow) {
	slices.SortStableFunc(offers, func(a, b domain.OfferedWindow) int {
		if c := strings.Compare(string(a.Role), string(b.Role)); c != 0 {
			return c
		}
		return strings.Compare(a.Person, b.Person)
	})
}

// Signature 要求 offers 已经排好序
func Signature(offers []domain.OfferedWindow) domain.CrewSignature {
	names := make([]string, 0, len(offers))
	for _, offer := range offers {
		names = append(names, fmt.Sprintf("%s (%s)", offer.Person, offer.Role.Abbreviation()))
	}
	return domain.CrewSignature(strings.Join(names, ", "))
}

// CollapseCrew 把相邻且人员组成完全一致的小时合并为一个区间，没有任何 offer 的小时不会出现在结果中
func CollapseCrew(crews map[domain.HourSlot][]domain.OfferedWindow, loc *time.Location) []domain.CollapsedSpan {
	slots := make([]domain.HourSlot, 0, len(crews))
	for slot, offers := range crews {
		if len(offers) == 0 {
			continue
		}
		slots = append(slots, slot)
	}
	slices.Sort(slots)

	spans := make([]domain.CollapsedSpan, 0)

	var (
		open      bool
		startSlot domain.HourSlot
		lastSlot  domain.HourSlot
		signature domain.CrewSignature
	)

	flush := func() {
		spans = append(spans, domain.CollapsedSpan{
			Start: startSlot.Time(loc),
			End:   lastSlot.Next().Time(loc),
			Hours: int(lastSlot.Next()-startSlot) / int(time.Hour/time.Second),
			Crew:  signature,
		})
	}

	for _, slot := range slots {
		offers := slices.Clone(crews[slot])
		SortCrew(offers)
		current := Signature(offers)

		if open && lastSlot.Adjacent(slot) && current == signature {
			lastSlot = slot
			continue
		}

		if open {
			flush()
		}
		open = true
		startSlot = slot
		lastSlot = slot
		signature = current
	}

	if open {
		flush()
	}

	return spans
}

// SummarizeHours 统计每个人与 window 重叠的整小时数。
// 每个 offer 只计算一次重叠时长，而不是按展开后的小时逐个累加。
func SummarizeHours(window domain.TimeWindow, offers []domain.OfferedWindow) domain.PersonHourSummary {
	summary := make(domain.PersonHourSummary)
	for _, offer := range offers {
		overlap := window.Overlap(offer.TimeWindow)
		if overlap <= 0 {
			continue
		}
		summary[offer.Person] += int(overlap / time.Hour)
	}
	return summary
}
