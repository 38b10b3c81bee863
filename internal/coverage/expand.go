package coverage

import (
	"time"

	"github.com/sysu-ecnc-dev/shift-coverage/backend/internal/domain"
)

// ExpandHours 把时间区间展开成逐小时的 HourSlot 序列。
// 第一个 slot 是 start 截断到整点，个数为 end 与 start 之间相差的整小时数（不足一小时的部分直接舍去）。
func ExpandHours(w domain.TimeWindow) []domain.HourSlot {
	hours := int(w.End.Sub(w.Start) / time.Hour)
	if hours <= 0 {
		return []domain.HourSlot{}
	}

	slots := make([]domain.HourSlot, 0, hours)
	slot := domain.NewHourSlot(w.Start)
	for i := 0; i < hours; i++ {
		slots = append(slots, slot)
		slot = slot.Next()
	}

	return slots
}

// ExpandOffers 把 offer 展开到它覆盖的每一个小时上
func ExpandOffers(offers []domain.OfferedWindow) map[domain.HourSlot][]domain.OfferedWindow {
	byHour := make(map[domain.HourSlot][]domain.OfferedWindow)
	for _, offer := range offers {
		for _, slot := range ExpandHours(offer.TimeWindow) {
			byHour[slot] = append(byHour[slot], offer)
		}
	}
	return byHour
}
