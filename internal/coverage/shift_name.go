package coverage

import (
	"fmt"
	"time"
)

var periodNames = map[int]string{
	1: "Late Night",
	2: "Early Morning",
	3: "Morning",
	4: "Noon",
	5: "Evening",
	6: "Night",
}

// ShiftName 生成类似 "Saturday (Noon shift) January 08, 2022" 的班次名称
func ShiftName(start time.Time) string {
	period := (start.Hour()%24 + 4) / 4
	return fmt.Sprintf("%s (%s shift) %s", start.Weekday(), periodNames[period], start.Format("January 02, 2006"))
}
