package domain

import (
	"slices"
	"time"
)

type HourlyVerdict struct {
	Missing  []Category `json:"missing"`
	Warnings []string   `json:"warnings"`
}

type GapRange struct {
	Start    time.Time `json:"start"`
	End      time.Time `json:"end"`
	Hours    int       `json:"hours"`
	Category Category  `json:"category"`
}

// CrewSignature 由当前小时所有 (role, person) 排序后拼接而成，相等即视为同一组人员
type CrewSignature string

type CollapsedSpan struct {
	Start time.Time     `json:"start"`
	End   time.Time     `json:"end"`
	Hours int           `json:"hours"`
	Crew  CrewSignature `json:"crew"`
}

// PersonHourSummary 人员 -> 与 RequiredWindow 重叠的总小时数
type PersonHourSummary map[string]int

func (s PersonHourSummary) Total() int {
	total := 0
	for _, hours := range s {
		total += hours
	}
	return total
}

// People 按姓名排序
func (s PersonHourSummary) People() []string {
	people := make([]string, 0, len(s))
	for person := range s {
		people = append(people, person)
	}
	slices.Sort(people)
	return people
}

type HourWarning struct {
	Hour     time.Time `json:"hour"`
	Warnings []string  `json:"warnings"`
}
