package domain

import "time"

// Member 是值班人员的联系方式，按机构 + 姓名唯一
type Member struct {
	ID           int64     `json:"id"`
	Agency       string    `json:"agency"`
	Name         string    `json:"name"`
	Slug         string    `json:"slug"`
	EmailAddress string    `json:"emailAddress"`
	CreatedAt    time.Time `json:"createdAt"`
	Version      int32     `json:"-"`
}
