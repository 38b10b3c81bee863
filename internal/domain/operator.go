package domain

import (
	"time"
)

type OperatorRole string

const (
	OperatorRoleViewer OperatorRole = "viewer"
	OperatorRoleAdmin  OperatorRole = "admin"
)

// Operator 是可以登录 API 查看覆盖情况的管理人员
type Operator struct {
	ID           int64        `json:"id"`
	Username     string       `json:"username"`
	PasswordHash string       `json:"-"`
	FullName     string       `json:"fullName"`
	Email        string       `json:"email"`
	Role         OperatorRole `json:"role"`
	IsActive     bool         `json:"isActive"`
	CreatedAt    time.Time    `json:"createdAt"`
	Version      int32        `json:"-"`
}
