package domain

import (
	"errors"
	"fmt"
)

var (
	ErrDataException    = errors.New("数据异常")
	ErrStoreUnavailable = errors.New("通知记录存储不可用")
)

// DataException 表示某条 offer 或 required 记录缺少合法的角色/规则分类
type DataException struct {
	Record any
	Reason string
}

func (e *DataException) Error() string {
	return fmt.Sprintf("%s: %s (记录: %+v)", ErrDataException, e.Reason, e.Record)
}

func (e *DataException) Unwrap() error {
	return ErrDataException
}
