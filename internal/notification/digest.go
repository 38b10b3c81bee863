package notification

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"

	"github.com/sysu-ecnc-dev/shift-coverage/backend/internal/domain"
)

// Digest 对 person -> hours 做规范化序列化后取哈希，encoding/json 会按键排序 map
func Digest(summary domain.PersonHourSummary) (string, error) {
	if summary == nil {
		summary = domain.PersonHourSummary{}
	}

	data, err := json.Marshal(summary)
	if err != nil {
		return "", err
	}

	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}
