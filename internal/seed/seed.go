package seed

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"slices"
	"strings"

	"github.com/sysu-ecnc-dev/shift-coverage/backend/internal/domain"
	"github.com/sysu-ecnc-dev/shift-coverage/backend/internal/utils"
)

// CSV 中必须包含的列
var requiredHeaders = []string{"name", "email"}

type MemberStore interface {
	UpsertMember(ctx context.Context, member *domain.Member) error
}

// ReadMembers 读取形如 "name,email" 的成员表，表头大小写不敏感，空行和缺少邮箱的行会被跳过
func ReadMembers(r io.Reader, agency string) ([]*domain.Member, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	headers, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("读取表头失败: %w", err)
	}

	index := make(map[string]int)
	for i, header := range headers {
		index[strings.ToLower(strings.TrimSpace(header))] = i
	}
	for _, header := range requiredHeaders {
		if _, ok := index[header]; !ok {
			return nil, fmt.Errorf("没有找到 %s 列", header)
		}
	}

	members := make([]*domain.Member, 0)
	line := 1
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("读取第 %d 行失败: %w", line, err)
		}

		name := strings.TrimSpace(row[index["name"]])
		email := strings.TrimSpace(row[index["email"]])
		if name == "" || email == "" {
			slog.Warn("跳过不完整的成员记录", "line", line)
			continue
		}

		if slices.ContainsFunc(members, func(m *domain.Member) bool { return m.Name == name }) {
			slog.Warn("成员重复，使用后出现的邮箱", "line", line, "name", name)
			members = slices.DeleteFunc(members, func(m *domain.Member) bool { return m.Name == name })
		}

		members = append(members, &domain.Member{
			Agency:       agency,
			Name:         name,
			Slug:         utils.MemberSlug(name),
			EmailAddress: email,
		})
	}

	return members, nil
}

// ImportMembers 把 CSV 文件中的成员写入数据库，返回成功写入的数量
func ImportMembers(ctx context.Context, store MemberStore, path string, agency string) (int, error) {
	file, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("打开文件失败: %w", err)
	}
	defer file.Close()

	members, err := ReadMembers(file, agency)
	if err != nil {
		return 0, err
	}

	cnt := 0
	for _, member := range members {
		if err := store.UpsertMember(ctx, member); err != nil {
			slog.Error("插入成员失败", "name", member.Name, "error", err)
			continue
		}
		cnt++
	}

	slog.Info("导入成员完成", "count", cnt, "total", len(members))
	return cnt, nil
}
