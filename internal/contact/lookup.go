package contact

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/sysu-ecnc-dev/shift-coverage/backend/internal/domain"
	"github.com/sysu-ecnc-dev/shift-coverage/backend/internal/utils"
)

var ErrCacheMiss = errors.New("缓存未命中")

var emailPattern = regexp.MustCompile(`\S+@\S+`)

type MemberStore interface {
	GetMemberByName(ctx context.Context, agency string, name string) (*domain.Member, error)
	UpsertMember(ctx context.Context, member *domain.Member) error
}

type Cache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value string, ttl time.Duration) error
}

// Lookup 按 缓存 -> 数据库 的顺序查找成员邮箱，结果回填到缓存
type Lookup struct {
	agency  string
	members MemberStore
	cache   Cache
	ttl     time.Duration
}

func NewLookup(agency string, members MemberStore, cache Cache, ttl time.Duration) *Lookup {
	return &Lookup{
		agency:  agency,
		members: members,
		cache:   cache,
		ttl:     ttl,
	}
}

// cacheKey 使用原始姓名，slug 会把不同的人映射到同一个键上
func (l *Lookup) cacheKey(name string) string {
	return fmt.Sprintf("contact_%s_%s", l.agency, name)
}

// Learn 从 offer 的备注中提取邮箱（例如 "email: someone@example.com"）并保存
func (l *Lookup) Learn(ctx context.Context, offers []domain.OfferedWindow) error {
	learned := make(map[string]bool)
	for _, offer := range offers {
		if learned[offer.Person] {
			continue
		}

		address := EmailFromNotes(offer.Notes)
		if address == "" {
			continue
		}

		member := &domain.Member{
			Agency:       l.agency,
			Name:         offer.Person,
			Slug:         utils.MemberSlug(offer.Person),
			EmailAddress: address,
		}
		if err := l.members.UpsertMember(ctx, member); err != nil {
			return err
		}
		l.remember(ctx, offer.Person, address)
		learned[offer.Person] = true
	}
	return nil
}

// Resolve 返回成员的邮箱，找不到时返回空字符串
func (l *Lookup) Resolve(ctx context.Context, name string) (string, error) {
	if l.cache != nil {
		address, err := l.cache.Get(ctx, l.cacheKey(name))
		switch {
		case err == nil:
			return address, nil
		case errors.Is(err, ErrCacheMiss):
		default:
			// 缓存不可用时直接查数据库
			slog.Warn("无法读取联系方式缓存", "member", name, "error", err)
		}
	}

	member, err := l.members.GetMemberByName(ctx, l.agency, name)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", nil
		}
		return "", err
	}

	l.remember(ctx, name, member.EmailAddress)
	return member.EmailAddress, nil
}

// Addresses 解析一组成员的邮箱，返回找到的邮箱和找不到邮箱的成员
func (l *Lookup) Addresses(ctx context.Context, names []string) ([]string, []string, error) {
	addresses := make([]string, 0, len(names))
	missing := make([]string, 0)

	for _, name := range names {
		address, err := l.Resolve(ctx, name)
		if err != nil {
			return nil, nil, err
		}
		if address == "" {
			missing = append(missing, name)
			continue
		}
		addresses = append(addresses, address)
	}

	return addresses, missing, nil
}

func (l *Lookup) remember(ctx context.Context, name string, address string) {
	if l.cache == nil {
		return
	}
	if err := l.cache.Set(ctx, l.cacheKey(name), address, l.ttl); err != nil {
		slog.Warn("无法写入联系方式缓存", "member", name, "error", err)
	}
}

// EmailFromNotes 备注中包含 "email" 字样时，取第一个形如邮箱的片段
func EmailFromNotes(notes string) string {
	if !strings.Contains(notes, "email") {
		return ""
	}

	address := emailPattern.FindString(notes)
	// 备注通常是 HTML，去掉紧跟在邮箱后面的标签
	if i := strings.Index(address, "<"); i >= 0 {
		address = address[:i]
	}
	return address
}
