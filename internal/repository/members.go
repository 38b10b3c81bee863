package repository

import (
	"context"
	"time"

	"github.com/sysu-ecnc-dev/shift-coverage/backend/internal/domain"
)

func (r *Repository) GetMemberByName(ctx context.Context, agency string, name string) (*domain.Member, error) {
	ctx, cancel := context.WithTimeout(ctx, time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	query := `
		SELECT id, slug, email_address, created_at, version
		FROM members WHERE agency = $1 AND name = $2
	`

	member := &domain.Member{
		Agency: agency,
		Name:   name,
	}

	dst := []any{&member.ID, &member.Slug, &member.EmailAddress, &member.CreatedAt, &member.Version}
	if err := r.dbpool.QueryRowContext(ctx, query, agency, name).Scan(dst...); err != nil {
		return nil, err
	}

	return member, nil
}

// UpsertMember 以 (agency, name) 为键写入联系方式，已存在时更新邮箱
func (r *Repository) UpsertMember(ctx context.Context, member *domain.Member) error {
	ctx, cancel := context.WithTimeout(ctx, time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	query := `
		INSERT INTO members (agency, name, slug, email_address)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (agency, name) DO UPDATE
		SET email_address = EXCLUDED.email_address, version = members.version + 1
		RETURNING id, slug, created_at, version
	`

	args := []any{member.Agency, member.Name, member.Slug, member.EmailAddress}
	dst := []any{&member.ID, &member.Slug, &member.CreatedAt, &member.Version}
	if err := r.dbpool.QueryRowContext(ctx, query, args...).Scan(dst...); err != nil {
		return err
	}

	return nil
}

func (r *Repository) GetAllMembers(ctx context.Context, agency string) ([]*domain.Member, error) {
	ctx, cancel := context.WithTimeout(ctx, time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	query := `
		SELECT id, name, slug, email_address, created_at, version
		FROM members WHERE agency = $1
		ORDER BY name
	`

	rows, err := r.dbpool.QueryContext(ctx, query, agency)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	members := make([]*domain.Member, 0)
	for rows.Next() {
		member := &domain.Member{Agency: agency}
		dst := []any{&member.ID, &member.Name, &member.Slug, &member.EmailAddress, &member.CreatedAt, &member.Version}
		if err := rows.Scan(dst...); err != nil {
			return nil, err
		}
		members = append(members, member)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return members, nil
}
