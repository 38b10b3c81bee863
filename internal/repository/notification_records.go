package repository

import (
	"context"
	"encoding/json"
	"time"

	"github.com/sysu-ecnc-dev/shift-coverage/backend/internal/domain"
)

// NotificationStore 基于 notification_records 表实现只追加的通知记录存储
type NotificationStore struct {
	r *Repository
}

func (r *Repository) NotificationStore() *NotificationStore {
	return &NotificationStore{r: r}
}

func (s *NotificationStore) Get(ctx context.Context, key domain.CompoundKey) ([]domain.NotificationRecord, error) {
	return s.r.GetNotificationRecordsByKey(ctx, key.String())
}

func (s *NotificationStore) Put(ctx context.Context, key domain.CompoundKey, record *domain.NotificationRecord) error {
	record.Key = key.String()
	return s.r.InsertNotificationRecord(ctx, record)
}

func (r *Repository) GetNotificationRecordsByKey(ctx context.Context, key string) ([]domain.NotificationRecord, error) {
	ctx, cancel := context.WithTimeout(ctx, time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	query := `
		SELECT sent_at, date_sent, recipients, content_digest, run_id
		FROM notification_records
		WHERE notification_key = $1
		ORDER BY sent_at
	`

	rows, err := r.dbpool.QueryContext(ctx, query, key)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	records := make([]domain.NotificationRecord, 0)
	for rows.Next() {
		record := domain.NotificationRecord{Key: key}
		var recipients []byte

		dst := []any{&record.SentAt, &record.DateSent, &recipients, &record.ContentDigest, &record.RunID}
		if err := rows.Scan(dst...); err != nil {
			return nil, err
		}

		if err := json.Unmarshal(recipients, &record.Recipients); err != nil {
			return nil, err
		}

		records = append(records, record)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return records, nil
}

func (r *Repository) InsertNotificationRecord(ctx context.Context, record *domain.NotificationRecord) error {
	ctx, cancel := context.WithTimeout(ctx, time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	recipients, err := json.Marshal(record.Recipients)
	if err != nil {
		return err
	}

	// 只插入，从不更新已有记录
	query := `
		INSERT INTO notification_records (notification_key, sent_at, date_sent, recipients, content_digest, run_id)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	args := []any{record.Key, record.SentAt, record.DateSent, recipients, record.ContentDigest, record.RunID}
	if _, err := r.dbpool.ExecContext(ctx, query, args...); err != nil {
		return err
	}

	return nil
}

// GetRecentNotificationRecords 按时间倒序列出某个机构最近的发送记录
func (r *Repository) GetRecentNotificationRecords(ctx context.Context, agency string, limit int) ([]domain.NotificationRecord, error) {
	ctx, cancel := context.WithTimeout(ctx, time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	query := `
		SELECT notification_key, sent_at, date_sent, recipients, content_digest, run_id
		FROM notification_records
		WHERE notification_key LIKE $1 || '\_%'
		ORDER BY sent_at DESC
		LIMIT $2
	`

	rows, err := r.dbpool.QueryContext(ctx, query, agency, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	records := make([]domain.NotificationRecord, 0)
	for rows.Next() {
		record := domain.NotificationRecord{}
		var recipients []byte

		dst := []any{&record.Key, &record.SentAt, &record.DateSent, &recipients, &record.ContentDigest, &record.RunID}
		if err := rows.Scan(dst...); err != nil {
			return nil, err
		}

		if err := json.Unmarshal(recipients, &record.Recipients); err != nil {
			return nil, err
		}

		records = append(records, record)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return records, nil
}
