package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/vishalnagda1/outlook-mail-responder/store"
)

func (d *DB) CreateEmailLog(ctx context.Context, create *store.EmailLog) (*store.EmailLog, error) {
	if create.CreatedTs == 0 {
		create.CreatedTs = time.Now().Unix()
	}

	stmt := `
		INSERT INTO email_log (
			uid, source, message_id, sender, sender_address, subject,
			preview, intent, generator, draft_body, status, error_code, created_ts
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING id
	`
	if err := d.db.QueryRowContext(ctx, stmt,
		create.UID,
		create.Source,
		create.MessageID,
		create.Sender,
		create.SenderAddress,
		create.Subject,
		create.Preview,
		create.Intent,
		create.Generator,
		create.DraftBody,
		create.Status,
		create.ErrorCode,
		create.CreatedTs,
	).Scan(&create.ID); err != nil {
		return nil, err
	}
	return create, nil
}

func (d *DB) ListEmailLogs(ctx context.Context, find *store.FindEmailLog) ([]*store.EmailLog, error) {
	where, args := []string{"TRUE"}, []any{}
	addCondition := func(column string, value any) {
		args = append(args, value)
		where = append(where, fmt.Sprintf("%s = $%d", column, len(args)))
	}
	if find.ID != nil {
		addCondition("id", *find.ID)
	}
	if find.UID != nil {
		addCondition("uid", *find.UID)
	}
	if find.Source != nil {
		addCondition("source", *find.Source)
	}
	if find.MessageID != nil {
		addCondition("message_id", *find.MessageID)
	}
	if find.Status != nil {
		addCondition("status", *find.Status)
	}

	query := `
		SELECT
			id, uid, source, message_id, sender, sender_address, subject,
			preview, intent, generator, draft_body, status, error_code, created_ts
		FROM email_log
		WHERE ` + strings.Join(where, " AND ") + `
		ORDER BY created_ts DESC, id DESC
	`
	if find.Limit != nil {
		args = append(args, *find.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
		if find.Offset != nil {
			args = append(args, *find.Offset)
			query += fmt.Sprintf(" OFFSET $%d", len(args))
		}
	}

	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	list := []*store.EmailLog{}
	for rows.Next() {
		emailLog := &store.EmailLog{}
		if err := rows.Scan(
			&emailLog.ID,
			&emailLog.UID,
			&emailLog.Source,
			&emailLog.MessageID,
			&emailLog.Sender,
			&emailLog.SenderAddress,
			&emailLog.Subject,
			&emailLog.Preview,
			&emailLog.Intent,
			&emailLog.Generator,
			&emailLog.DraftBody,
			&emailLog.Status,
			&emailLog.ErrorCode,
			&emailLog.CreatedTs,
		); err != nil {
			return nil, err
		}
		list = append(list, emailLog)
	}
	return list, rows.Err()
}

func (d *DB) DeleteEmailLog(ctx context.Context, delete *store.DeleteEmailLog) error {
	_, err := d.db.ExecContext(ctx, "DELETE FROM email_log WHERE id = $1", delete.ID)
	return err
}
