package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/vishalnagda1/outlook-mail-responder/store"
)

func (d *DB) UpsertSetting(ctx context.Context, upsert *store.Setting) (*store.Setting, error) {
	stmt := `
		INSERT INTO setting (name, value)
		VALUES ($1, $2)
		ON CONFLICT (name) DO UPDATE SET value = EXCLUDED.value
	`
	if _, err := d.db.ExecContext(ctx, stmt, upsert.Name, upsert.Value); err != nil {
		return nil, err
	}
	return upsert, nil
}

func (d *DB) GetSetting(ctx context.Context, find *store.FindSetting) (*store.Setting, error) {
	settings, err := d.ListSettings(ctx, find)
	if err != nil {
		return nil, err
	}
	if len(settings) == 0 {
		return nil, nil
	}
	return settings[0], nil
}

func (d *DB) ListSettings(ctx context.Context, find *store.FindSetting) ([]*store.Setting, error) {
	where, args := []string{"TRUE"}, []any{}
	if find.Name != nil {
		args = append(args, *find.Name)
		where = append(where, fmt.Sprintf("name = $%d", len(args)))
	}

	query := "SELECT name, value FROM setting WHERE " + strings.Join(where, " AND ") + " ORDER BY name"
	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	list := []*store.Setting{}
	for rows.Next() {
		setting := &store.Setting{}
		if err := rows.Scan(&setting.Name, &setting.Value); err != nil {
			return nil, err
		}
		list = append(list, setting)
	}
	return list, rows.Err()
}

func (d *DB) DeleteSetting(ctx context.Context, delete *store.DeleteSetting) error {
	_, err := d.db.ExecContext(ctx, "DELETE FROM setting WHERE name = $1", delete.Name)
	return err
}
