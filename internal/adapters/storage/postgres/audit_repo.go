package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"disercomi-tramites/internal/domain/audit"
)

type AuditRepo struct {
	db *sql.DB
}

func NewAuditRepo(db *sql.DB) *AuditRepo {
	return &AuditRepo{db: db}
}

func (r *AuditRepo) Append(ctx context.Context, e audit.Entry) error {
	var changes []byte
	if len(e.Changes) > 0 {
		b, err := json.Marshal(e.Changes)
		if err != nil {
			return err
		}
		changes = b
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO bitacora (
			id, timestamp, actor_name, actor_role,
			action_type, resource_type, resource_id,
			description, changes, ip_address, device_info
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
	`,
		e.ID, e.Timestamp, e.ActorName, e.ActorRole,
		string(e.ActionType), e.ResourceType, e.ResourceID,
		e.Description, changes, e.IPAddress, e.DeviceInfo,
	)
	return err
}

func (r *AuditRepo) List(ctx context.Context, f audit.Filter) ([]audit.Entry, error) {
	query := `
		SELECT id, timestamp, actor_name, actor_role,
			action_type, resource_type, resource_id,
			description, changes, ip_address, device_info
		FROM bitacora
	`

	conds := make([]string, 0, 5)
	args := make([]any, 0, 5)
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if f.ActionType != "" {
		conds = append(conds, "action_type = "+arg(string(f.ActionType)))
	}
	if f.ResourceType != "" {
		conds = append(conds, "resource_type = "+arg(f.ResourceType))
	}
	if !f.From.IsZero() {
		conds = append(conds, "timestamp >= "+arg(f.From))
	}
	if !f.To.IsZero() {
		conds = append(conds, "timestamp <= "+arg(f.To))
	}
	if s := strings.TrimSpace(f.Search); s != "" {
		pat := arg("%" + strings.ToLower(s) + "%")
		conds = append(conds, "(lower(description) LIKE "+pat+
			" OR lower(actor_name) LIKE "+pat+
			" OR lower(resource_id) LIKE "+pat+")")
	}

	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY timestamp DESC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]audit.Entry, 0)
	for rows.Next() {
		var e audit.Entry
		var action string
		var changes []byte
		if err := rows.Scan(
			&e.ID, &e.Timestamp, &e.ActorName, &e.ActorRole,
			&action, &e.ResourceType, &e.ResourceID,
			&e.Description, &changes, &e.IPAddress, &e.DeviceInfo,
		); err != nil {
			return nil, err
		}
		e.ActionType = audit.ActionType(action)
		if len(changes) > 0 {
			_ = json.Unmarshal(changes, &e.Changes)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
