package core

import (
	"context"
	"fmt"
	"net/netip"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
)

// DBTX is the interface for database operations.
// Satisfied by both *pgxpool.Pool and pgx.Tx.
type DBTX interface {
	Exec(context.Context, string, ...interface{}) (pgconn.CommandTag, error)
	Query(context.Context, string, ...interface{}) (pgx.Rows, error)
	QueryRow(context.Context, string, ...interface{}) pgx.Row
}

const auditSchemaSQL = `
CREATE TABLE IF NOT EXISTS workspace_audit_log (
    id            UUID PRIMARY KEY,
    workspace_id  UUID NOT NULL,
    action        TEXT NOT NULL,
    severity      TEXT NOT NULL,
    ip_address    INET,
    user_agent    TEXT,
    row_index     INTEGER,
    column_name   TEXT,
    old_value     TEXT,
    new_value     TEXT,
    rows_affected INTEGER,
    created_at    TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS workspace_audit_log_ws_idx
    ON workspace_audit_log (workspace_id, created_at DESC);`

const insertAuditSQL = `
INSERT INTO workspace_audit_log (
    id, workspace_id, action, severity, ip_address, user_agent,
    row_index, column_name, old_value, new_value, rows_affected, created_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`

const listAuditSQL = `
SELECT id, workspace_id, action, severity, ip_address, user_agent,
       row_index, column_name, old_value, new_value, rows_affected, created_at
FROM workspace_audit_log
WHERE workspace_id = $1
ORDER BY created_at DESC
LIMIT $2`

// PgAuditSink stores audit entries in PostgreSQL.
type PgAuditSink struct {
	db DBTX
}

// NewPgAuditSink creates a sink over db.
func NewPgAuditSink(db DBTX) *PgAuditSink {
	return &PgAuditSink{db: db}
}

// EnsureSchema creates the audit table if it does not exist.
func (p *PgAuditSink) EnsureSchema(ctx context.Context) error {
	if _, err := p.db.Exec(ctx, auditSchemaSQL); err != nil {
		return fmt.Errorf("create audit schema: %w", err)
	}
	return nil
}

func (p *PgAuditSink) WriteAudit(ctx context.Context, e AuditEntry) error {
	var ip *netip.Addr
	if e.IPAddress != "" {
		if addr, err := netip.ParseAddr(e.IPAddress); err == nil {
			ip = &addr
		}
	}

	rowIndex := pgtype.Int4{}
	if e.RowIndex != nil {
		rowIndex = pgtype.Int4{Int32: int32(*e.RowIndex), Valid: true}
	}

	_, err := p.db.Exec(ctx, insertAuditSQL,
		toPgUUID(e.ID),
		toPgUUID(e.WorkspaceID),
		string(e.Action),
		string(e.Severity),
		ip,
		toPgText(e.UserAgent),
		rowIndex,
		toPgText(e.ColumnName),
		toPgText(e.OldValue),
		toPgText(e.NewValue),
		toPgInt4(e.RowsAffected),
		pgtype.Timestamptz{Time: e.CreatedAt, Valid: true},
	)
	if err != nil {
		return fmt.Errorf("insert audit entry: %w", err)
	}
	return nil
}

// List returns the newest entries of one workspace.
func (p *PgAuditSink) List(ctx context.Context, workspaceID string, limit int) ([]AuditEntry, error) {
	if limit <= 0 {
		limit = DefaultAuditRingSize
	}

	rows, err := p.db.Query(ctx, listAuditSQL, toPgUUID(workspaceID), int32(limit))
	if err != nil {
		return nil, fmt.Errorf("query audit log: %w", err)
	}
	defer rows.Close()

	var entries []AuditEntry
	for rows.Next() {
		var (
			id, wsID                       pgtype.UUID
			action, severity               string
			ip                             *netip.Addr
			ua, column, oldValue, newValue pgtype.Text
			rowIndex, rowsAffected         pgtype.Int4
			createdAt                      pgtype.Timestamptz
		)
		if err := rows.Scan(&id, &wsID, &action, &severity, &ip, &ua,
			&rowIndex, &column, &oldValue, &newValue, &rowsAffected, &createdAt); err != nil {
			return nil, fmt.Errorf("scan audit entry: %w", err)
		}

		e := AuditEntry{
			ID:           uuidToString(id),
			WorkspaceID:  uuidToString(wsID),
			Action:       AuditAction(action),
			Severity:     AuditSeverity(severity),
			UserAgent:    ua.String,
			ColumnName:   column.String,
			OldValue:     oldValue.String,
			NewValue:     newValue.String,
			RowsAffected: int(rowsAffected.Int32),
			CreatedAt:    createdAt.Time.In(time.UTC),
		}
		if ip != nil {
			e.IPAddress = ip.String()
		}
		if rowIndex.Valid {
			i := int(rowIndex.Int32)
			e.RowIndex = &i
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate audit log: %w", err)
	}

	return entries, nil
}

func toPgText(s string) pgtype.Text {
	if s == "" {
		return pgtype.Text{Valid: false}
	}
	return pgtype.Text{String: s, Valid: true}
}

func toPgInt4(i int) pgtype.Int4 {
	if i == 0 {
		return pgtype.Int4{Valid: false}
	}
	return pgtype.Int4{Int32: int32(i), Valid: true}
}

func toPgUUID(s string) pgtype.UUID {
	if s == "" {
		return pgtype.UUID{Valid: false}
	}
	parsed, err := uuid.Parse(s)
	if err != nil {
		return pgtype.UUID{Valid: false}
	}
	return pgtype.UUID{Bytes: parsed, Valid: true}
}

func uuidToString(u pgtype.UUID) string {
	if !u.Valid {
		return ""
	}
	return uuid.UUID(u.Bytes).String()
}
