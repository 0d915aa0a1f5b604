package core

import (
	"context"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
)

// AuditAction represents the type of action being audited.
type AuditAction string

const (
	ActionWorkspaceCreate AuditAction = "workspace_create"
	ActionWorkspaceDelete AuditAction = "workspace_delete"
	ActionWorkspaceExpire AuditAction = "workspace_expire"
	ActionCellEdit        AuditAction = "cell_edit"
	ActionRowAdd          AuditAction = "row_add"
	ActionRowDelete       AuditAction = "row_delete"
	ActionColumnAdd       AuditAction = "column_add"
	ActionColumnDelete    AuditAction = "column_delete"
	ActionColumnRename    AuditAction = "column_rename"
	ActionSort            AuditAction = "sort"
	ActionImport          AuditAction = "import"
	ActionReset           AuditAction = "reset"
	ActionRolesChange     AuditAction = "roles_change"
	ActionSettingsChange  AuditAction = "settings_change"
)

// AuditSeverity represents the severity level of an audit entry.
type AuditSeverity string

const (
	SeverityLow      AuditSeverity = "low"
	SeverityMedium   AuditSeverity = "medium"
	SeverityHigh     AuditSeverity = "high"
	SeverityCritical AuditSeverity = "critical"
)

// AuditEntry represents a single audit log entry.
type AuditEntry struct {
	ID           string        `json:"id"`
	WorkspaceID  string        `json:"workspaceId"`
	Action       AuditAction   `json:"action"`
	Severity     AuditSeverity `json:"severity"`
	IPAddress    string        `json:"ipAddress,omitempty"`
	UserAgent    string        `json:"userAgent,omitempty"`
	RowIndex     *int          `json:"rowIndex,omitempty"`
	ColumnName   string        `json:"columnName,omitempty"`
	OldValue     string        `json:"oldValue,omitempty"`
	NewValue     string        `json:"newValue,omitempty"`
	RowsAffected int           `json:"rowsAffected,omitempty"`
	CreatedAt    time.Time     `json:"createdAt"`
}

// AuditLogParams contains parameters for creating an audit log entry.
type AuditLogParams struct {
	Action       AuditAction
	RowIndex     *int
	ColumnName   string
	OldValue     string
	NewValue     string
	RowsAffected int
}

// determineSeverity returns the appropriate severity for an action.
func determineSeverity(action AuditAction) AuditSeverity {
	switch action {
	case ActionImport, ActionColumnDelete, ActionRowDelete:
		return SeverityHigh
	case ActionReset, ActionWorkspaceDelete:
		return SeverityCritical
	case ActionSettingsChange, ActionRolesChange, ActionSort, ActionWorkspaceCreate, ActionWorkspaceExpire:
		return SeverityLow
	default:
		return SeverityMedium
	}
}

// newAuditEntry stamps params with an ID, severity, time and the request
// metadata carried by ctx.
func newAuditEntry(ctx context.Context, workspaceID uuid.UUID, params AuditLogParams) AuditEntry {
	return AuditEntry{
		ID:           uuid.NewString(),
		WorkspaceID:  workspaceID.String(),
		Action:       params.Action,
		Severity:     determineSeverity(params.Action),
		IPAddress:    GetIPAddressFromContext(ctx),
		UserAgent:    GetUserAgentFromContext(ctx),
		RowIndex:     params.RowIndex,
		ColumnName:   params.ColumnName,
		OldValue:     params.OldValue,
		NewValue:     params.NewValue,
		RowsAffected: params.RowsAffected,
		CreatedAt:    time.Now().UTC(),
	}
}

// AuditSink persists audit entries.
type AuditSink interface {
	WriteAudit(ctx context.Context, entry AuditEntry) error
}

// SlogAuditSink writes entries as structured log records.
type SlogAuditSink struct {
	Logger *slog.Logger
}

func (s SlogAuditSink) WriteAudit(ctx context.Context, e AuditEntry) error {
	logger := s.Logger
	if logger == nil {
		logger = slog.Default()
	}

	attrs := []any{
		"audit_id", e.ID,
		"workspace_id", e.WorkspaceID,
		"action", e.Action,
		"severity", e.Severity,
	}
	if e.RowIndex != nil {
		attrs = append(attrs, "row", *e.RowIndex)
	}
	if e.ColumnName != "" {
		attrs = append(attrs, "column", e.ColumnName)
	}
	if e.OldValue != "" || e.NewValue != "" {
		attrs = append(attrs, "old", e.OldValue, "new", e.NewValue)
	}
	if e.RowsAffected > 0 {
		attrs = append(attrs, "rows_affected", e.RowsAffected)
	}
	if e.IPAddress != "" {
		attrs = append(attrs, "ip", e.IPAddress)
	}

	logger.InfoContext(ctx, "audit", attrs...)
	return nil
}

// DefaultAuditRingSize is the number of entries kept in memory.
const DefaultAuditRingSize = 500

// AuditLog keeps the most recent entries in memory and forwards every entry
// to a sink. A failing sink never blocks the operation being audited.
type AuditLog struct {
	sink AuditSink

	mu      sync.RWMutex
	entries []AuditEntry
	next    int
	full    bool
}

// NewAuditLog creates a log holding up to size entries. A nil sink is
// replaced by a SlogAuditSink on the default logger.
func NewAuditLog(sink AuditSink, size int) *AuditLog {
	if sink == nil {
		sink = SlogAuditSink{}
	}
	if size <= 0 {
		size = DefaultAuditRingSize
	}
	return &AuditLog{sink: sink, entries: make([]AuditEntry, size)}
}

// Record stores e and forwards it to the sink.
func (a *AuditLog) Record(ctx context.Context, e AuditEntry) {
	a.mu.Lock()
	a.entries[a.next] = e
	a.next = (a.next + 1) % len(a.entries)
	if a.next == 0 {
		a.full = true
	}
	a.mu.Unlock()

	if err := a.sink.WriteAudit(ctx, e); err != nil {
		auditSinkErrors.Inc()
		slog.Error("audit sink write failed",
			"audit_id", e.ID,
			"action", e.Action,
			"error", err,
		)
	}
}

// AuditLogFilter contains filtering options for querying audit logs.
type AuditLogFilter struct {
	WorkspaceID string
	Action      AuditAction
	Limit       int
}

// Recent returns matching entries, newest first.
func (a *AuditLog) Recent(filter AuditLogFilter) []AuditEntry {
	a.mu.RLock()
	defer a.mu.RUnlock()

	n := a.next
	if a.full {
		n = len(a.entries)
	}

	out := make([]AuditEntry, 0, min(n, max(filter.Limit, 0)))
	for i := 1; i <= n; i++ {
		e := a.entries[(a.next-i+len(a.entries))%len(a.entries)]
		if filter.WorkspaceID != "" && e.WorkspaceID != filter.WorkspaceID {
			continue
		}
		if filter.Action != "" && e.Action != filter.Action {
			continue
		}
		out = append(out, e)
		if filter.Limit > 0 && len(out) == filter.Limit {
			break
		}
	}
	return slices.Clip(out)
}
