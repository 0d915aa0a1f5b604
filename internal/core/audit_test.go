package core

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/netip"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetermineSeverity(t *testing.T) {
	tests := []struct {
		action AuditAction
		want   AuditSeverity
	}{
		{ActionReset, SeverityCritical},
		{ActionWorkspaceDelete, SeverityCritical},
		{ActionImport, SeverityHigh},
		{ActionColumnDelete, SeverityHigh},
		{ActionCellEdit, SeverityMedium},
		{ActionColumnRename, SeverityMedium},
		{ActionSort, SeverityLow},
		{ActionSettingsChange, SeverityLow},
	}
	for _, tt := range tests {
		if got := determineSeverity(tt.action); got != tt.want {
			t.Errorf("determineSeverity(%s) = %s, want %s", tt.action, got, tt.want)
		}
	}
}

func TestAuditLog_RingWrapsNewestFirst(t *testing.T) {
	log := NewAuditLog(&recordingSink{}, 3)
	ctx := context.Background()
	ws := uuid.New()

	for i := 0; i < 5; i++ {
		row := i
		log.Record(ctx, newAuditEntry(ctx, ws, AuditLogParams{Action: ActionCellEdit, RowIndex: &row}))
	}

	got := log.Recent(AuditLogFilter{})
	require.Len(t, got, 3)
	assert.Equal(t, 4, *got[0].RowIndex)
	assert.Equal(t, 3, *got[1].RowIndex)
	assert.Equal(t, 2, *got[2].RowIndex)
}

func TestAuditLog_Filter(t *testing.T) {
	log := NewAuditLog(&recordingSink{}, 10)
	ctx := context.Background()
	a, b := uuid.New(), uuid.New()

	log.Record(ctx, newAuditEntry(ctx, a, AuditLogParams{Action: ActionRowAdd}))
	log.Record(ctx, newAuditEntry(ctx, b, AuditLogParams{Action: ActionRowAdd}))
	log.Record(ctx, newAuditEntry(ctx, a, AuditLogParams{Action: ActionSort}))
	log.Record(ctx, newAuditEntry(ctx, a, AuditLogParams{Action: ActionRowAdd}))

	assert.Len(t, log.Recent(AuditLogFilter{WorkspaceID: a.String()}), 3)
	assert.Len(t, log.Recent(AuditLogFilter{WorkspaceID: a.String(), Action: ActionRowAdd}), 2)
	assert.Len(t, log.Recent(AuditLogFilter{Limit: 1}), 1)
	assert.Empty(t, log.Recent(AuditLogFilter{WorkspaceID: uuid.NewString()}))
}

func TestAuditLog_SinkErrorDoesNotDropEntry(t *testing.T) {
	sink := &recordingSink{err: errors.New("db down")}
	log := NewAuditLog(sink, 10)
	ctx := context.Background()

	log.Record(ctx, newAuditEntry(ctx, uuid.New(), AuditLogParams{Action: ActionReset}))
	assert.Len(t, log.Recent(AuditLogFilter{}), 1)
}

func TestSlogAuditSink(t *testing.T) {
	var buf bytes.Buffer
	sink := SlogAuditSink{Logger: slog.New(slog.NewJSONHandler(&buf, nil))}

	row := 2
	err := sink.WriteAudit(context.Background(), AuditEntry{
		ID:          "id-1",
		WorkspaceID: "ws-1",
		Action:      ActionCellEdit,
		Severity:    SeverityMedium,
		RowIndex:    &row,
		ColumnName:  "数值",
		OldValue:    "1",
		NewValue:    "2",
	})
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, `"msg":"audit"`)
	assert.Contains(t, out, `"action":"cell_edit"`)
	assert.Contains(t, out, `"column":"数值"`)
	assert.Contains(t, out, `"row":2`)
}

// fakeDB records Exec calls.
type fakeDB struct {
	sql  []string
	args [][]any
	err  error
}

func (f *fakeDB) Exec(_ context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error) {
	f.sql = append(f.sql, sql)
	f.args = append(f.args, args)
	if f.err != nil {
		return pgconn.CommandTag{}, f.err
	}
	return pgconn.NewCommandTag("INSERT 0 1"), nil
}

func (f *fakeDB) Query(context.Context, string, ...interface{}) (pgx.Rows, error) {
	return nil, errors.New("not implemented")
}

func (f *fakeDB) QueryRow(context.Context, string, ...interface{}) pgx.Row {
	return nil
}

func TestPgAuditSink_WriteAudit(t *testing.T) {
	db := &fakeDB{}
	sink := NewPgAuditSink(db)
	ctx := context.Background()

	require.NoError(t, sink.EnsureSchema(ctx))
	require.Contains(t, db.sql[0], "CREATE TABLE IF NOT EXISTS workspace_audit_log")

	row := 4
	entry := AuditEntry{
		ID:          uuid.NewString(),
		WorkspaceID: uuid.NewString(),
		Action:      ActionCellEdit,
		Severity:    SeverityMedium,
		IPAddress:   "192.168.1.9",
		RowIndex:    &row,
		ColumnName:  "数值",
		NewValue:    "5",
		CreatedAt:   time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
	}
	require.NoError(t, sink.WriteAudit(ctx, entry))

	args := db.args[1]
	require.Len(t, args, 12)
	assert.Equal(t, toPgUUID(entry.ID), args[0])
	assert.Equal(t, "cell_edit", args[2])

	ip, ok := args[4].(*netip.Addr)
	require.True(t, ok)
	assert.Equal(t, "192.168.1.9", ip.String())

	assert.Equal(t, pgtype.Int4{Int32: 4, Valid: true}, args[6])
	assert.Equal(t, pgtype.Text{String: "数值", Valid: true}, args[7])
	assert.Equal(t, pgtype.Text{}, args[8], "empty old value is NULL")
}

func TestPgAuditSink_InvalidIPStoredAsNull(t *testing.T) {
	db := &fakeDB{}
	sink := NewPgAuditSink(db)

	require.NoError(t, sink.WriteAudit(context.Background(), AuditEntry{IPAddress: "not-an-ip"}))
	ip, _ := db.args[0][4].(*netip.Addr)
	assert.Nil(t, ip)
}

func TestPgAuditSink_ExecError(t *testing.T) {
	sink := NewPgAuditSink(&fakeDB{err: errors.New("connection refused")})
	err := sink.WriteAudit(context.Background(), AuditEntry{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "insert audit entry")
}

func TestUUIDConversion(t *testing.T) {
	id := uuid.New()
	assert.Equal(t, id.String(), uuidToString(toPgUUID(id.String())))
	assert.False(t, toPgUUID("garbage").Valid)
	assert.Equal(t, "", uuidToString(pgtype.UUID{}))
}
