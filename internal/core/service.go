package core

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Notification texts shown after successful operations.
const (
	NoticeImported = "数据导入成功！"
	NoticeReset    = "数据已重置为空白状态"
)

// SortNotice is the confirmation shown after sorting.
func SortNotice(column string, dir SortDirection) string {
	return fmt.Sprintf("已按 \"%s\" %s排列", column, dir.Label())
}

// Notice is a transient message for the UI.
type Notice struct {
	Type string `json:"type"` // "success" or "error"
	Text string `json:"text"`
}

// Snapshot is the externally visible state of one workspace.
type Snapshot struct {
	ID         uuid.UUID      `json:"id"`
	Version    int64          `json:"version"`
	Columns    []string       `json:"columns"`
	Rows       []Row          `json:"rows"`
	Roles      RoleAssignment `json:"roles"`
	Candidates []string       `json:"seriesCandidates"`
	Settings   ChartSettings  `json:"settings"`
	Notice     *Notice        `json:"notice,omitempty"`
	UpdatedAt  time.Time      `json:"updatedAt"`
}

// ServiceConfig configures a Service. Zero values select defaults.
type ServiceConfig struct {
	MaxWorkspaces        int           // 0 means unlimited
	AuditSink            AuditSink     // default: SlogAuditSink
	AuditRingSize        int           // default: DefaultAuditRingSize
	MaxConcurrentRenders int           // default: DefaultMaxConcurrentRenders
	MaxRenderWait        time.Duration // default: DefaultMaxRenderWait
}

// Service owns all live workspaces. Mutations are serialized by one mutex;
// each installs a complete new Workspace snapshot or leaves the old one.
type Service struct {
	maxWorkspaces int
	audit         *AuditLog
	renders       *RenderLimiter
	now           func() time.Time

	mu         sync.RWMutex
	workspaces map[uuid.UUID]*workspaceEntry
}

type workspaceEntry struct {
	ws        Workspace
	version   int64
	notice    *Notice
	updatedAt time.Time
}

// NewService creates a new Service instance.
func NewService(cfg ServiceConfig) *Service {
	return &Service{
		maxWorkspaces: cfg.MaxWorkspaces,
		audit:         NewAuditLog(cfg.AuditSink, cfg.AuditRingSize),
		renders:       NewRenderLimiter(cfg.MaxConcurrentRenders, cfg.MaxRenderWait),
		now:           time.Now,
		workspaces:    make(map[uuid.UUID]*workspaceEntry),
	}
}

func (s *Service) snapshot(id uuid.UUID, e *workspaceEntry) Snapshot {
	d := e.ws.Dataset()
	roles := e.ws.Roles()
	return Snapshot{
		ID:         id,
		Version:    e.version,
		Columns:    d.Columns(),
		Rows:       d.Rows(),
		Roles:      roles,
		Candidates: SeriesCandidates(d, roles.Axis),
		Settings:   e.ws.Settings(),
		Notice:     e.notice,
		UpdatedAt:  e.updatedAt,
	}
}

// Create starts a blank workspace.
func (s *Service) Create(ctx context.Context) (Snapshot, error) {
	s.mu.Lock()
	if s.maxWorkspaces > 0 && len(s.workspaces) >= s.maxWorkspaces {
		s.mu.Unlock()
		operationsTotal.WithLabelValues(string(ActionWorkspaceCreate), "error").Inc()
		return Snapshot{}, fmt.Errorf("%w: limit %d", ErrTooManyWorkspaces, s.maxWorkspaces)
	}

	id := uuid.New()
	e := &workspaceEntry{ws: NewWorkspace(), version: 1, updatedAt: s.now()}
	s.workspaces[id] = e
	snap := s.snapshot(id, e)
	workspacesActive.Set(float64(len(s.workspaces)))
	s.mu.Unlock()

	s.audit.Record(ctx, newAuditEntry(ctx, id, AuditLogParams{Action: ActionWorkspaceCreate}))
	operationsTotal.WithLabelValues(string(ActionWorkspaceCreate), "ok").Inc()
	slog.DebugContext(ctx, "workspace created", "workspace_id", id)

	return snap, nil
}

// Get returns the current snapshot of id.
func (s *Service) Get(id uuid.UUID) (Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.workspaces[id]
	if !ok {
		return Snapshot{}, ErrWorkspaceNotFound
	}
	return s.snapshot(id, e), nil
}

// Workspace returns the current immutable workspace value of id.
func (s *Service) Workspace(id uuid.UUID) (Workspace, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.workspaces[id]
	if !ok {
		return Workspace{}, ErrWorkspaceNotFound
	}
	return e.ws, nil
}

// View returns the chart binding view of id.
func (s *Service) View(id uuid.UUID) (View, error) {
	ws, err := s.Workspace(id)
	if err != nil {
		return View{}, err
	}
	return ws.View(), nil
}

// Delete discards a workspace.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	if _, ok := s.workspaces[id]; !ok {
		s.mu.Unlock()
		return ErrWorkspaceNotFound
	}
	delete(s.workspaces, id)
	workspacesActive.Set(float64(len(s.workspaces)))
	s.mu.Unlock()

	s.audit.Record(ctx, newAuditEntry(ctx, id, AuditLogParams{Action: ActionWorkspaceDelete}))
	operationsTotal.WithLabelValues(string(ActionWorkspaceDelete), "ok").Inc()
	return nil
}

// WorkspaceCount returns the number of live workspaces.
func (s *Service) WorkspaceCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.workspaces)
}

// EvictIdle removes workspaces untouched for longer than ttl and returns
// how many were removed.
func (s *Service) EvictIdle(ctx context.Context, ttl time.Duration) int {
	cutoff := s.now().Add(-ttl)

	s.mu.Lock()
	var evicted []uuid.UUID
	for id, e := range s.workspaces {
		if e.updatedAt.Before(cutoff) {
			delete(s.workspaces, id)
			evicted = append(evicted, id)
		}
	}
	workspacesActive.Set(float64(len(s.workspaces)))
	s.mu.Unlock()

	for _, id := range evicted {
		s.audit.Record(ctx, newAuditEntry(ctx, id, AuditLogParams{Action: ActionWorkspaceExpire}))
	}
	workspacesExpired.Add(float64(len(evicted)))
	return len(evicted)
}

// RecentAudit lists the newest audit entries of a workspace.
func (s *Service) RecentAudit(id uuid.UUID, limit int) ([]AuditEntry, error) {
	s.mu.RLock()
	_, ok := s.workspaces[id]
	s.mu.RUnlock()
	if !ok {
		return nil, ErrWorkspaceNotFound
	}
	return s.audit.Recent(AuditLogFilter{WorkspaceID: id.String(), Limit: limit}), nil
}

// mutation is a pure workspace transition. It returns the new workspace and
// an optional success notice.
type mutation func(Workspace) (Workspace, string, error)

// apply runs fn against the current snapshot of id and installs the result.
// fn may fill in params before they are recorded.
func (s *Service) apply(ctx context.Context, id uuid.UUID, params *AuditLogParams, fn mutation) (Snapshot, error) {
	logger := slog.With("workspace_id", id, "op", params.Action)

	s.mu.Lock()
	e, ok := s.workspaces[id]
	if !ok {
		s.mu.Unlock()
		return Snapshot{}, ErrWorkspaceNotFound
	}

	next, notice, err := fn(e.ws)
	if err != nil {
		s.mu.Unlock()
		operationsTotal.WithLabelValues(string(params.Action), resultLabel(err)).Inc()
		logger.WarnContext(ctx, "workspace operation rejected", "error", err)
		return Snapshot{}, err
	}

	updated := &workspaceEntry{
		ws:        next,
		version:   e.version + 1,
		updatedAt: s.now(),
	}
	if notice != "" {
		updated.notice = &Notice{Type: "success", Text: notice}
	}
	s.workspaces[id] = updated
	snap := s.snapshot(id, updated)
	s.mu.Unlock()

	s.audit.Record(ctx, newAuditEntry(ctx, id, *params))
	operationsTotal.WithLabelValues(string(params.Action), "ok").Inc()
	logger.DebugContext(ctx, "workspace updated", "version", snap.Version)

	return snap, nil
}

// SetCell stores raw at (row, column).
func (s *Service) SetCell(ctx context.Context, id uuid.UUID, row int, column, raw string) (Snapshot, error) {
	params := AuditLogParams{Action: ActionCellEdit, RowIndex: &row, ColumnName: column, NewValue: raw}
	return s.apply(ctx, id, &params, func(w Workspace) (Workspace, string, error) {
		if old, ok := w.Dataset().Cell(row, column); ok {
			params.OldValue = old.String()
		}
		return w.SetCell(row, column, raw), "", nil
	})
}

func (s *Service) AddRow(ctx context.Context, id uuid.UUID) (Snapshot, error) {
	return s.apply(ctx, id, &AuditLogParams{Action: ActionRowAdd, RowsAffected: 1},
		func(w Workspace) (Workspace, string, error) {
			return w.AddRow(), "", nil
		})
}

func (s *Service) DeleteRow(ctx context.Context, id uuid.UUID, row int) (Snapshot, error) {
	return s.apply(ctx, id, &AuditLogParams{Action: ActionRowDelete, RowIndex: &row, RowsAffected: 1},
		func(w Workspace) (Workspace, string, error) {
			return w.DeleteRow(row), "", nil
		})
}

// AddColumn appends a generated column. The new name is in the snapshot's
// last column.
func (s *Service) AddColumn(ctx context.Context, id uuid.UUID) (Snapshot, error) {
	return s.apply(ctx, id, &AuditLogParams{Action: ActionColumnAdd},
		func(w Workspace) (Workspace, string, error) {
			next, _ := w.AddColumn()
			return next, "", nil
		})
}

func (s *Service) DeleteColumn(ctx context.Context, id uuid.UUID, column string) (Snapshot, error) {
	return s.apply(ctx, id, &AuditLogParams{Action: ActionColumnDelete, ColumnName: column},
		func(w Workspace) (Workspace, string, error) {
			next, err := w.DeleteColumn(column)
			return next, "", err
		})
}

func (s *Service) RenameColumn(ctx context.Context, id uuid.UUID, oldName, newName string) (Snapshot, error) {
	params := AuditLogParams{Action: ActionColumnRename, ColumnName: oldName, OldValue: oldName, NewValue: newName}
	return s.apply(ctx, id, &params, func(w Workspace) (Workspace, string, error) {
		next, err := w.RenameColumn(oldName, newName)
		return next, "", err
	})
}

func (s *Service) Sort(ctx context.Context, id uuid.UUID, column string, dir SortDirection) (Snapshot, error) {
	params := AuditLogParams{Action: ActionSort, ColumnName: column, NewValue: string(dir)}
	return s.apply(ctx, id, &params, func(w Workspace) (Workspace, string, error) {
		next, err := w.Sort(column, dir)
		if err != nil {
			return w, "", err
		}
		return next, SortNotice(column, dir), nil
	})
}

// ImportText replaces the dataset with pasted text.
func (s *Service) ImportText(ctx context.Context, id uuid.UUID, text string) (Snapshot, error) {
	d, err := ParsePaste(text)
	if err != nil {
		operationsTotal.WithLabelValues(string(ActionImport), resultLabel(err)).Inc()
		return Snapshot{}, err
	}
	return s.ImportDataset(ctx, id, SourcePaste, d)
}

// ImportDataset replaces the dataset with one parsed elsewhere.
func (s *Service) ImportDataset(ctx context.Context, id uuid.UUID, source string, d Dataset) (Snapshot, error) {
	params := AuditLogParams{Action: ActionImport, NewValue: source, RowsAffected: d.Len()}
	snap, err := s.apply(ctx, id, &params, func(w Workspace) (Workspace, string, error) {
		return w.ReplaceDataset(d), NoticeImported, nil
	})
	if err == nil {
		importRows.WithLabelValues(source).Observe(float64(d.Len()))
	}
	return snap, err
}

func (s *Service) Reset(ctx context.Context, id uuid.UUID) (Snapshot, error) {
	return s.apply(ctx, id, &AuditLogParams{Action: ActionReset},
		func(w Workspace) (Workspace, string, error) {
			return w.Reset(), NoticeReset, nil
		})
}

func (s *Service) SetAxis(ctx context.Context, id uuid.UUID, column string) (Snapshot, error) {
	params := AuditLogParams{Action: ActionRolesChange, ColumnName: column, NewValue: "axis"}
	return s.apply(ctx, id, &params, func(w Workspace) (Workspace, string, error) {
		next, err := w.SetAxis(column)
		return next, "", err
	})
}

func (s *Service) ToggleSeries(ctx context.Context, id uuid.UUID, column string) (Snapshot, error) {
	params := AuditLogParams{Action: ActionRolesChange, ColumnName: column, NewValue: "series"}
	return s.apply(ctx, id, &params, func(w Workspace) (Workspace, string, error) {
		next, err := w.ToggleSeries(column)
		return next, "", err
	})
}

// SettingsPatch holds optional chart setting updates; nil fields are kept.
type SettingsPatch struct {
	Kind       *ChartKind
	ShowLabels *bool
	Title      *string
}

// UpdateSettings applies every non-nil field of patch or none of them.
func (s *Service) UpdateSettings(ctx context.Context, id uuid.UUID, patch SettingsPatch) (Snapshot, error) {
	params := AuditLogParams{Action: ActionSettingsChange}
	if patch.Kind != nil {
		params.NewValue = string(*patch.Kind)
	}
	if patch.ShowLabels != nil {
		params.ColumnName = "showLabels=" + strconv.FormatBool(*patch.ShowLabels)
	}
	return s.apply(ctx, id, &params, func(w Workspace) (Workspace, string, error) {
		if patch.Kind != nil {
			var err error
			if w, err = w.SetChartKind(*patch.Kind); err != nil {
				return w, "", err
			}
		}
		if patch.ShowLabels != nil {
			w = w.SetShowLabels(*patch.ShowLabels)
		}
		if patch.Title != nil {
			w = w.SetTitle(*patch.Title)
		}
		return w, "", nil
	})
}

// Export runs fn with the current workspace while holding a render slot.
// format labels the duration metric.
func (s *Service) Export(ctx context.Context, id uuid.UUID, format string, fn func(Workspace) error) error {
	ws, err := s.Workspace(id)
	if err != nil {
		return err
	}

	if err := s.renders.Acquire(ctx); err != nil {
		return err
	}
	defer s.renders.Release()

	start := time.Now()
	err = fn(ws)
	renderDuration.WithLabelValues(format).Observe(time.Since(start).Seconds())
	if err != nil {
		slog.WarnContext(ctx, "export failed", "workspace_id", id, "format", format, "error", err)
	}
	return err
}

// RenderStatus reports the export limiter state.
func (s *Service) RenderStatus() RenderLimiterStatus {
	return s.renders.Status()
}

// DrainRenders blocks until in-flight exports finish or ctx is done.
func (s *Service) DrainRenders(ctx context.Context) error {
	return s.renders.WaitForDrain(ctx)
}
