package desk

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"

	"partsdesk/internal/domain"
	"partsdesk/internal/i18n"
	"partsdesk/internal/partsapi"
)

// API is the part of the remote client the desk uses.
type API interface {
	ListCategories(ctx context.Context) ([]domain.Category, error)
	ListRequests(ctx context.Context, listing partsapi.Listing) ([]partsapi.RowTuple, error)
	GetRequest(ctx context.Context, id int64) (*domain.RequestDetail, error)
	Save(ctx context.Context, p *partsapi.SavePayload) (*partsapi.Result, error)
	Delete(ctx context.Context, id int64) (*partsapi.Result, error)
	ConfirmOrder(ctx context.Context, id int64, qty domain.Quantity) (*partsapi.Result, error)
	ConfirmReception(ctx context.Context, id int64, qty domain.Quantity) (*partsapi.Result, error)
	AddCategory(ctx context.Context, name string) (*domain.Category, error)
	RenameCategory(ctx context.Context, id int64, name string) (*domain.Category, error)
	DeleteCategory(ctx context.Context, id int64) error
	ProbePhoto(ctx context.Context, ref string) error
	Resolve(ref string) (string, error)
}

// env is what every controller shares.
type env struct {
	api   API
	ui    Presenter
	loc   *i18n.Localizer
	state *State
	log   *slog.Logger
}

// ViewRouter switches sections and (re)loads their tables.
type ViewRouter struct {
	*env
	form    *FormController
	actions *ActionController
}

// Start activates the first configured view.
func (r *ViewRouter) Start(ctx context.Context) error {
	return r.Activate(ctx, views[0].ID)
}

// Activate shows view id and loads its content.
func (r *ViewRouter) Activate(ctx context.Context, id ViewID) error {
	v, ok := LookupView(id)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownView, id)
	}

	r.ui.ShowView(v, r.loc.T(v.Title))
	r.state.active = v.ID
	r.state.table = nil

	if v.HasTable() {
		return r.load(ctx, v)
	}
	r.form.Clear(ctx)
	return nil
}

// Refresh reloads the active view from the static configuration. On the
// entry form only the stale message is cleared.
func (r *ViewRouter) Refresh(ctx context.Context) error {
	v, ok := LookupView(r.state.active)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownView, r.state.active)
	}
	if !v.HasTable() {
		r.form.setBanner(Banner{})
		return nil
	}
	return r.load(ctx, v)
}

// load tears down the current table and builds a new one.
func (r *ViewRouter) load(ctx context.Context, v View) error {
	r.state.table = nil
	r.ui.TableLoading(v.ID, r.loc.T(i18n.LoadingData))

	tuples, err := r.api.ListRequests(ctx, v.Listing)
	if err != nil {
		msg := r.loc.T(i18n.ErrorLoadingData)
		if errors.Is(err, partsapi.ErrNoData) {
			msg = r.loc.T(i18n.NoDataAvailable)
		} else if m, ok := partsapi.ServerMessage(err); ok {
			msg = m
		}
		r.log.Warn("Failed to load table", "view", v.ID, "error", err)
		r.ui.TableError(v.ID, msg)
		return fmt.Errorf("load %s: %w", v.ID, err)
	}

	t := &Table{
		View:        v.ID,
		Title:       r.loc.T(v.Title),
		Columns:     visibleColumns(v, r.loc),
		Rows:        make([]TableRow, 0, len(tuples)),
		Printable:   r.state.viewer.Supervisor,
		RightToLeft: r.loc.RightToLeft(),
		loc:         r.loc,
	}
	for _, tuple := range tuples {
		row, err := domain.DecodeRow(tuple, i18n.ResolveStatus)
		if err != nil {
			r.log.Warn("Skipping undecodable row", "view", v.ID, "error", err)
			continue
		}
		t.Rows = append(t.Rows, TableRow{
			Row:     row,
			Actions: r.actions.Actions(row),
		})
	}
	sortRows(t.Rows)
	if len(t.Rows) == 0 {
		t.Placeholder = r.loc.T(i18n.NoDataToDisplay)
	}

	r.state.table = t
	r.ui.RenderTable(t)
	r.log.Debug("Table loaded", "view", v.ID, "rows", len(t.Rows))
	return nil
}

// sortRows orders by id descending.
func sortRows(rows []TableRow) {
	slices.SortStableFunc(rows, func(a, b TableRow) int {
		return cmp.Compare(b.ID, a.ID)
	})
}
