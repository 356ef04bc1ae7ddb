// Package desk is the interaction layer of the spare-parts desk: view
// switching, the request entry form and the per-row table actions, all driven
// through a Presenter against the remote parts API.
package desk

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"partsdesk/internal/domain"
	"partsdesk/internal/export"
	"partsdesk/internal/i18n"
	"partsdesk/internal/logger"
)

// Options configures an App.
type Options struct {
	API       API
	Presenter Presenter
	Viewer    domain.Viewer
	Locale    string
	// Photos defaults to the local filesystem.
	Photos PhotoSource
	// Now defaults to time.Now; it stamps exports.
	Now func() time.Time
}

// App is the root controller of one operator session. Every exported method
// takes the App lock, so operations run one at a time in arrival order.
type App struct {
	mu sync.Mutex

	env     *env
	router  *ViewRouter
	form    *FormController
	actions *ActionController
	now     func() time.Time
}

func New(opts Options) *App {
	photos := opts.Photos
	if photos == nil {
		photos = OSPhotos{}
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}

	e := &env{
		api:   opts.API,
		ui:    opts.Presenter,
		loc:   i18n.New(opts.Locale),
		state: newState(opts.Viewer),
		log:   logger.WithComponent("desk"),
	}
	router := &ViewRouter{env: e}
	form := &FormController{env: e, router: router, photos: photos}
	router.form = form
	actions := &ActionController{env: e, router: router, form: form}
	router.actions = actions

	return &App{
		env:     e,
		router:  router,
		form:    form,
		actions: actions,
		now:     now,
	}
}

func (a *App) Localizer() *i18n.Localizer {
	return a.env.loc
}

// Inspect runs fn with the state locked. fn must not call other App methods.
func (a *App) Inspect(fn func(s *State)) {
	a.mu.Lock()
	defer a.mu.Unlock()
	fn(a.env.state)
}

func (a *App) Start(ctx context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.router.Start(ctx)
}

func (a *App) Activate(ctx context.Context, id ViewID) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.router.Activate(ctx, id)
}

func (a *App) Refresh(ctx context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.router.Refresh(ctx)
}

func (a *App) SetField(name, value string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.form.SetField(name, value)
}

func (a *App) SelectPhoto(path string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.form.SelectPhoto(path)
}

func (a *App) ClearPhoto() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.form.ClearPhoto()
}

func (a *App) RemoveCurrentPhoto() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.form.RemoveCurrentPhoto()
}

func (a *App) Submit(ctx context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.form.Submit(ctx)
}

func (a *App) ClearForm(ctx context.Context) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.form.Clear(ctx)
}

func (a *App) Perform(ctx context.Context, action domain.Action, id int64) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.actions.Perform(ctx, action, id)
}

func (a *App) SubmitDialog(ctx context.Context, input string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.actions.SubmitDialog(ctx, input)
}

func (a *App) CancelDialog() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.actions.CancelDialog()
}

// sheet converts the live table for export. Only supervisors may print.
func (a *App) sheet() (export.Sheet, error) {
	e := a.env
	if !e.state.viewer.Supervisor {
		e.ui.Alert(e.loc.T(i18n.ExportDenied))
		return export.Sheet{}, ErrNotPermitted
	}
	t := e.state.table
	if t == nil {
		return export.Sheet{}, ErrNoTable
	}

	cols := t.PrintColumns()
	s := export.Sheet{
		Title:          t.Title,
		PrintDateLabel: e.loc.T(i18n.PrintDate),
		PrintedAt:      a.now(),
		Headers:        make([]string, len(cols)),
		Rows:           make([][]string, 0, len(t.Rows)),
		RightToLeft:    t.RightToLeft,
	}
	for i, c := range cols {
		s.Headers[i] = c.Title
	}
	for _, r := range t.Rows {
		line := make([]string, len(cols))
		for i, c := range cols {
			line[i] = t.Cell(r, c.Index)
		}
		s.Rows = append(s.Rows, line)
	}
	return s, nil
}

// Export writes the live table to an XLSX file.
func (a *App) Export(path string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	s, err := a.sheet()
	if err != nil {
		return err
	}
	if err := export.Save(path, s); err != nil {
		return err
	}
	a.env.log.Info("Table exported", "view", a.env.state.active, "rows", len(s.Rows), "path", path)
	return nil
}

// ExportTo writes the live table as XLSX to w.
func (a *App) ExportTo(w io.Writer) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	s, err := a.sheet()
	if err != nil {
		return err
	}
	return export.Write(w, s)
}

func (a *App) canManageCategories() error {
	e := a.env
	if !e.state.viewer.CanManageCategories() {
		e.ui.Alert(e.loc.T(i18n.CategoriesDenied))
		return ErrNotPermitted
	}
	return nil
}

// ListCategories fetches the current categories from the server. It does not
// touch the form's cached dropdown list.
func (a *App) ListCategories(ctx context.Context) ([]domain.Category, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.env.api.ListCategories(ctx)
}

// AddCategory creates a category. The dropdown cache keeps its old contents
// until the next session.
func (a *App) AddCategory(ctx context.Context, name string) (*domain.Category, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if err := a.canManageCategories(); err != nil {
		return nil, err
	}
	cat, err := a.env.api.AddCategory(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("add category: %w", err)
	}
	a.env.log.Info("Category added", "id", cat.ID, "name", cat.Name)
	return cat, nil
}

func (a *App) RenameCategory(ctx context.Context, id int64, name string) (*domain.Category, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if err := a.canManageCategories(); err != nil {
		return nil, err
	}
	cat, err := a.env.api.RenameCategory(ctx, id, name)
	if err != nil {
		return nil, fmt.Errorf("rename category %d: %w", id, err)
	}
	return cat, nil
}

func (a *App) DeleteCategory(ctx context.Context, id int64) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if err := a.canManageCategories(); err != nil {
		return err
	}
	if err := a.env.api.DeleteCategory(ctx, id); err != nil {
		return fmt.Errorf("delete category %d: %w", id, err)
	}
	a.env.log.Info("Category deleted", "id", id)
	return nil
}
