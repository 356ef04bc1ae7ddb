package desk_test

import (
	"context"
	"io/fs"
	"net/http"
	"testing"
	"testing/fstest"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"partsdesk/internal/desk"
	"partsdesk/internal/domain"
	"partsdesk/internal/partsapi"
	"partsdesk/internal/partsapi/partsapitest"
)

// mockPresenter records every presenter call.
type mockPresenter struct {
	mock.Mock
}

func (m *mockPresenter) ShowView(v desk.View, title string)             { m.Called(v, title) }
func (m *mockPresenter) TableLoading(v desk.ViewID, placeholder string) { m.Called(v, placeholder) }
func (m *mockPresenter) RenderTable(t *desk.Table)                      { m.Called(t) }
func (m *mockPresenter) TableError(v desk.ViewID, msg string)           { m.Called(v, msg) }
func (m *mockPresenter) RenderForm(f desk.FormModel)                    { m.Called(f) }
func (m *mockPresenter) FormMessage(b desk.Banner)                      { m.Called(b) }
func (m *mockPresenter) Alert(msg string)                               { m.Called(msg) }
func (m *mockPresenter) Confirm(msg string) bool                        { return m.Called(msg).Bool(0) }
func (m *mockPresenter) OpenQuantityDialog(d desk.QuantityDialog)       { m.Called(d) }
func (m *mockPresenter) CloseQuantityDialog(d desk.QuantityDialog)      { m.Called(d) }
func (m *mockPresenter) DialogError(d desk.QuantityDialog, msg string)  { m.Called(d, msg) }

// quiet accepts every rendering call. Confirm is left to each test.
func (m *mockPresenter) quiet() {
	m.On("ShowView", mock.Anything, mock.Anything).Maybe()
	m.On("TableLoading", mock.Anything, mock.Anything).Maybe()
	m.On("RenderTable", mock.Anything).Maybe()
	m.On("TableError", mock.Anything, mock.Anything).Maybe()
	m.On("RenderForm", mock.Anything).Maybe()
	m.On("FormMessage", mock.Anything).Maybe()
	m.On("Alert", mock.Anything).Maybe()
	m.On("OpenQuantityDialog", mock.Anything).Maybe()
	m.On("CloseQuantityDialog", mock.Anything).Maybe()
	m.On("DialogError", mock.Anything, mock.Anything).Maybe()
}

// countingPhotos serves photos from memory and counts content reads.
type countingPhotos struct {
	fsys  fstest.MapFS
	reads int
}

func (c *countingPhotos) Stat(path string) (fs.FileInfo, error) { return fs.Stat(c.fsys, path) }

func (c *countingPhotos) ReadFile(path string) ([]byte, error) {
	c.reads++
	return fs.ReadFile(c.fsys, path)
}

var (
	alice      = domain.Viewer{Username: "alice"}
	bob        = domain.Viewer{Username: "bob"}
	supervisor = domain.Viewer{Username: "sam", Supervisor: true}
	manager    = domain.Viewer{Username: "mel", CategoryManager: true}

	pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")
	printedAt = time.Date(2026, 10, 19, 9, 30, 0, 0, time.UTC)
)

type harness struct {
	t      *testing.T
	ctx    context.Context
	srv    *partsapitest.Server
	ui     *mockPresenter
	photos *countingPhotos
	app    *desk.App
}

func newHarness(t *testing.T, viewer domain.Viewer) *harness {
	t.Helper()
	srv := partsapitest.NewServer()
	t.Cleanup(srv.Close)
	srv.SetCategories(
		domain.Category{ID: 1, Name: "Bolts"},
		domain.Category{ID: 2, Name: "Filters"},
		domain.Category{ID: 3, Name: "Fasteners"},
	)

	client, err := partsapi.New(partsapi.Options{BaseURL: srv.BaseURL(), CSRFToken: "tok", SessionID: "s1"})
	require.NoError(t, err)

	ui := &mockPresenter{}
	ui.quiet()
	photos := &countingPhotos{fsys: fstest.MapFS{
		"small.png": {Data: pngHeader},
		"big.jpg":   {Data: make([]byte, domain.MaxPhotoBytes+1)},
		"edge.jpg":  {Data: make([]byte, domain.MaxPhotoBytes)},
	}}

	app := desk.New(desk.Options{
		API:       client,
		Presenter: ui,
		Viewer:    viewer,
		Locale:    "en",
		Photos:    photos,
		Now:       func() time.Time { return printedAt },
	})
	return &harness{t: t, ctx: context.Background(), srv: srv, ui: ui, photos: photos, app: app}
}

func (h *harness) form() desk.FormModel {
	var f desk.FormModel
	h.app.Inspect(func(s *desk.State) { f = s.Form() })
	return f
}

func (h *harness) banner() desk.Banner {
	var b desk.Banner
	h.app.Inspect(func(s *desk.State) { b = s.Banner() })
	return b
}

func (h *harness) table() *desk.Table {
	var t *desk.Table
	h.app.Inspect(func(s *desk.State) { t = s.Table() })
	return t
}

func (h *harness) dialog() (desk.QuantityDialog, bool) {
	var (
		d  desk.QuantityDialog
		ok bool
	)
	h.app.Inspect(func(s *desk.State) { d, ok = s.Dialog() })
	return d, ok
}

func (h *harness) calls(method, path string) []partsapitest.Call {
	return h.srv.CallsTo(method, path)
}

func (h *harness) listingCalls(l partsapi.Listing) int {
	return len(h.calls(http.MethodGet, string(l)))
}

// fill enters a valid new request.
func (h *harness) fill() {
	h.t.Helper()
	require.NoError(h.t, h.app.SetField(partsapi.FieldCategory, "1"))
	require.NoError(h.t, h.app.SetField(partsapi.FieldDescription, "Bolt M6"))
	require.NoError(h.t, h.app.SetField(partsapi.FieldRequestedQty, "10"))
	require.NoError(h.t, h.app.SetField(partsapi.FieldUnit, "pcs"))
}
