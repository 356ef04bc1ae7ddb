package desk

import (
	"maps"

	"partsdesk/internal/domain"
)

// FormMode says what the entry form is currently doing.
type FormMode int

const (
	ModeNew FormMode = iota
	ModeEdit
	ModeReorder
)

// SelectedPhoto is a new photo picked for upload.
type SelectedPhoto struct {
	Name        string
	ContentType string
	Size        int64
	// Preview is a data URL of the file contents.
	Preview string

	data []byte
}

// FormModel is everything the entry form shows.
type FormModel struct {
	Mode  FormMode
	Title string
	// ID is zero unless an existing request is being edited.
	ID int64

	Categories []domain.Category
	// CategoryHint is the placeholder option: select, loading or a
	// no-categories notice.
	CategoryHint string
	CategoryID   int64

	Description  string
	RequestedQty string
	Unit         string
	Notes        string

	// KnownStatus is resubmitted when the status section is hidden.
	KnownStatus   domain.Status
	StatusSection bool
	Status        domain.Status
	// ReceivedQtyShown also means the field is required.
	ReceivedQtyShown bool
	ReceivedQty      string

	CurrentPhoto string
	// CurrentPhotoLink is set when the stored photo cannot be previewed and
	// only a link to it can be offered.
	CurrentPhotoLink string
	RemovePhoto      bool
	Photo            *SelectedPhoto

	// Invalid maps field names to their validation message.
	Invalid    map[string]string
	Submitting bool
}

func (f FormModel) clone() FormModel {
	out := f
	out.Categories = append([]domain.Category(nil), f.Categories...)
	out.Invalid = maps.Clone(f.Invalid)
	if f.Photo != nil {
		p := *f.Photo
		out.Photo = &p
	}
	return out
}

// DialogKind distinguishes the two quantity dialogs.
type DialogKind int

const (
	DialogConfirmOrder DialogKind = iota
	DialogConfirmReception
)

// QuantityDialog is the modal that asks for an ordered or received quantity.
type QuantityDialog struct {
	Kind      DialogKind
	RequestID int64
	// Target is the status the request moves to once the quantity is accepted.
	Target domain.Status
	Title  string
	// Reference is the quantity shown for comparison.
	ReferenceLabel string
	Reference      domain.Quantity
	InputLabel     string
	// Default prefills the input.
	Default    domain.Quantity
	Error      string
	Submitting bool
}

// State is the application state of one operator session. It is owned by
// App and only touched while App's lock is held.
type State struct {
	viewer domain.Viewer

	active ViewID
	table  *Table

	categories       []domain.Category
	categoriesLoaded bool

	form   FormModel
	banner Banner
	dialog *QuantityDialog
}

func newState(viewer domain.Viewer) *State {
	return &State{viewer: viewer, form: FormModel{Status: domain.StatusNew, KnownStatus: domain.StatusNew}}
}

func (s *State) Viewer() domain.Viewer { return s.viewer }

// Active is the view currently shown.
func (s *State) Active() ViewID { return s.active }

// Table is the live table, or nil when the active view has none.
func (s *State) Table() *Table { return s.table }

// Categories returns the cached category list and whether it was loaded.
func (s *State) Categories() ([]domain.Category, bool) {
	return append([]domain.Category(nil), s.categories...), s.categoriesLoaded
}

func (s *State) Form() FormModel { return s.form.clone() }

func (s *State) Banner() Banner { return s.banner }

func (s *State) Dialog() (QuantityDialog, bool) {
	if s.dialog == nil {
		return QuantityDialog{}, false
	}
	return *s.dialog, true
}
