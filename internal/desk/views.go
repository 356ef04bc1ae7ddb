package desk

import (
	"strconv"
	"strings"

	"partsdesk/internal/domain"
	"partsdesk/internal/i18n"
	"partsdesk/internal/partsapi"
)

type ViewID string

const (
	ViewEntry       ViewID = "new-entry"
	ViewNewRequests ViewID = "new-requests"
	ViewOrdered     ViewID = "ordered-waiting"
	ViewReceived    ViewID = "received"
	ViewToday       ViewID = "today"
	ViewMonth       ViewID = "month"
)

// View is one navigable section of the desk.
type View struct {
	ID    ViewID
	Title i18n.Key
	// Listing is empty for the entry form.
	Listing partsapi.Listing
	// Hidden lists row columns the table does not show.
	Hidden []int
}

// HasTable reports whether the view shows a listing.
func (v View) HasTable() bool {
	return v.Listing != ""
}

var views = []View{
	{ID: ViewEntry, Title: i18n.ViewNewEntry},
	{
		ID: ViewNewRequests, Title: i18n.ViewNewRequests, Listing: partsapi.ListingNewRequests,
		Hidden: []int{domain.ColOrderedQty, domain.ColReceivedQty, domain.ColStatus, domain.ColTime},
	},
	{
		ID: ViewOrdered, Title: i18n.ViewOrdered, Listing: partsapi.ListingOrderedWaiting,
		Hidden: []int{domain.ColReceivedQty, domain.ColStatus, domain.ColTime},
	},
	{
		ID: ViewReceived, Title: i18n.ViewReceived, Listing: partsapi.ListingReceived,
		Hidden: []int{domain.ColStatus, domain.ColTime},
	},
	{ID: ViewToday, Title: i18n.ViewToday, Listing: partsapi.ListingToday},
	{ID: ViewMonth, Title: i18n.ViewMonth, Listing: partsapi.ListingMonth},
}

// Views returns the navigation configuration in display order.
func Views() []View {
	return append([]View(nil), views...)
}

// LookupView finds a view by id.
func LookupView(id ViewID) (View, bool) {
	for _, v := range views {
		if v.ID == id {
			return v, true
		}
	}
	return View{}, false
}

// ColActions is the pseudo column holding the row buttons.
const ColActions = -1

type Column struct {
	Index int
	Title string
}

// TableRow is a decoded row paired with the actions its viewer may take.
type TableRow struct {
	domain.Row
	Actions []domain.Action
}

// Table is one fully built listing. A reload always produces a new Table.
type Table struct {
	View    ViewID
	Title   string
	Columns []Column
	Rows    []TableRow
	// Placeholder is shown instead of rows when there are none.
	Placeholder string
	// Printable is true for supervisors, who may export the table.
	Printable   bool
	RightToLeft bool

	loc *i18n.Localizer
}

// Row returns the row with the given request id.
func (t *Table) Row(id int64) (TableRow, bool) {
	for _, r := range t.Rows {
		if r.ID == id {
			return r, true
		}
	}
	return TableRow{}, false
}

// Cell renders one column of a row as display text. Status is rendered from
// the decoded enum, never echoed from the server label.
func (t *Table) Cell(r TableRow, col int) string {
	switch col {
	case domain.ColID:
		return strconv.FormatInt(r.ID, 10)
	case domain.ColSector:
		return r.Sector
	case domain.ColCategory:
		return r.Category
	case domain.ColDescription:
		return r.Description
	case domain.ColRequestedQty:
		return r.RequestedQty.String()
	case domain.ColUnit:
		return r.Unit
	case domain.ColNotes:
		return r.Notes
	case domain.ColPhoto:
		return r.Photo.ThumbnailOrURL()
	case domain.ColOrderedQty:
		return r.OrderedQty.String()
	case domain.ColReceivedQty:
		return r.ReceivedQty.String()
	case domain.ColStatus:
		if t.loc != nil {
			return t.loc.StatusLabel(r.Status)
		}
		return string(r.Status)
	case domain.ColDate:
		return r.Date
	case domain.ColTime:
		return r.Time
	case domain.ColUsername:
		return r.Username
	case ColActions:
		if len(r.Actions) == 0 {
			if t.loc != nil {
				return t.loc.T(i18n.NoActions)
			}
			return "-"
		}
		labels := make([]string, len(r.Actions))
		for i, a := range r.Actions {
			labels[i] = string(a)
			if t.loc != nil {
				labels[i] = t.loc.ActionLabel(a)
			}
		}
		return strings.Join(labels, " | ")
	}
	return ""
}

// PrintColumns are the visible columns without photo and actions.
func (t *Table) PrintColumns() []Column {
	var out []Column
	for _, c := range t.Columns {
		if c.Index == domain.ColPhoto || c.Index == ColActions {
			continue
		}
		out = append(out, c)
	}
	return out
}

func visibleColumns(v View, loc *i18n.Localizer) []Column {
	hidden := make(map[int]bool, len(v.Hidden))
	for _, c := range v.Hidden {
		hidden[c] = true
	}
	cols := make([]Column, 0, domain.RowColumns+1)
	for i := 0; i < domain.RowColumns; i++ {
		if !hidden[i] {
			cols = append(cols, Column{Index: i, Title: loc.Column(i)})
		}
	}
	return append(cols, Column{Index: ColActions, Title: loc.T(i18n.Actions)})
}
