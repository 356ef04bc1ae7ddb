package desk

// BannerKind is the severity of a form message.
type BannerKind int

const (
	BannerInfo BannerKind = iota
	BannerSuccess
	BannerWarning
	BannerError
)

// Banner is the message area above the entry form. A zero Banner clears it.
type Banner struct {
	Kind BannerKind
	Text string
}

// Presenter renders desk state. Implementations must not call back into the
// App from these methods; the App lock is held while they run.
type Presenter interface {
	// ShowView hides every other section and marks v active.
	ShowView(v View, title string)
	TableLoading(v ViewID, placeholder string)
	// RenderTable replaces whatever table was shown for t.View.
	RenderTable(t *Table)
	TableError(v ViewID, msg string)

	RenderForm(f FormModel)
	FormMessage(b Banner)

	// Alert is a blocking notice.
	Alert(msg string)
	// Confirm asks a yes/no question and blocks for the answer.
	Confirm(msg string) bool

	OpenQuantityDialog(d QuantityDialog)
	CloseQuantityDialog(d QuantityDialog)
	DialogError(d QuantityDialog, msg string)
}
