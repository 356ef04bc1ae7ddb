// Package console is the terminal front-end of the desk: a line-oriented
// Presenter and the shell that turns typed commands into App operations.
package console

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"sync"
	"text/tabwriter"

	"github.com/dustin/go-humanize"

	"partsdesk/internal/desk"
	"partsdesk/internal/domain"
	"partsdesk/internal/i18n"
	"partsdesk/internal/partsapi"
)

// Terminal renders desk state as text. Answers to Confirm are read from the
// same input the shell reads commands from.
type Terminal struct {
	mu  sync.Mutex
	out io.Writer
	in  *bufio.Reader
	loc *i18n.Localizer
}

var _ desk.Presenter = (*Terminal)(nil)

func NewTerminal(in io.Reader, out io.Writer, locale string) *Terminal {
	return &Terminal{
		out: out,
		in:  bufio.NewReader(in),
		loc: i18n.New(locale),
	}
}

// ReadLine returns the next input line without its line ending. The last
// line of the input is returned even when it lacks a newline.
func (t *Terminal) ReadLine() (string, error) {
	line, err := t.in.ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func (t *Terminal) printf(format string, args ...any) {
	t.mu.Lock()
	defer t.mu.Unlock()
	fmt.Fprintf(t.out, format, args...)
}

// Println writes one line of shell output.
func (t *Terminal) Println(a ...any) {
	t.mu.Lock()
	defer t.mu.Unlock()
	fmt.Fprintln(t.out, a...)
}

// Prompt writes p without a trailing newline.
func (t *Terminal) Prompt(p string) {
	t.printf("%s", p)
}

func (t *Terminal) ShowView(v desk.View, title string) {
	t.printf("\n== %s ==\n", title)
}

func (t *Terminal) TableLoading(v desk.ViewID, placeholder string) {
	t.printf("%s\n", placeholder)
}

func (t *Terminal) RenderTable(tbl *desk.Table) {
	t.mu.Lock()
	defer t.mu.Unlock()

	fmt.Fprintf(t.out, "%s\n", tbl.Title)
	if len(tbl.Rows) == 0 {
		fmt.Fprintf(t.out, "%s\n", tbl.Placeholder)
		return
	}

	tw := tabwriter.NewWriter(t.out, 0, 4, 2, ' ', 0)
	titles := make([]string, len(tbl.Columns))
	for i, c := range tbl.Columns {
		titles[i] = c.Title
	}
	fmt.Fprintln(tw, strings.Join(titles, "\t"))
	for _, r := range tbl.Rows {
		cells := make([]string, len(tbl.Columns))
		for i, c := range tbl.Columns {
			cells[i] = oneLine(tbl.Cell(r, c.Index))
		}
		fmt.Fprintln(tw, strings.Join(cells, "\t"))
	}
	tw.Flush()
}

func (t *Terminal) TableError(v desk.ViewID, msg string) {
	t.printf("! %s\n", msg)
}

func (t *Terminal) RenderForm(f desk.FormModel) {
	t.mu.Lock()
	defer t.mu.Unlock()

	fmt.Fprintf(t.out, "-- %s --\n", f.Title)
	tw := tabwriter.NewWriter(t.out, 0, 4, 2, ' ', 0)
	field := func(name string, col int, required bool, value string) {
		label := t.loc.Column(col)
		if required {
			label += " *"
		}
		line := fmt.Sprintf("%s\t%s\t%s", name, label, oneLine(value))
		if msg, bad := f.Invalid[name]; bad {
			line += "\t<- " + msg
		}
		fmt.Fprintln(tw, line)
	}

	category := f.CategoryHint
	for _, c := range f.Categories {
		if c.ID == f.CategoryID {
			category = fmt.Sprintf("%s (%d)", c.Name, c.ID)
		}
	}
	field(partsapi.FieldCategory, domain.ColCategory, true, category)
	field(partsapi.FieldDescription, domain.ColDescription, true, f.Description)
	field(partsapi.FieldRequestedQty, domain.ColRequestedQty, true, f.RequestedQty)
	field(partsapi.FieldUnit, domain.ColUnit, true, f.Unit)
	field(partsapi.FieldNotes, domain.ColNotes, false, f.Notes)
	if f.StatusSection {
		field(partsapi.FieldStatus, domain.ColStatus, false, t.loc.StatusLabel(f.Status))
		if f.ReceivedQtyShown {
			field(partsapi.FieldReceivedQty, domain.ColReceivedQty, true, f.ReceivedQty)
		}
	}
	field(partsapi.FieldPhoto, domain.ColPhoto, false, t.photoLine(f))
	tw.Flush()

	if len(f.Categories) > 0 {
		opts := make([]string, len(f.Categories))
		for i, c := range f.Categories {
			opts[i] = fmt.Sprintf("%d=%s", c.ID, c.Name)
		}
		fmt.Fprintf(t.out, "   %s\n", strings.Join(opts, "  "))
	}
}

func (t *Terminal) photoLine(f desk.FormModel) string {
	var parts []string
	switch {
	case f.CurrentPhotoLink != "":
		parts = append(parts, t.loc.T(i18n.PhotoPreviewError, f.CurrentPhotoLink))
	case f.CurrentPhoto != "":
		parts = append(parts, f.CurrentPhoto)
	}
	if f.Photo != nil {
		parts = append(parts, fmt.Sprintf("+ %s (%s, %s)", f.Photo.Name, f.Photo.ContentType, humanize.IBytes(uint64(f.Photo.Size))))
	}
	return strings.Join(parts, " ")
}

func (t *Terminal) FormMessage(b desk.Banner) {
	if b.Text == "" {
		return
	}
	prefix := map[desk.BannerKind]string{
		desk.BannerInfo:    "[i]",
		desk.BannerSuccess: "[ok]",
		desk.BannerWarning: "[!]",
		desk.BannerError:   "[x]",
	}[b.Kind]
	for _, line := range strings.Split(b.Text, "\n") {
		t.printf("%s %s\n", prefix, line)
	}
}

func (t *Terminal) Alert(msg string) {
	t.printf("!! %s\n", msg)
}

// Confirm accepts y or yes in either UI language; anything else declines.
func (t *Terminal) Confirm(msg string) bool {
	t.printf("%s [y/N] ", msg)
	answer, err := t.ReadLine()
	if err != nil {
		return false
	}
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes", "ن", "نعم":
		return true
	}
	return false
}

func (t *Terminal) OpenQuantityDialog(d desk.QuantityDialog) {
	t.printf("\n-- %s --\n%s: %s\n", d.Title, d.ReferenceLabel, d.Reference)
	t.dialogPrompt(d)
}

func (t *Terminal) CloseQuantityDialog(d desk.QuantityDialog) {}

func (t *Terminal) DialogError(d desk.QuantityDialog, msg string) {
	t.printf("! %s\n", msg)
	t.dialogPrompt(d)
}

func (t *Terminal) dialogPrompt(d desk.QuantityDialog) {
	t.printf("%s [%s] (cancel to close): ", d.InputLabel, d.Default)
}

func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
