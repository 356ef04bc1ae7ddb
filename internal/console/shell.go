package console

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"partsdesk/internal/desk"
	"partsdesk/internal/domain"
	"partsdesk/internal/i18n"
	"partsdesk/internal/logger"
	"partsdesk/internal/partsapi"
)

// Shell reads commands from the terminal and drives the App.
type Shell struct {
	app       *desk.App
	term      *Terminal
	exportDir string
}

func NewShell(app *desk.App, term *Terminal, exportDir string) *Shell {
	return &Shell{app: app, term: term, exportDir: exportDir}
}

var actionCommands = map[string]domain.Action{
	"edit":    domain.ActionEdit,
	"delete":  domain.ActionDelete,
	"order":   domain.ActionConfirmOrder,
	"receive": domain.ActionConfirmReception,
	"reorder": domain.ActionReorder,
}

const help = `views                       list views
view <id>                   switch view
refresh                     reload the table or clear the form message
show                        redraw the current view
set <field> <value>         change a form field
photo <path>                pick a new photo
photo-clear                 drop the picked photo
remove-photo                remove the stored photo on save
submit                      save the form
clear                       reset the form
edit|delete|order|receive|reorder <id>
export <file>               write the table to an .xlsx file
categories                  list categories
category-add <name>
category-rename <id> <name>
category-delete <id>
help
quit`

// Run starts the desk and processes input until quit or end of input.
func (s *Shell) Run(ctx context.Context) error {
	if err := s.app.Start(ctx); err != nil {
		logger.Warn("Initial view failed to load", "error", err)
	}
	for {
		if !s.dialogOpen() {
			s.term.Prompt("> ")
		}
		line, err := s.term.ReadLine()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("read input: %w", err)
		}
		if quit := s.Exec(ctx, line); quit {
			return nil
		}
	}
}

func (s *Shell) dialogOpen() bool {
	var open bool
	s.app.Inspect(func(st *desk.State) { _, open = st.Dialog() })
	return open
}

// Exec runs one input line. While a quantity dialog is open the line is its
// answer. It reports whether the shell should stop.
func (s *Shell) Exec(ctx context.Context, line string) bool {
	if s.dialogOpen() {
		input := strings.TrimSpace(line)
		var err error
		if strings.EqualFold(input, "cancel") {
			err = s.app.CancelDialog()
		} else {
			err = s.app.SubmitDialog(ctx, input)
		}
		if err != nil {
			logger.Debug("Dialog submission failed", "error", err)
		}
		return false
	}

	cmd, rest := cut(line)
	if cmd == "" {
		return false
	}
	err := s.dispatch(ctx, cmd, rest)
	if errors.Is(err, errQuit) {
		return true
	}
	s.report(err)
	return false
}

var (
	errQuit  = errors.New("quit")
	errUsage = errors.New("usage")
)

func (s *Shell) dispatch(ctx context.Context, cmd, rest string) error {
	if action, ok := actionCommands[cmd]; ok {
		id, err := parseID(rest)
		if err != nil {
			return err
		}
		return s.app.Perform(ctx, action, id)
	}

	switch cmd {
	case "quit", "exit":
		return errQuit
	case "help":
		s.term.Println(help)
	case "views":
		s.views()
	case "view":
		return s.app.Activate(ctx, desk.ViewID(rest))
	case "refresh":
		return s.app.Refresh(ctx)
	case "show":
		s.show()
	case "set":
		name, value := cut(rest)
		if name == "" {
			return fmt.Errorf("%w: set <field> <value>", errUsage)
		}
		return s.app.SetField(name, value)
	case "photo":
		if rest == "" {
			return fmt.Errorf("%w: photo <path>", errUsage)
		}
		return s.app.SelectPhoto(rest)
	case "photo-clear":
		s.app.ClearPhoto()
	case "remove-photo":
		return s.app.RemoveCurrentPhoto()
	case "submit":
		return s.app.Submit(ctx)
	case "clear":
		s.app.ClearForm(ctx)
	case "export":
		if rest == "" {
			return fmt.Errorf("%w: export <file>", errUsage)
		}
		path := rest
		if !filepath.IsAbs(path) && s.exportDir != "" {
			path = filepath.Join(s.exportDir, path)
		}
		if err := s.app.Export(path); err != nil {
			return err
		}
		s.term.Println(path)
	case "categories":
		return s.categoryFailed(s.categories(ctx))
	case "category-add":
		if rest == "" {
			return fmt.Errorf("%w: category-add <name>", errUsage)
		}
		c, err := s.app.AddCategory(ctx, rest)
		if err != nil {
			return s.categoryFailed(err)
		}
		s.term.Println(c.ID, c.Name)
	case "category-rename":
		idText, name := cut(rest)
		id, err := parseID(idText)
		if err != nil || name == "" {
			return fmt.Errorf("%w: category-rename <id> <name>", errUsage)
		}
		c, err := s.app.RenameCategory(ctx, id, name)
		if err != nil {
			return s.categoryFailed(err)
		}
		s.term.Println(c.ID, c.Name)
	case "category-delete":
		id, err := parseID(rest)
		if err != nil {
			return err
		}
		return s.categoryFailed(s.app.DeleteCategory(ctx, id))
	default:
		s.term.Println(s.app.Localizer().T(i18n.UnknownCommand, cmd))
	}
	return nil
}

// report prints errors the presenter has not already shown.
func (s *Shell) report(err error) {
	if err == nil {
		return
	}
	switch {
	case errors.Is(err, errUsage),
		errors.Is(err, desk.ErrUnknownView),
		errors.Is(err, desk.ErrUnknownField),
		errors.Is(err, desk.ErrInvalidValue),
		errors.Is(err, desk.ErrNoTable),
		errors.Is(err, desk.ErrRowNotFound):
		s.term.Println("error:", err)
	default:
		logger.Debug("Command failed", "error", err)
	}
}

// categoryFailed shows a category endpoint failure. Permission refusals were
// already alerted by the App.
func (s *Shell) categoryFailed(err error) error {
	if err == nil || errors.Is(err, desk.ErrNotPermitted) {
		return err
	}
	if msg, ok := partsapi.ServerMessage(err); ok {
		s.term.Alert(msg)
	} else {
		s.term.Alert(err.Error())
	}
	return err
}

func (s *Shell) views() {
	loc := s.app.Localizer()
	s.app.Inspect(func(st *desk.State) {
		for _, v := range desk.Views() {
			mark := " "
			if v.ID == st.Active() {
				mark = "*"
			}
			s.term.Println(mark, v.ID, "-", loc.T(v.Title))
		}
	})
}

func (s *Shell) show() {
	s.app.Inspect(func(st *desk.State) {
		if d, open := st.Dialog(); open {
			s.term.OpenQuantityDialog(d)
			return
		}
		if st.Active() == desk.ViewEntry {
			s.term.RenderForm(st.Form())
			s.term.FormMessage(st.Banner())
			return
		}
		if t := st.Table(); t != nil {
			s.term.RenderTable(t)
		}
	})
}

func (s *Shell) categories(ctx context.Context) error {
	cats, err := s.app.ListCategories(ctx)
	if err != nil {
		return err
	}
	s.term.mu.Lock()
	defer s.term.mu.Unlock()
	tw := tabwriter.NewWriter(s.term.out, 0, 4, 2, ' ', 0)
	for _, c := range cats {
		fmt.Fprintf(tw, "%d\t%s\n", c.ID, c.Name)
	}
	return tw.Flush()
}

func cut(s string) (head, tail string) {
	s = strings.TrimSpace(s)
	head, tail, _ = strings.Cut(s, " ")
	return head, strings.TrimSpace(tail)
}

func parseID(s string) (int64, error) {
	id, err := partsapi.ParseID(s)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", errUsage, err)
	}
	return id, nil
}
