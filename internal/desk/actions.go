package desk

import (
	"context"
	"errors"
	"fmt"

	"partsdesk/internal/domain"
	"partsdesk/internal/i18n"
	"partsdesk/internal/partsapi"
)

// ActionController runs the per-row actions of the live table.
type ActionController struct {
	*env
	router *ViewRouter
	form   *FormController
}

// Actions returns the eligible actions for a row. An empty result renders
// as the no-actions placeholder.
func (a *ActionController) Actions(row domain.Row) []domain.Action {
	return domain.AvailableActions(row.Status, a.state.viewer, row.Username)
}

// Perform dispatches action for request id. The eligibility table is checked
// again against the row in the live table before anything is sent.
func (a *ActionController) Perform(ctx context.Context, action domain.Action, id int64) error {
	t := a.state.table
	if t == nil {
		return ErrNoTable
	}
	row, ok := t.Row(id)
	if !ok {
		return fmt.Errorf("%w: %d", ErrRowNotFound, id)
	}
	if !domain.Allowed(action, row.Status, a.state.viewer, row.Username) {
		if action == domain.ActionConfirmOrder && !a.state.viewer.Supervisor {
			a.ui.Alert(a.loc.T(i18n.SupervisorOnly))
		} else {
			a.ui.Alert(a.loc.T(i18n.NotAllowed, id))
		}
		return fmt.Errorf("%w: %s on %d (%s)", ErrActionNotAllowed, action, id, row.Status)
	}

	a.log.Info("Row action", "action", action, "id", id, "status", row.Status)
	switch action {
	case domain.ActionEdit:
		return a.edit(ctx, id)
	case domain.ActionDelete:
		return a.delete(ctx, id)
	case domain.ActionConfirmOrder:
		return a.confirmOrder(ctx, id, row.Status)
	case domain.ActionConfirmReception:
		return a.confirmReception(ctx, id, row.Status)
	case domain.ActionReorder:
		return a.reorder(ctx, id)
	}
	return fmt.Errorf("%w: %s", ErrActionNotAllowed, action)
}

// failure is the text shown for a failed call: the server's own words when it
// sent any, otherwise the transport error.
func failure(err error) string {
	if msg, ok := partsapi.ServerMessage(err); ok {
		return msg
	}
	return err.Error()
}

func (a *ActionController) edit(ctx context.Context, id int64) error {
	d, err := a.api.GetRequest(ctx, id)
	if err != nil {
		a.ui.Alert(a.loc.T(i18n.ErrorFetchEdit, failure(err)))
		return fmt.Errorf("fetch request %d: %w", id, err)
	}
	if err := a.router.Activate(ctx, ViewEntry); err != nil {
		return err
	}
	a.form.PopulateEdit(ctx, d)
	return nil
}

func (a *ActionController) reorder(ctx context.Context, id int64) error {
	d, err := a.api.GetRequest(ctx, id)
	if err != nil {
		a.ui.Alert(a.loc.T(i18n.ErrorFetchReorder, failure(err)))
		return fmt.Errorf("fetch request %d: %w", id, err)
	}
	if err := a.router.Activate(ctx, ViewEntry); err != nil {
		return err
	}
	a.form.PopulateReorder(ctx, d)
	return nil
}

func (a *ActionController) delete(ctx context.Context, id int64) error {
	if !a.ui.Confirm(a.loc.T(i18n.ConfirmDelete, id)) {
		return nil
	}
	res, err := a.api.Delete(ctx, id)
	if err != nil {
		var rejected *partsapi.RejectedError
		if errors.As(err, &rejected) && rejected.Message != "" {
			a.ui.Alert(rejected.Message)
		} else {
			a.ui.Alert(a.loc.T(i18n.ErrorDeleting, failure(err)))
		}
		return fmt.Errorf("delete request %d: %w", id, err)
	}
	a.ui.Alert(res.Message)
	return a.router.Refresh(ctx)
}

func (a *ActionController) confirmOrder(ctx context.Context, id int64, from domain.Status) error {
	d, err := a.api.GetRequest(ctx, id)
	if err != nil {
		a.ui.Alert(a.loc.T(i18n.ErrorFetchOrder, failure(err)))
		return fmt.Errorf("fetch request %d: %w", id, err)
	}
	to, _ := domain.Transition(domain.ActionConfirmOrder, from)
	a.openDialog(QuantityDialog{
		Kind:           DialogConfirmOrder,
		RequestID:      d.ID,
		Target:         to,
		Title:          a.loc.T(i18n.DialogOrderTitle, d.ID),
		ReferenceLabel: a.loc.T(i18n.RequestedQtyRef),
		Reference:      d.RequestedQty,
		InputLabel:     a.loc.T(i18n.OrderedQtyLabel),
		Default:        d.RequestedQty,
	})
	return nil
}

func (a *ActionController) confirmReception(ctx context.Context, id int64, from domain.Status) error {
	d, err := a.api.GetRequest(ctx, id)
	if err != nil {
		a.ui.Alert(a.loc.T(i18n.ErrorFetchReceipt, failure(err)))
		return fmt.Errorf("fetch request %d: %w", id, err)
	}
	to, _ := domain.Transition(domain.ActionConfirmReception, from)
	a.openDialog(QuantityDialog{
		Kind:           DialogConfirmReception,
		RequestID:      d.ID,
		Target:         to,
		Title:          a.loc.T(i18n.DialogRecvTitle, d.ID),
		ReferenceLabel: a.loc.T(i18n.OrderedQtyRef),
		Reference:      d.OrderedQty,
		InputLabel:     a.loc.T(i18n.ReceivedQtyLabel),
		Default:        d.OrderedQty,
	})
	return nil
}

func (a *ActionController) openDialog(d QuantityDialog) {
	if prev := a.state.dialog; prev != nil {
		a.ui.CloseQuantityDialog(*prev)
	}
	a.state.dialog = &d
	a.ui.OpenQuantityDialog(d)
}

// SubmitDialog sends the quantity typed into the open dialog. A blank input
// submits the prefilled default.
func (a *ActionController) SubmitDialog(ctx context.Context, input string) error {
	d := a.state.dialog
	if d == nil {
		return ErrNoDialog
	}
	if d.Submitting {
		return ErrSubmitInProgress
	}

	qty := d.Default
	if input != "" {
		parsed, err := domain.ParseQuantity(input)
		if err != nil {
			return a.dialogError(d, a.loc.T(i18n.QuantityRequired), fmt.Errorf("%w: %w", ErrInvalidValue, err))
		}
		qty = parsed
	}
	if !qty.Positive() {
		return a.dialogError(d, a.loc.T(i18n.QuantityRequired), fmt.Errorf("%w: quantity must be positive", ErrInvalidValue))
	}

	d.Error = ""
	d.Submitting = true
	var (
		res   *partsapi.Result
		err   error
		field string
		label i18n.Key
	)
	if d.Kind == DialogConfirmOrder {
		res, err = a.api.ConfirmOrder(ctx, d.RequestID, qty)
		field, label = "ordered_qty", i18n.ErrorConfirmOrder
	} else {
		res, err = a.api.ConfirmReception(ctx, d.RequestID, qty)
		field, label = "received_qty", i18n.ErrorConfirmRecv
	}
	d.Submitting = false

	if err != nil {
		var rejected *partsapi.RejectedError
		msg := a.loc.T(label, failure(err))
		if errors.As(err, &rejected) {
			if m, ok := rejected.Fields.First(field); ok {
				msg = m
			} else if rejected.Message != "" {
				msg = rejected.Message
			}
		}
		return a.dialogError(d, msg, fmt.Errorf("confirm request %d: %w", d.RequestID, err))
	}

	a.log.Info("Request status changed", "id", d.RequestID, "to", d.Target)
	a.ui.Alert(res.Message)
	a.state.dialog = nil
	a.ui.CloseQuantityDialog(*d)
	return a.router.Refresh(ctx)
}

func (a *ActionController) dialogError(d *QuantityDialog, msg string, err error) error {
	d.Error = msg
	a.ui.DialogError(*d, msg)
	return err
}

// CancelDialog closes the open dialog without sending anything.
func (a *ActionController) CancelDialog() error {
	d := a.state.dialog
	if d == nil {
		return ErrNoDialog
	}
	a.state.dialog = nil
	a.ui.CloseQuantityDialog(*d)
	return nil
}
