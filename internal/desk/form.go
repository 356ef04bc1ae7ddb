package desk

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"partsdesk/internal/domain"
	"partsdesk/internal/i18n"
	"partsdesk/internal/partsapi"
)

// FormController owns the request entry form.
type FormController struct {
	*env
	router *ViewRouter
	photos PhotoSource
}

func (f *FormController) render() {
	f.ui.RenderForm(f.state.form.clone())
}

func (f *FormController) setBanner(b Banner) {
	f.state.banner = b
	f.ui.FormMessage(b)
}

// Clear resets every field and transient photo state, then repopulates the
// categories from the cache with nothing selected.
func (f *FormController) Clear(ctx context.Context) {
	f.reset()
	f.setBanner(Banner{})
	f.loadCategories(ctx, 0)
	f.render()
}

func (f *FormController) reset() {
	f.state.form = FormModel{
		Mode:        ModeNew,
		Title:       f.loc.T(i18n.FormTitleNew),
		Status:      domain.StatusNew,
		KnownStatus: domain.StatusNew,
	}
}

// loadCategories fills the dropdown, fetching the list only the first time in
// a session. A failed fetch caches an empty list.
func (f *FormController) loadCategories(ctx context.Context, selectID int64) {
	if !f.state.categoriesLoaded {
		f.state.form.CategoryHint = f.loc.T(i18n.LoadingCategories)
		f.state.form.Categories = nil
		f.render()

		cats, err := f.api.ListCategories(ctx)
		if err != nil {
			f.log.Warn("Failed to load categories", "error", err)
			cats = nil
		}
		f.state.categories = cats
		f.state.categoriesLoaded = true
	}

	form := &f.state.form
	form.Categories = append([]domain.Category(nil), f.state.categories...)
	switch {
	case len(form.Categories) > 0:
		form.CategoryHint = f.loc.T(i18n.SelectCategory)
	case f.state.viewer.CanManageCategories():
		form.CategoryHint = f.loc.T(i18n.NoCategoriesAll)
	default:
		form.CategoryHint = f.loc.T(i18n.NoCategoriesOwn)
	}

	form.CategoryID = 0
	for _, c := range form.Categories {
		if c.ID == selectID {
			form.CategoryID = selectID
			break
		}
	}
}

// PopulateEdit loads an existing request into the form.
func (f *FormController) PopulateEdit(ctx context.Context, d *domain.RequestDetail) {
	f.populate(ctx, d, false)
}

// PopulateReorder prepares a new request from a received one.
func (f *FormController) PopulateReorder(ctx context.Context, d *domain.RequestDetail) {
	f.populate(ctx, d, true)
}

// populate clears the form, loads the categories with the request's category
// selected, and only then fills the remaining fields.
func (f *FormController) populate(ctx context.Context, d *domain.RequestDetail, reorder bool) {
	f.reset()
	f.setBanner(Banner{})

	src := *d
	mode, title := ModeEdit, f.loc.T(i18n.FormTitleEdit)
	if reorder {
		src = d.ReorderCopy()
		mode, title = ModeReorder, f.loc.T(i18n.FormTitleReorder)
	}
	f.state.form.Mode = mode
	f.state.form.Title = title
	f.state.form.ID = src.ID

	f.loadCategories(ctx, src.CategoryID)

	form := &f.state.form
	form.Description = src.Description
	form.RequestedQty = src.RequestedQty.String()
	form.Unit = src.Unit
	form.Notes = src.Notes
	form.KnownStatus = src.Status
	if form.KnownStatus == "" {
		form.KnownStatus = domain.StatusNew
	}

	if src.PhotoURL != "" {
		form.CurrentPhoto = src.PhotoURL
		if err := f.api.ProbePhoto(ctx, src.PhotoURL); err != nil {
			f.log.Debug("Photo preview unavailable", "url", src.PhotoURL, "error", err)
			link, rerr := f.api.Resolve(src.PhotoURL)
			if rerr != nil {
				link = src.PhotoURL
			}
			form.CurrentPhotoLink = link
		}
	}

	if !reorder && f.state.viewer.Supervisor && src.Status != domain.StatusNew {
		form.StatusSection = true
		f.setStatus(src.Status)
		if src.Status == domain.StatusReceived {
			qty := src.ReceivedQty
			if !qty.Present() {
				qty = src.RequestedQty
			}
			form.ReceivedQty = qty.String()
		}
	} else {
		form.StatusSection = false
		form.Status = domain.StatusNew
		form.ReceivedQty = ""
	}

	if reorder {
		f.setBanner(Banner{Kind: BannerInfo, Text: f.loc.T(i18n.ReorderReady)})
	} else {
		f.setBanner(Banner{Kind: BannerInfo, Text: f.loc.T(i18n.EditingRequest, src.ID)})
	}
	f.render()
}

// setStatus applies a status select change.
func (f *FormController) setStatus(st domain.Status) {
	form := &f.state.form
	form.Status = st
	if st == domain.StatusReceived {
		form.ReceivedQtyShown = true
		return
	}
	form.ReceivedQtyShown = false
	form.ReceivedQty = ""
	delete(form.Invalid, partsapi.FieldReceivedQty)
}

// SetField changes one input. Names are the save endpoint's field names.
func (f *FormController) SetField(name, value string) error {
	form := &f.state.form
	switch name {
	case partsapi.FieldCategory:
		if strings.TrimSpace(value) == "" {
			form.CategoryID = 0
			break
		}
		id, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64)
		if err != nil || !f.hasCategory(id) {
			return fmt.Errorf("%w: category %q", ErrInvalidValue, value)
		}
		form.CategoryID = id
	case partsapi.FieldDescription:
		form.Description = value
	case partsapi.FieldRequestedQty:
		form.RequestedQty = value
	case partsapi.FieldUnit:
		form.Unit = value
	case partsapi.FieldNotes:
		form.Notes = value
	case partsapi.FieldStatus:
		if !form.StatusSection {
			return fmt.Errorf("%w: status is not editable here", ErrInvalidValue)
		}
		st, err := domain.ParseStatus(value)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidValue, err)
		}
		f.setStatus(st)
	case partsapi.FieldReceivedQty:
		if !form.ReceivedQtyShown {
			return fmt.Errorf("%w: received quantity is hidden", ErrInvalidValue)
		}
		form.ReceivedQty = value
	default:
		return fmt.Errorf("%w: %q", ErrUnknownField, name)
	}
	f.render()
	return nil
}

func (f *FormController) hasCategory(id int64) bool {
	for _, c := range f.state.form.Categories {
		if c.ID == id {
			return true
		}
	}
	return false
}

// SelectPhoto picks a local file as the new photo. Oversize files are
// rejected from their size alone and never read.
func (f *FormController) SelectPhoto(path string) error {
	form := &f.state.form

	info, err := f.photos.Stat(path)
	if err != nil {
		form.Photo = nil
		f.ui.Alert(f.loc.T(i18n.PhotoReadError))
		f.render()
		return fmt.Errorf("%w: %w", ErrPhotoUnreadable, err)
	}
	if info.Size() > domain.MaxPhotoBytes {
		form.Photo = nil
		f.ui.Alert(f.loc.PhotoTooLarge(domain.MaxPhotoBytes))
		f.render()
		return fmt.Errorf("%w: %s is %d bytes", ErrPhotoTooLarge, filepath.Base(path), info.Size())
	}

	data, err := f.photos.ReadFile(path)
	if err != nil {
		form.Photo = nil
		f.ui.Alert(f.loc.T(i18n.PhotoReadError))
		f.render()
		return fmt.Errorf("%w: %w", ErrPhotoUnreadable, err)
	}

	ct := sniff(data)
	form.Photo = &SelectedPhoto{
		Name:        filepath.Base(path),
		ContentType: ct,
		Size:        int64(len(data)),
		Preview:     dataURL(ct, data),
		data:        data,
	}
	f.render()
	return nil
}

// ClearPhoto drops the new photo selection.
func (f *FormController) ClearPhoto() {
	f.state.form.Photo = nil
	f.render()
}

// RemoveCurrentPhoto marks the stored photo for removal on save.
func (f *FormController) RemoveCurrentPhoto() error {
	form := &f.state.form
	if form.CurrentPhoto == "" {
		return fmt.Errorf("%w: the request has no photo", ErrInvalidValue)
	}
	form.RemovePhoto = true
	form.CurrentPhoto = ""
	form.CurrentPhotoLink = ""
	f.setBanner(Banner{Kind: BannerWarning, Text: f.loc.T(i18n.PhotoWillBeRemove)})
	f.render()
	return nil
}

// validate returns the required-field problems of the current input.
func (f *FormController) validate() map[string]string {
	form := f.state.form
	required := f.loc.T(i18n.FieldRequired)
	invalid := map[string]string{}

	if form.CategoryID == 0 {
		invalid[partsapi.FieldCategory] = required
	}
	if strings.TrimSpace(form.Description) == "" {
		invalid[partsapi.FieldDescription] = required
	}
	if q, err := domain.ParseQuantity(form.RequestedQty); err != nil || !q.Positive() {
		invalid[partsapi.FieldRequestedQty] = f.loc.T(i18n.QuantityRequired)
	}
	if strings.TrimSpace(form.Unit) == "" {
		invalid[partsapi.FieldUnit] = required
	}
	if form.ReceivedQtyShown {
		if q, err := domain.ParseQuantity(form.ReceivedQty); err != nil || !q.Present() || q.Decimal.IsNegative() {
			invalid[partsapi.FieldReceivedQty] = required
		}
	}
	return invalid
}

// payload builds the save request. Only a supervisor looking at the status
// section chooses the status; everyone else resubmits the known status. The
// received quantity travels only with status Received.
func (f *FormController) payload() *partsapi.SavePayload {
	form := f.state.form
	p := &partsapi.SavePayload{
		ID:          form.ID,
		CategoryID:  form.CategoryID,
		Description: strings.TrimSpace(form.Description),
		Unit:        strings.TrimSpace(form.Unit),
		Notes:       form.Notes,
		RemovePhoto: form.RemovePhoto,
	}
	p.RequestedQty, _ = domain.ParseQuantity(form.RequestedQty)

	if f.state.viewer.Supervisor && form.StatusSection {
		p.Status = form.Status
	} else {
		p.Status = form.KnownStatus
	}
	if p.Status == "" {
		p.Status = domain.StatusNew
	}
	if p.Status == domain.StatusReceived && form.StatusSection {
		p.ReceivedQty, _ = domain.ParseQuantity(form.ReceivedQty)
	}

	if form.Photo != nil {
		p.Photo = &partsapi.Upload{
			Filename:    form.Photo.Name,
			ContentType: form.Photo.ContentType,
			Data:        form.Photo.data,
		}
	}
	return p
}

// Submit validates and saves the form. On success the form is cleared, the
// active table reloaded and the server's message shown.
func (f *FormController) Submit(ctx context.Context) error {
	form := &f.state.form
	if form.Submitting {
		return ErrSubmitInProgress
	}

	if invalid := f.validate(); len(invalid) > 0 {
		form.Invalid = invalid
		f.setBanner(Banner{Kind: BannerError, Text: f.loc.T(i18n.FillRequired)})
		f.render()
		return ErrFormInvalid
	}

	form.Invalid = nil
	form.Submitting = true
	f.setBanner(Banner{Kind: BannerInfo, Text: f.loc.T(i18n.SavingInProgress)})
	f.render()

	p := f.payload()
	res, err := f.api.Save(ctx, p)
	f.state.form.Submitting = false
	if err != nil {
		f.saveFailed(err)
		return fmt.Errorf("save request: %w", err)
	}

	f.log.Info("Request saved", "id", res.EntryID, "update", p.ID != 0)
	f.Clear(ctx)
	if rerr := f.router.Refresh(ctx); rerr != nil {
		f.log.Warn("Refresh after save failed", "error", rerr)
	}
	f.setBanner(Banner{Kind: BannerSuccess, Text: res.Message})
	return nil
}

func (f *FormController) saveFailed(err error) {
	form := &f.state.form

	var rejected *partsapi.RejectedError
	if errors.As(err, &rejected) {
		text := rejected.Message
		if text == "" {
			text = f.loc.T(i18n.ErrorSaving)
		}
		if len(rejected.Fields) > 0 {
			form.Invalid = map[string]string{}
			lines := []string{text}
			for _, name := range rejected.Fields.Fields() {
				msg, _ := rejected.Fields.First(name)
				form.Invalid[name] = msg
				for _, fe := range rejected.Fields[name] {
					lines = append(lines, name+": "+fe.Message)
				}
			}
			text = strings.Join(lines, "\n")
		}
		f.setBanner(Banner{Kind: BannerError, Text: text})
		f.render()
		return
	}

	text, ok := partsapi.ServerMessage(err)
	if !ok {
		text = f.loc.T(i18n.ServerError)
	}
	f.log.Warn("Save failed", "error", err)
	f.setBanner(Banner{Kind: BannerError, Text: text})
	f.render()
}
