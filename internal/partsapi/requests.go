package partsapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"partsdesk/internal/domain"
)

// ErrNoData is returned when a listing reply lacks its data array.
var ErrNoData = errors.New("listing reply carried no data")

// RowTuple is one positional listing row as sent by the server.
type RowTuple []json.RawMessage

// ListCategories returns the category dropdown source.
func (c *Client) ListCategories(ctx context.Context) ([]domain.Category, error) {
	var cats []domain.Category
	if err := c.getJSON(ctx, pathCategories, &cats); err != nil {
		return nil, err
	}
	return cats, nil
}

// ListRequests fetches the rows behind one table view.
func (c *Client) ListRequests(ctx context.Context, listing Listing) ([]RowTuple, error) {
	var body struct {
		Data *[]RowTuple `json:"data"`
	}
	if err := c.getJSON(ctx, string(listing), &body); err != nil {
		return nil, err
	}
	if body.Data == nil {
		return nil, ErrNoData
	}
	return *body.Data, nil
}

// GetRequest fetches the full record of one request.
func (c *Client) GetRequest(ctx context.Context, id int64) (*domain.RequestDetail, error) {
	var d domain.RequestDetail
	if err := c.getJSON(ctx, entryPath(fmtEntryDetails, id), &d); err != nil {
		return nil, err
	}
	if d.ID == 0 {
		return nil, &StatusError{StatusCode: http.StatusNotFound, Message: "request not found"}
	}
	return &d, nil
}

// Save creates (ID == 0) or updates a request.
func (c *Client) Save(ctx context.Context, p *SavePayload) (*Result, error) {
	body, contentType, err := p.Encode(c.csrfToken)
	if err != nil {
		return nil, fmt.Errorf("encode save payload: %w", err)
	}
	return c.postEnvelope(ctx, call{path: pathSaveEntry, body: body, contentType: contentType})
}

// Delete removes a New request.
func (c *Client) Delete(ctx context.Context, id int64) (*Result, error) {
	cl := c.form(nil)
	cl.path = entryPath(fmtEntryDelete, id)
	return c.postEnvelope(ctx, cl)
}

// ConfirmOrder records the ordered quantity and moves the request to Ordered.
func (c *Client) ConfirmOrder(ctx context.Context, id int64, orderedQty domain.Quantity) (*Result, error) {
	cl := c.form(url.Values{"ordered_qty": {orderedQty.String()}})
	cl.path = entryPath(fmtConfirmOrder, id)
	return c.postEnvelope(ctx, cl)
}

// ConfirmReception records the received quantity and moves the request to Received.
func (c *Client) ConfirmReception(ctx context.Context, id int64, receivedQty domain.Quantity) (*Result, error) {
	cl := c.form(url.Values{"received_qty": {receivedQty.String()}})
	cl.path = entryPath(fmtConfirmReceipt, id)
	return c.postEnvelope(ctx, cl)
}

// AddCategory creates a category.
func (c *Client) AddCategory(ctx context.Context, name string) (*domain.Category, error) {
	cl := c.form(url.Values{"name": {name}})
	cl.path = pathCategoryAdd
	res, err := c.postEnvelope(ctx, cl)
	if err != nil {
		return nil, err
	}
	return &domain.Category{ID: res.ID, Name: res.Name}, nil
}

// RenameCategory changes a category name.
func (c *Client) RenameCategory(ctx context.Context, id int64, name string) (*domain.Category, error) {
	cl := c.form(url.Values{"name": {name}})
	cl.path = entryPath(fmtCategoryEdit, id)
	res, err := c.postEnvelope(ctx, cl)
	if err != nil {
		return nil, err
	}
	return &domain.Category{ID: res.ID, Name: res.Name}, nil
}

// DeleteCategory removes an unused category.
func (c *Client) DeleteCategory(ctx context.Context, id int64) error {
	cl := c.form(nil)
	cl.path = entryPath(fmtCategoryDelete, id)
	_, err := c.postEnvelope(ctx, cl)
	return err
}

// ProbePhoto checks that a photo URL serves an image. The form uses it to
// decide between a preview and a link-out.
func (c *Client) ProbePhoto(ctx context.Context, ref string) error {
	r, err := c.send(ctx, call{method: http.MethodHead, path: ref})
	if err != nil {
		return err
	}
	if !r.ok() {
		return &StatusError{StatusCode: r.status, Message: http.StatusText(r.status)}
	}
	return nil
}

// ParseID reads a request or category identifier typed by the operator.
func ParseID(s string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", s)
	}
	return id, nil
}
