package domain

import (
	"fmt"
	"strings"
)

type Status string

const (
	StatusNew      Status = "New"
	StatusOrdered  Status = "Ordered"
	StatusReceived Status = "Received"
)

// Statuses lists every stored status in workflow order.
var Statuses = []Status{StatusNew, StatusOrdered, StatusReceived}

// ParseStatus accepts the server's raw status code, case-insensitively.
func ParseStatus(s string) (Status, error) {
	for _, st := range Statuses {
		if strings.EqualFold(strings.TrimSpace(s), string(st)) {
			return st, nil
		}
	}
	return "", fmt.Errorf("unknown status %q", s)
}

// MaxPhotoBytes is the largest photo the form accepts.
const MaxPhotoBytes int64 = 5 * 1024 * 1024

type Photo struct {
	URL       string `json:"url"`
	Thumbnail string `json:"thumbnail"`
}

// ThumbnailOrURL falls back to the full image when no thumbnail exists.
func (p *Photo) ThumbnailOrURL() string {
	if p == nil {
		return ""
	}
	if p.Thumbnail != "" {
		return p.Thumbnail
	}
	return p.URL
}

type Category struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// RequestDetail is the full record returned by the detail endpoint and used
// to prefill the form and the quantity dialogs.
type RequestDetail struct {
	ID           int64    `json:"id"`
	CategoryID   int64    `json:"category_id"`
	Description  string   `json:"description"`
	RequestedQty Quantity `json:"requested_qty"`
	Unit         string   `json:"unit"`
	Notes        string   `json:"notes"`
	PhotoURL     string   `json:"photo_url"`
	Status       Status   `json:"status"`
	OrderedQty   Quantity `json:"ordered_qty"`
	ReceivedQty  Quantity `json:"received_qty"`
}

// ReorderCopy returns the fields a reorder carries into a brand-new request:
// no identifier, status New, no photo and no fulfilment quantities.
func (d RequestDetail) ReorderCopy() RequestDetail {
	return RequestDetail{
		CategoryID:   d.CategoryID,
		Description:  d.Description,
		RequestedQty: d.RequestedQty,
		Unit:         d.Unit,
		Notes:        d.Notes,
		Status:       StatusNew,
	}
}
