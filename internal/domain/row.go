package domain

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Positions of the listing row tuple. The order is a wire contract shared
// with the server; reordering it is a breaking change.
const (
	ColID = iota
	ColSector
	ColCategory
	ColDescription
	ColRequestedQty
	ColUnit
	ColNotes
	ColPhoto
	ColOrderedQty
	ColReceivedQty
	ColStatus
	ColDate
	ColTime
	ColUsername

	// RowColumns is the number of positional columns every row carries.
	RowColumns
	// ColStatusCode is an optional trailing column with the raw status code.
	ColStatusCode = RowColumns
)

// Row is one decoded listing row.
type Row struct {
	ID           int64
	Sector       string
	Category     string
	Description  string
	RequestedQty Quantity
	Unit         string
	Notes        string
	Photo        *Photo
	OrderedQty   Quantity
	ReceivedQty  Quantity
	StatusLabel  string
	Status       Status
	Date         string
	Time         string
	Username     string
}

// StatusResolver maps a display label to its status.
type StatusResolver func(label string) (Status, bool)

// DecodeRow converts a positional tuple into a Row. The display label is
// turned into a Status here and nowhere else.
func DecodeRow(cols []json.RawMessage, resolve StatusResolver) (Row, error) {
	if len(cols) < RowColumns {
		return Row{}, fmt.Errorf("row has %d columns, want %d", len(cols), RowColumns)
	}

	var r Row
	var err error
	if r.ID, err = decodeID(cols[ColID]); err != nil {
		return Row{}, fmt.Errorf("column id: %w", err)
	}

	texts := []struct {
		col int
		dst *string
	}{
		{ColSector, &r.Sector},
		{ColCategory, &r.Category},
		{ColDescription, &r.Description},
		{ColUnit, &r.Unit},
		{ColNotes, &r.Notes},
		{ColStatus, &r.StatusLabel},
		{ColDate, &r.Date},
		{ColTime, &r.Time},
		{ColUsername, &r.Username},
	}
	for _, f := range texts {
		if *f.dst, err = decodeText(cols[f.col]); err != nil {
			return Row{}, fmt.Errorf("column %d: %w", f.col, err)
		}
	}

	quantities := []struct {
		col int
		dst *Quantity
	}{
		{ColRequestedQty, &r.RequestedQty},
		{ColOrderedQty, &r.OrderedQty},
		{ColReceivedQty, &r.ReceivedQty},
	}
	for _, f := range quantities {
		if err := json.Unmarshal(cols[f.col], f.dst); err != nil {
			return Row{}, fmt.Errorf("column %d: %w", f.col, err)
		}
	}

	var photo Photo
	if raw := cols[ColPhoto]; len(raw) > 0 && string(raw) != "null" {
		if err := json.Unmarshal(raw, &photo); err != nil {
			return Row{}, fmt.Errorf("column photo: %w", err)
		}
	}
	if photo.URL != "" {
		r.Photo = &photo
	}

	if len(cols) > ColStatusCode {
		code, err := decodeText(cols[ColStatusCode])
		if err == nil && code != "" {
			if st, perr := ParseStatus(code); perr == nil {
				r.Status = st
			}
		}
	}
	if r.Status == "" {
		st, ok := resolve(r.StatusLabel)
		if !ok {
			return Row{}, fmt.Errorf("row %d: unrecognised status label %q", r.ID, r.StatusLabel)
		}
		r.Status = st
	}

	return r, nil
}

func decodeID(raw json.RawMessage) (int64, error) {
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		return n.Int64()
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return 0, err
	}
	return strconv.ParseInt(strings.TrimSpace(s), 10, 64)
}

// decodeText accepts strings, numbers and null.
func decodeText(raw json.RawMessage) (string, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return "", nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s, nil
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err != nil {
		return "", err
	}
	return n.String(), nil
}
