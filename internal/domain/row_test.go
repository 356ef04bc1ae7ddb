package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func englishLabels(label string) (Status, bool) {
	switch label {
	case "New Request":
		return StatusNew, true
	case "Ordered and Waiting for Delivery":
		return StatusOrdered, true
	case "Received":
		return StatusReceived, true
	}
	return "", false
}

func decode(t *testing.T, payload string) []json.RawMessage {
	t.Helper()
	var cols []json.RawMessage
	require.NoError(t, json.Unmarshal([]byte(payload), &cols))
	return cols
}

func TestDecodeRow(t *testing.T) {
	t.Run("Ordered row with photo", func(t *testing.T) {
		cols := decode(t, `[42, "Maintenance", "Fasteners", "Bolt M6", "10.00", "pcs", "",
			{"url": "/media/p.jpg", "thumbnail": ""}, "8.00", "", "Ordered and Waiting for Delivery",
			"2026-10-01", "09:15", "alice"]`)

		row, err := DecodeRow(cols, englishLabels)
		require.NoError(t, err)
		assert.Equal(t, int64(42), row.ID)
		assert.Equal(t, "Bolt M6", row.Description)
		assert.Equal(t, "10", row.RequestedQty.String())
		assert.Equal(t, "8", row.OrderedQty.String())
		assert.False(t, row.ReceivedQty.Present())
		assert.Equal(t, StatusOrdered, row.Status)
		assert.Equal(t, "alice", row.Username)
		require.NotNil(t, row.Photo)
		assert.Equal(t, "/media/p.jpg", row.Photo.ThumbnailOrURL())
	})

	t.Run("Empty photo object", func(t *testing.T) {
		cols := decode(t, `["7", "S", "C", "D", 5, "pcs", null, {"url": "", "thumbnail": ""}, "", "", "New Request", "d", "t", "bob"]`)
		row, err := DecodeRow(cols, englishLabels)
		require.NoError(t, err)
		assert.Equal(t, int64(7), row.ID)
		assert.Nil(t, row.Photo)
		assert.Equal(t, "5", row.RequestedQty.String())
		assert.Equal(t, StatusNew, row.Status)
	})

	t.Run("Raw status column wins over label", func(t *testing.T) {
		cols := decode(t, `[1, "S", "C", "D", "1", "u", "", null, "1", "1", "مستلم", "d", "t", "bob", "Received"]`)
		row, err := DecodeRow(cols, englishLabels)
		require.NoError(t, err)
		assert.Equal(t, StatusReceived, row.Status)
		assert.Equal(t, "مستلم", row.StatusLabel)
	})

	t.Run("Unknown label", func(t *testing.T) {
		cols := decode(t, `[1, "S", "C", "D", "1", "u", "", null, "", "", "Lost", "d", "t", "bob"]`)
		_, err := DecodeRow(cols, englishLabels)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "unrecognised status label")
	})

	t.Run("Short tuple", func(t *testing.T) {
		_, err := DecodeRow(decode(t, `[1, "S"]`), englishLabels)
		assert.Error(t, err)
	})
}

func TestQuantityJSON(t *testing.T) {
	var d RequestDetail
	require.NoError(t, json.Unmarshal([]byte(`{"id": 3, "category_id": 2, "requested_qty": "5.00", "ordered_qty": "", "received_qty": null, "status": "New"}`), &d))
	assert.Equal(t, "5", d.RequestedQty.String())
	assert.False(t, d.OrderedQty.Present())
	assert.False(t, d.ReceivedQty.Present())
	assert.True(t, d.RequestedQty.Positive())

	_, err := ParseQuantity("five")
	assert.Error(t, err)

	zero := MustQty("0")
	assert.True(t, zero.Present())
	assert.False(t, zero.Positive())
}

func TestReorderCopy(t *testing.T) {
	src := RequestDetail{
		ID: 9, CategoryID: 4, Description: "Filter", RequestedQty: MustQty("3"), Unit: "pcs",
		Notes: "urgent", PhotoURL: "/media/f.jpg", Status: StatusReceived,
		OrderedQty: MustQty("3"), ReceivedQty: MustQty("2"),
	}

	cp := src.ReorderCopy()
	assert.Zero(t, cp.ID)
	assert.Equal(t, StatusNew, cp.Status)
	assert.Empty(t, cp.PhotoURL)
	assert.False(t, cp.OrderedQty.Present())
	assert.False(t, cp.ReceivedQty.Present())
	assert.Equal(t, int64(4), cp.CategoryID)
	assert.Equal(t, "Filter", cp.Description)
	assert.Equal(t, "3", cp.RequestedQty.String())
	assert.Equal(t, "pcs", cp.Unit)
	assert.Equal(t, "urgent", cp.Notes)
}

func TestParseStatus(t *testing.T) {
	st, err := ParseStatus(" ordered ")
	assert.NoError(t, err)
	assert.Equal(t, StatusOrdered, st)

	_, err = ParseStatus("Reorder")
	assert.Error(t, err)
}
