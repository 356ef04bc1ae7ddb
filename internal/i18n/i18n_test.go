package i18n

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"partsdesk/internal/domain"
)

func TestLocalizer(t *testing.T) {
	en := New("en")
	ar := New("ar")

	assert.Equal(t, "New requests", en.T(ViewNewRequests))
	assert.Equal(t, "طلبات جديدة", ar.T(ViewNewRequests))
	assert.Equal(t, "You are editing request no. 42", en.T(EditingRequest, 42))
	assert.Equal(t, "The file is too large. The maximum is 5.0 MiB.", en.PhotoTooLarge(domain.MaxPhotoBytes))
	assert.True(t, ar.RightToLeft())
	assert.False(t, en.RightToLeft())
}

func TestUnknownLocaleFallsBackToEnglish(t *testing.T) {
	l := New("not a locale")
	assert.Equal(t, "Actions", l.T(Actions))
}

func TestResolveStatus(t *testing.T) {
	tests := []struct {
		label    string
		expected domain.Status
	}{
		{"New Request", domain.StatusNew},
		{"Ordered and Waiting for Delivery", domain.StatusOrdered},
		{"received", domain.StatusReceived},
		{"مستلم", domain.StatusReceived},
		{"طلب جديد", domain.StatusNew},
		{"Ordered", domain.StatusOrdered},
	}

	for _, tt := range tests {
		t.Run(tt.label, func(t *testing.T) {
			st, ok := ResolveStatus(tt.label)
			assert.True(t, ok)
			assert.Equal(t, tt.expected, st)
		})
	}

	_, ok := ResolveStatus("Cancelled")
	assert.False(t, ok)
}

func TestStatusLabelRoundTrip(t *testing.T) {
	for _, loc := range []string{"en", "ar"} {
		l := New(loc)
		for _, st := range domain.Statuses {
			got, ok := ResolveStatus(l.StatusLabel(st))
			assert.True(t, ok)
			assert.Equal(t, st, got)
		}
	}
}

func TestColumnAndActionLabels(t *testing.T) {
	en := New("en")
	assert.Equal(t, "Description", en.Column(domain.ColDescription))
	assert.Equal(t, "", en.Column(domain.RowColumns))
	assert.Equal(t, "Confirm order", en.ActionLabel(domain.ActionConfirmOrder))

	ar := New("ar")
	assert.Equal(t, "حذف", ar.ActionLabel(domain.ActionDelete))
	for col := 0; col < domain.RowColumns; col++ {
		assert.NotEmpty(t, ar.Column(col), "column %d", col)
	}
}
