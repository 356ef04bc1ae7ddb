package partsapi_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"partsdesk/internal/domain"
	"partsdesk/internal/partsapi"
	"partsdesk/internal/partsapi/partsapitest"
)

func newClient(t *testing.T, srv *partsapitest.Server) *partsapi.Client {
	t.Helper()
	c, err := partsapi.New(partsapi.Options{
		BaseURL:      srv.BaseURL(),
		SessionID:    "sess-1",
		CSRFToken:    "csrf-1",
		UserAgent:    "partsdesk-test",
		NewRequestID: func() string { return "req-1" },
	})
	require.NoError(t, err)
	return c
}

func TestNew(t *testing.T) {
	_, err := partsapi.New(partsapi.Options{BaseURL: "/relative"})
	assert.Error(t, err)

	c, err := partsapi.New(partsapi.Options{BaseURL: "http://erp.local/spare-parts"})
	require.NoError(t, err)
	u, err := c.Resolve("api/entry/save/")
	require.NoError(t, err)
	assert.Equal(t, "http://erp.local/spare-parts/api/entry/save/", u)

	u, err = c.Resolve("/media/a.jpg")
	require.NoError(t, err)
	assert.Equal(t, "http://erp.local/media/a.jpg", u)
}

func TestAmbientHeaders(t *testing.T) {
	srv := partsapitest.NewServer()
	defer srv.Close()
	c := newClient(t, srv)
	ctx := context.Background()

	_, err := c.ListCategories(ctx)
	require.NoError(t, err)
	srv.Put(partsapitest.Entry{ID: 3, Status: domain.StatusNew, Description: "x"})
	_, err = c.Delete(ctx, 3)
	require.NoError(t, err)

	calls := srv.Calls()
	require.Len(t, calls, 2)

	get := calls[0]
	assert.Equal(t, "XMLHttpRequest", get.Header.Get("X-Requested-With"))
	assert.Equal(t, "req-1", get.Header.Get("X-Request-ID"))
	assert.Equal(t, "partsdesk-test", get.Header.Get("User-Agent"))
	assert.Empty(t, get.Header.Get("X-CSRFToken"), "reads carry no csrf header")
	assert.Contains(t, get.Header.Get("Cookie"), "sessionid=sess-1")

	post := calls[1]
	assert.Equal(t, "csrf-1", post.Header.Get("X-CSRFToken"))
	assert.Equal(t, "csrf-1", post.Form.Get("csrfmiddlewaretoken"))
	assert.Contains(t, post.Header.Get("Cookie"), "csrftoken=csrf-1")
}

func TestListRequests(t *testing.T) {
	srv := partsapitest.NewServer()
	defer srv.Close()
	c := newClient(t, srv)

	srv.SetCategories(domain.Category{ID: 1, Name: "Bolts"})
	srv.Put(partsapitest.Entry{ID: 5, CategoryID: 1, Description: "a", Status: domain.StatusNew, RequestedQty: "2"})
	srv.Put(partsapitest.Entry{ID: 9, CategoryID: 1, Description: "b", Status: domain.StatusNew})
	srv.Put(partsapitest.Entry{ID: 7, Description: "c", Status: domain.StatusOrdered})

	rows, err := c.ListRequests(context.Background(), partsapi.ListingNewRequests)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Len(t, rows[0], domain.RowColumns)
	assert.JSONEq(t, "9", string(rows[0][domain.ColID]))
	assert.JSONEq(t, `"Bolts"`, string(rows[1][domain.ColCategory]))

	t.Run("Missing data array", func(t *testing.T) {
		srv.Override("received", partsapitest.Reply(http.StatusOK, map[string]any{"rows": []any{}}))
		_, err := c.ListRequests(context.Background(), partsapi.ListingReceived)
		assert.ErrorIs(t, err, partsapi.ErrNoData)
	})

	t.Run("Server failure", func(t *testing.T) {
		srv.Override("month-entries", partsapitest.Reply(http.StatusInternalServerError, map[string]string{"error": "boom"}))
		_, err := c.ListRequests(context.Background(), partsapi.ListingMonth)
		var se *partsapi.StatusError
		require.ErrorAs(t, err, &se)
		assert.Equal(t, http.StatusInternalServerError, se.StatusCode)
		msg, ok := partsapi.ServerMessage(err)
		assert.True(t, ok)
		assert.Equal(t, "boom", msg)
	})
}

func TestGetRequest(t *testing.T) {
	srv := partsapitest.NewServer()
	defer srv.Close()
	c := newClient(t, srv)

	srv.Put(partsapitest.Entry{ID: 42, CategoryID: 2, Description: "M6 bolt", RequestedQty: "10.00", Unit: "pcs", Status: domain.StatusNew})

	d, err := c.GetRequest(context.Background(), 42)
	require.NoError(t, err)
	assert.Equal(t, int64(42), d.ID)
	assert.Equal(t, int64(2), d.CategoryID)
	assert.Equal(t, "10", d.RequestedQty.String())
	assert.False(t, d.OrderedQty.Present())
	assert.Equal(t, domain.StatusNew, d.Status)

	_, err = c.GetRequest(context.Background(), 404)
	var se *partsapi.StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusNotFound, se.StatusCode)
}

func TestSave(t *testing.T) {
	srv := partsapitest.NewServer()
	defer srv.Close()
	c := newClient(t, srv)
	ctx := context.Background()

	t.Run("Create with photo", func(t *testing.T) {
		res, err := c.Save(ctx, &partsapi.SavePayload{
			CategoryID:   3,
			Description:  "Bolt M6",
			RequestedQty: domain.MustQty("10"),
			Unit:         "pcs",
			Status:       domain.StatusNew,
			Photo:        &partsapi.Upload{Filename: "bolt.jpg", ContentType: "image/jpeg", Data: []byte("jpegdata")},
		})
		require.NoError(t, err)
		assert.True(t, res.Success)
		assert.NotZero(t, res.EntryID)

		calls := srv.CallsTo(http.MethodPost, "api/entry/save/")
		require.Len(t, calls, 1)
		form := calls[0].Form
		assert.NotContains(t, form, "id")
		assert.NotContains(t, form, "remove_photo")
		assert.NotContains(t, form, "received_qty_form_input")
		assert.Equal(t, "3", form.Get("category"))
		assert.Equal(t, "10", form.Get("requested_qty"))
		assert.Equal(t, "csrf-1", form.Get("csrfmiddlewaretoken"))

		files := calls[0].Files["photo"]
		require.Len(t, files, 1)
		assert.Equal(t, "bolt.jpg", files[0].Filename)
		assert.Equal(t, "image/jpeg", files[0].Header.Get("Content-Type"))
		f, err := files[0].Open()
		require.NoError(t, err)
		data, _ := io.ReadAll(f)
		f.Close()
		assert.Equal(t, "jpegdata", string(data))
	})

	t.Run("Update sends id and received quantity", func(t *testing.T) {
		srv.Reset()
		srv.Put(partsapitest.Entry{ID: 8, Description: "old", Status: domain.StatusOrdered})
		_, err := c.Save(ctx, &partsapi.SavePayload{
			ID:          8,
			Description: "new",
			Status:      domain.StatusReceived,
			ReceivedQty: domain.MustQty("4"),
			RemovePhoto: true,
		})
		require.NoError(t, err)

		form := srv.CallsTo(http.MethodPost, "api/entry/save/")[0].Form
		assert.Equal(t, "8", form.Get("id"))
		assert.Equal(t, "on", form.Get("remove_photo"))
		assert.Equal(t, "4", form.Get("received_qty_form_input"))

		e, ok := srv.Get(8)
		require.True(t, ok)
		assert.Equal(t, domain.StatusReceived, e.Status)
		assert.Equal(t, "4", e.ReceivedQty)
	})

	t.Run("Validation errors", func(t *testing.T) {
		_, err := c.Save(ctx, &partsapi.SavePayload{Status: domain.StatusNew})
		var rejected *partsapi.RejectedError
		require.ErrorAs(t, err, &rejected)
		assert.True(t, rejected.Validation())
		assert.Equal(t, http.StatusBadRequest, rejected.StatusCode)
		msg, ok := rejected.Fields.First("description")
		assert.True(t, ok)
		assert.Equal(t, "This field is required.", msg)
		assert.Contains(t, err.Error(), "description: This field is required.")
	})
}

func TestTransitions(t *testing.T) {
	srv := partsapitest.NewServer()
	defer srv.Close()
	c := newClient(t, srv)
	ctx := context.Background()

	srv.Put(partsapitest.Entry{ID: 42, Description: "M6", Status: domain.StatusNew})

	res, err := c.ConfirmOrder(ctx, 42, domain.MustQty("5"))
	require.NoError(t, err)
	assert.Equal(t, "Order confirmed successfully.", res.Message)
	call := srv.CallsTo(http.MethodPost, "api/entry/42/confirm-order/")
	require.Len(t, call, 1)
	assert.Equal(t, "5", call[0].Form.Get("ordered_qty"))

	_, err = c.ConfirmOrder(ctx, 42, domain.MustQty("5"))
	var rejected *partsapi.RejectedError
	require.ErrorAs(t, err, &rejected)
	assert.Equal(t, http.StatusNotFound, rejected.StatusCode)
	assert.False(t, rejected.Validation())

	_, err = c.ConfirmReception(ctx, 42, domain.MustQty("4.5"))
	require.NoError(t, err)
	e, _ := srv.Get(42)
	assert.Equal(t, domain.StatusReceived, e.Status)
	assert.Equal(t, "4.5", e.ReceivedQty)
}

func TestCategories(t *testing.T) {
	srv := partsapitest.NewServer()
	defer srv.Close()
	c := newClient(t, srv)
	ctx := context.Background()

	cat, err := c.AddCategory(ctx, "Filters")
	require.NoError(t, err)
	assert.Equal(t, "Filters", cat.Name)

	renamed, err := c.RenameCategory(ctx, cat.ID, "Oil filters")
	require.NoError(t, err)
	assert.Equal(t, cat.ID, renamed.ID)

	cats, err := c.ListCategories(ctx)
	require.NoError(t, err)
	assert.Equal(t, []domain.Category{{ID: cat.ID, Name: "Oil filters"}}, cats)

	srv.Put(partsapitest.Entry{ID: 1, CategoryID: cat.ID, Status: domain.StatusNew})
	err = c.DeleteCategory(ctx, cat.ID)
	msg, ok := partsapi.ServerMessage(err)
	require.True(t, ok)
	assert.Contains(t, msg, "used in existing requests")
}

func TestProbePhoto(t *testing.T) {
	srv := partsapitest.NewServer()
	defer srv.Close()
	c := newClient(t, srv)

	ref := srv.AddPhoto("a.jpg")
	assert.NoError(t, c.ProbePhoto(context.Background(), ref))

	err := c.ProbePhoto(context.Background(), "/media/missing.jpg")
	var se *partsapi.StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusNotFound, se.StatusCode)
}

func TestPhotoOnOtherHostCarriesNoCredentials(t *testing.T) {
	var got *http.Request
	cdn := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Clone(context.Background())
		w.Header().Set("Content-Type", "image/jpeg")
	}))
	defer cdn.Close()

	c, err := partsapi.New(partsapi.Options{
		BaseURL:   "http://parts.example.test/spare-parts/",
		SessionID: "secret-session",
		CSRFToken: "csrf-1",
	})
	require.NoError(t, err)

	require.NoError(t, c.ProbePhoto(context.Background(), cdn.URL+"/photo.jpg"))
	require.NotNil(t, got)
	assert.Empty(t, got.Cookies())
	assert.Empty(t, got.Header.Get("X-Requested-With"))
	assert.Empty(t, got.Header.Get("X-CSRFToken"))
	assert.NotEmpty(t, got.Header.Get("X-Request-ID"))
}

func TestPhotoOnServerCarriesSession(t *testing.T) {
	srv := partsapitest.NewServer()
	defer srv.Close()
	c := newClient(t, srv)

	require.NoError(t, c.ProbePhoto(context.Background(), srv.AddPhoto("b.jpg")))

	calls := srv.CallsTo(http.MethodHead, "/media/b.jpg")
	require.Len(t, calls, 1)
	assert.Contains(t, calls[0].Header.Get("Cookie"), "sessionid=sess-1")
	assert.Equal(t, "XMLHttpRequest", calls[0].Header.Get("X-Requested-With"))
}

func TestTransportError(t *testing.T) {
	srv := partsapitest.NewServer()
	c := newClient(t, srv)
	srv.Close()

	_, err := c.ListCategories(context.Background())
	assert.True(t, errors.Is(err, partsapi.ErrTransport))
	_, ok := partsapi.ServerMessage(err)
	assert.False(t, ok)
}

func TestParseID(t *testing.T) {
	id, err := partsapi.ParseID(" 42 ")
	require.NoError(t, err)
	assert.Equal(t, int64(42), id)

	for _, bad := range []string{"", "0", "-3", "abc"} {
		_, err := partsapi.ParseID(bad)
		assert.Error(t, err, bad)
	}
}
