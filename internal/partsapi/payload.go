package partsapi

import (
	"bytes"
	"fmt"
	"mime/multipart"
	"net/textproto"
	"strconv"
	"strings"

	"partsdesk/internal/domain"
)

// Form field names understood by the save endpoint.
const (
	FieldID           = "id"
	FieldCategory     = "category"
	FieldDescription  = "description"
	FieldRequestedQty = "requested_qty"
	FieldUnit         = "unit"
	FieldNotes        = "notes"
	FieldPhoto        = "photo"
	FieldRemovePhoto  = "remove_photo"
	FieldStatus       = "status"
	FieldReceivedQty  = "received_qty_form_input"
)

// Upload is a file part sent with the save request.
type Upload struct {
	Filename    string
	ContentType string
	Data        []byte
}

// SavePayload is the multipart body of the save endpoint. ID zero means
// create; the server tells create and update apart by the id field.
type SavePayload struct {
	ID           int64
	CategoryID   int64
	Description  string
	RequestedQty domain.Quantity
	Unit         string
	Notes        string
	Photo        *Upload
	RemovePhoto  bool
	Status       domain.Status
	// ReceivedQty is sent only when present.
	ReceivedQty domain.Quantity
}

// Encode renders the payload as multipart/form-data.
func (p *SavePayload) Encode(csrfToken string) ([]byte, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	fields := [][2]string{}
	if p.ID != 0 {
		fields = append(fields, [2]string{FieldID, strconv.FormatInt(p.ID, 10)})
	}
	category := ""
	if p.CategoryID != 0 {
		category = strconv.FormatInt(p.CategoryID, 10)
	}
	fields = append(fields,
		[2]string{FieldCategory, category},
		[2]string{FieldDescription, p.Description},
		[2]string{FieldRequestedQty, p.RequestedQty.String()},
		[2]string{FieldUnit, p.Unit},
		[2]string{FieldNotes, p.Notes},
		[2]string{FieldStatus, string(p.Status)},
	)
	if p.RemovePhoto {
		fields = append(fields, [2]string{FieldRemovePhoto, "on"})
	}
	if p.ReceivedQty.Present() {
		fields = append(fields, [2]string{FieldReceivedQty, p.ReceivedQty.String()})
	}
	if csrfToken != "" {
		fields = append(fields, [2]string{formCSRF, csrfToken})
	}

	for _, f := range fields {
		if err := w.WriteField(f[0], f[1]); err != nil {
			return nil, "", err
		}
	}

	if p.Photo != nil {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`,
			FieldPhoto, escapeQuotes(p.Photo.Filename)))
		ct := p.Photo.ContentType
		if ct == "" {
			ct = "application/octet-stream"
		}
		h.Set("Content-Type", ct)
		part, err := w.CreatePart(h)
		if err != nil {
			return nil, "", err
		}
		if _, err := part.Write(p.Photo.Data); err != nil {
			return nil, "", err
		}
	}

	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return buf.Bytes(), w.FormDataContentType(), nil
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func escapeQuotes(s string) string {
	return quoteEscaper.Replace(s)
}
