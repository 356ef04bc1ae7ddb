// Package partsapitest runs an in-memory spare-parts server for tests. It
// mirrors the routes and reply shapes of the real server closely enough to
// exercise the client and the desk end to end.
package partsapitest

import (
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/gorilla/mux"

	"partsdesk/internal/domain"
)

// Prefix is where the fake mounts the spare-parts routes.
const Prefix = "/spare-parts/"

// Entry is one stored request.
type Entry struct {
	ID           int64
	Sector       string
	CategoryID   int64
	Description  string
	RequestedQty string
	Unit         string
	Notes        string
	PhotoURL     string
	OrderedQty   string
	ReceivedQty  string
	Status       domain.Status
	Username     string
	Date         string
	Time         string
}

// Call is one recorded request.
type Call struct {
	Method string
	Path   string
	Header http.Header
	Form   url.Values
	Files  map[string][]*multipart.FileHeader
}

// Server is the fake. All state is guarded by mu.
type Server struct {
	*httptest.Server

	mu         sync.Mutex
	calls      []Call
	categories []domain.Category
	entries    map[int64]*Entry
	nextID     int64
	photos     map[string]bool
	overrides  map[string]http.HandlerFunc
}

var statusLabels = map[domain.Status]string{
	domain.StatusNew:      "New Request",
	domain.StatusOrdered:  "Ordered and Waiting for Delivery",
	domain.StatusReceived: "Received",
}

// NewServer starts the fake.
func NewServer() *Server {
	s := &Server{
		entries:   map[int64]*Entry{},
		nextID:    100,
		photos:    map[string]bool{},
		overrides: map[string]http.HandlerFunc{},
	}

	r := mux.NewRouter()
	r.Use(s.record)
	api := r.PathPrefix(strings.TrimSuffix(Prefix, "/")).Subrouter()

	s.route(api, "categories", "/api/categories/list/", s.listCategories, http.MethodGet)
	s.route(api, "category-add", "/api/categories/add/", s.addCategory, http.MethodPost)
	s.route(api, "category-edit", "/api/categories/{id:[0-9]+}/edit/", s.editCategory, http.MethodPost)
	s.route(api, "category-delete", "/api/categories/{id:[0-9]+}/delete/", s.deleteCategory, http.MethodPost)
	s.route(api, "new-requests", "/api/data/new-requests/", s.listByStatus(domain.StatusNew), http.MethodGet)
	s.route(api, "ordered-waiting", "/api/data/ordered-waiting/", s.listByStatus(domain.StatusOrdered), http.MethodGet)
	s.route(api, "received", "/api/data/received/", s.listByStatus(domain.StatusReceived), http.MethodGet)
	s.route(api, "today-entries", "/api/data/today-entries/", s.listByStatus(""), http.MethodGet)
	s.route(api, "month-entries", "/api/data/month-entries/", s.listByStatus(""), http.MethodGet)
	s.route(api, "save", "/api/entry/save/", s.save, http.MethodPost)
	s.route(api, "details", "/api/entry/{id:[0-9]+}/details/", s.details, http.MethodGet)
	s.route(api, "delete", "/api/entry/{id:[0-9]+}/delete/", s.delete, http.MethodPost)
	s.route(api, "confirm-order", "/api/entry/{id:[0-9]+}/confirm-order/", s.confirmOrder, http.MethodPost)
	s.route(api, "confirm-reception", "/api/entry/{id:[0-9]+}/confirm-reception/", s.confirmReception, http.MethodPost)
	r.HandleFunc("/media/{file}", s.media).Methods(http.MethodGet, http.MethodHead)

	s.Server = httptest.NewServer(r)
	return s
}

// BaseURL is the URL to configure the client with.
func (s *Server) BaseURL() string {
	return s.URL + Prefix
}

// Override replaces the handler of a named route.
func (s *Server) Override(route string, h http.HandlerFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.overrides[route] = h
}

// Reply is a convenience handler that writes status and a JSON body.
func Reply(status int, body any) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, status, body)
	}
}

// SetCategories replaces the stored categories.
func (s *Server) SetCategories(cats ...domain.Category) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.categories = append([]domain.Category(nil), cats...)
}

// Put stores or replaces an entry.
func (s *Server) Put(e Entry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := e
	if cp.Date == "" {
		cp.Date = "2026-10-19"
	}
	if cp.Time == "" {
		cp.Time = "08:30"
	}
	s.entries[cp.ID] = &cp
}

// Get returns a copy of an entry.
func (s *Server) Get(id int64) (Entry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[id]
	if !ok {
		return Entry{}, false
	}
	return *e, true
}

// AddPhoto makes /media/<name> answer 200.
func (s *Server) AddPhoto(name string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.photos[name] = true
	return "/media/" + name
}

// Calls returns the recorded requests.
func (s *Server) Calls() []Call {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Call(nil), s.calls...)
}

// CallsTo returns recorded requests whose path, relative to Prefix, equals path.
func (s *Server) CallsTo(method, path string) []Call {
	var out []Call
	for _, c := range s.Calls() {
		if c.Method == method && c.Path == path {
			out = append(out, c)
		}
	}
	return out
}

// Reset forgets recorded calls.
func (s *Server) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = nil
}

func (s *Server) route(r *mux.Router, name, path string, h http.HandlerFunc, method string) {
	r.HandleFunc(path, func(w http.ResponseWriter, req *http.Request) {
		s.mu.Lock()
		override := s.overrides[name]
		s.mu.Unlock()
		if override != nil {
			override(w, req)
			return
		}
		h(w, req)
	}).Methods(method).Name(name)
}

func (s *Server) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c := Call{
			Method: r.Method,
			Path:   strings.TrimPrefix(r.URL.Path, Prefix),
			Header: r.Header.Clone(),
		}
		if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
			if err := r.ParseMultipartForm(32 << 20); err == nil {
				c.Form = url.Values(r.MultipartForm.Value)
				c.Files = r.MultipartForm.File
			}
		} else if r.Method == http.MethodPost {
			if err := r.ParseForm(); err == nil {
				c.Form = r.PostForm
			}
		}
		s.mu.Lock()
		s.calls = append(s.calls, c)
		s.mu.Unlock()
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func pathID(r *http.Request) int64 {
	id, _ := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	return id
}

func fieldErrors(field, msg string) map[string][]map[string]string {
	return map[string][]map[string]string{field: {{"message": msg, "code": "invalid"}}}
}

func (s *Server) listCategories(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	cats := append([]domain.Category{}, s.categories...)
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, cats)
}

func (s *Server) addCategory(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimSpace(r.PostFormValue("name"))
	if name == "" {
		writeJSON(w, http.StatusBadRequest, map[string]any{"success": false, "errors": fieldErrors("name", "This field is required.")})
		return
	}
	s.mu.Lock()
	s.nextID++
	cat := domain.Category{ID: s.nextID, Name: name}
	s.categories = append(s.categories, cat)
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "id": cat.ID, "name": cat.Name})
}

func (s *Server) editCategory(w http.ResponseWriter, r *http.Request) {
	id := pathID(r)
	name := strings.TrimSpace(r.PostFormValue("name"))
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.categories {
		if s.categories[i].ID == id {
			s.categories[i].Name = name
			writeJSON(w, http.StatusOK, map[string]any{"success": true, "id": id, "name": name})
			return
		}
	}
	writeJSON(w, http.StatusNotFound, map[string]any{"error": "Not found."})
}

func (s *Server) deleteCategory(w http.ResponseWriter, r *http.Request) {
	id := pathID(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range s.entries {
		if e.CategoryID == id {
			writeJSON(w, http.StatusBadRequest, map[string]any{"success": false, "error": "Cannot delete category as it is used in existing requests."})
			return
		}
	}
	for i := range s.categories {
		if s.categories[i].ID == id {
			s.categories = append(s.categories[:i], s.categories[i+1:]...)
			writeJSON(w, http.StatusOK, map[string]any{"success": true})
			return
		}
	}
	writeJSON(w, http.StatusNotFound, map[string]any{"error": "Not found."})
}

func (s *Server) categoryName(id int64) string {
	for _, c := range s.categories {
		if c.ID == id {
			return c.Name
		}
	}
	return ""
}

func (s *Server) listByStatus(status domain.Status) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		defer s.mu.Unlock()
		ids := make([]int64, 0, len(s.entries))
		for id, e := range s.entries {
			if status == "" || e.Status == status {
				ids = append(ids, id)
			}
		}
		sort.Slice(ids, func(i, j int) bool { return ids[i] > ids[j] })

		rows := make([][]any, 0, len(ids))
		for _, id := range ids {
			e := s.entries[id]
			rows = append(rows, []any{
				e.ID, e.Sector, s.categoryName(e.CategoryID), e.Description, e.RequestedQty, e.Unit, e.Notes,
				map[string]string{"url": e.PhotoURL, "thumbnail": e.PhotoURL},
				e.OrderedQty, e.ReceivedQty, statusLabels[e.Status], e.Date, e.Time, e.Username,
			})
		}
		writeJSON(w, http.StatusOK, map[string]any{"data": rows})
	}
}

func (s *Server) details(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	e, ok := s.entries[pathID(r)]
	var body map[string]any
	if ok {
		body = map[string]any{
			"id": e.ID, "category_id": e.CategoryID, "description": e.Description,
			"requested_qty": e.RequestedQty, "unit": e.Unit, "notes": e.Notes,
			"photo_url": e.PhotoURL, "status": e.Status,
			"ordered_qty": e.OrderedQty, "received_qty": e.ReceivedQty,
		}
	}
	s.mu.Unlock()
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]any{"error": "Request not found or access denied."})
		return
	}
	writeJSON(w, http.StatusOK, body)
}

func (s *Server) save(w http.ResponseWriter, r *http.Request) {
	if r.FormValue("description") == "" {
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"success": false,
			"message": "Please correct the errors below.",
			"errors":  fieldErrors("description", "This field is required."),
		})
		return
	}
	categoryID, _ := strconv.ParseInt(r.FormValue("category"), 10, 64)

	s.mu.Lock()
	defer s.mu.Unlock()

	var e *Entry
	if raw := r.FormValue("id"); raw != "" {
		id, _ := strconv.ParseInt(raw, 10, 64)
		existing, ok := s.entries[id]
		if !ok {
			writeJSON(w, http.StatusNotFound, map[string]any{"success": false, "message": "Request not found or permission denied to edit."})
			return
		}
		e = existing
	} else {
		s.nextID++
		e = &Entry{ID: s.nextID, Status: domain.StatusNew, Username: "fake", Date: "2026-10-19", Time: "08:30"}
		s.entries[e.ID] = e
	}
	e.CategoryID = categoryID
	e.Description = r.FormValue("description")
	e.RequestedQty = r.FormValue("requested_qty")
	e.Unit = r.FormValue("unit")
	e.Notes = r.FormValue("notes")
	if r.FormValue("remove_photo") != "" {
		e.PhotoURL = ""
	}
	if r.MultipartForm != nil {
		if files := r.MultipartForm.File["photo"]; len(files) > 0 {
			e.PhotoURL = "/media/" + files[0].Filename
			s.photos[files[0].Filename] = true
		}
	}
	if st, err := domain.ParseStatus(r.FormValue("status")); err == nil && r.FormValue("id") != "" {
		e.Status = st
		if st == domain.StatusReceived {
			e.ReceivedQty = r.FormValue("received_qty_form_input")
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "message": "Request saved successfully.", "entryId": e.ID})
}

func (s *Server) delete(w http.ResponseWriter, r *http.Request) {
	id := pathID(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[id]
	if !ok || e.Status != domain.StatusNew {
		writeJSON(w, http.StatusNotFound, map[string]any{"success": false, "message": "Request not found or permission denied to delete."})
		return
	}
	delete(s.entries, id)
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "message": fmt.Sprintf("Request \"%s...\" deleted successfully.", e.Description)})
}

func (s *Server) transition(w http.ResponseWriter, r *http.Request, field string, from, to domain.Status, set func(*Entry, string), okMsg string) {
	qty, err := domain.ParseQuantity(r.PostFormValue(field))
	if err != nil || !qty.Present() || qty.Decimal.IsNegative() {
		writeJSON(w, http.StatusBadRequest, map[string]any{"success": false, "errors": fieldErrors(field, "Enter a number.")})
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[pathID(r)]
	if !ok || e.Status != from {
		writeJSON(w, http.StatusNotFound, map[string]any{"success": false, "message": "Request not found, not in correct status, or permission denied."})
		return
	}
	set(e, qty.String())
	e.Status = to
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "message": okMsg})
}

func (s *Server) confirmOrder(w http.ResponseWriter, r *http.Request) {
	s.transition(w, r, "ordered_qty", domain.StatusNew, domain.StatusOrdered,
		func(e *Entry, q string) { e.OrderedQty = q }, "Order confirmed successfully.")
}

func (s *Server) confirmReception(w http.ResponseWriter, r *http.Request) {
	s.transition(w, r, "received_qty", domain.StatusOrdered, domain.StatusReceived,
		func(e *Entry, q string) { e.ReceivedQty = q }, "Item reception confirmed successfully.")
}

func (s *Server) media(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	ok := s.photos[mux.Vars(r)["file"]]
	s.mu.Unlock()
	if !ok {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "image/jpeg")
	if r.Method == http.MethodGet {
		_, _ = io.WriteString(w, "jpeg")
	}
}
