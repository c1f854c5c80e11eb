package web

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/JonMunkholm/contacts/internal/config"
	"github.com/JonMunkholm/contacts/internal/contacts"
	"github.com/JonMunkholm/contacts/internal/store/memory"
	"github.com/xuri/excelize/v2"
)

func newTestServer(t *testing.T, overrides map[string]string) *Server {
	t.Helper()

	vars := map[string]string{
		"STORE_DRIVER":       "memory",
		"BCRYPT_COST":        "4",
		"RATE_LIMIT_ENABLED": "false",
	}
	for k, v := range overrides {
		vars[k] = v
	}
	cfg, err := config.LoadFrom(func(k string) string { return vars[k] })
	if err != nil {
		t.Fatalf("config.LoadFrom() error = %v", err)
	}

	svc := contacts.NewService(memory.New(), contacts.Options{
		MaxConcurrentImports: cfg.Import.MaxConcurrent,
		ImportWait:           cfg.Import.MaxWaitTime,
		ImportTimeout:        cfg.Import.Timeout,
		BcryptCost:           cfg.Security.BcryptCost,
	})
	s := NewServer(svc, cfg)
	t.Cleanup(func() { _ = s.Shutdown(context.Background()) })
	return s
}

func do(t *testing.T, s *Server, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		r = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, r)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rec.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
	return v
}

func expectError(t *testing.T, rec *httptest.ResponseRecorder, status int, code string) {
	t.Helper()
	if rec.Code != status {
		t.Fatalf("status = %d, want %d (body %s)", rec.Code, status, rec.Body.String())
	}
	resp := decode[ErrorResponse](t, rec)
	if resp.Code != code {
		t.Errorf("code = %q, want %q (body %s)", resp.Code, code, rec.Body.String())
	}
	if resp.Message == "" || resp.Error == "" {
		t.Errorf("incomplete error body: %s", rec.Body.String())
	}
}

func register(t *testing.T, s *Server, username string) int64 {
	t.Helper()
	rec := do(t, s, http.MethodPost, "/api/register", contacts.Credentials{Username: username, Password: "pw"})
	if rec.Code != http.StatusCreated {
		t.Fatalf("register status = %d: %s", rec.Code, rec.Body.String())
	}
	return decode[idResponse](t, rec).ID
}

func createContact(t *testing.T, s *Server, req contacts.CreateContactRequest) int64 {
	t.Helper()
	rec := do(t, s, http.MethodPost, "/api/contacts", req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create status = %d: %s", rec.Code, rec.Body.String())
	}
	return decode[idResponse](t, rec).ID
}

func TestHealth(t *testing.T) {
	s := newTestServer(t, nil)
	rec := do(t, s, http.MethodGet, "/healthz", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	resp := decode[healthResponse](t, rec)
	if resp.Status != "ok" || resp.Imports.Capacity != 3 {
		t.Errorf("health = %+v", resp)
	}
	if rec.Header().Get("X-Content-Type-Options") != "nosniff" {
		t.Error("security headers missing")
	}
}

func TestRegisterAndLogin(t *testing.T) {
	s := newTestServer(t, nil)
	uid := register(t, s, "ann")

	expectError(t, do(t, s, http.MethodPost, "/api/register", contacts.Credentials{Username: "ann", Password: "x"}), http.StatusConflict, "CON001")

	rec := do(t, s, http.MethodPost, "/api/login", contacts.Credentials{Username: "ann", Password: "pw"})
	if rec.Code != http.StatusOK {
		t.Fatalf("login status = %d: %s", rec.Code, rec.Body.String())
	}
	if got := decode[loginResponse](t, rec).UserID; got != uid {
		t.Errorf("user_id = %d, want %d", got, uid)
	}

	expectError(t, do(t, s, http.MethodPost, "/api/login", contacts.Credentials{Username: "ann", Password: "bad"}), http.StatusUnauthorized, "AUTH001")
}

func TestMalformedBody(t *testing.T) {
	s := newTestServer(t, nil)
	req := httptest.NewRequest(http.MethodPost, "/api/contacts", strings.NewReader("{not json"))
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)
	expectError(t, rec, http.StatusBadRequest, "VAL003")
}

func TestContactLifecycle(t *testing.T) {
	s := newTestServer(t, nil)
	uid := register(t, s, "owner")

	id := createContact(t, s, contacts.CreateContactRequest{
		OwnerID: uid,
		Name:    "Alice",
		Methods: []contacts.MethodInput{
			{Type: "phone", Value: "123", Label: "mobile"},
			{Type: "email", Value: ""},
		},
	})

	list := decode[[]contacts.Contact](t, do(t, s, http.MethodGet, "/api/contacts/"+itoa(uid), nil))
	if len(list) != 1 || list[0].ID != id || len(list[0].Methods) != 1 {
		t.Fatalf("list = %+v", list)
	}
	if list[0].Methods[0].Label != "mobile" {
		t.Errorf("label = %q, want mobile", list[0].Methods[0].Label)
	}

	rec := do(t, s, http.MethodPut, "/api/contacts/"+itoa(id), contacts.UpdateContactRequest{
		Name:    "Alicia",
		Methods: []contacts.MethodInput{{Type: "email", Value: "a@b.com"}},
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("update status = %d: %s", rec.Code, rec.Body.String())
	}

	fav := decode[favoriteResponse](t, do(t, s, http.MethodPost, "/api/contacts/"+itoa(id)+"/favorite", nil))
	if !fav.IsFavorite {
		t.Error("first toggle should set favorite")
	}

	rec = do(t, s, http.MethodPut, "/api/contacts/"+itoa(id)+"/methods", syncMethodsRequest{
		Methods: []contacts.MethodInput{{Type: "social", Value: "@alicia"}, {Type: "social", Value: "@alicia"}},
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("sync status = %d: %s", rec.Code, rec.Body.String())
	}

	list = decode[[]contacts.Contact](t, do(t, s, http.MethodGet, "/api/contacts/"+itoa(uid), nil))
	c := list[0]
	if c.Name != "Alicia" || !c.IsFavorite || len(c.Methods) != 2 || c.Methods[0].Type != contacts.MethodSocial {
		t.Errorf("contact after edits = %+v", c)
	}

	count := decode[countResponse](t, do(t, s, http.MethodGet, "/api/contacts/count/"+itoa(uid), nil))
	if count.Total != 1 {
		t.Errorf("total = %d, want 1", count.Total)
	}

	for i := 0; i < 2; i++ {
		rec = do(t, s, http.MethodDelete, "/api/contacts/"+itoa(id), nil)
		if rec.Code != http.StatusOK {
			t.Fatalf("delete #%d status = %d: %s", i+1, rec.Code, rec.Body.String())
		}
	}
	count = decode[countResponse](t, do(t, s, http.MethodGet, "/api/contacts/count/"+itoa(uid), nil))
	if count.Total != 0 {
		t.Errorf("total after delete = %d, want 0", count.Total)
	}
}

func TestContactErrors(t *testing.T) {
	s := newTestServer(t, nil)
	uid := register(t, s, "owner")

	tests := []struct {
		name   string
		method string
		path   string
		body   any
		status int
		code   string
	}{
		{"invalid method type", http.MethodPost, "/api/contacts", contacts.CreateContactRequest{OwnerID: uid, Name: "X", Methods: []contacts.MethodInput{{Type: "fax", Value: "1"}}}, http.StatusBadRequest, "VAL006"},
		{"missing name", http.MethodPost, "/api/contacts", contacts.CreateContactRequest{OwnerID: uid}, http.StatusBadRequest, "VAL003"},
		{"unknown owner", http.MethodPost, "/api/contacts", contacts.CreateContactRequest{OwnerID: uid + 9, Name: "X"}, http.StatusNotFound, "NF002"},
		{"update missing contact", http.MethodPut, "/api/contacts/999", contacts.UpdateContactRequest{Name: "X"}, http.StatusNotFound, "NF001"},
		{"toggle missing contact", http.MethodPost, "/api/contacts/999/favorite", nil, http.StatusNotFound, "NF001"},
		{"bad path id", http.MethodGet, "/api/contacts/abc", nil, http.StatusBadRequest, "VAL000"},
		{"bad export format", http.MethodGet, "/api/contacts/export/" + itoa(uid) + "?format=pdf", nil, http.StatusBadRequest, "VAL000"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			expectError(t, do(t, s, tt.method, tt.path, tt.body), tt.status, tt.code)
		})
	}
}

func TestExport(t *testing.T) {
	s := newTestServer(t, nil)
	uid := register(t, s, "owner")
	createContact(t, s, contacts.CreateContactRequest{
		OwnerID: uid,
		Name:    "Alice",
		Methods: []contacts.MethodInput{{Type: "phone", Value: "123"}, {Type: "email", Value: "a@b.com"}},
	})

	rec := do(t, s, http.MethodGet, "/api/contacts/export/"+itoa(uid), nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("export status = %d: %s", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); ct != contacts.XLSXContentType {
		t.Errorf("Content-Type = %q", ct)
	}
	if cd := rec.Header().Get("Content-Disposition"); !strings.Contains(cd, contacts.XLSXFileName) {
		t.Errorf("Content-Disposition = %q", cd)
	}

	f, err := excelize.OpenReader(rec.Body)
	if err != nil {
		t.Fatalf("OpenReader() error = %v", err)
	}
	defer f.Close()
	rows, err := f.GetRows(contacts.SheetName)
	if err != nil {
		t.Fatalf("GetRows() error = %v", err)
	}
	if len(rows) != 2 || strings.Join(rows[1], "|") != "Alice|no|123|a@b.com" {
		t.Errorf("rows = %q", rows)
	}

	rec = do(t, s, http.MethodGet, "/api/contacts/export/"+itoa(uid)+"?format=csv", nil)
	want := "Name,Favorite,Phone,Email,Social,Address\nAlice,no,123,a@b.com,,\n"
	if rec.Body.String() != want {
		t.Errorf("csv = %q, want %q", rec.Body.String(), want)
	}
}

func upload(t *testing.T, s *Server, path, filename, content string) *httptest.ResponseRecorder {
	t.Helper()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	if filename != "" {
		part, err := mw.CreateFormFile("file", filename)
		if err != nil {
			t.Fatalf("CreateFormFile() error = %v", err)
		}
		if _, err := part.Write([]byte(content)); err != nil {
			t.Fatalf("write part: %v", err)
		}
	} else if err := mw.WriteField("note", "no file"); err != nil {
		t.Fatalf("WriteField() error = %v", err)
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("close multipart: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, path, &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)
	return rec
}

func TestImportAndRollback(t *testing.T) {
	s := newTestServer(t, nil)
	uid := register(t, s, "owner")

	rec := upload(t, s, "/api/contacts/import/"+itoa(uid), "people.csv", "Name,Favorite,Phone\nAnn,yes,\"1, 2\"\nBen,no,\n")
	if rec.Code != http.StatusCreated {
		t.Fatalf("import status = %d: %s", rec.Code, rec.Body.String())
	}
	res := decode[contacts.ImportResult](t, rec)
	if res.RowsImported != 2 || res.ImportID == "" {
		t.Fatalf("import result = %+v", res)
	}

	list := decode[[]contacts.Contact](t, do(t, s, http.MethodGet, "/api/contacts/"+itoa(uid), nil))
	if len(list) != 2 || !list[0].IsFavorite || len(list[0].Methods) != 2 {
		t.Errorf("imported = %+v", list)
	}

	path := "/api/contacts/import/" + itoa(uid) + "/" + res.ImportID
	rec = do(t, s, http.MethodDelete, path, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("rollback status = %d: %s", rec.Code, rec.Body.String())
	}
	if rb := decode[contacts.RollbackResult](t, rec); rb.RowsDeleted != 2 {
		t.Errorf("rows_deleted = %d, want 2", rb.RowsDeleted)
	}

	expectError(t, do(t, s, http.MethodDelete, path, nil), http.StatusNotFound, "NF003")
	expectError(t, do(t, s, http.MethodDelete, "/api/contacts/import/"+itoa(uid)+"/nope", nil), http.StatusBadRequest, "VAL007")
}

func TestImportErrors(t *testing.T) {
	s := newTestServer(t, map[string]string{"IMPORT_MAX_FILE_SIZE": "512"})
	uid := register(t, s, "owner")
	path := "/api/contacts/import/" + itoa(uid)

	tests := []struct {
		name     string
		filename string
		content  string
		status   int
		code     string
	}{
		{"no file", "", "", http.StatusBadRequest, "FILE004"},
		{"legacy xls", "old.xls", "x", http.StatusBadRequest, "FILE002"},
		{"missing name column", "a.csv", "Phone\n1\n", http.StatusBadRequest, "VAL004"},
		{"empty name", "a.csv", "Name\nA\n,x\n", http.StatusBadRequest, "VAL003"},
		{"too large", "big.csv", "Name\n" + strings.Repeat("x", 1024), http.StatusRequestEntityTooLarge, "FILE001"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			expectError(t, upload(t, s, path, tt.filename, tt.content), tt.status, tt.code)
		})
	}

	count := decode[countResponse](t, do(t, s, http.MethodGet, "/api/contacts/count/"+itoa(uid), nil))
	if count.Total != 0 {
		t.Errorf("total = %d after failed imports, want 0", count.Total)
	}
}

func TestRateLimit(t *testing.T) {
	s := newTestServer(t, map[string]string{
		"RATE_LIMIT_ENABLED":             "true",
		"RATE_LIMIT_REQUESTS_PER_MINUTE": "2",
	})

	for i := 0; i < 2; i++ {
		if rec := do(t, s, http.MethodGet, "/healthz", nil); rec.Code != http.StatusOK {
			t.Fatalf("request %d status = %d", i+1, rec.Code)
		}
	}
	rec := do(t, s, http.MethodGet, "/healthz", nil)
	expectError(t, rec, http.StatusTooManyRequests, "RATE001")
	if rec.Header().Get("Retry-After") != "60" {
		t.Errorf("Retry-After = %q, want 60", rec.Header().Get("Retry-After"))
	}
}

func TestAPIKeyRequired(t *testing.T) {
	s := newTestServer(t, map[string]string{
		"REQUIRE_API_KEY": "true",
		"API_KEYS":        "secret",
	})

	if rec := do(t, s, http.MethodGet, "/healthz", nil); rec.Code != http.StatusOK {
		t.Errorf("healthz status = %d, want 200 without key", rec.Code)
	}
	if rec := do(t, s, http.MethodGet, "/api/contacts/count/1", nil); rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401 without key", rec.Code)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/contacts/count/1", nil)
	req.Header.Set("X-API-Key", "secret")
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200 with key", rec.Code)
	}
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{contacts.Validationf("op", "f", "bad"), http.StatusBadRequest},
		{contacts.Formatf("op", "bad file"), http.StatusBadRequest},
		{contacts.NotFoundf("op", "gone"), http.StatusNotFound},
		{contacts.Conflictf("op", "dup"), http.StatusConflict},
		{contacts.ErrTooManyImports, http.StatusServiceUnavailable},
		{io.ErrUnexpectedEOF, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		if got := statusFor(tt.err); got != tt.want {
			t.Errorf("statusFor(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}

func itoa(n int64) string {
	return strconv.FormatInt(n, 10)
}
