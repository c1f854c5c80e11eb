package web

import (
	"bytes"
	"errors"
	"net/http"
	"strconv"

	"github.com/JonMunkholm/contacts/internal/contacts"
	"github.com/go-chi/chi/v5"
)

// multipartMemory is how much of an upload ParseMultipartForm keeps in
// memory before spilling to temporary files.
const multipartMemory = 8 << 20

// handleExport downloads every contact of the user as a workbook, or as
// CSV with ?format=csv. The file is rendered in memory first so a failure
// still produces a JSON error.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	ownerID, err := pathID(r, "export", "userID", "user_id")
	if err != nil {
		respondError(w, r, err)
		return
	}

	rows, err := s.service.Export(r.Context(), ownerID)
	if err != nil {
		respondError(w, r, err)
		return
	}

	var (
		buf         bytes.Buffer
		filename    = contacts.XLSXFileName
		contentType = contacts.XLSXContentType
	)
	switch r.URL.Query().Get("format") {
	case "", "xlsx":
		err = contacts.WriteXLSX(&buf, rows)
	case "csv":
		filename, contentType = contacts.CSVFileName, contacts.CSVContentType
		err = contacts.WriteCSV(&buf, rows)
	default:
		err = contacts.Validationf("export", "format", "unsupported export format %q (want xlsx or csv)", r.URL.Query().Get("format"))
	}
	if err != nil {
		respondError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}

// handleImport reads the multipart field "file" and imports it.
func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	const op = "import"

	ownerID, err := pathID(r, op, "userID", "user_id")
	if err != nil {
		respondError(w, r, err)
		return
	}

	maxSize := s.cfg.Import.MaxFileSize
	if r.ContentLength > maxSize {
		respondError(w, r, &contacts.Error{Kind: contacts.KindFormat, Op: op, Message: "file too large", Err: &http.MaxBytesError{Limit: maxSize}})
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxSize)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var maxBytes *http.MaxBytesError
		if errors.As(err, &maxBytes) {
			respondError(w, r, &contacts.Error{Kind: contacts.KindFormat, Op: op, Message: "file too large", Err: err})
			return
		}
		respondError(w, r, &contacts.Error{Kind: contacts.KindFormat, Op: op, Message: "no file provided", Err: err})
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		respondError(w, r, contacts.Formatf(op, "no file provided"))
		return
	}
	defer file.Close()

	res, err := s.service.Import(r.Context(), ownerID, header.Filename, file)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSONStatus(w, http.StatusCreated, res)
}

func (s *Server) handleRollbackImport(w http.ResponseWriter, r *http.Request) {
	const op = "rollback import"

	ownerID, err := pathID(r, op, "userID", "user_id")
	if err != nil {
		respondError(w, r, err)
		return
	}

	res, err := s.service.RollbackImport(r.Context(), ownerID, chi.URLParam(r, "importID"))
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, res)
}
