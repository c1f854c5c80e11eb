package web

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/JonMunkholm/contacts/internal/contacts"
	"github.com/go-chi/chi/v5"
)

// pathID parses the positive integer URL parameter name.
func pathID(r *http.Request, op, name, field string) (int64, error) {
	raw := chi.URLParam(r, name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, contacts.Validationf(op, field, "invalid id %q", raw)
	}
	return id, nil
}

// decodeJSON reads a JSON body of at most maxJSONBody bytes into v.
func decodeJSON(w http.ResponseWriter, r *http.Request, op string, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBody)

	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var maxBytes *http.MaxBytesError
		if errors.As(err, &maxBytes) {
			return err
		}
		return &contacts.Error{Kind: contacts.KindValidation, Op: op, Field: "body", Message: "required field missing or malformed request body", Err: err}
	}
	return nil
}

type statusResponse struct {
	Status string `json:"status"`
}

type idResponse struct {
	ID int64 `json:"id"`
}
