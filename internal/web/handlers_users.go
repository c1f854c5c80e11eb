package web

import (
	"net/http"

	"github.com/JonMunkholm/contacts/internal/contacts"
)

type loginResponse struct {
	UserID int64 `json:"user_id"`
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var creds contacts.Credentials
	if err := decodeJSON(w, r, "register", &creds); err != nil {
		respondError(w, r, err)
		return
	}

	id, err := s.service.Register(r.Context(), creds)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSONStatus(w, http.StatusCreated, idResponse{ID: id})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var creds contacts.Credentials
	if err := decodeJSON(w, r, "login", &creds); err != nil {
		respondError(w, r, err)
		return
	}

	id, err := s.service.Login(r.Context(), creds)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, loginResponse{UserID: id})
}
