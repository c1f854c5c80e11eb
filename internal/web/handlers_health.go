package web

import (
	"net/http"

	"github.com/JonMunkholm/contacts/internal/contacts"
)

type healthResponse struct {
	Status  string                `json:"status"`
	Imports contacts.ImportStatus `json:"imports"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, healthResponse{Status: "ok", Imports: s.service.ImportStatus()})
}
