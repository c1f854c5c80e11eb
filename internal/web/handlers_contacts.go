package web

import (
	"net/http"

	"github.com/JonMunkholm/contacts/internal/contacts"
)

func (s *Server) handleCreateContact(w http.ResponseWriter, r *http.Request) {
	var req contacts.CreateContactRequest
	if err := decodeJSON(w, r, "create contact", &req); err != nil {
		respondError(w, r, err)
		return
	}

	id, err := s.service.CreateContact(r.Context(), req)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSONStatus(w, http.StatusCreated, idResponse{ID: id})
}

func (s *Server) handleListContacts(w http.ResponseWriter, r *http.Request) {
	ownerID, err := pathID(r, "list contacts", "userID", "user_id")
	if err != nil {
		respondError(w, r, err)
		return
	}

	list, err := s.service.ListContacts(r.Context(), ownerID)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, list)
}

func (s *Server) handleUpdateContact(w http.ResponseWriter, r *http.Request) {
	const op = "update contact"

	id, err := pathID(r, op, "contactID", "contact_id")
	if err != nil {
		respondError(w, r, err)
		return
	}
	var req contacts.UpdateContactRequest
	if err := decodeJSON(w, r, op, &req); err != nil {
		respondError(w, r, err)
		return
	}
	req.ContactID = id

	if err := s.service.UpdateContact(r.Context(), req); err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, statusResponse{Status: "updated"})
}

type syncMethodsRequest struct {
	Methods []contacts.MethodInput `json:"methods"`
}

func (s *Server) handleSyncMethods(w http.ResponseWriter, r *http.Request) {
	const op = "sync methods"

	id, err := pathID(r, op, "contactID", "contact_id")
	if err != nil {
		respondError(w, r, err)
		return
	}
	var req syncMethodsRequest
	if err := decodeJSON(w, r, op, &req); err != nil {
		respondError(w, r, err)
		return
	}

	if err := s.service.SyncMethods(r.Context(), id, req.Methods); err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, statusResponse{Status: "updated"})
}

type favoriteResponse struct {
	IsFavorite bool `json:"is_favorite"`
}

func (s *Server) handleToggleFavorite(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "toggle favorite", "contactID", "contact_id")
	if err != nil {
		respondError(w, r, err)
		return
	}

	fav, err := s.service.ToggleFavorite(r.Context(), id)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, favoriteResponse{IsFavorite: fav})
}

func (s *Server) handleDeleteContact(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "delete contact", "contactID", "contact_id")
	if err != nil {
		respondError(w, r, err)
		return
	}

	if err := s.service.DeleteContact(r.Context(), id); err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, statusResponse{Status: "deleted"})
}

type countResponse struct {
	Total int `json:"total"`
}

func (s *Server) handleCountContacts(w http.ResponseWriter, r *http.Request) {
	ownerID, err := pathID(r, "count contacts", "userID", "user_id")
	if err != nil {
		respondError(w, r, err)
		return
	}

	n, err := s.service.CountContacts(r.Context(), ownerID)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, countResponse{Total: n})
}
