package web

import (
	"net/http"

	"github.com/evcraddock/homebid/internal/property"
)

func (s *Server) handleListProperties(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	props, err := s.properties.List(r.Context(), property.ListOptions{
		OwnerID:     q.Get("owner"),
		City:        q.Get("city"),
		State:       q.Get("state"),
		ListingType: q.Get("type"),
		Status:      q.Get("status"),
	})
	if err != nil {
		apiError(w, r, err)
		return
	}
	apiJSON(w, props, http.StatusOK)
}

func (s *Server) handleGetProperty(w http.ResponseWriter, r *http.Request) {
	p, err := s.properties.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		apiError(w, r, err)
		return
	}
	apiJSON(w, p, http.StatusOK)
}

func (s *Server) handleCreateProperty(w http.ResponseWriter, r *http.Request) {
	c, ok := requireCaller(w, r)
	if !ok {
		return
	}

	var in property.Input
	if err := decodeJSON(w, r, &in); err != nil {
		apiError(w, r, err)
		return
	}

	p, err := s.properties.Create(r.Context(), c, in)
	if err != nil {
		apiError(w, r, err)
		return
	}
	apiMessage(w, "Property created successfully", http.StatusCreated, "property_id", p.ID)
}

func (s *Server) handleUpdateProperty(w http.ResponseWriter, r *http.Request) {
	c, ok := requireCaller(w, r)
	if !ok {
		return
	}

	var in property.Input
	if err := decodeJSON(w, r, &in); err != nil {
		apiError(w, r, err)
		return
	}

	if _, err := s.properties.Update(r.Context(), c, r.PathValue("id"), in); err != nil {
		apiError(w, r, err)
		return
	}
	apiMessage(w, "Property updated successfully", http.StatusOK)
}

func (s *Server) handleDeleteProperty(w http.ResponseWriter, r *http.Request) {
	c, ok := requireCaller(w, r)
	if !ok {
		return
	}

	if err := s.properties.Delete(r.Context(), c, r.PathValue("id")); err != nil {
		apiError(w, r, err)
		return
	}
	apiMessage(w, "Property deleted successfully", http.StatusOK)
}
