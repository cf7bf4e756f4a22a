package web

import (
	"net/http"

	"github.com/evcraddock/homebid/internal/bid"
)

// statusRequest is the body of a status change.
type statusRequest struct {
	Status string `json:"status"`
}

func (s *Server) handleCreateBid(w http.ResponseWriter, r *http.Request) {
	c, ok := requireCaller(w, r)
	if !ok {
		return
	}

	var in bid.Input
	if err := decodeJSON(w, r, &in); err != nil {
		apiError(w, r, err)
		return
	}

	b, err := s.bids.Create(r.Context(), c, in)
	if err != nil {
		apiError(w, r, err)
		return
	}
	apiMessage(w, "Bid created successfully", http.StatusCreated, "bid_id", b.ID)
}

func (s *Server) handlePropertyBids(w http.ResponseWriter, r *http.Request) {
	bids, err := s.bids.ListByProperty(r.Context(), r.PathValue("id"))
	if err != nil {
		apiError(w, r, err)
		return
	}
	apiJSON(w, bids, http.StatusOK)
}

func (s *Server) handleUserBids(w http.ResponseWriter, r *http.Request) {
	c, ok := requireCaller(w, r)
	if !ok {
		return
	}

	bids, err := s.bids.ListOwn(r.Context(), c)
	if err != nil {
		apiError(w, r, err)
		return
	}
	apiJSON(w, bids, http.StatusOK)
}

func (s *Server) handleBidStatus(w http.ResponseWriter, r *http.Request) {
	c, ok := requireCaller(w, r)
	if !ok {
		return
	}

	var req statusRequest
	if err := decodeJSON(w, r, &req); err != nil {
		apiError(w, r, err)
		return
	}

	if _, err := s.bids.SetStatus(r.Context(), c, r.PathValue("id"), req.Status); err != nil {
		apiError(w, r, err)
		return
	}
	apiMessage(w, "Bid status updated successfully", http.StatusOK)
}
