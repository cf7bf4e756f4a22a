package web

import (
	"net/http"

	"github.com/evcraddock/homebid/internal/contract"
)

func (s *Server) handleCreateContract(w http.ResponseWriter, r *http.Request) {
	c, ok := requireCaller(w, r)
	if !ok {
		return
	}

	var in contract.Input
	if err := decodeJSON(w, r, &in); err != nil {
		apiError(w, r, err)
		return
	}

	ct, err := s.contracts.Create(r.Context(), c, in)
	if err != nil {
		apiError(w, r, err)
		return
	}
	apiMessage(w, "Contract created successfully", http.StatusCreated, "contract_id", ct.ID)
}

func (s *Server) handleUserContracts(w http.ResponseWriter, r *http.Request) {
	c, ok := requireCaller(w, r)
	if !ok {
		return
	}

	contracts, err := s.contracts.ListOwn(r.Context(), c)
	if err != nil {
		apiError(w, r, err)
		return
	}
	apiJSON(w, contracts, http.StatusOK)
}

func (s *Server) handleContractStatus(w http.ResponseWriter, r *http.Request) {
	c, ok := requireCaller(w, r)
	if !ok {
		return
	}

	var req statusRequest
	if err := decodeJSON(w, r, &req); err != nil {
		apiError(w, r, err)
		return
	}

	if _, err := s.contracts.SetStatus(r.Context(), c, r.PathValue("id"), req.Status); err != nil {
		apiError(w, r, err)
		return
	}
	apiMessage(w, "Contract status updated successfully", http.StatusOK)
}
