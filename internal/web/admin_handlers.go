package web

import "net/http"

func (s *Server) handleAdminUsers(w http.ResponseWriter, r *http.Request) {
	c, ok := requireCaller(w, r)
	if !ok {
		return
	}

	users, err := s.admin.ListUsers(r.Context(), c)
	if err != nil {
		apiError(w, r, err)
		return
	}
	apiJSON(w, users, http.StatusOK)
}

func (s *Server) handleAdminDeleteUser(w http.ResponseWriter, r *http.Request) {
	c, ok := requireCaller(w, r)
	if !ok {
		return
	}

	if err := s.admin.DeleteUser(r.Context(), c, r.PathValue("id")); err != nil {
		apiError(w, r, err)
		return
	}
	apiMessage(w, "User deleted successfully", http.StatusOK)
}

func (s *Server) handleAdminBids(w http.ResponseWriter, r *http.Request) {
	c, ok := requireCaller(w, r)
	if !ok {
		return
	}

	bids, err := s.admin.ListBids(r.Context(), c)
	if err != nil {
		apiError(w, r, err)
		return
	}
	apiJSON(w, bids, http.StatusOK)
}

func (s *Server) handleAdminContracts(w http.ResponseWriter, r *http.Request) {
	c, ok := requireCaller(w, r)
	if !ok {
		return
	}

	contracts, err := s.admin.ListContracts(r.Context(), c)
	if err != nil {
		apiError(w, r, err)
		return
	}
	apiJSON(w, contracts, http.StatusOK)
}
