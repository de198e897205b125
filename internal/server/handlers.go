package server

import (
	"net/http"
	"strings"

	"yashubustudio/hobbyfinder/hobby"
)

const (
	defaultSearchK = 5
	maxSearchK     = 100
)

type resultsResponse[T any] struct {
	Results []T `json:"results"`
}

func (s *Server) handleRecommend(w http.ResponseWriter, r *http.Request) {
	var req hobby.RecommendRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_JSON", "request body must be a JSON object of answers", err)
		return
	}
	if err := validate.Struct(&req); err != nil {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", validationMessage(err), nil)
		return
	}
	rec := s.svc.Recommend(r.Context(), req)
	respondJSON(w, http.StatusOK, rec)
}

func (s *Server) handleHobbies(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, resultsResponse[hobby.Result]{Results: s.svc.Browse()})
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	q := strings.TrimSpace(r.URL.Query().Get("q"))
	if q == "" {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "query parameter q is required", nil)
		return
	}
	k := intParam(r, "k", defaultSearchK)
	if k < 1 || k > maxSearchK {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "k must be between 1 and 100", nil)
		return
	}
	hits := s.svc.Search(r.Context(), q, k)
	respondJSON(w, http.StatusOK, resultsResponse[hobby.SearchHit]{Results: hits})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, s.svc.Health())
}
