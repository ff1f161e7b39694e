package api

import "net/http"

func (s *Server) handleListInsights(w http.ResponseWriter, r *http.Request) {
	var dismissed *bool
	switch r.URL.Query().Get("dismissed") {
	case "true":
		v := true
		dismissed = &v
	case "false":
		v := false
		dismissed = &v
	}
	insights, err := s.deps.Insights.List(r.Context(), dismissed)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, insights)
}

func (s *Server) handleGenerateInsights(w http.ResponseWriter, r *http.Request) {
	result, err := s.deps.Insights.Generate(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, result)
}

func (s *Server) handleDismissInsight(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if err := s.deps.Insights.Dismiss(r.Context(), id); err != nil {
		s.fail(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, successResponse{Success: true})
}

func (s *Server) handleDeleteInsight(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if err := s.deps.Insights.Delete(r.Context(), id); err != nil {
		s.fail(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, successResponse{Success: true})
}
