package api

import (
	"net/http"
	"strings"

	"fjacquet/finance-analyzer/internal/models"
)

type categoryRequest struct {
	Name     string `json:"name"`
	ParentID *int64 `json:"parent_id"`
	Icon     string `json:"icon"`
	Color    string `json:"color"`
}

func (s *Server) handleListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := s.deps.Store.ListCategories(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, categories)
}

func (s *Server) handleGetCategory(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		s.fail(w, r, err)
		return
	}
	c, err := s.deps.Store.GetCategory(r.Context(), id)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, c)
}

func (s *Server) handleCreateCategory(w http.ResponseWriter, r *http.Request) {
	var req categoryRequest
	if err := decodeJSON(r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		WriteError(w, http.StatusBadRequest, "name is required")
		return
	}
	c := &models.Category{Name: req.Name, ParentID: req.ParentID, Icon: req.Icon, Color: req.Color}
	if err := s.deps.Store.CreateCategory(r.Context(), c); err != nil {
		s.fail(w, r, err)
		return
	}
	created, err := s.deps.Store.GetCategory(r.Context(), c.ID)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	WriteJSON(w, http.StatusCreated, created)
}

func (s *Server) handleUpdateCategory(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		s.fail(w, r, err)
		return
	}
	var req categoryRequest
	if err := decodeJSON(r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	c, err := s.deps.Store.GetCategory(r.Context(), id)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if name := strings.TrimSpace(req.Name); name != "" {
		c.Name = name
	}
	if req.ParentID != nil {
		c.ParentID = req.ParentID
	}
	if req.Icon != "" {
		c.Icon = req.Icon
	}
	if req.Color != "" {
		c.Color = req.Color
	}
	if err := s.deps.Store.UpdateCategory(r.Context(), c); err != nil {
		s.fail(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, c)
}

func (s *Server) handleDeleteCategory(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if err := s.deps.Store.DeleteCategory(r.Context(), id); err != nil {
		s.fail(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, successResponse{Success: true})
}
