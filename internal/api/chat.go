package api

import "net/http"

type chatRequest struct {
	Message   string `json:"message"`
	SessionID string `json:"sessionId"`
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := decodeJSON(r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	reply, err := s.deps.Chat.Send(r.Context(), req.Message, req.SessionID)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, reply)
}

func (s *Server) handleChatSessions(w http.ResponseWriter, r *http.Request) {
	sessions, err := s.deps.Chat.Sessions(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, sessions)
}

func (s *Server) handleChatSession(w http.ResponseWriter, r *http.Request) {
	messages, err := s.deps.Chat.Session(r.Context(), r.PathValue("id"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, messages)
}

func (s *Server) handleDeleteChatSession(w http.ResponseWriter, r *http.Request) {
	if err := s.deps.Chat.DeleteSession(r.Context(), r.PathValue("id")); err != nil {
		s.fail(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, successResponse{Success: true})
}
