package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"fjacquet/finance-analyzer/internal/logging"
	"fjacquet/finance-analyzer/internal/models"
	"fjacquet/finance-analyzer/internal/parsererror"
)

// multipartOverhead leaves room for multipart headers around the file.
const multipartOverhead = 64 << 10

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	if r.ContentLength > s.opts.MaxUploadSize+multipartOverhead {
		WriteError(w, http.StatusRequestEntityTooLarge, "File too large")
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, s.opts.MaxUploadSize+multipartOverhead)
	file, header, err := r.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			WriteError(w, http.StatusRequestEntityTooLarge, "File too large")
			return
		}
		WriteError(w, http.StatusBadRequest, "No file uploaded")
		return
	}
	defer file.Close()

	if strings.ToLower(filepath.Ext(header.Filename)) != ".csv" {
		s.fail(w, r, &parsererror.ValidationError{File: header.Filename, Reason: "Only CSV files are allowed"})
		return
	}
	if header.Size > s.opts.MaxUploadSize {
		WriteError(w, http.StatusRequestEntityTooLarge, "File too large")
		return
	}

	stored, err := s.deps.Files.Save(header.Filename, file)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	jobID, err := s.deps.Uploads.ProcessCSV(r.Context(), header.Filename, stored)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.logger.Info("Upload accepted",
		logging.F(logging.FieldFile, header.Filename),
		logging.F(logging.FieldJobID, jobID))
	WriteJSON(w, http.StatusOK, map[string]string{"jobId": jobID})
}

func (s *Server) handleBanks(w http.ResponseWriter, _ *http.Request) {
	WriteJSON(w, http.StatusOK, map[string][]string{"banks": s.deps.Banks.SupportedBanks()})
}

func (s *Server) handleJobStatus(w http.ResponseWriter, r *http.Request) {
	job, err := s.deps.Uploads.GetJobStatus(r.PathValue("jobId"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, job)
}

type confirmRequest struct {
	Corrections []models.CategoryCorrection `json:"corrections"`
}

func (s *Server) handleConfirm(w http.ResponseWriter, r *http.Request) {
	var req confirmRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		WriteError(w, http.StatusBadRequest, "invalid JSON body: "+err.Error())
		return
	}
	result, err := s.deps.Uploads.ConfirmUpload(r.Context(), r.PathValue("jobId"), req.Corrections)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, result)
}
