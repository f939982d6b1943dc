package server

import (
	"fmt"
	"net/http"

	"pogrn/internal/api"
)

func (s *Server) handleAdminUpdateGRN(w http.ResponseWriter, r *http.Request) {
	po, err := requirePathPONumber(r)
	if err != nil {
		s.writeErrorReq(w, r, http.StatusBadRequest, err)
		return
	}

	s.withLimiter(w, r, s.uploadLimiter, "upload", func() {
		if !s.parseMultipartReq(w, r) {
			return
		}

		file, header, err := r.FormFile("file")
		if err != nil {
			s.writeErrorReq(w, r, http.StatusBadRequest, badRequestCode(fmt.Errorf("file is required"), ErrCodeMissingRequired))
			return
		}
		defer file.Close()

		rec, err := s.service.AdminUpdateGRN(r.Context(), po, Upload{Filename: header.Filename, Content: file})
		if err != nil {
			s.writeServiceError(w, r, err)
			return
		}
		s.writeJSON(w, http.StatusOK, toRecordResponse(rec))
	})
}

func (s *Server) handleAdminDedupe(w http.ResponseWriter, r *http.Request) {
	if r.Header.Get("X-Confirm") != "true" {
		s.writeErrorReq(w, r, http.StatusBadRequest, badRequestCode(fmt.Errorf("dedupe requires X-Confirm: true header"), ErrCodeConfirmationRequired))
		return
	}

	before, after, err := s.service.Dedupe(r.Context())
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusOK, api.DedupeResponse{Before: before, After: after, Removed: before - after})
}
