package server

import (
	"errors"
	"fmt"
	"mime"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"pogrn/internal/models"
)

func (s *Server) handleListRecords(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	records, err := s.service.Search(r.Context(), query.Get("po"), query.Get("vendor"))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, toRecordResponses(records))
}

func (s *Server) handleGetRecord(w http.ResponseWriter, r *http.Request) {
	po, err := requirePathPONumber(r)
	if err != nil {
		s.writeErrorReq(w, r, http.StatusBadRequest, err)
		return
	}
	rec, err := s.service.Get(r.Context(), po)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, toRecordResponse(rec))
}

func (s *Server) handleSubmitPO(w http.ResponseWriter, r *http.Request) {
	s.withLimiter(w, r, s.uploadLimiter, "upload", func() {
		if !s.parseMultipartReq(w, r) {
			return
		}

		receivedDate, err := parseReceivedDate(r.FormValue("received_date"), time.Now())
		if err != nil {
			s.writeErrorReq(w, r, http.StatusBadRequest, err)
			return
		}

		in := SubmitInput{
			ReceivedDate: receivedDate,
			PONumber:     r.FormValue("po_number"),
			VendorName:   r.FormValue("vendor_name"),
		}

		file, header, err := r.FormFile("file")
		switch {
		case errors.Is(err, http.ErrMissingFile):
		case err != nil:
			s.writeErrorReq(w, r, http.StatusBadRequest, badRequest(err))
			return
		default:
			defer file.Close()
			in.File = &Upload{Filename: header.Filename, Content: file}
		}

		rec, err := s.service.SubmitPO(r.Context(), in)
		if err != nil {
			s.writeServiceError(w, r, err)
			return
		}
		s.writeJSON(w, http.StatusCreated, toRecordResponse(rec))
	})
}

func (s *Server) handleDownloadAttachment(w http.ResponseWriter, r *http.Request) {
	po, err := requirePathPONumber(r)
	if err != nil {
		s.writeErrorReq(w, r, http.StatusBadRequest, err)
		return
	}
	kind, err := requirePathKind(r)
	if err != nil {
		s.writeErrorReq(w, r, http.StatusBadRequest, err)
		return
	}

	data, ref, ok, err := s.service.Download(r.Context(), po, kind)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	if !ok {
		s.writeServiceError(w, r, attachmentUnavailable(fmt.Errorf("%s document for po_number %s is unavailable", kind, po)))
		return
	}

	w.Header().Set("Content-Type", documentContentType(ref, data))
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	if name := ref.OriginalFilename; name != "" {
		w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": name}))
	}
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(data); err != nil {
		s.log().Warn("write document", "po_number", po, "kind", kind, "error", err)
	}
}

func documentContentType(ref models.AttachmentRef, data []byte) string {
	if ct := mime.TypeByExtension(strings.ToLower(filepath.Ext(ref.StoragePath))); ct != "" {
		return ct
	}
	return http.DetectContentType(data)
}
