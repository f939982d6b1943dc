package server

import (
	"bytes"
	"fmt"
	"mime"
	"net/http"
	"strconv"
	"time"

	"pogrn/internal/format"
	"pogrn/internal/history"
)

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	exportFormat, err := normalizeExportFormat(r.URL.Query().Get("format"))
	if err != nil {
		s.writeErrorReq(w, r, http.StatusBadRequest, err)
		return
	}

	s.withLimiter(w, r, s.exportLimiter, "export", func() {
		records, err := s.service.List(r.Context())
		if err != nil {
			s.writeServiceError(w, r, err)
			return
		}

		var buf bytes.Buffer
		if err := format.WriteRecords(&buf, exportFormat, records); err != nil {
			s.writeErrorReq(w, r, http.StatusInternalServerError, makeAPIError(http.StatusInternalServerError, "internal", ErrCodeExportFailed, err))
			return
		}

		contentType, ext, _ := format.ExportContentType(exportFormat)
		filename := fmt.Sprintf("po-grn-%s.%s", time.Now().Format("20060102"), ext)
		w.Header().Set("Content-Type", contentType)
		w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
		w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": filename}))
		w.WriteHeader(http.StatusOK)
		if _, err := buf.WriteTo(w); err != nil {
			s.log().Warn("write export", "format", exportFormat, "error", err)
		}
	})
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	limit, err := queryIntDefault(r, "limit", 50)
	if err != nil {
		s.writeErrorReq(w, r, http.StatusBadRequest, err)
		return
	}

	events, err := s.service.History(r.Context(), history.Filter{
		PONumber: r.URL.Query().Get("po"),
		Limit:    limit,
	})
	if err != nil {
		s.writeErrorReq(w, r, http.StatusInternalServerError, makeAPIError(http.StatusInternalServerError, "internal", ErrCodeHistoryFailure, err))
		return
	}
	s.writeJSON(w, http.StatusOK, toHistoryResponses(events))
}
