package server

import (
	"net/http"

	"pogrn/internal/api"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleInfo(w http.ResponseWriter, r *http.Request) {
	stats, err := s.service.Stats(r.Context())
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	exts := s.info.allowedExts
	if exts == nil {
		exts = []string{}
	}
	resp := api.InfoResponse{
		TablePath:            s.info.tablePath,
		PODir:                s.info.poDir,
		GRNDir:               s.info.grnDir,
		AllowedExtensions:    exts,
		HistorySchemaVersion: s.service.HistorySchemaVersion(),
		TotalRecords:         stats.Total,
		PendingRecords:       stats.Pending,
		CompletedRecords:     stats.Completed,
	}

	s.writeJSON(w, http.StatusOK, resp)
}
