package server

import (
	"net/http"
)

func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()

	// Health check and info.
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /v1/info", s.handleInfo)

	// Records.
	mux.HandleFunc("GET /v1/records", s.handleListRecords)
	mux.HandleFunc("POST /v1/records", s.handleSubmitPO)
	mux.HandleFunc("GET /v1/records/{po}", s.handleGetRecord)
	mux.HandleFunc("GET /v1/records/{po}/attachments/{kind}", s.handleDownloadAttachment)

	// Export and history.
	mux.HandleFunc("GET /v1/export", s.handleExport)
	mux.HandleFunc("GET /v1/history", s.handleHistory)

	// Admin.
	mux.HandleFunc("POST /v1/admin/records/{po}/grn", s.handleAdminUpdateGRN)
	mux.HandleFunc("POST /v1/admin/dedupe", s.handleAdminDedupe)

	return mux
}
