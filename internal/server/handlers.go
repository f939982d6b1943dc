package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"pogrn/internal/api"
	"pogrn/internal/attachstore"
	"pogrn/internal/store"
)

func (s *Server) writeErrorReq(w http.ResponseWriter, r *http.Request, status int, err error) {
	if err == nil {
		err = errors.New(http.StatusText(status))
	}

	code := errorCode(status, err)
	numericCode := errorNumericCode(status, err)
	message := err.Error()

	fields := []any{"status", status, "code", code, "error_code", numericCode, "error", err}
	if r != nil {
		fields = append(fields, "method", r.Method, "path", r.URL.Path, "remote_addr", r.RemoteAddr)
		if po := r.PathValue("po"); po != "" {
			fields = append(fields, "po_number", po)
		}
	}

	switch {
	case status >= 500:
		s.log().Error("request error", fields...)
		message = "internal error"
	case status >= 400 && shouldWarnClientError(status):
		s.log().Warn("request rejected", fields...)
	case status >= 400:
		s.log().Debug("request rejected", fields...)
	}

	s.writeJSON(w, status, api.ErrorResponse{Error: message, Code: code, ErrorCode: numericCode})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.log().Error("write json response", "status", status, "error", err)
	}
}

type apiError struct {
	status  int
	code    string
	errCode int
	err     error
}

func (e apiError) Error() string {
	if e.err == nil {
		return ""
	}
	return e.err.Error()
}

func (e apiError) Unwrap() error {
	return e.err
}

func makeAPIError(status int, code string, errCode int, err error) error {
	if err == nil {
		err = errors.New(http.StatusText(status))
	}

	var existing apiError
	if errors.As(err, &existing) {
		if existing.status != 0 {
			return existing
		}
	}

	return apiError{status: status, code: code, errCode: errCode, err: err}
}

func badRequest(err error) error {
	return badRequestCode(err, ErrCodeInvalidArgument)
}

func badRequestCode(err error, code int) error {
	return makeAPIError(http.StatusBadRequest, "invalid_argument", code, err)
}

func notFoundCode(err error, code int) error {
	return makeAPIError(http.StatusNotFound, "not_found", code, err)
}

func attachmentUnavailable(err error) error {
	return makeAPIError(http.StatusNotFound, "attachment_unavailable", ErrCodeAttachmentUnavailable, err)
}

func conflictCode(err error, code int) error {
	return makeAPIError(http.StatusConflict, "conflict", code, err)
}

func internalError(err error) error {
	return makeAPIError(http.StatusInternalServerError, "internal", ErrCodeInternal, err)
}

func storeFailure(err error) error {
	return makeAPIError(http.StatusInternalServerError, "internal", ErrCodeStoreFailure, err)
}

func attachmentIOFailure(err error) error {
	return makeAPIError(http.StatusInternalServerError, "internal", ErrCodeAttachmentIO, err)
}

// classifyError maps domain errors onto API errors.
func classifyError(err error) error {
	if err == nil {
		return nil
	}

	var existing apiError
	if errors.As(err, &existing) {
		return existing
	}

	var (
		validationErr *store.ValidationError
		duplicateErr  *store.DuplicateKeyError
		notFoundErr   *store.NotFoundError
		readErr       *store.StorageReadError
		writeErr      *store.StorageWriteError
		uploadErr     *attachstore.ValidationError
		ioErr         *attachstore.IoError
	)
	switch {
	case errors.As(err, &validationErr):
		code := ErrCodeInvalidArgument
		switch {
		case validationErr.Reason == "is required":
			code = ErrCodeMissingRequired
		case validationErr.Field == "po_number":
			code = ErrCodeInvalidPONumber
		}
		return badRequestCode(err, code)
	case errors.As(err, &uploadErr):
		code := ErrCodeInvalidArgument
		switch uploadErr.Field {
		case "extension":
			code = ErrCodeInvalidExtension
		case "filename":
			code = ErrCodeInvalidFilename
		case "po_number":
			code = ErrCodeInvalidPONumber
		case "kind":
			code = ErrCodeInvalidKind
		}
		return badRequestCode(err, code)
	case errors.As(err, &duplicateErr):
		return conflictCode(err, ErrCodePOExists)
	case errors.As(err, &notFoundErr):
		return notFoundCode(err, ErrCodeRecordNotFound)
	case errors.As(err, &readErr), errors.As(err, &writeErr):
		return storeFailure(err)
	case errors.As(err, &ioErr):
		return attachmentIOFailure(err)
	default:
		return internalError(err)
	}
}

func httpStatusFromError(err error) int {
	var apiErr apiError
	if errors.As(err, &apiErr) {
		return apiErr.status
	}
	return http.StatusInternalServerError
}

func errorCode(status int, err error) string {
	var apiErr apiError
	if errors.As(err, &apiErr) && apiErr.code != "" {
		return apiErr.code
	}
	switch status {
	case http.StatusBadRequest:
		return "invalid_argument"
	case http.StatusUnauthorized:
		return "unauthorized"
	case http.StatusForbidden:
		return "forbidden"
	case http.StatusNotFound:
		return "not_found"
	case http.StatusConflict:
		return "conflict"
	case http.StatusTooManyRequests:
		return "resource_exhausted"
	case http.StatusInternalServerError:
		return "internal"
	default:
		return ""
	}
}

func errorNumericCode(status int, err error) int {
	var apiErr apiError
	if errors.As(err, &apiErr) && apiErr.errCode > 0 {
		return apiErr.errCode
	}
	return defaultErrorCodeByStatus(status)
}

func shouldWarnClientError(status int) bool {
	switch status {
	case http.StatusUnauthorized, http.StatusForbidden, http.StatusConflict, http.StatusTooManyRequests:
		return true
	default:
		return false
	}
}

func (s *Server) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	err = classifyError(err)
	s.writeErrorReq(w, r, httpStatusFromError(err), err)
}

func (s *Server) withLimiter(w http.ResponseWriter, r *http.Request, limiter chan struct{}, name string, fn func()) {
	if !s.acquireLimiter(limiter, w, r, name) {
		return
	}
	defer s.releaseLimiter(limiter)
	fn()
}

// parseMultipartReq bounds and parses a multipart body, writing the error response on failure.
func (s *Server) parseMultipartReq(w http.ResponseWriter, r *http.Request) bool {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxUploadBytes)
	if err := r.ParseMultipartForm(s.multipartMemory); err != nil {
		s.writeErrorReq(w, r, http.StatusBadRequest, classifyMultipartError(err))
		return false
	}
	return true
}

func classifyMultipartError(err error) error {
	if err == nil {
		return nil
	}
	var maxBytesErr *http.MaxBytesError
	if errors.As(err, &maxBytesErr) || strings.Contains(strings.ToLower(err.Error()), "request body too large") {
		return badRequestCode(fmt.Errorf("request body too large"), ErrCodeRequestTooLarge)
	}
	return badRequestCode(err, ErrCodeInvalidArgument)
}

func queryIntDefault(r *http.Request, key string, def int) (int, error) {
	value := strings.TrimSpace(r.URL.Query().Get(key))
	if value == "" {
		return def, nil
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return 0, badRequestCode(fmt.Errorf("invalid %s", key), ErrCodeInvalidQuery)
	}
	if parsed < 0 {
		return 0, badRequestCode(fmt.Errorf("%s must be >= 0", key), ErrCodeInvalidQuery)
	}
	return parsed, nil
}
