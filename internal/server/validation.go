package server

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"pogrn/internal/format"
	"pogrn/internal/models"
)

func requirePathPONumber(r *http.Request) (string, error) {
	po := strings.TrimSpace(r.PathValue("po"))
	if po == "" {
		return "", badRequestCode(fmt.Errorf("po_number is required"), ErrCodeMissingRequired)
	}
	return po, nil
}

func requirePathKind(r *http.Request) (models.AttachmentKind, error) {
	kind, err := models.ParseAttachmentKind(r.PathValue("kind"))
	if err != nil {
		return "", badRequestCode(err, ErrCodeInvalidKind)
	}
	return kind, nil
}

// parseReceivedDate defaults an empty value to today.
func parseReceivedDate(raw string, now time.Time) (time.Time, error) {
	if strings.TrimSpace(raw) == "" {
		y, m, d := now.Date()
		return time.Date(y, m, d, 0, 0, 0, 0, time.UTC), nil
	}
	date, err := models.ParseDate(raw)
	if err != nil {
		return time.Time{}, badRequestCode(fmt.Errorf("received_date: expected YYYY-MM-DD"), ErrCodeInvalidDate)
	}
	return date, nil
}

func normalizeExportFormat(raw string) (string, error) {
	value := strings.ToLower(strings.TrimSpace(raw))
	if value == "" {
		value = format.ExportCSV
	}
	if _, _, err := format.ExportContentType(value); err != nil {
		return "", badRequestCode(err, ErrCodeInvalidExportFormat)
	}
	return value, nil
}
