package main

import (
	"context"
	"errors"
	"net"

	"pogrn/internal/api"
)

// Numeric codes mirrored from the server's error catalog.
const (
	errCodeInvalidExtension     = 1007
	errCodeConfirmationRequired = 1012
	errCodeRecordNotFound       = 2001
	errCodeAttachmentMissing    = 2003
	errCodePOExists             = 2101
	errCodeStoreFailure         = 4002
)

func formatCLIError(err error) []string {
	if err == nil {
		return nil
	}

	lines := []string{err.Error()}

	var apiErr *api.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.Code {
		case "unauthorized", "forbidden":
			lines = append(lines, "hint: verify POGRN_API_TOKEN and POGRN_ADMIN_TOKEN configuration.")
		case "resource_exhausted":
			lines = append(lines, "hint: retry shortly or reduce concurrent uploads and exports.")
		}
		switch apiErr.ErrorCode {
		case errCodeInvalidExtension:
			lines = append(lines, "hint: check allowed_extensions with: pogrn info")
		case errCodeConfirmationRequired:
			lines = append(lines, "hint: re-run with --yes to confirm.")
		case errCodeRecordNotFound:
			lines = append(lines, "hint: list known po numbers with: pogrn list")
		case errCodeAttachmentMissing:
			lines = append(lines, "hint: the record has no stored document of that kind.")
		case errCodePOExists:
			lines = append(lines, "hint: po numbers are unique; upload the GRN with: pogrn grn <po> --file <path>")
		case errCodeStoreFailure:
			lines = append(lines, "hint: the table could not be read or written; check table_path and server logs.")
		}
		if apiErr.Code == "" {
			lines = append(lines, "hint: verify POGRN_API_URL points to a pogrn server.")
		}
		if apiErr.Status >= 500 {
			lines = append(lines, "hint: server returned an internal error; check server logs for details.")
		}
		return uniqueLines(lines)
	}

	if errors.Is(err, context.DeadlineExceeded) {
		lines = append(lines, "hint: request timed out; check server health or increase POGRN_HTTP_TIMEOUT.")
		return uniqueLines(lines)
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		lines = append(lines,
			"hint: ensure a pogrn server is running at POGRN_API_URL.",
			"hint: start local server manually with: pogrn srv",
		)
	}

	return uniqueLines(lines)
}

func uniqueLines(lines []string) []string {
	seen := make(map[string]struct{}, len(lines))
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		if line == "" {
			continue
		}
		if _, ok := seen[line]; ok {
			continue
		}
		seen[line] = struct{}{}
		out = append(out, line)
	}
	return out
}
