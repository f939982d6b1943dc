package main

import (
	"net"
	"testing"

	"pogrn/internal/api"
)

func TestFormatCLIError_NetworkGuidance(t *testing.T) {
	err := &net.DNSError{Err: "dial tcp: connection refused", Name: "127.0.0.1", IsTemporary: true}
	lines := formatCLIError(err)
	if !containsLine(lines, "hint: ensure a pogrn server is running at POGRN_API_URL.") {
		t.Fatalf("expected connectivity guidance, got %v", lines)
	}
	if !containsLine(lines, "hint: start local server manually with: pogrn srv") {
		t.Fatalf("expected manual-start guidance, got %v", lines)
	}
}

func TestFormatCLIError_APIUnknownServiceGuidance(t *testing.T) {
	err := &api.APIError{Status: 404, Message: "api error: 404 Not Found"}
	lines := formatCLIError(err)
	if !containsLine(lines, "hint: verify POGRN_API_URL points to a pogrn server.") {
		t.Fatalf("expected api-url guidance, got %v", lines)
	}
}

func TestFormatCLIError_ErrorCodeGuidance(t *testing.T) {
	tests := []struct {
		name string
		err  *api.APIError
		hint string
	}{
		{
			name: "duplicate po",
			err:  &api.APIError{Status: 409, Code: "conflict", ErrorCode: errCodePOExists, Message: "po_number 12 already exists"},
			hint: "hint: po numbers are unique; upload the GRN with: pogrn grn <po> --file <path>",
		},
		{
			name: "missing record",
			err:  &api.APIError{Status: 404, Code: "not_found", ErrorCode: errCodeRecordNotFound, Message: "po_number 9 not found"},
			hint: "hint: list known po numbers with: pogrn list",
		},
		{
			name: "bad extension",
			err:  &api.APIError{Status: 400, Code: "invalid_argument", ErrorCode: errCodeInvalidExtension, Message: "extension not allowed"},
			hint: "hint: check allowed_extensions with: pogrn info",
		},
		{
			name: "auth",
			err:  &api.APIError{Status: 401, Code: "unauthorized", Message: "unauthorized"},
			hint: "hint: verify POGRN_API_TOKEN and POGRN_ADMIN_TOKEN configuration.",
		},
		{
			name: "store failure",
			err:  &api.APIError{Status: 500, Code: "internal", ErrorCode: errCodeStoreFailure, Message: "internal error"},
			hint: "hint: server returned an internal error; check server logs for details.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lines := formatCLIError(tt.err)
			if lines[0] != tt.err.Error() {
				t.Fatalf("expected error first, got %v", lines)
			}
			if !containsLine(lines, tt.hint) {
				t.Fatalf("expected %q, got %v", tt.hint, lines)
			}
		})
	}
}

func TestFormatCLIError_Nil(t *testing.T) {
	if lines := formatCLIError(nil); lines != nil {
		t.Fatalf("expected nil, got %v", lines)
	}
}

func containsLine(lines []string, expected string) bool {
	for _, line := range lines {
		if line == expected {
			return true
		}
	}
	return false
}
