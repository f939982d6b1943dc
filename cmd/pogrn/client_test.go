package main

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"pogrn/internal/api"
)

func infoServer(t *testing.T, tablePath string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/info" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(api.InfoResponse{TablePath: tablePath, TotalRecords: 3, PendingRecords: 1})
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestConfirmTableAcceptsSameTable(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	srv := infoServer(t, filepath.Join(dir, "data.csv"))

	info, err := confirmTable(api.NewClient(srv.URL), "data.csv")
	if err != nil {
		t.Fatalf("confirm table: %v", err)
	}
	if info.TotalRecords != 3 || info.PendingRecords != 1 {
		t.Fatalf("unexpected info %#v", info)
	}
}

func TestConfirmTableRejectsOtherTable(t *testing.T) {
	srv := infoServer(t, "/srv/other/data.csv")

	_, err := confirmTable(api.NewClient(srv.URL), "/srv/ledger/data.csv")
	if err == nil {
		t.Fatal("expected table mismatch error")
	}
	if !strings.Contains(err.Error(), "/srv/other/data.csv") {
		t.Fatalf("expected server table in error, got %v", err)
	}
}

func TestWaitForServerReportsChildExit(t *testing.T) {
	child := &localServer{stderr: &syncBuffer{}, exited: make(chan error, 1)}
	_, _ = child.stderr.Write([]byte("time=... level=INFO msg=\"opening table\"\nopen table: data.csv line 3: wrong number of fields\n"))
	child.exited <- errors.New("exit status 1")

	err := waitForServer(api.NewClient("http://127.0.0.1:1"), child, time.Second)
	if err == nil {
		t.Fatal("expected start error")
	}
	if !strings.Contains(err.Error(), "line 3: wrong number of fields") {
		t.Fatalf("expected child stderr in error, got %v", err)
	}
	if len(child.exited) != 1 {
		t.Fatal("expected exit status kept for stop")
	}
}
