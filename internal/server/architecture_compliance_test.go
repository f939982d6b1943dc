package server

import (
	"go/ast"
	"go/parser"
	"go/token"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"testing"
)

func TestRouteTable(t *testing.T) {
	env := newTestEnv(t)
	mux, ok := env.srv.routes().(*http.ServeMux)
	if !ok {
		t.Fatalf("expected *http.ServeMux, got %T", env.srv.routes())
	}

	tests := []struct {
		method  string
		target  string
		pattern string
	}{
		{http.MethodGet, "/health", "GET /health"},
		{http.MethodGet, "/v1/info", "GET /v1/info"},
		{http.MethodGet, "/v1/records?po=1", "GET /v1/records"},
		{http.MethodPost, "/v1/records", "POST /v1/records"},
		{http.MethodGet, "/v1/records/0012", "GET /v1/records/{po}"},
		{http.MethodGet, "/v1/records/0012/attachments/grn", "GET /v1/records/{po}/attachments/{kind}"},
		{http.MethodGet, "/v1/export?format=xlsx", "GET /v1/export"},
		{http.MethodGet, "/v1/history", "GET /v1/history"},
		{http.MethodPost, "/v1/admin/records/0012/grn", "POST /v1/admin/records/{po}/grn"},
		{http.MethodPost, "/v1/admin/dedupe", "POST /v1/admin/dedupe"},
	}
	for _, tt := range tests {
		t.Run(tt.method+" "+tt.target, func(t *testing.T) {
			_, pattern := mux.Handler(httptest.NewRequest(tt.method, tt.target, nil))
			if pattern != tt.pattern {
				t.Fatalf("expected pattern %q, got %q", tt.pattern, pattern)
			}
		})
	}

	// Mutations are never reachable with GET.
	for _, target := range []string{"/v1/admin/dedupe", "/v1/admin/records/1/grn"} {
		w := env.do(t, httptest.NewRequest(http.MethodGet, target, nil))
		if w.Code != http.StatusMethodNotAllowed {
			t.Fatalf("GET %s: expected 405, got %d", target, w.Code)
		}
	}
}

// Route handlers reach the ledger only through the record service, which owns the
// all-or-nothing composition of document and table writes.
func TestHandlersStayBehindRecordService(t *testing.T) {
	files, err := filepath.Glob(filepath.Join(serverPackageDir(t), "handlers_*.go"))
	if err != nil {
		t.Fatalf("glob handler files: %v", err)
	}

	fset := token.NewFileSet()
	checked := 0
	for _, path := range files {
		if strings.HasSuffix(path, "_test.go") {
			continue
		}
		file, err := parser.ParseFile(fset, path, nil, 0)
		if err != nil {
			t.Fatalf("parse %s: %v", path, err)
		}
		for _, imp := range file.Imports {
			importPath, _ := strconv.Unquote(imp.Path.Value)
			if importPath == "pogrn/internal/store" || importPath == "pogrn/internal/attachstore" {
				t.Fatalf("%s imports %s directly", filepath.Base(path), importPath)
			}
		}
		for _, decl := range file.Decls {
			fn, ok := decl.(*ast.FuncDecl)
			if !ok || fn.Recv == nil || !strings.HasPrefix(fn.Name.Name, "handle") {
				continue
			}
			checked++
			if other := fieldCallsOutsideService(fn); len(other) > 0 {
				t.Fatalf("%s reaches past the record service: %v", fn.Name.Name, other)
			}
		}
	}
	if checked == 0 {
		t.Fatal("no handlers inspected")
	}
}

// fieldCallsOutsideService lists calls of the form s.<field>.<method>() where field is
// anything but the record service.
func fieldCallsOutsideService(fn *ast.FuncDecl) []string {
	var other []string
	ast.Inspect(fn.Body, func(n ast.Node) bool {
		call, ok := n.(*ast.CallExpr)
		if !ok {
			return true
		}
		method, ok := call.Fun.(*ast.SelectorExpr)
		if !ok {
			return true
		}
		field, ok := method.X.(*ast.SelectorExpr)
		if !ok {
			return true
		}
		if recv, ok := field.X.(*ast.Ident); ok && recv.Name == "s" && field.Sel.Name != "service" {
			other = append(other, field.Sel.Name+"."+method.Sel.Name)
		}
		return true
	})
	return other
}

func serverPackageDir(t *testing.T) string {
	t.Helper()
	_, file, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatal("runtime.Caller failed")
	}
	return filepath.Dir(file)
}
