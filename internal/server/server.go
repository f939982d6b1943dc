package server

import (
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"pogrn/internal/attachstore"
	"pogrn/internal/store"
)

const (
	apiTokenEnvKey         = "POGRN_API_TOKEN"
	adminTokenEnvKey       = "POGRN_ADMIN_TOKEN"
	allowRemoteEnvKey      = "POGRN_ALLOW_REMOTE"
	readHeaderTimeout      = 5 * time.Second
	readTimeout            = 60 * time.Second
	writeTimeout           = 60 * time.Second
	idleTimeout            = 60 * time.Second
	exportConcurrencyLimit = 2
	uploadConcurrencyLimit = 4

	defaultMaxUploadBytes  int64 = 25 << 20 // 25 MiB
	defaultMultipartMemory int64 = 8 << 20  // 8 MiB
)

// Options wires a Server to its collaborators.
type Options struct {
	Records         store.RecordStore
	Documents       attachstore.DocumentStore
	History         Journal
	TablePath       string
	PODir           string
	GRNDir          string
	AllowedExts     []string
	MaxUploadBytes  int64
	MultipartMemory int64
	Logger          *slog.Logger
}

// Server wraps HTTP handlers for the pogrn API.
type Server struct {
	addr            string
	service         *RecordService
	info            serverInfo
	logger          *slog.Logger
	apiToken        string
	adminToken      string
	maxUploadBytes  int64
	multipartMemory int64
	exportLimiter   chan struct{}
	uploadLimiter   chan struct{}
}

type serverInfo struct {
	tablePath   string
	poDir       string
	grnDir      string
	allowedExts []string
}

// New creates a new server instance.
func New(addr string, opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	maxUpload := opts.MaxUploadBytes
	if maxUpload <= 0 {
		maxUpload = defaultMaxUploadBytes
	}
	multipartMemory := opts.MultipartMemory
	if multipartMemory <= 0 {
		multipartMemory = defaultMultipartMemory
	}

	return &Server{
		addr:    addr,
		service: NewRecordService(opts.Records, opts.Documents, opts.History, logger),
		info: serverInfo{
			tablePath:   opts.TablePath,
			poDir:       opts.PODir,
			grnDir:      opts.GRNDir,
			allowedExts: opts.AllowedExts,
		},
		logger:          logger,
		apiToken:        strings.TrimSpace(os.Getenv(apiTokenEnvKey)),
		adminToken:      strings.TrimSpace(os.Getenv(adminTokenEnvKey)),
		maxUploadBytes:  maxUpload,
		multipartMemory: multipartMemory,
		exportLimiter:   make(chan struct{}, exportConcurrencyLimit),
		uploadLimiter:   make(chan struct{}, uploadConcurrencyLimit),
	}
}

// Handler returns the fully wrapped HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.withRequestLogging(s.withAuth(s.routes()))
}

// ListenAndServe starts the HTTP server.
func (s *Server) ListenAndServe() error {
	s.log().Info("starting server", "addr", s.addr, "table", s.info.tablePath)
	server := &http.Server{
		Addr:              s.addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: readHeaderTimeout,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
	}

	return server.ListenAndServe()
}

// ListenAddr converts a base API URL into a listen address.
func ListenAddr(apiURL string) (string, error) {
	if apiURL == "" {
		return "", fmt.Errorf("api url is required")
	}
	if u, err := url.Parse(apiURL); err == nil && u.Host != "" {
		host := u.Hostname()
		if !isAllowedListenHost(host) {
			return "", fmt.Errorf("remote listen host %q requires %s=true", host, allowRemoteEnvKey)
		}
		return u.Host, nil
	}

	host, _, err := net.SplitHostPort(apiURL)
	if err == nil && !isAllowedListenHost(host) {
		return "", fmt.Errorf("remote listen host %q requires %s=true", host, allowRemoteEnvKey)
	}

	return apiURL, nil
}

func isAllowedListenHost(host string) bool {
	if host == "" {
		return true
	}
	if strings.EqualFold(strings.TrimSpace(os.Getenv(allowRemoteEnvKey)), "true") {
		return true
	}
	if host == "localhost" {
		return true
	}
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}

func (s *Server) acquireLimiter(limiter chan struct{}, w http.ResponseWriter, r *http.Request, name string) bool {
	if limiter == nil {
		return true
	}
	select {
	case limiter <- struct{}{}:
		return true
	default:
		err := apiError{
			status:  http.StatusTooManyRequests,
			code:    "resource_exhausted",
			errCode: ErrCodeResourceExhausted,
			err:     fmt.Errorf("too many concurrent %s requests", name),
		}
		s.writeErrorReq(w, r, http.StatusTooManyRequests, err)
		return false
	}
}

func (s *Server) log() *slog.Logger {
	if s != nil && s.logger != nil {
		return s.logger
	}
	return slog.Default()
}

func (s *Server) releaseLimiter(limiter chan struct{}) {
	if limiter == nil {
		return
	}
	select {
	case <-limiter:
	default:
	}
}
