package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"pogrn/internal/api"
	"pogrn/internal/config"
)

const (
	serverStartTimeout = 3 * time.Second
	serverPollInterval = 100 * time.Millisecond
)

func withClient(cfg *config.Config, fn func(*api.Client) error) error {
	cleanup, err := ensureServer(cfg)
	if err != nil {
		return err
	}
	if cleanup != nil {
		defer cleanup()
	}

	return fn(api.NewClient(cfg.APIURL))
}

// ensureServer makes sure a pogrn server answers at the API URL. A running server that
// opened a different table is used with a warning. Otherwise a child "srv" process is
// started against the configured table and stopped by the returned cleanup.
func ensureServer(cfg *config.Config) (func(), error) {
	client := api.NewClient(cfg.APIURL)
	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()

	if err := client.Ping(ctx); err == nil {
		if info, err := client.GetInfo(ctx); err == nil && !sameTable(info.TablePath, cfg.TablePath) {
			slog.Warn("server at api url serves a different table",
				"api_url", cfg.APIURL, "server_table", info.TablePath, "config_table", cfg.TablePath)
		}
		return nil, nil
	}

	child, err := startLocalServer(cfg)
	if err != nil {
		return nil, err
	}
	if err := waitForServer(client, child, serverStartTimeout); err != nil {
		child.stop()
		return nil, err
	}

	info, err := confirmTable(client, cfg.TablePath)
	if err != nil {
		child.stop()
		return nil, err
	}
	slog.Info("started local pogrn server",
		"table", info.TablePath, "records", info.TotalRecords, "pending", info.PendingRecords)
	return child.stop, nil
}

// localServer is a child "srv" process. Its stderr is kept so a failed start can say
// why, for example a malformed table.
type localServer struct {
	cmd    *exec.Cmd
	stderr *syncBuffer
	exited chan error
	once   sync.Once
}

func startLocalServer(cfg *config.Config) (*localServer, error) {
	exe, err := os.Executable()
	if err != nil {
		return nil, err
	}

	s := &localServer{stderr: &syncBuffer{}, exited: make(chan error, 1)}
	s.cmd = exec.Command(exe, "srv")
	s.cmd.Env = append(os.Environ(), serverEnv(cfg)...)
	s.cmd.Stderr = s.stderr

	if err := s.cmd.Start(); err != nil {
		return nil, fmt.Errorf("start local server: %w", err)
	}
	go func() { s.exited <- s.cmd.Wait() }()
	return s, nil
}

func (s *localServer) stop() {
	s.once.Do(func() {
		_ = s.cmd.Process.Kill()
		<-s.exited
	})
}

// startError describes a child that exited before answering.
func (s *localServer) startError(waitErr error) error {
	if line := lastLine(s.stderr.String()); line != "" {
		return fmt.Errorf("local server exited: %s", line)
	}
	if waitErr != nil {
		return fmt.Errorf("local server exited: %w", waitErr)
	}
	return errors.New("local server exited before answering")
}

func serverEnv(cfg *config.Config) []string {
	return []string{
		"POGRN_TABLE=" + cfg.TablePath,
		"POGRN_PO_DIR=" + cfg.PODir,
		"POGRN_GRN_DIR=" + cfg.GRNDir,
		"POGRN_HISTORY=" + cfg.HistoryPath,
		"POGRN_API_URL=" + cfg.APIURL,
	}
}

func waitForServer(client *api.Client, child *localServer, timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		select {
		case err := <-child.exited:
			child.exited <- err
			return child.startError(err)
		default:
		}

		ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
		err := client.Ping(ctx)
		cancel()
		if err == nil {
			return nil
		}
		if !isConnRefused(err) {
			// Something else owns the port.
			return err
		}
		time.Sleep(serverPollInterval)
	}
	return errors.New("local server did not start in time")
}

// confirmTable checks that the server answering at the API URL opened want.
func confirmTable(client *api.Client, want string) (api.InfoResponse, error) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	info, err := client.GetInfo(ctx)
	if err != nil {
		return api.InfoResponse{}, fmt.Errorf("read local server info: %w", err)
	}
	if !sameTable(info.TablePath, want) {
		return info, fmt.Errorf("server at api url opened table %s, expected %s", info.TablePath, want)
	}
	return info, nil
}

func sameTable(a, b string) bool {
	return absPath(a) == absPath(b)
}

func absPath(p string) string {
	p = strings.TrimSpace(p)
	if abs, err := filepath.Abs(p); err == nil {
		return abs
	}
	return filepath.Clean(p)
}

func lastLine(s string) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	return strings.TrimSpace(lines[len(lines)-1])
}

func isConnRefused(err error) bool {
	var netErr *net.OpError
	return errors.As(err, &netErr)
}

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}
