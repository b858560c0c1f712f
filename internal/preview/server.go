package preview

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"net"
	"net/http"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/mewert/greenbar/internal/logging"
	"github.com/mewert/greenbar/internal/site"
	"github.com/mewert/greenbar/pkg/interfaces"
)

var (
	errOutputDirRequired = errors.New("preview: output dir is required")
	errSiteRequired      = errors.New("preview: site service is required for rebuilds")
)

const defaultPollInterval = 2 * time.Second

// Config controls the preview server.
type Config struct {
	Addr      string
	OutputDir string
	// RebuildOnChange re-runs the generator before serving a page when the
	// watched directories changed since the last build.
	RebuildOnChange bool
	// WatchDirs are polled for modification when RebuildOnChange is set.
	// Typically the content and theme directories.
	WatchDirs []string
	// PollInterval caps how often the watch dirs are re-scanned.
	PollInterval time.Duration
	// Drafts marks the server as serving a draft-inclusive build. Purely
	// informational here; the content library decides what gets built.
	Drafts bool
}

// Dependencies carries the preview server collaborators.
type Dependencies struct {
	Site   site.Service
	Logger interfaces.LoggerProvider
}

// Server serves a generated site for local review.
type Server struct {
	cfg    Config
	deps   Dependencies
	logger interfaces.Logger
	files  http.Handler

	mu        sync.Mutex
	lastScan  time.Time
	lastState string
	started   time.Time
}

// NewServer validates configuration and builds a preview server.
func NewServer(cfg Config, deps Dependencies) (*Server, error) {
	if strings.TrimSpace(cfg.OutputDir) == "" {
		return nil, errOutputDirRequired
	}
	if cfg.RebuildOnChange && deps.Site == nil {
		return nil, errSiteRequired
	}
	if cfg.Addr == "" {
		cfg.Addr = "localhost:8080"
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = defaultPollInterval
	}
	return &Server{
		cfg:    cfg,
		deps:   deps,
		logger: logging.PreviewLogger(deps.Logger),
		files:  http.FileServer(http.Dir(cfg.OutputDir)),
	}, nil
}

// Register mounts the preview routes on the provided mux.
func (s *Server) Register(mux *http.ServeMux) error {
	if mux == nil {
		return fmt.Errorf("preview: mux is required")
	}
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.Handle("GET /", s.siteHandler())
	return nil
}

// Start runs the server until ctx is cancelled.
func (s *Server) Start(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}

	mux := http.NewServeMux()
	if err := s.Register(mux); err != nil {
		return err
	}

	s.mu.Lock()
	s.started = time.Now()
	s.mu.Unlock()

	server := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("preview.listening", "addr", s.cfg.Addr, "drafts", s.cfg.Drafts)
		errCh <- server.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			return err
		}
		return ctx.Err()
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	started := s.started
	s.mu.Unlock()

	payload := map[string]any{
		"status": "ok",
		"drafts": s.cfg.Drafts,
	}
	if !started.IsZero() {
		payload["uptime"] = time.Since(started).Truncate(time.Second).String()
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(payload)
}

func (s *Server) siteHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.cfg.RebuildOnChange {
			if err := s.maybeRebuild(r.Context()); err != nil {
				s.logger.Error("preview.rebuild.failed", "error", err)
				http.Error(w, "rebuild failed: "+err.Error(), http.StatusInternalServerError)
				return
			}
		}
		s.files.ServeHTTP(w, r)
	})
}

// maybeRebuild re-runs the generator when a watched directory changed since
// the previous scan. Calls are serialized so concurrent requests trigger at
// most one build.
func (s *Server) maybeRebuild(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	if !s.lastScan.IsZero() && now.Sub(s.lastScan) < s.cfg.PollInterval {
		return nil
	}
	s.lastScan = now

	state, err := scanDirs(s.cfg.WatchDirs)
	if err != nil {
		return err
	}
	if state == s.lastState {
		return nil
	}

	result, err := s.deps.Site.Build(ctx, site.BuildOptions{})
	if err != nil {
		return err
	}
	s.lastState = state
	s.logger.Info("preview.rebuilt",
		"documents_built", result.DocumentsBuilt,
		"documents_skipped", result.DocumentsSkipped,
	)
	return nil
}

// scanDirs folds every file path, size, and mtime under the watched dirs into
// a single comparable fingerprint.
func scanDirs(dirs []string) (string, error) {
	var builder strings.Builder
	for _, dir := range dirs {
		dir = strings.TrimSpace(dir)
		if dir == "" {
			continue
		}
		err := filepath.Walk(dir, func(path string, info fs.FileInfo, walkErr error) error {
			if walkErr != nil {
				return walkErr
			}
			if info.IsDir() {
				return nil
			}
			fmt.Fprintf(&builder, "%s|%d|%d\n", path, info.Size(), info.ModTime().UnixNano())
			return nil
		})
		if err != nil {
			return "", fmt.Errorf("preview: scan %s: %w", dir, err)
		}
	}
	return builder.String(), nil
}
