package watch

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/Mbaroudi/arclang-sub001/internal/compiler/frontend"
	"github.com/Mbaroudi/arclang-sub001/internal/compiler/incremental"
)

// SessionConfig configures a watch session.
type SessionConfig struct {
	Root   string // model directory to watch
	Port   int    // reload server port
	Engine incremental.Config
}

// Session ties the file watcher, the incremental compiler, and the reload
// server into one development loop. Each debounced change set becomes one
// incremental pass; a failed pass is reported and leaves the cache as it
// was.
type Session struct {
	config   SessionConfig
	compiler *incremental.IncrementalCompiler
	watcher  *FileWatcher
	reload   *ReloadServer
	server   *http.Server
	logger   *zap.Logger
}

// NewSession creates a watch session with a freshly loaded cache.
func NewSession(config SessionConfig, logger *zap.Logger) (*Session, error) {
	compiler, err := incremental.NewIncrementalCompiler(config.Engine, frontend.New())
	if err != nil {
		return nil, err
	}

	s := &Session{
		config:   config,
		compiler: compiler,
		reload:   NewReloadServer(logger),
		logger:   logger,
	}

	s.watcher, err = NewFileWatcher(config.Root, logger, s.rebuild)
	if err != nil {
		return nil, err
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/reload", s.reload.HandleWebSocket)
	s.server = &http.Server{
		Addr:    fmt.Sprintf("localhost:%d", config.Port),
		Handler: mux,
	}

	return s, nil
}

// Start launches the reload endpoint and the watcher.
func (s *Session) Start() error {
	go func() {
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.logger.Error("reload server failed", zap.Error(err))
		}
	}()

	return s.watcher.Start()
}

// Stop shuts the session down.
func (s *Session) Stop() error {
	err := s.watcher.Stop()
	s.reload.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if shutdownErr := s.server.Shutdown(ctx); shutdownErr != nil && err == nil {
		err = shutdownErr
	}

	return err
}

// rebuild runs one incremental pass over the debounced change set.
func (s *Session) rebuild(files []string) error {
	s.reload.NotifyBuilding(files)
	start := time.Now()

	result, err := s.compiler.CompileIncremental(files)
	if err != nil {
		s.logger.Warn("incremental pass failed", zap.Error(err))
		s.reload.NotifyError(err.Error())
		return nil // keep watching; the previous cache stays authoritative
	}

	s.logger.Info("incremental pass completed",
		zap.String("pass", result.PassID),
		zap.Int("compiled", len(result.CompiledFiles)),
		zap.Int("cached", len(result.CachedFiles)),
		zap.Float64("hit_ratio", result.CacheHitRatio),
		zap.Duration("elapsed", time.Since(start)),
	)
	s.reload.NotifySuccess(time.Since(start))

	return nil
}
