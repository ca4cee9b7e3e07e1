package cli

import (
	"context"
	stderrors "errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/linkscope/pkg/api"
	"github.com/matzehuels/linkscope/pkg/cache"
	"github.com/matzehuels/linkscope/pkg/config"
	"github.com/matzehuels/linkscope/pkg/httputil"
	"github.com/matzehuels/linkscope/pkg/observability"
	"github.com/matzehuels/linkscope/pkg/pipeline"
	"github.com/matzehuels/linkscope/pkg/render/nodelink"
	"github.com/matzehuels/linkscope/pkg/session"
	"github.com/matzehuels/linkscope/pkg/storage"
)

// shutdownTimeout bounds how long in-flight requests may take after a
// shutdown signal.
const shutdownTimeout = 10 * time.Second

// serveOpts holds the serve command's flags. Set flags override the
// config file and environment.
type serveOpts struct {
	addr       string
	redisURL   string
	mongoURI   string
	cacheDir   string
	sessionDir string
	envFiles   []string
}

// serveCommand creates the serve command that runs the HTTP API.
func (c *CLI) serveCommand() *cobra.Command {
	var opts serveOpts

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the upload and interaction API",
		Long: `Serve runs the HTTP API: graph uploads, interaction sessions and
rendered snapshots.

Settings come from the config file, then LINKSCOPE_* environment variables
(a .env file in the working directory is loaded first), then flags.

Backends:
  cache     Redis when a Redis URL is set, else files under the cache dir
  sessions  Redis when a Redis URL is set, else files under --session-dir,
            else memory
  graphs    MongoDB when a Mongo URI is set, else memory`,
		Example: `  linkscope serve
  linkscope serve --addr :9000 --redis redis://localhost:6379/0
  LINKSCOPE_MONGO_URI=mongodb://localhost:27017 linkscope serve`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := config.LoadDotenv(opts.envFiles...); err != nil {
				return fmt.Errorf("load env: %w", err)
			}
			cfg, err := config.Load(c.configPath)
			if err != nil {
				return err
			}
			opts.apply(cmd, cfg)
			return c.runServe(cmd.Context(), cfg)
		},
	}

	cmd.Flags().StringVar(&opts.addr, "addr", "", "listen address (default :8080)")
	cmd.Flags().StringVar(&opts.redisURL, "redis", "", "Redis URL for cache and sessions")
	cmd.Flags().StringVar(&opts.mongoURI, "mongo", "", "MongoDB URI for uploaded graphs")
	cmd.Flags().StringVar(&opts.cacheDir, "cache-dir", "", "file cache directory")
	cmd.Flags().StringVar(&opts.sessionDir, "session-dir", "", "directory for session records")
	cmd.Flags().StringSliceVar(&opts.envFiles, "env-file", nil, "dotenv files to load (default .env)")

	return cmd
}

func (o serveOpts) apply(cmd *cobra.Command, cfg *config.Config) {
	set := []struct {
		flag string
		dst  *string
		val  string
	}{
		{"addr", &cfg.Server.Addr, o.addr},
		{"redis", &cfg.Storage.RedisURL, o.redisURL},
		{"mongo", &cfg.Storage.MongoURI, o.mongoURI},
		{"cache-dir", &cfg.Storage.CacheDir, o.cacheDir},
		{"session-dir", &cfg.Storage.SessionDir, o.sessionDir},
	}
	for _, s := range set {
		if cmd.Flags().Changed(s.flag) {
			*s.dst = s.val
		}
	}
}

// =============================================================================
// Backends
// =============================================================================

// backends are the storage layers selected by configuration.
type backends struct {
	cache    cache.Cache
	sessions session.Store
	docs     storage.Store
	closers  []func() error
}

func (b *backends) close() error {
	var errs []error
	for i := len(b.closers) - 1; i >= 0; i-- {
		errs = append(errs, b.closers[i]())
	}
	return stderrors.Join(errs...)
}

// openBackends connects the configured backends. On error everything
// opened so far is closed.
func openBackends(ctx context.Context, cfg *config.Config, logger *log.Logger) (_ *backends, err error) {
	b := &backends{}
	defer func() {
		if err != nil {
			b.close()
		}
	}()

	st := cfg.Storage
	if st.RedisURL != "" {
		client, err := cache.DialRedis(ctx, st.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("connect redis: %w", err)
		}
		b.closers = append(b.closers, client.Close)
		b.cache = cache.NewRedisCache(client, redisCachePrefix)
		b.sessions = session.NewRedisStore(client, "")
		logger.Info("using redis", "cache", true, "sessions", true)
	} else {
		dir := st.CacheDir
		if dir == "" {
			if dir, err = cacheDir(); err != nil {
				return nil, err
			}
		}
		fc, err := cache.NewFileCache(dir)
		if err != nil {
			return nil, fmt.Errorf("open cache: %w", err)
		}
		b.cache = fc
		logger.Info("using file cache", "dir", dir)

		if st.SessionDir != "" {
			fs, err := session.NewFileStore(st.SessionDir)
			if err != nil {
				return nil, fmt.Errorf("open session store: %w", err)
			}
			b.sessions = fs
			logger.Info("using file session store", "dir", fs.Path())
		}
	}

	if st.MongoURI != "" {
		ms, err := storage.ConnectMongo(ctx, st.MongoURI, st.MongoDatabase)
		if err != nil {
			return nil, fmt.Errorf("connect mongo: %w", err)
		}
		b.closers = append(b.closers, ms.Close)
		b.docs = ms
		logger.Info("using mongo", "database", st.MongoDatabase)
	} else {
		b.docs = storage.NewMemoryStore()
	}
	return b, nil
}

// =============================================================================
// Server
// =============================================================================

func (c *CLI) runServe(ctx context.Context, cfg *config.Config) error {
	b, err := openBackends(ctx, cfg, c.Logger)
	if err != nil {
		return err
	}
	defer b.close()

	var keyer cache.Keyer
	if ns := cfg.Storage.CacheNamespace; ns != "" {
		keyer = cache.NewScopedKeyer(nil, ns+":")
	}
	runner := pipeline.NewRunner(b.cache, keyer, b.docs, c.Logger)
	sessions := session.NewManager(b.sessions, runner, time.Duration(cfg.Session.TTL), c.Logger)
	sessions.Suggest = cfg.Encode.Suggest

	observability.SetPipelineHooks(logHooks{c.Logger})
	observability.SetCacheHooks(logHooks{c.Logger})
	observability.SetSessionHooks(logHooks{c.Logger})
	defer observability.Reset()

	handler := api.New(api.Options{
		Runner:         runner,
		Sessions:       sessions,
		Logger:         c.Logger,
		Engine:         nodelink.Engine(cfg.Render.Engine),
		Detailed:       cfg.Render.Detailed,
		MaxUploadBytes: cfg.Server.MaxUploadBytes,
		UploadLimiter:  httputil.NewLimiter(cfg.Server.UploadRate, cfg.Server.UploadBurst),
	})

	ln, err := net.Listen("tcp", cfg.Server.Addr)
	if err != nil {
		return err
	}
	srv := &http.Server{
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		c.Logger.Info("listening", "addr", ln.Addr().String())
		if err := srv.Serve(ln); !stderrors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		return sessions.Run(gctx, time.Duration(cfg.Session.SweepInterval))
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		c.Logger.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	})

	err = g.Wait()
	if cerr := sessions.Close(); err == nil {
		err = cerr
	}
	return err
}

// =============================================================================
// Logging Hooks
// =============================================================================

// logHooks reports pipeline and session events to the logger.
type logHooks struct {
	logger *log.Logger
}

func (h logHooks) OnParseStart(_ context.Context, format, filename string) {
	h.logger.Debug("parse started", "format", format, "file", filename)
}

func (h logHooks) OnParseComplete(_ context.Context, format, filename string, nodes, edges int, d time.Duration, err error) {
	if err != nil {
		h.logger.Debug("parse failed", "format", format, "file", filename, "err", err)
		return
	}
	h.logger.Debug("parse complete", "format", format, "file", filename, "nodes", nodes, "edges", edges, "duration", d)
}

func (h logHooks) OnRenderStart(_ context.Context, format string, nodes int) {
	h.logger.Debug("render started", "format", format, "nodes", nodes)
}

func (h logHooks) OnRenderComplete(_ context.Context, format string, d time.Duration, err error) {
	if err != nil {
		h.logger.Warn("render failed", "format", format, "err", err)
		return
	}
	h.logger.Debug("render complete", "format", format, "duration", d)
}

func (h logHooks) OnCacheHit(_ context.Context, keyType string) {
	h.logger.Debug("cache hit", "type", keyType)
}

func (h logHooks) OnCacheMiss(_ context.Context, keyType string) {
	h.logger.Debug("cache miss", "type", keyType)
}

func (h logHooks) OnCacheSet(_ context.Context, keyType string, size int) {
	h.logger.Debug("cache set", "type", keyType, "bytes", size)
}

func (h logHooks) OnEvent(_ context.Context, sessionID, eventType, mode string, d time.Duration) {
	h.logger.Debug("event", "session", sessionID, "type", eventType, "mode", mode, "duration", d)
}

func (h logHooks) OnStaleEvent(_ context.Context, sessionID string, generation, current uint64) {
	h.logger.Info("stale event dropped", "session", sessionID, "generation", generation, "current", current)
}

func (h logHooks) OnUploadRejected(_ context.Context, sessionID string) {
	h.logger.Warn("concurrent upload rejected", "session", sessionID)
}

var (
	_ observability.PipelineHooks = logHooks{}
	_ observability.CacheHooks    = logHooks{}
	_ observability.SessionHooks  = logHooks{}
)
