package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"path/filepath"
	"sync"
	"sync/atomic"

	"github.com/gofrs/flock"

	"ytmp3/internal/api"
	"ytmp3/internal/audiostore"
	"ytmp3/internal/config"
	"ytmp3/internal/convert"
	"ytmp3/internal/deps"
	"ytmp3/internal/logging"
	"ytmp3/internal/media/ffprobe"
	"ytmp3/internal/preflight"
	"ytmp3/internal/ytdlp"
)

// ErrAlreadyRunning reports that another server holds the downloads directory lock.
var ErrAlreadyRunning = errors.New("another ytmp3 server is already using this downloads directory")

// Daemon coordinates the HTTP server and the janitor and enforces
// single-instance execution per downloads directory.
type Daemon struct {
	cfg     *config.Config
	logger  *slog.Logger
	store   *audiostore.Store
	service *convert.Service
	server  *api.Server
	janitor *audiostore.Janitor

	lockPath string
	lock     *flock.Flock

	running  atomic.Bool
	listener net.Listener
	runCtx   context.Context
	cancel   context.CancelCauseFunc
	wg       sync.WaitGroup
}

// Status represents daemon runtime information.
type Status struct {
	Running      bool
	Address      string
	DownloadsDir string
	LockFilePath string
	Dependencies []deps.Status
}

// New constructs a daemon with initialized dependencies.
func New(cfg *config.Config, logger *slog.Logger, version string) (*Daemon, error) {
	if cfg == nil {
		return nil, errors.New("daemon requires config")
	}
	if logger == nil {
		logger = logging.NewNop()
	}

	store, err := audiostore.New(cfg.Paths.DownloadsDir)
	if err != nil {
		return nil, err
	}

	client := ytdlp.New(cfg.Tools.YtDlpBinary,
		ytdlp.WithFFmpegLocation(cfg.Tools.FFmpegLocation),
		ytdlp.WithTimeouts(cfg.InfoTimeout(), cfg.ConvertTimeout()),
		ytdlp.WithLogger(logger),
	)

	svcOpts := []convert.Option{convert.WithLogger(logger)}
	if cfg.Tools.VerifyOutput {
		probe := deps.CheckBinaries([]deps.Requirement{{Name: "FFprobe", Command: cfg.Tools.FFprobeBinary}})
		if probe[0].Available {
			svcOpts = append(svcOpts, convert.WithVerifier(ffprobe.Prober{Binary: cfg.Tools.FFprobeBinary}))
		} else {
			logging.WarnWithContext(logger, "output verification disabled", "verify_unavailable",
				logging.String("ffprobe", cfg.Tools.FFprobeBinary),
				logging.String(logging.FieldErrorHint, "install ffprobe or set tools.ffprobe_binary"),
				logging.String(logging.FieldImpact, "converted files are not inspected before download"),
			)
		}
	}
	service := convert.NewService(client, store, svcOpts...)

	server := api.New(api.Options{
		AllowedHosts: cfg.Server.AllowedHosts,
		StaticDir:    cfg.Paths.StaticDir,
		RateLimit:    cfg.Server.RateLimit,
		RateBurst:    cfg.Server.RateBurst,
		Version:      version,
		Dependencies: func() []deps.Status { return preflight.CheckSystemDeps(cfg) },
	}, service, logger)

	lockPath := store.LockPath()
	return &Daemon{
		cfg:      cfg,
		logger:   logging.NewComponentLogger(logger, "daemon"),
		store:    store,
		service:  service,
		server:   server,
		janitor:  audiostore.NewJanitor(store, cfg.SweepInterval(), cfg.SweepMaxAge(), logger),
		lockPath: lockPath,
		lock:     flock.New(lockPath),
	}, nil
}

// Start acquires the lock, binds the listener, and launches the server and
// janitor in the background. Call Wait or Stop to release resources.
func (d *Daemon) Start(ctx context.Context) error {
	if d.running.Load() {
		return errors.New("daemon already running")
	}

	ok, err := d.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return ErrAlreadyRunning
	}

	ln, err := net.Listen("tcp", d.cfg.Address())
	if err != nil {
		_ = d.lock.Unlock()
		return fmt.Errorf("listen on %s: %w", d.cfg.Address(), err)
	}
	d.listener = ln

	d.logEnvironment()

	d.runCtx, d.cancel = context.WithCancelCause(ctx)
	d.wg.Add(2)
	go func() {
		defer d.wg.Done()
		_ = d.janitor.Run(d.runCtx)
	}()
	go func() {
		defer d.wg.Done()
		if err := d.server.Serve(d.runCtx, ln); err != nil {
			d.cancel(err)
		}
	}()

	d.running.Store(true)
	d.logger.Info("ytmp3 server started",
		logging.String("address", ln.Addr().String()),
		logging.String("downloads_dir", d.store.Dir()),
		logging.String("lock", d.lockPath),
	)
	return nil
}

// Wait blocks until the server and janitor exit, then releases the lock.
// It returns the error that stopped the server, or nil on cancellation.
func (d *Daemon) Wait() error {
	if !d.running.Load() {
		return nil
	}
	<-d.runCtx.Done()
	d.wg.Wait()

	if err := d.lock.Unlock(); err != nil {
		d.logger.Warn("failed to release daemon lock",
			logging.Error(err),
			logging.String(logging.FieldEventType, "lock_release_failed"),
			logging.String(logging.FieldErrorHint, "remove the lock file if no server is running"),
			logging.String(logging.FieldImpact, "next start may report already running"),
		)
	}
	d.running.Store(false)
	d.logger.Info("ytmp3 server stopped")

	if cause := context.Cause(d.runCtx); cause != nil && !errors.Is(cause, context.Canceled) {
		return cause
	}
	return nil
}

// Stop cancels background work and waits for it to finish.
func (d *Daemon) Stop() error {
	if !d.running.Load() {
		return nil
	}
	d.cancel(context.Canceled)
	return d.Wait()
}

// Run starts the daemon and blocks until ctx is cancelled or the server fails.
func (d *Daemon) Run(ctx context.Context) error {
	if err := d.Start(ctx); err != nil {
		return err
	}
	return d.Wait()
}

// Addr returns the bound listener address, or nil before Start.
func (d *Daemon) Addr() net.Addr {
	if d.listener == nil {
		return nil
	}
	return d.listener.Addr()
}

// Status returns the current daemon status.
func (d *Daemon) Status() Status {
	status := Status{
		Running:      d.running.Load(),
		DownloadsDir: d.store.Dir(),
		LockFilePath: d.lockPath,
		Dependencies: preflight.CheckSystemDeps(d.cfg),
	}
	if addr := d.Addr(); addr != nil {
		status.Address = addr.String()
	}
	return status
}

func (d *Daemon) logEnvironment() {
	for _, dep := range preflight.CheckSystemDeps(d.cfg) {
		switch {
		case dep.Available:
			d.logger.Info("dependency available",
				logging.String("dependency", dep.Name),
				logging.String("command", dep.Command),
			)
		case dep.Optional:
			d.logger.Info("optional dependency missing",
				logging.String("dependency", dep.Name),
				logging.String("detail", dep.Detail),
			)
		default:
			logging.WarnWithContext(d.logger, "required dependency missing", "dependency_missing",
				logging.String("dependency", dep.Name),
				logging.String("command", dep.Command),
				logging.String("detail", dep.Detail),
				logging.String(logging.FieldErrorHint, dep.Description),
				logging.String(logging.FieldImpact, "info and convert requests will fail"),
			)
		}
	}
	for _, result := range preflight.RunAll(d.cfg) {
		if result.Passed {
			d.logger.Debug("preflight passed", logging.String("check", result.Name), logging.String("detail", result.Detail))
			continue
		}
		logging.WarnWithContext(d.logger, "preflight check failed", "preflight_failed",
			logging.String("check", result.Name),
			logging.String("detail", result.Detail),
			logging.String(logging.FieldErrorHint, "check paths.downloads_dir and paths.min_free_mib"),
			logging.String(logging.FieldImpact, "conversions may fail"),
		)
	}
}

// IsRunning reports whether a server currently holds the lock for the
// configured downloads directory.
func IsRunning(cfg *config.Config) (bool, error) {
	if cfg == nil {
		return false, errors.New("config is nil")
	}
	lock := flock.New(filepath.Join(cfg.Paths.DownloadsDir, audiostore.LockFileName))
	ok, err := lock.TryLock()
	if err != nil {
		return false, err
	}
	if !ok {
		return true, nil
	}
	_ = lock.Unlock()
	return false, nil
}
