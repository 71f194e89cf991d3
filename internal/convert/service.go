package convert

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"ytmp3/internal/audiostore"
	"ytmp3/internal/logging"
	"ytmp3/internal/media/ffprobe"
	"ytmp3/internal/services"
	"ytmp3/internal/textutil"
	"ytmp3/internal/ytdlp"
)

// Tool is the subset of the yt-dlp client the service needs.
type Tool interface {
	Info(ctx context.Context, url string) (ytdlp.Metadata, error)
	ExtractAudio(ctx context.Context, url, outputTemplate string, quality ytdlp.Quality) error
}

// Inspector verifies a converted file.
type Inspector interface {
	Inspect(ctx context.Context, path string) (ffprobe.Result, error)
}

// Info is the public view of a video's metadata.
type Info struct {
	Title     string
	Duration  string
	Thumbnail string
	Uploader  string
	ID        string
	Metadata  ytdlp.Metadata
}

// Result describes a finished conversion.
type Result struct {
	ID      string
	Path    string
	Size    int64
	Quality ytdlp.Quality
}

// FileSize renders Size with textutil.FormatBytes.
func (r Result) FileSize() string {
	return textutil.FormatBytes(r.Size)
}

// Option configures a Service.
type Option func(*Service)

// WithVerifier enables post-conversion inspection of every output file.
func WithVerifier(inspector Inspector) Option {
	return func(s *Service) {
		s.verifier = inspector
	}
}

// WithLogger sets the service logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// Service converts video URLs into downloadable MP3 files.
type Service struct {
	tool     Tool
	store    *audiostore.Store
	verifier Inspector
	logger   *slog.Logger

	mu     sync.Mutex
	active map[string]struct{}
}

// NewService constructs a Service.
func NewService(tool Tool, store *audiostore.Store, opts ...Option) *Service {
	s := &Service{
		tool:   tool,
		store:  store,
		active: make(map[string]struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = logging.NewComponentLogger(s.logger, "convert")
	return s
}

// Store exposes the underlying audio store.
func (s *Service) Store() *audiostore.Store {
	return s.store
}

// Info fetches metadata for url and formats it for display.
func (s *Service) Info(ctx context.Context, url string) (Info, error) {
	ctx = services.WithOperation(ctx, "info")
	logger := logging.WithContext(ctx, s.logger)

	start := time.Now()
	meta, err := s.tool.Info(ctx, url)
	if err != nil {
		logging.WarnWithContext(logger, "metadata lookup failed", "info_failed",
			logging.String("url", url),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "run yt-dlp manually with the same URL"),
			logging.String(logging.FieldImpact, "client receives an error response"),
		)
		return Info{}, err
	}

	logger.Info("metadata fetched",
		logging.String("video_id", meta.ID),
		logging.String("title", meta.Title),
		logging.Duration("elapsed", time.Since(start)),
	)
	return Info{
		Title:     meta.Title,
		Duration:  textutil.FormatDuration(meta.Duration),
		Thumbnail: meta.Thumbnail,
		Uploader:  meta.Author(),
		ID:        meta.ID,
		Metadata:  meta,
	}, nil
}

// Convert downloads url, extracts MP3 audio at quality, and returns the
// stored file. Any partial output is removed when the conversion fails.
func (s *Service) Convert(ctx context.Context, url string, quality ytdlp.Quality) (Result, error) {
	quality = quality.OrDefault()
	id := s.store.NewID()
	ctx = services.WithFileID(services.WithOperation(ctx, "convert"), id)
	logger := logging.WithContext(ctx, s.logger)

	s.track(id)
	defer s.untrack(id)

	logger.Info("conversion started",
		logging.String("url", url),
		logging.String("quality", quality.String()),
	)
	start := time.Now()

	result, err := s.convert(ctx, id, url, quality)
	if err != nil {
		if rmErr := s.store.Remove(id); rmErr != nil {
			logger.Debug("partial output cleanup failed", logging.Error(rmErr))
		}
		if services.IsClientError(err) {
			logger.Info("conversion rejected",
				logging.String("url", url),
				logging.Error(err),
				logging.String(logging.FieldEventType, "convert_rejected"),
			)
			return Result{}, err
		}
		logging.ErrorWithContext(logger, "conversion failed", "convert_failed",
			logging.String("url", url),
			logging.Error(err),
			logging.Duration("elapsed", time.Since(start)),
			logging.String(logging.FieldErrorHint, "run yt-dlp manually with the same URL"),
		)
		return Result{}, err
	}

	logger.Info("conversion finished",
		logging.String("quality", quality.String()),
		logging.String("size", result.FileSize()),
		logging.Duration("elapsed", time.Since(start)),
	)
	return result, nil
}

func (s *Service) convert(ctx context.Context, id, url string, quality ytdlp.Quality) (Result, error) {
	if err := s.tool.ExtractAudio(ctx, url, s.store.OutputTemplate(id), quality); err != nil {
		return Result{}, err
	}

	entry, err := s.store.Stat(id)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			return Result{}, services.Wrap(services.ErrExternalTool, "convert", "convert", "yt-dlp exited without output", ErrFileNotCreated)
		}
		return Result{}, err
	}

	if s.verifier != nil {
		probe, err := s.verifier.Inspect(ctx, entry.Path)
		if err != nil {
			return Result{}, services.Wrap(services.ErrExternalTool, "convert", "verify", "ffprobe failed", err)
		}
		if err := probe.CheckAudio(); err != nil {
			return Result{}, services.Wrap(services.ErrExternalTool, "convert", "verify", "output has no audio", err)
		}
		logging.WithContext(ctx, s.logger).Debug("output verified",
			logging.String("codec", probe.AudioCodec()),
			logging.Float64("duration_seconds", probe.DurationSeconds()),
			logging.Int64("bit_rate", probe.BitRate()),
		)
	}

	return Result{
		ID:      id,
		Path:    entry.Path,
		Size:    entry.Size,
		Quality: quality,
	}, nil
}

// ErrFileNotCreated reports that yt-dlp exited cleanly but produced no MP3.
var ErrFileNotCreated = errors.New("file not created")

// Download is an open converted file that deletes itself when closed.
type Download struct {
	*os.File
	ID   string
	Size int64

	once    sync.Once
	service *Service
	logger  *slog.Logger
}

// Filename is the attachment name offered to clients.
func (d *Download) Filename() string {
	return fmt.Sprintf("audio-%s%s", d.ID, audiostore.Extension)
}

// Close closes the file and removes it from the store. It is safe to call
// more than once.
func (d *Download) Close() error {
	var closeErr error
	d.once.Do(func() {
		closeErr = d.File.Close()
		if err := d.service.store.Remove(d.ID); err != nil {
			d.logger.Warn("failed to remove downloaded file",
				logging.Error(err),
				logging.String(logging.FieldEventType, "download_cleanup_failed"),
				logging.String(logging.FieldErrorHint, "the sweep will retry"),
				logging.String(logging.FieldImpact, "disk space held until next sweep"),
			)
			return
		}
		d.logger.Info("download finished, file removed")
	})
	return closeErr
}

// OpenDownload opens the file for id. The caller must Close the returned
// Download, which deletes the file.
func (s *Service) OpenDownload(ctx context.Context, id string) (*Download, error) {
	ctx = services.WithFileID(services.WithOperation(ctx, "download"), id)
	logger := logging.WithContext(ctx, s.logger)

	if s.isActive(id) {
		return nil, services.Wrap(services.ErrNotFound, "convert", "download", "conversion still running", nil)
	}

	file, entry, err := s.store.Open(id)
	if err != nil {
		return nil, err
	}
	logger.Debug("download opened", logging.Int64("size", entry.Size))
	return &Download{
		File:    file,
		ID:      id,
		Size:    entry.Size,
		service: s,
		logger:  logger,
	}, nil
}

func (s *Service) track(id string) {
	s.mu.Lock()
	s.active[id] = struct{}{}
	s.mu.Unlock()
}

func (s *Service) untrack(id string) {
	s.mu.Lock()
	delete(s.active, id)
	s.mu.Unlock()
}

func (s *Service) isActive(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.active[id]
	return ok
}
