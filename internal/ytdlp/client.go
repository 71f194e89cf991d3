package ytdlp

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os/exec"
	"strings"
	"time"

	"ytmp3/internal/logging"
	"ytmp3/internal/services"
)

const (
	defaultBinary         = "yt-dlp"
	defaultInfoTimeout    = 60 * time.Second
	defaultConvertTimeout = 5 * time.Minute
	processWaitDelay      = 5 * time.Second
)

// Client runs yt-dlp.
type Client struct {
	binary         string
	ffmpegLocation string
	infoTimeout    time.Duration
	convertTimeout time.Duration
	logger         *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithFFmpegLocation passes --ffmpeg-location to extraction runs.
func WithFFmpegLocation(location string) Option {
	return func(c *Client) {
		c.ffmpegLocation = strings.TrimSpace(location)
	}
}

// WithTimeouts overrides the per-call timeouts. Non-positive values keep the defaults.
func WithTimeouts(info, convert time.Duration) Option {
	return func(c *Client) {
		if info > 0 {
			c.infoTimeout = info
		}
		if convert > 0 {
			c.convertTimeout = convert
		}
	}
}

// WithLogger sets the logger used for command tracing.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// New constructs a Client for the given binary ("yt-dlp" when empty).
func New(binary string, opts ...Option) *Client {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		binary = defaultBinary
	}
	c := &Client{
		binary:         binary,
		infoTimeout:    defaultInfoTimeout,
		convertTimeout: defaultConvertTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = logging.NewComponentLogger(c.logger, "ytdlp")
	return c
}

// Binary reports the executable the client runs.
func (c *Client) Binary() string {
	return c.binary
}

// Info fetches metadata for a single video without downloading it.
func (c *Client) Info(ctx context.Context, url string) (Metadata, error) {
	args := []string{
		"--dump-json",
		"--no-download",
		"--no-playlist",
		"--no-warnings",
		"--", url,
	}
	stdout, err := c.run(ctx, "info", c.infoTimeout, args)
	if err != nil {
		return Metadata{}, err
	}

	var meta Metadata
	if err := json.NewDecoder(bytes.NewReader(stdout)).Decode(&meta); err != nil {
		if errors.Is(err, io.EOF) {
			return Metadata{}, services.Wrap(services.ErrExternalTool, "ytdlp", "info", "yt-dlp returned no metadata", nil)
		}
		return Metadata{}, services.Wrap(services.ErrExternalTool, "ytdlp", "info", "decode metadata", err)
	}
	return meta, nil
}

// ExtractAudio downloads url and converts it to MP3 at the given quality.
// outputTemplate is passed verbatim to --output and should end in ".%(ext)s".
func (c *Client) ExtractAudio(ctx context.Context, url, outputTemplate string, quality Quality) error {
	if strings.TrimSpace(outputTemplate) == "" {
		return services.Wrap(services.ErrValidation, "ytdlp", "extract", "output template is empty", nil)
	}
	args := []string{
		"--extract-audio",
		"--audio-format", "mp3",
		"--audio-quality", quality.OrDefault().String(),
		"--output", outputTemplate,
		"--no-playlist",
		"--no-warnings",
	}
	if c.ffmpegLocation != "" {
		args = append(args, "--ffmpeg-location", c.ffmpegLocation)
	}
	args = append(args, "--", url)

	_, err := c.run(ctx, "extract", c.convertTimeout, args)
	return err
}

func (c *Client) run(ctx context.Context, operation string, timeout time.Duration, args []string) ([]byte, error) {
	runCtx := ctx
	if timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	logger := logging.WithContext(ctx, c.logger)
	logger.Debug("running yt-dlp",
		logging.String(logging.FieldOperation, operation),
		logging.String("binary", c.binary),
		logging.String("args", strings.Join(args, " ")),
	)

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(runCtx, c.binary, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	cmd.WaitDelay = processWaitDelay

	start := time.Now()
	err := cmd.Run()
	elapsed := time.Since(start)
	if err != nil {
		classified := classify(runCtx, operation, err, stderr.String())
		logger.Debug("yt-dlp failed",
			logging.String(logging.FieldOperation, operation),
			logging.Duration("elapsed", elapsed),
			logging.Error(classified),
		)
		return nil, classified
	}

	logger.Debug("yt-dlp finished",
		logging.String(logging.FieldOperation, operation),
		logging.Duration("elapsed", elapsed),
		logging.Int("stdout_bytes", stdout.Len()),
	)
	return stdout.Bytes(), nil
}

// Version returns the first line of `yt-dlp --version`.
func (c *Client) Version(ctx context.Context) (string, error) {
	out, err := c.run(ctx, "version", 10*time.Second, []string{"--version"})
	if err != nil {
		return "", err
	}
	line, _, _ := strings.Cut(strings.TrimSpace(string(out)), "\n")
	if line == "" {
		return "", fmt.Errorf("yt-dlp --version: empty output")
	}
	return line, nil
}
