package convert_test

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ytmp3/internal/audiostore"
	"ytmp3/internal/convert"
	"ytmp3/internal/media/ffprobe"
	"ytmp3/internal/services"
	"ytmp3/internal/testsupport"
	"ytmp3/internal/ytdlp"
)

type fakeTool struct {
	meta       ytdlp.Metadata
	infoErr    error
	extractErr error
	payload    string
	partial    bool

	gotQuality ytdlp.Quality
	gotURL     string
}

func (f *fakeTool) Info(_ context.Context, url string) (ytdlp.Metadata, error) {
	f.gotURL = url
	return f.meta, f.infoErr
}

func (f *fakeTool) ExtractAudio(_ context.Context, url, template string, q ytdlp.Quality) error {
	f.gotURL = url
	f.gotQuality = q
	if f.partial {
		partial := strings.Replace(template, "%(ext)s", "webm.part", 1)
		if err := os.WriteFile(partial, []byte("partial"), 0o644); err != nil {
			return err
		}
	}
	if f.extractErr != nil {
		return f.extractErr
	}
	if f.payload != "" {
		out := strings.Replace(template, "%(ext)s", "mp3", 1)
		return os.WriteFile(out, []byte(f.payload), 0o644)
	}
	return nil
}

type fakeInspector struct {
	result ffprobe.Result
	err    error
	calls  int
}

func (f *fakeInspector) Inspect(context.Context, string) (ffprobe.Result, error) {
	f.calls++
	return f.result, f.err
}

func newService(t *testing.T, tool convert.Tool, opts ...convert.Option) *convert.Service {
	t.Helper()
	store, err := audiostore.New(filepath.Join(t.TempDir(), "downloads"))
	require.NoError(t, err)
	return convert.NewService(tool, store, opts...)
}

func TestInfoFormatsMetadata(t *testing.T) {
	tool := &fakeTool{meta: ytdlp.Metadata{
		ID:        "abc",
		Title:     "Song",
		Duration:  4530.9,
		Thumbnail: "https://i.ytimg.com/abc.jpg",
		Uploader:  "Artist",
	}}
	svc := newService(t, tool)

	info, err := svc.Info(context.Background(), "https://youtu.be/abc")
	require.NoError(t, err)
	assert.Equal(t, "Song", info.Title)
	assert.Equal(t, "75:30", info.Duration)
	assert.Equal(t, "https://i.ytimg.com/abc.jpg", info.Thumbnail)
	assert.Equal(t, "Artist", info.Uploader)
	assert.Equal(t, "abc", info.ID)
}

func TestInfoFallsBackToChannel(t *testing.T) {
	svc := newService(t, &fakeTool{meta: ytdlp.Metadata{ID: "abc", Title: "Song", Channel: "Label"}})

	info, err := svc.Info(context.Background(), "https://youtu.be/abc")
	require.NoError(t, err)
	assert.Equal(t, "Label", info.Uploader)
	assert.Equal(t, "0:00", info.Duration)
}

func TestInfoPropagatesToolError(t *testing.T) {
	boom := services.Wrap(services.ErrExternalTool, "ytdlp", "info", "boom", nil)
	svc := newService(t, &fakeTool{infoErr: boom})

	_, err := svc.Info(context.Background(), "https://youtu.be/abc")
	assert.ErrorIs(t, err, services.ErrExternalTool)
}

func TestConvertProducesFile(t *testing.T) {
	tool := &fakeTool{payload: strings.Repeat("x", 1536)}
	svc := newService(t, tool)

	result, err := svc.Convert(context.Background(), "https://youtu.be/abc", ytdlp.Quality128)
	require.NoError(t, err)
	assert.True(t, audiostore.ValidID(result.ID))
	assert.Equal(t, int64(1536), result.Size)
	assert.Equal(t, "1.5 KB", result.FileSize())
	assert.Equal(t, ytdlp.Quality128, result.Quality)
	assert.Equal(t, ytdlp.Quality128, tool.gotQuality)
	assert.FileExists(t, result.Path)
}

func TestConvertDefaultsQuality(t *testing.T) {
	tool := &fakeTool{payload: "x"}
	svc := newService(t, tool)

	result, err := svc.Convert(context.Background(), "https://youtu.be/abc", "")
	require.NoError(t, err)
	assert.Equal(t, ytdlp.Quality320, result.Quality)
	assert.Equal(t, ytdlp.Quality320, tool.gotQuality)
}

func TestConvertMissingOutput(t *testing.T) {
	svc := newService(t, &fakeTool{})

	_, err := svc.Convert(context.Background(), "https://youtu.be/abc", ytdlp.Quality320)
	require.Error(t, err)
	assert.ErrorIs(t, err, convert.ErrFileNotCreated)
	assert.ErrorIs(t, err, services.ErrExternalTool)
}

func TestConvertFailureRemovesPartialOutput(t *testing.T) {
	tool := &fakeTool{partial: true, extractErr: errors.New("ffmpeg crashed")}
	svc := newService(t, tool)

	_, err := svc.Convert(context.Background(), "https://youtu.be/abc", ytdlp.Quality320)
	require.Error(t, err)

	entries, err := svc.Store().List()
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestConvertVerifierRejectsSilentFile(t *testing.T) {
	inspector := &fakeInspector{result: ffprobe.Result{}}
	svc := newService(t, &fakeTool{payload: "x"}, convert.WithVerifier(inspector))

	_, err := svc.Convert(context.Background(), "https://youtu.be/abc", ytdlp.Quality320)
	require.Error(t, err)
	assert.ErrorIs(t, err, ffprobe.ErrNoAudio)
	assert.Equal(t, 1, inspector.calls)

	entries, err := svc.Store().List()
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestConvertVerifierAcceptsAudio(t *testing.T) {
	inspector := &fakeInspector{result: ffprobe.Result{Streams: []ffprobe.Stream{{CodecType: "audio", CodecName: "mp3"}}}}
	svc := newService(t, &fakeTool{payload: "x"}, convert.WithVerifier(inspector))

	_, err := svc.Convert(context.Background(), "https://youtu.be/abc", ytdlp.Quality320)
	require.NoError(t, err)
}

func TestOpenDownloadDeletesOnClose(t *testing.T) {
	svc := newService(t, &fakeTool{payload: "audio-bytes"})
	result, err := svc.Convert(context.Background(), "https://youtu.be/abc", ytdlp.Quality320)
	require.NoError(t, err)

	dl, err := svc.OpenDownload(context.Background(), result.ID)
	require.NoError(t, err)
	assert.Equal(t, "audio-"+result.ID+".mp3", dl.Filename())
	assert.Equal(t, int64(len("audio-bytes")), dl.Size)

	data, err := io.ReadAll(dl)
	require.NoError(t, err)
	assert.Equal(t, "audio-bytes", string(data))

	require.NoError(t, dl.Close())
	assert.NoFileExists(t, result.Path)
	assert.NoError(t, dl.Close(), "second close should be a no-op")

	_, err = svc.OpenDownload(context.Background(), result.ID)
	assert.ErrorIs(t, err, services.ErrNotFound)
}

func TestOpenDownloadRejectsBadIDs(t *testing.T) {
	svc := newService(t, &fakeTool{})
	for _, id := range []string{"", "abc", "../../etc/passwd", "123"} {
		_, err := svc.OpenDownload(context.Background(), id)
		assert.ErrorIs(t, err, services.ErrNotFound, "id %q", id)
	}
}

func TestOpenDownloadOfForeignFileInStore(t *testing.T) {
	svc := newService(t, &fakeTool{})
	testsupport.WriteFile(t, filepath.Join(svc.Store().Dir(), "55.mp3"), 10)

	dl, err := svc.OpenDownload(context.Background(), "55")
	require.NoError(t, err)
	require.NoError(t, dl.Close())
	assert.NoFileExists(t, filepath.Join(svc.Store().Dir(), "55.mp3"))
}

// blockingTool writes its output and then waits for release before returning.
type blockingTool struct {
	fakeTool
	written chan string
	release chan struct{}
}

func (b *blockingTool) ExtractAudio(_ context.Context, _, template string, _ ytdlp.Quality) error {
	out := strings.Replace(template, "%(ext)s", "mp3", 1)
	if err := os.WriteFile(out, []byte("ID3"), 0o644); err != nil {
		return err
	}
	b.written <- strings.TrimSuffix(filepath.Base(out), audiostore.Extension)
	<-b.release
	return nil
}

func TestOpenDownloadWaitsForRunningConversion(t *testing.T) {
	tool := &blockingTool{written: make(chan string, 1), release: make(chan struct{})}
	svc := newService(t, tool)

	type outcome struct {
		result convert.Result
		err    error
	}
	done := make(chan outcome, 1)
	go func() {
		result, err := svc.Convert(context.Background(), "https://youtu.be/abc", ytdlp.Quality320)
		done <- outcome{result, err}
	}()

	id := <-tool.written
	_, err := svc.OpenDownload(context.Background(), id)
	assert.ErrorIs(t, err, services.ErrNotFound, "conversion still running")

	close(tool.release)
	got := <-done
	require.NoError(t, got.err)
	assert.Equal(t, id, got.result.ID)

	dl, err := svc.OpenDownload(context.Background(), id)
	require.NoError(t, err)
	data, err := io.ReadAll(dl)
	require.NoError(t, err)
	assert.Equal(t, "ID3", string(data))
	require.NoError(t, dl.Close())
	assert.NoFileExists(t, got.result.Path)
}
