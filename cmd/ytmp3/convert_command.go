package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"ytmp3/internal/config"
	"ytmp3/internal/fileutil"
	"ytmp3/internal/textutil"
	"ytmp3/internal/ytdlp"
)

func newConvertCommand(ctx *commandContext) *cobra.Command {
	var quality string
	var outDir string

	cmd := &cobra.Command{
		Use:   "convert <url>",
		Short: "Convert a video URL to an MP3 in the given directory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			service, _, err := ctx.newService(ctx.cliLogger())
			if err != nil {
				return err
			}
			target, err := resolveOutDir(outDir)
			if err != nil {
				return err
			}

			url := strings.TrimSpace(args[0])
			info, err := service.Info(cmd.Context(), url)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Converting %q (%s)\n", info.Title, info.Duration)

			result, err := service.Convert(cmd.Context(), url, ytdlp.ParseQuality(quality))
			if err != nil {
				return err
			}

			name := textutil.SanitizeFileName(info.Title, "audio-"+result.ID) + ".mp3"
			dest := filepath.Join(target, name)
			if err := fileutil.MoveFile(result.Path, dest); err != nil {
				_ = service.Store().Remove(result.ID)
				return fmt.Errorf("move %s: %w", result.Path, err)
			}
			fmt.Fprintf(out, "Wrote %s (%s, %s)\n", dest, result.FileSize(), result.Quality)
			return nil
		},
	}

	cmd.Flags().StringVarP(&quality, "quality", "q", ytdlp.DefaultQuality.String(), "Audio quality: 128, 192 or 320")
	cmd.Flags().StringVarP(&outDir, "out-dir", "o", ".", "Directory receiving the MP3")
	return cmd
}

func resolveOutDir(dir string) (string, error) {
	if strings.TrimSpace(dir) == "" {
		dir = "."
	}
	expanded, err := config.ExpandPath(dir)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(expanded, 0o755); err != nil {
		return "", fmt.Errorf("create output directory: %w", err)
	}
	return expanded, nil
}
