package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

func newInfoCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "info <url>",
		Short: "Show metadata for a video URL",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			service, _, err := ctx.newService(ctx.cliLogger())
			if err != nil {
				return err
			}
			info, err := service.Info(cmd.Context(), strings.TrimSpace(args[0]))
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if jsonOutput {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(infoJSON{
					Title:     info.Title,
					Duration:  info.Duration,
					Thumbnail: info.Thumbnail,
					Uploader:  info.Uploader,
					ID:        info.ID,
				})
			}

			rows := [][]string{
				{"Title", info.Title},
				{"Uploader", info.Uploader},
				{"Duration", info.Duration},
				{"ID", info.ID},
			}
			if info.Metadata.UploadDate != "" {
				rows = append(rows, []string{"Uploaded", info.Metadata.UploadDate})
			}
			if info.Metadata.ViewCount > 0 {
				rows = append(rows, []string{"Views", humanize.Comma(info.Metadata.ViewCount)})
			}
			if info.Metadata.WebpageURL != "" {
				rows = append(rows, []string{"URL", info.Metadata.WebpageURL})
			}
			if info.Thumbnail != "" {
				rows = append(rows, []string{"Thumbnail", info.Thumbnail})
			}
			fmt.Fprintln(out, renderTable([]string{"Field", "Value"}, rows, nil))
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Print the /api/info response body")
	return cmd
}

type infoJSON struct {
	Title     string `json:"title"`
	Duration  string `json:"duration"`
	Thumbnail string `json:"thumbnail"`
	Uploader  string `json:"uploader"`
	ID        string `json:"id"`
}
