package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"ytmp3/internal/audiostore"
	"ytmp3/internal/daemon"
	"ytmp3/internal/logging"
	"ytmp3/internal/preflight"
	"ytmp3/internal/textutil"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show server, dependency, and pending file status",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)

			running, lockErr := daemon.IsRunning(cfg)
			lines := renderSectionHeader("Server", colorize)
			switch {
			case lockErr != nil:
				lines = append(lines, renderStatusLine("ytmp3", statusWarn, lockErr.Error(), colorize))
			case running:
				lines = append(lines, renderStatusLine("ytmp3", statusOK, "Running", colorize))
			default:
				lines = append(lines, renderStatusLine("ytmp3", statusInfo, "Not running", colorize))
			}
			lines = append(lines, renderStatusLine("Address", statusInfo, cfg.Address(), colorize))
			if ctx.configPath != "" {
				lines = append(lines, renderStatusLine("Config", statusInfo, ctx.configPath, colorize))
			}

			lines = append(lines, "")
			lines = append(lines, renderSectionHeader("Dependencies", colorize)...)
			lines = append(lines, dependencyLines(preflight.CheckSystemDeps(cfg), colorize)...)

			service, client, err := ctx.newService(logging.NewNop())
			if err != nil {
				return err
			}
			if version, err := client.Version(cmd.Context()); err != nil {
				lines = append(lines, renderStatusLine("yt-dlp version", statusWarn,
					fmt.Sprintf("%s: %v", client.Binary(), err), colorize))
			} else {
				lines = append(lines, renderStatusLine("yt-dlp version", statusInfo, version, colorize))
			}

			lines = append(lines, "")
			lines = append(lines, renderSectionHeader("Preflight", colorize)...)
			for _, result := range preflight.RunAll(cfg) {
				kind := statusOK
				if !result.Passed {
					kind = statusWarn
				}
				lines = append(lines, renderStatusLine(result.Name, kind, result.Detail, colorize))
			}

			entries, err := service.Store().List()
			if err != nil {
				return err
			}
			lines = append(lines, "")
			lines = append(lines, renderSectionHeader(fmt.Sprintf("Pending files (%d)", len(entries)), colorize)...)
			fmt.Fprintln(out, strings.Join(lines, "\n"))
			if len(entries) > 0 {
				fmt.Fprintln(out, renderTable(
					[]string{"ID", "Size", "Age", "Expires"},
					pendingRows(entries, cfg.SweepMaxAge(), time.Now()),
					[]columnAlignment{alignLeft, alignRight, alignLeft, alignLeft},
				))
			}
			return nil
		},
	}
}

func pendingRows(entries []audiostore.Entry, maxAge time.Duration, now time.Time) [][]string {
	rows := make([][]string, 0, len(entries))
	for _, entry := range entries {
		expires := "next sweep"
		if deadline := entry.ModTime.Add(maxAge); deadline.After(now) {
			expires = humanize.RelTime(deadline, now, "ago", "from now")
		}
		rows = append(rows, []string{
			entry.ID,
			textutil.FormatBytes(entry.Size),
			humanize.RelTime(entry.ModTime, now, "ago", "from now"),
			expires,
		})
	}
	return rows
}
