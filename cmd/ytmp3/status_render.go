package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"

	"ytmp3/internal/deps"
)

type statusKind int

const (
	statusInfo statusKind = iota
	statusOK
	statusWarn
	statusError
)

const (
	statusLabelWidth = 16
	statusIndent     = "  "
)

func renderStatusLine(label string, kind statusKind, message string, colorize bool) string {
	statusText := fmt.Sprintf("[%s]", statusKindLabel(kind))
	if message != "" {
		statusText += " " + message
	}
	base := fmt.Sprintf("%s%-*s %s", statusIndent, statusLabelWidth, label+":", statusText)
	if colorize {
		c := *statusKindColor(kind)
		c.EnableColor()
		return c.Sprint(base)
	}
	return base
}

func statusKindLabel(kind statusKind) string {
	switch kind {
	case statusOK:
		return "OK"
	case statusWarn:
		return "WARN"
	case statusError:
		return "ERROR"
	default:
		return "INFO"
	}
}

func statusKindColor(kind statusKind) *color.Color {
	switch kind {
	case statusOK:
		return color.New(color.FgGreen)
	case statusWarn:
		return color.New(color.FgYellow)
	case statusError:
		return color.New(color.FgRed)
	default:
		return color.New(color.FgBlue)
	}
}

func renderSectionHeader(title string, colorize bool) []string {
	line := fmt.Sprintf("== %s ==", strings.TrimSpace(title))
	rule := strings.Repeat("-", len(line))
	if colorize {
		c := color.New(color.FgBlue, color.Bold)
		c.EnableColor()
		line = c.Sprint(line)
		rule = c.Sprint(rule)
	}
	return []string{line, rule}
}

// dependencyLines renders a summary line followed by one line per dependency.
func dependencyLines(statuses []deps.Status, colorize bool) []string {
	if len(statuses) == 0 {
		return nil
	}
	var missingRequired, missingOptional []string
	for _, dep := range statuses {
		if dep.Available {
			continue
		}
		if dep.Optional {
			missingOptional = append(missingOptional, dep.Name)
		} else {
			missingRequired = append(missingRequired, dep.Name)
		}
	}

	lines := make([]string, 0, len(statuses)+1)
	switch {
	case len(missingRequired) > 0:
		lines = append(lines, renderStatusLine("Summary", statusError,
			"Missing: "+strings.Join(missingRequired, ", "), colorize))
	case len(missingOptional) > 0:
		lines = append(lines, renderStatusLine("Summary", statusWarn,
			"Optional missing: "+strings.Join(missingOptional, ", "), colorize))
	default:
		lines = append(lines, renderStatusLine("Summary", statusOK, "All dependencies available", colorize))
	}

	for _, dep := range statuses {
		kind := statusOK
		message := "Ready"
		switch {
		case dep.Path != "" && dep.Path != dep.Command:
			message = fmt.Sprintf("Ready (command: %s, path: %s)", dep.Command, dep.Path)
		case dep.Command != "":
			message = fmt.Sprintf("Ready (command: %s)", dep.Command)
		}
		if !dep.Available {
			kind = statusError
			if dep.Optional {
				kind = statusWarn
			}
			message = strings.TrimSpace(dep.Detail)
			if message == "" {
				message = "not available"
			}
		}
		lines = append(lines, renderStatusLine(dep.Name, kind, message, colorize))
	}
	return lines
}

func shouldColorize(writer io.Writer) bool {
	file, ok := writer.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
