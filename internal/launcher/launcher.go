// Package launcher writes the batch file Steam runs in place of the game.
//
// Steam expands %command% in LaunchOptions to the game's own command
// line, so setting LaunchOptions to `"<bat>" %command%` hands that command
// line to the batch file, which starts it with the requested affinity.
package launcher

import (
	"bytes"
	"fmt"
	"log/slog"
	"strings"
	"text/template"

	"github.com/samber/lo"
	"github.com/spf13/afero"

	"github.com/ossyrian/steamaffinity/internal/affinity"
	"github.com/ossyrian/steamaffinity/internal/store"
)

// DefaultName is the file name used when none is configured.
const DefaultName = "steamaffinity.bat"

// Priorities accepted by `start`.
var Priorities = []string{"low", "belownormal", "normal", "abovenormal", "high", "realtime"}

// Spec describes a launcher.
type Spec struct {
	AppID    string
	AppName  string
	Cores    []int
	Priority string
}

var batchTemplate = template.Must(template.New("launcher").Parse(`@echo off
rem Generated by steamaffinity for {{ .Title }}.
rem Cores {{ .Cores }}, affinity mask 0x{{ .Mask }}.
start "" /{{ .Priority }} /affinity {{ .Mask }} %*
`))

// Render returns the batch file text with CRLF line endings.
func Render(s Spec) (string, error) {
	mask, err := affinity.Mask(s.Cores)
	if err != nil {
		return "", err
	}

	priority := strings.ToLower(s.Priority)
	if priority == "" {
		priority = "normal"
	}
	if !lo.Contains(Priorities, priority) {
		return "", fmt.Errorf("unknown priority %q (want one of %s)", s.Priority, strings.Join(Priorities, ", "))
	}

	title := "app " + s.AppID
	if s.AppName != "" {
		title = fmt.Sprintf("%s (app %s)", s.AppName, s.AppID)
	}

	var buf bytes.Buffer
	err = batchTemplate.Execute(&buf, struct {
		Title    string
		Cores    string
		Mask     string
		Priority string
	}{
		Title:    title,
		Cores:    affinity.Format(s.Cores),
		Mask:     affinity.Hex(mask),
		Priority: priority,
	})
	if err != nil {
		return "", fmt.Errorf("failed to render launcher: %w", err)
	}

	return strings.ReplaceAll(buf.String(), "\n", "\r\n"), nil
}

// Write renders the launcher and writes it atomically to path.
func Write(fsys afero.Fs, path string, s Spec, logger *slog.Logger) error {
	text, err := Render(s)
	if err != nil {
		return err
	}
	if err := store.WriteFileAtomic(fsys, path, []byte(text), 0o755); err != nil {
		return fmt.Errorf("failed to write launcher: %w", err)
	}
	logger.Info("wrote launcher", "path", path, "cores", affinity.Format(s.Cores))
	return nil
}

// LaunchOptions returns the Steam LaunchOptions value that routes the game
// through the batch file at batPath.
func LaunchOptions(batPath, extra string) string {
	opts := fmt.Sprintf(`"%s" %%command%%`, batPath)
	if extra = strings.TrimSpace(extra); extra != "" {
		opts += " " + extra
	}
	return opts
}
