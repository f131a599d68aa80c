// Package patcher pins a Steam game to a set of CPU cores by pointing its
// LaunchOptions at a generated launcher.
package patcher

import (
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/spf13/afero"

	"github.com/ossyrian/steamaffinity/internal/affinity"
	"github.com/ossyrian/steamaffinity/internal/config"
	"github.com/ossyrian/steamaffinity/internal/diffview"
	"github.com/ossyrian/steamaffinity/internal/launcher"
	"github.com/ossyrian/steamaffinity/internal/steam"
	"github.com/ossyrian/steamaffinity/internal/store"
	"github.com/ossyrian/steamaffinity/internal/vdf"
)

// Result describes what a run did, or would do in dry-run mode.
type Result struct {
	App          *steam.App
	UserID       string
	ConfigPath   string
	LauncherPath string
	Cores        []int
	Mask         uint64

	OldLaunchOptions string // empty when the leaf did not exist
	NewLaunchOptions string

	Changed    bool // localconfig.vdf content differs after patching
	BackupPath string
	DryRun     bool
}

// Patcher runs the patch flow against a filesystem.
type Patcher struct {
	fs         afero.Fs
	out        io.Writer
	logger     *slog.Logger
	finderOpts []steam.Option
	coreCount  func() int
	now        func() time.Time
}

// Option configures a Patcher.
type Option func(*Patcher)

// WithFinderOptions passes options to the Steam finder.
func WithFinderOptions(opts ...steam.Option) Option {
	return func(p *Patcher) { p.finderOpts = append(p.finderOpts, opts...) }
}

// WithCoreCount overrides the number of available cores.
func WithCoreCount(n int) Option {
	return func(p *Patcher) { p.coreCount = func() int { return n } }
}

// WithClock overrides the clock used for backup names.
func WithClock(now func() time.Time) Option {
	return func(p *Patcher) { p.now = now }
}

// New returns a Patcher that prints diffs to out.
func New(fsys afero.Fs, out io.Writer, logger *slog.Logger, opts ...Option) *Patcher {
	if logger == nil {
		logger = slog.Default()
	}
	p := &Patcher{
		fs:        fsys,
		out:       out,
		logger:    logger,
		coreCount: affinity.Available,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Run patches the configured app. Everything that can fail is checked
// before the first write, so an error leaves localconfig.vdf untouched.
func (p *Patcher) Run(cfg *config.Config) (*Result, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	finder := steam.NewFinder(p.fs, p.logger, p.finderOpts...)
	root, err := finder.Locate(cfg.SteamPath)
	if err != nil {
		return nil, err
	}
	p.logger.Info("using steam installation", "path", root)

	app, err := finder.FindApp(root, cfg.AppID)
	if err != nil {
		return nil, err
	}

	cores, err := affinity.Select(p.coreCount(), cfg.Cores, cfg.SkipCores)
	if err != nil {
		return nil, err
	}
	mask, err := affinity.Mask(cores)
	if err != nil {
		return nil, err
	}

	res := &Result{
		App:          app,
		LauncherPath: filepath.Join(app.InstallDir, cfg.LauncherName),
		Cores:        cores,
		Mask:         mask,
		DryRun:       cfg.DryRun,
	}
	spec := launcher.Spec{
		AppID:    app.ID,
		AppName:  app.Name,
		Cores:    cores,
		Priority: cfg.Priority,
	}
	if _, err := launcher.Render(spec); err != nil {
		return nil, err
	}

	users, err := finder.UserConfigs(root)
	if err != nil {
		return nil, err
	}
	user, err := steam.SelectUser(users, cfg.SteamUser)
	if err != nil {
		return nil, err
	}
	res.UserID = user.UserID
	res.ConfigPath = user.Path

	doc, err := store.Load(p.fs, user.Path, p.logger)
	if err != nil {
		return nil, err
	}

	path, err := steam.LaunchOptionsPath(doc.Root, app.ID)
	if err != nil {
		return nil, fmt.Errorf("app %s has no settings in %s, start it once through steam first: %w", app.ID, user.Path, err)
	}

	res.OldLaunchOptions, _ = vdf.GetLeaf(doc.Root, path...)
	res.NewLaunchOptions = launcher.LaunchOptions(res.LauncherPath, cfg.LaunchArgs)
	p.logger.Info("current launch options", "app_id", app.ID, "value", res.OldLaunchOptions)

	if err := vdf.SetLeaf(doc.Root, path, res.NewLaunchOptions); err != nil {
		return nil, err
	}
	res.Changed = doc.Changed()

	if _, err := diffview.Render(p.out, doc.Baseline(), doc.Render(), diffview.Options{
		FromName: user.Path,
		ToName:   user.Path + " (patched)",
		Color:    diffview.ColorEnabled(cfg.Color, p.out),
		Context:  3,
	}); err != nil {
		return nil, err
	}

	if cfg.DryRun {
		p.logger.Info("dry run, nothing written",
			"launcher", res.LauncherPath,
			"cores", affinity.Format(cores),
			"mask", affinity.Hex(mask),
		)
		return res, nil
	}

	// The launcher is rewritten even when LaunchOptions already points at
	// it, since the core set may have changed.
	if err := launcher.Write(p.fs, res.LauncherPath, spec, p.logger); err != nil {
		return nil, err
	}

	if !res.Changed {
		p.logger.Info("launch options already up to date", "path", user.Path)
		return res, nil
	}

	saved, err := store.Save(p.fs, doc, store.SaveOptions{Backup: cfg.Backup, Now: p.now})
	if err != nil {
		return nil, err
	}
	res.BackupPath = saved.BackupPath
	p.logger.Info("patched launch options",
		"path", saved.Path,
		"backup", saved.BackupPath,
		"bytes", saved.Bytes,
	)

	return res, nil
}
