// Package steam finds a Steam installation and the files inside it that
// steamaffinity reads or patches: library folders, app manifests and the
// per-user localconfig.vdf.
package steam

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strconv"
	"strings"

	"github.com/samber/lo"
	"github.com/spf13/afero"

	"github.com/ossyrian/steamaffinity/internal/store"
	"github.com/ossyrian/steamaffinity/internal/vdf"
)

var (
	ErrSteamNotFound = errors.New("steam installation not found")
	ErrAppNotFound   = errors.New("app is not installed in any steam library")
	ErrNoUsers       = errors.New("no steam user has a localconfig.vdf")
)

// Finder looks up Steam files on a filesystem.
type Finder struct {
	fs       afero.Fs
	logger   *slog.Logger
	goos     string
	home     string
	registry func() (string, bool)
}

// Option configures a Finder.
type Option func(*Finder)

// WithHome overrides the user's home directory.
func WithHome(home string) Option {
	return func(f *Finder) { f.home = home }
}

// WithGOOS overrides the operating system used to pick default locations.
func WithGOOS(goos string) Option {
	return func(f *Finder) { f.goos = goos }
}

// WithRegistry overrides the registry lookup of the Steam install path.
func WithRegistry(lookup func() (string, bool)) Option {
	return func(f *Finder) { f.registry = lookup }
}

func NewFinder(fsys afero.Fs, logger *slog.Logger, opts ...Option) *Finder {
	if logger == nil {
		logger = slog.Default()
	}
	f := &Finder{
		fs:       fsys,
		logger:   logger,
		goos:     runtime.GOOS,
		registry: registrySteamPath,
	}
	if home, err := os.UserHomeDir(); err == nil {
		f.home = home
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// DefaultCandidates returns the usual Steam install locations for goos.
func DefaultCandidates(goos, home string) []string {
	switch goos {
	case "windows":
		return []string{
			`C:\Program Files (x86)\Steam`,
			`C:\Program Files\Steam`,
		}
	case "darwin":
		return []string{
			filepath.Join(home, "Library", "Application Support", "Steam"),
		}
	default:
		return []string{
			filepath.Join(home, ".steam", "steam"),
			filepath.Join(home, ".local", "share", "Steam"),
			filepath.Join(home, ".steam", "root"),
			filepath.Join(home, ".var", "app", "com.valvesoftware.Steam", ".steam", "steam"),
			filepath.Join(home, ".var", "app", "com.valvesoftware.Steam", "data", "Steam"),
		}
	}
}

// Locate returns the Steam root directory. An explicit path is used as
// is; otherwise the registry and then the default locations are tried.
func (f *Finder) Locate(explicit string) (string, error) {
	if explicit != "" {
		if !f.dirExists(explicit) {
			return "", fmt.Errorf("%w: %s is not a directory", ErrSteamNotFound, explicit)
		}
		return filepath.Clean(explicit), nil
	}

	if p, ok := f.registry(); ok {
		p = filepath.Clean(p)
		f.logger.Debug("steam path from registry", "path", p)
		if f.dirExists(p) {
			return p, nil
		}
		f.logger.Warn("registry steam path does not exist", "path", p)
	}

	candidates := DefaultCandidates(f.goos, f.home)
	for _, c := range candidates {
		f.logger.Debug("checking steam location", "path", c)
		if f.dirExists(filepath.Join(c, "steamapps")) || f.dirExists(filepath.Join(c, "userdata")) {
			return c, nil
		}
	}

	return "", fmt.Errorf("%w (checked %s)", ErrSteamNotFound, strings.Join(candidates, ", "))
}

// Libraries returns the library folders listed in
// steamapps/libraryfolders.vdf, with the Steam root first. A missing
// libraryfolders.vdf yields only the root.
func (f *Finder) Libraries(root string) ([]string, error) {
	path := filepath.Join(root, "steamapps", "libraryfolders.vdf")
	libs := []string{filepath.Clean(root)}

	if ok, _ := afero.Exists(f.fs, path); !ok {
		f.logger.Debug("no libraryfolders.vdf, using steam root only", "path", path)
		return libs, nil
	}

	doc, err := store.Load(f.fs, path, f.logger)
	if err != nil {
		return nil, fmt.Errorf("failed to read library folders: %w", err)
	}

	folders := doc.Root.Child("libraryfolders")
	if folders == nil {
		folders = doc.Root.Child("LibraryFolders")
	}
	if !folders.IsObject() {
		return nil, fmt.Errorf("%s has no libraryfolders object", path)
	}

	for _, e := range folders.Entries() {
		if _, err := strconv.Atoi(e.Key); err != nil {
			// TimeNextStatsReport, ContentStatsID and similar
			continue
		}
		switch {
		case e.Node.IsLeaf():
			libs = append(libs, filepath.Clean(e.Node.Value()))
		case e.Node.Child("path").IsLeaf():
			libs = append(libs, filepath.Clean(e.Node.Child("path").Value()))
		}
	}

	return lo.Uniq(libs), nil
}

// App is an installed Steam application.
type App struct {
	ID         string
	Name       string
	Library    string
	InstallDir string // absolute path of the game's install directory
}

// FindApp searches every library for the app's manifest.
func (f *Finder) FindApp(root, appID string) (*App, error) {
	libs, err := f.Libraries(root)
	if err != nil {
		return nil, err
	}

	for _, lib := range libs {
		manifest := filepath.Join(lib, "steamapps", "appmanifest_"+appID+".acf")
		if ok, _ := afero.Exists(f.fs, manifest); !ok {
			continue
		}

		doc, err := store.Load(f.fs, manifest, f.logger)
		if err != nil {
			return nil, fmt.Errorf("failed to read app manifest: %w", err)
		}

		installDir, ok := vdf.GetLeaf(doc.Root, "AppState", "installdir")
		if !ok || installDir == "" {
			return nil, fmt.Errorf("%s has no AppState/installdir", manifest)
		}
		name, _ := vdf.GetLeaf(doc.Root, "AppState", "name")

		app := &App{
			ID:         appID,
			Name:       name,
			Library:    lib,
			InstallDir: filepath.Join(lib, "steamapps", "common", installDir),
		}
		f.logger.Info("found app", "app_id", appID, "name", name, "install_dir", app.InstallDir)
		return app, nil
	}

	return nil, fmt.Errorf("%w: app %s (searched %d libraries)", ErrAppNotFound, appID, len(libs))
}

// UserConfig is one Steam account's localconfig.vdf.
type UserConfig struct {
	UserID string
	Path   string
}

// UserConfigs lists userdata/<id>/config/localconfig.vdf files, sorted
// by user id.
func (f *Finder) UserConfigs(root string) ([]UserConfig, error) {
	pattern := filepath.Join(root, "userdata", "*", "config", "localconfig.vdf")
	matches, err := afero.Glob(f.fs, pattern)
	if err != nil {
		return nil, fmt.Errorf("failed to list user configs: %w", err)
	}

	configs := lo.FilterMap(matches, func(p string, _ int) (UserConfig, bool) {
		id := filepath.Base(filepath.Dir(filepath.Dir(p)))
		if _, err := strconv.ParseUint(id, 10, 32); err != nil || id == "0" {
			return UserConfig{}, false
		}
		return UserConfig{UserID: id, Path: p}, true
	})
	sort.Slice(configs, func(i, j int) bool {
		a, _ := strconv.ParseUint(configs[i].UserID, 10, 32)
		b, _ := strconv.ParseUint(configs[j].UserID, 10, 32)
		return a < b
	})

	if len(configs) == 0 {
		return nil, fmt.Errorf("%w under %s", ErrNoUsers, filepath.Join(root, "userdata"))
	}
	return configs, nil
}

// SelectUser picks the config for userID. With an empty userID exactly
// one config must exist.
func SelectUser(configs []UserConfig, userID string) (UserConfig, error) {
	if userID != "" {
		c, ok := lo.Find(configs, func(c UserConfig) bool { return c.UserID == userID })
		if !ok {
			return UserConfig{}, fmt.Errorf("steam user %s has no localconfig.vdf", userID)
		}
		return c, nil
	}

	switch len(configs) {
	case 0:
		return UserConfig{}, ErrNoUsers
	case 1:
		return configs[0], nil
	default:
		ids := lo.Map(configs, func(c UserConfig, _ int) string { return c.UserID })
		return UserConfig{}, fmt.Errorf("several steam users found (%s), choose one with --steam-user", strings.Join(ids, ", "))
	}
}

func (f *Finder) dirExists(p string) bool {
	ok, err := afero.DirExists(f.fs, p)
	return err == nil && ok
}
