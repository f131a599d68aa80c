package config

import (
	"errors"
	"fmt"
	"strconv"
)

// Config holds app configuration
type Config struct {
	// SteamPath is the Steam installation root. If empty, it is looked up
	// in the registry (Windows) and then in the usual per-OS locations.
	SteamPath string `mapstructure:"steam_path"`

	// SteamUser is the numeric userdata directory to patch (the account's
	// SteamID3). Required only when more than one user has logged in.
	SteamUser string `mapstructure:"steam_user"`

	// AppID is the Steam application id of the game, e.g. "730"
	AppID string `mapstructure:"app_id"`

	// Cores lists the CPU cores to pin the game to ("2-7,10").
	// If empty, every core from SkipCores upwards is used.
	Cores     string `mapstructure:"cores"`
	SkipCores int    `mapstructure:"skip_cores"`

	// Priority is an optional start priority class (low, normal, high, ...)
	Priority string `mapstructure:"priority"`

	// LauncherName is the batch file written into the game's install directory
	LauncherName string `mapstructure:"launcher_name"`
	// LaunchArgs are appended after %command% in LaunchOptions
	LaunchArgs string `mapstructure:"launch_args"`

	Backup bool   `mapstructure:"backup"`
	Color  string `mapstructure:"color"`

	DryRun       bool   `mapstructure:"dry_run"`
	LogLevel     string `mapstructure:"log_level"`
	LogOutputDir string `mapstructure:"log_output_dir"`
}

// Validate checks the fields the patch command cannot run without
func (c *Config) Validate() error {
	var errs []error

	if c.AppID == "" {
		errs = append(errs, errors.New("app_id is required"))
	} else if _, err := strconv.ParseUint(c.AppID, 10, 32); err != nil {
		errs = append(errs, fmt.Errorf("app_id %q is not a numeric Steam app id", c.AppID))
	}

	if c.SteamUser != "" {
		if _, err := strconv.ParseUint(c.SteamUser, 10, 32); err != nil {
			errs = append(errs, fmt.Errorf("steam_user %q is not a numeric account id", c.SteamUser))
		}
	}

	if c.SkipCores < 0 {
		errs = append(errs, fmt.Errorf("skip_cores must not be negative, got %d", c.SkipCores))
	}

	if c.LauncherName == "" {
		errs = append(errs, errors.New("launcher_name must not be empty"))
	}

	switch c.Color {
	case "", "auto", "always", "never":
	default:
		errs = append(errs, fmt.Errorf("color must be auto, always or never, got %q", c.Color))
	}

	return errors.Join(errs...)
}
