package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ossyrian/steamaffinity/internal/affinity"
	"github.com/ossyrian/steamaffinity/internal/config"
	"github.com/ossyrian/steamaffinity/internal/launcher"
	"github.com/ossyrian/steamaffinity/internal/logging"
	"github.com/ossyrian/steamaffinity/internal/patcher"
)

var (
	cfgFile string
	cfg     *config.Config

	// appFs is the filesystem every command works on
	appFs = afero.NewOsFs()
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "steamaffinity",
	Short: "Pin a Steam game to a set of CPU cores through its launch options",
	Long: `steamaffinity writes a small launcher next to a game and points the game's
LaunchOptions in localconfig.vdf at it, so the game always starts with the
requested CPU affinity. Steam rewrites localconfig.vdf on exit: close Steam
before running this.`,
	SilenceUsage: true,
	RunE:         patch,
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "path to config file")

	// steam
	rootCmd.Flags().String("steam-path", "", "Steam installation directory (default: auto-detect)")
	rootCmd.Flags().String("steam-user", "", "numeric userdata id to patch when several users exist")
	rootCmd.Flags().StringP("app-id", "a", "", "Steam app id of the game (required)")

	// affinity
	rootCmd.Flags().StringP("cores", "c", "", `cores to run on, e.g. "2-7,10" (default: all but the skipped ones)`)
	rootCmd.Flags().Int("skip-cores", 0, "number of leading cores to leave free when --cores is not set")
	rootCmd.Flags().String("priority", "", "start priority (low, belownormal, normal, abovenormal, high, realtime)")
	rootCmd.Flags().String("launcher-name", launcher.DefaultName, "file name of the launcher written into the game directory")
	rootCmd.Flags().String("launch-args", "", "extra game arguments appended after %command%")

	// other opts
	rootCmd.PersistentFlags().Bool("backup", true, "keep a timestamped backup of every file that is rewritten")
	rootCmd.PersistentFlags().Bool("dry-run", false, "show the changes without writing anything")
	rootCmd.PersistentFlags().String("color", "auto", "colorize diffs (auto, always, never)")
	rootCmd.PersistentFlags().String("log-level", "info", "log level (trace, debug, info, warn, error)")
	rootCmd.PersistentFlags().String("log-output-dir", "", "directory to write log files (if set, logs are written to both stderr and file)")

	viper.BindPFlag("steam_path", rootCmd.Flags().Lookup("steam-path"))
	viper.BindPFlag("steam_user", rootCmd.Flags().Lookup("steam-user"))
	viper.BindPFlag("app_id", rootCmd.Flags().Lookup("app-id"))
	viper.BindPFlag("cores", rootCmd.Flags().Lookup("cores"))
	viper.BindPFlag("skip_cores", rootCmd.Flags().Lookup("skip-cores"))
	viper.BindPFlag("priority", rootCmd.Flags().Lookup("priority"))
	viper.BindPFlag("launcher_name", rootCmd.Flags().Lookup("launcher-name"))
	viper.BindPFlag("launch_args", rootCmd.Flags().Lookup("launch-args"))
	viper.BindPFlag("backup", rootCmd.PersistentFlags().Lookup("backup"))
	viper.BindPFlag("dry_run", rootCmd.PersistentFlags().Lookup("dry-run"))
	viper.BindPFlag("color", rootCmd.PersistentFlags().Lookup("color"))
	viper.BindPFlag("log_level", rootCmd.PersistentFlags().Lookup("log-level"))
	viper.BindPFlag("log_output_dir", rootCmd.PersistentFlags().Lookup("log-output-dir"))

	rootCmd.AddCommand(getCmd, setCmd, dumpCmd)
}

// initConfig reads in config file and environment variables if set
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "steamaffinity"))
		}
		viper.AddConfigPath("/etc/steamaffinity")
		viper.SetConfigName("config")
		viper.SetConfigType("toml")
	}

	viper.SetEnvPrefix("STEAMAFFINITY")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintf(os.Stderr, "Using config file: %s\n", viper.ConfigFileUsed())
	}
}

// loadConfig decodes the merged configuration and sets up logging. The
// returned function closes the log file.
func loadConfig() (func() error, error) {
	cfg = &config.Config{}
	if err := viper.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	closeLog, err := logging.Setup(cfg.LogLevel, cfg.LogOutputDir)
	if err != nil {
		return nil, fmt.Errorf("could not set up logging: %w", err)
	}
	return closeLog, nil
}

// patch runs the main steamaffinity command: write the launcher and
// point the app's LaunchOptions at it
func patch(cmd *cobra.Command, args []string) error {
	closeLog, err := loadConfig()
	if err != nil {
		return err
	}
	defer closeLog()

	slog.Info("patching launch options", "app_id", cfg.AppID, "dry_run", cfg.DryRun)

	res, err := patcher.New(appFs, cmd.OutOrStdout(), slog.Default()).Run(cfg)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	name := res.App.Name
	if name == "" {
		name = "app " + res.App.ID
	}
	switch {
	case res.DryRun:
		fmt.Fprintf(out, "dry run: %s would run on cores %s (mask 0x%s)\n", name, affinity.Format(res.Cores), affinity.Hex(res.Mask))
	case res.Changed:
		fmt.Fprintf(out, "%s now runs on cores %s (mask 0x%s)\n", name, affinity.Format(res.Cores), affinity.Hex(res.Mask))
	default:
		fmt.Fprintf(out, "%s already runs on cores %s (mask 0x%s)\n", name, affinity.Format(res.Cores), affinity.Hex(res.Mask))
	}
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
