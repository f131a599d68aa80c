package main

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/ossyrian/steamaffinity/internal/diffview"
	"github.com/ossyrian/steamaffinity/internal/dump"
	"github.com/ossyrian/steamaffinity/internal/store"
	"github.com/ossyrian/steamaffinity/internal/vdf"
)

var getCmd = &cobra.Command{
	Use:   "get <file> <key>...",
	Short: "Print a value from a VDF file",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		closeLog, err := loadConfig()
		if err != nil {
			return err
		}
		defer closeLog()

		value, err := getValue(appFs, args[0], args[1:])
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), value)
		return nil
	},
}

var setCmd = &cobra.Command{
	Use:   "set <file> <key>... <value>",
	Short: "Set a value in a VDF file, creating the last key if needed",
	Args:  cobra.MinimumNArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		closeLog, err := loadConfig()
		if err != nil {
			return err
		}
		defer closeLog()

		file, path, value := args[0], args[1:len(args)-1], args[len(args)-1]
		out := cmd.OutOrStdout()
		return setValue(appFs, out, file, path, value, setOptions{
			Backup: cfg.Backup,
			DryRun: cfg.DryRun,
			Color:  diffview.ColorEnabled(cfg.Color, out),
		})
	},
}

var dumpCmd = &cobra.Command{
	Use:   "dump <file> [key...]",
	Short: "Print a VDF file, or the object at a key path, as YAML or JSON",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		closeLog, err := loadConfig()
		if err != nil {
			return err
		}
		defer closeLog()

		asJSON, err := cmd.Flags().GetBool("json")
		if err != nil {
			return err
		}
		data, err := dumpTree(appFs, args[0], args[1:], asJSON)
		if err != nil {
			return err
		}
		_, err = cmd.OutOrStdout().Write(data)
		return err
	},
}

func init() {
	dumpCmd.Flags().Bool("json", false, "print JSON instead of YAML")
}

func getValue(fsys afero.Fs, file string, path []string) (string, error) {
	doc, err := store.Load(fsys, file, slog.Default())
	if err != nil {
		return "", err
	}
	n, err := lookup(doc.Root, path)
	if err != nil {
		return "", err
	}
	if !n.IsLeaf() {
		return "", fmt.Errorf("%s is an object, use dump to print it", strings.Join(path, "/"))
	}
	return n.Value(), nil
}

type setOptions struct {
	Backup bool
	DryRun bool
	Color  bool
}

func setValue(fsys afero.Fs, out io.Writer, file string, path []string, value string, opts setOptions) error {
	doc, err := store.Load(fsys, file, slog.Default())
	if err != nil {
		return err
	}
	if err := vdf.SetLeaf(doc.Root, path, value); err != nil {
		return err
	}

	if _, err := diffview.Render(out, doc.Baseline(), doc.Render(), diffview.Options{
		FromName: file,
		ToName:   file + " (patched)",
		Color:    opts.Color,
		Context:  3,
	}); err != nil {
		return err
	}

	if opts.DryRun {
		slog.Info("dry run, nothing written", "path", file)
		return nil
	}
	if !doc.Changed() {
		slog.Info("value already set", "path", file, "key", strings.Join(path, "/"))
		return nil
	}

	res, err := store.Save(fsys, doc, store.SaveOptions{Backup: opts.Backup})
	if err != nil {
		return err
	}
	slog.Info("updated file", "path", res.Path, "backup", res.BackupPath, "bytes", res.Bytes)
	return nil
}

func dumpTree(fsys afero.Fs, file string, path []string, asJSON bool) ([]byte, error) {
	doc, err := store.Load(fsys, file, slog.Default())
	if err != nil {
		return nil, err
	}
	n, err := lookup(doc.Root, path)
	if err != nil {
		return nil, err
	}
	if asJSON {
		return dump.JSON(n)
	}
	return dump.YAML(n)
}

// lookup is vdf.Get with a PathNotFoundError naming the first missing key.
func lookup(root *vdf.Node, path []string) (*vdf.Node, error) {
	for i := range path {
		if _, ok := vdf.Get(root, path[:i+1]...); !ok {
			return nil, &vdf.PathNotFoundError{Path: path, Missing: i}
		}
	}
	n, _ := vdf.Get(root, path...)
	return n, nil
}
