package main

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/spf13/afero"

	"github.com/ossyrian/steamaffinity/internal/vdf"
)

const gameinfo = "\"GameInfo\"\n{\n\t\"game\"\t\t\"Example\"\n\t\"FileSystem\"\n\t{\n\t\t\"SteamAppId\"\t\t\"730\"\n\t}\n}"

func memFile(t *testing.T) afero.Fs {
	t.Helper()
	fsys := afero.NewMemMapFs()
	if err := afero.WriteFile(fsys, "/game/gameinfo.vdf", []byte(gameinfo), 0o644); err != nil {
		t.Fatal(err)
	}
	return fsys
}

func TestGetValue(t *testing.T) {
	fsys := memFile(t)

	got, err := getValue(fsys, "/game/gameinfo.vdf", []string{"GameInfo", "FileSystem", "SteamAppId"})
	if err != nil {
		t.Fatalf("getValue() failed: %v", err)
	}
	if got != "730" {
		t.Errorf("getValue() = %q, want %q", got, "730")
	}

	if _, err := getValue(fsys, "/game/gameinfo.vdf", []string{"GameInfo", "FileSystem"}); err == nil {
		t.Error("getValue() on an object succeeded")
	}

	_, err = getValue(fsys, "/game/gameinfo.vdf", []string{"GameInfo", "Nope", "x"})
	var pnf *vdf.PathNotFoundError
	if !errors.As(err, &pnf) || pnf.Missing != 1 {
		t.Errorf("getValue() error = %v, want PathNotFoundError at index 1", err)
	}
}

func TestSetValue(t *testing.T) {
	fsys := memFile(t)
	var out bytes.Buffer

	err := setValue(fsys, &out, "/game/gameinfo.vdf", []string{"GameInfo", "game"}, "Other", setOptions{Backup: true})
	if err != nil {
		t.Fatalf("setValue() failed: %v", err)
	}

	data, _ := afero.ReadFile(fsys, "/game/gameinfo.vdf")
	want := strings.Replace(gameinfo, `"Example"`, `"Other"`, 1)
	if string(data) != want {
		t.Errorf("file = %q, want %q", data, want)
	}
	backups, _ := afero.Glob(fsys, "/game/gameinfo.vdf.*.bak")
	if len(backups) != 1 {
		t.Errorf("backups = %v, want one", backups)
	}
	if !strings.Contains(out.String(), "+\t\"game\"\t\t\"Other\"") {
		t.Errorf("diff output missing new line:\n%s", out.String())
	}
}

func TestSetValue_SameValueKeepsFile(t *testing.T) {
	fsys := afero.NewMemMapFs()
	crlf := strings.ReplaceAll(gameinfo, "\n", "\r\n") + "\r\n"
	if err := afero.WriteFile(fsys, "/game/gameinfo.vdf", []byte(crlf), 0o644); err != nil {
		t.Fatal(err)
	}

	var out bytes.Buffer
	err := setValue(fsys, &out, "/game/gameinfo.vdf", []string{"GameInfo", "game"}, "Example", setOptions{Backup: true})
	if err != nil {
		t.Fatalf("setValue() failed: %v", err)
	}
	if out.Len() != 0 {
		t.Errorf("setValue() printed a diff:\n%s", out.String())
	}
	data, _ := afero.ReadFile(fsys, "/game/gameinfo.vdf")
	if string(data) != crlf {
		t.Error("setValue() rewrote an unchanged file")
	}
	backups, _ := afero.Glob(fsys, "/game/gameinfo.vdf.*.bak")
	if len(backups) != 0 {
		t.Errorf("setValue() wrote backups %v", backups)
	}
}

func TestSetValue_DryRun(t *testing.T) {
	fsys := memFile(t)

	err := setValue(fsys, io.Discard, "/game/gameinfo.vdf", []string{"GameInfo", "new"}, "1", setOptions{DryRun: true, Backup: true})
	if err != nil {
		t.Fatalf("setValue() failed: %v", err)
	}
	data, _ := afero.ReadFile(fsys, "/game/gameinfo.vdf")
	if string(data) != gameinfo {
		t.Error("dry run modified the file")
	}
}

func TestSetValue_ObjectTarget(t *testing.T) {
	fsys := memFile(t)

	err := setValue(fsys, io.Discard, "/game/gameinfo.vdf", []string{"GameInfo", "FileSystem"}, "x", setOptions{})
	if !errors.Is(err, vdf.ErrDuplicateKey) {
		t.Errorf("setValue() error = %v, want ErrDuplicateKey", err)
	}
}

func TestDumpTree(t *testing.T) {
	fsys := memFile(t)

	data, err := dumpTree(fsys, "/game/gameinfo.vdf", []string{"GameInfo", "FileSystem"}, false)
	if err != nil {
		t.Fatalf("dumpTree() failed: %v", err)
	}
	if !strings.Contains(string(data), "SteamAppId") || strings.Contains(string(data), "game") {
		t.Errorf("dumpTree() = %q, want only the FileSystem object", data)
	}

	data, err = dumpTree(fsys, "/game/gameinfo.vdf", nil, true)
	if err != nil {
		t.Fatalf("dumpTree(json) failed: %v", err)
	}
	if !strings.HasPrefix(strings.TrimSpace(string(data)), "{") {
		t.Errorf("dumpTree(json) = %q, want a JSON object", data)
	}
}
