//go:build windows

package steam

import (
	"golang.org/x/sys/windows/registry"
)

// registrySteamPath reads the Steam client's install path from
// HKCU\Software\Valve\Steam, falling back to the machine-wide key.
func registrySteamPath() (string, bool) {
	lookups := []struct {
		root  registry.Key
		path  string
		value string
	}{
		{registry.CURRENT_USER, `Software\Valve\Steam`, "SteamPath"},
		{registry.LOCAL_MACHINE, `SOFTWARE\WOW6432Node\Valve\Steam`, "InstallPath"},
		{registry.LOCAL_MACHINE, `SOFTWARE\Valve\Steam`, "InstallPath"},
	}

	for _, l := range lookups {
		k, err := registry.OpenKey(l.root, l.path, registry.QUERY_VALUE)
		if err != nil {
			continue
		}
		v, _, err := k.GetStringValue(l.value)
		k.Close()
		if err == nil && v != "" {
			return v, true
		}
	}
	return "", false
}
