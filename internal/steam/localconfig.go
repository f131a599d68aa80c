package steam

import (
	"github.com/ossyrian/steamaffinity/internal/vdf"
)

// steamKeyPath is where per-app settings live inside localconfig.vdf.
var steamKeyPath = []string{"UserLocalConfigStore", "Software", "Valve", "Steam"}

// appsKeys are the spellings Steam has used for the per-app object; newer
// clients write "apps", older ones "Apps".
var appsKeys = []string{"apps", "Apps"}

// LaunchOptionsPath returns the path of the LaunchOptions leaf of appID in
// a localconfig.vdf tree. The app's object must already exist, which it
// does once the game has been started through Steam. The LaunchOptions
// leaf itself may be absent.
func LaunchOptionsPath(root *vdf.Node, appID string) ([]string, error) {
	for _, apps := range appsKeys {
		p := append(append([]string(nil), steamKeyPath...), apps, appID)
		if n, ok := vdf.Get(root, p...); ok && n.IsObject() {
			return append(p, "LaunchOptions"), nil
		}
	}

	p := append(append([]string(nil), steamKeyPath...), appsKeys[0], appID, "LaunchOptions")
	missing := 0
	for i := range p[:len(p)-1] {
		if n, ok := vdf.Get(root, p[:i+1]...); !ok || !n.IsObject() {
			missing = i
			break
		}
	}
	return nil, &vdf.PathNotFoundError{Path: p, Missing: missing}
}
