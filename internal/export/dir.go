package export

import (
	"os"
	"path/filepath"
	"strings"
)

// DesktopCandidates lists the folders tried for user-facing files, in priority order.
func DesktopCandidates(getenv func(string) string, home string) []string {
	var out []string
	for _, v := range []string{"OneDrive", "OneDriveConsumer", "OneDriveCommercial"} {
		if base := strings.TrimSpace(getenv(v)); base != "" {
			out = append(out, filepath.Join(base, "Desktop"))
		}
	}
	profile := strings.TrimSpace(getenv("USERPROFILE"))
	if profile != "" {
		out = append(out, filepath.Join(profile, "Desktop"))
	}
	if home != "" {
		out = append(out, filepath.Join(home, "Desktop"))
	}
	if profile != "" {
		out = append(out, filepath.Join(profile, "Área de Trabalho"))
	}
	if home != "" {
		out = append(out, filepath.Join(home, "Área de Trabalho"))
	}
	return out
}

// ResolveDir picks the output folder: the override when set, else the first existing desktop
// folder, else the working directory. The flag reports whether a desktop folder was found.
func ResolveDir(override string) (string, bool) {
	if override = strings.TrimSpace(override); override != "" {
		return override, true
	}
	home, _ := os.UserHomeDir()
	for _, candidate := range DesktopCandidates(os.Getenv, home) {
		if info, err := os.Stat(candidate); err == nil && info.IsDir() {
			return candidate, true
		}
	}
	wd, err := os.Getwd()
	if err != nil {
		return ".", false
	}
	return wd, false
}
