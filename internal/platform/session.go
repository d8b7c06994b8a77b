package platform

import "strings"

// shellFromEnv reads $SHELL and maps it to a display name.
func shellFromEnv(getenv func(string) string) (string, error) {
	shell := getenv("SHELL")
	if shell == "" {
		return "", unavailable(FactShell, "SHELL is not set")
	}
	return shellDisplayName(shell), nil
}

// desktopFromEnv reads the freedesktop session variables. XDG_CURRENT_DESKTOP
// may hold a colon-separated list; only the first entry is used.
func desktopFromEnv(getenv func(string) string) (string, error) {
	if de := getenv("XDG_CURRENT_DESKTOP"); de != "" {
		if first, _, _ := strings.Cut(de, ":"); first != "" {
			return first, nil
		}
	}
	if session := getenv("DESKTOP_SESSION"); session != "" {
		return session, nil
	}
	return "", unavailable(FactDesktopEnvironment, "no desktop session variables set")
}

// cleanCompositorName turns an executable name such as ".sway-wrapped"
// (as produced by Nix wrappers) into "sway".
func cleanCompositorName(exe string) string {
	name := strings.TrimPrefix(exe, ".")
	return strings.TrimSuffix(name, "-wrapped")
}
