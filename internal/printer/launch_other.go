//go:build !windows

package printer

// Non-Windows stations (development, tests) fall back to xdg-open.
var (
	openCommand = "xdg-open"
	openArgs    []string
)
