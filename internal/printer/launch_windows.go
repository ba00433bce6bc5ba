//go:build windows

package printer

// BarTender runs on the Windows print station; "start" opens the template
// with whatever the .btw extension is associated to.
var (
	openCommand = "cmd"
	openArgs    = []string{"/C", "start", ""}
)
