package tui

import (
	"os/exec"
	"runtime"
)

// browserCommand builds the platform command that opens url.
func browserCommand(goos, url string) *exec.Cmd {
	switch goos {
	case "windows":
		return exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	case "darwin":
		return exec.Command("open", url)
	}
	return exec.Command("xdg-open", url)
}

func openBrowser(url string) error {
	return browserCommand(runtime.GOOS, url).Start()
}
