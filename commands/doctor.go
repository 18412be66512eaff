package commands

import (
	"os"
	"os/exec"
	"runtime"
	"strings"

	"github.com/mobile-next/autotype/platform"
)

type DoctorInfo struct {
	AutotypeVersion   string   `json:"autotype_version"`
	OS                string   `json:"os"`
	OSVersion         string   `json:"os_version"`
	Platform          string   `json:"platform"`
	PlatformAvailable bool     `json:"platform_available"`
	Platforms         []string `json:"platforms"`
	Display           string   `json:"display,omitempty"`
	SessionType       string   `json:"session_type,omitempty"`
	Database          string   `json:"database"`
	DatabaseEntries   int      `json:"database_entries"`
	GlobalShortcut    string   `json:"global_shortcut,omitempty"`
	AskBeforeTyping   bool     `json:"ask_before_typing"`
	EntryTitleMatch   bool     `json:"entry_title_match"`
}

func getDisplay() string {
	if runtime.GOOS != "linux" {
		return ""
	}
	if display := os.Getenv("WAYLAND_DISPLAY"); display != "" {
		return display
	}
	return os.Getenv("DISPLAY")
}

func getOSVersion() string {
	switch runtime.GOOS {
	case "darwin":
		cmd := exec.Command("sw_vers", "-productVersion")
		output, err := cmd.CombinedOutput()
		if err != nil {
			return ""
		}
		return strings.TrimSpace(string(output))
	case "windows":
		cmd := exec.Command("cmd", "/c", "ver")
		output, err := cmd.CombinedOutput()
		if err != nil {
			return ""
		}
		return strings.TrimSpace(string(output))
	case "linux":
		// try reading /etc/os-release
		data, err := os.ReadFile("/etc/os-release")
		if err != nil {
			return ""
		}
		lines := strings.Split(string(data), "\n")
		for _, line := range lines {
			if strings.HasPrefix(line, "PRETTY_NAME=") {
				return strings.Trim(strings.TrimPrefix(line, "PRETTY_NAME="), "\"")
			}
		}
		return ""
	default:
		return ""
	}
}

// DoctorCommand performs system diagnostics and returns information about the environment
func (s *Service) DoctorCommand(version string) *CommandResponse {
	info := DoctorInfo{
		AutotypeVersion:   version,
		OS:                runtime.GOOS,
		OSVersion:         getOSVersion(),
		Platform:          s.config.Platform,
		PlatformAvailable: s.engine.Available(),
		Platforms:         platform.Names(),
		Display:           getDisplay(),
		SessionType:       os.Getenv("XDG_SESSION_TYPE"),
		Database:          s.config.Database,
		AskBeforeTyping:   s.config.AskBeforeTyping,
		EntryTitleMatch:   s.config.EntryTitleMatch,
	}

	if db := s.Database(); db != nil {
		info.DatabaseEntries = len(db.AllEntries())
	}

	if shortcut := s.engine.GlobalShortcut(); !shortcut.IsZero() {
		info.GlobalShortcut = shortcut.String()
	}

	return NewSuccessResponse(info)
}
