// Package device describes the host a wallet is being detected on and
// matches it against the platforms a wallet module declares.
package device

import (
	"fmt"
	"strings"
)

type OSName string

const (
	WindowsPhone OSName = "Windows Phone"
	Windows      OSName = "Windows"
	MacOS        OSName = "macOS"
	IOS          OSName = "iOS"
	Android      OSName = "Android"
	Linux        OSName = "Linux"
	ChromeOS     OSName = "Chrome OS"
)

type BrowserName string

const (
	AndroidBrowser BrowserName = "Android Browser"
	Chrome         BrowserName = "Chrome"
	Chromium       BrowserName = "Chromium"
	Firefox        BrowserName = "Firefox"
	Edge           BrowserName = "Microsoft Edge"
	Opera          BrowserName = "Opera"
	Safari         BrowserName = "Safari"
)

type Type string

const (
	Desktop Type = "desktop"
	Mobile  Type = "mobile"
	Tablet  Type = "tablet"
)

type OS struct {
	Name    OSName `yaml:"name" json:"name"`
	Version string `yaml:"version" json:"version"`
}

type Browser struct {
	Name    BrowserName `yaml:"name" json:"name"`
	Version string      `yaml:"version" json:"version"`
}

type Device struct {
	OS      OS      `yaml:"os" json:"os"`
	Type    Type    `yaml:"type" json:"type"`
	Browser Browser `yaml:"browser" json:"browser"`
}

func (d Device) String() string {
	return fmt.Sprintf("%s %s / %s (%s)", d.OS.Name, d.OS.Version, d.Browser.Name, d.Type)
}

// Platform is an OS name, a browser name, a device type or "all".
type Platform string

const All Platform = "all"

// Matches reports whether d runs on p. Names compare case-insensitively.
func (d Device) Matches(p Platform) bool {
	switch {
	case p == All:
		return true
	case strings.EqualFold(string(p), string(d.OS.Name)):
		return true
	case strings.EqualFold(string(p), string(d.Browser.Name)):
		return true
	case strings.EqualFold(string(p), string(d.Type)):
		return true
	}
	return false
}

// MatchesAny reports whether d runs on at least one of platforms.
func (d Device) MatchesAny(platforms []Platform) bool {
	for _, p := range platforms {
		if d.Matches(p) {
			return true
		}
	}
	return false
}

// DesktopChrome is the device assumed when none is configured.
var DesktopChrome = Device{
	OS:      OS{Name: Linux},
	Type:    Desktop,
	Browser: Browser{Name: Chrome},
}
