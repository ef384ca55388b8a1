// Package device derives display metadata from client user agents for audit
// logging of login events.
package device

import (
	"strings"

	"github.com/mssola/useragent"
)

// DisplayName renders a human-readable device name, e.g. "Chrome on Mac OS X".
// Unknown or empty user agents yield "Unknown device".
func DisplayName(userAgentString string) string {
	if strings.TrimSpace(userAgentString) == "" {
		return "Unknown device"
	}

	ua := useragent.New(userAgentString)
	browser, _ := ua.Browser()
	browser = strings.TrimSpace(browser)
	os := strings.TrimSpace(ua.OS())

	switch {
	case browser != "" && os != "":
		return browser + " on " + os
	case browser != "":
		return browser
	case os != "":
		return os
	default:
		return "Unknown device"
	}
}

// IsMobile reports whether the user agent identifies a mobile client.
func IsMobile(userAgentString string) bool {
	if userAgentString == "" {
		return false
	}
	return useragent.New(userAgentString).Mobile()
}
