package utils

import (
	"fmt"
	"strings"

	ua "github.com/mileusna/useragent"
)

// ParseUserAgent extracts browser, OS and device type from a User-Agent string
func ParseUserAgent(userAgent string) (browser, os, device string) {
	if userAgent == "" {
		return "Unknown Browser", "Unknown OS", "Unknown Device"
	}

	parsedUA := ua.Parse(userAgent)

	browser = parsedUA.Name
	if browser == "" {
		browser = "Unknown Browser"
	}

	os = parsedUA.OS
	if os == "" {
		os = "Unknown OS"
	}

	device = "Desktop"
	switch {
	case parsedUA.Mobile:
		device = "Mobile"
		if parsedUA.Device != "" {
			device = parsedUA.Device
		}
	case parsedUA.Tablet:
		device = "Tablet"
	case parsedUA.Bot:
		device = "Bot"
	}

	return strings.TrimSpace(browser), strings.TrimSpace(os), device
}

// DeviceLabel renders a User-Agent as "Browser on OS (device)" for attendance sessions.
func DeviceLabel(userAgent string) string {
	if strings.TrimSpace(userAgent) == "" {
		return ""
	}
	browser, os, device := ParseUserAgent(userAgent)
	return fmt.Sprintf("%s on %s (%s)", browser, os, device)
}
