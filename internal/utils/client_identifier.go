package utils

import (
	"net"
	"net/http"
	"strings"
)

// ClientIdentifier is the value a token gets bound to: the caller's IP for
// web sessions, the device ID for mobile ones.
type ClientIdentifier struct {
	Type  ClientIDType
	Value string
}

// GetClientPlatform reads the "X-Platform" header and returns an enum.
// Defaults to "web" if empty or invalid.
func GetClientPlatform(r *http.Request) PlatformType {
	raw := strings.ToLower(r.Header.Get("X-Platform"))
	if raw == "" {
		return PlatformWeb
	}
	if p, err := ParsePlatform(raw); err == nil {
		return p
	}
	return PlatformWeb
}

// GetClientIdentifier returns either IP (web) or Device-ID (android/ios).
func GetClientIdentifier(r *http.Request, platform PlatformType) ClientIdentifier {
	if IsMobile(platform) {
		return ClientIdentifier{Type: ClientIDTypeDeviceID, Value: r.Header.Get("X-Device-ID")}
	}
	return ClientIdentifier{Type: ClientIDTypeIP, Value: detectIP(r)}
}

// detectIP walks the proxy headers before falling back to RemoteAddr.
func detectIP(r *http.Request) string {
	for _, ip := range strings.Split(r.Header.Get("X-Forwarded-For"), ",") {
		if ip = strings.TrimSpace(ip); isValidIP(ip) {
			return ip
		}
	}

	for _, header := range []string{"CF-Connecting-IP", "X-Real-IP"} {
		if ip := r.Header.Get(header); isValidIP(ip) {
			return ip
		}
	}

	if ip, _, err := net.SplitHostPort(r.RemoteAddr); err == nil && isValidIP(ip) {
		return ip
	}
	return ""
}

func isValidIP(ip string) bool {
	return net.ParseIP(ip) != nil
}
