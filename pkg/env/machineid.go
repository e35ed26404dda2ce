// Package env provides host environment helpers.
package env

import (
	"os"

	"github.com/denisbrodbeck/machineid"
	"github.com/golang/glog"
)

// appID scopes the protected machine ID to this application.
const appID = "minefield"

// DeviceID derives a stable ID for this machine. The raw machine ID is
// never exposed; it's hashed with the application ID. Falls back to the
// hostname when the machine ID is unavailable.
func DeviceID() string {
	id, err := machineid.ProtectedID(appID)
	if err == nil {
		return id[:12]
	}
	glog.Warningf("machine id unavailable: %v", err)
	if host, err := os.Hostname(); err == nil && host != "" {
		return host
	}
	return "unknown"
}
