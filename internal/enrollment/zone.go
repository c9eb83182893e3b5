package enrollment

import (
	"os"
	"path/filepath"
	"strings"
	"time"
	_ "time/tzdata"
)

// ResolveZone returns the location and IANA name used for the client's
// local time. An explicit name wins, then $TZ, then the /etc/localtime link;
// anything unresolvable falls back to UTC.
func ResolveZone(name string) (*time.Location, string) {
	for _, candidate := range []string{name, strings.TrimPrefix(os.Getenv("TZ"), ":"), localtimeLink()} {
		if candidate == "" {
			continue
		}
		if loc, err := time.LoadLocation(candidate); err == nil {
			return loc, candidate
		}
	}
	return time.UTC, "UTC"
}

func localtimeLink() string {
	target, err := filepath.EvalSymlinks("/etc/localtime")
	if err != nil {
		return ""
	}
	if _, after, ok := strings.Cut(target, "zoneinfo/"); ok {
		return after
	}
	return ""
}
