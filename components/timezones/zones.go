package timezones

import (
	"bufio"
	"embed"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"
	_ "time/tzdata"
)

//go:embed data/iana_timezones.txt
var dataFS embed.FS

const defaultListPath = "data/iana_timezones.txt"

// Fallback is used when no local zone can be determined.
const Fallback = "UTC"

var (
	defaultOnce  sync.Once
	defaultZones []string
	defaultErr   error
)

// DefaultZones returns a sorted copy of the embedded zone list.
func DefaultZones() ([]string, error) {
	defaultOnce.Do(func() {
		f, err := dataFS.Open(defaultListPath)
		if err != nil {
			defaultErr = err
			return
		}
		defer func() { _ = f.Close() }()

		defaultZones, defaultErr = LoadZones(f)
	})

	if defaultErr != nil {
		return nil, defaultErr
	}
	return append([]string{}, defaultZones...), nil
}

// LoadZones reads one zone per line, skipping blanks, comments, and repeats.
func LoadZones(r io.Reader) ([]string, error) {
	if r == nil {
		return nil, fmt.Errorf("timezones: missing reader")
	}

	scanner := bufio.NewScanner(r)
	zones := make([]string, 0, 512)
	seen := map[string]struct{}{}
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if _, ok := seen[line]; ok {
			continue
		}
		seen[line] = struct{}{}
		zones = append(zones, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	sort.Strings(zones)
	return zones, nil
}

// Valid reports whether zone is a loadable IANA identifier. "Local" and the
// empty string are rejected because they do not name a zone.
func Valid(zone string) bool {
	zone = strings.TrimSpace(zone)
	if zone == "" || zone == "Local" {
		return false
	}
	_, err := time.LoadLocation(zone)
	return err == nil
}

// Load resolves zone into a location.
func Load(zone string) (*time.Location, error) {
	if !Valid(zone) {
		return nil, fmt.Errorf("timezones: unknown zone %q", zone)
	}
	return time.LoadLocation(strings.TrimSpace(zone))
}

var localtimePath = "/etc/localtime"

// Detect returns the machine's IANA zone name. It checks TZ, then the
// /etc/localtime symlink target, then time.Local, and falls back to UTC.
func Detect() string {
	if tz := strings.TrimPrefix(strings.TrimSpace(os.Getenv("TZ")), ":"); Valid(tz) {
		return tz
	}
	if target, err := filepath.EvalSymlinks(localtimePath); err == nil {
		if _, zone, ok := strings.Cut(filepath.ToSlash(target), "zoneinfo/"); ok && Valid(zone) {
			return zone
		}
	}
	if name := time.Local.String(); Valid(name) {
		return name
	}
	return Fallback
}
