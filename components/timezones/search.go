package timezones

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"
)

// match ranks, best first.
const (
	rankCity = iota
	rankCityPrefix
	rankZonePrefix
	rankContains
)

var offsetQuery = regexp.MustCompile(`^(?:utc|gmt)?([+-])(\d{1,2})(?::?(\d{2}))?$`)

// Search returns up to limit zones matching query. Customers type city
// names, so spaces match underscores and a zone whose city equals the query
// ranks first, then city prefixes, zone prefixes, and substrings. Queries
// such as "+5:30" or "UTC-4" match by current offset instead. An empty query
// lists zones with opts.Preferred first.
func Search(zones []string, query string, limit int, opts Options) []string {
	limit = opts.limit(limit)
	q := strings.ToLower(strings.Join(strings.Fields(query), "_"))
	if q == "" {
		return top(zones, opts.Preferred, limit)
	}
	if prefix, ok := offsetPrefix(q); ok {
		return byOffset(zones, prefix, limit, opts.Now())
	}

	type ranked struct {
		zone string
		rank int
	}
	var matches []ranked
	for _, zone := range zones {
		lower := strings.ToLower(zone)
		city := lower[strings.LastIndex(lower, "/")+1:]
		switch {
		case city == q:
			matches = append(matches, ranked{zone, rankCity})
		case strings.HasPrefix(city, q):
			matches = append(matches, ranked{zone, rankCityPrefix})
		case strings.HasPrefix(lower, q):
			matches = append(matches, ranked{zone, rankZonePrefix})
		case strings.Contains(lower, q):
			matches = append(matches, ranked{zone, rankContains})
		}
	}
	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].rank != matches[j].rank {
			return matches[i].rank < matches[j].rank
		}
		return matches[i].zone < matches[j].zone
	})

	out := make([]string, 0, min(limit, len(matches)))
	for _, m := range matches {
		if len(out) == limit {
			break
		}
		out = append(out, m.zone)
	}
	return out
}

// SearchOptions labels Search results with their current offsets.
func SearchOptions(zones []string, query string, limit int, opts Options) []Option {
	results := Search(zones, query, limit, opts)
	now := opts.Now()
	out := make([]Option, 0, len(results))
	for _, zone := range results {
		out = append(out, OptionFor(zone, now))
	}
	return out
}

// offsetPrefix turns "+5", "utc-04" or "gmt+5:30" into the lowercase label
// prefix it should match, e.g. "utc+05" or "utc+05:30".
func offsetPrefix(q string) (string, bool) {
	m := offsetQuery.FindStringSubmatch(q)
	if m == nil {
		return "", false
	}
	hours, err := strconv.Atoi(m[2])
	if err != nil || hours > 14 {
		return "", false
	}
	prefix := fmt.Sprintf("utc%s%02d", m[1], hours)
	if m[3] != "" {
		prefix += ":" + m[3]
	}
	return prefix, true
}

func byOffset(zones []string, prefix string, limit int, now time.Time) []string {
	var out []string
	for _, zone := range zones {
		if len(out) == limit {
			break
		}
		offset, err := Offset(zone, now)
		if err != nil {
			continue
		}
		if strings.HasPrefix(strings.ToLower(offset), prefix) {
			out = append(out, zone)
		}
	}
	return out
}

func top(zones []string, preferred string, limit int) []string {
	out := make([]string, 0, min(limit, len(zones)))
	for _, zone := range zones {
		if zone == preferred {
			out = append(out, zone)
			break
		}
	}
	for _, zone := range zones {
		if len(out) >= limit {
			break
		}
		if zone != preferred {
			out = append(out, zone)
		}
	}
	return out
}
