package schema

import (
	"path/filepath"
	"strings"
)

// OriginKind says how a configuration payload was obtained.
type OriginKind string

const (
	OriginFile OriginKind = "file"
	OriginFS   OriginKind = "fs"
	OriginAPI  OriginKind = "api"
)

// Origin labels where a configuration payload came from. It selects the
// codec and appears in decode errors.
type Origin struct {
	Kind     OriginKind
	Location string
}

// FromFile labels a payload read from disk.
func FromFile(path string) Origin {
	return Origin{Kind: OriginFile, Location: filepath.Clean(path)}
}

// FromFS labels a payload read from an fs.FS.
func FromFS(name string) Origin {
	return Origin{Kind: OriginFS, Location: name}
}

// FromAPI labels a payload fetched from the order API.
func FromAPI(endpoint string) Origin {
	return Origin{Kind: OriginAPI, Location: strings.TrimSpace(endpoint)}
}

// Format is the serialisation of a configuration payload.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// Format infers the codec from the location. API payloads are always JSON;
// files and fs entries are YAML when named *.yaml or *.yml.
func (o Origin) Format() Format {
	if o.Kind == OriginAPI {
		return FormatJSON
	}
	switch strings.ToLower(filepath.Ext(o.Location)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatJSON
	}
}

func (o Origin) String() string {
	if o.Location == "" {
		return string(o.Kind)
	}
	return string(o.Kind) + " " + o.Location
}
