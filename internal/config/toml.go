package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

func isTOML(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".toml")
}

// decodeTOML decodes a TOML config file. Unknown keys are rejected, as with
// YAML. TOML files cannot include other files.
func decodeTOML(data []byte, file string) (RawConfig, map[string]Source, error) {
	var raw RawConfig
	md, err := toml.Decode(string(data), &raw)
	if err != nil {
		return RawConfig{}, nil, fmt.Errorf("%s: failed to parse toml: %w", file, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, 0, len(undecoded))
		for _, k := range undecoded {
			keys = append(keys, k.String())
		}
		return RawConfig{}, nil, fmt.Errorf("%s: unknown keys: %s", file, strings.Join(keys, ", "))
	}

	sources := make(map[string]Source)
	for _, k := range md.Keys() {
		sources[k.String()] = Source{Kind: SourceFile, File: file}
	}
	return raw, sources, nil
}
