package fetcher

import (
	"os"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// DataUnit is one downloadable file in a fetch manifest.
type DataUnit struct {
	Name    string `yaml:"name"`
	URL     string `yaml:"url"`
	Chain   string `yaml:"chain,omitempty"`
	Species string `yaml:"species,omitempty"`
}

// Manifest lists the OAS data units of one study selection, the way the
// repository's bulk-download page emits them.
type Manifest struct {
	Units []DataUnit `yaml:"units"`
}

// LoadManifest reads and validates a YAML fetch manifest.
func LoadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "manifest: read %s", path)
	}

	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, eris.Wrapf(err, "manifest: parse %s", path)
	}

	if len(m.Units) == 0 {
		return nil, eris.Errorf("manifest: %s lists no units", path)
	}
	seen := make(map[string]struct{}, len(m.Units))
	for i, u := range m.Units {
		if u.Name == "" {
			return nil, eris.Errorf("manifest: unit %d has no name", i)
		}
		if u.URL == "" {
			return nil, eris.Errorf("manifest: unit %q has no url", u.Name)
		}
		if _, dup := seen[u.Name]; dup {
			return nil, eris.Errorf("manifest: duplicate unit name %q", u.Name)
		}
		seen[u.Name] = struct{}{}
	}

	return &m, nil
}
