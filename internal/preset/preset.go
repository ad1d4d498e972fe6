// Package preset loads, validates, and ingests presets: the named seed term
// plus rewrite-rule set plus options that a SaturationDriver run starts
// from.
package preset

import (
	"encoding/json"

	"golang.org/x/mod/semver"

	egvis "github.com/zontasticality/egraph-vis"
	"github.com/zontasticality/egraph-vis/internal/pattern"
)

// DefaultSchemaVersion is stamped onto a preset that doesn't declare one.
const DefaultSchemaVersion = "v1.0.0"

// supportedSchemaMajor is the only schema_version major version this loader
// accepts.
const supportedSchemaMajor = "v1"

// Options configures one saturation run, applied explicitly rather than
// through package-level globals.
type Options struct {
	DefaultImpl  string `json:"default_impl"`
	IterationCap int    `json:"iteration_cap"`
}

// DefaultOptions returns the defaults applied when a preset omits options.
func DefaultOptions() Options {
	return Options{DefaultImpl: "deferred", IterationCap: 250}
}

func (o Options) withDefaults() Options {
	if o.DefaultImpl == "" {
		o.DefaultImpl = "deferred"
	}
	if o.IterationCap == 0 {
		o.IterationCap = 250
	}
	return o
}

// Preset is the fully-decoded, not-yet-validated preset document.
type Preset struct {
	ID             string          `json:"id"`
	Label          string          `json:"label"`
	Description    string          `json:"description"`
	SchemaVersion  string          `json:"schema_version,omitempty"`
	Root           pattern.Pattern `json:"root"`
	InitialLeaves  []string        `json:"initial_leaf_ids,omitempty"`
	Rewrites       []pattern.Rule  `json:"rewrites"`
	Options        Options         `json:"options"`
}

// Load decodes, schema-validates, procedurally validates, and defaults data
// into a ready-to-ingest Preset. It never mutates any EGraph; call Ingest
// separately once the caller has constructed one with the resolved strategy.
func Load(data []byte) (*Preset, error) {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, egvis.Wrap(egvis.ErrIO, "decode preset JSON", err)
	}
	if err := validateSchema(raw); err != nil {
		return nil, err
	}

	var p Preset
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, egvis.Wrap(egvis.ErrIO, "decode preset JSON", err)
	}
	p.Options = p.Options.withDefaults()
	if p.SchemaVersion == "" {
		p.SchemaVersion = DefaultSchemaVersion
	}

	if err := checkSchemaVersion(p.SchemaVersion); err != nil {
		return nil, err
	}
	if err := Validate(&p); err != nil {
		return nil, err
	}
	return &p, nil
}

func checkSchemaVersion(v string) error {
	version := v
	if !semver.IsValid(version) {
		return egvis.NewPresetValidation("schema_version %q is not a valid semantic version", v)
	}
	if semver.Major(version) != supportedSchemaMajor {
		return egvis.NewPresetValidation("schema_version %q has unsupported major version (want %s)", v, supportedSchemaMajor)
	}
	return nil
}
