// Package manifest loads the optional elasticc.yml project file: default
// output directory, extra include paths, and per-block synthesis hints
// (pipeline depth), read once at startup. cmd/elasticc uses the output
// directory; the include paths are parsed but used by nothing, and a
// block's pipeline depth only appears in a debug log line.
package manifest

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// BlockOptions carries per-block synthesis hints keyed by hardware block
// name in Manifest.Blocks.
type BlockOptions struct {
	// PipelineDepth is a per-block register-stage hint. cmd/elasticc only
	// reports it in a debug log line; register placement is left to the
	// evaluator whatever its value.
	PipelineDepth int `yaml:"pipeline_depth"`
}

// Manifest is the parsed elasticc.yml project file.
type Manifest struct {
	OutputDir    string                  `yaml:"output_dir"`
	IncludePaths []string                `yaml:"include_paths"`
	Blocks       map[string]BlockOptions `yaml:"blocks"`
}

// Default returns the manifest used when no elasticc.yml is present.
func Default() *Manifest {
	return &Manifest{OutputDir: "."}
}

// Load reads and parses path. A missing file is not an error: callers
// should fall back to Default() for that case, mirroring how --top/--output
// CLI flags always take precedence over the manifest regardless of whether
// one was found.
func Load(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	m := Default()
	if err := yaml.Unmarshal(data, m); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	if m.OutputDir == "" {
		m.OutputDir = "."
	}
	return m, nil
}

// BlockOptions returns the options recorded for name, or the zero value
// (no pipeline hint) when the manifest declares nothing for it.
func (m *Manifest) BlockOptions(name string) BlockOptions {
	if m == nil || m.Blocks == nil {
		return BlockOptions{}
	}
	return m.Blocks[name]
}
