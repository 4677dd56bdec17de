package manifest

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestLoadParsesBlocksAndPaths(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "elasticc.yml")
	content := `
output_dir: build
include_paths:
  - vendor/headers
  - /usr/local/include/elasticc
blocks:
  fir_filter:
    pipeline_depth: 3
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile() error: %v", err)
	}

	m, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	want := &Manifest{
		OutputDir:    "build",
		IncludePaths: []string{"vendor/headers", "/usr/local/include/elasticc"},
		Blocks: map[string]BlockOptions{
			"fir_filter": {PipelineDepth: 3},
		},
	}
	if diff := cmp.Diff(want, m); diff != "" {
		t.Errorf("Load() mismatch (-want +got):\n%s", diff)
	}
	if got := m.BlockOptions("unknown_block").PipelineDepth; got != 0 {
		t.Errorf("BlockOptions(unknown_block).PipelineDepth = %d, want 0", got)
	}
}

func TestLoadMissingFileReturnsError(t *testing.T) {
	if _, err := Load("/nonexistent/elasticc.yml"); err == nil {
		t.Errorf("Load() of a missing file should return an error so the caller can fall back to Default()")
	}
}

func TestDefaultOutputDir(t *testing.T) {
	if got := Default().OutputDir; got != "." {
		t.Errorf("Default().OutputDir = %q, want .", got)
	}
}
