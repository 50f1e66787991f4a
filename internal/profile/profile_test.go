package profile

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeProfile(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, ManifestName)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write profile: %v", err)
	}
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := writeProfile(t, t.TempDir(), "[report]\nwidth = 120\n")

	p, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if p.Report.Width != 120 {
		t.Errorf("width = %d, want 120", p.Report.Width)
	}
	def := Default()
	if p.Watch.RefreshMS != def.Watch.RefreshMS {
		t.Errorf("refresh = %d, want default %d", p.Watch.RefreshMS, def.Watch.RefreshMS)
	}
	if len(p.Trace.Functions) != len(def.Trace.Functions) {
		t.Errorf("functions = %v, want defaults", p.Trace.Functions)
	}
}

func TestLoadRejectsBadValues(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{name: "narrow report", content: "[report]\nwidth = 10\n"},
		{name: "fast refresh", content: "[watch]\nrefresh_ms = 1\n"},
		{name: "no workers", content: "[workload]\nworkers = 0\n"},
		{name: "fib too deep", content: "[workload]\nfib = 40\n"},
		{name: "negative nap", content: "[workload]\nnap_ms = -3\n"},
		{name: "empty functions", content: "[trace]\nfunctions = []\n"},
		{name: "broken toml", content: "[report\nwidth"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeProfile(t, t.TempDir(), tt.content)
			if _, err := Load(path); err == nil {
				t.Fatalf("profile accepted: %s", tt.content)
			}
		})
	}
}

func TestDefaultValidates(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Fatalf("default profile invalid: %v", err)
	}
}

func TestWatchRefresh(t *testing.T) {
	w := WatchConfig{RefreshMS: 250}
	if got := w.Refresh(); got != 250*time.Millisecond {
		t.Fatalf("Refresh = %v, want 250ms", got)
	}
}

func TestFindWalksUp(t *testing.T) {
	root := t.TempDir()
	writeProfile(t, root, "[report]\nwidth = 80\n")
	nested := filepath.Join(root, "a", "b")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	path, ok, err := Find(nested)
	if err != nil {
		t.Fatalf("Find: %v", err)
	}
	if !ok {
		t.Fatal("profile not found from nested dir")
	}
	if path != filepath.Join(root, ManifestName) {
		t.Fatalf("path = %s", path)
	}
}

func TestFindMissing(t *testing.T) {
	_, ok, err := Find(t.TempDir())
	if err != nil {
		t.Fatalf("Find: %v", err)
	}
	if ok {
		t.Fatal("found a profile in an empty tree")
	}
}

func TestTemplateRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ManifestName)

	if err := WriteTemplate(path); err != nil {
		t.Fatalf("WriteTemplate: %v", err)
	}
	p, err := Load(path)
	if err != nil {
		t.Fatalf("template does not load: %v", err)
	}
	if err := p.Validate(); err != nil {
		t.Fatalf("template invalid: %v", err)
	}

	if err := WriteTemplate(path); err == nil {
		t.Fatal("template overwrote an existing profile")
	}
}
