package prefs

import (
	"os"
	"path/filepath"
	"testing"
)

func writePrefs(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
}

func TestLoad_DefaultPathUnderHome(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	p, err := Load("")
	if err != nil || p != Defaults() {
		t.Fatalf("Load() with no file = %+v, %v; want defaults", p, err)
	}

	writePrefs(t, filepath.Join(home, ".config", "shelf", "prefs.toml"), "theme = \"Slate\"\n")
	p, err = Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if p.Theme != "Slate" {
		t.Fatalf("Theme = %q, want Slate", p.Theme)
	}
}

func TestLoad_Files(t *testing.T) {
	tests := []struct {
		name      string
		content   string
		wantTheme string
		wantErr   bool
	}{
		{"theme set", "theme = \"Kanagawa\"\n", "Kanagawa", false},
		{"blank theme", "theme = \"  \"\n", defaultTheme, false},
		{"unknown keys ignored", "theme = \"Slate\"\nwidth = 3\n", "Slate", false},
		{"malformed", "not valid toml {{{\n", defaultTheme, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "prefs.toml")
			writePrefs(t, path, tt.content)

			p, err := Load(path)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Load error = %v, wantErr %v", err, tt.wantErr)
			}
			if p.Theme != tt.wantTheme {
				t.Fatalf("Theme = %q, want %q", p.Theme, tt.wantTheme)
			}
		})
	}
}

func TestSave_CreatesDirsAndReplaces(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "prefs.toml")

	for _, theme := range []string{"Slate", "Kanagawa"} {
		if err := Save(path, Prefs{Theme: theme}); err != nil {
			t.Fatalf("Save(%s): %v", theme, err)
		}
		p, err := Load(path)
		if err != nil {
			t.Fatalf("Load: %v", err)
		}
		if p.Theme != theme {
			t.Fatalf("Theme = %q, want %q", p.Theme, theme)
		}
	}

	entries, err := os.ReadDir(filepath.Dir(path))
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("prefs dir has %d entries, want only prefs.toml", len(entries))
	}
}
