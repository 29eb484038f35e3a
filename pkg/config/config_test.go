package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefaultOptions(t *testing.T) {
	opts := DefaultOptions()

	tests := []struct {
		name     string
		got      interface{}
		expected interface{}
	}{
		{"AndorDetection", opts.AndorDetection, true},
		{"StructureIfs", opts.StructureIfs, true},
		{"Debug", opts.Debug, false},
		{"IndentWidth", opts.IndentWidth, 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.expected {
				t.Errorf("DefaultOptions().%s = %v, want %v", tt.name, tt.got, tt.expected)
			}
		})
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		width   int
		wantErr bool
	}{
		{"default", 4, false},
		{"tabs of two", 2, false},
		{"zero", 0, true},
		{"too wide", 17, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := DefaultOptions()
			o.IndentWidth = tt.width
			if err := o.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "ralph-dc.yaml")
	content := "andor_detection: false\ndebug: true\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	opts, err := LoadFromFile(path)
	if err != nil {
		t.Fatalf("LoadFromFile() error: %v", err)
	}
	if opts.AndorDetection {
		t.Error("andor_detection should be false")
	}
	if !opts.Debug {
		t.Error("debug should be true")
	}
	if !opts.StructureIfs || opts.IndentWidth != 4 {
		t.Error("keys missing from the file should keep their defaults")
	}
}

func TestLoadFromFileErrors(t *testing.T) {
	if _, err := LoadFromFile(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}

	path := filepath.Join(t.TempDir(), "bad.yaml")
	os.WriteFile(path, []byte("indent_width: [1, 2"), 0644)
	if _, err := LoadFromFile(path); err == nil {
		t.Error("expected parse error")
	}

	path = filepath.Join(t.TempDir(), "invalid.yaml")
	os.WriteFile(path, []byte("indent_width: 0\n"), 0644)
	if _, err := LoadFromFile(path); err == nil {
		t.Error("expected validation error")
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("RALPH_DC_STRUCTURE_IFS", "false")
	t.Setenv("RALPH_DC_INDENT_WIDTH", "2")
	t.Setenv("RALPH_DC_DEBUG", "1")

	opts, err := Load("")
	if err != nil {
		t.Fatal(err)
	}
	if opts.StructureIfs {
		t.Error("RALPH_DC_STRUCTURE_IFS=false was ignored")
	}
	if opts.IndentWidth != 2 {
		t.Errorf("IndentWidth = %d, want 2", opts.IndentWidth)
	}
	if !opts.Debug {
		t.Error("RALPH_DC_DEBUG=1 was ignored")
	}
}

func TestEnvOverridesRejectMalformed(t *testing.T) {
	tests := []struct {
		key, value string
	}{
		{"RALPH_DC_DEBUG", "maybe"},
		{"RALPH_DC_ANDOR_DETECTION", "yes please"},
		{"RALPH_DC_STRUCTURE_IFS", "off"},
		{"RALPH_DC_INDENT_WIDTH", "abc"},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)

			_, err := Load("")
			if !errors.Is(err, ErrBadEnvValue) {
				t.Fatalf("Load() error = %v, want ErrBadEnvValue", err)
			}
			if !strings.Contains(err.Error(), tt.key) {
				t.Errorf("error %q does not name %s", err, tt.key)
			}

			path := filepath.Join(t.TempDir(), "opts.yaml")
			if err := os.WriteFile(path, []byte("debug: false\n"), 0644); err != nil {
				t.Fatal(err)
			}
			if _, err := LoadFromFile(path); !errors.Is(err, ErrBadEnvValue) {
				t.Errorf("LoadFromFile() error = %v, want ErrBadEnvValue", err)
			}
		})
	}
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "ralph-dc.yaml")
	o := DefaultOptions()
	o.AndorDetection = false
	o.IndentWidth = 8
	if err := o.Save(path); err != nil {
		t.Fatalf("Save() error: %v", err)
	}
	loaded, err := LoadFromFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if *loaded != *o {
		t.Errorf("loaded %+v, want %+v", *loaded, *o)
	}
}
