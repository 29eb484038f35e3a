// Package graphfile reads and writes serialized flow graphs. A graph file
// lists functions; each function lists its blocks with their already
// translated statements, branch condition and outgoing edges. Files are
// YAML for hand-written input or msgpack for machine-generated input.
package graphfile

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/vmihailenco/msgpack/v5"
	"gopkg.in/yaml.v3"
)

// Format is a serialization format for graph files
type Format int

const (
	FormatYAML Format = iota
	FormatMsgpack
)

var formatNames = []string{"yaml", "msgpack"}

func (f Format) String() string {
	if int(f) < len(formatNames) {
		return formatNames[f]
	}
	return fmt.Sprintf("Format(%d)", int(f))
}

// ErrUnknownFormat is returned for a path whose extension names no format
var ErrUnknownFormat = errors.New("unknown graph file format")

// FormatForPath picks the format from the file extension
func FormatForPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".msgpack", ".mp":
		return FormatMsgpack, nil
	}
	return 0, fmt.Errorf("%w: %s", ErrUnknownFormat, path)
}

// File is the top-level document of a graph file
type File struct {
	Functions []FunctionSpec `yaml:"functions" msgpack:"functions"`
}

// FunctionSpec describes one function
type FunctionSpec struct {
	Name       string      `yaml:"name" msgpack:"name"`
	ReturnType string      `yaml:"return_type,omitempty" msgpack:"return_type,omitempty"`
	Args       []VarSpec   `yaml:"args,omitempty" msgpack:"args,omitempty"`
	Locals     []VarSpec   `yaml:"locals,omitempty" msgpack:"locals,omitempty"`
	Temps      []VarSpec   `yaml:"temps,omitempty" msgpack:"temps,omitempty"`
	Phis       []VarSpec   `yaml:"phis,omitempty" msgpack:"phis,omitempty"`
	Blocks     []BlockSpec `yaml:"blocks" msgpack:"blocks"`
}

// VarSpec is a typed variable
type VarSpec struct {
	Type string `yaml:"type" msgpack:"type"`
	Name string `yaml:"name" msgpack:"name"`
}

// BlockSpec describes one block. A block with Return set leaves the
// function; one with a Branch is conditional; any other block is basic.
// Next defaults to the block listed after this one.
type BlockSpec struct {
	Index  int         `yaml:"index" msgpack:"index"`
	Stmts  []string    `yaml:"stmts,omitempty" msgpack:"stmts,omitempty"`
	Branch *BranchSpec `yaml:"branch,omitempty" msgpack:"branch,omitempty"`
	Taken  *int        `yaml:"taken,omitempty" msgpack:"taken,omitempty"`
	Next   *int        `yaml:"next,omitempty" msgpack:"next,omitempty"`
	Return bool        `yaml:"return,omitempty" msgpack:"return,omitempty"`
	Value  string      `yaml:"value,omitempty" msgpack:"value,omitempty"`
	// Dup marks a duplicated copy of the return block
	Dup bool `yaml:"dup,omitempty" msgpack:"dup,omitempty"`
}

// BranchSpec is the condition under which a conditional block takes its
// branch: either a comparison or raw C text.
type BranchSpec struct {
	Left  string `yaml:"left,omitempty" msgpack:"left,omitempty"`
	Op    string `yaml:"op,omitempty" msgpack:"op,omitempty"`
	Right string `yaml:"right,omitempty" msgpack:"right,omitempty"`
	Raw   string `yaml:"raw,omitempty" msgpack:"raw,omitempty"`
}

// Decode parses a graph file in the given format
func Decode(data []byte, format Format) (*File, error) {
	return Read(bytes.NewReader(data), format)
}

// Read parses a graph file from r
func Read(r io.Reader, format Format) (*File, error) {
	var f File
	switch format {
	case FormatYAML:
		dec := yaml.NewDecoder(r)
		dec.KnownFields(true)
		if err := dec.Decode(&f); err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("failed to decode YAML graph: %w", err)
		}
	case FormatMsgpack:
		dec := msgpack.NewDecoder(r)
		if err := dec.Decode(&f); err != nil {
			return nil, fmt.Errorf("failed to decode msgpack graph: %w", err)
		}
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownFormat, format)
	}
	return &f, nil
}

// Load reads the graph file at path, choosing the format by extension
func Load(path string) (*File, error) {
	format, err := FormatForPath(path)
	if err != nil {
		return nil, err
	}
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open graph file: %w", err)
	}
	defer file.Close()

	f, err := Read(file, format)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return f, nil
}

// Encode writes f to w in the given format
func (f *File) Encode(w io.Writer, format Format) error {
	switch format {
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(f); err != nil {
			return fmt.Errorf("failed to encode YAML graph: %w", err)
		}
		return enc.Close()
	case FormatMsgpack:
		enc := msgpack.NewEncoder(w)
		if err := enc.Encode(f); err != nil {
			return fmt.Errorf("failed to encode msgpack graph: %w", err)
		}
		return nil
	}
	return fmt.Errorf("%w: %s", ErrUnknownFormat, format)
}

// Save writes f to path, choosing the format by extension
func (f *File) Save(path string) error {
	format, err := FormatForPath(path)
	if err != nil {
		return err
	}
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	if err := f.Encode(file, format); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}

// Function returns the function called name
func (f *File) Function(name string) (*FunctionSpec, bool) {
	for i := range f.Functions {
		if f.Functions[i].Name == name {
			return &f.Functions[i], true
		}
	}
	return nil, false
}
