package contacts

import (
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// contactsFile is the YAML schema for a contacts file:
//
//	contacts:
//	  - Alice Smith
//	  - Alicia Nunez
type contactsFile struct {
	Contacts []string `yaml:"contacts"`
}

// LoadFile reads a contacts YAML file and returns a [Static] directory.
func LoadFile(path string) (*Static, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("contacts: open %q: %w", path, err)
	}
	defer f.Close()

	dir, err := LoadFromReader(f)
	if err != nil {
		return nil, fmt.Errorf("contacts: parse %q: %w", path, err)
	}
	return dir, nil
}

// LoadFromReader decodes a contacts YAML document from r.
func LoadFromReader(r io.Reader) (*Static, error) {
	var file contactsFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&file); err != nil {
		return nil, fmt.Errorf("contacts: decode yaml: %w", err)
	}
	return NewStatic(file.Contacts), nil
}
