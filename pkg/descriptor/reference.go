package descriptor

import (
	"bytes"
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
)

// referenceEntry is the mapping form of a package entry:
//
//	- name: wayland
//	  lib: /opt/wayland/lib
//	- name: cargo
//	  libs: false
type referenceEntry struct {
	Name string `yaml:"name" json:"name"`
	Lib  string `yaml:"lib,omitempty" json:"lib,omitempty"`
	Libs *bool  `yaml:"libs,omitempty" json:"libs,omitempty"`
}

var entryKeys = map[string]bool{"name": true, "lib": true, "libs": true}

func (e referenceEntry) reference() Reference {
	return Reference{
		Name:   e.Name,
		LibDir: e.Lib,
		NoLibs: e.Libs != nil && !*e.Libs,
	}
}

func entryOf(r Reference) referenceEntry {
	e := referenceEntry{Name: r.Name, Lib: r.LibDir}
	if r.NoLibs {
		f := false
		e.Libs = &f
	}
	return e
}

func (r Reference) plain() bool {
	return r.LibDir == "" && !r.NoLibs
}

// UnmarshalYAML accepts either a bare name or a mapping entry.
func (r *Reference) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.ScalarNode:
		r.Name = value.Value
		return nil
	case yaml.MappingNode:
		for i := 0; i+1 < len(value.Content); i += 2 {
			key := value.Content[i]
			if !entryKeys[key.Value] {
				return fmt.Errorf("line %d: unknown package field %q", key.Line, key.Value)
			}
		}
		var e referenceEntry
		if err := value.Decode(&e); err != nil {
			return err
		}
		*r = e.reference()
		return nil
	default:
		return fmt.Errorf("line %d: package entry must be a name or a mapping", value.Line)
	}
}

// MarshalYAML writes plain references as bare names.
func (r Reference) MarshalYAML() (interface{}, error) {
	if r.plain() {
		return r.Name, nil
	}
	return entryOf(r), nil
}

// UnmarshalJSON accepts either a string or an object entry.
func (r *Reference) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err == nil {
		r.Name = name
		return nil
	}
	var e referenceEntry
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&e); err != nil {
		return fmt.Errorf("package entry must be a string or an object: %w", err)
	}
	*r = e.reference()
	return nil
}

// MarshalJSON writes plain references as strings.
func (r Reference) MarshalJSON() ([]byte, error) {
	if r.plain() {
		return json.Marshal(r.Name)
	}
	return json.Marshal(entryOf(r))
}

// UnmarshalTOML accepts either a string or an inline table entry.
func (r *Reference) UnmarshalTOML(data interface{}) error {
	switch v := data.(type) {
	case string:
		r.Name = v
		return nil
	case map[string]interface{}:
		var e referenceEntry
		for key, val := range v {
			var ok bool
			switch key {
			case "name":
				e.Name, ok = val.(string)
			case "lib":
				e.Lib, ok = val.(string)
			case "libs":
				var libs bool
				libs, ok = val.(bool)
				e.Libs = &libs
			default:
				return fmt.Errorf("unknown package field %q", key)
			}
			if !ok {
				return fmt.Errorf("package field %q has wrong type %T", key, val)
			}
		}
		*r = e.reference()
		return nil
	default:
		return fmt.Errorf("package entry must be a string or a table, got %T", data)
	}
}
