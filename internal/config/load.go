package config

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/pkg/errors"
	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"
)

//go:embed schema.json
var schemaJSON string

var (
	schemaOnce sync.Once
	schema     *jsonschema.Schema
	schemaErr  error
)

func compiled() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		schema, schemaErr = jsonschema.CompileString("warehouse.schema.json", schemaJSON)
	})
	return schema, schemaErr
}

// Load reads a YAML or JSON file, choosing the decoder by extension.
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "config: open %s", path)
	}
	defer func() { _ = f.Close() }()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return LoadJSON(f)
	default:
		return LoadYAML(f)
	}
}

// LoadYAML validates and decodes a YAML document on top of Default.
func LoadYAML(r io.Reader) (*Config, error) {
	var doc any
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil && !errors.Is(err, io.EOF) {
		return nil, errors.Wrap(err, "config: decode yaml")
	}
	if doc == nil {
		doc = map[string]any{}
	}
	raw, err := json.Marshal(doc)
	if err != nil {
		return nil, errors.Wrap(err, "config: yaml is not representable as json")
	}
	return decode(raw)
}

// LoadJSON validates and decodes a JSON document on top of Default.
func LoadJSON(r io.Reader) (*Config, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrap(err, "config: read json")
	}
	return decode(raw)
}

func decode(raw []byte) (*Config, error) {
	if err := Validate(raw); err != nil {
		return nil, err
	}
	c := Default()
	var top map[string]json.RawMessage
	if err := json.Unmarshal(raw, &top); err != nil {
		return nil, errors.Wrap(err, "config: decode")
	}
	// a scene in the document replaces the demo scene wholesale
	if _, ok := top["scene"]; ok {
		c.Scene = Scene{}
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	if err := dec.Decode(c); err != nil {
		return nil, errors.Wrap(err, "config: decode")
	}
	if err := c.Check(); err != nil {
		return nil, err
	}
	return c, nil
}

// Validate checks a JSON document against the embedded schema.
func Validate(raw []byte) error {
	s, err := compiled()
	if err != nil {
		return errors.Wrap(err, "config: compile schema")
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return errors.Wrap(err, "config: parse json")
	}
	if err := s.Validate(v); err != nil {
		return errors.Wrap(ErrInvalid, err.Error())
	}
	return nil
}
