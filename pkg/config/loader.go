package config

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// LoadPoliciesFile reads a YAML policy document and rejects unknown
// fields at load time, per spec: "Unknown fields must be rejected at
// load time." Mirrors the teacher's per-config-type validator idiom
// (pkg/config/validation.go) but enforced structurally by the decoder
// instead of by a hand-written field walk.
func LoadPoliciesFile(path string) (SymbolPolicies, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return SymbolPolicies{}, fmt.Errorf("read policy file %s: %w", path, err)
	}
	return ParsePolicies(data)
}

// ParsePolicies decodes a YAML policy document from memory, same
// strict-unknown-field behavior as LoadPoliciesFile.
func ParsePolicies(data []byte) (SymbolPolicies, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var doc SymbolPolicies
	if err := dec.Decode(&doc); err != nil {
		return SymbolPolicies{}, fmt.Errorf("parse policy document: %w", err)
	}
	return doc, nil
}
