// Package openapi embeds the OpenAPI YAML document served at /openapi.yaml.
package openapi

import (
	_ "embed"
	"fmt"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// YAML contains the embedded OpenAPI document.
//
//go:embed openapi.yaml
var YAML []byte

// Operation is one documented method and path.
type Operation struct {
	Method string
	Path   string
}

type document struct {
	OpenAPI string                          `yaml:"openapi"`
	Paths   map[string]map[string]yaml.Node `yaml:"paths"`
}

var methods = map[string]bool{"get": true, "post": true, "put": true, "patch": true, "delete": true}

// Operations parses the embedded document and lists its operations
// sorted by path then method.
func Operations() ([]Operation, error) {
	var doc document
	if err := yaml.Unmarshal(YAML, &doc); err != nil {
		return nil, fmt.Errorf("parse openapi: %w", err)
	}
	if doc.OpenAPI == "" {
		return nil, fmt.Errorf("parse openapi: missing version")
	}
	var ops []Operation
	for path, item := range doc.Paths {
		for m := range item {
			if methods[m] {
				ops = append(ops, Operation{Method: strings.ToUpper(m), Path: path})
			}
		}
	}
	sort.Slice(ops, func(i, j int) bool {
		if ops[i].Path != ops[j].Path {
			return ops[i].Path < ops[j].Path
		}
		return ops[i].Method < ops[j].Method
	})
	return ops, nil
}
