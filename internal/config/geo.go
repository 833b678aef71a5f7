package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/magiconair/properties"
	"gopkg.in/yaml.v3"

	"refinery-modeler/internal/domain"
)

// Geo role property keys.
const (
	KeyGeoRoles         = "geo.roles"
	KeyGeoDimensionName = "geo.dimension.name"
)

func aliasesKey(role string) string         { return "geo." + role + ".aliases" }
func requiredParentsKey(role string) string { return "geo." + role + ".required-parents" }

// GeoContextFromProperties builds the geo role vocabulary from key/value
// properties. It returns nil when no roles are configured.
func GeoContextFromProperties(props map[string]string) (*domain.GeoContext, error) {
	rolesValue, ok := props[KeyGeoRoles]
	if !ok {
		return nil, nil
	}
	names := splitList(rolesValue)
	if len(names) == 0 {
		return nil, nil
	}

	roles := make([]domain.GeoRole, 0, len(names))
	for _, name := range names {
		aliases, ok := props[aliasesKey(name)]
		if !ok {
			return nil, domain.ErrValidation("geo role %q has no %s property", name, aliasesKey(name))
		}
		roles = append(roles, domain.GeoRole{
			Name:            name,
			Aliases:         splitList(aliases),
			RequiredParents: splitList(props[requiredParentsKey(name)]),
		})
	}
	return domain.NewGeoContext(strings.TrimSpace(props[KeyGeoDimensionName]), roles)
}

// ParseProperties reads a Java properties document, including line
// continuations, whitespace separators and unicode escapes.
func ParseProperties(r io.Reader) (map[string]string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	p, err := properties.Load(data, properties.UTF8)
	if err != nil {
		return nil, fmt.Errorf("parse properties: %w", err)
	}
	return p.Map(), nil
}

type geoDocument struct {
	Dimension string `yaml:"dimension"`
	Roles     []struct {
		Name            string    `yaml:"name"`
		Aliases         *[]string `yaml:"aliases"`
		RequiredParents []string  `yaml:"requiredParents"`
	} `yaml:"roles"`
}

// ParseGeoYAML reads geo roles from a YAML document:
//
//	dimension: Geography
//	roles:
//	  - name: country
//	    aliases: [ctry, nation]
//	  - name: state
//	    aliases: [province]
//	    requiredParents: [country]
//
// It returns nil when no roles are listed.
func ParseGeoYAML(data []byte) (*domain.GeoContext, error) {
	var doc geoDocument
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil && !errors.Is(err, io.EOF) {
		return nil, domain.ErrValidation("parse geo config: %v", err)
	}
	if len(doc.Roles) == 0 {
		return nil, nil
	}

	roles := make([]domain.GeoRole, 0, len(doc.Roles))
	for _, r := range doc.Roles {
		if r.Aliases == nil {
			return nil, domain.ErrValidation("geo role %q has no aliases", r.Name)
		}
		roles = append(roles, domain.GeoRole{Name: r.Name, Aliases: *r.Aliases, RequiredParents: r.RequiredParents})
	}
	return domain.NewGeoContext(doc.Dimension, roles)
}

// LoadGeoContext reads geo roles from a .yaml/.yml or .properties file. An
// empty path yields no context.
func LoadGeoContext(path string) (*domain.GeoContext, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path) //nolint:gosec // path is operator-controlled
	if err != nil {
		return nil, fmt.Errorf("read geo config: %w", err)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return ParseGeoYAML(data)
	}
	props, err := ParseProperties(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return GeoContextFromProperties(props)
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
