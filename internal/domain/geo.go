package domain

import (
	"slices"
	"strings"
)

// DefaultGeoDimensionName names the auto-generated geography dimension.
const DefaultGeoDimensionName = "Geography"

// GeoRole is one configured geographic role.
type GeoRole struct {
	Name            string
	Aliases         []string
	RequiredParents []string
}

// GeoContext is the read-only geo role vocabulary. Roles keep their
// configured order, which is also the auto-geo level order.
type GeoContext struct {
	dimensionName string
	roles         []GeoRole
}

// NewGeoContext validates and captures a role vocabulary. Role names must be
// unique and every required parent must itself be a configured role.
func NewGeoContext(dimensionName string, roles []GeoRole) (*GeoContext, error) {
	if dimensionName == "" {
		dimensionName = DefaultGeoDimensionName
	}
	gc := &GeoContext{dimensionName: dimensionName}
	for _, r := range roles {
		if r.Name == "" {
			return nil, ErrValidation("geo role with empty name")
		}
		if _, ok := gc.Role(r.Name); ok {
			return nil, ErrValidation("geo role %q declared twice", r.Name)
		}
		gc.roles = append(gc.roles, GeoRole{
			Name:            r.Name,
			Aliases:         slices.Clone(r.Aliases),
			RequiredParents: slices.Clone(r.RequiredParents),
		})
	}
	for _, r := range gc.roles {
		for _, p := range r.RequiredParents {
			if p == r.Name {
				return nil, ErrValidation("geo role %q requires itself", r.Name)
			}
			if _, ok := gc.Role(p); !ok {
				return nil, ErrValidation("geo role %q requires unknown parent %q", r.Name, p)
			}
		}
	}
	return gc, nil
}

// DimensionName is the name given to the auto-generated geo dimension.
func (g *GeoContext) DimensionName() string { return g.dimensionName }

// Roles returns a copy of the roles in configured order.
func (g *GeoContext) Roles() []GeoRole {
	out := make([]GeoRole, len(g.roles))
	for i, r := range g.roles {
		out[i] = GeoRole{Name: r.Name, Aliases: slices.Clone(r.Aliases), RequiredParents: slices.Clone(r.RequiredParents)}
	}
	return out
}

// Role looks a role up by exact, case-sensitive name.
func (g *GeoContext) Role(name string) (GeoRole, bool) {
	for _, r := range g.roles {
		if r.Name == name {
			return r, true
		}
	}
	return GeoRole{}, false
}

// MatchField returns the role whose name or alias equals the field name,
// ignoring case and surrounding space.
func (g *GeoContext) MatchField(fieldName string) (GeoRole, bool) {
	name := strings.TrimSpace(fieldName)
	for _, r := range g.roles {
		if strings.EqualFold(r.Name, name) {
			return r, true
		}
		for _, alias := range r.Aliases {
			if strings.EqualFold(alias, name) {
				return r, true
			}
		}
	}
	return GeoRole{}, false
}

// RoleIndex is the configured position of a role, or -1.
func (g *GeoContext) RoleIndex(name string) int {
	for i, r := range g.roles {
		if r.Name == name {
			return i
		}
	}
	return -1
}
