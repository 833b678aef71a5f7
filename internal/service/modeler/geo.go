package modeler

import (
	"slices"
	"sort"
	"strings"

	"refinery-modeler/internal/domain"
)

// RoleDescriptor is a resolved geo role.
type RoleDescriptor struct {
	Role            string
	Aliases         []string
	RequiredParents []string
}

// GeoResolver classifies geo roles against a GeoContext and orders geo
// hierarchy levels so that parents precede children.
type GeoResolver struct {
	geo *domain.GeoContext
}

// NewGeoResolver returns a resolver over geo. A nil context yields a nil
// resolver, which callers treat as "no geo metadata".
func NewGeoResolver(geo *domain.GeoContext) *GeoResolver {
	if geo == nil {
		return nil
	}
	return &GeoResolver{geo: geo}
}

// ResolveRole looks a role up by exact name.
func (r *GeoResolver) ResolveRole(role string) (RoleDescriptor, error) {
	gr, ok := r.geo.Role(role)
	if !ok {
		return RoleDescriptor{}, &domain.RoleNotConfiguredError{Role: role}
	}
	return RoleDescriptor{
		Role:            gr.Name,
		Aliases:         slices.Clone(gr.Aliases),
		RequiredParents: slices.Clone(gr.RequiredParents),
	}, nil
}

// Annotate resolves role and stamps its metadata onto level.
func (r *GeoResolver) Annotate(level *domain.OlapHierarchyLevel, role string) error {
	desc, err := r.ResolveRole(role)
	if err != nil {
		return err
	}
	level.SetGeoRole(desc.Role, desc.RequiredParents)
	return nil
}

// OrderHierarchyLevels returns levels reordered so every geo level follows
// the levels holding its required parents. Required parents not present in
// the set impose nothing. Among levels that are ready, declared order wins,
// so an already-valid order is returned unchanged. Non-geo levels are never
// constrained. A cycle among the present roles is a validation error.
func (r *GeoResolver) OrderHierarchyLevels(levels []*domain.OlapHierarchyLevel) ([]*domain.OlapHierarchyLevel, error) {
	n := len(levels)
	if n < 2 {
		return slices.Clone(levels), nil
	}

	roleLevels := make(map[string][]int)
	for i, l := range levels {
		if role, ok := l.GeoRole(); ok {
			roleLevels[role] = append(roleLevels[role], i)
		}
	}

	// deps[i] are the indices that must be placed before i.
	deps := make([][]int, n)
	for i, l := range levels {
		role, ok := l.GeoRole()
		if !ok {
			continue
		}
		desc, err := r.ResolveRole(role)
		if err != nil {
			return nil, err
		}
		for _, parent := range desc.RequiredParents {
			deps[i] = append(deps[i], roleLevels[parent]...)
		}
	}

	placed := make([]bool, n)
	order := make([]*domain.OlapHierarchyLevel, 0, n)
	for len(order) < n {
		next := -1
		for i := range levels {
			if !placed[i] && allPlaced(deps[i], placed) {
				next = i
				break
			}
		}
		if next < 0 {
			return nil, domain.ErrValidation("cycle detected in required parents of geo levels: %s", pendingNames(levels, placed))
		}
		placed[next] = true
		order = append(order, levels[next])
	}
	return order, nil
}

func allPlaced(idx []int, placed []bool) bool {
	for _, i := range idx {
		if !placed[i] {
			return false
		}
	}
	return true
}

func pendingNames(levels []*domain.OlapHierarchyLevel, placed []bool) string {
	var names []string
	for i, l := range levels {
		if !placed[i] {
			names = append(names, l.Name)
		}
	}
	return strings.Join(names, ", ")
}

// GeoField is a schema field matched to a geo role.
type GeoField struct {
	Field domain.SchemaField
	Role  string
	rank  int
	pos   int
}

// DetectGeoFields picks the schema fields whose logical name matches a role
// name or alias, sorted by configured role order, then schema order.
func (r *GeoResolver) DetectGeoFields(schema *domain.TableSchema) []GeoField {
	var out []GeoField
	for pos, f := range schema.Fields() {
		role, ok := r.geo.MatchField(f.LogicalName)
		if !ok {
			continue
		}
		out = append(out, GeoField{Field: f, Role: role.Name, rank: r.geo.RoleIndex(role.Name), pos: pos})
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].rank != out[j].rank {
			return out[i].rank < out[j].rank
		}
		return out[i].pos < out[j].pos
	})
	return out
}

// DimensionName is the configured name of the auto geo dimension.
func (r *GeoResolver) DimensionName() string { return r.geo.DimensionName() }
