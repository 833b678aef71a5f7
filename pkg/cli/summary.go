package cli

import (
	"fmt"
	"io"
	"strconv"

	"refinery-modeler/internal/domain"
	"refinery-modeler/internal/service/modeler"
)

type modelSummary struct {
	Model      string             `json:"model"`
	Error      string             `json:"error,omitempty"`
	Measures   []measureSummary   `json:"measures,omitempty"`
	Dimensions []dimensionSummary `json:"dimensions,omitempty"`
	Applied    []string           `json:"applied,omitempty"`
	Unapplied  []string           `json:"unapplied,omitempty"`
	Sweeps     int                `json:"sweeps,omitempty"`
}

type measureSummary struct {
	Name        string `json:"name"`
	Column      string `json:"column"`
	Aggregation string `json:"aggregation"`
}

type dimensionSummary struct {
	Name            string         `json:"name"`
	Type            string         `json:"type"`
	ForeignKey      string         `json:"foreignKey,omitempty"`
	SharedDimension string         `json:"sharedDimension,omitempty"`
	Levels          []levelSummary `json:"levels"`
}

type levelSummary struct {
	Hierarchy       string `json:"hierarchy"`
	Name            string `json:"name"`
	Column          string `json:"column"`
	GeoRole         string `json:"geoRole,omitempty"`
	RequiredParents string `json:"requiredParents,omitempty"`
}

func summarize(name string, res *modeler.Result, err error) modelSummary {
	s := modelSummary{Model: name}
	if err != nil {
		s.Error = err.Error()
		return s
	}
	s.Sweeps = res.Sweeps
	for _, a := range res.Applied {
		s.Applied = append(s.Applied, a.Summary())
	}
	for _, a := range res.Unapplied {
		s.Unapplied = append(s.Unapplied, a.Summary())
	}

	analysis := res.Domain.Analysis
	for _, m := range analysis.Cube.Measures {
		s.Measures = append(s.Measures, measureSummary{Name: m.Name, Column: m.Column, Aggregation: string(m.Aggregation)})
	}
	for _, u := range analysis.Cube.Usages {
		dim := analysis.Dimension(u.Dimension)
		if dim == nil {
			continue
		}
		ds := dimensionSummary{
			Name:            u.Name,
			Type:            string(dim.Type),
			ForeignKey:      u.ForeignKey,
			SharedDimension: dim.SharedDimension,
			Levels:          []levelSummary{},
		}
		for _, h := range dim.Hierarchies {
			for _, l := range h.Levels {
				ls := levelSummary{Hierarchy: h.Name, Name: l.Name, Column: l.Column}
				ls.GeoRole, _ = l.GeoRole()
				ls.RequiredParents, _ = l.Annotation(domain.AnnotationRequiredParents)
				ds.Levels = append(ds.Levels, ls)
			}
		}
		s.Dimensions = append(s.Dimensions, ds)
	}
	return s
}

func renderSummaries(w io.Writer, summaries []modelSummary) {
	for i, s := range summaries {
		if i > 0 {
			_, _ = fmt.Fprintln(w)
		}
		if s.Error != "" {
			_, _ = fmt.Fprintf(w, "Model %s failed: %s\n", s.Model, s.Error)
			continue
		}
		_, _ = fmt.Fprintf(w, "Model %s (%d annotations applied in %d sweeps)\n\n", s.Model, len(s.Applied), s.Sweeps)

		measures := newTable(w, "MEASURE", "COLUMN", "AGGREGATION")
		for _, m := range s.Measures {
			measures.Append([]string{m.Name, m.Column, m.Aggregation})
		}
		measures.Render()
		_, _ = fmt.Fprintln(w)

		dims := newTable(w, "DIMENSION", "HIERARCHY", "LEVEL", "COLUMN", "GEO ROLE", "REQUIRED PARENTS")
		for _, d := range s.Dimensions {
			name := d.Name
			if d.SharedDimension != "" {
				name += " (" + d.SharedDimension + ")"
			}
			for _, l := range d.Levels {
				dims.Append([]string{name, l.Hierarchy, l.Name, l.Column, l.GeoRole, l.RequiredParents})
			}
		}
		dims.Render()

		if len(s.Unapplied) > 0 {
			_, _ = fmt.Fprintln(w)
			_, _ = fmt.Fprintln(w, "Unable to apply "+strconv.Itoa(len(s.Unapplied))+" annotation(s):")
			for _, u := range s.Unapplied {
				_, _ = fmt.Fprintf(w, "  - %s\n", u)
			}
		}
	}
}
