package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"refinery-modeler/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const geoProperties = `# geo roles
geo.roles = country, state, city
geo.dimension.name = Location
geo.country.aliases = CTRY, CTR
geo.state.aliases: province
geo.state.required-parents = country
geo.city.aliases =
geo.city.required-parents = country, state
`

func TestGeoContextFromProperties(t *testing.T) {
	props, err := ParseProperties(strings.NewReader(geoProperties))
	require.NoError(t, err)

	gc, err := GeoContextFromProperties(props)
	require.NoError(t, err)
	require.NotNil(t, gc)
	assert.Equal(t, "Location", gc.DimensionName())
	assert.Equal(t, []domain.GeoRole{
		{Name: "country", Aliases: []string{"CTRY", "CTR"}},
		{Name: "state", Aliases: []string{"province"}, RequiredParents: []string{"country"}},
		{Name: "city", RequiredParents: []string{"country", "state"}},
	}, gc.Roles())
}

func TestGeoContextFromProperties_Errors(t *testing.T) {
	tests := []struct {
		name  string
		props map[string]string
		isNil bool
		err   string
	}{
		{name: "no roles key", props: map[string]string{"geo.country.aliases": "x"}, isNil: true},
		{name: "blank roles", props: map[string]string{"geo.roles": " , "}, isNil: true},
		{name: "missing aliases", props: map[string]string{"geo.roles": "country"}, err: "geo.country.aliases"},
		{
			name:  "unknown parent",
			props: map[string]string{"geo.roles": "state", "geo.state.aliases": "", "geo.state.required-parents": "country"},
			err:   "unknown parent",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gc, err := GeoContextFromProperties(tt.props)
			if tt.err != "" {
				var ve *domain.ValidationError
				require.ErrorAs(t, err, &ve)
				assert.Contains(t, ve.Message, tt.err)
				return
			}
			require.NoError(t, err)
			assert.Nil(t, gc)
		})
	}
}

func TestGeoContextFromProperties_DefaultDimensionName(t *testing.T) {
	gc, err := GeoContextFromProperties(map[string]string{"geo.roles": "country", "geo.country.aliases": "nation"})
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultGeoDimensionName, gc.DimensionName())
}

func TestParseProperties(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  map[string]string
	}{
		{
			name:  "line continuation",
			input: "geo.roles=country,\\\n  state\n",
			want:  map[string]string{"geo.roles": "country,state"},
		},
		{
			name:  "whitespace separator",
			input: "geo.roles country\ngeo.country.aliases\tnation\n",
			want:  map[string]string{"geo.roles": "country", "geo.country.aliases": "nation"},
		},
		{
			name:  "unicode escape",
			input: "geo.dimension.name = Gr\\u00f6\\u00dfe\n",
			want:  map[string]string{"geo.dimension.name": "Gr\u00f6\u00dfe"},
		},
		{
			name:  "comments and colon separator",
			input: "# roles\n! more\ngeo.roles: country\n",
			want:  map[string]string{"geo.roles": "country"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseProperties(strings.NewReader(tt.input))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseProperties_ContinuedRoleList(t *testing.T) {
	props, err := ParseProperties(strings.NewReader("geo.roles = country, \\\n    state\n" +
		"geo.country.aliases = ctry\n" +
		"geo.state.aliases province\n" +
		"geo.state.required-parents = country\n"))
	require.NoError(t, err)

	gc, err := GeoContextFromProperties(props)
	require.NoError(t, err)
	assert.Equal(t, []domain.GeoRole{
		{Name: "country", Aliases: []string{"ctry"}},
		{Name: "state", Aliases: []string{"province"}, RequiredParents: []string{"country"}},
	}, gc.Roles())
}

func TestParseProperties_Malformed(t *testing.T) {
	_, err := ParseProperties(strings.NewReader("geo.dimension.name = \\u12\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse properties")
}

func TestParseGeoYAML(t *testing.T) {
	gc, err := ParseGeoYAML([]byte(`
roles:
  - name: country
    aliases: [ctry, nation]
  - name: state
    aliases: [province]
    requiredParents: [country]
`))
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultGeoDimensionName, gc.DimensionName())
	desc, ok := gc.Role("state")
	require.True(t, ok)
	assert.Equal(t, []string{"country"}, desc.RequiredParents)

	_, err = ParseGeoYAML([]byte("roles:\n  - name: country\n"))
	require.Error(t, err, "aliases are required")

	_, err = ParseGeoYAML([]byte("roles:\n  - name: country\n    aliases: []\n    parents: [x]\n"))
	require.Error(t, err, "unknown keys are rejected")

	gc, err = ParseGeoYAML(nil)
	require.NoError(t, err)
	assert.Nil(t, gc)
}

func TestLoadGeoContext(t *testing.T) {
	dir := t.TempDir()
	propsPath := filepath.Join(dir, "geo.properties")
	require.NoError(t, os.WriteFile(propsPath, []byte(geoProperties), 0o600))
	yamlPath := filepath.Join(dir, "geo.yaml")
	require.NoError(t, os.WriteFile(yamlPath, []byte("dimension: Places\nroles:\n  - name: city\n    aliases: [town]\n"), 0o600))

	gc, err := LoadGeoContext(propsPath)
	require.NoError(t, err)
	assert.Equal(t, "Location", gc.DimensionName())

	gc, err = LoadGeoContext(yamlPath)
	require.NoError(t, err)
	assert.Equal(t, "Places", gc.DimensionName())

	gc, err = LoadGeoContext("")
	require.NoError(t, err)
	assert.Nil(t, gc)

	_, err = LoadGeoContext(filepath.Join(dir, "missing.properties"))
	require.Error(t, err)
}
