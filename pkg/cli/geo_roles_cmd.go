package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"refinery-modeler/internal/config"
)

type geoRoleView struct {
	Name            string   `json:"name"`
	Aliases         []string `json:"aliases"`
	RequiredParents []string `json:"requiredParents"`
}

func newGeoRolesCmd(e *env) *cobra.Command {
	var geoConfig string

	cmd := &cobra.Command{
		Use:   "geo-roles",
		Short: "List the configured geographic roles",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !cmd.Flags().Changed("geo-config") {
				geoConfig = e.cfg.GeoConfigPath
			}
			gc, err := config.LoadGeoContext(geoConfig)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if gc == nil {
				if getOutputFormat(cmd) == "json" {
					return printJSON(out, map[string]interface{}{"roles": []geoRoleView{}})
				}
				_, _ = fmt.Fprintln(out, "No geo roles configured.")
				return nil
			}

			roles := gc.Roles()
			views := make([]geoRoleView, len(roles))
			for i, r := range roles {
				views[i] = geoRoleView{Name: r.Name, Aliases: r.Aliases, RequiredParents: r.RequiredParents}
			}
			if getOutputFormat(cmd) == "json" {
				return printJSON(out, map[string]interface{}{
					"dimension": gc.DimensionName(),
					"roles":     views,
				})
			}

			_, _ = fmt.Fprintf(out, "Dimension: %s\n\n", gc.DimensionName())
			table := newTable(out, "ROLE", "ALIASES", "REQUIRED PARENTS")
			for _, v := range views {
				table.Append([]string{v.Name, strings.Join(v.Aliases, ", "), strings.Join(v.RequiredParents, ", ")})
			}
			table.Render()
			return nil
		},
	}

	cmd.Flags().StringVar(&geoConfig, "geo-config", "", "Geo role definitions (.properties or .yaml); defaults to GEO_CONFIG_PATH")
	return cmd
}
