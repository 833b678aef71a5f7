package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"refinery-modeler/internal/declarative"
)

type validationResult struct {
	File   string   `json:"file"`
	Valid  bool     `json:"valid"`
	Errors []string `json:"errors,omitempty"`
}

func newValidateCmd() *cobra.Command {
	var jf jobFlags

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate modeling job files offline",
		Long:  "Reads modeling job files and checks them for errors without importing any schema.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := jf.validate(); err != nil {
				return err
			}

			results := make([]validationResult, 0, len(jf.files))
			invalid := 0
			for _, f := range jf.files {
				res := validationResult{File: f}
				doc, err := jf.load(f)
				if err != nil {
					res.Errors = []string{err.Error()}
				} else {
					for _, ve := range declarative.Validate(doc) {
						res.Errors = append(res.Errors, ve.Error())
					}
				}
				res.Valid = len(res.Errors) == 0
				if !res.Valid {
					invalid++
				}
				results = append(results, res)
			}

			out := cmd.OutOrStdout()
			if getOutputFormat(cmd) == "json" {
				if err := printJSON(out, results); err != nil {
					return err
				}
			} else {
				for _, r := range results {
					if r.Valid {
						_, _ = fmt.Fprintf(out, "%s: valid\n", r.File)
						continue
					}
					_, _ = fmt.Fprintf(out, "%s: %d validation error(s):\n", r.File, len(r.Errors))
					for _, e := range r.Errors {
						_, _ = fmt.Fprintf(out, "  - %s\n", e)
					}
				}
			}
			if invalid > 0 {
				return fmt.Errorf("%d of %d job file(s) invalid", invalid, len(jf.files))
			}
			return nil
		},
	}

	jf.register(cmd.Flags())
	return cmd
}
