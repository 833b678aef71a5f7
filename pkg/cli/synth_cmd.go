package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"refinery-modeler/internal/config"
	"refinery-modeler/internal/db"
	"refinery-modeler/internal/db/repository"
	"refinery-modeler/internal/declarative"
	"refinery-modeler/internal/domain"
	"refinery-modeler/internal/service/modeler"
)

func newSynthCmd(e *env) *cobra.Command {
	var (
		jf        jobFlags
		geoConfig string
		metastore string
	)

	cmd := &cobra.Command{
		Use:   "synth",
		Short: "Synthesize models from modeling job files",
		Long: "Loads each modeling job, imports its schema, builds the model and applies its annotations. " +
			"Several jobs run concurrently and independently of each other.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := jf.validate(); err != nil {
				return err
			}
			if !cmd.Flags().Changed("geo-config") {
				geoConfig = e.cfg.GeoConfigPath
			}
			if !cmd.Flags().Changed("metastore") {
				metastore = e.cfg.MetastorePath
			}

			geo, err := config.LoadGeoContext(geoConfig)
			if err != nil {
				return err
			}

			var store domain.SharedDimensionRepository = repository.NewMemorySharedDimensionRepo()
			if metastore != "" {
				m, err := db.OpenMetastore(metastore)
				if err != nil {
					return fmt.Errorf("open metastore: %w", err)
				}
				defer func() { _ = m.Close() }()
				store = repository.NewSharedDimensionRepo(m.Write, m.Read)
			}

			var jobs []*declarative.Job
			defer func() {
				for _, j := range jobs {
					_ = j.Close()
				}
			}()
			reqs := make([]modeler.CreateModelRequest, 0, len(jf.files))
			for _, f := range jf.files {
				doc, err := jf.load(f)
				if err != nil {
					return err
				}
				job, err := declarative.Compile(doc)
				if err != nil {
					return fmt.Errorf("%s: %w", f, err)
				}
				jobs = append(jobs, job)
				reqs = append(reqs, job.Request)
			}

			svc := modeler.NewService(modeler.ServiceDeps{
				Geo:              geo,
				SharedDimensions: store,
				NativeDataSource: e.cfg.NativeDataSource,
				BatchLimit:       e.cfg.BatchLimit,
				Logger:           e.logger,
			})

			var summaries []modelSummary
			failed := 0
			if len(reqs) == 1 {
				res, err := svc.CreateModel(cmd.Context(), reqs[0])
				if err != nil {
					return err
				}
				summaries = append(summaries, summarize(reqs[0].ModelName, res, nil))
			} else {
				for _, r := range svc.CreateModels(cmd.Context(), reqs) {
					if r.Err != nil {
						failed++
					}
					summaries = append(summaries, summarize(r.ModelName, r.Result, r.Err))
				}
			}

			if getOutputFormat(cmd) == "json" {
				if err := printJSON(cmd.OutOrStdout(), summaries); err != nil {
					return err
				}
			} else {
				renderSummaries(cmd.OutOrStdout(), summaries)
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d models failed", failed, len(reqs))
			}
			return nil
		},
	}

	jf.register(cmd.Flags())
	cmd.Flags().StringVar(&geoConfig, "geo-config", "", "Geo role definitions (.properties or .yaml); defaults to GEO_CONFIG_PATH")
	cmd.Flags().StringVar(&metastore, "metastore", "", "SQLite metastore for shared dimensions; defaults to METASTORE_PATH")
	return cmd
}
