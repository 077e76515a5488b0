package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"FeedstockSourcing/internal/app"
	"FeedstockSourcing/internal/config"
	"FeedstockSourcing/internal/domain"
	"FeedstockSourcing/internal/harvest"
	"FeedstockSourcing/internal/logging"
	"FeedstockSourcing/internal/usecase"
)

type rootOptions struct {
	configPath string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:          "feedstock",
		Short:        "Source harvest-residue feedstock for a bioenergy facility",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&opts.configPath, "config", "", "YAML config file (defaults to $FEEDSTOCK_CONFIG)")

	root.AddCommand(newSourceCmd(opts), newSystemsCmd(), newSeedCmd(opts))
	return root
}

func newSourceCmd(opts *rootOptions) *cobra.Command {
	var (
		requestPath string
		outputPath  string
		resumeID    string
		years       []int
	)

	cmd := &cobra.Command{
		Use:   "source",
		Short: "Select the cheapest clusters for one or more consecutive periods",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			req, err := readRequest(requestPath)
			if err != nil {
				return err
			}

			application, err := openApp(cmd, opts)
			if err != nil {
				return err
			}
			defer application.Close()

			var plan usecase.Plan
			if resumeID != "" {
				plan, err = application.Resume(cmd.Context(), resumeID, req, years)
			} else {
				plan, err = application.Source(cmd.Context(), req, years)
			}
			// completed periods are written even when a later one failed
			if writeErr := writeOutput(cmd.OutOrStdout(), outputPath, plan); writeErr != nil {
				return writeErr
			}
			return err
		},
	}

	cmd.Flags().StringVarP(&requestPath, "request", "r", "", "YAML sourcing request")
	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "write the plan to this file instead of stdout")
	cmd.Flags().StringVar(&resumeID, "resume", "", "continue a stored plan, skipping clusters it already used")
	cmd.Flags().IntSliceVar(&years, "years", nil, "periods to source in order (defaults to the request year)")
	_ = cmd.MarkFlagRequired("request")
	return cmd
}

func newSystemsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "systems",
		Short: "List the supported harvest systems",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			registry := harvest.DefaultRegistry()
			for _, name := range registry.Names() {
				system, _ := registry.Resolve(name)
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", system.Name, system.Family)
			}
			return nil
		},
	}
}

func newSeedCmd(opts *rootOptions) *cobra.Command {
	var clustersPath string

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load clusters from a YAML file into the configured database",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			clusters, err := readClusters(clustersPath)
			if err != nil {
				return err
			}

			application, err := openApp(cmd, opts)
			if err != nil {
				return err
			}
			defer application.Close()

			return application.Seed(cmd.Context(), clusters)
		},
	}

	cmd.Flags().StringVarP(&clustersPath, "file", "f", "", "YAML list of clusters")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func openApp(cmd *cobra.Command, opts *rootOptions) (*app.Application, error) {
	cfg, err := config.LoadFile(opts.configPath)
	if err != nil {
		return nil, err
	}
	return app.New(cmd.Context(), cfg, logging.New(cfg.Logging.Level))
}

func readRequest(path string) (domain.SourcingRequest, error) {
	var req domain.SourcingRequest
	if err := readYAML(path, &req); err != nil {
		return domain.SourcingRequest{}, fmt.Errorf("read request: %w", err)
	}
	return req, nil
}

func readClusters(path string) ([]domain.Cluster, error) {
	var clusters []domain.Cluster
	if err := readYAML(path, &clusters); err != nil {
		return nil, fmt.Errorf("read clusters: %w", err)
	}
	return clusters, nil
}

func readYAML(path string, v any) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	return dec.Decode(v)
}

// writeOutput encodes as YAML, which keeps NaN per-tonne costs of empty selections representable.
func writeOutput(stdout io.Writer, path string, v any) error {
	w := stdout
	if path != "" {
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("create output: %w", err)
		}
		defer f.Close()
		w = f
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode output: %w", err)
	}
	return enc.Close()
}
