// Copyright (c) 2026 GeoGedcom. All rights reserved.
// Author: keldaan-ag

package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/keldaan-ag/gedcom-shp/internal/core/conversion"
	"github.com/keldaan-ag/gedcom-shp/internal/core/geometry"
)

// convertFlags are the command line overrides of the convert command.
type convertFlags struct {
	input  string
	root   string
	fields string
	driver string
	out    string
	bucket string
	delay  time.Duration
}

func newConvertCmd(state *app) *cobra.Command {
	flags := &convertFlags{}

	convertCmd := &cobra.Command{
		Use:   "convert",
		Short: "Convert one parser JSON file to GeoJSON",
		Long: "Reads the JSON tree of a GEDCOM parser, geocodes every birth, death and\n" +
			"marriage place, and writes points.geojson, lines.geojson and report.json\n" +
			"to the configured output store. Geocoding is paced: expect a few seconds\n" +
			"per distinct place.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return state.convert(cmd, flags)
		},
	}

	convertCmd.Flags().StringVarP(&flags.input, "input", "i", "-", "Parser JSON file, - for stdin")
	convertCmd.Flags().StringVarP(&flags.root, "root", "r", "", "Sosa root by id or name (overrides SOSA_ROOT)")
	convertCmd.Flags().StringVarP(&flags.fields, "fields", "f", "", "Comma separated date properties, e.g. birth-year,death-year (default all)")
	convertCmd.Flags().StringVar(&flags.driver, "driver", "", "Output driver: fs, s3 or memory (overrides OUTPUT_DRIVER)")
	convertCmd.Flags().StringVarP(&flags.out, "out", "o", "", "Output directory of the fs driver (overrides OUTPUT_DIR)")
	convertCmd.Flags().StringVar(&flags.bucket, "bucket", "", "Bucket of the s3 driver (overrides OUTPUT_S3_BUCKET)")
	convertCmd.Flags().DurationVar(&flags.delay, "delay", 0, "Pause after every geocoding lookup, at least 1s (overrides GEOCODER_DELAY)")

	return convertCmd
}

func (state *app) convert(cmd *cobra.Command, flags *convertFlags) error {
	cfg := state.cfg

	// 1. Apply overrides, then validate
	changed := cmd.Flags().Changed
	if changed("root") {
		cfg.SosaRoot = flags.root
	}
	if changed("driver") {
		cfg.OutputDriver = flags.driver
	}
	if changed("out") {
		cfg.OutputDir = flags.out
	}
	if changed("bucket") {
		cfg.OutputBucket = flags.bucket
	}
	if changed("delay") {
		cfg.GeocoderDelay = flags.delay
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	fields, err := geometry.ParseFields(flags.fields)
	if err != nil {
		return err
	}

	// 2. Input
	input, source, err := openInput(cmd, flags.input)
	if err != nil {
		return err
	}
	defer input.Close()

	// 3. Run, interruptible by SIGINT/SIGTERM
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	service, _, err := state.newService(ctx, nil)
	if err != nil {
		return err
	}

	result, err := service.Convert(ctx, conversion.Request{
		Input:  input,
		Source: source,
		Root:   cfg.SosaRoot,
		Fields: fields,
	}, progressLogger(state.log))
	if err != nil {
		return err
	}

	printSummary(cmd.OutOrStdout(), result.Report)
	return nil
}

// openInput opens the input file, or stdin for "-".
func openInput(cmd *cobra.Command, name string) (io.ReadCloser, string, error) {
	if name == "" || name == "-" {
		return io.NopCloser(cmd.InOrStdin()), "", nil
	}

	file, err := os.Open(name)
	if err != nil {
		return nil, "", fmt.Errorf("open input: %w", err)
	}
	return file, filepath.Base(name), nil
}

// progressLogger logs stages and geocoding progress.
func progressLogger(log *slog.Logger) conversion.Observer {
	return conversion.ObserverFunc(func(event conversion.Event) {
		if event.Progress == nil {
			log.Info("conversion_stage", slog.String("stage", string(event.Stage)))
			return
		}

		progress := event.Progress
		log.Info("conversion_geocode_progress",
			slog.Int("done", progress.Index+1),
			slog.Int("total", progress.Total),
			slog.Int("remaining", progress.Remaining),
			slog.String("place", progress.Place),
			slog.Bool("resolved", progress.Resolved),
		)
	})
}

// printSummary writes the run summary in a human readable form.
func printSummary(writer io.Writer, report conversion.Report) {
	stats := report.Stats

	fmt.Fprintf(writer, "Run:          %s\n", report.RunID)
	fmt.Fprintf(writer, "Individuals:  %d\n", stats.Individuals)
	fmt.Fprintf(writer, "Relations:    %d\n", stats.Relations)
	fmt.Fprintf(writer, "Geocoded:     %d/%d places\n", stats.Resolved, stats.Places)
	if report.Root != "" {
		fmt.Fprintf(writer, "Numbered:     %d ancestors\n", stats.Numbered)
	}
	fmt.Fprintf(writer, "Points:       %d\n", stats.Points)
	fmt.Fprintf(writer, "Lines:        %d\n", stats.Lines)

	for _, warning := range report.Warnings {
		fmt.Fprintf(writer, "Warning:      %s %q: %s\n", warning.Kind, warning.Subject, warning.Message)
	}
	for _, output := range report.Outputs {
		fmt.Fprintf(writer, "Output:       %s (%d bytes)\n", output.Key, output.Size)
	}
}
