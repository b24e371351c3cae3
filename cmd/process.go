package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/mavmaso/ficherors/internal/model"
	"github.com/mavmaso/ficherors/internal/pipeline"
)

var processOpts struct {
	input    string
	output   string
	country  string
	encoding string
	workers  int
	fns      []string
}

var processCmd = &cobra.Command{
	Use:   "process",
	Short: "Normalize destinations of a contact list and write it as ';' CSV",
	Example: `  ficherors process --input contacts.csv --country BR \
    --fn first=first_down:name --fn day=send_date --fn hour=send_hour:-3:00`,
	RunE: func(cmd *cobra.Command, args []string) error {
		specs, err := parseFunctions(processOpts.fns)
		if err != nil {
			return err
		}

		country := processOpts.country
		if country == "" {
			country = cfg.Pipeline.DefaultCountry
		}
		if country == "" {
			return fmt.Errorf("--country is required")
		}
		encoding := processOpts.encoding
		if encoding == "" {
			encoding = cfg.Pipeline.Encoding
		}
		workers := cfg.Pipeline.Workers
		if processOpts.workers > 0 {
			workers = processOpts.workers
		}

		p := pipeline.New(nil, nil,
			pipeline.WithWorkers(workers),
			pipeline.WithChunkSize(cfg.Pipeline.ChunkSize),
		)

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		res, err := p.ProcessFile(ctx, processOpts.input, pipeline.Request{
			Country:   strings.ToUpper(country),
			Functions: specs,
			Encoding:  encoding,
		})
		if err != nil {
			return err
		}

		if processOpts.output == "" || processOpts.output == "-" {
			_, err = fmt.Fprint(cmd.OutOrStdout(), res.Output)
			return err
		}
		return os.WriteFile(processOpts.output, []byte(res.Output), 0o644)
	},
}

func init() {
	f := processCmd.Flags()
	f.StringVarP(&processOpts.input, "input", "i", "", "contact list to read")
	f.StringVarP(&processOpts.output, "output", "o", "", "where to write the result (default stdout)")
	f.StringVarP(&processOpts.country, "country", "c", "", "destination country code, e.g. BR")
	f.StringVar(&processOpts.encoding, "encoding", "", "input encoding: utf-8, latin1 or windows-1252")
	f.IntVar(&processOpts.workers, "workers", 0, "goroutines transforming rows (default from config)")
	f.StringArrayVar(&processOpts.fns, "fn", nil, "generated column as name=kind[:target], repeatable")
	_ = processCmd.MarkFlagRequired("input")
}

// parseFunctions turns "name=kind[:target]" flags into ordered specs. The
// target keeps everything after the first ':' so offsets like -3:00 survive.
func parseFunctions(flags []string) (model.FunctionSpecs, error) {
	specs := make(model.FunctionSpecs, 0, len(flags))
	for _, raw := range flags {
		name, rest, ok := strings.Cut(raw, "=")
		name = strings.TrimSpace(name)
		if !ok || name == "" || rest == "" {
			return nil, fmt.Errorf("%w: %q is not name=kind[:target]", model.ErrInvalidFunctions, raw)
		}
		spec := model.FunctionSpec{Name: name}
		kind, target, hasTarget := strings.Cut(rest, ":")
		spec.Fn = strings.TrimSpace(kind)
		if hasTarget {
			spec.Target = &target
		}
		specs = append(specs, spec)
	}
	if err := specs.Validate(); err != nil {
		return nil, err
	}
	return specs, nil
}
