// Command enumerate runs a lazy pipeline over a JSON or YAML document.
//
//	enumerate -i people.json --op 'where:age,>,30' --op pluck:name --op 'implode:", "'
//	echo '[1,2,3,4]' | enumerate --op chunk:2
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/apokryfos/Enumerable/config"
	apperrors "github.com/apokryfos/Enumerable/errors"
	"github.com/apokryfos/Enumerable/logger"
	"github.com/apokryfos/Enumerable/pipeline"
	"github.com/apokryfos/Enumerable/sequence"
	"github.com/apokryfos/Enumerable/validation"
	"github.com/apokryfos/Enumerable/version"
)

// options holds the command-line flags.
type options struct {
	configFile string
	envFile    string
	input      string
	format     string
	ops        []string
	pretty     bool
	metrics    bool
	id         string
	jsonErrors bool
}

// reportedError marks an error already written to stderr.
type reportedError struct{ error }

func (e reportedError) Unwrap() error { return e.error }

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCommand().ExecuteContext(ctx); err != nil {
		if !errors.As(err, new(reportedError)) {
			fmt.Fprintln(os.Stderr, err)
		}
		stop()
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	var o options

	root := &cobra.Command{
		Use:   "enumerate",
		Short: "Run a lazy enumerable pipeline over a JSON or YAML document",
		Long: `enumerate decodes a document, wraps it in a pipeline and applies the
operations given with --op in order. Only the last operation may be a terminal
such as sum or count; without one the materialized sequence is printed as JSON.

Operations take comma-separated arguments after a colon. JSON arguments such as
[1,2] or {"a":1} are decoded, anything else is passed as a string.`,
		Example: `  enumerate -i scores.json --op pluck:score --op median
  echo '{"a":1,"b":2}' | enumerate --op flip
  enumerate -i items.yaml -f yaml --op 'where:price,>=,10' --op count`,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			err := run(cmd, o)
			if err == nil || !o.jsonErrors {
				return err
			}
			if werr := writeJSON(cmd.ErrOrStderr(), apperrors.Response(err), false); werr != nil {
				return errors.Join(err, werr)
			}
			return reportedError{err}
		},
	}

	persistent := root.PersistentFlags()
	persistent.StringVarP(&o.configFile, "config", "c", "", "Path to a YAML config file")
	persistent.StringVar(&o.envFile, "env-file", "", "Path to a .env file")

	flags := root.Flags()
	flags.StringVarP(&o.input, "input", "i", "-", "Input document, - for stdin")
	flags.StringVarP(&o.format, "format", "f", "", "Input format: json or yaml (default from config)")
	flags.StringArrayVarP(&o.ops, "op", "o", nil, "Operation to apply, repeatable (see 'enumerate ops')")
	flags.BoolVarP(&o.pretty, "pretty", "p", false, "Indent JSON output")
	flags.BoolVar(&o.metrics, "metrics", false, "Print Prometheus counters to stderr after running")
	flags.StringVar(&o.id, "id", "", "Pipeline ID (UUID) carried by lifecycle events")
	flags.BoolVar(&o.jsonErrors, "json-errors", false, "Write failures to stderr as a JSON error object")

	root.AddCommand(newVersionCommand(), newOpsCommand())
	return root
}

func newVersionCommand() *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		RunE: func(cmd *cobra.Command, _ []string) error {
			info := version.Get()
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), info, false)
			}
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "enumerate %s\n", info)
			return err
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print version information as JSON")
	return cmd
}

func newOpsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "ops",
		Short: "List the operations accepted by --op",
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := fmt.Fprintln(cmd.OutOrStdout(), strings.Join(usages(), "\n"))
			return err
		},
	}
}

func run(cmd *cobra.Command, o options) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	if err := validateFlags(cmd, o); err != nil {
		return err
	}
	cfg, err := loadConfig(cmd, o)
	if err != nil {
		return err
	}
	pl, err := parsePlan(o.ops)
	if err != nil {
		return err
	}

	log := logger.NewWithWriter(&cfg.Logging, cfg.Name, cmd.ErrOrStderr()).
		WithFields(logger.Fields("environment", cfg.Environment))
	logger.SetGlobalLogger(log)

	doc, err := readInput(cmd.InOrStdin(), o.input, cfg.Input.Format)
	if err != nil {
		return err
	}

	tel, err := setupTelemetry(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer func() {
		if err := tel.Shutdown(context.WithoutCancel(ctx)); err != nil {
			log.WithError(err).Warn("telemetry shutdown failed")
		}
	}()

	popts := []pipeline.Option{
		pipeline.WithObserver(tel.Observer()),
		pipeline.WithLogger(log.WithComponent("pipeline")),
	}
	if o.id != "" {
		popts = append(popts, pipeline.WithID(o.id))
	}

	result, err := pl.execute(ctx, pipeline.New(doc, popts...))
	if err != nil {
		return err
	}
	if err := writeJSON(cmd.OutOrStdout(), result, cfg.Output.Pretty); err != nil {
		return err
	}
	if tel.registry != nil {
		return writeMetrics(cmd.ErrOrStderr(), tel.registry)
	}
	return nil
}

func validateFlags(cmd *cobra.Command, o options) error {
	v := validation.New().
		Required("input", o.input).
		OptionalUUID("id", o.id)
	if cmd.Flags().Changed("format") {
		v.OneOf("format", o.format, []string{config.FormatJSON, config.FormatYAML})
	}
	return v.Validate()
}

// loadConfig loads the configuration and applies explicitly set flags over it.
func loadConfig(cmd *cobra.Command, o options) (*config.Config, error) {
	var lopts []config.LoaderOption
	if o.configFile != "" {
		lopts = append(lopts, config.WithConfigFile(o.configFile))
	}
	if o.envFile != "" {
		lopts = append(lopts, config.WithEnvFile(o.envFile))
	}
	cfg, err := config.Load(lopts...)
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("format") {
		cfg.Input.Format = o.format
	}
	if flags.Changed("pretty") {
		cfg.Output.Pretty = o.pretty
	}
	if flags.Changed("metrics") {
		cfg.Metrics.Prometheus = o.metrics
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func readInput(stdin io.Reader, path, format string) (any, error) {
	var (
		data []byte
		err  error
	)
	if path == "" || path == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("read input: %w", err)
	}
	if format == config.FormatYAML {
		return sequence.DecodeYAML(data)
	}
	return sequence.DecodeJSON(data)
}

func writeJSON(w io.Writer, v any, pretty bool) error {
	var (
		out []byte
		err error
	)
	if pretty {
		out, err = json.MarshalIndent(v, "", "  ")
	} else {
		out, err = json.Marshal(v)
	}
	if err != nil {
		return fmt.Errorf("encode output: %w", err)
	}
	out = append(out, '\n')
	_, err = w.Write(out)
	return err
}
