package cmd

import (
	"os"

	"github.com/spf13/cobra"
	"github.com/vuuvv/errors"
	"github.com/vuuvv/vrecord/config"
	"github.com/vuuvv/vrecord/core"
	"github.com/vuuvv/vrecord/log"
	"github.com/vuuvv/vrecord/pipeline"
	"github.com/vuuvv/vrecord/sink"
	"go.uber.org/zap"
)

var decodeCmd = &cobra.Command{
	Use:   "decode",
	Short: "Decode a binary record file",
	Long: `Decode a file of back-to-back records described by a schema.

Example:
  vrecord decode --schema telemetry.yaml --in data.bin --out data.csv --workers 8
  vrecord decode --config run.toml --fields temp,volt`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		if !cmd.Flags().Changed("log-level") {
			logger, err := log.New(cfg.LogLevel)
			if err != nil {
				return err
			}
			log.SetLogger(logger)
		}

		scheme, err := core.NewSchemeFromFile(cfg.Schema)
		if err != nil {
			return err
		}
		data, err := os.ReadFile(cfg.Input)
		if err != nil {
			return errors.WithStack(err)
		}
		out, err := openSink(cfg)
		if err != nil {
			return err
		}

		opts := pipeline.OptionsFromConfig(cfg)
		opts.Derived = scheme.ParsedDerived
		opts.Checks = scheme.ParsedChecks
		stats, err := pipeline.Execute(cmd.Context(), scheme.ParsedDef, data, out, opts)
		if err != nil {
			return err
		}
		if stats.Skipped > 0 {
			log.Warn("Some records were skipped", zap.Int("skipped", stats.Skipped), zap.String("run", stats.RunID.String()))
		}
		return nil
	},
}

// loadConfig 配置文件打底, 命令行参数覆盖
func loadConfig(cmd *cobra.Command) (cfg *config.Config, err error) {
	flags := cmd.Flags()
	cfg = config.Default()
	if path, _ := flags.GetString("config"); path != "" {
		if cfg, err = config.Load(path); err != nil {
			return nil, err
		}
	}
	if flags.Changed("schema") {
		cfg.Schema, _ = flags.GetString("schema")
	}
	if flags.Changed("in") {
		cfg.Input, _ = flags.GetString("in")
	}
	if flags.Changed("out") {
		cfg.Output, _ = flags.GetString("out")
	}
	if flags.Changed("workers") {
		cfg.Workers, _ = flags.GetInt("workers")
	}
	if flags.Changed("slice-queue") {
		cfg.SliceQueue, _ = flags.GetInt("slice-queue")
	}
	if flags.Changed("line-queue") {
		cfg.LineQueue, _ = flags.GetInt("line-queue")
	}
	if flags.Changed("fields") {
		fields, _ := flags.GetString("fields")
		cfg.Fields = config.ParseFields(fields)
	}
	if flags.Changed("sequential") {
		cfg.Sequential, _ = flags.GetBool("sequential")
	}
	if flags.Changed("on-error") {
		cfg.OnError, _ = flags.GetString("on-error")
	}
	if flags.Changed("sink") {
		cfg.Sink, _ = flags.GetString("sink")
	}
	if flags.Changed("strict-subcom") {
		cfg.StrictSubcom, _ = flags.GetBool("strict-subcom")
	}
	if flags.Changed("strict-arrays") {
		cfg.StrictArrays, _ = flags.GetBool("strict-arrays")
	}

	if cfg.Schema == "" || cfg.Input == "" || cfg.Output == "" {
		return nil, errors.New("schema, input and output are required")
	}
	if err = cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func openSink(cfg *config.Config) (sink.Sink, error) {
	if cfg.Sink == config.SinkPebble {
		return sink.NewPebble(cfg.Output, nil)
	}
	return sink.NewCSVFile(cfg.Output)
}

func init() {
	flags := decodeCmd.Flags()
	flags.String("config", "", "run config file, yaml or toml")
	flags.String("schema", "", "schema yaml file")
	flags.String("in", "", "input binary file")
	flags.String("out", "", "output csv file or pebble directory")
	flags.Int("workers", 0, "decode workers")
	flags.Int("slice-queue", 0, "record queue depth")
	flags.Int("line-queue", 0, "output line queue depth")
	flags.String("fields", "", "comma separated field filter")
	flags.Bool("sequential", false, "decode on a single goroutine, also enables dynamic decoding")
	flags.String("on-error", config.OnErrorSkip, "record error policy: skip or abort")
	flags.String("sink", config.SinkCSV, "output sink: csv or pebble")
	flags.Bool("strict-subcom", false, "fail records whose subcom discriminant matches no branch")
	flags.Bool("strict-arrays", false, "fail records whose array size field is missing")
	rootCmd.AddCommand(decodeCmd)
}
