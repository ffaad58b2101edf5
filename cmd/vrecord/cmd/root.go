package cmd

import (
	"os"

	"github.com/spf13/cobra"
	"github.com/vuuvv/vrecord"
	"github.com/vuuvv/vrecord/log"
)

var rootCmd = &cobra.Command{
	Use:   "vrecord",
	Short: "Decode fixed layout binary telemetry records",
	Long: `vrecord decodes files of back-to-back binary records described by a
yaml schema into csv lines or a pebble store, keeping the input order while
decoding on many workers.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		level, _ := cmd.Flags().GetString("log-level")
		return vrecord.Setup(level)
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		log.Error(err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().String("log-level", "", "log level: debug, info, warn, error")
}
