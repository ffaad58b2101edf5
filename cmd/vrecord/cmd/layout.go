package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/vuuvv/errors"
	"github.com/vuuvv/vrecord/config"
	"github.com/vuuvv/vrecord/core"
)

var layoutCmd = &cobra.Command{
	Use:   "layout",
	Short: "Print the located layout of a schema",
	Long: `Print every located field of a schema with its type and byte offset.

Example:
  vrecord layout --schema telemetry.yaml --fields temp,volt`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		schemaPath, _ := cmd.Flags().GetString("schema")
		fields, _ := cmd.Flags().GetString("fields")
		scheme, err := core.NewSchemeFromFile(schemaPath)
		if err != nil {
			return err
		}
		layout, err := core.Locate(scheme.ParsedDef)
		if err != nil {
			if nl, ok := core.AsNotLocatable(err); ok {
				return errors.Errorf("schema %s has no static layout: %s", scheme.Name, nl.Error())
			}
			return err
		}
		layout, err = layout.Filter(config.ParseFields(fields))
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		_, _ = fmt.Fprintln(w, "OFFSET\tTYPE\tPATH")
		for _, item := range layout.Items {
			_, _ = fmt.Fprintf(w, "%d\t%s\t%s\n", item.Offset, item.Type, item.PathString())
		}
		_, _ = fmt.Fprintf(w, "record size: %d bytes\n", layout.Size)
		return w.Flush()
	},
}

func init() {
	layoutCmd.Flags().String("schema", "", "schema yaml file")
	layoutCmd.Flags().String("fields", "", "comma separated field filter")
	_ = layoutCmd.MarkFlagRequired("schema")
	rootCmd.AddCommand(layoutCmd)
}
