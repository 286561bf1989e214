// Command exjson is a thin CLI wrapping the exjson loader, for manually
// exercising the pipeline against a file on disk.
package main

import (
	"encoding/json"
	"os"

	"github.com/spf13/cobra"

	"github.com/lefeck/exjson"
	"github.com/lefeck/exjson/dump"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "exjson",
		Short: "Load and inspect extended-JSON documents",
	}
	root.AddCommand(newLoadCmd())
	return root
}

func newLoadCmd() *cobra.Command {
	var (
		includesPath   string
		errorOnMissing bool
		asYAML         bool
	)

	cmd := &cobra.Command{
		Use:   "load <file>",
		Short: "Resolve includes and expressions, printing the final document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := []exjson.Option{exjson.WithErrorOnMissing(errorOnMissing)}
			if includesPath != "" {
				opts = append(opts, exjson.WithIncludesPath(includesPath))
			}
			doc, err := exjson.Load(args[0], opts...)
			if err != nil {
				return err
			}
			if asYAML {
				out, err := dump.ToYAML(doc)
				if err != nil {
					return err
				}
				_, err = cmd.OutOrStdout().Write(out)
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(doc)
		},
	}

	cmd.Flags().StringVar(&includesPath, "includes-path", "", "fallback directory for relative include paths")
	cmd.Flags().BoolVar(&errorOnMissing, "error-on-missing", false, "fail on an unresolvable include with no default")
	cmd.Flags().BoolVar(&asYAML, "yaml", false, "print the resolved document as YAML instead of JSON")

	return cmd
}
