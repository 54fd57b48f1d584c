package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

func newSchemasCmd() *cobra.Command {
	var name string
	cmd := &cobra.Command{
		Use:   "schemas",
		Short: "Print the registered payload schemas as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			reg, err := newRegistry()
			if err != nil {
				return fmt.Errorf("registering schemas: %w", err)
			}

			var v any = reg.Describe()
			if name != "" {
				schema, err := reg.Get(name)
				if err != nil {
					return err
				}
				v = schema.Describe()
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(v)
		},
	}
	cmd.Flags().StringVarP(&name, "name", "n", "", "print only the named schema")
	return cmd
}
