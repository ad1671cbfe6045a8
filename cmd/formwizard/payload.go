package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

func newPayloadCmd(c *cli) *cobra.Command {
	var (
		valuesPath string
		validate   bool
	)
	cmd := &cobra.Command{
		Use:   "payload <form>",
		Short: "Print the submission payload built from a values file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			values, err := readValues(valuesPath)
			if err != nil {
				return err
			}
			o, err := c.orchestrator(ctx)
			if err != nil {
				return err
			}

			doc, err := o.Payload(args[0], values)
			if doc == nil {
				return err
			}
			if err != nil {
				c.logger.Warn().Err(err).Msg("some values were rejected")
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			if err := enc.Encode(doc); err != nil {
				return err
			}
			if validate {
				return o.Validate(args[0], doc)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&valuesPath, "values", "", "YAML or JSON file mapping field names to values")
	cmd.Flags().BoolVar(&validate, "validate", false, "Check the payload against the form's contract")
	return cmd
}

// readValues loads a flat field map. Scalars of any type are accepted and
// kept in their text form; an empty path yields no values.
func readValues(path string) (map[string]string, error) {
	if path == "" {
		return nil, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read values: %w", err)
	}
	var decoded map[string]any
	if err := yaml.Unmarshal(raw, &decoded); err != nil {
		return nil, fmt.Errorf("parse values %s: %w", path, err)
	}

	values := make(map[string]string, len(decoded))
	for name, value := range decoded {
		switch v := value.(type) {
		case nil:
			values[name] = ""
		case map[string]any, []any:
			return nil, fmt.Errorf("parse values %s: %s must be a scalar", path, name)
		default:
			values[name] = fmt.Sprint(v)
		}
	}
	return values, nil
}
