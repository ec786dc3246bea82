package cli

import (
	"bytes"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/barrace/pkg/settings"
)

// defaultsCommand creates the defaults command, which prints the default
// settings as a starting point for a settings file.
func (c *CLI) defaultsCommand() *cobra.Command {
	var (
		asJSON bool
		output string
	)

	cmd := &cobra.Command{
		Use:   "defaults",
		Short: "Print the default settings",
		Long: `Defaults writes every setting with its default value, as TOML unless --json
is given. Edit the result and pass it to other commands with --settings.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := encodeDefaults(asJSON)
			if err != nil {
				return err
			}
			if output == "" {
				_, err := cmd.OutOrStdout().Write(data)
				return err
			}
			if err := os.WriteFile(output, data, 0o644); err != nil {
				return fmt.Errorf("write %s: %w", output, err)
			}
			printSuccess("Wrote default settings")
			printFile(output)
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "write JSON instead of TOML")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default stdout)")

	return cmd
}

func encodeDefaults(asJSON bool) ([]byte, error) {
	var buf bytes.Buffer
	encode := settings.Encode
	if asJSON {
		encode = settings.EncodeJSON
	}
	if err := encode(&buf, settings.Default()); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
