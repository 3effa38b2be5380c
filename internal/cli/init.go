package cli

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"
)

func newInitCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Create the configuration and data directories",
		Long:  "Create the configuration directory with a default config.yaml and initialize the configured store.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			created, err := writeDefaultConfig(a.configDir)
			if err != nil {
				return sysErr(err)
			}

			// The store opened during setup has already created the data
			// directory; loading confirms the snapshot is readable.
			if _, err := a.svc.Backlog(); err != nil {
				return classify(err)
			}

			if a.flagJSON {
				return printJSON(cmd.OutOrStdout(), map[string]any{
					"config_dir":     a.configDir,
					"config_created": created,
					"data_dir":       a.dataDir,
					"exports_dir":    a.exportsDir,
					"backend":        a.cfg.Backend,
				})
			}

			w := cmd.OutOrStdout()
			successColor.Fprintln(w, "sprintplan initialized")
			configPath := filepath.Join(a.configDir, configFileExt)
			if created {
				fmt.Fprintln(w, "  config: ", configPath, "(created)")
			} else {
				fmt.Fprintln(w, "  config: ", configPath)
			}
			fmt.Fprintln(w, "  data:   ", a.dataDir)
			fmt.Fprintln(w, "  exports:", a.exportsDir)
			fmt.Fprintln(w, "  backend:", a.cfg.Backend)
			return nil
		},
	}
}
