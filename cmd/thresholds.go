package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/sells-group/admet-cli/internal/triage"
)

var thresholdsCmd = &cobra.Command{
	Use:   "thresholds",
	Short: "Print the effective triage thresholds as YAML",
	RunE: func(cmd *cobra.Command, _ []string) error {
		rules := cfg.Triage
		if path, _ := cmd.Flags().GetString("rules"); path != "" {
			r, err := triage.LoadRules(path, rules)
			if err != nil {
				return err
			}
			rules = r
		}
		if err := triage.ValidateConfig(rules); err != nil {
			return err
		}

		out, err := triage.MarshalRules(rules)
		if err != nil {
			return err
		}
		_, err = os.Stdout.Write(out)
		return err
	},
}

func init() {
	thresholdsCmd.Flags().String("rules", "", "YAML thresholds profile to overlay")
	rootCmd.AddCommand(thresholdsCmd)
}
