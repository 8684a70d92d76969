package main

import (
	"fmt"

	"github.com/aretw0/weaver/pkg/advice"
	"github.com/aretw0/weaver/pkg/plan"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate <plan>",
	Short: "Check an augmentation plan",
	Long:  `Parses the plan (YAML, JSON or TOML) and reports every missing field, duplicate target, unknown advice kind and bad parameter.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := runValidate(args[0]); err != nil {
			return fmt.Errorf("validation failed:\n%w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Plan is valid! ✅")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func runValidate(path string) error {
	p, err := plan.Load(path)
	if err != nil {
		return err
	}
	return plan.Validate(p, validationCatalog())
}

// validationCatalog resolves every kind without side effects.
func validationCatalog() plan.Catalog {
	return plan.DefaultCatalog(plan.Deps{
		Observer: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name: "weaver_validate_seconds",
			Help: "unused",
		}, advice.TimeLabels),
	})
}
