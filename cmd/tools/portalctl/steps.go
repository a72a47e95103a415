package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"admission-portal/internal/models"
	"admission-portal/internal/wizard"
)

var stepsFlags struct {
	appType string
}

var stepsCmd = &cobra.Command{
	Use:   "steps",
	Short: "List the form steps for an application type",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		t := models.ApplicationType(stepsFlags.appType)
		if !t.Valid() {
			return fmt.Errorf("unknown application type %q (want undergraduate or postgraduate)", stepsFlags.appType)
		}
		for n := 1; n <= wizard.TotalSteps(t); n++ {
			step, _ := wizard.StepAt(t, n)
			fmt.Fprintf(cmd.OutOrStdout(), "%d. %s (%s)\n", n, wizard.StepTitle(t, n), step)
		}
		return nil
	},
}

func init() {
	stepsCmd.Flags().StringVarP(&stepsFlags.appType, "type", "t", string(models.ApplicationTypeUndergraduate), "Application type: undergraduate or postgraduate")
}
