package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/funnydev94625/AdGen/engine"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check credentials, tools, and directories",
	RunE: func(cmd *cobra.Command, args []string) error {
		failed := 0
		for _, c := range engine.ValidateSetup(cfg) {
			mark := "ok"
			if !c.OK {
				mark = "MISSING"
				failed++
			}
			fmt.Printf("%-28s %-8s %s\n", c.Name, mark, c.Note)
		}
		if failed > 0 {
			return fmt.Errorf("%d check(s) failed", failed)
		}
		return nil
	},
}
