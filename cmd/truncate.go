package cmd

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var truncateCmd = &cobra.Command{
	Use:   "truncate",
	Short: "Delete every row from the healthcare tables",
	Long: `
Empty MedicalHistory, Appointments, Patients and Doctors, dependents first,
and reset their id sequences where the database allows it.

⚠️  WARNING: This permanently deletes the data in those tables!

Use --force to skip the confirmation prompt.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		rt, err := loadRuntime(ctx)
		if err != nil {
			return err
		}
		defer rt.Close()

		force, _ := cmd.Flags().GetBool("force")
		if !force && !confirm("Delete all rows from the healthcare tables?") {
			color.Yellow("Aborted")
			return nil
		}

		return rt.seeder.Truncate(ctx)
	},
}

func confirm(question string) bool {
	fmt.Printf("%s [y/N]: ", question)
	answer, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil {
		return false
	}
	answer = strings.ToLower(strings.TrimSpace(answer))
	return answer == "y" || answer == "yes"
}

func init() {
	rootCmd.AddCommand(truncateCmd)
}
