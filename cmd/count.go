package cmd

import (
	"context"
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var countCmd = &cobra.Command{
	Use:   "count",
	Short: "Show the row count of every healthcare table",
	Long: `
Print SELECT COUNT(*) for each table in insertion order. Compare the numbers
with the requested volumes to spot rows lost to failed workers.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		rt, err := loadRuntime(ctx)
		if err != nil {
			return err
		}
		defer rt.Close()

		counts, err := rt.seeder.Counts(ctx)
		if err != nil {
			return err
		}

		color.Cyan("📊 Row counts")
		for _, c := range counts {
			want := rt.cfg.Seed.Tables[tableKey(c.Table)]
			line := fmt.Sprintf("   %-16s %12d", c.Table, c.Rows)
			switch {
			case c.Rows == 0:
				color.Yellow("%s  (empty)", line)
			case int(c.Rows) < want:
				color.Yellow("%s  (%d below configured %d)", line, want-int(c.Rows), want)
			default:
				fmt.Println(line)
			}
		}
		return nil
	},
}

func tableKey(name string) string {
	for _, spec := range healthcareTables {
		if spec.Name == name {
			return spec.Key
		}
	}
	return ""
}

func init() {
	rootCmd.AddCommand(countCmd)
}
