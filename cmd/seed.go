package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/Lumos-Labs-HQ/medload/internal/config"
	"github.com/Lumos-Labs-HQ/medload/internal/seeder"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Populate the healthcare tables with synthetic data",
	Long: `
Generate synthetic Patients, Doctors, Appointments and MedicalHistory rows and
insert them in parallel.

Phase 1 fills Patients and Doctors. Their ids are then read back and phase 2
fills Appointments and MedicalHistory with foreign keys drawn from those ids.

A worker that hits a database error stops and its remaining rows are lost;
the other workers carry on, the summary lists what was written and the
command exits non-zero. Use --fail-fast to stop a table's remaining workers
instead.

Examples:
  medload seed
  medload seed --patients 1000 --doctors 50 --appointments 5000 --histories 2000
  medload seed --workers 4 --batch 5000 --truncate

Patients and Doctors populate together, so workers x 2 must not exceed
database.max_conns.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		applySeedFlags(cmd, cfg)

		width, err := seeder.PhaseWidth(healthcareTables)
		if err != nil {
			return err
		}
		if err := cfg.CheckPoolCapacity(width); err != nil {
			return fmt.Errorf("invalid config: %w", err)
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		rt, err := newRuntime(ctx, cfg)
		if err != nil {
			return err
		}
		defer rt.Close()

		return runSeed(ctx, rt)
	},
}

func init() {
	rootCmd.AddCommand(seedCmd)
	registerSeedFlags(seedCmd)
}

func registerSeedFlags(cmd *cobra.Command) {
	cmd.Flags().Int("patients", 0, "Number of patients to generate")
	cmd.Flags().Int("doctors", 0, "Number of doctors to generate")
	cmd.Flags().Int("appointments", 0, "Number of appointments to generate")
	cmd.Flags().Int("histories", 0, "Number of medical history rows to generate")
	cmd.Flags().IntP("workers", "w", 0, "Workers per table")
	cmd.Flags().IntP("batch", "b", 0, "Rows per transaction")
	cmd.Flags().String("distribution", "", "How rows are split across workers (strict or truncate)")
	cmd.Flags().Bool("fail-fast", false, "Stop a table's other workers when one fails")
	cmd.Flags().Bool("truncate", false, "Empty the tables before seeding")
	cmd.Flags().Uint64("seed", 0, "Random seed (0 picks one)")
	cmd.Flags().Duration("join-timeout", 0, "Stop waiting for a table's workers after this long")
}

// applySeedFlags overrides config values with the flags given on the
// command line.
func applySeedFlags(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()
	tableFlags := map[string]string{
		"patients":     config.TablePatients,
		"doctors":      config.TableDoctors,
		"appointments": config.TableAppointments,
		"histories":    config.TableMedicalHistory,
	}
	for flag, key := range tableFlags {
		if flags.Changed(flag) {
			cfg.Seed.Tables[key], _ = flags.GetInt(flag)
		}
	}
	if flags.Changed("workers") {
		cfg.Seed.Workers, _ = flags.GetInt("workers")
	}
	if flags.Changed("batch") {
		cfg.Seed.BatchSize, _ = flags.GetInt("batch")
	}
	if flags.Changed("distribution") {
		cfg.Seed.Distribution, _ = flags.GetString("distribution")
	}
	if flags.Changed("fail-fast") {
		cfg.Seed.FailFast, _ = flags.GetBool("fail-fast")
	}
	if flags.Changed("truncate") {
		cfg.Seed.Truncate, _ = flags.GetBool("truncate")
	}
	if flags.Changed("seed") {
		cfg.Seed.RandomSeed, _ = flags.GetUint64("seed")
	}
	if flags.Changed("join-timeout") {
		cfg.Seed.JoinTimeout, _ = flags.GetDuration("join-timeout")
	}
}

var errRowsLost = errors.New("rows lost to worker failures")

func runSeed(ctx context.Context, rt *runtime) error {
	report, err := rt.seeder.Seed(ctx, seedConfig(rt.cfg))
	if report != nil {
		printReport(report)
	}
	return seedOutcome(report, err)
}

// seedOutcome turns a finished run into the command's exit status. Fatal
// errors pass through; a run that completed with failed workers or a join
// timeout also fails.
func seedOutcome(report *seeder.RunReport, err error) error {
	if err != nil {
		return err
	}
	if report.Degraded() {
		return fmt.Errorf("%w: %d of %d rows written", errRowsLost, report.TotalWritten(), report.TotalRequested())
	}
	return nil
}

func seedConfig(cfg *config.Config) seeder.SeedConfig {
	return seeder.SeedConfig{
		Counts:       cfg.Seed.Tables,
		Workers:      cfg.Seed.Workers,
		BatchSize:    cfg.Seed.BatchSize,
		JoinTimeout:  cfg.Seed.JoinTimeout,
		Distribution: seeder.Distribution(cfg.Seed.Distribution),
		FailFast:     cfg.Seed.FailFast,
		Truncate:     cfg.Seed.Truncate,
	}
}

func printReport(report *seeder.RunReport) {
	fmt.Println()
	color.Cyan("📊 Run %s", report.RunID)
	fmt.Printf("   %-16s %12s %12s %10s %8s\n", "TABLE", "REQUESTED", "WRITTEN", "BATCHES", "FAILED")
	for _, t := range report.Tables {
		line := fmt.Sprintf("   %-16s %12d %12d %10d %8d", t.Table, t.Requested, t.Written, t.Batches, len(t.FailedWorkers()))
		if t.Lost() > 0 {
			color.Yellow("%s", line)
		} else {
			fmt.Println(line)
		}
		for _, w := range t.FailedWorkers() {
			color.Red("     ❌ worker %d: %v", w.Worker, w.Err)
		}
	}
	fmt.Println()

	if report.Degraded() {
		color.Yellow("⚠️  %d of %d rows written in %.2fs", report.TotalWritten(), report.TotalRequested(), report.Elapsed.Seconds())
		return
	}
	color.Green("✅ %d rows written in %.2fs", report.TotalWritten(), report.Elapsed.Seconds())
}
