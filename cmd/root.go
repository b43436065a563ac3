package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/Lumos-Labs-HQ/medload/internal/config"
	"github.com/fatih/color"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile string
	Version = "0.3.0"
)

func showBanner() {
	greenColor := color.New(color.FgGreen, color.Bold)

	banner := []string{
		"╔══════════════════════════════════════════════════════════════╗",
		"║   ███╗   ███╗███████╗██████╗ ██╗      ██████╗  █████╗ ██████╗  ║",
		"║   ████╗ ████║██╔════╝██╔══██╗██║     ██╔═══██╗██╔══██╗██╔══██╗ ║",
		"║   ██╔████╔██║█████╗  ██║  ██║██║     ██║   ██║███████║██║  ██║ ║",
		"║   ██║╚██╔╝██║██╔══╝  ██║  ██║██║     ██║   ██║██╔══██║██║  ██║ ║",
		"║   ██║ ╚═╝ ██║███████╗██████╔╝███████╗╚██████╔╝██║  ██║██████╔╝ ║",
		"║   ╚═╝     ╚═╝╚══════╝╚═════╝ ╚══════╝ ╚═════╝ ╚═╝  ╚═╝╚═════╝  ║",
		"║                                                              ║",
		"║        🏥 Parallel Synthetic Healthcare Data Loader 🏥        ║",
		"╚══════════════════════════════════════════════════════════════╝",
	}

	for _, line := range banner {
		greenColor.Println(line)
	}

	fmt.Print("                        ")
	color.New(color.FgCyan, color.Bold).Print("Version: ")
	color.New(color.FgYellow, color.Bold).Printf("%s\n", Version)
}

var rootCmd = &cobra.Command{
	Use:   "medload",
	Short: "Load millions of synthetic healthcare rows into a relational database",
	Long: `
medload fills a Patients / Doctors / Appointments / MedicalHistory schema with
synthetic data for load testing and demos.

Tables are populated in phases: Patients and Doctors first, then their ids are
read back and used as foreign keys for Appointments and MedicalHistory. Every
table is split across a pool of workers, each writing through its own pooled
connection in fixed-size transactional batches.

Database Support:
- PostgreSQL (pgx pool, or lib/pq with database.driver: pq)
- MySQL
- SQLite`,

	Run: func(cmd *cobra.Command, args []string) {
		showVersion, _ := cmd.Flags().GetBool("version")
		if showVersion {
			fmt.Printf("medload version %s\n", Version)
			os.Exit(0)
		}

		if len(args) == 0 {
			showBanner()
			fmt.Println()
			cmd.Help()
		}
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./medload.config.yaml)")
	rootCmd.PersistentFlags().BoolP("force", "f", false, "Skip confirmations")
	rootCmd.PersistentFlags().String("log-level", "", "log level (trace, debug, info, warn, error)")
	rootCmd.PersistentFlags().String("log-format", "", "log format (console or json)")

	rootCmd.Flags().BoolP("version", "v", false, "Show CLI version")

	viper.BindPFlag("log.level", rootCmd.PersistentFlags().Lookup("log-level"))
	viper.BindPFlag("log.format", rootCmd.PersistentFlags().Lookup("log-format"))
}

func initConfig() {
	if err := godotenv.Load(); err != nil {
		godotenv.Load(".env")
		godotenv.Load(".env.local")
	}

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName("medload.config")
	}

	viper.SetEnvPrefix("MEDLOAD")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()
	config.RegisterDefaults()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok && cfgFile != "" {
			color.Yellow("⚠️  Could not read %s: %v", cfgFile, err)
		}
	}
}
