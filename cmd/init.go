package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/Lumos-Labs-HQ/medload/template"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var (
	sqliteFlag     bool
	postgresqlFlag bool
	mysqlFlag      bool
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a medload config, .env and schema",
	Long: `Write medload.config.yaml, a DATABASE_URL entry in .env and db/schema.sql
with the Patients, Doctors, Appointments and MedicalHistory tables for the
chosen database. Existing files are left alone.

The database is picked with a flag or by name:
  medload init --mysql
  medload init sqlite`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dbType := template.PostgreSQL
		flagCount := 0

		if len(args) == 1 {
			parsed, err := template.ParseDatabaseType(args[0])
			if err != nil {
				return err
			}
			dbType = parsed
			flagCount++
		}

		if sqliteFlag {
			dbType = template.SQLite
			flagCount++
		}
		if postgresqlFlag {
			dbType = template.PostgreSQL
			flagCount++
		}
		if mysqlFlag {
			dbType = template.MySQL
			flagCount++
		}

		if flagCount > 1 {
			return fmt.Errorf("please specify only one database type (--sqlite, --postgresql, --mysql or a name)")
		}

		return initializeProject(".", dbType)
	},
}

func init() {
	rootCmd.AddCommand(initCmd)

	initCmd.Flags().BoolVar(&sqliteFlag, "sqlite", false, "Initialize project for SQLite database")
	initCmd.Flags().BoolVar(&postgresqlFlag, "postgresql", false, "Initialize project for PostgreSQL database")
	initCmd.Flags().BoolVar(&mysqlFlag, "mysql", false, "Initialize project for MySQL database")
}

func initializeProject(dir string, dbType template.DatabaseType) error {
	tmpl := template.NewProjectTemplate(dbType)

	for _, d := range tmpl.GetDirectoryStructure() {
		if err := os.MkdirAll(filepath.Join(dir, d), 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", d, err)
		}
	}

	configContent, err := tmpl.GetConfig()
	if err != nil {
		return err
	}

	files := map[string]string{
		template.ConfigFile: configContent,
		"db/schema.sql":     tmpl.GetSchema(),
	}

	var created, skipped []string
	for name, content := range files {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err == nil {
			skipped = append(skipped, name)
			continue
		}
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			return fmt.Errorf("failed to create file %s: %w", name, err)
		}
		created = append(created, name)
	}

	if err := handleEnvFile(filepath.Join(dir, ".env"), tmpl.GetEnvTemplate()); err != nil {
		return fmt.Errorf("failed to handle .env file: %w", err)
	}

	color.Green("✅ Initialized medload for %s", dbType)
	for _, name := range created {
		fmt.Printf("   📝 %s\n", name)
	}
	for _, name := range skipped {
		fmt.Printf("   ℹ️  Skipped %s (already exists)\n", name)
	}

	if os.Getenv("DATABASE_URL") != "" {
		fmt.Println()
		fmt.Println("ℹ️  Using existing DATABASE_URL from environment")
	}

	fmt.Println()
	fmt.Printf("🚀 Next steps:\n")
	fmt.Printf("   Apply db/schema.sql to your database\n")
	fmt.Printf("   medload seed --patients 1000 --doctors 50   # Small trial run\n")
	fmt.Printf("   medload count                               # Check row counts\n")

	return nil
}

func handleEnvFile(envPath, defaultEnvContent string) error {
	existingContent, err := os.ReadFile(envPath)
	if err != nil {
		if os.IsNotExist(err) {
			return os.WriteFile(envPath, []byte(defaultEnvContent), 0644)
		}
		return err
	}

	existingStr := string(existingContent)
	if strings.Contains(existingStr, "DATABASE_URL") {
		return nil
	}

	if len(existingStr) > 0 && !strings.HasSuffix(existingStr, "\n") {
		existingStr += "\n"
	}

	existingStr += "\n# Added by medload\n" + defaultEnvContent

	return os.WriteFile(envPath, []byte(existingStr), 0644)
}
