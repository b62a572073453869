// Command pqrctl runs administrative tasks against the PQR database.
package main

import (
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"syscall"
	"time"

	"pqr_flow_app_go/config"
	"pqr_flow_app_go/db"
	"pqr_flow_app_go/models"
	"pqr_flow_app_go/services"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pqrctl",
		Short: "Administrative tasks for the PQR service",
		Long: `Administrative tasks for the PQR service.

The database is selected with the same environment variables the server
uses (DB_DRIVER, DB_PATH, DATABASE_URL, TURSO_DATABASE_URL).

Examples:
  pqrctl status
  pqrctl setup
  pqrctl reset-password
  pqrctl backup --format yaml --out respaldo.yaml
`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return openDatabase()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if err := db.Close(); err != nil {
				log.Printf("Failed to close database: %v", err)
			}
		},
	}

	cmd.AddCommand(statusCmd(), setupCmd(), resetPasswordCmd(), backupCmd())
	return cmd
}

func openDatabase() error {
	cfg := config.Load()
	if err := db.Initialize(cfg); err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	if err := db.AutoMigrate(models.All()...); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}

func statusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show whether first-run setup has been completed",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := services.GetSystemConfig(db.DB)
			if err != nil && !errors.Is(err, services.ErrNotConfigured) {
				return err
			}
			out := cmd.OutOrStdout()
			if cfg == nil || !cfg.FirstSetupDone {
				fmt.Fprintln(out, "Setup: pending")
				return nil
			}
			fmt.Fprintln(out, "Setup: done")
			fmt.Fprintf(out, "Office: %s\n", cfg.DisplayName())
			fmt.Fprintf(out, "Case number prefix: %s\n", cfg.CaseNumberPrefix)
			if cfg.LastBackupAt != nil {
				fmt.Fprintf(out, "Last backup: %s\n", cfg.LastBackupAt.Format(time.RFC3339))
			}
			return nil
		},
	}
}

func setupCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "setup",
		Short: "Complete first-run setup and set the office password",
		RunE: func(cmd *cobra.Command, args []string) error {
			password, err := readNewPassword(cmd.OutOrStdout())
			if err != nil {
				return err
			}
			if _, err := services.Setup(db.DB, password); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Setup completed.")
			return nil
		},
	}
}

func resetPasswordCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reset-password",
		Short: "Replace the office password without the current one",
		RunE: func(cmd *cobra.Command, args []string) error {
			password, err := readNewPassword(cmd.OutOrStdout())
			if err != nil {
				return err
			}
			if err := services.OverridePassword(db.DB, password); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Password updated.")
			return nil
		},
	}
}

func backupCmd() *cobra.Command {
	var (
		format string
		out    string
	)

	cmd := &cobra.Command{
		Use:   "backup",
		Short: "Export the database to a JSON or YAML file",
		RunE: func(cmd *cobra.Command, args []string) error {
			backupFormat, err := services.ParseBackupFormat(format)
			if err != nil {
				return err
			}
			backup, err := services.CreateBackup(db.DB)
			if err != nil {
				return err
			}

			var w io.Writer = cmd.OutOrStdout()
			if out != "" && out != "-" {
				f, err := os.Create(out)
				if err != nil {
					return fmt.Errorf("failed to create %s: %w", out, err)
				}
				defer f.Close()
				w = f
			}
			if err := services.WriteBackup(w, backup, backupFormat); err != nil {
				return err
			}
			if out != "" && out != "-" {
				fmt.Fprintf(cmd.ErrOrStderr(), "Backup written to %s (%d rows)\n", out, backup.RowCount())
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&format, "format", string(services.BackupFormatJSON), "Backup format (json or yaml)")
	cmd.Flags().StringVarP(&out, "out", "o", "", "Output file (default stdout)")
	return cmd
}

// readNewPassword prompts twice without echoing the input
func readNewPassword(out io.Writer) (string, error) {
	fmt.Fprint(out, "New password: ")
	first, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Fprintln(out)
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}

	fmt.Fprint(out, "Repeat password: ")
	second, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Fprintln(out)
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}

	if string(first) != string(second) {
		return "", fmt.Errorf("passwords do not match")
	}
	return string(first), nil
}
