// confctl is the operator tool: schema migration, admin password hashing and
// taxonomy export.
package main

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"

	"conference-api/config"
	"conference-api/models"
	"conference-api/services"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	verbose      bool
	taxonomyPath string

	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "confctl",
	Short: "Operator commands for the conference API",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		zc := zap.NewDevelopmentConfig()
		if !verbose {
			zc.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
		}
		var err error
		logger, err = zc.Build()
		return err
	},
	SilenceUsage: true,
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database tables",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.FromEnv()
		db, err := config.InitDB(cfg, logger)
		if err != nil {
			return err
		}
		if err := config.Migrate(db); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
		logger.Info("migration completed")
		return nil
	},
}

var hashPasswordCmd = &cobra.Command{
	Use:   "hash-password [password]",
	Short: "Print a bcrypt hash for ADMIN_PASSWORD_HASH",
	Long:  "Hashes the argument, or the first line of stdin when no argument is given.",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		password := ""
		if len(args) == 1 {
			password = args[0]
		} else {
			line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
			if err != nil && line == "" {
				return fmt.Errorf("read password: %w", err)
			}
			password = strings.TrimRight(line, "\r\n")
		}
		if password == "" {
			return errors.New("password must not be empty")
		}

		hash, err := services.HashPassword(password)
		if err != nil {
			return fmt.Errorf("hash password: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), hash)
		return nil
	},
}

var taxonomyCmd = &cobra.Command{
	Use:   "taxonomy",
	Short: "Print the effective track taxonomy as YAML",
	Long:  "Prints the built-in taxonomy, or the file given by --file / TAXONOMY_FILE after validating it.",
	RunE: func(cmd *cobra.Command, args []string) error {
		path := taxonomyPath
		if path == "" {
			path = os.Getenv("TAXONOMY_FILE")
		}
		taxonomy, err := services.LoadTaxonomy(path)
		if err != nil {
			return err
		}

		out, err := config.EncodeTaxonomyFile(config.TaxonomyFile{
			Tracks:             taxonomy.Tracks(),
			CrossCuttingThemes: taxonomy.CrossCuttingThemes(),
		})
		if err != nil {
			return err
		}
		_, err = cmd.OutOrStdout().Write(out)
		return err
	},
}

var statusesCmd = &cobra.Command{
	Use:   "statuses",
	Short: "List the abstract statuses accepted by the API",
	Run: func(cmd *cobra.Command, args []string) {
		for _, s := range models.CanonicalStatuses {
			marker := ""
			if models.IsDecisionStatus(s) {
				marker = " (notifies author)"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s%s\n", s, marker)
		}
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	taxonomyCmd.Flags().StringVarP(&taxonomyPath, "file", "f", "", "Taxonomy YAML file to validate and print")

	rootCmd.AddCommand(migrateCmd, hashPasswordCmd, taxonomyCmd, statusesCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
