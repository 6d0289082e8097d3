package cli

import (
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// NewRootCmd builds the diligenced command tree
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "diligenced",
		Short:         "Due-diligence questionnaire answering service",
		Long:          "Answers due-diligence questionnaires from indexed documents with cited, LLM-generated answers",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(ServeCmd())
	rootCmd.AddCommand(GenerateCmd())
	rootCmd.AddCommand(AnswerCmd())
	rootCmd.AddCommand(QuestionsCmd())

	return rootCmd
}

// addDatabaseFlags registers the migration flags shared by commands that open the database
func addDatabaseFlags(fs *pflag.FlagSet) {
	fs.Bool("no-migrate", false, "Skip automatic database migrations on startup")
	fs.String("migrations", "migrations", "Directory holding the SQL migrations")
}

func appOptions(fs *pflag.FlagSet) AppOptions {
	noMigrate, _ := fs.GetBool("no-migrate")
	dir, _ := fs.GetString("migrations")
	return AppOptions{Migrate: !noMigrate, MigrationsDir: dir}
}
