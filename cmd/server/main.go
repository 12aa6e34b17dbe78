package main

import (
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/iliyamo/incident-report-tracker/internal/config"
)

var (
	logLevel = "info"
	envFile  = ".env"
)

var rootCmd = &cobra.Command{
	Use:   "incident-server",
	Short: "Incident report tracker API",
	Long: `Tracks employees, incident reports and the audit log of every status a
report has held, and notifies administrators of report changes.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level, err := log.ParseLevel(logLevel)
		if err != nil {
			log.WithError(err).Fatal("cannot parse log-level")
		}
		log.SetLevel(level)
		config.LoadDotEnv(envFile)
		log.Debug("debug logging enabled")
	},
}

func main() {
	formatter := new(log.TextFormatter)
	formatter.TimestampFormat = "2006-01-02T15:04:05.999Z07:00"
	formatter.FullTimestamp = true
	log.SetFormatter(formatter)

	rootCmd.AddCommand(
		newServeCommand(),
		newMigrateCommand(),
		newCreateUserCommand(),
	)

	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", logLevel,
		"Log level (trace,debug,info,warn,error)")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", envFile,
		"Optional dotenv file loaded before reading the environment")

	if err := rootCmd.Execute(); err != nil {
		log.WithError(err).Fatal("could not execute root command")
	}
}
