package main

import (
	"github.com/sameerjoshi/docsimus-physicians-sub001/cmd/bootstrap"

	"github.com/sirupsen/logrus"
	"github.com/spf13/pflag"
)

func main() {
	configPath := pflag.StringP("config", "c", ".env", "path to the dotenv configuration file")
	migrateOnly := pflag.Bool("migrate", false, "apply database migrations and exit")
	pflag.Parse()

	// Initialize application with all dependencies
	app, err := bootstrap.New(bootstrap.Options{
		ConfigPath:  *configPath,
		MigrateOnly: *migrateOnly,
	})
	if err != nil {
		logrus.Fatalf("Failed to initialize application: %v", err)
	}
	if *migrateOnly {
		app.Close()
		logrus.Info("Migrations applied")
		return
	}

	// Run the application
	app.Run()
}
