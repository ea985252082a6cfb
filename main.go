package main

import (
	"fmt"
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/5amCurfew/tap-linnworks/cmd"
	"github.com/5amCurfew/tap-linnworks/models"
)

var version = "0.1.0"

var discover bool
var about bool
var configPath string
var statePath string
var catalogPath string

func main() {
	Execute()
}

func Execute() {
	rootCmd.Flags().BoolVarP(&discover, "discover", "d", false, "run the tap in discovery mode, printing the catalog to stdout")
	rootCmd.Flags().BoolVar(&about, "about", false, "print tap information and config requirements")
	rootCmd.Flags().StringVar(&configPath, "config", "", "path to the config JSON file, or ENV to source config from LINNWORKS_* environment variables only")
	rootCmd.Flags().StringVar(&statePath, "state", "state.json", "path to the state JSON file")
	rootCmd.Flags().StringVar(&catalogPath, "catalog", "", "path to a catalog JSON file used for stream selection")

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
	os.Exit(0)
}

var rootCmd = &cobra.Command{
	Use:           "tap-linnworks [PATH_TO_CONFIG_JSON]",
	Version:       version,
	Short:         "tap-linnworks - Linnworks data extraction CLI",
	Long:          `tap-linnworks is a command line interface to extract orders and inventory from the Linnworks API to pipe to any target that meets the Singer.io specification.`,
	Args:          cobra.MaximumNArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(command *cobra.Command, args []string) error {
		log.SetFormatter(&log.JSONFormatter{})
		log.SetOutput(os.Stderr) // stdout carries Singer messages only

		if about {
			return cmd.About(version)
		}

		if discover {
			return cmd.Discover()
		}

		// Default to config.json if no path is provided
		cfgPath := "config.json"
		if configPath != "" {
			cfgPath = configPath
		} else if len(args) > 0 {
			cfgPath = args[0]
		} else {
			log.Info("no config JSON path provided, defaulting to config.json")
		}

		if cfgPath != "ENV" {
			if err := models.Config.Read(cfgPath); err != nil {
				log.WithFields(log.Fields{"error": err}).Error("failed to parse config JSON")
				return fmt.Errorf("error parsing config JSON: %w", err)
			}
		}

		models.Config.MergeEnv()

		if err := models.Config.Validate(); err != nil {
			log.WithFields(log.Fields{"error": err}).Error("invalid config")
			return err
		}

		if err := cmd.Extract(statePath, catalogPath); err != nil {
			log.WithFields(log.Fields{"error": err}).Error("failed to extract records")
			return fmt.Errorf("failed to extract records: %w", err)
		}

		return nil
	},
}
