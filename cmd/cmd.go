// cmd.go - Haupt-CLI Setup und Root Command
// Hauptfunktionen: NewCLI, appendEnvDocs
package cmd

import (
	"fmt"
	"log"

	"github.com/spf13/cobra"

	"github.com/durchblick-ai/durchblick/envconfig"
)

// appendEnvDocs - Fuegt Umgebungsvariablen-Dokumentation zum Command hinzu
func appendEnvDocs(cmd *cobra.Command, envs []envconfig.EnvVar) {
	if len(envs) == 0 {
		return
	}

	envUsage := `
Environment Variables:
`
	for _, e := range envs {
		envUsage += fmt.Sprintf("      %-24s   %s\n", e.Name, e.Description)
	}

	cmd.SetUsageTemplate(cmd.UsageTemplate() + envUsage)
}

// NewCLI - Erstellt das Haupt-CLI mit allen Commands
func NewCLI() *cobra.Command {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	cobra.EnableCommandSorting = false

	rootCmd := &cobra.Command{
		Use:           "durchblick",
		Short:         "License-gated vision analysis for local models",
		SilenceUsage:  true,
		SilenceErrors: true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		Run: func(cmd *cobra.Command, args []string) {
			if version, _ := cmd.Flags().GetBool("version"); version {
				versionHandler(cmd, args)
				return
			}

			cmd.Print(cmd.UsageString())
		},
	}

	rootCmd.Flags().BoolP("version", "v", false, "Show version information")

	// Commands erstellen
	serveCmd := newServeCmd()
	analyzeCmd := newAnalyzeCmd()
	usageCmd := newUsageCmd()

	// Environment-Dokumentation hinzufuegen
	envVars := envconfig.AsMap()
	envs := []envconfig.EnvVar{envVars["DURCHBLICK_HOST"]}

	for _, cmd := range []*cobra.Command{
		serveCmd,
		analyzeCmd,
		usageCmd,
	} {
		switch cmd {
		case serveCmd:
			appendEnvDocs(cmd, []envconfig.EnvVar{
				envVars["DURCHBLICK_DEBUG"],
				envVars["DURCHBLICK_HOST"],
				envVars["DURCHBLICK_RUNNER"],
				envVars["DURCHBLICK_ORIGINS"],
				envVars["DURCHBLICK_TRUSTED_HOSTS"],
				envVars["DURCHBLICK_DATA"],
				envVars["DURCHBLICK_VISION_MODEL"],
				envVars["DURCHBLICK_VISION_DEV_MODE"],
				envVars["DURCHBLICK_VISION_TIMEOUT"],
				envVars["DURCHBLICK_FETCH_TIMEOUT"],
				envVars["DURCHBLICK_VISION_MAX_LONG_EDGE"],
				envVars["DURCHBLICK_VISION_MAX_PIXELS"],
				envVars["DURCHBLICK_VISION_JPEG_QUALITY"],
				envVars["KEYGEN_ACCOUNT_ID"],
				envVars["KEYGEN_API_KEY"],
			})
		default:
			appendEnvDocs(cmd, envs)
		}
	}

	rootCmd.AddCommand(
		serveCmd,
		analyzeCmd,
		usageCmd,
	)

	return rootCmd
}
