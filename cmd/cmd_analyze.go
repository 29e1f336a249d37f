// cmd_analyze.go - Einmal-Analyse gegen einen laufenden Server
// Hauptfunktionen: AnalyzeHandler, UsageHandler
package cmd

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/durchblick-ai/durchblick/api"
)

// AnalyzeHandler - Schickt ein Bild an /api/vision und gibt das Ergebnis aus
func AnalyzeHandler(cmd *cobra.Command, args []string) error {
	client, err := api.ClientFromEnvironment()
	if err != nil {
		return err
	}

	req := &api.VisionRequest{}
	req.Mode, _ = cmd.Flags().GetString("mode")
	req.Model, _ = cmd.Flags().GetString("model")
	req.License, _ = cmd.Flags().GetString("license")
	req.URL, _ = cmd.Flags().GetString("url")

	switch {
	case len(args) == 1 && req.URL != "":
		return fmt.Errorf("provide either an image file or --url, not both")
	case len(args) == 1:
		data, err := os.ReadFile(args[0])
		if err != nil {
			return err
		}
		req.ImageBase64 = base64.StdEncoding.EncodeToString(data)
	case req.URL == "":
		return fmt.Errorf("provide an image file or --url")
	}

	resp, err := client.Vision(cmd.Context(), req)
	if err != nil {
		return err
	}

	out, err := json.MarshalIndent(resp, "", "  ")
	if err != nil {
		return err
	}

	fmt.Println(string(out))
	return nil
}

// UsageHandler - Zeigt den Metering-Snapshot des Servers an
func UsageHandler(cmd *cobra.Command, _ []string) error {
	client, err := api.ClientFromEnvironment()
	if err != nil {
		return err
	}

	usage, err := client.VisionUsage(cmd.Context())
	if err != nil {
		return err
	}

	fmt.Printf("Requests today:      %d\n", usage.RequestsToday)
	fmt.Printf("Requests this month: %d\n", usage.RequestsThisMonth)
	fmt.Printf("Last reset:          %s\n", usage.LastReset)
	return nil
}

// newAnalyzeCmd - Erstellt den analyze Command
func newAnalyzeCmd() *cobra.Command {
	analyzeCmd := &cobra.Command{
		Use:     "analyze [IMAGE]",
		Short:   "Analyze an image with a vision model",
		Args:    cobra.MaximumNArgs(1),
		PreRunE: checkServerHeartbeat,
		RunE:    AnalyzeHandler,
	}
	analyzeCmd.Flags().String("mode", "full", "Analysis mode: ocr, layout, brief, web or full")
	analyzeCmd.Flags().String("model", "", "Override the configured vision model")
	analyzeCmd.Flags().String("license", "", "License key for this request")
	analyzeCmd.Flags().String("url", "", "Analyze an image from a URL instead of a file")
	return analyzeCmd
}

// newUsageCmd - Erstellt den usage Command
func newUsageCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "usage",
		Short:   "Show vision request usage counters",
		Args:    cobra.ExactArgs(0),
		PreRunE: checkServerHeartbeat,
		RunE:    UsageHandler,
	}
}
