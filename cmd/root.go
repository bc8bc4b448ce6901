/*
Copyright © 2025 openkms
*/
package cmd

import (
	"os"

	"github.com/openkms/docchat-be/config"
	"github.com/spf13/cobra"
)

var cfgFile string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "docchat-be",
	Short: "RAG chatbot backend for internal Word documents",
	Long: `docchat-be indexes internal Word documents into a Weaviate vector
database and answers questions about them with an LLM. Text is extracted
from the documents, images are run through OCR, and everything is chunked,
embedded and stored for retrieval.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "config/config.yaml", "config file")
}

func loadConfig() (*config.Config, error) {
	return config.LoadConfig(cfgFile)
}
