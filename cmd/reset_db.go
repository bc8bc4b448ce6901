/*
Copyright © 2025 openkms
*/
package cmd

import (
	"context"
	"log"

	"github.com/openkms/docchat-be/database"
	"github.com/spf13/cobra"
)

// resetDbCmd represents the resetDb command
var resetDbCmd = &cobra.Command{
	Use:   "reset-db",
	Short: "Drop and recreate the vector store schema",
	Long: `Deletes the DocumentChunk class from the Weaviate database and
recreates it empty. All indexed chunks are lost.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig()
		if err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}

		weaviateDb, err := database.NewWeaviateStore(cfg.WeaviateStoreConfig)
		if err != nil {
			log.Fatalf("Failed to connect to Weaviate database: %v", err)
		}

		if err := weaviateDb.Reset(context.Background()); err != nil {
			log.Fatalf("Failed to reset vector store: %v", err)
		}
		log.Println("Vector store reset")
	},
}

func init() {
	rootCmd.AddCommand(resetDbCmd)
}
