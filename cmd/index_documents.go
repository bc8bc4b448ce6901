/*
Copyright © 2025 openkms
*/
package cmd

import (
	"context"
	"fmt"
	"log"

	"github.com/openkms/docchat-be/service"
	"github.com/openkms/docchat-be/types"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
)

// indexDocumentsCmd represents the indexDocuments command
var indexDocumentsCmd = &cobra.Command{
	Use:   "index-documents",
	Short: "Index all Word documents in the documents directory",
	Long: `Extracts text and images from every .docx file in the documents
directory, chunks and embeds the text, runs OCR on the images and stores
everything in the Weaviate vector database.`,
	Run: func(cmd *cobra.Command, args []string) {
		enableOCR, _ := cmd.Flags().GetBool("ocr")
		reset, _ := cmd.Flags().GetBool("reset")

		cfg, err := loadConfig()
		if err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}

		indexer, weaviateDb, _, err := buildIndexer(cfg)
		if err != nil {
			log.Fatalf("Failed to build indexing pipeline: %v", err)
		}

		ctx := context.Background()
		if reset {
			if err := weaviateDb.Reset(ctx); err != nil {
				log.Fatalf("Failed to reset vector store: %v", err)
			}
			log.Println("Vector store reset")
		}

		progress := make(chan types.IndexProgress, 16)
		done := make(chan struct{})
		go func() {
			defer close(done)
			var bar *progressbar.ProgressBar
			for p := range progress {
				switch p.Stage {
				case service.StageDocuments:
					if bar == nil {
						bar = progressbar.NewOptions(p.Total,
							progressbar.OptionSetDescription("Processing documents"),
							progressbar.OptionShowCount(),
						)
					}
					bar.Set(p.Processed)
				default:
					if bar != nil {
						bar.Finish()
						bar = nil
						fmt.Println()
					}
					log.Println(p.Message)
				}
			}
		}()

		stats, err := indexer.IndexDocuments(ctx, types.IndexOptions{EnableOCR: enableOCR}, progress)
		close(progress)
		<-done
		if err != nil {
			log.Fatalf("Indexing failed: %v", err)
		}

		fmt.Println("Documents processed:", stats.TotalDocs)
		fmt.Println("Text chunks indexed:", stats.TotalChunks)
		fmt.Println("Images extracted:   ", stats.TotalImages)
		fmt.Println("OCR texts indexed:  ", stats.OCRTexts)
		fmt.Println("Vectors in store:   ", stats.VectorCount)
	},
}

func init() {
	rootCmd.AddCommand(indexDocumentsCmd)

	indexDocumentsCmd.Flags().Bool("ocr", true, "Run OCR on images extracted from documents")
	indexDocumentsCmd.Flags().BoolP("reset", "r", false, "Reset the vector store before indexing")
}
