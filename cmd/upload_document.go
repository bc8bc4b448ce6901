/*
Copyright © 2025 openkms
*/
package cmd

import (
	"context"
	"log"

	"github.com/openkms/docchat-be/types"
	"github.com/openkms/docchat-be/utils"
	"github.com/spf13/cobra"
)

// uploadDocumentCmd represents the uploadDocument command
var uploadDocumentCmd = &cobra.Command{
	Use:   "upload-document",
	Short: "Upload and index a single Word document",
	Long: `Copies a .docx file into the documents directory and indexes it:
text is chunked and embedded, embedded images are run through OCR.`,
	Run: func(cmd *cobra.Command, args []string) {
		filePath, _ := cmd.Flags().GetString("file")
		enableOCR, _ := cmd.Flags().GetBool("ocr")
		if filePath == "" {
			log.Fatal("--file is required")
		}

		cfg, err := loadConfig()
		if err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}

		indexer, _, _, err := buildIndexer(cfg)
		if err != nil {
			log.Fatalf("Failed to build indexing pipeline: %v", err)
		}

		destPath, err := utils.CopyFileWithTimestamp(filePath, cfg.DocumentsDir)
		if err != nil {
			log.Fatalf("Failed to copy document: %v", err)
		}
		log.Println("Stored document at", destPath)

		status := make(chan types.ProcessingDocumentStatus, 16)
		done := make(chan struct{})
		go func() {
			defer close(done)
			for s := range status {
				log.Printf("%s: %d/%d chunks", s.Status, s.ProcessedChunks, s.TotalChunks)
			}
		}()

		err = indexer.IndexFile(context.Background(), destPath, types.IndexOptions{EnableOCR: enableOCR}, status)
		close(status)
		<-done
		if err != nil {
			log.Fatalf("Failed to index document: %v", err)
		}
		log.Println("Document indexed")
	},
}

func init() {
	rootCmd.AddCommand(uploadDocumentCmd)

	uploadDocumentCmd.Flags().StringP("file", "f", "", "Path to the .docx file to upload")
	uploadDocumentCmd.Flags().Bool("ocr", true, "Run OCR on images extracted from the document")
}
