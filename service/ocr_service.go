package service

import (
	"bytes"
	"fmt"
	"log"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
)

// OCRService extracts text from images by shelling out to tesseract.
type OCRService struct {
	languages     string
	minConfidence float64
}

type OCRWord struct {
	Text       string
	Confidence float64
}

func NewOCRService(languages string, minConfidence float64) *OCRService {
	if languages == "" {
		languages = "kor+eng"
	}
	if minConfidence <= 0 {
		minConfidence = 0.5
	}
	return &OCRService{
		languages:     languages,
		minConfidence: minConfidence,
	}
}

// ExtractText runs tesseract over the image and returns the raw text.
func (s *OCRService) ExtractText(imagePath string) (string, error) {
	ocrCmd := exec.Command("tesseract",
		imagePath,
		"stdout",
		"-l", s.languages,
		"--oem", "3", // Use LSTM OCR Engine Mode
		"--psm", "3", // Auto-detect page segmentation mode
	)
	var ocrOut bytes.Buffer
	ocrCmd.Stdout = &ocrOut
	if err := ocrCmd.Run(); err != nil {
		return "", fmt.Errorf("failed to run tesseract: %w", err)
	}
	return strings.TrimSpace(ocrOut.String()), nil
}

// ExtractTextWithConfidence runs tesseract in TSV mode and keeps only
// words at or above the configured confidence threshold.
func (s *OCRService) ExtractTextWithConfidence(imagePath string) (string, error) {
	words, err := s.extractWords(imagePath)
	if err != nil {
		return "", err
	}

	var kept []string
	for _, word := range words {
		if word.Confidence >= s.minConfidence*100 {
			kept = append(kept, word.Text)
		}
	}
	return strings.Join(kept, " "), nil
}

func (s *OCRService) extractWords(imagePath string) ([]OCRWord, error) {
	ocrCmd := exec.Command("tesseract",
		imagePath,
		"stdout",
		"-l", s.languages,
		"--oem", "3",
		"--psm", "3",
		"tsv",
	)
	var ocrOut bytes.Buffer
	ocrCmd.Stdout = &ocrOut
	if err := ocrCmd.Run(); err != nil {
		return nil, fmt.Errorf("failed to run tesseract: %w", err)
	}
	return parseTSV(ocrOut.String()), nil
}

// parseTSV reads tesseract's TSV output. Word rows carry the recognized
// text in the last column and the confidence (0-100) in the one before;
// non-word rows have confidence -1 and are dropped.
func parseTSV(output string) []OCRWord {
	var words []OCRWord
	for i, line := range strings.Split(output, "\n") {
		if i == 0 || strings.TrimSpace(line) == "" {
			continue // header
		}
		fields := strings.Split(line, "\t")
		if len(fields) < 12 {
			continue
		}
		conf, err := strconv.ParseFloat(fields[10], 64)
		if err != nil || conf < 0 {
			continue
		}
		text := strings.TrimSpace(fields[11])
		if text == "" {
			continue
		}
		words = append(words, OCRWord{Text: text, Confidence: conf})
	}
	return words
}

// ProcessImagesBatch OCRs every image, mapping path to extracted text.
// Failures yield an empty string and do not stop the batch.
func (s *OCRService) ProcessImagesBatch(imagePaths []string) map[string]string {
	results := make(map[string]string, len(imagePaths))
	for _, imagePath := range imagePaths {
		text, err := s.ExtractTextWithConfidence(imagePath)
		if err != nil {
			log.Printf("OCR failed for %s: %v", filepath.Base(imagePath), err)
			results[imagePath] = ""
			continue
		}
		results[imagePath] = text
	}
	return results
}
