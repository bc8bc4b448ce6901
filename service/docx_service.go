package service

import (
	"archive/zip"
	"encoding/xml"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/openkms/docchat-be/types"
	"github.com/openkms/docchat-be/utils"
)

// Sentence boundaries tried in order when cutting a chunk. The first one
// found closest to the window end wins.
var chunkDelimiters = []string{"\n\n", "\n", ". ", "。", "! ", "? "}

var DefaultDocumentServiceConfig = types.DocumentServiceConfig{
	ChunkSize:   500,
	OverlapSize: 100,
}

// DocxService extracts text and embedded images from Word (.docx) files
// and splits the text into overlapping chunks. A .docx file is a zip
// archive; the body lives in word/document.xml and images under
// word/media/.
type DocxService struct {
	chunkSize   int
	overlapSize int
}

func NewDocxService(config types.DocumentServiceConfig) *DocxService {
	if config.ChunkSize <= 0 {
		config.ChunkSize = DefaultDocumentServiceConfig.ChunkSize
	}
	if config.OverlapSize < 0 || config.OverlapSize >= config.ChunkSize {
		config.OverlapSize = DefaultDocumentServiceConfig.OverlapSize
	}
	return &DocxService{
		chunkSize:   config.ChunkSize,
		overlapSize: config.OverlapSize,
	}
}

// ExtractText reads the document body and returns paragraph and table
// cell text joined by blank lines, in document order.
func (s *DocxService) ExtractText(filePath string) (string, error) {
	reader, err := zip.OpenReader(filePath)
	if err != nil {
		return "", fmt.Errorf("failed to open %s: %w", filePath, err)
	}
	defer reader.Close()

	for _, file := range reader.File {
		if file.Name != "word/document.xml" {
			continue
		}
		rc, err := file.Open()
		if err != nil {
			return "", fmt.Errorf("failed to read document body of %s: %w", filePath, err)
		}
		defer rc.Close()
		return parseDocumentXML(rc)
	}

	return "", fmt.Errorf("no document body found in %s", filePath)
}

// parseDocumentXML walks the WordprocessingML token stream. Runs of text
// (w:t) are gathered until the enclosing paragraph (w:p) closes; table
// cell content is made of paragraphs too, so tables come out as well.
func parseDocumentXML(r io.Reader) (string, error) {
	decoder := xml.NewDecoder(r)

	var paragraphs []string
	var current strings.Builder
	inText := false

	for {
		token, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", fmt.Errorf("failed to parse document xml: %w", err)
		}

		switch t := token.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "t":
				inText = true
			case "tab":
				current.WriteString("\t")
			case "br":
				current.WriteString("\n")
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inText = false
			case "p":
				if text := strings.TrimSpace(current.String()); text != "" {
					paragraphs = append(paragraphs, text)
				}
				current.Reset()
			}
		case xml.CharData:
			if inText {
				current.Write(t)
			}
		}
	}

	return strings.Join(paragraphs, "\n\n"), nil
}

// ExtractImages writes every embedded image to outputDir/<docStem>/ and
// returns the saved paths. Failures on individual images are skipped.
func (s *DocxService) ExtractImages(filePath string, outputDir string) ([]string, error) {
	reader, err := zip.OpenReader(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", filePath, err)
	}
	defer reader.Close()

	docName := utils.FileNameWithoutExt(filePath)
	docImageDir := filepath.Join(outputDir, docName)
	if err := os.MkdirAll(docImageDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create image directory: %w", err)
	}

	var imagePaths []string
	for _, file := range reader.File {
		if !strings.HasPrefix(file.Name, "word/media/") || file.FileInfo().IsDir() {
			continue
		}

		imagePath := filepath.Join(docImageDir, fmt.Sprintf("%s_%d%s", docName, len(imagePaths), filepath.Ext(file.Name)))
		if err := extractZipFile(file, imagePath); err != nil {
			log.Printf("Warning: failed to extract image %s: %v", file.Name, err)
			continue
		}
		imagePaths = append(imagePaths, imagePath)
	}

	return imagePaths, nil
}

func extractZipFile(file *zip.File, destPath string) error {
	rc, err := file.Open()
	if err != nil {
		return err
	}
	defer rc.Close()

	dst, err := os.Create(destPath)
	if err != nil {
		return err
	}
	defer dst.Close()

	_, err = io.Copy(dst, rc)
	return err
}

// ChunkText splits text into overlapping windows of at most chunkSize
// runes. Window ends are pulled back to the nearest sentence boundary
// when one exists inside the window.
func (s *DocxService) ChunkText(text string) []string {
	if text == "" {
		return nil
	}

	runes := []rune(text)
	textLen := len(runes)

	var chunks []string
	start := 0
	for start < textLen {
		end := start + s.chunkSize
		if end < textLen {
			window := string(runes[start:end])
			for _, delimiter := range chunkDelimiters {
				if pos := strings.LastIndex(window, delimiter); pos != -1 {
					end = start + len([]rune(window[:pos])) + len([]rune(delimiter))
					break
				}
			}
		} else {
			end = textLen
		}

		if chunk := strings.TrimSpace(string(runes[start:end])); chunk != "" {
			chunks = append(chunks, chunk)
		}

		if end >= textLen {
			break
		}
		next := end - s.overlapSize
		// Ensure we make progress
		if next <= start {
			next = end
		}
		start = next
	}

	return chunks
}

// ProcessDocument extracts text, chunks it, and pulls out embedded images
// for a single .docx file.
func (s *DocxService) ProcessDocument(filePath string, imageOutputDir string) (*types.ProcessedDocument, error) {
	text, err := s.ExtractText(filePath)
	if err != nil {
		return nil, err
	}

	images, err := s.ExtractImages(filePath, imageOutputDir)
	if err != nil {
		log.Printf("Warning: failed to extract images from %s: %v", filePath, err)
	}

	return &types.ProcessedDocument{
		FilePath: filePath,
		FileName: filepath.Base(filePath),
		Text:     text,
		Chunks:   s.ChunkText(text),
		Images:   images,
	}, nil
}

// ListDocuments returns the .docx files in dir, skipping Word's "~$"
// lock files.
func (s *DocxService) ListDocuments(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory %s: %w", dir, err)
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if strings.HasPrefix(name, "~$") || strings.ToLower(filepath.Ext(name)) != ".docx" {
			continue
		}
		files = append(files, filepath.Join(dir, name))
	}
	return files, nil
}
