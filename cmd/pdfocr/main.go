// pdfocr is a command-line tool for creating searchable PDFs with OCR text layers.
//
// This tool can either enhance existing PDFs with OCR text layers or create new PDFs
// from images with embedded OCR text. Words come from a saved Textract response or
// an hOCR file and are placed at the position of each recognized word.
//
// Usage:
//
//	pdfocr -blocks response.json -pdf document.pdf -output out.pdf [options]
//
// Word source (one required):
//
//	-blocks string    Path to a Textract JSON response (or any blocks JSON)
//	-hocr string      Path to an hOCR file
//
// Input options (one required):
//
//	-pdf string       Path to existing PDF to enhance with OCR
//	-image-dir string Directory containing page images to build a new PDF
//
// Processing options:
//
//	-output string    Output PDF path
//	-start-page int   PDF page that receives the first page of words (default 1)
//	-debug            Enable debug mode (draws visible text and word boxes)
//	-force            Force reapply OCR even if layer exists
//	-overwrite        Overwrite output file if it exists
//	-check            Only list the optional content layers of -pdf and exit
//
// Examples:
//
// Add OCR layer to existing PDF:
//
//	pdfocr -blocks response.json -pdf document.pdf -output document_searchable.pdf
//
// Create PDF from image directory with OCR:
//
//	pdfocr -hocr document.hocr -image-dir ./page_images -output document_searchable.pdf
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/gardar/blockgraph/internal/source"
	"github.com/gardar/blockgraph/pkg/blocks"
	"github.com/gardar/blockgraph/pkg/hocr"
	"github.com/gardar/blockgraph/pkg/pdfocr"
)

func main() {
	blocksPath := flag.String("blocks", "", "Path to a Textract JSON response")
	hocrPath := flag.String("hocr", "", "Path to a multi-page hOCR file")
	imageDirPath := flag.String("image-dir", "", "Directory containing images")
	pdfPath := flag.String("pdf", "", "Path to an existing PDF to add OCR layer to")
	pdfOcrPath := flag.String("output", "", "Output PDF path")
	startPage := flag.Int("start-page", 1, "PDF page that receives the first page of words (1-based index)")
	debug := flag.Bool("debug", false, "Enable debug mode")
	force := flag.Bool("force", false, "Force reapply OCR even if an OCR layer is already detected")
	overwriteOutput := flag.Bool("overwrite", false, "Overwrite the output PDF if it already exists")
	check := flag.Bool("check", false, "List the optional content layers of -pdf and exit")
	flag.Parse()

	if *check {
		checkLayers(*pdfPath)
		return
	}

	if (*blocksPath == "") == (*hocrPath == "") {
		fmt.Println("Error: Must provide exactly one of -blocks or -hocr")
		os.Exit(1)
	}
	if (*imageDirPath == "") == (*pdfPath == "") {
		fmt.Println("Error: Must provide exactly one of -image-dir or -pdf")
		os.Exit(1)
	}
	if *pdfOcrPath == "" {
		fmt.Println("Error: Must provide -output path")
		os.Exit(1)
	}

	if _, err := os.Stat(*pdfOcrPath); err == nil && !*overwriteOutput {
		fmt.Printf("Output file %s already exists. Use -overwrite to overwrite.\n", *pdfOcrPath)
		os.Exit(1)
	}

	config := pdfocr.DefaultConfig()
	config.Debug = *debug
	config.Force = *force
	config.StartPage = *startPage

	words, err := loadWords(*blocksPath, *hocrPath)
	if err != nil {
		fmt.Printf("Failed to read words: %v\n", err)
		os.Exit(1)
	}

	// Either create a new PDF from images or modify an existing PDF
	var finalPDF []byte
	if *imageDirPath != "" {
		imagesData, err := readImages(*imageDirPath)
		if err != nil {
			fmt.Printf("Error reading images: %v\n", err)
			os.Exit(1)
		}

		finalPDF, err = pdfocr.AssembleWithOCR(imagesData, words, config)
		if err != nil {
			fmt.Printf("Error creating PDF from images: %v\n", err)
			os.Exit(1)
		}
		if *force {
			fmt.Println("Warning: -force is only applicable when -pdf is set. Ignoring -force.")
		}
	} else {
		inputData, err := os.ReadFile(*pdfPath)
		if err != nil {
			fmt.Printf("Failed to read input PDF: %v\n", err)
			os.Exit(1)
		}

		finalPDF, err = pdfocr.ApplyOCR(inputData, words, config)
		if err != nil {
			fmt.Printf("Error applying OCR to existing PDF: %v\n", err)
			os.Exit(1)
		}
	}

	if err := os.WriteFile(*pdfOcrPath, finalPDF, 0644); err != nil {
		fmt.Printf("Failed to write output PDF: %v\n", err)
		os.Exit(1)
	}
	fmt.Println("OCR-enhanced PDF created:", *pdfOcrPath)
}

func loadWords(blocksPath, hocrPath string) ([]blocks.Block, error) {
	if blocksPath != "" {
		return blocks.DecodeFile(blocksPath)
	}
	data, err := os.ReadFile(hocrPath)
	if err != nil {
		return nil, err
	}
	doc, err := hocr.Parse(data)
	if err != nil {
		return nil, err
	}
	return hocr.ToBlocks(doc), nil
}

// readImages reads the supported images of a directory in name order
func readImages(dir string) ([][]byte, error) {
	var imagePaths []string
	for _, ext := range source.Extensions(source.Image) {
		matches, err := filepath.Glob(filepath.Join(dir, "*"+ext))
		if err != nil {
			return nil, err
		}
		imagePaths = append(imagePaths, matches...)
	}
	sort.Strings(imagePaths)
	fmt.Printf("Found %d image files in %s\n", len(imagePaths), dir)
	if len(imagePaths) == 0 {
		return nil, fmt.Errorf("no images in %s", dir)
	}

	var imagesData [][]byte
	for _, imgPath := range imagePaths {
		imgBytes, err := os.ReadFile(imgPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read image %s: %w", imgPath, err)
		}
		imagesData = append(imagesData, imgBytes)
	}
	return imagesData, nil
}

func checkLayers(pdfPath string) {
	if pdfPath == "" {
		fmt.Println("Error: -check requires -pdf")
		os.Exit(1)
	}
	data, err := os.ReadFile(pdfPath)
	if err != nil {
		fmt.Printf("Failed to read input PDF: %v\n", err)
		os.Exit(1)
	}
	result, err := pdfocr.CheckLayers(data, pdfocr.DefaultConfig().LayerName)
	if err != nil {
		fmt.Printf("Layer detection failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Found %d layers\n", len(result.Layers))
	for _, l := range result.Layers {
		fmt.Println(" -", l)
	}
	if result.Existing != "" {
		fmt.Println("Text layer from an earlier run:", result.Existing)
	}
	for _, l := range result.Suspicious {
		fmt.Println("Might contain OCR text:", l)
	}
}
