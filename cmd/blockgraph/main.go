// blockgraph is a command-line tool for turning OCR block graphs into form fields,
// layout training records, tables and review artifacts.
//
// Input is a saved Amazon Textract response by default. Other providers convert
// their output into the same block model first, so every output works the same
// way regardless of where the blocks came from.
//
// Usage:
//
//	blockgraph -input response.json [options]
//	blockgraph -dir ./responses -layout-dir ./dataset [options]
//
// Input flags (one required):
//
//	-input string     Path to a single input file
//	-dir string       Directory of input files to process in parallel
//
// Input options:
//
//	-config string    Path to the YAML configuration file
//	-provider string  textract-json (default), textract, gdocai, gdocai-json, hocr or image
//	-label string     Class label for layout records (overrides config)
//	-workers int      Parallel documents in -dir mode (overrides config)
//
// Output options (at least one required):
//
//	-layout string       Path to save the layout record as one JSON line (single input)
//	-layout-dir string   Directory whose train.jsonl receives layout records
//	-append              Append to train.jsonl instead of replacing it
//	-fields string       Path to save form fields JSON
//	-tables string       Path to save tables (single input)
//	-table-format string csv, tsv, markdown or html (overrides config)
//	-report string       Path to save a PDF review report of fields and tables
//	-hocr string         Path to save hOCR of the recognized words (single input)
//	-blocks string       Path to save the normalized blocks as Textract JSON (single input)
//	-searchable string   Path to save a searchable PDF (single input; see -pdf)
//	-pdf string          Original PDF for -searchable when the input is not the PDF itself
//
// Example:
//
//	blockgraph -config config.yml -input invoice.json -label Invoice -fields fields.json -layout-dir ./dataset -append
//	blockgraph -provider image -input scan.png -hocr scan.hocr -searchable scan.pdf
//	blockgraph -provider textract -dir ./scans -layout-dir ./dataset -report review.pdf
package main

import (
	"bytes"
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/gardar/blockgraph/internal/batch"
	"github.com/gardar/blockgraph/internal/config"
	"github.com/gardar/blockgraph/internal/source"
	"github.com/gardar/blockgraph/pkg/blocks"
	"github.com/gardar/blockgraph/pkg/export"
	"github.com/gardar/blockgraph/pkg/hocr"
	"github.com/gardar/blockgraph/pkg/pdfocr"
	"github.com/gardar/blockgraph/pkg/report"
)

// hOCR pages are written at a nominal 300 DPI A4 size
const (
	hocrPageWidth  = 2480
	hocrPageHeight = 3508
)

func main() {
	configPath := flag.String("config", "", "Path to the config YAML file")
	inputPath := flag.String("input", "", "Path to a single input file (required if -dir not specified)")
	inputDir := flag.String("dir", "", "Directory of input files to process (required if -input not specified)")
	provider := flag.String("provider", source.TextractJSON, "Block source: "+strings.Join(source.Providers, ", "))
	label := flag.String("label", "", "Class label for layout records (overrides config)")
	workers := flag.Int("workers", 0, "Parallel documents in -dir mode (overrides config)")

	layoutPath := flag.String("layout", "", "Path to save the layout record as one JSON line")
	layoutDir := flag.String("layout-dir", "", "Directory whose train.jsonl receives layout records")
	appendMode := flag.Bool("append", false, "Append to train.jsonl instead of replacing it")
	fieldsPath := flag.String("fields", "", "Path to save form fields JSON")
	tablesPath := flag.String("tables", "", "Path to save extracted tables")
	tableFormat := flag.String("table-format", "", "Table format: csv, tsv, markdown or html (overrides config)")
	reportPath := flag.String("report", "", "Path to save a PDF review report")
	hocrPath := flag.String("hocr", "", "Path to save hOCR output")
	blocksPath := flag.String("blocks", "", "Path to save normalized blocks as Textract JSON")
	searchablePath := flag.String("searchable", "", "Path to save a searchable PDF")
	pdfPath := flag.String("pdf", "", "Original PDF for -searchable")

	flag.Parse()

	// Create a map of provided flags to validate
	providedFlags := make(map[string]bool)
	flag.Visit(func(f *flag.Flag) {
		providedFlags[f.Name] = true
	})

	if (*inputPath == "" && *inputDir == "") || (*inputPath != "" && *inputDir != "") {
		usageError("Either -input or -dir flag must be provided (but not both)")
	}

	// Validate that provided output flags have values
	hasError := false
	validateFlag := func(name string, value string) {
		if providedFlags[name] && value == "" {
			fmt.Fprintf(os.Stderr, "Error: -%s flag requires a value\n", name)
			hasError = true
		}
	}
	outputFlags := map[string]string{
		"layout":     *layoutPath,
		"layout-dir": *layoutDir,
		"fields":     *fieldsPath,
		"tables":     *tablesPath,
		"report":     *reportPath,
		"hocr":       *hocrPath,
		"blocks":     *blocksPath,
		"searchable": *searchablePath,
	}
	hasOutputFlag := false
	for name, value := range outputFlags {
		validateFlag(name, value)
		hasOutputFlag = hasOutputFlag || providedFlags[name]
	}
	validateFlag("pdf", *pdfPath)
	if hasError {
		fmt.Fprintln(os.Stderr, "Usage:")
		flag.PrintDefaults()
		os.Exit(1)
	}
	if !hasOutputFlag {
		usageError("At least one output flag must be provided (-layout, -layout-dir, -fields, -tables, -report, -hocr, -blocks or -searchable)")
	}
	if *inputDir != "" {
		for _, name := range []string{"layout", "tables", "hocr", "blocks", "searchable"} {
			if providedFlags[name] {
				usageError(fmt.Sprintf("-%s works with -input only; use -layout-dir, -fields or -report with -dir", name))
			}
		}
	}

	cfg := config.Default()
	if *configPath != "" {
		var err error
		cfg, err = config.Load(*configPath)
		if err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}
	}
	if *label != "" {
		cfg.Label = *label
	}
	if *workers > 0 {
		cfg.Workers = *workers
	}
	if *tableFormat != "" {
		cfg.TableFormat = *tableFormat
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid settings: %v", err)
	}
	if !cfg.KnownLabel(cfg.Label) {
		fmt.Printf("Warning: label %q is not one of the configured labels %v\n", cfg.Label, cfg.Labels)
	}

	load, err := source.New(*provider, cfg)
	if err != nil {
		log.Fatalf("Invalid provider: %v", err)
	}

	layoutCfg := cfg.LayoutConfig()
	layoutCfg.LogWarnings = true
	opts := batch.Options{
		Workers:    cfg.Workers,
		Label:      cfg.Label,
		Layout:     layoutCfg,
		Duplicates: cfg.DuplicatePolicy(),
	}

	ctx := context.Background()
	if *inputPath != "" {
		fmt.Println("Processing:", *inputPath)
		res := batch.Process(ctx, *inputPath, batch.Loader(load), opts)
		if res.Err != nil {
			log.Fatalf("Error processing document: %v", res.Err)
		}
		writeSingle(res, cfg, singleOutputs{
			layout:     *layoutPath,
			layoutDir:  *layoutDir,
			appendMode: *appendMode,
			fields:     *fieldsPath,
			tables:     *tablesPath,
			report:     *reportPath,
			hocr:       *hocrPath,
			blocks:     *blocksPath,
			searchable: *searchablePath,
			pdf:        *pdfPath,
		})
		return
	}

	paths, err := batch.Files(*inputDir, source.Extensions(*provider)...)
	if err != nil {
		log.Fatalf("Failed to list input directory: %v", err)
	}
	if len(paths) == 0 {
		log.Fatalf("No input files found in %s", *inputDir)
	}
	fmt.Printf("Processing %d files with %d workers\n", len(paths), cfg.Workers)

	results, err := batch.Run(ctx, paths, batch.Loader(load), opts)
	if err != nil {
		log.Fatalf("Batch failed: %v", err)
	}
	writeBatch(results, cfg, *layoutDir, *appendMode, *fieldsPath, *reportPath)
}

type singleOutputs struct {
	layout, layoutDir string
	appendMode        bool
	fields, tables    string
	report, hocr      string
	blocks            string
	searchable, pdf   string
}

func writeSingle(res batch.Result, cfg *config.Config, out singleOutputs) {
	fmt.Printf("Resolved %d words, %d fields and %d tables\n", res.Stats.Words, len(res.Fields), len(res.Tables))

	if out.layout != "" {
		if err := export.WriteLayoutPath(out.layout, false, res.Record); err != nil {
			log.Fatalf("Failed to write layout record: %v", err)
		}
		fmt.Println("Layout record saved to:", out.layout)
	}

	if out.layoutDir != "" {
		path, err := export.WriteLayoutFile(out.layoutDir, out.appendMode, res.Record)
		if err != nil {
			log.Fatalf("Failed to write layout records: %v", err)
		}
		fmt.Println("Layout record saved to:", path)
	}

	if out.fields != "" {
		writeJSON(out.fields, res.Fields, "Form fields JSON")
	}

	if out.tables != "" {
		var buf bytes.Buffer
		if err := export.WriteTables(&buf, res.Tables, cfg.Format()); err != nil {
			log.Fatalf("Failed to render tables: %v", err)
		}
		writeFile(out.tables, buf.Bytes(), fmt.Sprintf("%d tables", len(res.Tables)))
	}

	if out.report != "" {
		doc := report.FromBlocks(filepath.Base(res.Path), cfg.Label, res.Blocks)
		pdf, err := report.Render(report.DefaultConfig(), doc)
		if err != nil {
			log.Fatalf("Failed to render report: %v", err)
		}
		writeFile(out.report, pdf, "Review report")
	}

	if out.hocr != "" {
		html, err := hocr.Generate(hocr.FromBlocks(res.Blocks, hocrPageWidth, hocrPageHeight))
		if err != nil {
			log.Fatalf("Failed to render hOCR: %v", err)
		}
		writeFile(out.hocr, []byte(html), "Rendered hOCR output")
	}

	if out.blocks != "" {
		writeJSON(out.blocks, map[string]interface{}{"Blocks": res.Blocks}, "Normalized blocks")
	}

	if out.searchable != "" {
		writeSearchable(res, out)
	}
}

// writeSearchable overlays the words on the original PDF, or on the input
// image when the blocks came from an image
func writeSearchable(res batch.Result, out singleOutputs) {
	cfg := pdfocr.DefaultConfig()
	original := out.pdf
	if original == "" && strings.EqualFold(filepath.Ext(res.Path), ".pdf") {
		original = res.Path
	}

	var pdf []byte
	switch {
	case original != "":
		fmt.Println("Creating searchable PDF by applying OCR to existing PDF...")
		data, err := os.ReadFile(original)
		if err != nil {
			log.Fatalf("Failed to read PDF file: %v", err)
		}
		pdf, err = pdfocr.ApplyOCR(data, res.Blocks, cfg)
		if err != nil {
			log.Fatalf("Failed to apply OCR to PDF: %v", err)
		}
	case source.MimeType(res.Path) != "application/pdf":
		fmt.Println("Creating new searchable PDF from the input image...")
		img, err := os.ReadFile(res.Path)
		if err != nil {
			log.Fatalf("Failed to read image: %v", err)
		}
		pdf, err = pdfocr.AssembleWithOCR([][]byte{img}, res.Blocks, cfg)
		if err != nil {
			log.Fatalf("Failed to create PDF from image: %v", err)
		}
	default:
		log.Fatalf("-searchable needs -pdf when the input (%s) is not a PDF or image", res.Path)
	}
	writeFile(out.searchable, pdf, "Searchable PDF")
}

func writeBatch(results []batch.Result, cfg *config.Config, layoutDir string, appendMode bool, fieldsPath, reportPath string) {
	var records []*blocks.LayoutRecord
	var docs []report.Document
	fields := make(map[string]interface{})
	failed := 0

	for _, res := range results {
		if res.Err != nil {
			failed++
			log.Printf("Skipping %s: %v", res.Path, res.Err)
			continue
		}
		records = append(records, res.Record)
		fields[res.Path] = res.Fields
		if reportPath != "" {
			docs = append(docs, report.FromBlocks(filepath.Base(res.Path), cfg.Label, res.Blocks))
		}
	}
	fmt.Printf("Processed %d documents (%d failed)\n", len(results)-failed, failed)

	if layoutDir != "" {
		path, err := export.WriteLayoutFile(layoutDir, appendMode, records...)
		if err != nil {
			log.Fatalf("Failed to write layout records: %v", err)
		}
		fmt.Printf("%d layout records saved to: %s\n", len(records), path)
	}

	if fieldsPath != "" {
		writeJSON(fieldsPath, fields, "Form fields JSON")
	}

	if reportPath != "" && len(docs) > 0 {
		pdf, err := report.Render(report.DefaultConfig(), docs...)
		if err != nil {
			log.Fatalf("Failed to render report: %v", err)
		}
		writeFile(reportPath, pdf, "Review report")
	}

	if failed > 0 {
		os.Exit(2)
	}
}

func writeJSON(path string, v interface{}, what string) {
	data, err := export.ToJSON(v)
	if err != nil {
		log.Fatalf("Failed to convert %s: %v", strings.ToLower(what), err)
	}
	writeFile(path, []byte(data), what)
}

func writeFile(path string, data []byte, what string) {
	if err := os.WriteFile(path, data, 0644); err != nil {
		log.Fatalf("Failed to write %s: %v", path, err)
	}
	fmt.Printf("%s saved to: %s\n", what, path)
}

func usageError(msg string) {
	fmt.Fprintln(os.Stderr, "Error:", msg)
	fmt.Fprintln(os.Stderr, "Usage:")
	flag.PrintDefaults()
	os.Exit(1)
}
