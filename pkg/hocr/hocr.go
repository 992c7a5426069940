// Package hocr reads and writes hOCR, the HTML-based OCR format produced by
// Tesseract and most open source OCR engines, and maps it to and from blocks.
//
// hOCR nests words inside lines inside pages, with pixel bounding boxes in
// each element's title attribute. Parse flattens the optional area and
// paragraph levels, so a Page holds its lines in document order.
//
// Main Functions:
//
// - Parse: Parses hOCR HTML into the object model
// - ToBlocks: Converts parsed hOCR into PAGE, LINE and WORD blocks
// - FromBlocks: Builds hOCR from blocks for viewing in hOCR tools
// - Generate: Renders the object model as an hOCR document
package hocr
