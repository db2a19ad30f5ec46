package extract

import (
	"archive/zip"
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"

	"crm-skills-sync/internal/shared/metrics"
	"crm-skills-sync/internal/shared/telemetry"
)

// ErrNoText is returned when extraction succeeds but yields no readable
// text, so callers can tell unreadable input from invalid input.
var ErrNoText = errors.New("no text could be extracted from the document")

// ValidationError reports input that failed size or extension checks.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string { return e.Reason }

// UnsupportedTypeError reports an extension with no extraction path.
type UnsupportedTypeError struct {
	Ext string
}

func (e *UnsupportedTypeError) Error() string {
	return fmt.Sprintf("unsupported file type: %s", e.Ext)
}

// Extractor turns document bytes into plain text, dispatching on the
// filename's extension. A non-nil cache makes extraction content-addressed:
// bytes already seen return the cached text without validation, whatever
// the claimed filename.
type Extractor struct {
	allowedExts map[string]struct{}
	maxFileSize int64
	cache       Cache
}

// NewExtractor constructs an extractor. cache may be nil to disable caching.
func NewExtractor(allowedExts map[string]struct{}, maxFileSize int64, cache Cache) *Extractor {
	return &Extractor{
		allowedExts: allowedExts,
		maxFileSize: maxFileSize,
		cache:       cache,
	}
}

// ContentHash returns the hex SHA-256 digest of content.
func ContentHash(content []byte) string {
	sum := sha256.Sum256(content)
	return hex.EncodeToString(sum[:])
}

// IsValidFile checks the size cap and extension allow-set.
func (e *Extractor) IsValidFile(filename string, size int64) error {
	if size > e.maxFileSize {
		return &ValidationError{Reason: fmt.Sprintf("file size %d exceeds maximum %d", size, e.maxFileSize)}
	}
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(filename)), ".")
	if _, ok := e.allowedExts[ext]; !ok {
		return &ValidationError{Reason: fmt.Sprintf("file extension %q not allowed", ext)}
	}
	return nil
}

// ExtractText validates and extracts plain text from document bytes.
func (e *Extractor) ExtractText(content []byte, filename string) (string, error) {
	digest := ContentHash(content)

	if e.cache != nil {
		if text, ok := e.cache.Get(digest); ok {
			metrics.IncExtractCacheHit()
			telemetry.Info("extract.cache_hit", map[string]any{"file": filename, "digest": digest})
			return text, nil
		}
	}

	if err := e.IsValidFile(filename, int64(len(content))); err != nil {
		return "", err
	}

	ext := strings.ToLower(filepath.Ext(filename))
	var (
		text string
		err  error
	)
	switch ext {
	case ".pdf":
		text, err = extractPDF(content)
	case ".docx":
		text, err = extractDOCX(content)
	case ".doc":
		text = extractDOC(content)
	default:
		return "", &UnsupportedTypeError{Ext: ext}
	}
	if err != nil {
		return "", fmt.Errorf("extract %s: %w", strings.TrimPrefix(ext, "."), err)
	}

	if strings.TrimSpace(text) == "" {
		return "", ErrNoText
	}

	if e.cache != nil {
		e.cache.Set(digest, text)
	}

	telemetry.Info("extract.complete", map[string]any{"file": filename, "chars": len(text)})
	return text, nil
}

func extractPDF(data []byte) (string, error) {
	reader := bytes.NewReader(data)
	pdfReader, err := pdf.NewReader(reader, int64(len(data)))
	if err != nil {
		return "", err
	}
	plain, err := pdfReader.GetPlainText()
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, plain); err != nil {
		return "", err
	}
	return strings.TrimSpace(buf.String()), nil
}

// extractDOCX renders word/document.xml as plain text: non-blank paragraph
// text first, then per table row the non-blank cell texts joined with " | ",
// in document order.
func extractDOCX(data []byte) (string, error) {
	if len(data) == 0 {
		return "", errors.New("empty docx data")
	}
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", err
	}

	var docFile *zip.File
	for _, f := range zr.File {
		if strings.ReplaceAll(f.Name, "\\", "/") == "word/document.xml" {
			docFile = f
			break
		}
	}
	if docFile == nil {
		return "", errors.New("document.xml file not found")
	}

	rc, err := docFile.Open()
	if err != nil {
		return "", err
	}
	defer rc.Close()

	raw, err := io.ReadAll(rc)
	if err != nil {
		return "", err
	}

	return renderDocumentXML(raw), nil
}

func renderDocumentXML(raw []byte) string {
	decoder := xml.NewDecoder(bytes.NewReader(raw))

	var (
		paragraphs []string
		rows       []string
		tblDepth   int
		inText     bool
		para       strings.Builder
		cell       strings.Builder
		rowCells   []string
	)

	for {
		tok, err := decoder.Token()
		if err != nil {
			break
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "tbl":
				tblDepth++
			case "p":
				if tblDepth == 0 {
					para.Reset()
				}
			case "tr":
				rowCells = rowCells[:0]
			case "tc":
				cell.Reset()
			case "t":
				inText = true
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "tbl":
				tblDepth--
			case "p":
				if tblDepth == 0 {
					if text := strings.TrimSpace(para.String()); text != "" {
						paragraphs = append(paragraphs, text)
					}
				} else {
					// Separate paragraphs within a table cell.
					cell.WriteString("\n")
				}
			case "tr":
				if tblDepth > 0 && len(rowCells) > 0 {
					rows = append(rows, strings.Join(rowCells, " | "))
				}
			case "tc":
				if text := strings.TrimSpace(cell.String()); text != "" {
					rowCells = append(rowCells, text)
				}
			case "t":
				inText = false
			}
		case xml.CharData:
			if !inText {
				continue
			}
			if tblDepth > 0 {
				cell.Write(t)
			} else {
				para.Write(t)
			}
		}
	}

	return strings.Join(append(paragraphs, rows...), "\n")
}

// extractDOC is a best-effort decode for legacy .doc files: non-printable
// and non-ASCII bytes become spaces and whitespace runs collapse.
func extractDOC(content []byte) string {
	cleaned := make([]byte, len(content))
	for i, b := range content {
		if (b >= 0x20 && b <= 0x7E) || b == '\n' || b == '\r' || b == '\t' {
			cleaned[i] = b
		} else {
			cleaned[i] = ' '
		}
	}
	return strings.Join(strings.Fields(string(cleaned)), " ")
}
