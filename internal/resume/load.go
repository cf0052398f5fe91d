package resume

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gen2brain/go-fitz"

	"jobfinder/internal/vocab"
)

// Load reads a resume document from path and extracts its profile. PDFs go
// through MuPDF text extraction, anything else is read as plain text.
func Load(path string, v *vocab.Vocabulary) (*Profile, error) {
	var (
		raw string
		err error
	)
	if strings.EqualFold(filepath.Ext(path), ".pdf") {
		raw, err = pdfText(path)
	} else {
		raw, err = plainText(path)
	}
	if err != nil {
		return nil, err
	}

	profile, err := Extract(raw, v)
	if err != nil {
		var exErr *ExtractionError
		if errors.As(err, &exErr) && exErr.Source == "" {
			exErr.Source = path
		}
		return nil, err
	}
	return profile, nil
}

func pdfText(path string) (string, error) {
	doc, err := fitz.New(path)
	if err != nil {
		return "", &ExtractionError{Source: path, Reason: "opening pdf", Err: err}
	}
	defer doc.Close()

	pages := make([]string, 0, doc.NumPage())
	for n := 0; n < doc.NumPage(); n++ {
		page, err := doc.Text(n)
		if err != nil {
			return "", &ExtractionError{Source: path, Reason: fmt.Sprintf("reading page %d", n+1), Err: err}
		}
		pages = append(pages, page)
	}

	full := strings.TrimSpace(strings.Join(pages, "\n"))
	if full == "" {
		return "", &ExtractionError{Source: path, Reason: "no extractable text, the pdf may be image-only"}
	}
	return full, nil
}

func plainText(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", &ExtractionError{Source: path, Reason: "reading file", Err: err}
	}
	return string(data), nil
}
