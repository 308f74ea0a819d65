package store

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	lexerrors "github.com/lexstore/lexstore/internal/errors"
)

// maxDocumentLine caps a single JSONL document at 16 MiB.
const maxDocumentLine = 16 * 1024 * 1024

// ReadJSONL decodes a stream of JSONL documents, one JSON object per line.
// Blank lines are skipped.
func ReadJSONL(r io.Reader) ([]*Document, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), maxDocumentLine)

	var docs []*Document
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		var doc Document
		if err := json.Unmarshal([]byte(line), &doc); err != nil {
			return nil, lexerrors.New(lexerrors.ErrCodeInvalidInput,
				fmt.Sprintf("line %d is not a valid document", lineNo), err)
		}
		if doc.ID == "" {
			return nil, lexerrors.New(lexerrors.ErrCodeInvalidInput,
				fmt.Sprintf("line %d has no document ID", lineNo), nil)
		}
		docs = append(docs, &doc)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read corpus: %w", err)
	}

	return docs, nil
}

// ReadCorpusFile reads a JSONL corpus file from disk.
func ReadCorpusFile(path string) ([]*Document, error) {
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return nil, lexerrors.New(lexerrors.ErrCodeCorpusNotFound,
			fmt.Sprintf("corpus file %s does not exist", path), err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open corpus file: %w", err)
	}
	defer f.Close()

	return ReadJSONL(f)
}

// StreamDocuments turns a document slice into the channel form Build consumes.
func StreamDocuments(docs []*Document) <-chan *Document {
	ch := make(chan *Document, len(docs))
	for _, d := range docs {
		ch <- d
	}
	close(ch)
	return ch
}
