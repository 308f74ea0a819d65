package store

import (
	"fmt"
	"strings"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/custom"
	"github.com/blevesearch/bleve/v2/analysis/lang/de"
	"github.com/blevesearch/bleve/v2/analysis/lang/en"
	"github.com/blevesearch/bleve/v2/analysis/lang/es"
	"github.com/blevesearch/bleve/v2/analysis/lang/fr"
	"github.com/blevesearch/bleve/v2/analysis/lang/it"
	"github.com/blevesearch/bleve/v2/analysis/lang/nl"
	"github.com/blevesearch/bleve/v2/analysis/lang/pt"
	"github.com/blevesearch/bleve/v2/analysis/lang/ru"
	"github.com/blevesearch/bleve/v2/analysis/token/lowercase"
	"github.com/blevesearch/bleve/v2/analysis/tokenizer/unicode"
	"github.com/blevesearch/bleve/v2/mapping"

	lexerrors "github.com/lexstore/lexstore/internal/errors"
)

// LanguageNone disables stemming and stop word removal. Analysis is plain
// unicode tokenization plus lowercasing.
const LanguageNone = "none"

// DefaultLanguage is the stemmer language used when none is configured.
const DefaultLanguage = "english"

// plainAnalyzerName is the registered name of the no-stemming analyzer.
const plainAnalyzerName = "lexstore_plain"

// analyzerForLanguage maps a stemmer language name to the Bleve analyzer
// that owns tokenization, stop words, and snowball stemming for it.
func analyzerForLanguage(language string) (string, error) {
	switch strings.ToLower(language) {
	case "", DefaultLanguage, "en":
		return en.AnalyzerName, nil
	case "german", "de":
		return de.AnalyzerName, nil
	case "french", "fr":
		return fr.AnalyzerName, nil
	case "spanish", "es":
		return es.AnalyzerName, nil
	case "italian", "it":
		return it.AnalyzerName, nil
	case "portuguese", "pt":
		return pt.AnalyzerName, nil
	case "dutch", "nl":
		return nl.AnalyzerName, nil
	case "russian", "ru":
		return ru.AnalyzerName, nil
	case LanguageNone:
		return plainAnalyzerName, nil
	default:
		return "", lexerrors.New(lexerrors.ErrCodeInvalidLanguage,
			fmt.Sprintf("unsupported stemmer language %q", language), nil).
			WithSuggestion("supported: english, german, french, spanish, italian, portuguese, dutch, russian, none")
	}
}

// SupportedLanguage reports whether the given stemmer language is supported.
func SupportedLanguage(language string) bool {
	_, err := analyzerForLanguage(language)
	return err == nil
}

// buildIndexMapping creates the Bleve index mapping for a corpus built with
// the given stemmer language. Content is a stored field so opened indexes can
// hand documents back; metadata is stored but never indexed.
func buildIndexMapping(language string) (*mapping.IndexMappingImpl, error) {
	analyzer, err := analyzerForLanguage(language)
	if err != nil {
		return nil, err
	}

	indexMapping := bleve.NewIndexMapping()

	if analyzer == plainAnalyzerName {
		// Register the no-stemming analyzer on this mapping
		err := indexMapping.AddCustomAnalyzer(plainAnalyzerName, map[string]interface{}{
			"type":          custom.Name,
			"tokenizer":     unicode.Name,
			"token_filters": []string{lowercase.Name},
		})
		if err != nil {
			return nil, fmt.Errorf("failed to add plain analyzer: %w", err)
		}
	}

	contentField := bleve.NewTextFieldMapping()
	contentField.Analyzer = analyzer
	contentField.Store = true
	contentField.IncludeTermVectors = true

	metaField := bleve.NewTextFieldMapping()
	metaField.Store = true
	metaField.Index = false
	metaField.IncludeInAll = false

	docMapping := bleve.NewDocumentMapping()
	docMapping.AddFieldMappingsAt(fieldContent, contentField)
	docMapping.AddFieldMappingsAt(fieldMeta, metaField)

	indexMapping.DefaultMapping = docMapping
	indexMapping.DefaultAnalyzer = analyzer

	return indexMapping, nil
}
