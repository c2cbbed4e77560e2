package search

import (
	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/keyword"
	"github.com/blevesearch/bleve/v2/analysis/lang/en"
	"github.com/blevesearch/bleve/v2/mapping"
)

// buildIndexMapping creates the Bleve mapping for note documents.
// Title and content use English stemming; owner_id is a keyword so the owner
// filter is an exact term match.
func buildIndexMapping() mapping.IndexMapping {
	indexMapping := bleve.NewIndexMapping()
	indexMapping.DefaultAnalyzer = en.AnalyzerName

	docMapping := bleve.NewDocumentMapping()

	titleFieldMapping := bleve.NewTextFieldMapping()
	titleFieldMapping.Analyzer = en.AnalyzerName
	titleFieldMapping.Store = true
	titleFieldMapping.IncludeTermVectors = true // For highlighting
	docMapping.AddFieldMappingsAt("title", titleFieldMapping)

	// Content is searchable but not stored; callers load the note itself.
	contentFieldMapping := bleve.NewTextFieldMapping()
	contentFieldMapping.Analyzer = en.AnalyzerName
	contentFieldMapping.Store = false
	contentFieldMapping.IncludeTermVectors = true
	docMapping.AddFieldMappingsAt("content", contentFieldMapping)

	ownerFieldMapping := bleve.NewTextFieldMapping()
	ownerFieldMapping.Analyzer = keyword.Name
	ownerFieldMapping.Store = true
	docMapping.AddFieldMappingsAt("owner_id", ownerFieldMapping)

	idFieldMapping := bleve.NewTextFieldMapping()
	idFieldMapping.Analyzer = keyword.Name
	docMapping.AddFieldMappingsAt("id", idFieldMapping)

	createdAtFieldMapping := bleve.NewNumericFieldMapping()
	createdAtFieldMapping.Store = true
	docMapping.AddFieldMappingsAt("created_at", createdAtFieldMapping)

	indexMapping.AddDocumentMapping("_default", docMapping)

	return indexMapping
}
