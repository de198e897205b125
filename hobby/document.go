package hobby

import "strings"

// DocumentSeparator joins the parts of a hobby document.
const DocumentSeparator = " | "

// BuildDocument derives the searchable text for one record: name, short
// description and interest tags, in that order, skipping empty parts.
func BuildDocument(rec Record) string {
	parts := make([]string, 0, 4)
	for _, key := range []string{"name", "short"} {
		if s, ok := stringify(rec[key]); ok {
			parts = append(parts, s)
		}
	}
	parts = append(parts, rec.Interests()...)
	return strings.Join(parts, DocumentSeparator)
}

// BuildDocuments builds one document per record, preserving catalog order.
func BuildDocuments(cat Catalog) []string {
	docs := make([]string, len(cat))
	for i, rec := range cat {
		docs[i] = BuildDocument(rec)
	}
	return docs
}
