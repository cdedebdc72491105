package models

// KnowledgeUnit is the normalized form of any ingestible source: a virtual
// profile, a table row, or a document. Text is a deterministic serialization
// of the source; Metadata always carries a "source" identifier.
type KnowledgeUnit struct {
	Text     string         `json:"text"`
	Metadata map[string]any `json:"metadata"`
}

// Chunk is a bounded window of a KnowledgeUnit's text. Chunks inherit the
// parent unit's metadata unchanged.
type Chunk struct {
	ID       string         `json:"id"`
	Index    int            `json:"index"`
	Text     string         `json:"text"`
	Metadata map[string]any `json:"metadata"`
}

// Source returns the metadata "source" identifier, or "unknown" when absent.
func (u *KnowledgeUnit) Source() string {
	if s, ok := u.Metadata["source"].(string); ok && s != "" {
		return s
	}
	return "unknown"
}
