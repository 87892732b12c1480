package types

import (
	"bytes"
	"encoding/json"
	"fmt"
)

const (
	// DefaultTableName is used whenever a caller omits table_name
	DefaultTableName = "knowledge_base"
	// DefaultSearchLimit is used whenever a caller omits limit
	DefaultSearchLimit = 5

	// MetadataKeyName holds the document name inside record metadata
	MetadataKeyName = "name"
	// MetadataKeyDescription holds the optional document description inside record metadata
	MetadataKeyDescription = "description"
)

// Document is one ingestion input: a named list of text chunks sharing metadata
type Document struct {
	Name        string   `json:"name"`
	Description *string  `json:"description,omitempty"`
	Chunks      []string `json:"chunks"`
	Metadata    Metadata `json:"metadata,omitempty"`
}

// AddDocumentsRequest is the payload of the add_documents operation
type AddDocumentsRequest struct {
	TableName string     `json:"table_name,omitempty"`
	Documents []Document `json:"documents"`
}

// Table returns the requested table name or DefaultTableName
func (r *AddDocumentsRequest) Table() string {
	if r.TableName == "" {
		return DefaultTableName
	}
	return r.TableName
}

// Validate checks the request before any embedding work is done
func (r *AddDocumentsRequest) Validate() error {
	if len(r.Documents) == 0 {
		return ErrNoDocuments
	}
	return nil
}

// SearchRequest is the payload of the search operation
type SearchRequest struct {
	TableName string `json:"table_name,omitempty"`
	Query     string `json:"query"`
	Limit     *int   `json:"limit,omitempty"`
}

// Table returns the requested table name or DefaultTableName
func (r *SearchRequest) Table() string {
	if r.TableName == "" {
		return DefaultTableName
	}
	return r.TableName
}

// EffectiveLimit returns the requested limit or DefaultSearchLimit
func (r *SearchRequest) EffectiveLimit() int {
	if r.Limit == nil {
		return DefaultSearchLimit
	}
	return *r.Limit
}

// Validate checks query and limit
func (r *SearchRequest) Validate() error {
	if r.Query == "" {
		return ErrEmptyQuery
	}
	if r.EffectiveLimit() < 1 {
		return ErrInvalidLimit
	}
	return nil
}

// Metadata is a JSON object attached to every stored record. Numbers decode
// as json.Number so integers beyond 2^53 keep their exact value.
type Metadata map[string]any

// UnmarshalJSON decodes a JSON object, keeping numbers as json.Number
func (m *Metadata) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var raw map[string]any
	if err := dec.Decode(&raw); err != nil {
		return err
	}
	*m = raw
	return nil
}

// Clone returns a shallow copy. A nil receiver yields an empty, non-nil map.
func (m Metadata) Clone() Metadata {
	out := make(Metadata, len(m)+2)
	for k, v := range m {
		out[k] = v
	}
	return out
}

// Inject sets the document name and, when present, the description.
// The name is always written, even when empty.
func (m Metadata) Inject(name string, description *string) {
	m[MetadataKeyName] = name
	if description != nil {
		m[MetadataKeyDescription] = *description
	}
}

// Extract removes "name" and "description" from m and returns them.
// Non-string values are removed but not promoted.
func (m Metadata) Extract() (name string, description *string) {
	if v, ok := m[MetadataKeyName]; ok {
		delete(m, MetadataKeyName)
		if s, ok := v.(string); ok {
			name = s
		}
	}
	if v, ok := m[MetadataKeyDescription]; ok {
		delete(m, MetadataKeyDescription)
		if s, ok := v.(string); ok {
			description = &s
		}
	}
	return name, description
}

// Encode serializes m as a JSON object string. Nil encodes as "{}".
func (m Metadata) Encode() (string, error) {
	if m == nil {
		return "{}", nil
	}
	b, err := json.Marshal(map[string]any(m))
	if err != nil {
		return "", fmt.Errorf("encode metadata: %w", err)
	}
	return string(b), nil
}

// ParseMetadata decodes a stored metadata string. Anything that is not a
// JSON object (including an empty string) yields an empty Metadata.
func ParseMetadata(raw string) Metadata {
	var m Metadata
	if err := json.Unmarshal([]byte(raw), &m); err != nil || m == nil {
		return Metadata{}
	}
	return m
}

// StringPtr returns a pointer to s
func StringPtr(s string) *string {
	return &s
}
