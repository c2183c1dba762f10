package ingestion

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"
)

// Metadata describes one ingested profile text
type Metadata struct {
	Source    string `json:"source,omitempty"`
	Timestamp string `json:"timestamp"` // RFC3339 format
	Hash      string `json:"hash"`      // SHA256 hex digest of the cleaned text
	Bytes     int    `json:"bytes"`
	Truncated bool   `json:"truncated"`
	Format    string `json:"format"`
}

// NewMetadata creates a new Metadata instance with current timestamp
func NewMetadata(content string, source string, format string) *Metadata {
	return &Metadata{
		Source:    source,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Hash:      ContentHash(content),
		Bytes:     len(content),
		Format:    format,
	}
}

// ContentHash returns the SHA256 hex digest of content. It keys stored imports and
// cached parse results.
func ContentHash(content string) string {
	hash := sha256.Sum256([]byte(content))
	return hex.EncodeToString(hash[:])
}

// ToJSON marshals Metadata to pretty-printed JSON
func (m *Metadata) ToJSON() ([]byte, error) {
	jsonBytes, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal metadata to JSON: %w", err)
	}
	return jsonBytes, nil
}
