package models

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/xeipuuv/gojsonschema"
)

type Catalog struct {
	Streams []CatalogEntry `json:"streams"`
}

type CatalogEntry struct {
	Stream            string                 `json:"stream"`
	TapStreamID       string                 `json:"tap_stream_id"`
	KeyProperties     []string               `json:"key_properties"`
	ReplicationKey    string                 `json:"replication_key,omitempty"`
	ReplicationMethod string                 `json:"replication_method"`
	Schema            map[string]interface{} `json:"schema"`
	Metadata          []Metadata             `json:"metadata,omitempty"`
}

type Metadata struct {
	Breadcrumb []string               `json:"breadcrumb"`
	Metadata   map[string]interface{} `json:"metadata"`
}

// Read parses the catalog JSON file at filePath
func (c *Catalog) Read(filePath string) error {
	catalogFile, err := os.ReadFile(filePath)
	if err != nil {
		return fmt.Errorf("error reading catalog file: %w", err)
	}

	if err := json.Unmarshal(catalogFile, c); err != nil {
		return fmt.Errorf("error unmarshalling catalog json: %w", err)
	}

	return nil
}

// Selected reports whether the stream is selected for extraction. Streams
// absent from the catalog, or with no selection metadata, default to selected.
func (c *Catalog) Selected(stream string) bool {
	for _, entry := range c.Streams {
		if entry.Stream != stream && entry.TapStreamID != stream {
			continue
		}
		for _, m := range entry.Metadata {
			if len(m.Breadcrumb) != 0 {
				continue
			}
			if selected, ok := m.Metadata["selected"].(bool); ok {
				return selected
			}
		}
	}
	return true
}

// Message emits a SCHEMA message for the catalog entry
func (e *CatalogEntry) Message() error {
	message := Message{
		Type:          "SCHEMA",
		Stream:        e.Stream,
		Schema:        e.Schema,
		KeyProperties: e.KeyProperties,
	}
	if e.ReplicationKey != "" {
		message.BookmarkProperties = []string{e.ReplicationKey}
	}

	messageJson, err := json.Marshal(message)
	if err != nil {
		return fmt.Errorf("error creating schema message: %w", err)
	}

	os.Stdout.Write(messageJson)
	os.Stdout.Write([]byte("\n"))

	return nil
}

// RecordVersusSchema validates a record against a stream schema
func RecordVersusSchema(record map[string]interface{}, schema map[string]interface{}) (bool, error) {
	schemaLoader := gojsonschema.NewGoLoader(schema)
	recordLoader := gojsonschema.NewGoLoader(record)

	result, err := gojsonschema.Validate(schemaLoader, recordLoader)
	if err != nil {
		return false, fmt.Errorf("error validating record: %w", err)
	}

	if result.Valid() {
		return true, nil
	}

	return false, fmt.Errorf("%s", result.Errors())
}
