package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/5amCurfew/tap-linnworks/models"
	"github.com/5amCurfew/tap-linnworks/streams"
)

// Discover prints the catalog of extractable streams as JSON to stdout
func Discover() error {
	catalog := buildCatalog()

	catalogJson, err := json.MarshalIndent(catalog, "", "  ")
	if err != nil {
		return fmt.Errorf("error marshalling catalog: %w", err)
	}

	os.Stdout.Write(catalogJson)
	os.Stdout.Write([]byte("\n"))

	return nil
}

// buildCatalog derives the catalog from the fixed stream definitions;
// deterministic for a given tap version
func buildCatalog() *models.Catalog {
	catalog := &models.Catalog{}

	for _, s := range streams.All {
		catalog.Streams = append(catalog.Streams, catalogEntry(s))
	}

	return catalog
}

func catalogEntry(s *streams.Stream) models.CatalogEntry {
	streamMetadata := map[string]interface{}{
		"inclusion":                 "available",
		"selected-by-default":       true,
		"table-key-properties":      s.KeyProperties,
		"forced-replication-method": s.ReplicationMethod,
	}
	if s.ReplicationKey != "" {
		streamMetadata["valid-replication-keys"] = []string{s.ReplicationKey}
	}

	return models.CatalogEntry{
		Stream:            s.Name,
		TapStreamID:       s.Name,
		KeyProperties:     s.KeyProperties,
		ReplicationKey:    s.ReplicationKey,
		ReplicationMethod: s.ReplicationMethod,
		Schema:            s.Schema,
		Metadata: []models.Metadata{
			{Breadcrumb: []string{}, Metadata: streamMetadata},
		},
	}
}
