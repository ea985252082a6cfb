package cmd

import (
	"encoding/json"
	"fmt"
	"os"
)

// About prints the tap description and its config requirements to stdout
func About(version string) error {
	about := map[string]interface{}{
		"name":        "tap-linnworks",
		"version":     version,
		"description": "Singer tap for the Linnworks e-commerce platform",
		"settings": map[string]interface{}{
			"type": "object",
			"required": []string{
				"application_id",
				"application_secret",
				"installation_token",
				"start_date",
			},
			"properties": map[string]interface{}{
				"application_id":     map[string]interface{}{"type": "string", "secret": true},
				"application_secret": map[string]interface{}{"type": "string", "secret": true},
				"installation_token": map[string]interface{}{"type": "string", "secret": true},
				"start_date":         map[string]interface{}{"type": "string", "format": "date-time"},
				"user_agent":         map[string]interface{}{"type": "string"},
				"page_size":          map[string]interface{}{"type": "integer"},
			},
		},
	}

	aboutJson, err := json.MarshalIndent(about, "", "  ")
	if err != nil {
		return fmt.Errorf("error marshalling about: %w", err)
	}

	os.Stdout.Write(aboutJson)
	os.Stdout.Write([]byte("\n"))

	return nil
}
