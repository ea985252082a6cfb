package util

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

// Timestamp layouts seen in Linnworks API responses
var timestampLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// WriteJSON writes data to fileName as indented JSON
func WriteJSON(fileName string, data interface{}) error {
	result, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Errorf("error marshalling json for %s: %w", fileName, err)
	}

	if err := os.WriteFile(fileName, result, 0644); err != nil {
		return fmt.Errorf("error writing %s: %w", fileName, err)
	}

	return nil
}

// GetValueAtPath returns the value at the (nested) path in input, nil if absent
func GetValueAtPath(path []string, input map[string]interface{}) interface{} {
	if len(path) == 0 {
		return input
	}

	check, ok := input[path[0]]
	if !ok || check == nil {
		return nil
	}
	if len(path) == 1 {
		return input[path[0]]
	}

	nextInput, ok := input[path[0]].(map[string]interface{})
	if !ok {
		return nil
	}

	return GetValueAtPath(path[1:], nextInput)
}

func ToString(v interface{}) string {
	return fmt.Sprintf("%v", v)
}

func IsEmpty(v interface{}) bool {
	return v == nil || ToString(v) == ""
}

// ParseTimestamp parses the timestamp formats returned by Linnworks endpoints
func ParseTimestamp(value string) (time.Time, error) {
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised timestamp format: %s", value)
}
