package lib

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/5amCurfew/tap-linnworks/models"
	"github.com/5amCurfew/tap-linnworks/streams"
	util "github.com/5amCurfew/tap-linnworks/util"
)

// Transform validates a record is emittable: every key property must be
// present and non-empty
func Transform(s *streams.Stream, record map[string]interface{}) error {
	for _, keyProperty := range s.KeyProperties {
		if util.IsEmpty(record[keyProperty]) {
			return fmt.Errorf("key property %s null or empty in record", keyProperty)
		}
	}
	return nil
}

// ReplicationValue returns the record's replication-key value, false when
// the stream is FULL_TABLE or the field is absent
func ReplicationValue(s *streams.Stream, record map[string]interface{}) (string, bool) {
	if s.ReplicationKey == "" {
		return "", false
	}
	value := record[s.ReplicationKey]
	if util.IsEmpty(value) {
		return "", false
	}
	return util.ToString(value), true
}

// Keep checks the record against the cursor the stream run started from.
// Records at or before a stored bookmark were emitted by a previous run;
// the configured start_date itself is inclusive.
func Keep(s *streams.Stream, record map[string]interface{}, since time.Time, fromBookmark bool) bool {
	value, ok := ReplicationValue(s, record)
	if !ok {
		return true
	}

	t, err := util.ParseTimestamp(value)
	if err != nil {
		return true
	}

	if fromBookmark {
		return t.After(since)
	}
	return !t.Before(since)
}

// ProduceRecordMessage emits a RECORD message for the stream
func ProduceRecordMessage(stream string, record map[string]interface{}) error {
	message := models.Message{
		Type:          "RECORD",
		Stream:        stream,
		Record:        record,
		TimeExtracted: time.Now().UTC().Format(time.RFC3339),
	}

	messageJson, err := json.Marshal(message)
	if err != nil {
		return fmt.Errorf("error creating record message: %w", err)
	}

	os.Stdout.Write(messageJson)
	os.Stdout.Write([]byte("\n"))

	return nil
}
