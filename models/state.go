package models

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"

	util "github.com/5amCurfew/tap-linnworks/util"
)

var StateMutex sync.RWMutex
var State TapState

type TapState struct {
	Bookmarks map[string]Bookmark `json:"bookmarks"`
}

type Bookmark struct {
	ReplicationKey      string `json:"replication_key,omitempty"`
	ReplicationKeyValue string `json:"replication_key_value,omitempty"`
	UpdatedAt           string `json:"updated_at,omitempty"`
}

// Create initialises an empty state
func (s *TapState) Create() {
	StateMutex.Lock()
	defer StateMutex.Unlock()
	s.Bookmarks = map[string]Bookmark{}
}

// Read loads state from the JSON file at filePath
func (s *TapState) Read(filePath string) error {
	stateFile, err := os.ReadFile(filePath)
	if err != nil {
		return fmt.Errorf("error reading state file: %w", err)
	}

	if err := json.Unmarshal(stateFile, s); err != nil {
		return fmt.Errorf("error unmarshalling state json: %w", err)
	}

	StateMutex.Lock()
	defer StateMutex.Unlock()
	if s.Bookmarks == nil {
		s.Bookmarks = map[string]Bookmark{}
	}

	return nil
}

// ResolveStart returns the stored bookmark for the stream, or fallback (the
// configured start_date) when none exists. The second return reports whether
// a stored bookmark was used.
func (s *TapState) ResolveStart(stream string, fallback time.Time) (time.Time, bool) {
	StateMutex.RLock()
	defer StateMutex.RUnlock()

	bookmark, exists := s.Bookmarks[stream]
	if !exists || bookmark.ReplicationKeyValue == "" {
		return fallback, false
	}

	t, err := util.ParseTimestamp(bookmark.ReplicationKeyValue)
	if err != nil {
		return fallback, false
	}

	return t, true
}

// Advance updates the stream bookmark to the maximum of the current value
// and value, never regressing
func (s *TapState) Advance(stream string, replicationKey string, value string) {
	StateMutex.Lock()
	defer StateMutex.Unlock()

	current, exists := s.Bookmarks[stream]
	if exists && !LaterThan(value, current.ReplicationKeyValue) {
		return
	}

	s.Bookmarks[stream] = Bookmark{
		ReplicationKey:      replicationKey,
		ReplicationKeyValue: value,
		UpdatedAt:           time.Now().UTC().Format(time.RFC3339),
	}
}

// LaterThan reports whether candidate is strictly after current, comparing
// as timestamps where possible and lexicographically otherwise
func LaterThan(candidate string, current string) bool {
	if current == "" {
		return true
	}

	candidateTime, candidateErr := util.ParseTimestamp(candidate)
	currentTime, currentErr := util.ParseTimestamp(current)
	if candidateErr == nil && currentErr == nil {
		return candidateTime.After(currentTime)
	}

	return candidate > current
}

// Write persists the current state to the JSON file at filePath
func (s *TapState) Write(filePath string) error {
	StateMutex.RLock()
	defer StateMutex.RUnlock()

	if err := util.WriteJSON(filePath, s); err != nil {
		return fmt.Errorf("error writing state json: %w", err)
	}

	return nil
}

// Message emits a STATE message with the current bookmarks
func (s *TapState) Message() error {
	StateMutex.RLock()
	value := map[string]interface{}{"bookmarks": s.Bookmarks}
	StateMutex.RUnlock()

	message := Message{
		Type:  "STATE",
		Value: value,
	}

	messageJson, err := json.Marshal(message)
	if err != nil {
		return fmt.Errorf("error creating state message: %w", err)
	}

	os.Stdout.Write(messageJson)
	os.Stdout.Write([]byte("\n"))

	return nil
}
