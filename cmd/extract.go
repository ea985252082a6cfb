package cmd

import (
	"fmt"
	"os"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/5amCurfew/tap-linnworks/lib"
	"github.com/5amCurfew/tap-linnworks/linnworks"
	"github.com/5amCurfew/tap-linnworks/models"
	"github.com/5amCurfew/tap-linnworks/streams"
)

// state is checkpointed every checkpointInterval emitted records and at
// stream completion
const checkpointInterval = 500

// errSyncAborted unwinds the fetch goroutine once the consumer has stopped
// draining records
var errSyncAborted = fmt.Errorf("stream sync aborted")

type ExecutionMetric struct {
	ExecutionStart    time.Time     `json:"execution_start,omitempty"`
	ExecutionEnd      time.Time     `json:"execution_end,omitempty"`
	ExecutionDuration time.Duration `json:"execution_duration,omitempty"`
	NewRecords        uint64        `json:"new_records"`
}

// Extract authenticates, then syncs each selected stream sequentially,
// emitting SCHEMA, RECORD and STATE messages to stdout
func Extract(statePath string, catalogPath string) error {
	var execution ExecutionMetric
	execution.ExecutionStart = time.Now().UTC()

	if _, err := os.Stat(statePath); err != nil {
		models.State.Create()
	} else if err := models.State.Read(statePath); err != nil {
		return fmt.Errorf("error reading state: %w", err)
	}

	var catalog *models.Catalog
	if catalogPath != "" {
		catalog = &models.Catalog{}
		if err := catalog.Read(catalogPath); err != nil {
			return fmt.Errorf("error reading catalog: %w", err)
		}
	}

	client, err := linnworks.Authorize(&models.Config)
	if err != nil {
		return err
	}

	for _, s := range streams.All {
		if catalog != nil && !catalog.Selected(s.Name) {
			log.WithFields(log.Fields{"stream": s.Name}).Info("stream not selected, skipping")
			continue
		}
		if err := syncStream(client, s, statePath, &execution); err != nil {
			return err
		}
	}

	if err := models.State.Write(statePath); err != nil {
		return err
	}

	execution.ExecutionEnd = time.Now().UTC()
	execution.ExecutionDuration = execution.ExecutionEnd.Sub(execution.ExecutionStart)
	log.WithFields(log.Fields{"metrics": execution}).Info("execution metrics")

	return nil
}

// syncStream extracts a single stream from its resolved cursor. Pages arrive
// newest-first, so the highest replication value seen is tracked locally and
// the stored bookmark only advances once the stream completes; an interrupted
// run leaves the bookmark where the previous run finished
func syncStream(client *linnworks.Client, s *streams.Stream, statePath string, execution *ExecutionMetric) error {
	entry := catalogEntry(s)
	if err := entry.Message(); err != nil {
		return fmt.Errorf("error generating schema message: %w", err)
	}

	since, fromBookmark := models.State.ResolveStart(s.Name, models.Config.StartTime())
	log.WithFields(log.Fields{
		"stream":        s.Name,
		"since":         since.Format(time.RFC3339),
		"from_bookmark": fromBookmark,
	}).Info("extracting stream")

	// a stored bookmark was fully emitted by a previous run, resume just past it
	fetchSince := since
	if fromBookmark {
		fetchSince = since.Add(time.Second)
	}

	recordChan := make(chan map[string]interface{})
	errChan := make(chan error, 1)
	done := make(chan struct{})

	go func() {
		defer close(recordChan)
		errChan <- s.Fetch(client, fetchSince, func(record map[string]interface{}) error {
			select {
			case recordChan <- record:
				return nil
			case <-done:
				return errSyncAborted
			}
		})
	}()

	// abort unblocks the fetch goroutine and drains it before returning
	abort := func(err error) error {
		close(done)
		for range recordChan {
		}
		<-errChan
		return err
	}

	var emitted uint64
	var latest string
	for record := range recordChan {
		if err := lib.Transform(s, record); err != nil {
			log.WithFields(log.Fields{"stream": s.Name, "error": err}).Warn("error processing record - skipping...")
			continue
		}

		if !lib.Keep(s, record, since, fromBookmark) {
			continue
		}

		if valid, validateErr := models.RecordVersusSchema(record, s.Schema); !valid {
			log.WithFields(log.Fields{"stream": s.Name, "error": validateErr}).Warn("record violates schema constraints in catalog - skipping...")
			continue
		}

		if err := lib.ProduceRecordMessage(s.Name, record); err != nil {
			return abort(fmt.Errorf("error generating record message: %w", err))
		}

		if value, ok := lib.ReplicationValue(s, record); ok && models.LaterThan(value, latest) {
			latest = value
		}

		emitted++
		execution.NewRecords++

		// mid-stream checkpoints carry the bookmarks of the last completed
		// run: records on later (older) pages are still unemitted
		if emitted%checkpointInterval == 0 {
			if err := checkpoint(statePath); err != nil {
				return abort(err)
			}
		}
	}

	if err := <-errChan; err != nil {
		return fmt.Errorf("error extracting %s: %w", s.Name, err)
	}

	if latest != "" {
		models.State.Advance(s.Name, s.ReplicationKey, latest)
	}

	log.WithFields(log.Fields{"stream": s.Name, "records": emitted}).Info("stream complete")

	return checkpoint(statePath)
}

func checkpoint(statePath string) error {
	if err := models.State.Message(); err != nil {
		return fmt.Errorf("error generating state message: %w", err)
	}
	if err := models.State.Write(statePath); err != nil {
		return fmt.Errorf("error persisting state: %w", err)
	}
	return nil
}
