package streams

import (
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/5amCurfew/tap-linnworks/linnworks"
	util "github.com/5amCurfew/tap-linnworks/util"
)

// Replication methods
const (
	Incremental = "INCREMENTAL"
	FullTable   = "FULL_TABLE"
)

// batch size for id-lookup endpoints (GetOrdersById, GetImagesInBulk)
const idBatchSize = 100

// EmitFunc receives each extracted record in page order
type EmitFunc func(record map[string]interface{}) error

// Stream describes one extractable Linnworks entity: its schema, keys,
// replication behaviour and how to fetch it
type Stream struct {
	Name              string
	KeyProperties     []string
	ReplicationKey    string
	ReplicationMethod string
	Schema            map[string]interface{}
	Fetch             func(c *linnworks.Client, since time.Time, emit EmitFunc) error
}

// All is the fixed set of extractable streams, in extraction order
var All = []*Stream{
	OpenOrders,
	ProcessedOrders,
	ProcessedOrderDetails,
	StockItems,
	StockItemImages,
}

func Lookup(name string) (*Stream, error) {
	for _, s := range All {
		if s.Name == name {
			return s, nil
		}
	}
	return nil, fmt.Errorf("unknown stream: %s", name)
}

// searchPages walks a paged search endpoint until the upstream reports the
// final page, passing each page of records to handle. pageInfoPath locates
// the object holding PageNumber/TotalPages; recordsPath locates the records
// array.
func searchPages(c *linnworks.Client, path string, recordsPath []string, pageInfoPath []string, payload func(page int) map[string]interface{}, handle func(records []map[string]interface{}) error) error {
	for page := 1; ; page++ {
		log.WithFields(log.Fields{"path": path, "page": page}).Info("requesting page")

		response, err := c.Post(path, payload(page))
		if err != nil {
			return err
		}

		records, err := recordsAtPath(response, recordsPath)
		if err != nil {
			return fmt.Errorf("%s page %d: %w", path, page, err)
		}

		if err := handle(records); err != nil {
			return err
		}

		pageInfo, ok := util.GetValueAtPath(pageInfoPath, response).(map[string]interface{})
		if !ok {
			return nil
		}
		pageNumber, pageNumberOk := pageInfo["PageNumber"].(float64)
		totalPages, totalPagesOk := pageInfo["TotalPages"].(float64)
		if !pageNumberOk || !totalPagesOk || pageNumber >= totalPages {
			return nil
		}
	}
}

// recordsAtPath extracts the records array at path within the response map
func recordsAtPath(response map[string]interface{}, path []string) ([]map[string]interface{}, error) {
	value := util.GetValueAtPath(path, response)
	if value == nil {
		// date windows with no activity come back with a null Data array
		return nil, nil
	}

	items, ok := value.([]interface{})
	if !ok {
		return nil, fmt.Errorf("no records array at path %v", path)
	}

	records := make([]map[string]interface{}, 0, len(items))
	for _, item := range items {
		record, ok := item.(map[string]interface{})
		if !ok {
			log.WithFields(log.Fields{"item": item}).Warn("encountered non-map element in records array")
			continue
		}
		records = append(records, record)
	}

	return records, nil
}

// emitAll sends every record in page order
func emitAll(records []map[string]interface{}, emit EmitFunc) error {
	for _, record := range records {
		if err := emit(record); err != nil {
			return err
		}
	}
	return nil
}
