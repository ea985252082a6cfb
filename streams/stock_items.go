package streams

import (
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/5amCurfew/tap-linnworks/linnworks"
	"github.com/5amCurfew/tap-linnworks/models"
)

var StockItems = &Stream{
	Name:              "stock_items",
	KeyProperties:     []string{"StockItemId"},
	ReplicationMethod: FullTable,
	Schema: objectSchema(map[string]interface{}{
		"StockItemId":           prop("string"),
		"StockItemIntId":        prop("integer"),
		"ItemNumber":            prop("string"),
		"ItemTitle":             prop("string"),
		"BarcodeNumber":         prop("string"),
		"MetaData":              prop("string"),
		"CategoryId":            prop("string"),
		"CategoryName":          prop("string"),
		"PackageGroupId":        prop("string"),
		"PackageGroupName":      prop("string"),
		"PostalServiceId":       prop("string"),
		"PostalServiceName":     prop("string"),
		"PurchasePrice":         prop("number"),
		"RetailPrice":           prop("number"),
		"TaxRate":               prop("number"),
		"Weight":                prop("number"),
		"Width":                 prop("number"),
		"Height":                prop("number"),
		"Depth":                 prop("number"),
		"DimsDescription":       prop("string"),
		"IsCompositeParent":     prop("boolean"),
		"IsBatchedStockType":    prop("boolean"),
		"IsArchived":            prop("boolean"),
		"IsVariationParent":     prop("boolean"),
		"StockLevels":           arrayProp(),
		"CreationDate":          datetimeProp(),
		"InventoryTrackingType": prop("integer"),
	}),
	Fetch: fetchStockItems,
}

func fetchStockItems(c *linnworks.Client, since time.Time, emit EmitFunc) error {
	return stockItemPages(c, func(records []map[string]interface{}) error {
		return emitAll(records, emit)
	})
}

// stockItemPages walks GetStockItemsFull, which returns a bare array per
// page and signals completion with a short page, shared with the images
// child stream
func stockItemPages(c *linnworks.Client, handle func(records []map[string]interface{}) error) error {
	entriesPerPage := models.Config.EntriesPerPage()

	for page := 1; ; page++ {
		log.WithFields(log.Fields{"path": "/api/Stock/GetStockItemsFull", "page": page}).Info("requesting page")

		response, err := c.Post("/api/Stock/GetStockItemsFull", map[string]interface{}{
			"loadCompositeParents": false,
			"loadVariationParents": false,
			"entriesPerPage":       entriesPerPage,
			"pageNumber":           page,
			"dataRequirements":     []string{"StockLevels"},
		})
		if err != nil {
			return err
		}

		records, err := recordsAtPath(response, []string{"results"})
		if err != nil {
			return err
		}

		if err := handle(records); err != nil {
			return err
		}

		if len(records) < entriesPerPage {
			return nil
		}
	}
}
