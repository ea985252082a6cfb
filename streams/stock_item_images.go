package streams

import (
	"time"

	"github.com/5amCurfew/tap-linnworks/linnworks"
	util "github.com/5amCurfew/tap-linnworks/util"
)

var StockItemImages = &Stream{
	Name:              "stock_item_images",
	KeyProperties:     []string{"pkRowId"},
	ReplicationMethod: FullTable,
	Schema: objectSchema(map[string]interface{}{
		"pkRowId":             prop("string"),
		"StockItemId":         prop("string"),
		"ImageId":             prop("string"),
		"ImageUrl":            prop("string"),
		"ImageThumbnailUrl":   prop("string"),
		"FullSource":          prop("string"),
		"FullSourceThumbnail": prop("string"),
		"IsMain":              prop("boolean"),
		"SortOrder":           prop("integer"),
		"ChecksumValue":       prop("string"),
		"RawChecksum":         prop("string"),
	}),
	Fetch: fetchStockItemImages,
}

// fetchStockItemImages walks the stock item pages, batching StockItemId
// values into GetImagesInBulk lookups
func fetchStockItemImages(c *linnworks.Client, since time.Time, emit EmitFunc) error {
	batch := make([]string, 0, idBatchSize)

	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		response, err := c.Post("/api/Inventory/GetImagesInBulk", map[string]interface{}{
			"request": map[string]interface{}{
				"StockItemIds": batch,
			},
		})
		batch = batch[:0]
		if err != nil {
			return err
		}

		images, err := recordsAtPath(response, []string{"Images"})
		if err != nil {
			return err
		}
		return emitAll(images, emit)
	}

	err := stockItemPages(c, func(records []map[string]interface{}) error {
		for _, record := range records {
			id := util.GetValueAtPath([]string{"StockItemId"}, record)
			if util.IsEmpty(id) {
				continue
			}
			batch = append(batch, util.ToString(id))
			if len(batch) == idBatchSize {
				if err := flush(); err != nil {
					return err
				}
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	return flush()
}
