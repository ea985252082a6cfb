package streams

import (
	"time"

	"github.com/5amCurfew/tap-linnworks/linnworks"
	util "github.com/5amCurfew/tap-linnworks/util"
)

var ProcessedOrderDetails = &Stream{
	Name:              "processed_order_details",
	KeyProperties:     []string{"OrderId"},
	ReplicationKey:    "ProcessedDateTime",
	ReplicationMethod: Incremental,
	Schema: objectSchema(map[string]interface{}{
		"OrderId":              prop("string"),
		"NumOrderId":           prop("integer"),
		"ProcessedDateTime":    datetimeProp(),
		"Processed":            prop("boolean"),
		"FulfilmentLocationId": prop("string"),
		"GeneralInfo":          objectProp(),
		"ShippingInfo":         objectProp(),
		"CustomerInfo":         objectProp(),
		"TotalsInfo":           objectProp(),
		"ExtendedProperties":   arrayProp(),
		"FolderName":           arrayProp(),
		"Items":                arrayProp(),
		"Notes":                arrayProp(),
		"PaidDateTime":         datetimeProp(),
		"TalkStatus":           prop("string"),
	}),
	Fetch: fetchProcessedOrderDetails,
}

// fetchProcessedOrderDetails walks the processed-orders search for the same
// window, batching order ids into GetOrdersById lookups
func fetchProcessedOrderDetails(c *linnworks.Client, since time.Time, emit EmitFunc) error {
	batch := make([]string, 0, idBatchSize)

	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		response, err := c.Post("/api/Orders/GetOrdersById", map[string]interface{}{
			"pkOrderIds": batch,
		})
		batch = batch[:0]
		if err != nil {
			return err
		}

		details, err := recordsAtPath(response, []string{"results"})
		if err != nil {
			return err
		}
		return emitAll(details, emit)
	}

	err := searchProcessedOrders(c, since, func(records []map[string]interface{}) error {
		for _, record := range records {
			id := util.GetValueAtPath([]string{"pkOrderID"}, record)
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
