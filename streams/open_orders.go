package streams

import (
	"time"

	"github.com/5amCurfew/tap-linnworks/linnworks"
	"github.com/5amCurfew/tap-linnworks/models"
	util "github.com/5amCurfew/tap-linnworks/util"
)

var OpenOrders = &Stream{
	Name:              "open_orders",
	KeyProperties:     []string{"NumOrderId"},
	ReplicationKey:    "ReceivedDate",
	ReplicationMethod: Incremental,
	Schema: objectSchema(map[string]interface{}{
		"NumOrderId":        prop("integer"),
		"OrderId":           prop("string"),
		"ReceivedDate":      datetimeProp(),
		"GeneralInfo":       objectProp(),
		"ShippingInfo":      objectProp(),
		"CustomerInfo":      objectProp(),
		"TotalsInfo":        objectProp(),
		"TaxInfo":           objectProp(),
		"FolderName":        arrayProp(),
		"IsPostFilteredOut": prop("boolean"),
		"CanFulfil":         prop("boolean"),
		"Fulfillment":       objectProp(),
		"Items":             arrayProp(),
		"HasItems":          prop("boolean"),
		"TotalItemsSum":     prop("integer"),
	}),
	Fetch: fetchOpenOrders,
}

func fetchOpenOrders(c *linnworks.Client, since time.Time, emit EmitFunc) error {
	payload := func(page int) map[string]interface{} {
		return map[string]interface{}{
			"filters": map[string]interface{}{
				"DateFields": []map[string]interface{}{
					{
						"DateFrom":  since.UTC().Format(time.RFC3339),
						"Type":      "Range",
						"FieldCode": "GENERAL_INFO_DATE",
					},
				},
			},
			"entriesPerPage": models.Config.EntriesPerPage(),
			"pageNumber":     page,
			"sorting": []map[string]interface{}{
				{
					"FieldCode": "GENERAL_INFO_DATE",
					"Direction": "Descending",
				},
			},
		}
	}

	return searchPages(c, "/api/Orders/GetOpenOrders", []string{"Data"}, nil, payload, func(records []map[string]interface{}) error {
		for _, record := range records {
			// the replication value lives inside GeneralInfo, lift it to the top level
			record["ReceivedDate"] = util.GetValueAtPath([]string{"GeneralInfo", "ReceivedDate"}, record)
		}
		return emitAll(records, emit)
	})
}
