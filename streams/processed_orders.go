package streams

import (
	"time"

	"github.com/5amCurfew/tap-linnworks/linnworks"
	"github.com/5amCurfew/tap-linnworks/models"
)

var ProcessedOrders = &Stream{
	Name:              "processed_orders",
	KeyProperties:     []string{"pkOrderID"},
	ReplicationKey:    "dProcessedOn",
	ReplicationMethod: Incremental,
	Schema: objectSchema(map[string]interface{}{
		"pkOrderID":              prop("string"),
		"nOrderId":               prop("integer"),
		"dReceivedDate":          datetimeProp(),
		"dProcessedOn":           datetimeProp(),
		"timeDiff":               prop("number"),
		"fPostageCost":           prop("number"),
		"fTotalCharge":           prop("number"),
		"PostageCostExTax":       prop("number"),
		"Subtotal":               prop("number"),
		"fTax":                   prop("number"),
		"TotalDiscount":          prop("number"),
		"ProfitMargin":           prop("number"),
		"CountryTaxRate":         prop("number"),
		"nStatus":                prop("integer"),
		"cCurrency":              prop("string"),
		"PostalTrackingNumber":   prop("string"),
		"cCountry":               prop("string"),
		"Source":                 prop("string"),
		"SubSource":              prop("string"),
		"PostalServiceName":      prop("string"),
		"PostalServiceCode":      prop("string"),
		"ReferenceNum":           prop("string"),
		"SecondaryReference":     prop("string"),
		"ExternalReference":      prop("string"),
		"Address1":               prop("string"),
		"Address2":               prop("string"),
		"Address3":               prop("string"),
		"Town":                   prop("string"),
		"Region":                 prop("string"),
		"BuyerPhoneNumber":       prop("string"),
		"Company":                prop("string"),
		"ChannelBuyerName":       prop("string"),
		"AccountName":            prop("string"),
		"cFullName":              prop("string"),
		"cEmailAddress":          prop("string"),
		"cPostCode":              prop("string"),
		"dPaidOn":                datetimeProp(),
		"dCancelledOn":           datetimeProp(),
		"ItemWeight":             prop("number"),
		"TotalWeight":            prop("number"),
		"HoldOrCancel":           prop("boolean"),
		"IsResend":               prop("boolean"),
		"IsExchange":             prop("boolean"),
		"TaxId":                  prop("string"),
		"FulfilmentLocationName": prop("string"),
	}),
	Fetch: fetchProcessedOrders,
}

func fetchProcessedOrders(c *linnworks.Client, since time.Time, emit EmitFunc) error {
	return searchProcessedOrders(c, since, func(records []map[string]interface{}) error {
		return emitAll(records, emit)
	})
}

// searchProcessedOrders walks the processed-orders search window from since
// to tomorrow, shared with the order-details child stream
func searchProcessedOrders(c *linnworks.Client, since time.Time, handle func(records []map[string]interface{}) error) error {
	// upstream treats ToDate as exclusive of in-flight activity, pad by a day
	to := time.Now().UTC().Add(24 * time.Hour)

	payload := func(page int) map[string]interface{} {
		return map[string]interface{}{
			"request": map[string]interface{}{
				"PageNumber":     page,
				"ResultsPerPage": models.Config.EntriesPerPage(),
				"DateField":      "processed",
				"FromDate":       since.UTC().Format(time.RFC3339),
				"ToDate":         to.Format(time.RFC3339),
				"SearchSorting": map[string]interface{}{
					"SortField":     "dProcessedOn",
					"SortDirection": "DESC",
				},
			},
		}
	}

	return searchPages(c, "/api/ProcessedOrders/SearchProcessedOrders", []string{"ProcessedOrders", "Data"}, []string{"ProcessedOrders"}, payload, handle)
}
