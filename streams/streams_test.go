package streams

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/5amCurfew/tap-linnworks/linnworks"
	"github.com/5amCurfew/tap-linnworks/models"
)

func collect(t *testing.T, s *Stream, client *linnworks.Client, since time.Time) []map[string]interface{} {
	t.Helper()

	var records []map[string]interface{}
	err := s.Fetch(client, since, func(record map[string]interface{}) error {
		records = append(records, record)
		return nil
	})
	assert.NoError(t, err)

	return records
}

func TestLookup(t *testing.T) {
	s, err := Lookup("open_orders")
	assert.NoError(t, err)
	assert.Equal(t, OpenOrders, s)

	_, err = Lookup("nonexistent")
	assert.Error(t, err)
}

func TestOpenOrdersPagination(t *testing.T) {
	models.Config = models.TapConfig{StartDate: "2023-01-01T00:00:00Z", PageSize: 2}

	var requestedPages []int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/Orders/GetOpenOrders", r.URL.Path)

		var payload map[string]interface{}
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		page := int(payload["pageNumber"].(float64))
		requestedPages = append(requestedPages, page)

		json.NewEncoder(w).Encode(map[string]interface{}{
			"PageNumber": page,
			"TotalPages": 2,
			"Data": []map[string]interface{}{
				{
					"NumOrderId": page*10 + 1,
					"GeneralInfo": map[string]interface{}{
						"ReceivedDate": fmt.Sprintf("2023-06-0%dT00:00:00Z", page),
					},
				},
			},
		})
	}))
	defer server.Close()

	client := linnworks.NewClient(server.URL, "t", "")
	records := collect(t, OpenOrders, client, time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC))

	assert.Equal(t, []int{1, 2}, requestedPages)
	assert.Len(t, records, 2)
	// replication value lifted from GeneralInfo to the top level
	assert.Equal(t, "2023-06-01T00:00:00Z", records[0]["ReceivedDate"])
	assert.Equal(t, "2023-06-02T00:00:00Z", records[1]["ReceivedDate"])
}

func TestOpenOrdersSendsDateWindow(t *testing.T) {
	models.Config = models.TapConfig{StartDate: "2023-01-01T00:00:00Z"}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var payload map[string]interface{}
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&payload))

		filters := payload["filters"].(map[string]interface{})
		dateFields := filters["DateFields"].([]interface{})
		dateField := dateFields[0].(map[string]interface{})
		assert.Equal(t, "2023-06-01T00:00:00Z", dateField["DateFrom"])
		assert.Equal(t, "GENERAL_INFO_DATE", dateField["FieldCode"])

		json.NewEncoder(w).Encode(map[string]interface{}{"PageNumber": 1, "TotalPages": 1, "Data": []map[string]interface{}{}})
	}))
	defer server.Close()

	client := linnworks.NewClient(server.URL, "t", "")
	records := collect(t, OpenOrders, client, time.Date(2023, 6, 1, 0, 0, 0, 0, time.UTC))
	assert.Empty(t, records)
}

func TestOpenOrdersNullDataWindow(t *testing.T) {
	models.Config = models.TapConfig{StartDate: "2023-01-01T00:00:00Z"}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{"PageNumber": 1, "TotalPages": 1, "Data": nil})
	}))
	defer server.Close()

	client := linnworks.NewClient(server.URL, "t", "")
	records := collect(t, OpenOrders, client, time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC))
	assert.Empty(t, records)
}

func TestProcessedOrdersPagination(t *testing.T) {
	models.Config = models.TapConfig{StartDate: "2023-01-01T00:00:00Z", PageSize: 1}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/ProcessedOrders/SearchProcessedOrders", r.URL.Path)

		var payload map[string]interface{}
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		request := payload["request"].(map[string]interface{})
		page := int(request["PageNumber"].(float64))
		assert.Equal(t, "processed", request["DateField"])
		assert.Equal(t, "2023-01-01T00:00:00Z", request["FromDate"])

		json.NewEncoder(w).Encode(map[string]interface{}{
			"ProcessedOrders": map[string]interface{}{
				"PageNumber": page,
				"TotalPages": 2,
				"Data": []map[string]interface{}{
					{"pkOrderID": fmt.Sprintf("order-%d", page), "dProcessedOn": "2023-06-01T00:00:00Z"},
				},
			},
		})
	}))
	defer server.Close()

	client := linnworks.NewClient(server.URL, "t", "")
	records := collect(t, ProcessedOrders, client, time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC))

	assert.Len(t, records, 2)
	assert.Equal(t, "order-1", records[0]["pkOrderID"])
	assert.Equal(t, "order-2", records[1]["pkOrderID"])
}

func TestProcessedOrderDetailsBatchesIds(t *testing.T) {
	models.Config = models.TapConfig{StartDate: "2023-01-01T00:00:00Z", PageSize: 10}

	var lookedUp []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/ProcessedOrders/SearchProcessedOrders":
			json.NewEncoder(w).Encode(map[string]interface{}{
				"ProcessedOrders": map[string]interface{}{
					"PageNumber": 1,
					"TotalPages": 1,
					"Data": []map[string]interface{}{
						{"pkOrderID": "a"},
						{"pkOrderID": "b"},
						{"pkOrderID": ""}, // blank ids are not looked up
					},
				},
			})
		case "/api/Orders/GetOrdersById":
			var payload map[string][]string
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
			lookedUp = append(lookedUp, payload["pkOrderIds"]...)

			// GetOrdersById responds with a bare array
			json.NewEncoder(w).Encode([]map[string]interface{}{
				{"OrderId": "a", "ProcessedDateTime": "2023-06-01T00:00:00Z"},
				{"OrderId": "b", "ProcessedDateTime": "2023-06-02T00:00:00Z"},
			})
		default:
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
	}))
	defer server.Close()

	client := linnworks.NewClient(server.URL, "t", "")
	records := collect(t, ProcessedOrderDetails, client, time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC))

	assert.Equal(t, []string{"a", "b"}, lookedUp)
	assert.Len(t, records, 2)
	assert.Equal(t, "a", records[0]["OrderId"])
}

func TestStockItemsStopsOnShortPage(t *testing.T) {
	models.Config = models.TapConfig{StartDate: "2023-01-01T00:00:00Z", PageSize: 2}

	var requestedPages []int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/Stock/GetStockItemsFull", r.URL.Path)

		var payload map[string]interface{}
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		page := int(payload["pageNumber"].(float64))
		requestedPages = append(requestedPages, page)

		// full first page, short second page
		items := []map[string]interface{}{{"StockItemId": fmt.Sprintf("item-%d-1", page)}}
		if page == 1 {
			items = append(items, map[string]interface{}{"StockItemId": "item-1-2"})
		}
		json.NewEncoder(w).Encode(items)
	}))
	defer server.Close()

	client := linnworks.NewClient(server.URL, "t", "")
	records := collect(t, StockItems, client, time.Time{})

	assert.Equal(t, []int{1, 2}, requestedPages)
	assert.Len(t, records, 3)
}

func TestStockItemImages(t *testing.T) {
	models.Config = models.TapConfig{StartDate: "2023-01-01T00:00:00Z", PageSize: 10}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/Stock/GetStockItemsFull":
			json.NewEncoder(w).Encode([]map[string]interface{}{
				{"StockItemId": "s1"},
				{"StockItemId": "s2"},
			})
		case "/api/Inventory/GetImagesInBulk":
			var payload map[string]map[string][]string
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
			assert.Equal(t, []string{"s1", "s2"}, payload["request"]["StockItemIds"])

			json.NewEncoder(w).Encode(map[string]interface{}{
				"Images": []map[string]interface{}{
					{"pkRowId": "img-1", "StockItemId": "s1", "IsMain": true},
					{"pkRowId": "img-2", "StockItemId": "s2", "IsMain": false},
				},
			})
		default:
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
	}))
	defer server.Close()

	client := linnworks.NewClient(server.URL, "t", "")
	records := collect(t, StockItemImages, client, time.Time{})

	assert.Len(t, records, 2)
	assert.Equal(t, "img-1", records[0]["pkRowId"])
}

func TestEmittedRecordsValidateAgainstSchema(t *testing.T) {
	record := map[string]interface{}{
		"NumOrderId":   42,
		"OrderId":      "7ab3fa62-4f29-4a36-a2c3-6a55b2d1f1b4",
		"ReceivedDate": "2023-06-01T00:00:00Z",
		"GeneralInfo":  map[string]interface{}{"ReceivedDate": "2023-06-01T00:00:00Z"},
		"HasItems":     true,
		"Items":        []interface{}{},
	}

	valid, err := models.RecordVersusSchema(record, OpenOrders.Schema)
	assert.True(t, valid)
	assert.NoError(t, err)

	record["NumOrderId"] = "not-an-integer"
	valid, err = models.RecordVersusSchema(record, OpenOrders.Schema)
	assert.False(t, valid)
	assert.Error(t, err)
}
