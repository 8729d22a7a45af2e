package testutils

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/PxPatel/pair-matching-engine/internal/api/handlers"
	"github.com/PxPatel/pair-matching-engine/internal/api/routes"
	"github.com/PxPatel/pair-matching-engine/internal/matching"
	"github.com/PxPatel/pair-matching-engine/internal/storage/memory"
	"github.com/PxPatel/pair-matching-engine/internal/types"
)

// DefaultMarket is opened on every test server
var DefaultMarket = types.NewTradingPair("BTC", "USD")

// TestServer wraps a test HTTP server with the matching engine
type TestServer struct {
	Server *httptest.Server
	Engine *matching.Engine
	Fills  *memory.FillStore
	t      testing.TB
}

// NewTestServer creates a new test server with a fresh engine, an in-memory
// fill store and the DefaultMarket open
func NewTestServer(t testing.TB) *TestServer {
	fills := memory.NewFillStore(100)
	engine := matching.NewEngineWithStore(fills)
	require.NoError(t, engine.AddNewMarket(DefaultMarket))

	engineHolder := handlers.NewEngineHolder(engine, handlers.DefaultLimits)
	handler := routes.SetupRoutes(engineHolder, []string{"*"})
	server := httptest.NewServer(handler)

	return &TestServer{
		Server: server,
		Engine: engine,
		Fills:  fills,
		t:      t,
	}
}

// Close cleans up the test server
func (ts *TestServer) Close() {
	ts.Server.Close()
	ts.Engine.Close()
}

// URL returns the base URL for the test server
func (ts *TestServer) URL() string {
	return ts.Server.URL
}

// Get makes a GET request to the test server
func (ts *TestServer) Get(path string) *http.Response {
	resp, err := http.Get(ts.URL() + path)
	require.NoError(ts.t, err, "GET request failed")
	return resp
}

// Post makes a POST request with JSON body
func (ts *TestServer) Post(path string, body interface{}) *http.Response {
	jsonBody, err := json.Marshal(body)
	require.NoError(ts.t, err, "Failed to marshal request body")

	resp, err := http.Post(ts.URL()+path, "application/json", bytes.NewBuffer(jsonBody))
	require.NoError(ts.t, err, "POST request failed")
	return resp
}

// PostRaw makes a POST request with an unencoded body
func (ts *TestServer) PostRaw(path, body string) *http.Response {
	resp, err := http.Post(ts.URL()+path, "application/json", bytes.NewBufferString(body))
	require.NoError(ts.t, err, "POST request failed")
	return resp
}

// Delete makes a DELETE request
func (ts *TestServer) Delete(path string) *http.Response {
	req, err := http.NewRequest(http.MethodDelete, ts.URL()+path, nil)
	require.NoError(ts.t, err, "Failed to create DELETE request")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(ts.t, err, "DELETE request failed")
	return resp
}

// OrdersPath is the order endpoint of market
func OrdersPath(market string) string {
	return "/api/v1/markets/" + market + "/orders"
}

// OrderBookPath is the depth endpoint of market
func OrderBookPath(market string) string {
	return "/api/v1/markets/" + market + "/orderbook"
}

// UncrossPath is the uncross endpoint of market
func UncrossPath(market string) string {
	return "/api/v1/markets/" + market + "/uncross"
}

// DecodeJSON decodes JSON response into target and closes the body
func DecodeJSON(t testing.TB, resp *http.Response, target interface{}) {
	defer resp.Body.Close()
	err := json.NewDecoder(resp.Body).Decode(target)
	require.NoError(t, err, "Failed to decode JSON response")
}

// LevelCounts returns the number of price levels on each side of DefaultMarket
func (ts *TestServer) LevelCounts() (bidLevels, askLevels int) {
	book, err := ts.Engine.OrderBook(DefaultMarket)
	require.NoError(ts.t, err)
	return book.LevelCount(types.Bid), book.LevelCount(types.Ask)
}
