// Package testutil provides a configurable mock of the collection API for
// tests, covering both the REST-style and the query-based endpoint.
package testutil

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"time"
)

// MockResponse defines the behavior for one mock endpoint response.
type MockResponse struct {
	StatusCode int
	Body       string
	Headers    map[string]string
	Delay      time.Duration
}

// MockAPI is a configurable mock collection server for testing.
type MockAPI struct {
	server   *httptest.Server
	mu       sync.RWMutex
	handlers map[string]http.HandlerFunc
	scripts  map[string][]MockResponse

	// Tracking
	RequestCount int
}

// NewMockAPI creates a new mock server. Paths without a handler or script
// respond 404.
func NewMockAPI() *MockAPI {
	mock := &MockAPI{
		handlers: make(map[string]http.HandlerFunc),
		scripts:  make(map[string][]MockResponse),
	}

	mock.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mock.mu.Lock()
		mock.RequestCount++
		script, scripted := mock.scripts[r.URL.Path]
		if scripted && len(script) > 0 {
			resp := script[0]
			// The last scripted response repeats.
			if len(script) > 1 {
				mock.scripts[r.URL.Path] = script[1:]
			}
			mock.mu.Unlock()
			writeMockResponse(w, resp)
			return
		}
		mock.mu.Unlock()

		mock.mu.RLock()
		handler, exists := mock.handlers[r.URL.Path]
		mock.mu.RUnlock()

		if exists {
			handler(w, r)
			return
		}

		http.NotFound(w, r)
	}))

	return mock
}

// URL returns the mock server URL.
func (m *MockAPI) URL() string {
	return m.server.URL
}

// Close shuts down the mock server.
func (m *MockAPI) Close() {
	m.server.Close()
}

// Reset clears tracking counters and scripts.
func (m *MockAPI) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.RequestCount = 0
	m.scripts = make(map[string][]MockResponse)
}

// GetRequestCount returns the number of requests made to the server.
func (m *MockAPI) GetRequestCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.RequestCount
}

// SetHandler sets a custom handler for a specific path.
func (m *MockAPI) SetHandler(path string, handler http.HandlerFunc) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handlers[path] = handler
}

// SetResponse configures a fixed response for a path.
func (m *MockAPI) SetResponse(path string, resp MockResponse) {
	m.SetHandler(path, func(w http.ResponseWriter, r *http.Request) {
		writeMockResponse(w, resp)
	})
}

// SetScript configures a sequence of responses for a path: each request pops
// the next response, and the last one repeats. Useful for
// fail-then-succeed retry scenarios.
func (m *MockAPI) SetScript(path string, responses []MockResponse) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.scripts[path] = responses
}

func writeMockResponse(w http.ResponseWriter, resp MockResponse) {
	if resp.Delay > 0 {
		time.Sleep(resp.Delay)
	}
	for key, value := range resp.Headers {
		w.Header().Set(key, value)
	}
	if w.Header().Get("Content-Type") == "" {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
	}
	w.WriteHeader(resp.StatusCode)
	if resp.Body != "" {
		w.Write([]byte(resp.Body))
	}
}

// ServeRESTCollection wires a handler for /{resource} that serves a
// paginated collection of the given size in the REST wire shape.
func (m *MockAPI) ServeRESTCollection(resource string, total, pageSize int) {
	m.SetHandler("/"+resource, func(w http.ResponseWriter, r *http.Request) {
		page := 1
		fmt.Sscanf(r.URL.Query().Get("page"), "%d", &page)
		body, status := RESTPage(resource, total, pageSize, page)
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(status)
		w.Write([]byte(body))
	})
}

// RESTPage builds the REST page body for the given cursor, or a 404 error
// body when the cursor is out of range.
func RESTPage(resource string, total, pageSize, page int) (string, int) {
	pages := (total + pageSize - 1) / pageSize
	if page < 1 || page > pages {
		return `{"error": "There is nothing here"}`, http.StatusNotFound
	}

	start := (page-1)*pageSize + 1
	end := page * pageSize
	if end > total {
		end = total
	}

	results := make([]map[string]any, 0, end-start+1)
	for id := start; id <= end; id++ {
		if resource == "location" {
			results = append(results, RESTLocationEntry(id))
		} else {
			results = append(results, RESTCharacterEntry(id))
		}
	}

	var next any
	if page < pages {
		next = fmt.Sprintf("/%s?page=%d", resource, page+1)
	}

	body, _ := json.Marshal(map[string]any{
		"info": map[string]any{
			"count": total,
			"pages": pages,
			"next":  next,
			"prev":  nil,
		},
		"results": results,
	})
	return string(body), http.StatusOK
}

// RESTCharacterEntry builds one character entry in the REST wire shape.
func RESTCharacterEntry(id int) map[string]any {
	return map[string]any{
		"id":      id,
		"name":    fmt.Sprintf("Character %d", id),
		"status":  "Alive",
		"species": "Human",
		"type":    "",
		"gender":  "Male",
		"origin": map[string]any{
			"name": "Earth (C-137)",
			"url":  "https://example.com/api/location/1",
		},
		"location": map[string]any{
			"name": "Citadel of Ricks",
			"url":  "https://example.com/api/location/3",
		},
		"image":   fmt.Sprintf("https://example.com/api/character/avatar/%d.jpeg", id),
		"episode": []string{"https://example.com/api/episode/1"},
		"url":     fmt.Sprintf("https://example.com/api/character/%d", id),
		"created": "2017-11-04T18:48:46.250Z",
	}
}

// RESTLocationEntry builds one location entry in the REST wire shape.
func RESTLocationEntry(id int) map[string]any {
	return map[string]any{
		"id":        id,
		"name":      fmt.Sprintf("Location %d", id),
		"type":      "Planet",
		"dimension": "Dimension C-137",
		"residents": []string{"https://example.com/api/character/1"},
		"url":       fmt.Sprintf("https://example.com/api/location/%d", id),
		"created":   "2017-11-10T12:42:04.162Z",
	}
}

// ServeGraphQL wires a handler for path that answers character and location
// page queries in the GraphQL wire shape, with the given collection sizes.
func (m *MockAPI) ServeGraphQL(path string, charTotal, locTotal, pageSize int) {
	m.SetHandler(path, func(w http.ResponseWriter, r *http.Request) {
		defer r.Body.Close()
		raw, _ := io.ReadAll(r.Body)

		var req struct {
			Query     string         `json:"query"`
			Variables map[string]int `json:"variables"`
		}
		if err := json.Unmarshal(raw, &req); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}

		data := map[string]any{}
		if strings.Contains(req.Query, "characters(") {
			page := req.Variables["page"]
			if p, ok := req.Variables["charPage"]; ok {
				page = p
			}
			data["characters"] = graphqlBlock("characters", charTotal, pageSize, page)
		}
		if strings.Contains(req.Query, "locations(") {
			page := req.Variables["page"]
			if p, ok := req.Variables["locPage"]; ok {
				page = p
			}
			data["locations"] = graphqlBlock("locations", locTotal, pageSize, page)
		}

		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		json.NewEncoder(w).Encode(map[string]any{"data": data})
	})
}

// graphqlBlock builds one resource's {info, results} block.
func graphqlBlock(resource string, total, pageSize, page int) map[string]any {
	pages := (total + pageSize - 1) / pageSize
	if page < 1 || page > pages {
		return map[string]any{
			"info":    map[string]any{"count": total, "pages": pages, "next": nil, "prev": nil},
			"results": []any{},
		}
	}

	start := (page-1)*pageSize + 1
	end := page * pageSize
	if end > total {
		end = total
	}

	results := make([]map[string]any, 0, end-start+1)
	for id := start; id <= end; id++ {
		if resource == "locations" {
			results = append(results, GraphQLLocationEntry(id))
		} else {
			results = append(results, GraphQLCharacterEntry(id))
		}
	}

	var next any
	if page < pages {
		next = page + 1
	}

	return map[string]any{
		"info": map[string]any{
			"count": total,
			"pages": pages,
			"next":  next,
			"prev":  nil,
		},
		"results": results,
	}
}

// GraphQLCharacterEntry builds one character entry in the GraphQL wire shape
// (string ID scalars, relation objects instead of URLs).
func GraphQLCharacterEntry(id int) map[string]any {
	return map[string]any{
		"id":       fmt.Sprintf("%d", id),
		"name":     fmt.Sprintf("Character %d", id),
		"status":   "Alive",
		"species":  "Human",
		"type":     "",
		"gender":   "Male",
		"origin":   map[string]any{"name": "Earth (C-137)"},
		"location": map[string]any{"id": "3", "name": "Citadel of Ricks"},
		"image":    fmt.Sprintf("https://example.com/api/character/avatar/%d.jpeg", id),
		"episode":  []map[string]any{{"id": "1"}},
		"created":  "2017-11-04T18:48:46.250Z",
	}
}

// GraphQLLocationEntry builds one location entry in the GraphQL wire shape.
func GraphQLLocationEntry(id int) map[string]any {
	return map[string]any{
		"id":        fmt.Sprintf("%d", id),
		"name":      fmt.Sprintf("Location %d", id),
		"type":      "Planet",
		"dimension": "Dimension C-137",
		"residents": []map[string]any{{"id": "1"}},
		"created":   "2017-11-10T12:42:04.162Z",
	}
}

// NewRateLimitResponse creates a 429 Too Many Requests response with an
// optional Retry-After hint in seconds.
func NewRateLimitResponse(retryAfterSecs int) MockResponse {
	resp := MockResponse{
		StatusCode: http.StatusTooManyRequests,
		Body:       `{"error": "Rate limit exceeded"}`,
		Headers:    map[string]string{},
	}
	if retryAfterSecs > 0 {
		resp.Headers["Retry-After"] = fmt.Sprintf("%d", retryAfterSecs)
	}
	return resp
}

// NewServerErrorResponse creates a 500 Internal Server Error response.
func NewServerErrorResponse() MockResponse {
	return MockResponse{
		StatusCode: http.StatusInternalServerError,
		Body:       `{"error": "Internal server error"}`,
	}
}

// NewNotFoundResponse creates a 404 Not Found response.
func NewNotFoundResponse() MockResponse {
	return MockResponse{
		StatusCode: http.StatusNotFound,
		Body:       `{"error": "There is nothing here"}`,
	}
}

// NewMalformedResponse creates a 200 response whose body is not a valid page.
func NewMalformedResponse() MockResponse {
	return MockResponse{
		StatusCode: http.StatusOK,
		Body:       `<html>definitely not json</html>`,
	}
}
