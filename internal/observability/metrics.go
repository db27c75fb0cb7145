package observability

import (
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"
)

// Metrics provides basic in-memory counters.
type Metrics struct {
	mu            sync.Mutex
	requestCount  map[string]int64
	requestMillis map[string]int64
	errorCount    map[string]int64
	started       time.Time
}

// Snapshot is a point-in-time copy of the counters.
type Snapshot struct {
	UptimeSeconds int64            `json:"uptimeSeconds"`
	Requests      []RequestCounter `json:"requests"`
	Errors        []ErrorCounter   `json:"errors"`
}

// RequestCounter aggregates requests per route and status.
type RequestCounter struct {
	Route        string `json:"route"`
	Method       string `json:"method"`
	Status       int    `json:"status"`
	Count        int64  `json:"count"`
	AvgLatencyMs int64  `json:"avgLatencyMs"`
}

// ErrorCounter aggregates error codes per route.
type ErrorCounter struct {
	Route  string `json:"route"`
	Method string `json:"method"`
	Code   string `json:"code"`
	Count  int64  `json:"count"`
}

// NewMetrics initializes metrics storage.
func NewMetrics() *Metrics {
	return &Metrics{
		requestCount:  make(map[string]int64),
		requestMillis: make(map[string]int64),
		errorCount:    make(map[string]int64),
		started:       time.Now(),
	}
}

// RecordRequest increments counters for requests.
func (m *Metrics) RecordRequest(route, method string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	key := counterKey{route: route, method: method, tail: strconv.Itoa(status)}.String()
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requestCount[key]++
	m.requestMillis[key] += duration.Milliseconds()
}

// RecordError increments error counters.
func (m *Metrics) RecordError(route, method, code string) {
	if m == nil {
		return
	}
	key := counterKey{route: route, method: method, tail: code}.String()
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errorCount[key]++
}

// Snapshot copies the counters sorted by route, method and status or code.
func (m *Metrics) Snapshot() Snapshot {
	if m == nil {
		return Snapshot{}
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	snap := Snapshot{
		UptimeSeconds: int64(time.Since(m.started).Seconds()),
		Requests:      make([]RequestCounter, 0, len(m.requestCount)),
		Errors:        make([]ErrorCounter, 0, len(m.errorCount)),
	}
	for key, count := range m.requestCount {
		k := parseCounterKey(key)
		status, _ := strconv.Atoi(k.tail)
		snap.Requests = append(snap.Requests, RequestCounter{
			Route:        k.route,
			Method:       k.method,
			Status:       status,
			Count:        count,
			AvgLatencyMs: m.requestMillis[key] / count,
		})
	}
	for key, count := range m.errorCount {
		k := parseCounterKey(key)
		snap.Errors = append(snap.Errors, ErrorCounter{Route: k.route, Method: k.method, Code: k.tail, Count: count})
	}
	sort.Slice(snap.Requests, func(i, j int) bool {
		a, b := snap.Requests[i], snap.Requests[j]
		if a.Route != b.Route {
			return a.Route < b.Route
		}
		if a.Method != b.Method {
			return a.Method < b.Method
		}
		return a.Status < b.Status
	})
	sort.Slice(snap.Errors, func(i, j int) bool {
		a, b := snap.Errors[i], snap.Errors[j]
		if a.Route != b.Route {
			return a.Route < b.Route
		}
		if a.Method != b.Method {
			return a.Method < b.Method
		}
		return a.Code < b.Code
	})
	return snap
}

type counterKey struct {
	route  string
	method string
	tail   string
}

func (k counterKey) String() string {
	return k.route + "|" + k.method + "|" + k.tail
}

func parseCounterKey(key string) counterKey {
	parts := strings.SplitN(key, "|", 3)
	for len(parts) < 3 {
		parts = append(parts, "")
	}
	return counterKey{route: parts[0], method: parts[1], tail: parts[2]}
}
