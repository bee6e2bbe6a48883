// Package fakestatsd is a UDP statsd server for tests that records every metric it receives.
package fakestatsd

import (
	"bytes"
	"errors"
	"net"
	"strings"
	"sync"
	"testing"

	"gotest.tools/v3/assert"
)

type FakeStatsd struct {
	connection *net.UDPConn

	// mutable state
	mu      sync.RWMutex
	metrics []Metric
}

func New(t testing.TB) *FakeStatsd {
	t.Helper()

	addr, err := net.ResolveUDPAddr("udp", "localhost:0")
	assert.Assert(t, err)

	conn, err := net.ListenUDP("udp", addr)
	assert.Assert(t, err)

	s := &FakeStatsd{
		connection: conn,
	}
	go s.listen()
	t.Cleanup(s.close)

	return s
}

func (s *FakeStatsd) Addr() string {
	return s.connection.LocalAddr().String()
}

type Metric struct {
	Name  string
	Value string
	Tags  []string
}

func (s *FakeStatsd) Metrics() []Metric {
	s.mu.RLock()
	defer s.mu.RUnlock()

	metrics := make([]Metric, len(s.metrics))
	copy(metrics, s.metrics)
	return metrics
}

// Find returns the first recorded metric with the given name.
func (s *FakeStatsd) Find(name string) (Metric, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, m := range s.metrics {
		if m.Name == name {
			return m, true
		}
	}
	return Metric{}, false
}

func (s *FakeStatsd) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.metrics = nil
}

func (s *FakeStatsd) recordMetric(m Metric) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.metrics = append(s.metrics, m)
}

func (s *FakeStatsd) listen() {
	buffer := make([]byte, 10000)

	for {
		numBytes, err := s.connection.Read(buffer)
		if errors.Is(err, net.ErrClosed) {
			return
		}

		rawMetrics := buffer[0:numBytes]
		splitMetrics := bytes.Split(rawMetrics, []byte("\n"))

		for _, rawMetric := range splitMetrics {
			rawMetric = bytes.TrimSpace(rawMetric)
			if len(rawMetric) == 0 {
				continue
			}
			metric := parse(string(rawMetric))
			s.recordMetric(metric)
		}
	}
}

func (s *FakeStatsd) close() {
	_ = s.connection.Close()
}

func parse(raw string) Metric {
	metricNameAndRest := strings.SplitN(raw, ":", 2)
	name := metricNameAndRest[0]
	if len(metricNameAndRest) < 2 {
		return Metric{Name: name}
	}
	valueAndTags := strings.SplitN(metricNameAndRest[1], "#", 2)
	value := strings.TrimSuffix(valueAndTags[0], "|")
	var tags []string
	if len(valueAndTags) > 1 {
		// the datadog client prefixes tags with '#' and separates them with ','
		tags = strings.Split(valueAndTags[1], ",")
	}

	return Metric{Name: name, Value: value, Tags: tags}
}
