package metric

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestRegistriesAreIndependent(t *testing.T) {
	a := NewRegistry()
	b := NewRegistry()

	a.RecordsWritten.Inc()
	a.RecordsWritten.Inc()
	b.RecordsWritten.Inc()

	// No panic from duplicate registration and no shared state: each
	// registry carries its own counters.
	if a.reg == b.reg {
		t.Fatal("registries share a Prometheus registry")
	}
}

func TestHandlerExposesMetrics(t *testing.T) {
	r := NewRegistry()
	r.RecordsWritten.Inc()
	r.Capacity.Set(500)
	r.NearestLookups.WithLabelValues("hit").Inc()
	r.RequestsTotal.WithLabelValues("get_history", "ok").Inc()

	srv := httptest.NewServer(r.Handler())
	defer srv.Close()

	resp, err := srv.Client().Get(srv.URL)
	if err != nil {
		t.Fatalf("scrape failed: %v", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}

	for _, want := range []string{
		"telemhist_records_written_total 1",
		"telemhist_store_capacity_slots 500",
		`telemhist_nearest_lookups_total{result="hit"} 1`,
		`telemhist_link_requests_total{status="ok",subservice="get_history"} 1`,
	} {
		if !strings.Contains(string(body), want) {
			t.Fatalf("scrape output missing %q:\n%s", want, body)
		}
	}
}
