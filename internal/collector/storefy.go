package collector

import (
	"context"
	"fmt"
	"io"
	"net/http"

	dto "github.com/prometheus/client_model/go"
	"github.com/prometheus/common/expfmt"

	"github.com/themclloyd/storefy-pulse/internal/config"
)

// Business metric names exposed by a storefy backend on its internal
// /metrics endpoint (Prometheus text exposition).
const (
	// Customers ever acquired — monotonic counter.
	mCustomers = "storefy_customers_total"

	// Financial counters, in the store's base currency.
	mRevenue        = "storefy_revenue_total"
	mCOGS           = "storefy_cogs_total"
	mOpex           = "storefy_opex_total"
	mMarketingSpend = "storefy_marketing_spend_total"

	// Modelled average customer lifetime value — gauge.
	mLifetimeValue = "storefy_customer_lifetime_value"
)

type storefySource struct {
	src    config.Source
	client *http.Client
}

// Fetch reads the storefy backend's metrics endpoint and extracts the
// business counters the dashboard derives its cards from.
//
// A missing metric family reads as 0 rather than an error — a young store
// legitimately has no COGS or marketing spend yet.
func (s *storefySource) Fetch(ctx context.Context) (*Report, error) {
	rep := newReport(s.src)

	mfs, err := fetchFamilies(ctx, s.client, s.src.Endpoint)
	if err != nil {
		rep.Err = fmt.Errorf("storefy source %q: %w", s.src.ID, err)
		return rep, rep.Err
	}

	rep.CustomersTotal = sumFamily(mfs[mCustomers])
	rep.RevenueTotal = sumFamily(mfs[mRevenue])
	rep.COGSTotal = sumFamily(mfs[mCOGS])
	rep.OpexTotal = sumFamily(mfs[mOpex])
	rep.MarketingSpendTotal = sumFamily(mfs[mMarketingSpend])
	rep.AvgLifetimeValue = sumFamily(mfs[mLifetimeValue])

	return rep, nil
}

// fetchFamilies performs an HTTP GET to url and returns parsed metric families.
func fetchFamilies(ctx context.Context, client *http.Client, url string) (map[string]*dto.MetricFamily, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", string(expfmt.NewFormat(expfmt.TypeTextPlain)))

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http get: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	return parseFamilies(resp.Body)
}

// parseFamilies decodes a Prometheus text exposition from r into metric
// families. A partial result with a non-fatal parse warning is still
// returned successfully.
func parseFamilies(r io.Reader) (map[string]*dto.MetricFamily, error) {
	var parser expfmt.TextParser
	mfs, err := parser.TextToMetricFamilies(r)
	if err != nil && len(mfs) == 0 {
		return nil, fmt.Errorf("parse prometheus text: %w", err)
	}
	return mfs, nil
}

// sumFamily adds up all counter, gauge, or untyped values in a MetricFamily.
// Returns 0 if mf is nil (metric not present in the exposition).
func sumFamily(mf *dto.MetricFamily) float64 {
	if mf == nil {
		return 0
	}
	var total float64
	for _, m := range mf.GetMetric() {
		switch {
		case m.Counter != nil:
			total += m.Counter.GetValue()
		case m.Gauge != nil:
			total += m.Gauge.GetValue()
		case m.Untyped != nil:
			total += m.Untyped.GetValue()
		}
	}
	return total
}
