package collector

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/themclloyd/storefy-pulse/internal/config"
)

// jsonReport is the wire format of a plain JSON business-report endpoint,
// for backends that don't expose a Prometheus endpoint. Same counter
// semantics as the storefy exposition.
type jsonReport struct {
	CustomersTotal      float64 `json:"customers_total"`
	RevenueTotal        float64 `json:"revenue_total"`
	COGSTotal           float64 `json:"cogs_total"`
	OpexTotal           float64 `json:"opex_total"`
	MarketingSpendTotal float64 `json:"marketing_spend_total"`
	CustomerLTV         float64 `json:"customer_lifetime_value"`
}

type jsonSource struct {
	src    config.Source
	client *http.Client
}

// Fetch reads the source's JSON report endpoint.
func (s *jsonSource) Fetch(ctx context.Context) (*Report, error) {
	rep := newReport(s.src)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.src.Endpoint, nil)
	if err != nil {
		rep.Err = fmt.Errorf("json source %q: build request: %w", s.src.ID, err)
		return rep, rep.Err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		rep.Err = fmt.Errorf("json source %q: http get: %w", s.src.ID, err)
		return rep, rep.Err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		rep.Err = fmt.Errorf("json source %q: unexpected status %d", s.src.ID, resp.StatusCode)
		return rep, rep.Err
	}

	var body jsonReport
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		rep.Err = fmt.Errorf("json source %q: decode: %w", s.src.ID, err)
		return rep, rep.Err
	}

	rep.CustomersTotal = body.CustomersTotal
	rep.RevenueTotal = body.RevenueTotal
	rep.COGSTotal = body.COGSTotal
	rep.OpexTotal = body.OpexTotal
	rep.MarketingSpendTotal = body.MarketingSpendTotal
	rep.AvgLifetimeValue = body.CustomerLTV

	return rep, nil
}
