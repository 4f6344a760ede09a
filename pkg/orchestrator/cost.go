package orchestrator

import (
	"github.com/X10NLUN1X/xionimus/pkg/adapter"
	"github.com/X10NLUN1X/xionimus/pkg/catalog"
)

// CostReport aggregates usage and estimated spend across a run.
type CostReport struct {
	Currency   string               `json:"currency"`
	TotalUSD   float64              `json:"total_usd"`
	TotalUsage adapter.Usage        `json:"total_usage"`
	Calls      []adapter.CallReport `json:"calls,omitempty"`
}

type costTracker struct {
	catalog    *catalog.Catalog
	totalUSD   float64
	totalUsage adapter.Usage
	calls      []adapter.CallReport
}

func newCostTracker(cat *catalog.Catalog) *costTracker {
	return &costTracker{catalog: cat}
}

func (t *costTracker) record(reports []adapter.CallReport) {
	for _, report := range reports {
		t.calls = append(t.calls, report)
		if report.Error != "" {
			continue
		}
		t.totalUSD += report.CostUSD
		t.totalUsage = t.totalUsage.Add(report.Usage)
	}
}

func (t *costTracker) report() CostReport {
	return CostReport{
		Currency:   "USD",
		TotalUSD:   t.totalUSD,
		TotalUsage: t.totalUsage,
		Calls:      t.calls,
	}
}
