package metrics

import (
	"math"
	"reflect"
	"testing"
	"time"
)

// testTime is a fixed timestamp for deterministic snapshots.
func testTime() time.Time { return time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC) }

// almostEqual returns true if a and b are within epsilon of each other.
func almostEqual(a, b, epsilon float64) bool {
	return math.Abs(a-b) < epsilon
}

// cardByLabel finds a card in cards, failing the test when absent.
func cardByLabel(t *testing.T, cards []Card, label string) Card {
	t.Helper()
	for _, c := range cards {
		if c.Label == label {
			return c
		}
	}
	t.Fatalf("no card labelled %q in %v", label, cards)
	return Card{}
}

// --- ComputeAcquisitionMetrics ---

func TestAcquisition_RateAndChange(t *testing.T) {
	cards := ComputeAcquisitionMetrics(AcquisitionInput{
		NewCustomers:   50,
		TotalCustomers: 500,
	})

	nc := cardByLabel(t, cards, "New Customers")
	if nc.Value != 50 {
		t.Errorf("Value: got %v, want 50", nc.Value)
	}
	if nc.Format != FormatNumber {
		t.Errorf("Format: got %q, want number", nc.Format)
	}
	if nc.Change == nil || !almostEqual(*nc.Change, 10, 1e-9) {
		t.Errorf("Change: got %v, want 10", nc.Change)
	}
	if nc.ChangeType != ChangeIncrease {
		t.Errorf("ChangeType: got %q, want increase", nc.ChangeType)
	}
	if nc.Subtitle != "500 total customers" {
		t.Errorf("Subtitle: got %q", nc.Subtitle)
	}
}

func TestAcquisition_ZeroTotalCustomers(t *testing.T) {
	cards := ComputeAcquisitionMetrics(AcquisitionInput{
		NewCustomers:   50,
		TotalCustomers: 0,
	})

	nc := cardByLabel(t, cards, "New Customers")
	if nc.Change == nil || *nc.Change != 0 {
		t.Errorf("Change with zero total: got %v, want 0", nc.Change)
	}
}

func TestAcquisition_ZeroAcquisitionCost(t *testing.T) {
	cards := ComputeAcquisitionMetrics(AcquisitionInput{
		AcquisitionCost: 0,
		LifetimeValue:   400,
	})

	ratio := cardByLabel(t, cards, "LTV/CAC Ratio")
	if ratio.Value != 0 {
		t.Errorf("ratio with zero cost: got %v, want 0", ratio.Value)
	}
	if ratio.Status != StatusCritical {
		t.Errorf("status: got %q, want critical", ratio.Status)
	}
}

func TestAcquisition_LTVStatusThresholds(t *testing.T) {
	tests := []struct {
		name       string
		cost, ltv  float64
		wantRatio  float64
		wantStatus Status
	}{
		{"3x — good boundary", 100, 300, 3, StatusGood},
		{"1.5x — warning", 100, 150, 1.5, StatusWarning},
		{"0.5x — critical", 100, 50, 0.5, StatusCritical},
		{"1x — warning boundary", 100, 100, 1, StatusWarning},
		{"just under 3x — warning", 100, 299, 2.99, StatusWarning},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cards := ComputeAcquisitionMetrics(AcquisitionInput{
				AcquisitionCost: tt.cost,
				LifetimeValue:   tt.ltv,
			})
			ratio := cardByLabel(t, cards, "LTV/CAC Ratio")
			if !almostEqual(ratio.Value, tt.wantRatio, 1e-9) {
				t.Errorf("ratio: got %v, want %v", ratio.Value, tt.wantRatio)
			}
			if ratio.Status != tt.wantStatus {
				t.Errorf("status: got %q, want %q", ratio.Status, tt.wantStatus)
			}
		})
	}
}

// --- ComputeMarginMetrics ---

func TestMargin_Classification(t *testing.T) {
	tests := []struct {
		name         string
		in           MarginInput
		wantGross    Status
		wantNet      Status
		wantProgress float64
	}{
		{
			name:         "both warning — net inside 80% band",
			in:           MarginInput{GrossMargin: 25, NetMargin: 18, TargetMargin: 20},
			wantGross:    StatusWarning,
			wantNet:      StatusWarning, // 18 ≥ 16, < 20
			wantProgress: 90,
		},
		{
			name:         "both good — net above target",
			in:           MarginInput{GrossMargin: 35, NetMargin: 22, TargetMargin: 20},
			wantGross:    StatusGood,
			wantNet:      StatusGood,
			wantProgress: 110,
		},
		{
			name:         "critical — net below 80% of target",
			in:           MarginInput{GrossMargin: 15, NetMargin: 12, TargetMargin: 20},
			wantGross:    StatusCritical,
			wantNet:      StatusCritical, // 12 < 16
			wantProgress: 60,
		},
		{
			name:         "net exactly at target — good boundary",
			in:           MarginInput{GrossMargin: 30, NetMargin: 20, TargetMargin: 20},
			wantGross:    StatusGood,
			wantNet:      StatusGood,
			wantProgress: 100,
		},
		{
			name:         "net exactly at 80% of target — warning boundary",
			in:           MarginInput{GrossMargin: 20, NetMargin: 16, TargetMargin: 20},
			wantGross:    StatusWarning,
			wantNet:      StatusWarning,
			wantProgress: 80,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cards := ComputeMarginMetrics(tt.in)

			gross := cardByLabel(t, cards, "Gross Margin")
			if gross.Status != tt.wantGross {
				t.Errorf("gross status: got %q, want %q", gross.Status, tt.wantGross)
			}
			if gross.Format != FormatPercentage {
				t.Errorf("gross format: got %q, want percentage", gross.Format)
			}

			net := cardByLabel(t, cards, "Net Margin")
			if net.Status != tt.wantNet {
				t.Errorf("net status: got %q, want %q", net.Status, tt.wantNet)
			}
			if net.Target == nil || *net.Target != tt.in.TargetMargin {
				t.Errorf("net target: got %v, want %v", net.Target, tt.in.TargetMargin)
			}
			if net.Progress == nil || !almostEqual(*net.Progress, tt.wantProgress, 1e-9) {
				t.Errorf("net progress: got %v, want %v", net.Progress, tt.wantProgress)
			}
		})
	}
}

func TestMargin_ZeroTarget(t *testing.T) {
	cards := ComputeMarginMetrics(MarginInput{GrossMargin: 40, NetMargin: 15, TargetMargin: 0})

	net := cardByLabel(t, cards, "Net Margin")
	if net.Progress == nil {
		t.Fatal("Progress: expected a value, got nil")
	}
	if !almostEqual(*net.Progress, 0, 1e-9) {
		t.Errorf("Progress with zero target: got %v, want 0", *net.Progress)
	}
	if math.IsInf(*net.Progress, 0) || math.IsNaN(*net.Progress) {
		t.Errorf("Progress must stay finite, got %v", *net.Progress)
	}
	// A zero target is always met.
	if net.Status != StatusGood {
		t.Errorf("status: got %q, want good", net.Status)
	}
}

// --- shared properties ---

func TestClassify_Idempotent(t *testing.T) {
	acq := AcquisitionInput{NewCustomers: 7, TotalCustomers: 310, AcquisitionCost: 42.5, LifetimeValue: 130}
	mar := MarginInput{GrossMargin: 27.3, NetMargin: 11.1, TargetMargin: 14}

	if a, b := ComputeAcquisitionMetrics(acq), ComputeAcquisitionMetrics(acq); !reflect.DeepEqual(a, b) {
		t.Errorf("acquisition cards differ between calls:\n%v\n%v", a, b)
	}
	if a, b := ComputeMarginMetrics(mar), ComputeMarginMetrics(mar); !reflect.DeepEqual(a, b) {
		t.Errorf("margin cards differ between calls:\n%v\n%v", a, b)
	}
}

func TestClassify_DoesNotMutateInput(t *testing.T) {
	in := AcquisitionInput{NewCustomers: 5, TotalCustomers: 50, AcquisitionCost: 10, LifetimeValue: 40}
	orig := in
	ComputeAcquisitionMetrics(in)
	if in != orig {
		t.Errorf("input mutated: got %+v, want %+v", in, orig)
	}
}

func TestBuildSnapshot_Health(t *testing.T) {
	tests := []struct {
		name string
		acq  AcquisitionInput
		mar  MarginInput
		want Status
	}{
		{
			name: "all good",
			acq:  AcquisitionInput{NewCustomers: 10, TotalCustomers: 100, AcquisitionCost: 100, LifetimeValue: 400},
			mar:  MarginInput{GrossMargin: 40, NetMargin: 25, TargetMargin: 20},
			want: StatusGood,
		},
		{
			name: "one warning card degrades health",
			acq:  AcquisitionInput{NewCustomers: 10, TotalCustomers: 100, AcquisitionCost: 100, LifetimeValue: 150},
			mar:  MarginInput{GrossMargin: 40, NetMargin: 25, TargetMargin: 20},
			want: StatusWarning,
		},
		{
			name: "any critical card wins",
			acq:  AcquisitionInput{NewCustomers: 10, TotalCustomers: 100, AcquisitionCost: 100, LifetimeValue: 50},
			mar:  MarginInput{GrossMargin: 40, NetMargin: 25, TargetMargin: 20},
			want: StatusCritical,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			snap := BuildSnapshot("src-1", "Main Store", tt.acq, tt.mar, testTime())
			if snap.Health != tt.want {
				t.Errorf("Health: got %q, want %q", snap.Health, tt.want)
			}
			if len(snap.Cards) != 4 {
				t.Errorf("Cards: got %d, want 4", len(snap.Cards))
			}
		})
	}
}
