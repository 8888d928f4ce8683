package observ

import (
	"strings"
	"testing"
)

func TestTimerReportAggregates(t *testing.T) {
	tm := NewTimer()
	scan := tm.Begin("scan")
	tm.End(scan, "3 files")
	diags := tm.Begin("diagnostics")
	tm.End(diags, "")

	report := tm.Report()
	if len(report.Phases) != 2 {
		t.Fatalf("phases = %d, want 2", len(report.Phases))
	}
	if report.Phases[0].Name != "scan" || report.Phases[0].Note != "3 files" {
		t.Errorf("unexpected first phase: %+v", report.Phases[0])
	}
	var sum float64
	for _, p := range report.Phases {
		if p.DurationMS < 0 {
			t.Errorf("negative duration for %s", p.Name)
		}
		sum += p.DurationMS
	}
	if report.TotalMS < sum-0.01 {
		t.Errorf("total %.2f smaller than phase sum %.2f", report.TotalMS, sum)
	}
}

func TestTimerEndIgnoresBadIndex(t *testing.T) {
	tm := NewTimer()
	tm.End(-1, "")
	tm.End(5, "")
	if got := len(tm.Report().Phases); got != 0 {
		t.Fatalf("phases = %d, want 0", got)
	}
}

func TestTimerSummaryMentionsEveryPhase(t *testing.T) {
	tm := NewTimer()
	tm.End(tm.Begin("scan"), "")
	out := tm.Summary()
	if !strings.Contains(out, "scan") || !strings.Contains(out, "total") {
		t.Fatalf("summary missing phases:\n%s", out)
	}
}
