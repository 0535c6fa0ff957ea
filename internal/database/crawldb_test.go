package database

import (
	"context"
	"testing"
	"time"

	"github.com/linkpatrol/linkpatrol/internal/model"
)

// openTestDB creates a CrawlDB in a temporary directory.
func openTestDB(t *testing.T) *CrawlDB {
	t.Helper()

	cdb, err := Open(t.TempDir(), DefaultOptions())
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() {
		if err := cdb.Close(); err != nil {
			t.Errorf("Close() error = %v", err)
		}
	})
	return cdb
}

// sampleReport builds a crawl report with one working and two broken links.
func sampleReport() *model.CrawlReport {
	report := model.NewCrawlReport("http://example.com")
	report.Add(model.Outcome{Target: "http://example.com", Responded: true, StatusCode: 200})
	report.Add(model.Outcome{Target: "http://example.com/missing", Referrer: "http://example.com", Responded: true, StatusCode: 404})
	report.Add(model.Outcome{Target: "http://example.com/down", Referrer: "http://example.com", Responded: false})
	report.PagesVisited = 3
	report.Duration = 1500 * time.Millisecond
	return report
}

func TestOpen(t *testing.T) {
	t.Parallel()

	t.Run("creates database and directory", func(t *testing.T) {
		t.Parallel()

		cdb := openTestDB(t)
		if cdb.dbPath == "" {
			t.Error("dbPath is empty")
		}
	})

	t.Run("fails when database missing and creation disabled", func(t *testing.T) {
		t.Parallel()

		opts := Options{CreateIfNotExists: false, EnableWAL: true}
		if _, err := Open(t.TempDir(), opts); err == nil {
			t.Error("Open() error = nil, want missing-database error")
		}
	})

	t.Run("reopens existing database", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		cdb, err := Open(dir, DefaultOptions())
		if err != nil {
			t.Fatalf("Open() error = %v", err)
		}
		if err := cdb.Close(); err != nil {
			t.Fatalf("Close() error = %v", err)
		}

		reopened, err := Open(dir, Options{CreateIfNotExists: false, EnableWAL: true})
		if err != nil {
			t.Fatalf("reopen error = %v", err)
		}
		if err := reopened.Close(); err != nil {
			t.Errorf("Close() error = %v", err)
		}
	})
}

func TestSaveReport(t *testing.T) {
	t.Parallel()

	cdb := openTestDB(t)
	ctx := context.Background()

	scanID, err := cdb.SaveReport(ctx, sampleReport())
	if err != nil {
		t.Fatalf("SaveReport() error = %v", err)
	}
	if scanID <= 0 {
		t.Fatalf("scanID = %d, want positive", scanID)
	}

	meta, err := cdb.GetScan(ctx, scanID)
	if err != nil {
		t.Fatalf("GetScan() error = %v", err)
	}
	if meta == nil {
		t.Fatal("GetScan() = nil, want stored scan")
	}
	if meta.BaseURL != "http://example.com" {
		t.Errorf("BaseURL = %q, want %q", meta.BaseURL, "http://example.com")
	}
	if meta.PagesVisited != 3 {
		t.Errorf("PagesVisited = %d, want 3", meta.PagesVisited)
	}
	if meta.BrokenCount != 2 {
		t.Errorf("BrokenCount = %d, want 2", meta.BrokenCount)
	}
	if meta.Duration != 1500*time.Millisecond {
		t.Errorf("Duration = %v, want 1.5s", meta.Duration)
	}
	if meta.Fatal != "" {
		t.Errorf("Fatal = %q, want empty", meta.Fatal)
	}

	outcomes, err := cdb.Outcomes(ctx, scanID)
	if err != nil {
		t.Fatalf("Outcomes() error = %v", err)
	}
	if len(outcomes) != 3 {
		t.Fatalf("len(outcomes) = %d, want 3", len(outcomes))
	}
	// Order must match report order.
	if outcomes[0].Target != "http://example.com" {
		t.Errorf("outcomes[0].Target = %q, want base URL", outcomes[0].Target)
	}
	if outcomes[2].Responded {
		t.Error("outcomes[2].Responded = true, want false for transport failure")
	}
}

func TestSaveReportAborted(t *testing.T) {
	t.Parallel()

	cdb := openTestDB(t)
	ctx := context.Background()

	report := model.NewCrawlReport("http://example.com")
	report.Fatal = "context canceled"

	scanID, err := cdb.SaveReport(ctx, report)
	if err != nil {
		t.Fatalf("SaveReport() error = %v", err)
	}

	meta, err := cdb.GetScan(ctx, scanID)
	if err != nil {
		t.Fatalf("GetScan() error = %v", err)
	}
	if meta.Fatal != "context canceled" {
		t.Errorf("Fatal = %q, want %q", meta.Fatal, "context canceled")
	}
}

func TestListScans(t *testing.T) {
	t.Parallel()

	cdb := openTestDB(t)
	ctx := context.Background()

	first := sampleReport()
	second := model.NewCrawlReport("http://other.test")
	second.Add(model.Outcome{Target: "http://other.test", Responded: true, StatusCode: 200})
	second.PagesVisited = 1

	firstID, err := cdb.SaveReport(ctx, first)
	if err != nil {
		t.Fatalf("SaveReport() error = %v", err)
	}
	secondID, err := cdb.SaveReport(ctx, second)
	if err != nil {
		t.Fatalf("SaveReport() error = %v", err)
	}

	t.Run("all scans newest first", func(t *testing.T) {
		scans, err := cdb.ListScans(ctx, "", 0)
		if err != nil {
			t.Fatalf("ListScans() error = %v", err)
		}
		if len(scans) != 2 {
			t.Fatalf("len(scans) = %d, want 2", len(scans))
		}
		if scans[0].ID != secondID {
			t.Errorf("scans[0].ID = %d, want newest scan %d", scans[0].ID, secondID)
		}
	})

	t.Run("filter by base URL", func(t *testing.T) {
		scans, err := cdb.ListScans(ctx, "http://example.com", 0)
		if err != nil {
			t.Fatalf("ListScans() error = %v", err)
		}
		if len(scans) != 1 {
			t.Fatalf("len(scans) = %d, want 1", len(scans))
		}
		if scans[0].ID != firstID {
			t.Errorf("scans[0].ID = %d, want %d", scans[0].ID, firstID)
		}
	})

	t.Run("limit", func(t *testing.T) {
		scans, err := cdb.ListScans(ctx, "", 1)
		if err != nil {
			t.Fatalf("ListScans() error = %v", err)
		}
		if len(scans) != 1 {
			t.Errorf("len(scans) = %d, want 1", len(scans))
		}
	})
}

func TestBrokenLinks(t *testing.T) {
	t.Parallel()

	cdb := openTestDB(t)
	ctx := context.Background()

	scanID, err := cdb.SaveReport(ctx, sampleReport())
	if err != nil {
		t.Fatalf("SaveReport() error = %v", err)
	}

	broken, err := cdb.BrokenLinks(ctx, scanID)
	if err != nil {
		t.Fatalf("BrokenLinks() error = %v", err)
	}
	if len(broken) != 2 {
		t.Fatalf("len(broken) = %d, want 2", len(broken))
	}
	if broken[0].Target != "http://example.com/missing" {
		t.Errorf("broken[0].Target = %q, want 404 page", broken[0].Target)
	}
	if broken[0].StatusCode != 404 {
		t.Errorf("broken[0].StatusCode = %d, want 404", broken[0].StatusCode)
	}
	if broken[1].Target != "http://example.com/down" {
		t.Errorf("broken[1].Target = %q, want unresponsive page", broken[1].Target)
	}
	if broken[1].Responded {
		t.Error("broken[1].Responded = true, want false")
	}
}

func TestGetScanMissing(t *testing.T) {
	t.Parallel()

	cdb := openTestDB(t)

	meta, err := cdb.GetScan(context.Background(), 9999)
	if err != nil {
		t.Fatalf("GetScan() error = %v", err)
	}
	if meta != nil {
		t.Errorf("GetScan() = %+v, want nil for missing ID", meta)
	}
}

func TestParseTimestamp(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		valid bool
	}{
		{"sqlite default", "2026-08-30 12:34:56", true},
		{"iso8601 z", "2026-08-30T12:34:56Z", true},
		{"rfc3339", "2026-08-30T12:34:56+09:00", true},
		{"garbage", "not-a-timestamp", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := parseTimestamp(tt.input)
			if tt.valid && got.IsZero() {
				t.Errorf("parseTimestamp(%q) = zero time, want parsed value", tt.input)
			}
			if !tt.valid && !got.IsZero() {
				t.Errorf("parseTimestamp(%q) = %v, want zero time", tt.input, got)
			}
		})
	}
}
