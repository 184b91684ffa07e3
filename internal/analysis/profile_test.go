package analysis

import (
	"math"
	"strings"
	"testing"

	"github.com/KaramelBytes/pandacode-cli/internal/frame"
)

func TestProfileSampleAndMarkdown(t *testing.T) {
	opt := DefaultOptions()
	opt.SampleRows = 3
	opt.GroupBy = "Category"
	rep := Profile(frame.Sample(), opt)

	if rep.Rows != 7 || len(rep.Cols) != 4 {
		t.Fatalf("unexpected shape: rows=%d cols=%d", rep.Rows, len(rep.Cols))
	}
	sales := rep.Cols[1]
	if sales.Kind != "numeric" {
		t.Fatalf("Sales kind = %s", sales.Kind)
	}
	if sales.Min != 90 || sales.Max != 450 {
		t.Fatalf("Sales min/max = %v/%v", sales.Min, sales.Max)
	}
	if math.Abs(sales.Mean-220) > 1e-9 {
		t.Fatalf("Sales mean = %v", sales.Mean)
	}
	cat := rep.Cols[3]
	if cat.Kind != "categorical" || cat.TopValues[0].Value != "Electronics" || cat.TopValues[0].Count != 4 {
		t.Fatalf("Category summary = %+v", cat)
	}

	md := rep.Markdown()
	for _, want := range []string{
		"[DATASET SUMMARY]",
		"File: sample",
		"Rows: 7",
		"- Sales: numeric (non-null 7, missing 0.0%)",
		"Electronics(4)",
		"[GROUP-BY SUMMARY]",
		"- Category=Electronics (n=4)",
		"[CORRELATIONS]",
		"Sales ~ Price",
		"| Product | Sales | Price | Category |",
		"| Tablet | 180 | 2000 | Electronics |",
	} {
		if !strings.Contains(md, want) {
			t.Fatalf("markdown missing %q:\n%s", want, md)
		}
	}
	if strings.Contains(md, "| Watch |") {
		t.Fatalf("markdown should only include 3 sample rows:\n%s", md)
	}
}

func TestProfileKindsAndMissing(t *testing.T) {
	f := frame.New("mixed.csv", []string{"When", "Amount", "Note", "Blank"}, [][]string{
		{"2024-01-01", "1.000,5", "first entry", ""},
		{"2024-01-02", "2,5", "second entry", ""},
		{"2024-01-03", "", "third entry", "NaN"},
		{"bad", "10%", "fourth entry", ""},
	})
	rep := Profile(f, Options{})
	kinds := map[string]string{}
	for _, c := range rep.Cols {
		kinds[c.Name] = c.Kind
	}
	if kinds["When"] != "datetime" || kinds["Amount"] != "numeric" || kinds["Blank"] != "empty" {
		t.Fatalf("unexpected kinds: %v", kinds)
	}
	amount := rep.Cols[1]
	if amount.Missing != 1 || amount.Max != 1000.5 || amount.Min != 2.5 {
		t.Fatalf("Amount summary = %+v", amount)
	}
	if len(rep.Samples) != 0 || rep.Pairs != nil {
		t.Fatalf("expected no samples or correlations with zero options")
	}
}

func TestProfileUnknownGroupByWarns(t *testing.T) {
	rep := Profile(frame.Sample(), Options{GroupBy: "Region"})
	if len(rep.Warnings) != 1 || !strings.Contains(rep.Markdown(), `group-by column "Region" not found`) {
		t.Fatalf("expected warning, got %v", rep.Warnings)
	}
}

func TestOutliers(t *testing.T) {
	f := frame.New("o", []string{"v"}, [][]string{{"10"}, {"11"}, {"9"}, {"10"}, {"12"}, {"10"}, {"11"}, {"9"}, {"500"}})
	rep := Profile(f, Options{OutlierThreshold: 3.5})
	if rep.Cols[0].Outliers != 1 {
		t.Fatalf("outliers = %d", rep.Cols[0].Outliers)
	}
}

func TestParseNumeric(t *testing.T) {
	cases := map[string]float64{
		"42":        42,
		"1,000.25":  1000.25,
		"1.000,25":  1000.25,
		"0,5":       0.5,
		"12%":       12,
		"1,000,000": 1000000,
		"-3e2":      -300,
	}
	for in, want := range cases {
		got, ok := parseNumeric(in)
		if !ok || math.Abs(got-want) > 1e-9 {
			t.Errorf("parseNumeric(%q) = %v,%v want %v", in, got, ok, want)
		}
	}
	for _, bad := range []string{"", "abc", "2024-01-01"} {
		if _, ok := parseNumeric(bad); ok {
			t.Errorf("parseNumeric(%q) should fail", bad)
		}
	}
}
