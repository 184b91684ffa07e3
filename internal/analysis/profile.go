// Package analysis profiles a loaded frame: inferred column kinds, numeric
// statistics, top categories and sample rows. The Markdown rendering is what
// the agent embeds in its prompt and what `analyze` prints.
package analysis

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/KaramelBytes/pandacode-cli/internal/frame"
)

// Options controls profiling.
type Options struct {
	// SampleRows is the number of head rows included in the report.
	SampleRows int
	// GroupBy computes per-group means for numeric columns.
	GroupBy string
	// Correlations computes Pearson r among numeric columns.
	Correlations bool
	// OutlierThreshold is the robust |z| above which values count as outliers; 0 disables.
	OutlierThreshold float64
}

// DefaultOptions returns the options used for prompts.
func DefaultOptions() Options {
	return Options{SampleRows: 5, Correlations: true, OutlierThreshold: 3.5}
}

// Report is a markdown-friendly profile of a frame.
type Report struct {
	Name     string
	Rows     int
	Cols     []ColumnSummary
	Samples  [][]string
	Groups   []GroupResult
	Pairs    []PairCorr
	Warnings []string
}

// ColumnSummary captures inferred type and statistics per column.
type ColumnSummary struct {
	Name    string
	Kind    string // numeric|datetime|categorical|text|empty
	NonNull int
	Missing int
	Unique  int

	Min, Max, Mean, Std float64
	Outliers            int

	TopValues    []CategoryCount
	ExampleTexts []string
}

type CategoryCount struct {
	Value string
	Count int
}

// GroupResult holds per-group means keyed by numeric column.
type GroupResult struct {
	Key   string
	Size  int
	Means map[string]float64
}

type PairCorr struct {
	A, B string
	R    float64
}

// Profile computes a Report over every row of f.
func Profile(f *frame.Frame, opt Options) *Report {
	rows, ncols := f.Shape()
	rep := &Report{Name: f.Name, Rows: rows}
	if opt.SampleRows > 0 {
		rep.Samples = f.Head(opt.SampleRows).Rows
	}

	// parsed[j][i] holds row i of column j when numeric, NaN otherwise.
	parsed := make([][]float64, ncols)
	for j, name := range f.Columns {
		s, col := summarize(f, j, opt)
		s.Name = name
		rep.Cols = append(rep.Cols, s)
		if s.Kind == "numeric" {
			parsed[j] = col
		}
	}

	if opt.GroupBy != "" {
		rep.Groups = groupMeans(f, opt.GroupBy, rep.Cols, parsed)
		if rep.Groups == nil {
			rep.Warnings = append(rep.Warnings, fmt.Sprintf("group-by column %q not found", opt.GroupBy))
		}
	}
	if opt.Correlations {
		rep.Pairs = correlations(f.Columns, parsed)
	}
	return rep
}

func summarize(f *frame.Frame, j int, opt Options) (ColumnSummary, []float64) {
	var s ColumnSummary
	var nums []float64
	col := make([]float64, len(f.Rows))
	cats := map[string]int{}
	var dt, txt int
	for i, row := range f.Rows {
		col[i] = math.NaN()
		v := strings.TrimSpace(row[j])
		if v == "" || strings.EqualFold(v, "nan") || strings.EqualFold(v, "null") {
			s.Missing++
			continue
		}
		s.NonNull++
		if x, ok := parseNumeric(v); ok {
			nums = append(nums, x)
			col[i] = x
			continue
		}
		if _, ok := parseTimeMaybe(v); ok {
			dt++
			continue
		}
		txt++
		if len(cats) <= 10000 && len(v) <= 64 {
			cats[v]++
		}
		if len(s.ExampleTexts) < 3 {
			s.ExampleTexts = append(s.ExampleTexts, v)
		}
	}

	switch {
	case s.NonNull == 0:
		s.Kind = "empty"
	case len(nums) >= dt && len(nums) >= txt:
		s.Kind = "numeric"
		s.ExampleTexts = nil
		s.Min, s.Max, s.Mean, s.Std = describe(nums)
		if opt.OutlierThreshold > 0 && len(nums) >= 8 {
			s.Outliers = countOutliers(nums, opt.OutlierThreshold)
		}
	case dt >= txt:
		s.Kind = "datetime"
		s.ExampleTexts = nil
	case len(cats) > 0 && len(cats) <= max(20, s.NonNull/2):
		s.Kind = "categorical"
		s.ExampleTexts = nil
		s.Unique = len(cats)
		s.TopValues = topValues(cats, 8)
	default:
		s.Kind = "text"
		s.Unique = len(cats)
	}
	return s, col
}

func describe(xs []float64) (lo, hi, mean, std float64) {
	lo, hi = math.Inf(1), math.Inf(-1)
	var m2 float64
	for i, x := range xs {
		lo = math.Min(lo, x)
		hi = math.Max(hi, x)
		delta := x - mean
		mean += delta / float64(i+1)
		m2 += delta * (x - mean)
	}
	if len(xs) > 1 {
		std = math.Sqrt(m2 / float64(len(xs)-1))
	}
	return
}

func topValues(cats map[string]int, n int) []CategoryCount {
	out := make([]CategoryCount, 0, len(cats))
	for k, v := range cats {
		out = append(out, CategoryCount{Value: k, Count: v})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count == out[j].Count {
			return out[i].Value < out[j].Value
		}
		return out[i].Count > out[j].Count
	})
	if len(out) > n {
		out = out[:n]
	}
	return out
}

func groupMeans(f *frame.Frame, by string, cols []ColumnSummary, parsed [][]float64) []GroupResult {
	key := -1
	for j, c := range f.Columns {
		if strings.EqualFold(c, by) {
			key = j
		}
	}
	if key < 0 {
		return nil
	}
	type acc struct {
		size int
		sum  map[int]float64
		cnt  map[int]int
	}
	groups := map[string]*acc{}
	for i, row := range f.Rows {
		k := strings.TrimSpace(row[key])
		g := groups[k]
		if g == nil {
			g = &acc{sum: map[int]float64{}, cnt: map[int]int{}}
			groups[k] = g
		}
		g.size++
		for j := range parsed {
			if parsed[j] == nil || j == key || math.IsNaN(parsed[j][i]) {
				continue
			}
			g.sum[j] += parsed[j][i]
			g.cnt[j]++
		}
	}
	out := make([]GroupResult, 0, len(groups))
	for k, g := range groups {
		gr := GroupResult{Key: fmt.Sprintf("%s=%s", f.Columns[key], k), Size: g.size, Means: map[string]float64{}}
		for j, n := range g.cnt {
			gr.Means[cols[j].Name] = g.sum[j] / float64(n)
		}
		out = append(out, gr)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Size == out[j].Size {
			return out[i].Key < out[j].Key
		}
		return out[i].Size > out[j].Size
	})
	if len(out) > 20 {
		out = out[:20]
	}
	return out
}

// correlations returns pairwise Pearson r over rows where both values are present,
// strongest first.
func correlations(names []string, parsed [][]float64) []PairCorr {
	var pairs []PairCorr
	for a := 0; a < len(parsed); a++ {
		for b := a + 1; b < len(parsed); b++ {
			if parsed[a] == nil || parsed[b] == nil {
				continue
			}
			var n, sx, sy, sxx, syy, sxy float64
			for i := range parsed[a] {
				x, y := parsed[a][i], parsed[b][i]
				if math.IsNaN(x) || math.IsNaN(y) {
					continue
				}
				n++
				sx += x
				sy += y
				sxx += x * x
				syy += y * y
				sxy += x * y
			}
			if n < 2 {
				continue
			}
			denom := math.Sqrt((n*sxx - sx*sx) * (n*syy - sy*sy))
			if denom == 0 || math.IsNaN(denom) {
				continue
			}
			r := math.Max(-1, math.Min(1, (n*sxy-sx*sy)/denom))
			pairs = append(pairs, PairCorr{A: names[a], B: names[b], R: r})
		}
	}
	sort.Slice(pairs, func(i, j int) bool {
		ai, aj := math.Abs(pairs[i].R), math.Abs(pairs[j].R)
		if ai == aj {
			return pairs[i].A+pairs[i].B < pairs[j].A+pairs[j].B
		}
		return ai > aj
	})
	if len(pairs) > 10 {
		pairs = pairs[:10]
	}
	return pairs
}

// countOutliers counts values whose robust z-score (via MAD) exceeds thr.
func countOutliers(vals []float64, thr float64) int {
	median, mad := medianMAD(vals)
	if mad == 0 {
		return 0
	}
	n := 0
	for _, v := range vals {
		if math.Abs(0.6745*(v-median)/mad) > thr {
			n++
		}
	}
	return n
}

func medianMAD(vals []float64) (median, mad float64) {
	cp := append([]float64(nil), vals...)
	sort.Float64s(cp)
	median = quantile(cp, 0.5)
	for i, v := range cp {
		cp[i] = math.Abs(v - median)
	}
	sort.Float64s(cp)
	return median, quantile(cp, 0.5)
}

func quantile(sorted []float64, q float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	pos := q * float64(len(sorted)-1)
	lo, hi := int(math.Floor(pos)), int(math.Ceil(pos))
	w := pos - float64(lo)
	return sorted[lo]*(1-w) + sorted[hi]*w
}

func parseTimeMaybe(s string) (time.Time, bool) {
	layouts := []string{
		time.RFC3339, "2006-01-02", "2006/01/02", "02/01/2006", "01/02/2006",
		"2006-01-02 15:04", "2006-01-02 15:04:05", "1/2/2006 15:04", "1/2/2006 15:04:05",
	}
	for _, l := range layouts {
		if t, err := time.Parse(l, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// parseNumeric accepts plain numbers, percentages and locale-formatted values
// such as "1.000,5" or "1,000.5".
func parseNumeric(s string) (float64, bool) {
	raw := strings.TrimSuffix(strings.TrimSpace(s), "%")
	raw = strings.ReplaceAll(raw, "\u00a0", "")
	raw = strings.ReplaceAll(raw, " ", "")
	if raw == "" {
		return 0, false
	}
	cpos, dpos := strings.LastIndex(raw, ","), strings.LastIndex(raw, ".")
	switch {
	case cpos >= 0 && dpos >= 0 && cpos > dpos:
		raw = strings.ReplaceAll(raw, ".", "")
		raw = strings.Replace(raw, ",", ".", 1)
	case cpos >= 0 && dpos >= 0:
		raw = strings.ReplaceAll(raw, ",", "")
	case cpos >= 0 && strings.Count(raw, ",") == 1:
		raw = strings.Replace(raw, ",", ".", 1)
	case cpos >= 0:
		raw = strings.ReplaceAll(raw, ",", "")
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}
