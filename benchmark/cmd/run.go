// Command run executes the benchmark suite and renders a comparison table
// per category (Provide, Invoke, Named) across frameworks.
package main

import (
	"bufio"
	"bytes"
	"fmt"
	"os"
	"os/exec"
	"regexp"
	"sort"
	"strconv"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

type result struct {
	Category   string
	Scenario   string
	Framework  string
	NsPerOp    float64
	BytesPerOp int64
	AllocsOp   int64
}

var benchLine = regexp.MustCompile(`^Benchmark(\w+)_(\w+)_(\w+)-\d+\s+\d+\s+([\d.]+) ns/op\s+(\d+) B/op\s+(\d+) allocs/op`)

func main() {
	benchDir := "."
	if len(os.Args) > 1 {
		benchDir = os.Args[1]
	}

	fmt.Println("running benchmarks...")

	cmd := exec.Command("go", "test", "-bench=.", "-benchmem", "-count=3", "-benchtime=100ms")
	cmd.Dir = benchDir
	output, err := cmd.Output()
	if err != nil {
		fmt.Fprintf(os.Stderr, "benchmark run failed: %v\n", err)
		os.Exit(1)
	}

	results := parse(output)
	if len(results) == 0 {
		fmt.Fprintln(os.Stderr, "no benchmark results found")
		os.Exit(1)
	}

	for _, category := range categories(results) {
		render(category, results)
	}
}

func parse(output []byte) []result {
	best := make(map[string]result)

	scanner := bufio.NewScanner(bytes.NewReader(output))
	for scanner.Scan() {
		m := benchLine.FindStringSubmatch(scanner.Text())
		if m == nil {
			continue
		}

		ns, _ := strconv.ParseFloat(m[4], 64)
		bytesOp, _ := strconv.ParseInt(m[5], 10, 64)
		allocs, _ := strconv.ParseInt(m[6], 10, 64)

		r := result{
			Category:   m[1],
			Scenario:   m[2],
			Framework:  m[3],
			NsPerOp:    ns,
			BytesPerOp: bytesOp,
			AllocsOp:   allocs,
		}

		// -count=3: keep the fastest run per benchmark.
		key := r.Category + "/" + r.Scenario + "/" + r.Framework
		if prev, ok := best[key]; !ok || r.NsPerOp < prev.NsPerOp {
			best[key] = r
		}
	}

	out := make([]result, 0, len(best))
	for _, r := range best {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Scenario != out[j].Scenario {
			return out[i].Scenario < out[j].Scenario
		}
		return out[i].NsPerOp < out[j].NsPerOp
	})
	return out
}

func categories(results []result) []string {
	seen := make(map[string]bool)
	var out []string
	for _, r := range results {
		if !seen[r.Category] {
			seen[r.Category] = true
			out = append(out, r.Category)
		}
	}
	sort.Strings(out)
	return out
}

func render(category string, results []result) {
	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.SetStyle(table.StyleLight)
	t.SetTitle(category)
	t.AppendHeader(table.Row{"Scenario", "Framework", "ns/op", "B/op", "allocs/op"})
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 3, Align: text.AlignRight},
		{Number: 4, Align: text.AlignRight},
		{Number: 5, Align: text.AlignRight},
	})

	lastScenario := ""
	for _, r := range results {
		if r.Category != category {
			continue
		}
		if lastScenario != "" && r.Scenario != lastScenario {
			t.AppendSeparator()
		}
		lastScenario = r.Scenario

		t.AppendRow(table.Row{
			r.Scenario,
			r.Framework,
			fmt.Sprintf("%.0f", r.NsPerOp),
			r.BytesPerOp,
			r.AllocsOp,
		})
	}

	t.Render()
	fmt.Println()
}
