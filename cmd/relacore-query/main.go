// Package main implements the relacore-query tool: it loads a table from a
// CSV file or a snapshot, runs a pipeline of relational operators over it,
// and writes the result to stdout.
package main

import (
	"flag"
	"log"
	"os"
	"strings"

	"github.com/relacore/relacore/internal/config"
	"github.com/relacore/relacore/internal/journal"
	"github.com/relacore/relacore/internal/persist"
	"github.com/relacore/relacore/pkg/relation"
	"github.com/relacore/relacore/pkg/types"
)

// Options holds the tool configuration.
type Options struct {
	ConfigPath string
	CSVPath    string
	Snapshot   string
	Name       string
	Domain     string
	Key        string
	Where      string
	Project    string
	Group      string
	Aggs       string
	Order      string
	Desc       bool
	Format     string
	Save       string
}

func main() {
	opts := parseFlags()

	cfg := config.DefaultConfig()
	if opts.ConfigPath != "" {
		loaded, err := config.Load(opts.ConfigPath)
		if err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}
		cfg = loaded
	}
	cfg.Resolve()

	t := loadTable(opts)
	log.Printf("Loaded table %s: %d tuples, schema %v", t.Name(), t.Size(), t.Schema())

	if cfg.Journal.Enabled {
		j, err := journal.Open(cfg.Journal.Dir, t.Name())
		if err != nil {
			log.Fatalf("Failed to open journal: %v", err)
		}
		defer j.Close()
		if n, err := journal.Replay(j.Path(), t); err != nil {
			log.Printf("Warning: journal replay incomplete: %v", err)
		} else if n > 0 {
			log.Printf("Journal replay applied %d mutations, table now %d tuples", n, t.Size())
		}
	}

	result := runPipeline(t, opts)

	if opts.Save != "" {
		if err := persist.SaveFile(result, opts.Save); err != nil {
			log.Fatalf("Failed to save snapshot: %v", err)
		}
		log.Printf("Snapshot saved to %s", opts.Save)
	}

	switch opts.Format {
	case "json":
		if err := persist.WriteJSON(result, os.Stdout); err != nil {
			log.Fatalf("Failed to write result: %v", err)
		}
	default:
		if err := persist.WriteCSV(result, os.Stdout); err != nil {
			log.Fatalf("Failed to write result: %v", err)
		}
	}

	if n := t.Degraded(); n > 0 {
		log.Printf("Warning: %d operations degraded during this run", n)
	}
}

// runPipeline applies the requested operators in fixed order: selection,
// projection, grouping with aggregation, ordering.
func runPipeline(t *relation.Table, opts Options) *relation.Table {
	result := t

	if opts.Where != "" {
		result = result.SelectWhere(opts.Where)
		log.Printf("Selection %q kept %d tuples", opts.Where, result.Size())
	}

	if opts.Project != "" {
		attrs := types.SplitSchema(opts.Project)
		result = result.Project(attrs...)
	}

	if opts.Group != "" {
		specs, err := parseAggs(opts.Aggs)
		if err != nil {
			log.Fatalf("Bad -agg value: %v", err)
		}
		agg, err := result.GroupBy(opts.Group).Aggregate(opts.Group, specs...)
		if err != nil {
			log.Fatalf("Aggregation failed: %v", err)
		}
		result = agg
	}

	if opts.Order != "" {
		attrs := types.SplitSchema(opts.Order)
		if opts.Desc {
			result = result.OrderByDesc(attrs...)
		} else {
			result = result.OrderBy(attrs...)
		}
	}

	return result
}

// loadTable reads the input table from a snapshot or a typed CSV file.
func loadTable(opts Options) *relation.Table {
	if opts.Snapshot != "" {
		t, err := persist.LoadFile(opts.Snapshot)
		if err != nil {
			log.Fatalf("Failed to load snapshot %s: %v", opts.Snapshot, err)
		}
		return t
	}

	if opts.CSVPath == "" || opts.Domain == "" {
		log.Fatalf("Either -snapshot or both -csv and -domain are required")
	}

	domain, err := types.ParseDomain(opts.Domain)
	if err != nil {
		log.Fatalf("Bad -domain value: %v", err)
	}

	f, err := os.Open(opts.CSVPath)
	if err != nil {
		log.Fatalf("Failed to open %s: %v", opts.CSVPath, err)
	}
	defer f.Close()

	t, err := persist.ReadCSV(f, opts.Name, domain, opts.Key)
	if err != nil {
		log.Fatalf("Failed to read CSV: %v", err)
	}
	return t
}

// parseAggs parses "sum:salary,count:id" into aggregation specs.
func parseAggs(s string) ([]relation.AggSpec, error) {
	var specs []relation.AggSpec
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		fn, col, _ := strings.Cut(part, ":")
		agg, err := relation.ParseAggFunc(fn)
		if err != nil {
			return nil, err
		}
		specs = append(specs, relation.AggSpec{Fn: agg, Col: col})
	}
	return specs, nil
}

func parseFlags() Options {
	opts := Options{}

	flag.StringVar(&opts.ConfigPath, "config", "", "Path to YAML or JSON config file")
	flag.StringVar(&opts.CSVPath, "csv", "", "Path to input CSV file")
	flag.StringVar(&opts.Snapshot, "snapshot", "", "Path to input snapshot file (overrides -csv)")
	flag.StringVar(&opts.Name, "name", "table", "Table name")
	flag.StringVar(&opts.Domain, "domain", "", "Comma-separated domain tags for -csv (e.g. I,T,D)")
	flag.StringVar(&opts.Key, "key", "", "Comma-separated primary key attributes")
	flag.StringVar(&opts.Where, "where", "", "Selection condition (e.g. \"salary > 50000\")")
	flag.StringVar(&opts.Project, "project", "", "Comma-separated attributes to project")
	flag.StringVar(&opts.Group, "group", "", "Attribute to group by")
	flag.StringVar(&opts.Aggs, "agg", "", "Aggregations as fn:col pairs (e.g. sum:salary,count:id)")
	flag.StringVar(&opts.Order, "order", "", "Comma-separated attributes to order by")
	flag.BoolVar(&opts.Desc, "desc", false, "Order descending")
	flag.StringVar(&opts.Format, "format", "csv", "Output format: csv, json")
	flag.StringVar(&opts.Save, "save", "", "Save the result as a snapshot to this path")

	flag.Parse()
	return opts
}
