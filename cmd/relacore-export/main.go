// Package main implements the relacore-export tool: it converts tables
// between CSV, JSON, snapshot and SQLite forms, and archives snapshots to
// object storage.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"log"
	"os"
	"time"

	"github.com/relacore/relacore/internal/config"
	"github.com/relacore/relacore/internal/persist"
	"github.com/relacore/relacore/internal/storage"
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
	Format     string
	Out        string
	Archive    bool
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
	log.Printf("Loaded table %s: %d tuples", t.Name(), t.Size())

	if opts.Archive {
		archive(cfg, t)
		return
	}

	switch opts.Format {
	case "csv":
		withOutput(opts.Out, func(f *os.File) error { return persist.WriteCSV(t, f) })
	case "json":
		withOutput(opts.Out, func(f *os.File) error { return persist.WriteJSON(t, f) })
	case "snapshot":
		if opts.Out == "" {
			log.Fatalf("Format snapshot requires -out")
		}
		if err := persist.SaveFile(t, opts.Out); err != nil {
			log.Fatalf("Failed to write snapshot: %v", err)
		}
	case "sqlite":
		if opts.Out == "" {
			log.Fatalf("Format sqlite requires -out")
		}
		if err := persist.ExportSQLite(t, opts.Out); err != nil {
			log.Fatalf("Failed to export to SQLite: %v", err)
		}
		log.Printf("Exported %d tuples to %s", t.Size(), opts.Out)
	default:
		log.Fatalf("Unknown format %q", opts.Format)
	}
}

// archive pushes a snapshot of the table to the configured object storage
// and prints the manifest.
func archive(cfg *config.Config, t *relation.Table) {
	store := buildStorage(cfg)

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	m, err := persist.Archive(ctx, store, t)
	if err != nil {
		log.Fatalf("Failed to archive: %v", err)
	}
	log.Printf("Archived %s as %s (%d tuples)", t.Name(), m.ObjectPath, m.Rows)

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(m); err != nil {
		log.Fatalf("Failed to print manifest: %v", err)
	}
}

// buildStorage constructs the object storage backend named by the config.
func buildStorage(cfg *config.Config) storage.ObjectStorage {
	switch cfg.Storage.Type {
	case "s3":
		store, err := storage.NewS3Storage(context.Background(), cfg.Storage.S3.Bucket, storage.S3Config{
			Region:       cfg.Storage.S3.Region,
			Endpoint:     cfg.Storage.S3.Endpoint,
			UsePathStyle: cfg.Storage.S3.UsePathStyle,
		})
		if err != nil {
			log.Fatalf("Failed to initialize S3 storage: %v", err)
		}
		log.Printf("Using S3 storage bucket %s", cfg.Storage.S3.Bucket)
		return store
	default:
		store, err := storage.NewLocalStorage(cfg.Storage.Path)
		if err != nil {
			log.Fatalf("Failed to initialize local storage: %v", err)
		}
		log.Printf("Using local storage at %s", cfg.Storage.Path)
		return store
	}
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

// withOutput runs fn against -out, or stdout when unset.
func withOutput(out string, fn func(*os.File) error) {
	f := os.Stdout
	if out != "" {
		var err error
		f, err = os.Create(out)
		if err != nil {
			log.Fatalf("Failed to create %s: %v", out, err)
		}
		defer f.Close()
	}
	if err := fn(f); err != nil {
		log.Fatalf("Failed to write output: %v", err)
	}
}

func parseFlags() Options {
	opts := Options{}

	flag.StringVar(&opts.ConfigPath, "config", "", "Path to YAML or JSON config file")
	flag.StringVar(&opts.CSVPath, "csv", "", "Path to input CSV file")
	flag.StringVar(&opts.Snapshot, "snapshot", "", "Path to input snapshot file (overrides -csv)")
	flag.StringVar(&opts.Name, "name", "table", "Table name")
	flag.StringVar(&opts.Domain, "domain", "", "Comma-separated domain tags for -csv (e.g. I,T,D)")
	flag.StringVar(&opts.Key, "key", "", "Comma-separated primary key attributes")
	flag.StringVar(&opts.Format, "format", "csv", "Output format: csv, json, snapshot, sqlite")
	flag.StringVar(&opts.Out, "out", "", "Output path (stdout for csv/json when unset)")
	flag.BoolVar(&opts.Archive, "archive", false, "Archive a snapshot to the configured object storage")

	flag.Parse()
	return opts
}
