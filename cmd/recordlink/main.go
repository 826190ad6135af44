package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"math"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/pedrohavay/recordlink/config"
	"github.com/pedrohavay/recordlink/linkage"
	"github.com/pedrohavay/recordlink/logging"
	"github.com/pedrohavay/recordlink/server"
	"go.uber.org/zap"
)

// Usage:
//   recordlink dump-weights [-profile name]
//   recordlink score [-profile name] [-explain] < pair.json
//   recordlink score -a left.json -b right.json
//   recordlink rank [-threshold 0.5] [-format jsonl|csv|msgpack] < records > matches.jsonl
//   recordlink clean [-format jsonl|csv|msgpack] [-region US] < records > cleaned
//   recordlink serve

var version = "dev"

type env struct {
	cfg      config.Config
	logger   *zap.Logger
	profiles linkage.Profiles
}

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}
	cmd, args := os.Args[1], os.Args[2:]
	switch cmd {
	case "help", "-h", "--help":
		usage()
		return
	case "dump-weights", "score", "rank", "clean", "serve":
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n", cmd)
		usage()
		os.Exit(2)
	}

	e, err := setup()
	if err != nil {
		fmt.Fprintf(os.Stderr, "startup: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = e.logger.Sync() }()

	switch cmd {
	case "dump-weights":
		err = dumpWeights(e, args, os.Stdout)
	case "score":
		err = score(e, args, os.Stdin, os.Stdout)
	case "rank":
		err = rank(e, args, os.Stdin, os.Stdout)
	case "clean":
		err = clean(e, args, os.Stdin, os.Stdout)
	case "serve":
		err = serve(e)
	}
	if err != nil {
		e.logger.Error("command failed", zap.String("command", cmd), zap.Error(err))
		fmt.Fprintf(os.Stderr, "%s: %v\n", cmd, err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintf(os.Stderr, "recordlink commands: dump-weights | score | rank | clean | serve\n")
}

func setup() (*env, error) {
	config.LoadEnv()
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	logger, err := logging.New(cfg.Logging)
	if err != nil {
		return nil, err
	}
	profiles := linkage.NewProfiles()
	if cfg.Match.ProfilesDir != "" {
		if profiles, err = linkage.LoadProfiles(cfg.Match.ProfilesDir); err != nil {
			return nil, err
		}
		logger.Debug("weight profiles loaded", zap.Strings("profiles", profiles.Names()))
	}
	return &env{cfg: cfg, logger: logger, profiles: profiles}, nil
}

func (e *env) engine(profile string) (*linkage.Engine, error) {
	prof, err := e.profiles.Get(profile)
	if err != nil {
		return nil, err
	}
	return prof.Engine(), nil
}

func dumpWeights(e *env, args []string, w io.Writer) error {
	fs := flag.NewFlagSet("dump-weights", flag.ContinueOnError)
	profile := fs.String("profile", e.cfg.Match.Profile, "weight profile name")
	if err := fs.Parse(args); err != nil {
		return err
	}
	prof, err := e.profiles.Get(*profile)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(map[string]any{
		"profile":    prof.Name,
		"metric":     prof.Metric,
		"weights":    prof.Weights.Map(),
		"global_max": prof.Weights.GlobalMax(),
	})
}

func readRecordFile(path string) (linkage.Record, error) {
	var r linkage.Record
	raw, err := os.ReadFile(path)
	if err != nil {
		return r, err
	}
	if err := json.Unmarshal(raw, &r); err != nil {
		return r, fmt.Errorf("%s: %w", path, err)
	}
	return r, nil
}

func score(e *env, args []string, r io.Reader, w io.Writer) error {
	fs := flag.NewFlagSet("score", flag.ContinueOnError)
	profile := fs.String("profile", e.cfg.Match.Profile, "weight profile name")
	left := fs.String("a", "", "file holding the first record as JSON")
	right := fs.String("b", "", "file holding the second record as JSON")
	explain := fs.Bool("explain", false, "print the per-field breakdown")
	if err := fs.Parse(args); err != nil {
		return err
	}
	engine, err := e.engine(*profile)
	if err != nil {
		return err
	}

	var a, b linkage.Record
	if *left != "" || *right != "" {
		if *left == "" || *right == "" {
			return errors.New("-a and -b must be given together")
		}
		if a, err = readRecordFile(*left); err != nil {
			return err
		}
		if b, err = readRecordFile(*right); err != nil {
			return err
		}
	} else {
		var pair linkage.Pair
		if err := json.NewDecoder(r).Decode(&pair); err != nil {
			return fmt.Errorf("error decoding JSON: %w", err)
		}
		if pair.A == nil || pair.B == nil {
			return errors.New("expected a pair of records")
		}
		a, b = *pair.A, *pair.B
	}

	if *explain {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(engine.Explain(a, b))
	}
	_, err = fmt.Fprintln(w, strconv.FormatFloat(engine.Similarity(a, b), 'g', -1, 64))
	return err
}

func readRecords(format string, r io.Reader, fn func(linkage.Record) error) error {
	switch format {
	case "jsonl", "json":
		return linkage.ReadRecordsJSONL(r, fn)
	case "csv":
		return linkage.ReadRecordsCSV(r, fn)
	case "msgpack":
		return linkage.ReadRecordsMsgpack(r, fn)
	}
	return fmt.Errorf("unknown format: %s", format)
}

func writeRecords(format string, w io.Writer, records []linkage.Record) error {
	switch format {
	case "jsonl", "json":
		return linkage.WriteRecordsJSONL(w, records)
	case "csv":
		return linkage.WriteRecordsCSV(w, records)
	case "msgpack":
		return linkage.WriteRecordsMsgpack(w, records)
	}
	return fmt.Errorf("unknown format: %s", format)
}

func rank(e *env, args []string, r io.Reader, w io.Writer) error {
	fs := flag.NewFlagSet("rank", flag.ContinueOnError)
	profile := fs.String("profile", e.cfg.Match.Profile, "weight profile name")
	threshold := fs.Float64("threshold", e.cfg.Match.Threshold, "minimum score to report")
	format := fs.String("format", "jsonl", "input format: jsonl, csv or msgpack")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if math.IsNaN(*threshold) || *threshold < 0 || *threshold > 1 {
		return fmt.Errorf("threshold %v is outside [0,1]", *threshold)
	}
	engine, err := e.engine(*profile)
	if err != nil {
		return err
	}

	var records []linkage.Record
	if err := readRecords(*format, bufio.NewReader(r), func(rec linkage.Record) error {
		records = append(records, rec)
		return nil
	}); err != nil {
		return err
	}

	matches := engine.Pairs(records, *threshold)
	e.logger.Info("ranked records",
		zap.Int("records", len(records)),
		zap.Int("matches", len(matches)),
		zap.Float64("threshold", *threshold),
	)

	bw := bufio.NewWriter(w)
	defer bw.Flush()
	enc := json.NewEncoder(bw)
	for _, m := range matches {
		if err := enc.Encode(m); err != nil {
			return err
		}
	}
	return nil
}

func clean(e *env, args []string, r io.Reader, w io.Writer) error {
	fs := flag.NewFlagSet("clean", flag.ContinueOnError)
	format := fs.String("format", "jsonl", "input and output format: jsonl, csv or msgpack")
	region := fs.String("region", e.cfg.Match.DefaultPhoneRegion, "region for phone numbers without a country code")
	if err := fs.Parse(args); err != nil {
		return err
	}

	opts := linkage.CleanOptions{Region: *region}
	var out []linkage.Record
	if err := readRecords(*format, bufio.NewReader(r), func(rec linkage.Record) error {
		cleaned, err := linkage.Clean(rec, opts)
		if err != nil {
			e.logger.Warn("record cleaned with warnings", zap.String("id", rec.ID), zap.Error(err))
		}
		if err := linkage.Validate(cleaned); err != nil {
			e.logger.Warn("record failed validation", zap.String("id", rec.ID), zap.Error(err))
		}
		if !cleaned.HasAny() {
			e.logger.Warn("record has no comparable fields", zap.String("id", rec.ID))
		}
		out = append(out, cleaned)
		return nil
	}); err != nil {
		return err
	}

	bw := bufio.NewWriter(w)
	if err := writeRecords(*format, bw, out); err != nil {
		return err
	}
	return bw.Flush()
}

func serve(e *env) error {
	store := linkage.NewStore()
	if e.cfg.Match.SeedDemoData {
		store.Seed()
	}
	srv, err := server.New(server.Options{
		AppName:  e.cfg.AppName,
		Version:  version,
		HTTP:     e.cfg.HTTP,
		Match:    e.cfg.Match,
		Store:    store,
		Profiles: e.profiles,
		Logger:   e.logger,
	})
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return srv.Run(ctx)
}
