package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"text/tabwriter"

	"SignalReplay/internal/backtest"
	"SignalReplay/internal/collector"
	"SignalReplay/internal/config"
	"SignalReplay/internal/dataset"
	"SignalReplay/internal/model"
	"SignalReplay/internal/recorder"
	"SignalReplay/internal/report"
	"SignalReplay/internal/runner"
	"SignalReplay/internal/strategy"
	"SignalReplay/internal/util"

	"github.com/rs/zerolog"
)

func main() {
	cfgPath := flag.String("config", envOr("CONFIG_PATH", "configs/config.yaml"), "config file")
	symbols := flag.String("symbol", "", "comma separated symbols (default: backtest.symbols)")
	pricesCSV := flag.String("prices", "", "timestamp,price CSV to replay instead of fetching")
	signalsCSV := flag.String("signals", "", "timestamp,strength CSV (default: configured signal source)")
	out := flag.String("out", "", "write JSON reports to this file or directory")
	record := flag.Bool("record", false, "store runs in the configured SQLite database")
	flag.Parse()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "config validation: %v\n", err)
		os.Exit(1)
	}
	log := util.NewLoggerTo(os.Stderr, cfg.Log.Level)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	reports, err := run(ctx, cfg, log, options{
		symbols:    *symbols,
		pricesCSV:  *pricesCSV,
		signalsCSV: *signalsCSV,
		record:     *record,
	})
	if err != nil {
		log.Error().Err(err).Msg("backtest failed")
		os.Exit(1)
	}

	printReports(reports)
	if *out != "" {
		if err := writeReports(*out, reports); err != nil {
			log.Error().Err(err).Msg("write reports")
			os.Exit(1)
		}
	}
}

type options struct {
	symbols    string
	pricesCSV  string
	signalsCSV string
	record     bool
}

func run(ctx context.Context, cfg *config.Config, log zerolog.Logger, opts options) ([]*report.Report, error) {
	sim, err := backtest.NewSimulator(cfg.Backtest.Config, log)
	if err != nil {
		return nil, err
	}
	source, err := strategy.NewSource(cfg.Signal)
	if err != nil {
		return nil, err
	}
	if opts.signalsCSV != "" {
		source = &strategy.FileSource{Path: opts.signalsCSV}
	}

	var rec recorder.Recorder = recorder.NewNoopRecorder()
	if opts.record {
		sr, err := recorder.NewSQLiteRecorder(cfg.Database.SQLitePath, log)
		if err != nil {
			return nil, err
		}
		defer sr.Close()
		rec = sr
	}

	r := &runner.Runner{
		Source:       source,
		Simulator:    sim,
		Recorder:     rec,
		LookbackDays: cfg.Backtest.LookbackDays,
		Concurrency:  cfg.Backtest.Concurrency,
		Log:          log,
	}

	if opts.pricesCSV != "" {
		rows, err := dataset.LoadCSV(opts.pricesCSV)
		if err != nil {
			return nil, err
		}
		prices := make([]model.PricePoint, len(rows))
		for i, row := range rows {
			prices[i] = model.PricePoint{Time: row.Time, Price: row.Value}
		}
		signals, err := source.Generate(prices)
		if err != nil {
			return nil, fmt.Errorf("generate signals: %w", err)
		}
		symbol := opts.symbols
		if symbol == "" {
			symbol = strings.TrimSuffix(filepath.Base(opts.pricesCSV), filepath.Ext(opts.pricesCSV))
		}
		rep, err := r.Replay(ctx, symbol, prices, signals)
		if err != nil {
			return nil, err
		}
		return []*report.Report{rep}, nil
	}

	fetcher, err := collector.NewFetcher(cfg.DataSource.Provider, cfg.DataSource.BaseURL,
		cfg.DataSource.APIKey, cfg.DataSource.CSVDir, cfg.Proxy)
	if err != nil {
		return nil, err
	}
	r.Collector = collector.NewCollector(fetcher, log)

	list := cfg.Backtest.Symbols
	if opts.symbols != "" {
		list = strings.Split(opts.symbols, ",")
	}
	return r.RunAll(ctx, list)
}

func printReports(reports []*report.Report) {
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "SYMBOL\tSAMPLES\tTRADES\tRETURN%\tANN%\tVOL%\tSHARPE\tMAXDD%\tWIN%\tBENCH%\tFINAL")
	for _, r := range reports {
		m := r.Result.Metrics
		if m == nil {
			fmt.Fprintf(w, "%s\t0\t0\t-\t-\t-\t-\t-\t-\t-\t-\n", r.Symbol)
			continue
		}
		fmt.Fprintf(w, "%s\t%d\t%d\t%.2f\t%.2f\t%.2f\t%.2f\t%.2f\t%.1f\t%.2f\t%.2f\n",
			r.Symbol, m.Samples, m.NumTrades, m.TotalReturnPct, m.AnnualizedReturnPct,
			m.VolatilityPct, m.SharpeRatio, m.MaxDrawdownPct, m.WinRatePct, m.BenchmarkReturnPct, m.FinalValue)
	}
	w.Flush()
}

// writeReports writes a single report to out when it names a .json file,
// otherwise one file per report inside the out directory.
func writeReports(out string, reports []*report.Report) error {
	if len(reports) == 1 && strings.EqualFold(filepath.Ext(out), ".json") {
		return report.Save(out, reports[0])
	}
	for _, r := range reports {
		if err := report.Save(filepath.Join(out, report.FileName(r)), r); err != nil {
			return err
		}
	}
	return nil
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
