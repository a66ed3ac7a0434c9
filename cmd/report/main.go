package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"sleep-observer/src/analysis"
	"sleep-observer/src/config"
	"sleep-observer/src/logger"
	"sleep-observer/src/models"
	"sleep-observer/src/network"
)

// -----------------------------------------------------------------------------

// report turns a nightly sleep report into chart geometry JSON.
//
//	report -in night.json -chart heart-rate
//	report -date 2025-10-09
func main() {
	configPath := flag.String("config", "config/default.yaml", "path to config file")
	in := flag.String("in", "", "report JSON file ('-' for stdin)")
	date := flag.String("date", "", "fetch the report for YYYY-MM-DD from network.report_base_url")
	chart := flag.String("chart", "all", "all | heart-rate | respiration | toss | stages")
	pretty := flag.Bool("pretty", false, "indent output")
	flag.Parse()

	conf, err := config.NewConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
	appLogger := logger.NewLoggerWithWriter(conf.MConfig, "report", os.Stderr)

	report, err := loadReport(conf.MConfig, *in, *date, appLogger)
	if err != nil {
		appLogger.Error("%v", err)
		os.Exit(1)
	}

	out, err := render(analysis.NewChartFacade(conf.MConfig, appLogger), report, *chart)
	if err != nil {
		appLogger.Error("%v", err)
		os.Exit(2)
	}

	enc := json.NewEncoder(os.Stdout)
	if *pretty {
		enc.SetIndent("", "  ")
	}
	if err := enc.Encode(out); err != nil {
		appLogger.Error("Failed to write output: %v", err)
		os.Exit(1)
	}
}

// -----------------------------------------------------------------------------

func loadReport(cfg *models.MConfig, in, date string, log *logger.Logger) (*models.MSleepReport, error) {
	switch {
	case in != "" && date != "":
		return nil, fmt.Errorf("use either -in or -date, not both")
	case date != "":
		ctx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Network.RequestTimeout)*time.Second)
		defer cancel()
		fetcher := network.NewReportFetcher(cfg, network.NewAsyncNetworkManager(cfg, log), log)
		return fetcher.FetchSleepReport(ctx, date)
	case in != "":
		return decodeReport(in)
	default:
		return nil, fmt.Errorf("one of -in or -date is required")
	}
}

// -----------------------------------------------------------------------------

func decodeReport(path string) (*models.MSleepReport, error) {
	var r io.Reader = os.Stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		r = f
	}

	var report models.MSleepReport
	if err := json.NewDecoder(r).Decode(&report); err != nil {
		return nil, fmt.Errorf("failed to decode report: %w", err)
	}
	return &report, nil
}

// -----------------------------------------------------------------------------

func render(charts *analysis.ChartFacade, report *models.MSleepReport, chart string) (any, error) {
	switch chart {
	case "all":
		return charts.AllCharts(report), nil
	case "heart-rate":
		return charts.HeartRateChart(report), nil
	case "respiration":
		return charts.RespirationChart(report.Breathing), nil
	case "toss":
		return charts.TossTrack(report), nil
	case "stages":
		return charts.StageTimeline(report), nil
	default:
		return nil, fmt.Errorf("unknown chart %q", chart)
	}
}
