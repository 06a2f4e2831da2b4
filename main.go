package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"tonunlock/pkg/api"
	"tonunlock/pkg/chart"
	"tonunlock/pkg/config"
	"tonunlock/pkg/dashboard"
	"tonunlock/pkg/loader"
	"tonunlock/pkg/logging"
	"tonunlock/pkg/models"
	"tonunlock/pkg/server"
	"tonunlock/pkg/sorting"
	"tonunlock/pkg/theme"
	"tonunlock/pkg/tui"
	"tonunlock/pkg/utils"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"go.uber.org/zap"
)

// Version should be set during build
var Version = "dev"

func main() {
	testFlag := flag.Bool("t", false, "Test configuration and remote resources, then exit")
	testLongFlag := flag.Bool("test", false, "Test configuration and remote resources, then exit")
	jsonFlag := flag.Bool("json", false, "Output test results as JSON")
	configFlag := flag.String("config", "", "Path to configuration file")
	versionFlag := flag.Bool("version", false, "Print version and exit")
	serverFlag := flag.Bool("server", false, "Run in headless server mode")
	portFlag := flag.Int("port", 8080, "Port for API server (0 disables it in dashboard mode)")
	onceFlag := flag.Bool("once", false, "Load once, print the dashboard to stdout and exit")
	restoreFlag := flag.Bool("restore", false, "Restore the most recent configuration backup and exit")
	flag.Parse()

	if *versionFlag {
		fmt.Printf("tonunlock version %s\n", Version)
		os.Exit(0)
	}

	cfgInput := *configFlag
	if cfgInput == "" && len(flag.Args()) > 0 {
		cfgInput = flag.Args()[0]
	}
	path, err := config.GetConfigPath(cfgInput)
	if err != nil {
		fmt.Printf("Error determining config path: %v\n", err)
		os.Exit(1)
	}

	if *restoreFlag {
		if err := config.RestoreLastBackup(path); err != nil {
			fmt.Printf("Failed to restore backup for %s: %v\n", path, err)
			os.Exit(1)
		}
		fmt.Printf("Restored latest backup to %s\n", path)
		os.Exit(0)
	}

	cfg, err := config.LoadConfigFromFile(path)
	if err != nil {
		fmt.Printf("Error loading config from %s: %v\n", path, err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if *testFlag || *testLongFlag {
		report, ok := runConfigTest(ctx, path, cfg, os.Stdout, *jsonFlag)
		if *jsonFlag {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			_ = enc.Encode(report)
		}
		if !ok {
			os.Exit(1)
		}
		os.Exit(0)
	}

	if errs := cfg.Validate(); len(errs) > 0 {
		fmt.Printf("Invalid configuration at %s:\n  %s\n", path, strings.Join(errs, "\n  "))
		os.Exit(1)
	}

	if err := checkPort(*serverFlag, *portFlag); err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}

	interactive := !*serverFlag && !*onceFlag
	logger, err := newLogger(cfg, interactive)
	if err != nil {
		fmt.Printf("Error creating logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	l := loader.New(api.NewClient(cfg), time.Duration(cfg.MetricsRefreshSeconds)*time.Second, logger)

	if *onceFlag {
		l.Load(ctx)
		renderOnce(os.Stdout, l.Status(), cfg.Symbol)
		return
	}

	var srv *server.Server
	if *serverFlag || *portFlag > 0 {
		srv = server.NewServer(l, cfg.Symbol, logger)
		go func() {
			if err := srv.Start(*portFlag); err != nil {
				logger.Error("server error", zap.Error(err))
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
	}

	if *serverFlag {
		fmt.Printf("Running in server mode on port %d...\n", *portFlag)
		l.Start(ctx)
		<-ctx.Done()
		l.Stop()
		return
	}

	themes := theme.NewManager(config.ThemeStore{Path: path}, theme.SystemTheme, logger)
	if err := tui.Start(ctx, l, themes, cfg, logger, Version); err != nil {
		fmt.Printf("Alas, there's been an error: %v", err)
		os.Exit(1)
	}
}

// checkPort rejects ports the server cannot be reached on. Dashboard mode
// treats 0 as "no server".
func checkPort(serverMode bool, port int) error {
	if port < 0 || port > 65535 {
		return fmt.Errorf("port %d out of range", port)
	}
	if serverMode && port == 0 {
		return errors.New("server mode needs a non-zero -port")
	}
	return nil
}

// newLogger writes to a file while the dashboard owns the terminal.
func newLogger(cfg config.Config, interactive bool) (*zap.Logger, error) {
	outputs := []string{"stderr"}
	if interactive {
		logPath := cfg.LogFile
		if logPath == "" {
			logPath = config.DefaultLogPath()
		}
		outputs = []string{logPath}
	}
	return logging.New(logging.Config{
		Level:       cfg.LogLevel,
		Environment: cfg.LogEnvironment,
		OutputPaths: outputs,
		Version:     Version,
	})
}

// runConfigTest validates cfg and fetches both remote resources once.
func runConfigTest(ctx context.Context, path string, cfg config.Config, out io.Writer, jsonOut bool) (models.TestReport, bool) {
	say := func(format string, args ...interface{}) {
		if !jsonOut {
			fmt.Fprintf(out, format, args...)
		}
	}

	report := models.TestReport{ConfigPath: path, ValidStructure: true}
	say("Testing configuration at: %s\n", path)

	if errs := cfg.Validate(); len(errs) > 0 {
		report.ValidStructure = false
		report.StructureErrors = errs
		for _, e := range errs {
			say("Error: %s\n", e)
		}
		return report, false
	}

	client := api.NewClient(cfg)
	ok := true

	say("  Schedule: %s ... ", cfg.ScheduleURL)
	start := time.Now()
	data, err := client.FetchSchedule(ctx)
	res := models.ResourceResult{Name: "schedule", URL: cfg.ScheduleURL, Latency: time.Since(start).Round(time.Millisecond).String()}
	if err != nil {
		ok = false
		res.Status = "error"
		res.Error = err.Error()
		say("Failed: %v\n", err)
	} else {
		res.Status = "ok"
		report.WalletCount = len(data.WalletTableData)
		report.ChartPoints = len(data.ChartData.Series())
		for _, w := range data.WalletTableData {
			if !w.Consistent() {
				report.InconsistentWallets++
			}
		}
		say("OK (%s wallets, %d chart points, %s)\n", utils.FormatCount(report.WalletCount), report.ChartPoints, res.Latency)
		if report.InconsistentWallets > 0 {
			say("  WARNING: %d wallets where unlocked + locked != total\n", report.InconsistentWallets)
		}
	}
	report.Resources = append(report.Resources, res)

	metricsURL := api.MarketDataURLFor(cfg.MarketDataURL, cfg.CoinGeckoID)
	say("  Market data: %s ... ", metricsURL)
	start = time.Now()
	m, err := client.FetchMarketMetrics(ctx)
	res = models.ResourceResult{Name: "market_data", URL: metricsURL, Latency: time.Since(start).Round(time.Millisecond).String()}
	if err != nil {
		ok = false
		res.Status = "error"
		res.Error = err.Error()
		say("Failed: %v\n", err)
	} else {
		res.Status = "ok"
		say("OK (%s, rank %s, %s)\n", utils.FormatPrice(m.PriceUSD), utils.FormatRank(m.MarketCapRank), res.Latency)
	}
	report.Resources = append(report.Resources, res)

	return report, ok
}

// renderOnce prints a static snapshot of the dashboard.
func renderOnce(w io.Writer, st loader.Status, symbol string) {
	title := lipgloss.NewStyle().Bold(true)
	fmt.Fprintln(w, title.Render(fmt.Sprintf("%s Unlock Dashboard", symbol)))

	if st.ScheduleErr != "" {
		fmt.Fprintf(w, "%s: %s\n", dashboard.LoadFailedBanner, st.ScheduleErr)
	}

	var metrics []string
	for _, slot := range dashboard.MetricSlots(dashboard.State{Metrics: st.Metrics, MetricsErr: st.MetricsErr}) {
		metrics = append(metrics, fmt.Sprintf("%s: %s", slot.Label, slot.Value))
	}
	fmt.Fprintln(w, strings.Join(metrics, " | "))

	if spec, ok := dashboard.ChartSpec(st.AppData, symbol); ok {
		if c, err := chart.New(spec); err == nil {
			fmt.Fprintln(w)
			fmt.Fprint(w, c.Plot(100, 20, -1))
		}
	}

	rows := dashboard.TableRows(st.AppData, sorting.DefaultState())
	if rows != nil {
		var headers []string
		for _, c := range dashboard.Columns(sorting.DefaultState()) {
			headers = append(headers, c.Title)
		}
		t := table.New().
			Border(lipgloss.NormalBorder()).
			Headers(headers...)
		for _, r := range rows {
			t.Row(r.Cells()...)
		}
		fmt.Fprintln(w)
		fmt.Fprintln(w, t.Render())
	}

	f := dashboard.FooterFor(st.AppData)
	fmt.Fprintf(w, "Data as of %s • %s wallets\n", f.DataDate, f.TotalWallets)
	if st.AppData != nil && st.AppData.Methodology != "" {
		fmt.Fprintf(w, "Methodology: %s\n", st.AppData.Methodology)
	}
}
