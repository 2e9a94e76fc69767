package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"

	"bindicator/internal/config"
	"bindicator/internal/indicator"
	appLog "bindicator/internal/log"
	"bindicator/internal/metrics"
	"bindicator/internal/service"
	"bindicator/internal/web"
)

func newRunCmd(flags *rootFlags) *cobra.Command {
	var listen string
	var once bool

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Refresh feeds on schedule, drive the LED strip and serve the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(flags)
			if err != nil {
				return err
			}
			// --listen overrides the config file.
			if listen != "" {
				cfg.Listen = listen
			}
			return run(cfg, once)
		},
	}
	cmd.Flags().StringVar(&listen, "listen", "", "HTTP listen address (overrides config if set)")
	cmd.Flags().BoolVar(&once, "once", false, "refresh and update the strip once, then exit")
	return cmd
}

func run(cfg *config.Config, once bool) error {
	appLog.Info("bindicator starting", "version", version)
	appLog.Info("effective config",
		"listen", cfg.Listen,
		"timezone", cfg.Timezone,
		"refresh", cfg.RefreshCron,
		"strict", cfg.Strict,
		"fallback", cfg.Fallback,
		"ics_count", len(cfg.ICS),
		"driver", cfg.Indicator.Driver,
	)

	ic := cfg.Indicator
	stripCfg, err := indicator.NewConfig(ic.LEDs, ic.ActiveFrom, ic.ActiveUntil, ic.Brightness, ic.Palette, ic.Order)
	if err != nil {
		return err
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	svc := service.New(cfg, nil, metrics.New(reg))

	driver := indicator.Open(ic.Driver, ic.SPIPort, ic.LEDs)
	defer func() {
		if err := driver.Close(); err != nil {
			appLog.Error("indicator close failed", err)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// A failed first refresh is not fatal: the strip shows the error frame
	// and the next scheduled refresh retries.
	_ = svc.Refresh(ctx)
	updateStrip(svc, driver, stripCfg)
	if once {
		return nil
	}

	sched := cron.New(cron.WithLocation(svc.Location()))
	if _, err := sched.AddFunc(cfg.RefreshCron, func() {
		_ = svc.Refresh(ctx)
		updateStrip(svc, driver, stripCfg)
	}); err != nil {
		return err
	}
	// The active window is hour-granular, so a per-minute check is enough.
	if _, err := sched.AddFunc("* * * * *", func() {
		updateStrip(svc, driver, stripCfg)
	}); err != nil {
		return err
	}
	sched.Start()
	defer func() {
		<-sched.Stop().Done()
	}()

	srv := web.NewServer(cfg, svc, reg)
	if err := srv.Run(ctx); err != nil {
		return err
	}

	appLog.Info("signal received, shutting down")
	// Give an in-flight strip write a moment before the driver closes.
	time.Sleep(100 * time.Millisecond)
	appLog.Info("bindicator exiting")
	return nil
}

func updateStrip(svc *service.Service, driver indicator.Driver, cfg indicator.Config) {
	hour := time.Now().In(svc.Location()).Hour()
	var frame indicator.Frame
	switch {
	case !cfg.Active(hour):
		frame = indicator.Fill(cfg.LEDs, indicator.Off)
	case !svc.Ready():
		frame = indicator.ErrorFrame(cfg)
	default:
		day, due := svc.Tomorrow()
		frame = indicator.Render(due, hour, cfg)
		appLog.Debug("indicator update", "tomorrow", day.Format("2006-01-02"), "bins", due.String(), "hour", hour)
	}
	if err := driver.Show(frame); err != nil {
		appLog.Error("indicator update failed", err)
	}
}
