package debug

// Debug resource logger. Started only when config.Debug is true.
// Emits goroutine count, stack and heap usage, process RSS where available,
// and the frame handle accounting of the monitoring core.

import (
	"context"
	"errors"
	"log/slog"
	"runtime"
	"runtime/metrics"
	"time"

	"github.com/dustin/go-humanize"
)

var errRSSUnsupported = errors.New("rss: unsupported platform")

// Probe returns extra attributes appended to every resource log line.
type Probe func() []slog.Attr

// StartResourceLogger launches a ticker that logs runtime resource usage
// until ctx is done.
func StartResourceLogger(ctx context.Context, interval time.Duration, logger *slog.Logger, probe Probe) {
	if interval <= 0 {
		interval = 2 * time.Second
	}
	go func() {
		t := time.NewTicker(interval)
		defer t.Stop()
		samples := []metrics.Sample{{Name: "/sched/goroutines:goroutines"}}
		var rssErrLogged bool
		for {
			select {
			case <-ctx.Done():
				return
			case <-t.C:
			}
			metrics.Read(samples)
			var ms runtime.MemStats
			runtime.ReadMemStats(&ms)
			attrs := []any{
				slog.Uint64("goroutines", samples[0].Value.Uint64()),
				slog.String("stack_inuse", humanize.IBytes(ms.StackInuse)),
				slog.String("heap_alloc", humanize.IBytes(ms.HeapAlloc)),
				slog.String("heap_sys", humanize.IBytes(ms.HeapSys)),
				slog.Uint64("num_gc", uint64(ms.NumGC)),
			}
			if rss, err := processRSS(); err == nil {
				attrs = append(attrs, slog.String("rss", humanize.IBytes(rss)))
			} else if !rssErrLogged && err != errRSSUnsupported {
				logger.Warn("resources: rss query failed", slog.String("err", err.Error()))
				rssErrLogged = true
			}
			if probe != nil {
				for _, a := range probe() {
					attrs = append(attrs, a)
				}
			}
			logger.Info("resources", attrs...)
		}
	}()
}
