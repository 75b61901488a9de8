package workers

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/shirou/gopsutil/process"

	"studychat/contract"
)

var _ contract.Worker = (*TelemetryWorker)(nil)

// TelemetryWorker periodically logs self stats (RSS, CPU, OS status) so
// a long-running node can be observed without any external agent.
type TelemetryWorker struct {
	log      *slog.Logger
	interval time.Duration
}

func NewTelemetryWorker(log *slog.Logger, interval time.Duration) *TelemetryWorker {
	return &TelemetryWorker{log: log, interval: interval}
}

func (w *TelemetryWorker) Run(ctx context.Context) error {
	proc, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return err
	}

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			memInfo, err := proc.MemoryInfo()
			if err != nil {
				w.log.Error("Failed to collect memory stats", "err", err)
				continue
			}
			cpuPercent, err := proc.CPUPercent()
			if err != nil {
				w.log.Error("Failed to collect cpu stats", "err", err)
				continue
			}
			status, err := proc.Status()
			if err != nil {
				w.log.Error("Failed to collect process status", "err", err)
				continue
			}
			w.log.Info("node stats",
				"rss_bytes", memInfo.RSS,
				"cpu_percent", cpuPercent,
				"status", status)
		}
	}
}
