/*
Package admin holds operator-facing endpoints: host metrics and the token
guard on catalog writes.
*/
package admin

import (
	"crypto/subtle"
	"fmt"
	"net/http"
	"time"

	"HabitCards_V0.1/internal/utility"
	"github.com/labstack/echo/v4"
	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/disk"
	"github.com/shirou/gopsutil/v4/host"
	"github.com/shirou/gopsutil/v4/mem"
)

// TokenHeader carries the admin token on guarded requests.
const TokenHeader = "X-Admin-Token"

// StartTime is when the process started serving.
var StartTime = time.Now()

// RequireToken rejects requests whose TokenHeader does not match token.
// An empty token disables the guard.
func RequireToken(token string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		if token == "" {
			return next
		}
		return func(c echo.Context) error {
			got := c.Request().Header.Get(TokenHeader)
			if subtle.ConstantTimeCompare([]byte(got), []byte(token)) != 1 {
				utility.GetLogger(c).Warn().Str("ip", utility.GetRealIP(c)).Str("path", c.Path()).Msg("Rejected admin request")
				return c.JSON(http.StatusUnauthorized, map[string]interface{}{
					"success": false,
					"error":   "Invalid or missing admin token",
				})
			}
			return next(c)
		}
	}
}

// GetServerHealthHandler collects and returns system-level metrics
func GetServerHealthHandler(c echo.Context) error {
	ctx := c.Request().Context()
	log := utility.GetLogger(c)

	// 1. Memory Stats
	v, err := mem.VirtualMemoryWithContext(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("Failed to read memory stats")
		v = &mem.VirtualMemoryStat{}
	}

	// 2. CPU Usage (sampled over 200ms)
	usage := 0.0
	if cpuPercent, err := cpu.PercentWithContext(ctx, 200*time.Millisecond, false); err == nil && len(cpuPercent) > 0 {
		usage = cpuPercent[0]
	}

	// 3. Disk Stats (Root partition)
	d, err := disk.UsageWithContext(ctx, "/")
	if err != nil {
		d = &disk.UsageStat{}
	}

	// 4. Host/Runtime Info
	hInfo, err := host.InfoWithContext(ctx)
	if err != nil {
		hInfo = &host.InfoStat{}
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"status": "online",
		"runtime": map[string]interface{}{
			"uptime":     time.Since(StartTime).Round(time.Second).String(),
			"start_time": StartTime.Format(time.RFC3339),
			"os":         hInfo.OS,
			"platform":   hInfo.Platform,
			"arch":       hInfo.KernelArch,
			"hostname":   hInfo.Hostname,
		},
		"cpu": map[string]interface{}{
			"usage_percent": fmt.Sprintf("%.2f%%", usage),
		},
		"memory": map[string]interface{}{
			"total_gb":     gigabytes(v.Total),
			"used_gb":      gigabytes(v.Used),
			"used_percent": fmt.Sprintf("%.2f%%", v.UsedPercent),
			"free_gb":      gigabytes(v.Free),
		},
		"disk": map[string]interface{}{
			"total_gb":     gigabytes(d.Total),
			"used_gb":      gigabytes(d.Used),
			"used_percent": fmt.Sprintf("%.2f%%", d.UsedPercent),
		},
	})
}

func gigabytes(b uint64) string {
	return fmt.Sprintf("%.2f GB", float64(b)/1024/1024/1024)
}
