package depload

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"
)

type HealthStatus string

const (
	HealthStatusUp   HealthStatus = "up"
	HealthStatusDown HealthStatus = "down"
)

type HealthReport struct {
	Name    string
	Status  HealthStatus
	Error   error
	Latency time.Duration
}

type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

type ReadinessChecker interface {
	ReadinessCheck(ctx context.Context) error
}

// Live fails with the first service, in construction order, whose health
// check fails.
func (c *Container) Live(ctx context.Context) error {
	return firstDown(c.Health(ctx))
}

func (c *Container) Ready(ctx context.Context) error {
	return firstDown(c.Readiness(ctx))
}

// Health probes every live instance implementing HealthChecker. Probes run
// concurrently; reports follow construction order.
func (c *Container) Health(ctx context.Context) []HealthReport {
	return probe(ctx, c, func(ctx context.Context, instance any) (bool, error) {
		hc, ok := instance.(HealthChecker)
		if !ok {
			return false, nil
		}
		return true, hc.HealthCheck(ctx)
	})
}

func (c *Container) Readiness(ctx context.Context) []HealthReport {
	return probe(ctx, c, func(ctx context.Context, instance any) (bool, error) {
		rc, ok := instance.(ReadinessChecker)
		if !ok {
			return false, nil
		}
		return true, rc.ReadinessCheck(ctx)
	})
}

type probeFunc func(ctx context.Context, instance any) (checked bool, err error)

func probe(ctx context.Context, c *Container, check probeFunc) []HealthReport {
	names := c.internal.Instances()
	results := make([]*HealthReport, len(names))

	var g errgroup.Group
	for i, name := range names {
		instance, ok := c.internal.Instance(name)
		if !ok {
			continue
		}

		g.Go(func() error {
			start := time.Now()
			checked, err := check(ctx, instance)
			if !checked {
				return nil
			}

			report := &HealthReport{
				Name:    name,
				Status:  HealthStatusUp,
				Latency: time.Since(start),
			}
			if err != nil {
				report.Status = HealthStatusDown
				report.Error = err
			}
			results[i] = report
			return nil
		})
	}
	_ = g.Wait()

	reports := make([]HealthReport, 0, len(results))
	for _, r := range results {
		if r != nil {
			reports = append(reports, *r)
		}
	}
	return reports
}

func firstDown(reports []HealthReport) error {
	for _, r := range reports {
		if r.Status == HealthStatusDown {
			return errHealthCheckFailed(r.Name, r.Error)
		}
	}
	return nil
}
