package loom

import (
	"context"
	"sync"
	"time"

	"github.com/loom-di/loom/internal/engine"
)

type HealthStatus string

const (
	HealthStatusUp   HealthStatus = "up"
	HealthStatusDown HealthStatus = "down"
)

type HealthReport struct {
	Key     string
	Status  HealthStatus
	Error   error
	Latency time.Duration
}

// HealthChecker is implemented by constructed singletons that want to
// participate in Provider.Live and Provider.Health.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

type ReadinessChecker interface {
	ReadinessCheck(ctx context.Context) error
}

// Live fails when any constructed singleton implementing HealthChecker
// reports an error. Only instances already materialized are checked; Live
// never constructs anything.
func (p *Provider) Live(ctx context.Context) error {
	for _, r := range p.Health(ctx) {
		if r.Status == HealthStatusDown {
			return engine.NewError(engine.ErrCodeHealthCheckFailed,
				"health check failed", r.Error).WithKey(r.Key)
		}
	}
	return nil
}

func (p *Provider) Ready(ctx context.Context) error {
	for _, r := range p.checkAll(ctx, func(v any) func(context.Context) error {
		if c, ok := v.(ReadinessChecker); ok {
			return c.ReadinessCheck
		}
		return nil
	}) {
		if r.Status == HealthStatusDown {
			return engine.NewError(engine.ErrCodeHealthCheckFailed,
				"readiness check failed", r.Error).WithKey(r.Key)
		}
	}
	return nil
}

func (p *Provider) Health(ctx context.Context) []HealthReport {
	return p.checkAll(ctx, func(v any) func(context.Context) error {
		if c, ok := v.(HealthChecker); ok {
			return c.HealthCheck
		}
		return nil
	})
}

func (p *Provider) checkAll(ctx context.Context, pick func(any) func(context.Context) error) []HealthReport {
	singletons := p.engine.Singletons()

	var (
		mu      sync.Mutex
		wg      sync.WaitGroup
		reports []HealthReport
	)

	for key, instance := range singletons {
		check := pick(instance)
		if check == nil {
			continue
		}

		wg.Add(1)
		go func(key string, check func(context.Context) error) {
			defer wg.Done()

			start := time.Now()
			err := check(ctx)

			report := HealthReport{
				Key:     key,
				Status:  HealthStatusUp,
				Latency: time.Since(start),
			}
			if err != nil {
				report.Status = HealthStatusDown
				report.Error = err
			}

			mu.Lock()
			reports = append(reports, report)
			mu.Unlock()
		}(key, check)
	}

	wg.Wait()
	return reports
}
