package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/rlanders/weatherview/internal/client"
	"github.com/rlanders/weatherview/internal/models"
	"github.com/rlanders/weatherview/internal/observability"
	"github.com/rlanders/weatherview/internal/persist"
)

// Dispatcher orchestrates one weather lookup: fetch from the provider, then
// conditionally persist the envelope. It owns no state; the data-collection
// flag arrives as an explicit argument rather than being read from ambient
// session context, so the dispatch path is testable with an injected value.
type Dispatcher struct {
	client client.WeatherClient
	writer persist.Writer
}

func NewDispatcher(client client.WeatherClient, writer persist.Writer) *Dispatcher {
	return &Dispatcher{
		client: client,
		writer: writer,
	}
}

// Result carries the outcome of one dispatch to the presentation layer.
// Exactly one of Envelope and FetchErr is set. The Save* fields describe
// the persistence side effect; a failed save never fails the dispatch.
type Result struct {
	Envelope *models.WeatherEnvelope
	FetchErr error

	// Saved is true when the envelope was written to the store.
	Saved bool
	// SaveSkipped is true when no write was attempted (flag off or store
	// unconfigured).
	SaveSkipped bool
	// SaveErr is the write failure, kept for flash messaging only.
	SaveErr error
}

// loggerFromContext extracts a zap.Logger from request context if present.
func loggerFromContext(ctx context.Context) *zap.Logger {
	if v := ctx.Value("logger"); v != nil {
		if l, ok := v.(*zap.Logger); ok && l != nil {
			return l
		}
	}
	return nil
}

// Handle fetches weather for location and, when collect is true and the
// store is configured, writes the envelope as a side effect. Fetch errors
// are terminal for the dispatch; persistence errors are logged and swallowed.
func (d *Dispatcher) Handle(ctx context.Context, location string, collect bool) Result {
	logger := loggerFromContext(ctx)
	observability.WeatherQueriesTotal.Inc()

	envelope, err := d.client.GetForecast(ctx, location)
	if err != nil {
		if logger != nil {
			logger.Warn("weather fetch failed",
				zap.String("location", location),
				zap.String("category", string(client.CategorizeError(err))),
				zap.Error(err))
		}
		return Result{FetchErr: err}
	}

	result := Result{Envelope: &envelope}

	if !collect || !d.writer.Enabled() {
		result.SaveSkipped = true
		observability.PersistWritesTotal.WithLabelValues("skipped").Inc()
		if collect && logger != nil {
			// Flag is on but there is nowhere to write. Silent no-op for
			// the user; visible to operators.
			logger.Debug("data collection enabled but store unconfigured",
				zap.String("location", location))
		}
		return result
	}

	if err := d.writer.WriteEnvelope(ctx, &envelope); err != nil {
		result.SaveErr = err
		observability.PersistWritesTotal.WithLabelValues("error").Inc()
		if logger != nil {
			logger.Error("weather persist failed",
				zap.String("location", envelope.DisplayLocation()),
				zap.Error(err))
		}
		return result
	}

	result.Saved = true
	observability.PersistWritesTotal.WithLabelValues("success").Inc()
	if logger != nil {
		logger.Info("weather envelope persisted",
			zap.String("location", envelope.DisplayLocation()))
	}
	return result
}

// Search proxies a location search to the provider.
func (d *Dispatcher) Search(ctx context.Context, query string) ([]models.SearchMatch, error) {
	observability.LocationSearchesTotal.Inc()
	return d.client.SearchLocations(ctx, query)
}
