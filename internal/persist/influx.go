package persist

import (
	"context"
	"fmt"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api/write"
	"go.uber.org/zap"

	"github.com/rlanders/weatherview/internal/config"
	"github.com/rlanders/weatherview/internal/models"
	"github.com/rlanders/weatherview/internal/observability"
)

// Writer persists weather envelopes to the time-series store. Writes are a
// side effect of rendering: callers log failures and move on, they never
// propagate them to the HTTP response.
type Writer interface {
	// Enabled reports whether the store is configured. When false,
	// WriteEnvelope is a no-op returning nil.
	Enabled() bool
	WriteEnvelope(ctx context.Context, env *models.WeatherEnvelope) error
	Ping(ctx context.Context) error
	Close()
}

// Noop is the Writer used when the Influx connection group is unconfigured.
type Noop struct{}

func (Noop) Enabled() bool                                             { return false }
func (Noop) WriteEnvelope(context.Context, *models.WeatherEnvelope) error { return nil }
func (Noop) Ping(context.Context) error                                { return nil }
func (Noop) Close()                                                    {}

// pointWriter is the slice of the blocking write API this package uses.
type pointWriter interface {
	WritePoint(ctx context.Context, point ...*write.Point) error
}

type pinger interface {
	Ping(ctx context.Context) (bool, error)
}

// InfluxWriter writes one point per successful fetch, tagged by location,
// using the blocking write API.
type InfluxWriter struct {
	client   influxdb2.Client
	writeAPI pointWriter
	logger   *zap.Logger
}

// NewInfluxWriter connects to the store described by cfg. Returns a Noop
// writer when the connection group is incomplete.
func NewInfluxWriter(cfg config.InfluxConfig, logger *zap.Logger) Writer {
	if !cfg.Enabled() {
		if cfg.Partial() {
			logger.Warn("incomplete InfluxDB configuration; data collection writes disabled",
				zap.Bool("url_set", cfg.URL != ""),
				zap.Bool("token_set", cfg.Token != ""),
				zap.Bool("org_set", cfg.Org != ""),
				zap.Bool("bucket_set", cfg.Bucket != ""))
		}
		return Noop{}
	}

	client := influxdb2.NewClient(cfg.URL, cfg.Token)
	return &InfluxWriter{
		client:   client,
		writeAPI: client.WriteAPIBlocking(cfg.Org, cfg.Bucket),
		logger:   logger,
	}
}

func (w *InfluxWriter) Enabled() bool { return true }

// WriteEnvelope records the envelope as a single point under the current
// timestamp with a location tag.
func (w *InfluxWriter) WriteEnvelope(ctx context.Context, env *models.WeatherEnvelope) error {
	start := time.Now()
	point := buildPoint(env, time.Now().UTC())

	err := w.writeAPI.WritePoint(ctx, point)
	observability.PersistWriteDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		return fmt.Errorf("write weather point: %w", err)
	}

	w.logger.Debug("weather point written",
		zap.String("location", env.DisplayLocation()))
	return nil
}

// Ping checks store reachability for the health endpoint.
func (w *InfluxWriter) Ping(ctx context.Context) error {
	return pingClient(ctx, w.client)
}

func pingClient(ctx context.Context, p pinger) error {
	ok, err := p.Ping(ctx)
	if err != nil {
		return fmt.Errorf("influxdb ping: %w", err)
	}
	if !ok {
		return fmt.Errorf("influxdb ping: not ready")
	}
	return nil
}

func (w *InfluxWriter) Close() {
	w.client.Close()
}

// buildPoint flattens the envelope into one "weather" measurement. Optional
// blocks contribute fields only when present; the alerts field carries the
// first headline or "None" so absence remains queryable.
func buildPoint(env *models.WeatherEnvelope, ts time.Time) *write.Point {
	cur := env.Current

	fields := map[string]interface{}{
		"temp_c":             cur.TempC,
		"temp_f":             cur.TempF,
		"feelslike_c":        cur.FeelslikeC,
		"feelslike_f":        cur.FeelslikeF,
		"humidity":           cur.Humidity,
		"wind_mph":           cur.WindMph,
		"wind_kph":           cur.WindKph,
		"wind_degree":        cur.WindDegree,
		"wind_dir":           cur.WindDir,
		"gust_mph":           cur.GustMph,
		"gust_kph":           cur.GustKph,
		"pressure_mb":        cur.PressureMb,
		"pressure_in":        cur.PressureIn,
		"precip_mm":          cur.PrecipMm,
		"precip_in":          cur.PrecipIn,
		"cloud":              cur.Cloud,
		"vis_km":             cur.VisKm,
		"vis_miles":          cur.VisMiles,
		"uv":                 cur.UV,
		"is_day":             cur.IsDay,
		"condition":          cur.Condition.Text,
		"condition_icon":     cur.Condition.Icon,
		"condition_code":     cur.Condition.Code,
		"last_updated":       cur.LastUpdated,
		"last_updated_epoch": cur.LastUpdatedEpoch,
	}

	if day := env.FirstDay(); day != nil {
		fields["date"] = day.Date
		fields["maxtemp_c"] = day.Day.MaxTempC
		fields["maxtemp_f"] = day.Day.MaxTempF
		fields["mintemp_c"] = day.Day.MinTempC
		fields["mintemp_f"] = day.Day.MinTempF
		fields["avgtemp_c"] = day.Day.AvgTempC
		fields["avgtemp_f"] = day.Day.AvgTempF
		fields["maxwind_kph"] = day.Day.MaxWindKph
		fields["totalprecip_mm"] = day.Day.TotalPrecipMm
		fields["totalsnow_cm"] = day.Day.TotalSnowCm
		fields["avghumidity"] = day.Day.AvgHumidity
		fields["daily_chance_of_rain"] = day.Day.DailyChanceOfRain
		fields["daily_chance_of_snow"] = day.Day.DailyChanceOfSnow
	}

	if hour := env.FirstHour(); hour != nil {
		fields["hour_time_epoch"] = hour.TimeEpoch
		fields["hour_time"] = hour.Time
		fields["hour_temp_c"] = hour.TempC
		fields["hour_temp_f"] = hour.TempF
		fields["hour_is_day"] = hour.IsDay
		fields["hour_wind_mph"] = hour.WindMph
		fields["hour_wind_kph"] = hour.WindKph
		fields["hour_wind_dir"] = hour.WindDir
		fields["hour_pressure_mb"] = hour.PressureMb
		fields["hour_precip_mm"] = hour.PrecipMm
		fields["hour_snow_cm"] = hour.SnowCm
		fields["hour_humidity"] = hour.Humidity
		fields["hour_cloud"] = hour.Cloud
		fields["hour_feelslike_c"] = hour.FeelslikeC
		fields["hour_feelslike_f"] = hour.FeelslikeF
		fields["hour_windchill_c"] = hour.WindchillC
		fields["hour_heatindex_c"] = hour.HeatindexC
		fields["hour_dewpoint_c"] = hour.DewpointC
		fields["hour_will_it_rain"] = hour.WillItRain
		fields["hour_will_it_snow"] = hour.WillItSnow
		fields["hour_chance_of_rain"] = hour.ChanceOfRain
		fields["hour_chance_of_snow"] = hour.ChanceOfSnow
		fields["hour_vis_km"] = hour.VisKm
		fields["hour_gust_kph"] = hour.GustKph
		fields["hour_uv"] = hour.UV
		fields["hour_condition"] = hour.Condition.Text
		fields["hour_condition_code"] = hour.Condition.Code
	}

	if astro := env.AstroBlock(); astro != nil {
		fields["sunrise"] = astro.Sunrise
		fields["sunset"] = astro.Sunset
		fields["moonrise"] = astro.Moonrise
		fields["moonset"] = astro.Moonset
		fields["moon_phase"] = astro.MoonPhase
		fields["moon_illumination"] = astro.MoonIllumination
	}

	if aq := cur.AirQuality; aq != nil {
		fields["aq_co"] = aq.CO
		fields["aq_o3"] = aq.O3
		fields["aq_no2"] = aq.NO2
		fields["aq_so2"] = aq.SO2
		fields["aq_pm2_5"] = aq.PM25
		fields["aq_pm10"] = aq.PM10
		fields["aq_us_epa_index"] = aq.USEPAIndex
		fields["aq_gb_defra_index"] = aq.GBDefraIndex
	}

	alerts := "None"
	if list := env.AlertList(); len(list) > 0 {
		alerts = list[0].Headline
	}
	fields["alerts"] = alerts

	tags := map[string]string{
		"location": env.DisplayLocation(),
	}

	return influxdb2.NewPoint("weather", tags, fields, ts)
}
