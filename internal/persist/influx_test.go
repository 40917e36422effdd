package persist

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"
	"go.uber.org/zap"

	"github.com/rlanders/weatherview/internal/config"
	"github.com/rlanders/weatherview/internal/models"
)

func sampleEnvelope() *models.WeatherEnvelope {
	return &models.WeatherEnvelope{
		Location: models.Location{Name: "London", Country: "United Kingdom"},
		Current: models.Current{
			TempC:      15.0,
			TempF:      59.0,
			Humidity:   82,
			WindKph:    13.0,
			PressureMb: 1015.0,
			Condition:  models.Condition{Text: "Partly cloudy", Code: 1003},
		},
		Forecast: &models.Forecast{ForecastDay: []models.ForecastDay{{
			Date: "2023-11-14",
			Day:  models.Day{MaxTempC: 16.0, MinTempC: 10.2},
			Astro: &models.Astro{
				Sunrise:   "07:19 AM",
				Sunset:    "04:13 PM",
				MoonPhase: "Waxing Crescent",
			},
			Hour: []models.Hour{{
				Time:         "2023-11-14 00:00",
				TempC:        11.5,
				ChanceOfRain: 70,
				Condition:    models.Condition{Text: "Light drizzle", Code: 1153},
			}, {
				Time:  "2023-11-14 01:00",
				TempC: 11.1,
			}},
		}}},
		Alerts: &models.Alerts{Alert: []models.Alert{{Headline: "Flood Watch"}}},
	}
}

func pointFields(t *testing.T, p *write.Point) map[string]interface{} {
	t.Helper()
	fields := make(map[string]interface{})
	for _, f := range p.FieldList() {
		fields[f.Key] = f.Value
	}
	return fields
}

func TestBuildPoint_TagsAndCoreFields(t *testing.T) {
	ts := time.Date(2023, 11, 14, 22, 0, 0, 0, time.UTC)
	p := buildPoint(sampleEnvelope(), ts)

	if p.Name() != "weather" {
		t.Errorf("measurement = %q, want weather", p.Name())
	}
	if !p.Time().Equal(ts) {
		t.Errorf("time = %v, want %v", p.Time(), ts)
	}

	var locationTag string
	for _, tag := range p.TagList() {
		if tag.Key == "location" {
			locationTag = tag.Value
		}
	}
	if locationTag != "London, United Kingdom" {
		t.Errorf("location tag = %q, want London, United Kingdom", locationTag)
	}

	fields := pointFields(t, p)
	if fields["temp_c"] != 15.0 {
		t.Errorf("temp_c = %v, want 15", fields["temp_c"])
	}
	if fields["condition"] != "Partly cloudy" {
		t.Errorf("condition = %v, want Partly cloudy", fields["condition"])
	}
	if fields["sunrise"] != "07:19 AM" {
		t.Errorf("sunrise = %v, want 07:19 AM", fields["sunrise"])
	}
	if fields["alerts"] != "Flood Watch" {
		t.Errorf("alerts = %v, want Flood Watch", fields["alerts"])
	}
}

func TestBuildPoint_FirstHourFields(t *testing.T) {
	fields := pointFields(t, buildPoint(sampleEnvelope(), time.Now()))

	if fields["hour_time"] != "2023-11-14 00:00" {
		t.Errorf("hour_time = %v, want first slot", fields["hour_time"])
	}
	if fields["hour_temp_c"] != 11.5 {
		t.Errorf("hour_temp_c = %v, want 11.5", fields["hour_temp_c"])
	}
	if fields["hour_chance_of_rain"] != int64(70) {
		t.Errorf("hour_chance_of_rain = %v, want 70", fields["hour_chance_of_rain"])
	}
	if fields["hour_condition"] != "Light drizzle" {
		t.Errorf("hour_condition = %v, want Light drizzle", fields["hour_condition"])
	}
}

func TestBuildPoint_OptionalBlocksAbsent(t *testing.T) {
	env := &models.WeatherEnvelope{
		Location: models.Location{Name: "Nowhere"},
		Current:  models.Current{TempC: 1.0},
	}
	fields := pointFields(t, buildPoint(env, time.Now()))

	if _, ok := fields["sunrise"]; ok {
		t.Error("expected no astro fields without forecast block")
	}
	if _, ok := fields["aq_pm2_5"]; ok {
		t.Error("expected no air quality fields")
	}
	if _, ok := fields["hour_temp_c"]; ok {
		t.Error("expected no hour fields without hourly data")
	}
	if fields["alerts"] != "None" {
		t.Errorf("alerts = %v, want None", fields["alerts"])
	}
}

type fakePointWriter struct {
	points []*write.Point
	err    error
}

func (f *fakePointWriter) WritePoint(ctx context.Context, point ...*write.Point) error {
	if f.err != nil {
		return f.err
	}
	f.points = append(f.points, point...)
	return nil
}

func TestInfluxWriter_WriteEnvelope(t *testing.T) {
	fake := &fakePointWriter{}
	w := &InfluxWriter{writeAPI: fake, logger: zap.NewNop()}

	if err := w.WriteEnvelope(context.Background(), sampleEnvelope()); err != nil {
		t.Fatalf("WriteEnvelope: %v", err)
	}
	if len(fake.points) != 1 {
		t.Fatalf("points written = %d, want 1", len(fake.points))
	}
}

func TestInfluxWriter_WriteEnvelopeError(t *testing.T) {
	fake := &fakePointWriter{err: errors.New("bucket not found")}
	w := &InfluxWriter{writeAPI: fake, logger: zap.NewNop()}

	err := w.WriteEnvelope(context.Background(), sampleEnvelope())
	if err == nil {
		t.Fatal("expected write error")
	}
}

type fakePinger struct {
	ok  bool
	err error
}

func (f fakePinger) Ping(ctx context.Context) (bool, error) { return f.ok, f.err }

func TestPingClient(t *testing.T) {
	if err := pingClient(context.Background(), fakePinger{ok: true}); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if err := pingClient(context.Background(), fakePinger{ok: false}); err == nil {
		t.Error("expected error when not ready")
	}
	if err := pingClient(context.Background(), fakePinger{err: errors.New("refused")}); err == nil {
		t.Error("expected error on ping failure")
	}
}

func TestNewInfluxWriter_NoopWhenUnconfigured(t *testing.T) {
	w := NewInfluxWriter(config.InfluxConfig{}, zap.NewNop())
	if w.Enabled() {
		t.Error("unconfigured writer should be disabled")
	}
	if err := w.WriteEnvelope(context.Background(), sampleEnvelope()); err != nil {
		t.Errorf("noop write should return nil, got %v", err)
	}
}

func TestNewInfluxWriter_NoopWhenPartial(t *testing.T) {
	w := NewInfluxWriter(config.InfluxConfig{URL: "http://localhost:8086"}, zap.NewNop())
	if w.Enabled() {
		t.Error("partially configured writer should be disabled")
	}
}
