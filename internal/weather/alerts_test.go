package weather

import (
	"reflect"
	"testing"
)

func alertTitles(alerts []Alert) []string {
	titles := make([]string, 0, len(alerts))
	for _, a := range alerts {
		titles = append(titles, a.Title)
	}
	return titles
}

func severityFor(t *testing.T, alerts []Alert, title string) Severity {
	t.Helper()
	for _, a := range alerts {
		if a.Title == title {
			return a.Severity
		}
	}
	t.Fatalf("alert %q not found in %v", title, alertTitles(alerts))
	return ""
}

func TestEvaluateAlertsHotHumidStorm(t *testing.T) {
	rec := Record{
		Temperature: 36,
		Humidity:    95,
		Condition:   "Thunderstorm",
		WindSpeed:   10,
		Pressure:    1005,
	}

	alerts := EvaluateAlerts("Home", rec)

	want := []string{"Extreme Heat", "High Humidity", "Storm Warning"}
	if got := alertTitles(alerts); !reflect.DeepEqual(got, want) {
		t.Fatalf("expected alerts %v, got %v", want, got)
	}

	if s := severityFor(t, alerts, "Extreme Heat"); s != SeveritySevere {
		t.Errorf("Extreme Heat severity = %q, want severe", s)
	}
	if s := severityFor(t, alerts, "High Humidity"); s != SeverityModerate {
		t.Errorf("High Humidity severity = %q, want moderate", s)
	}
	if s := severityFor(t, alerts, "Storm Warning"); s != SeveritySevere {
		t.Errorf("Storm Warning severity = %q, want severe", s)
	}

	for _, a := range alerts {
		if a.LocationName != "Home" {
			t.Errorf("alert %q carries location %q, want Home", a.Title, a.LocationName)
		}
	}
}

func TestEvaluateAlertsFreezingRainWindPressure(t *testing.T) {
	rec := Record{
		Temperature: -2,
		Humidity:    50,
		Condition:   "light rain",
		WindSpeed:   35,
		Pressure:    995,
	}

	alerts := EvaluateAlerts("Cabin", rec)

	want := []string{"Freezing Temperatures", "Rain Alert", "High Winds", "Low Pressure System"}
	if got := alertTitles(alerts); !reflect.DeepEqual(got, want) {
		t.Fatalf("expected alerts %v, got %v", want, got)
	}

	if s := severityFor(t, alerts, "Freezing Temperatures"); s != SeverityModerate {
		t.Errorf("Freezing Temperatures severity = %q, want moderate", s)
	}
	if s := severityFor(t, alerts, "Rain Alert"); s != SeverityNormal {
		t.Errorf("Rain Alert severity = %q, want normal", s)
	}
	if s := severityFor(t, alerts, "High Winds"); s != SeverityModerate {
		t.Errorf("High Winds severity = %q, want moderate", s)
	}
	if s := severityFor(t, alerts, "Low Pressure System"); s != SeverityNormal {
		t.Errorf("Low Pressure System severity = %q, want normal", s)
	}
}

func TestEvaluateAlertsBoundaries(t *testing.T) {
	tests := []struct {
		name string
		rec  Record
		want []string
	}{
		{
			name: "exactly 35 degrees triggers heat",
			rec:  Record{Temperature: 35, Humidity: 40, Pressure: 1010},
			want: []string{"Extreme Heat"},
		},
		{
			name: "exactly zero degrees triggers freezing",
			rec:  Record{Temperature: 0, Humidity: 40, Pressure: 1010},
			want: []string{"Freezing Temperatures"},
		},
		{
			name: "snow is exclusive with rain and storm checks",
			rec:  Record{Temperature: 10, Humidity: 40, Condition: "Snow", Pressure: 1010},
			want: []string{"Snow Alert"},
		},
		{
			name: "exactly 1000 hPa does not trigger low pressure",
			rec:  Record{Temperature: 10, Humidity: 40, Pressure: 1000},
			want: []string{},
		},
		{
			name: "calm record produces no alerts",
			rec:  Record{Temperature: 20, Humidity: 50, Condition: "Clear", WindSpeed: 5, Pressure: 1015},
			want: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := alertTitles(EvaluateAlerts("X", tt.rec))
			if len(got) == 0 && len(tt.want) == 0 {
				return
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("expected alerts %v, got %v", tt.want, got)
			}
		})
	}
}

// Evaluating the same record twice must yield identical sequences.
func TestEvaluateAlertsIdempotent(t *testing.T) {
	rec := Record{
		Temperature: 36,
		Humidity:    95,
		Condition:   "heavy thunderstorm with drizzle",
		WindSpeed:   40,
		Pressure:    990,
	}

	first := EvaluateAlerts("Home", rec)
	second := EvaluateAlerts("Home", rec)

	if !reflect.DeepEqual(first, second) {
		t.Fatalf("evaluation is not idempotent:\nfirst:  %v\nsecond: %v", first, second)
	}
}
