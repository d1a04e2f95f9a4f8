package weather

import (
	"fmt"
	"strings"

	"github.com/cloudwatchw/backend/internal/common"
)

// Severity grades an alert.
type Severity string

const (
	SeverityNormal   Severity = "normal"
	SeverityModerate Severity = "moderate"
	SeveritySevere   Severity = "severe"
)

// Alert is a derived, ephemeral warning computed from one weather record.
// Alerts are never persisted; they are produced fresh on each evaluation.
type Alert struct {
	LocationName string   `json:"location_name"`
	Severity     Severity `json:"severity"`
	Title        string   `json:"title"`
	Message      string   `json:"message"`
}

// EvaluateAlerts applies the threshold rule battery to a single record and
// returns every triggered alert. It is a pure function: same record, same
// alerts.
//
// The high/low temperature checks are mutually exclusive, as are the three
// weather-type text checks (rain, storm, snow). Humidity, wind and pressure
// checks are independent and cumulative.
func EvaluateAlerts(locationName string, rec Record) []Alert {
	var alerts []Alert

	add := func(severity Severity, title, message string) {
		alerts = append(alerts, Alert{
			LocationName: locationName,
			Severity:     severity,
			Title:        title,
			Message:      message,
		})
	}

	if rec.Temperature >= 35 {
		add(SeveritySevere, "Extreme Heat",
			fmt.Sprintf("Temperature of %g°C detected. Stay hydrated and avoid direct sun exposure.", rec.Temperature))
	} else if rec.Temperature <= 0 {
		add(SeverityModerate, "Freezing Temperatures",
			fmt.Sprintf("Temperature of %g°C detected. Be cautious of icy surfaces and dress warmly.", rec.Temperature))
	}

	if rec.Humidity >= 90 {
		add(SeverityModerate, "High Humidity",
			fmt.Sprintf("Humidity level at %d%%. This may cause discomfort.", rec.Humidity))
	}

	condition := strings.ToLower(rec.Condition + " " + rec.Description)
	switch {
	case common.HasAny(condition, "rain", "shower", "drizzle"):
		add(SeverityNormal, "Rain Alert",
			fmt.Sprintf("Current conditions: %s. Consider carrying an umbrella.", rec.Condition))
	case common.HasAny(condition, "storm", "thunder", "lightning"):
		add(SeveritySevere, "Storm Warning",
			fmt.Sprintf("Current conditions: %s. Take necessary precautions.", rec.Condition))
	case common.HasAny(condition, "snow", "sleet", "blizzard"):
		add(SeverityModerate, "Snow Alert",
			fmt.Sprintf("Current conditions: %s. Road travel may be affected.", rec.Condition))
	}

	if rec.WindSpeed >= 30 {
		add(SeverityModerate, "High Winds",
			fmt.Sprintf("Wind speed of %g km/h detected. Secure loose outdoor items.", rec.WindSpeed))
	}

	if rec.Pressure < 1000 {
		add(SeverityNormal, "Low Pressure System",
			fmt.Sprintf("Atmospheric pressure of %d hPa detected. Weather changes likely.", rec.Pressure))
	}

	return alerts
}
