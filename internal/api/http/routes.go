package httpapi

import (
	"errors"
	"log"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/cloudwatchw/backend/internal/auth"
	"github.com/cloudwatchw/backend/internal/user"
	"github.com/cloudwatchw/backend/internal/weather"
)

var validate = validator.New()

// Deps bundles everything the HTTP surface needs.
type Deps struct {
	Service *weather.Service
	Users   *user.Registry
	Reports user.ReportStore
	Auth    auth.Authenticator
}

// RegisterRoutes wires the HTTP handlers into the Fiber app.
func RegisterRoutes(app *fiber.App, deps Deps) {
	api := app.Group("/api")

	api.Post("/register", registerHandler(deps))
	api.Post("/token", tokenHandler(deps))
	api.Get("/get-latest-weather", latestWeatherHandler(deps))
	api.Post("/submit-report", submitReportHandler(deps))

	// Everything registered past this point requires a bearer token.
	api.Use(RequireAuth(deps.Auth, deps.Users))
	api.Get("/me", meHandler())
	api.Post("/add-location", addLocationHandler(deps))
	api.Get("/my-locations", myLocationsHandler())
	api.Delete("/delete-location/:id", deleteLocationHandler(deps))
	api.Get("/user-weather", userWeatherHandler(deps))
	api.Get("/weather-alerts", weatherAlertsHandler(deps))
	api.Post("/refresh-weather", refreshWeatherHandler(deps))
}

type registerRequest struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

func registerHandler(deps Deps) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req registerRequest
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
		}
		if err := validate.Struct(req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		hash, err := deps.Auth.HashPassword(req.Password)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "failed to register user")
		}

		u, err := deps.Users.Register(c.Context(), req.Name, req.Email, hash)
		if errors.Is(err, user.ErrEmailTaken) {
			return fiber.NewError(fiber.StatusBadRequest, "email already registered")
		}
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "failed to register user")
		}

		return c.Status(fiber.StatusCreated).JSON(u)
	}
}

func tokenHandler(deps Deps) fiber.Handler {
	return func(c *fiber.Ctx) error {
		email := c.FormValue("username")
		password := c.FormValue("password")
		if email == "" || password == "" {
			return fiber.NewError(fiber.StatusBadRequest, "username and password are required")
		}

		u, err := deps.Users.FindByEmail(c.Context(), email)
		if err != nil || !deps.Auth.VerifyPassword(password, u.HashedPassword) {
			return fiber.NewError(fiber.StatusUnauthorized, "incorrect email or password")
		}

		token, err := deps.Auth.IssueToken(u.Email)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "failed to issue token")
		}

		return c.JSON(fiber.Map{
			"access_token": token,
			"token_type":   "bearer",
		})
	}
}

func meHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.JSON(currentUser(c))
	}
}

type addLocationRequest struct {
	Latitude  float64 `json:"latitude" validate:"min=-90,max=90"`
	Longitude float64 `json:"longitude" validate:"min=-180,max=180"`
	Name      string  `json:"name"`
}

func addLocationHandler(deps Deps) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req addLocationRequest
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
		}
		if err := validate.Struct(req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		u := currentUser(c)
		loc, err := deps.Users.AddLocation(c.Context(), u, req.Latitude, req.Longitude, req.Name)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "failed to add location")
		}

		// Best-effort initial fetch: a provider failure does not fail the
		// add; it is only logged.
		coords := weather.Coordinates{Latitude: loc.Latitude, Longitude: loc.Longitude}
		if _, err := deps.Service.RefreshLocation(c.Context(), coords); err != nil {
			log.Printf("initial weather fetch failed for new location %q: %v", loc.Name, err)
		}

		return c.Status(fiber.StatusCreated).JSON(fiber.Map{
			"status":   "success",
			"location": loc,
		})
	}
}

func myLocationsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"locations": currentUser(c).Locations,
		})
	}
}

func deleteLocationHandler(deps Deps) fiber.Handler {
	return func(c *fiber.Ctx) error {
		u := currentUser(c)
		err := deps.Users.RemoveLocation(c.Context(), u, c.Params("id"))
		if errors.Is(err, user.ErrLocationNotFound) || errors.Is(err, user.ErrNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "location not found")
		}
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "failed to remove location")
		}

		return c.JSON(fiber.Map{
			"status":          "success",
			"message":         "Location removed",
			"reload_required": true,
		})
	}
}

// weatherEntry is the per-location weather view returned to clients. The
// timestamp stays UTC; local time is derived from the verbatim offset.
type weatherEntry struct {
	weather.Record
	LocalTime string `json:"local_time"`
}

func newWeatherEntry(rec weather.Record) weatherEntry {
	return weatherEntry{
		Record:    rec,
		LocalTime: rec.LocalObservedAt().Format(time.RFC3339),
	}
}

func userWeatherHandler(deps Deps) fiber.Handler {
	return func(c *fiber.Ctx) error {
		u := currentUser(c)

		entries := make([]fiber.Map, 0, len(u.Locations))
		for _, loc := range u.Locations {
			coords := weather.Coordinates{Latitude: loc.Latitude, Longitude: loc.Longitude}
			rec, err := deps.Service.WeatherFor(c.Context(), coords)
			if err != nil {
				log.Printf("no weather for location %q of %s: %v", loc.Name, u.Email, err)
				continue
			}
			entries = append(entries, fiber.Map{
				"location": loc,
				"weather":  newWeatherEntry(*rec),
			})
		}

		return c.JSON(fiber.Map{"user_weather": entries})
	}
}

func latestWeatherHandler(deps Deps) fiber.Handler {
	return func(c *fiber.Ctx) error {
		coords, err := parseCoordsQuery(c)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		rec, err := deps.Service.LatestNear(c.Context(), coords)
		if errors.Is(err, weather.ErrInvalidCoordinates) {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		if err != nil {
			return fiber.NewError(fiber.StatusNotFound, "no weather data available")
		}

		return c.JSON(newWeatherEntry(*rec))
	}
}

func weatherAlertsHandler(deps Deps) fiber.Handler {
	return func(c *fiber.Ctx) error {
		u := currentUser(c)

		alerts := make([]weather.Alert, 0)
		for _, loc := range u.Locations {
			coords := weather.Coordinates{Latitude: loc.Latitude, Longitude: loc.Longitude}
			rec, err := deps.Service.WeatherFor(c.Context(), coords)
			if err != nil {
				log.Printf("skipping alerts for %q of %s: %v", loc.Name, u.Email, err)
				continue
			}
			alerts = append(alerts, weather.EvaluateAlerts(loc.Name, *rec)...)
		}

		return c.JSON(fiber.Map{"alerts": alerts})
	}
}

func refreshWeatherHandler(deps Deps) fiber.Handler {
	return func(c *fiber.Ctx) error {
		u := currentUser(c)

		points := make([]weather.NamedPoint, 0, len(u.Locations))
		for _, loc := range u.Locations {
			points = append(points, weather.NamedPoint{
				Name:   loc.Name,
				Coords: weather.Coordinates{Latitude: loc.Latitude, Longitude: loc.Longitude},
			})
		}

		summary := deps.Service.RefreshLocations(c.Context(), points)
		if summary.Failed == nil {
			summary.Failed = []string{}
		}
		return c.JSON(summary)
	}
}

func submitReportHandler(deps Deps) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var fields map[string]any
		if err := c.BodyParser(&fields); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
		}
		if s, _ := fields["report_type"].(string); s == "" {
			return fiber.NewError(fiber.StatusBadRequest, "report_type is required")
		}
		if s, _ := fields["description"].(string); s == "" {
			return fiber.NewError(fiber.StatusBadRequest, "description is required")
		}

		report := user.Report{
			ID:          uuid.NewString(),
			SubmittedAt: time.Now().UTC(),
			Fields:      fields,
		}
		if err := deps.Reports.SaveReport(c.Context(), report); err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "failed to submit report")
		}

		return c.Status(fiber.StatusCreated).JSON(fiber.Map{
			"status":    "success",
			"message":   "Report submitted successfully",
			"report_id": report.ID,
		})
	}
}

func parseCoordsQuery(c *fiber.Ctx) (weather.Coordinates, error) {
	var coords weather.Coordinates

	lat, err := strconv.ParseFloat(c.Query("latitude"), 64)
	if err != nil {
		return coords, errors.New("latitude query parameter is required")
	}
	lon, err := strconv.ParseFloat(c.Query("longitude"), 64)
	if err != nil {
		return coords, errors.New("longitude query parameter is required")
	}

	coords = weather.Coordinates{Latitude: lat, Longitude: lon}
	return coords, coords.Validate()
}
