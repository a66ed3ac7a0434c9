package server

import (
	"errors"
	"net/http"

	"sleep-observer/src/analysis"
	"sleep-observer/src/helpers"
	"sleep-observer/src/models"

	"github.com/gin-gonic/gin"
)

// -----------------------------------------------------------------------------

// statusFor maps the error hierarchy onto HTTP status codes.
func statusFor(err error) int {
	var (
		cfgErr     *helpers.ConfigurationError
		netErr     *helpers.NetworkError
		storageErr *helpers.StorageError
	)
	switch {
	case helpers.IsValidation(err):
		return http.StatusBadRequest
	case errors.As(err, &netErr):
		return http.StatusBadGateway
	case errors.As(err, &cfgErr):
		return http.StatusServiceUnavailable
	case errors.As(err, &storageErr):
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}

// -----------------------------------------------------------------------------

func writeError(c *gin.Context, err error) {
	c.AbortWithStatusJSON(statusFor(err), gin.H{"error": err.Error()})
}

// -----------------------------------------------------------------------------

func gradesFor(s models.MEnvironmentSnapshot) models.MEnvironmentGrades {
	return models.MEnvironmentGrades{
		AirQuality: analysis.AirQualityGrade(s.AirQuality),
		PM25:       analysis.PM25Grade(s.PM25),
	}
}
