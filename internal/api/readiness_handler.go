// internal/api/readiness_handler.go
package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/orkunisitmak/orktrack/internal/domain"
	"github.com/orkunisitmak/orktrack/internal/service"

	"github.com/gin-gonic/gin"
)

type ReadinessHandler struct {
	readinessService service.ReadinessService
}

func NewReadinessHandler(readinessService service.ReadinessService) *ReadinessHandler {
	return &ReadinessHandler{readinessService: readinessService}
}

// ReadinessInputsPayload carries the caller-resolved biometric signals.
// Every field is optional; missing telemetry is the normal case.
type ReadinessInputsPayload struct {
	Date        string `json:"date,omitempty"` // YYYY-MM-DD; defaults to today
	EnergyLevel *int   `json:"energyLevel,omitempty"`
	SleepScore  *int   `json:"sleepScore,omitempty"`
	HRVStatus   string `json:"hrvStatus,omitempty"`
	RestingHR   *int   `json:"restingHr,omitempty"`
	StressLevel *int   `json:"stressLevel,omitempty"`
}

func (p ReadinessInputsPayload) toInputs() (domain.ReadinessInputs, error) {
	inputs := domain.ReadinessInputs{
		EnergyLevel: p.EnergyLevel,
		SleepScore:  p.SleepScore,
		HRVStatus:   domain.HRVStatus(p.HRVStatus),
		RestingHR:   p.RestingHR,
		StressLevel: p.StressLevel,
	}
	if p.Date != "" {
		parsed, err := time.Parse(dateLayout, p.Date)
		if err != nil {
			return inputs, errors.New("invalid readiness date, expected YYYY-MM-DD")
		}
		inputs.Date = parsed
	}
	return inputs, nil
}

// EvaluateReadiness returns a best-effort readiness snapshot. It never fails
// on missing signals; an empty body yields the neutral baseline verdict.
func (h *ReadinessHandler) EvaluateReadiness(c *gin.Context) {
	// An empty body is fine; every signal is optional.
	var payload ReadinessInputsPayload
	if c.Request.Body != nil && c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&payload); err != nil {
			abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
			return
		}
	}

	inputs, err := payload.toInputs()
	if err != nil {
		abortWithError(c, http.StatusBadRequest, err.Error())
		return
	}

	c.JSON(http.StatusOK, h.readinessService.Evaluate(inputs))
}
