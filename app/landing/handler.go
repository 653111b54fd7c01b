package landing

import (
	"context"
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/arraiapos/pos/app/api"
	"github.com/arraiapos/pos/models"
)

type ConfigProvider interface {
	GetConfig(ctx context.Context) (*models.SiteConfig, error)
}

type Countdown struct {
	Days    int `json:"days"`
	Hours   int `json:"hours"`
	Minutes int `json:"minutes"`
	Seconds int `json:"seconds"`
}

type Response struct {
	Config    *models.SiteConfig `json:"config"`
	Countdown Countdown          `json:"countdown"`
}

// CountdownTo splits the time left until event into whole units.
// A nil or past event yields all zeros.
func CountdownTo(event *time.Time, now time.Time) Countdown {
	if event == nil {
		return Countdown{}
	}
	left := event.Sub(now)
	if left <= 0 {
		return Countdown{}
	}
	secs := int(left / time.Second)
	return Countdown{
		Days:    secs / 86400,
		Hours:   secs % 86400 / 3600,
		Minutes: secs % 3600 / 60,
		Seconds: secs % 60,
	}
}

type LandingHandler struct {
	repo   ConfigProvider
	logger *zap.Logger
	now    func() time.Time
}

func NewLandingHandler(repo ConfigProvider, logger *zap.Logger) *LandingHandler {
	return &LandingHandler{repo: repo, logger: logger, now: time.Now}
}

func (h *LandingHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	cfg, err := h.repo.GetConfig(r.Context())
	if err != nil {
		if errors.Is(err, models.ErrConfigNotFound) {
			api.ErrorResponse(w, http.StatusNotFound, "Site config not found")
			return
		}
		h.logger.Error("get landing config", zap.Error(err))
		api.ErrorResponse(w, http.StatusInternalServerError, "Failed to retrieve site config")
		return
	}

	api.OKResponse(w, Response{
		Config:    cfg,
		Countdown: CountdownTo(cfg.EventDate, h.now()),
	})
}
