package activity

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ods/mywellness2tcx/internal/distance"
	"github.com/ods/mywellness2tcx/internal/mywellness"
)

// maxUploadSize bounds the MyWellness export accepted by POST /convert.
const maxUploadSize = 32 << 20

func NewAPI(logger *slog.Logger, activityService *Service, converter *Converter, record bool) *http.ServeMux {
	mux := http.NewServeMux()
	mux.Handle("GET /activities", handleGetActivities(logger, activityService))
	mux.Handle("GET /activities/{id}", handleGetActivityDetail(logger, activityService))
	mux.Handle("GET /activities/{id}/tcx", handleGetActivityTCX(logger, activityService))
	mux.Handle("POST /convert", handleConvert(logger, activityService, converter, record))
	mux.Handle("GET /metrics", promhttp.Handler())

	return mux
}

func handleGetActivities(logger *slog.Logger, activityService *Service) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		activities, err := activityService.Get(r.Context())
		if err != nil {
			logger.Error("Error getting activities", slog.Any("error", err))
			w.WriteHeader(http.StatusInternalServerError)
			return
		}

		// The listing leaves out per-kilometer detail.
		for i := range activities {
			activities[i].Splits = nil
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(activities); err != nil {
			logger.Error("Error encoding activities", slog.Any("error", err))
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
	})
}

func handleGetActivityDetail(logger *slog.Logger, activityService *Service) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		activity, ok := lookupActivity(w, r, logger, activityService)
		if !ok {
			return
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(activity); err != nil {
			logger.Error("Error encoding activity", slog.Any("error", err))
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
	})
}

func handleGetActivityTCX(logger *slog.Logger, activityService *Service) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		activity, ok := lookupActivity(w, r, logger, activityService)
		if !ok {
			return
		}

		w.Header().Set("Content-Type", "application/vnd.garmin.tcx+xml")
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write(activity.TCX); err != nil {
			logger.Error("Error writing tcx", slog.Any("error", err))
			return
		}
	})
}

// handleConvert converts an uploaded export. The start time is given as the
// start query parameter in YYYY-MM-DDTHH:MM form.
func handleConvert(logger *slog.Logger, activityService *Service, converter *Converter, record bool) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start, err := ParseStartTime(r.URL.Query().Get("start"))
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		activity, err := converter.Convert(http.MaxBytesReader(w, r.Body, maxUploadSize), start)
		switch {
		case errors.Is(err, mywellness.ErrMalformedInput),
			errors.Is(err, distance.ErrInsufficientData),
			errors.Is(err, distance.ErrDataInconsistency):
			http.Error(w, err.Error(), http.StatusUnprocessableEntity)
			return
		case err != nil:
			logger.Error("Error converting activity", slog.Any("error", err))
			w.WriteHeader(http.StatusInternalServerError)
			return
		}

		if record {
			activity.Source = r.URL.Query().Get("name")
			id, err := activityService.Add(r.Context(), activity)
			if err != nil {
				logger.Error("Error recording activity", slog.Any("error", err))
				w.WriteHeader(http.StatusInternalServerError)
				return
			}
			w.Header().Set("Location", "/activities/"+id)
		}

		w.Header().Set("Content-Type", "application/vnd.garmin.tcx+xml")
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write(activity.TCX); err != nil {
			logger.Error("Error writing tcx", slog.Any("error", err))
			return
		}
	})
}

func lookupActivity(w http.ResponseWriter, r *http.Request, logger *slog.Logger, activityService *Service) (Activity, bool) {
	activity, err := activityService.GetByID(r.Context(), r.PathValue("id"))
	if errors.Is(err, ErrNotFound) {
		w.WriteHeader(http.StatusNotFound)
		return Activity{}, false
	}
	if err != nil {
		logger.Error("Error getting activity", slog.Any("error", err))
		w.WriteHeader(http.StatusInternalServerError)
		return Activity{}, false
	}
	return activity, true
}
