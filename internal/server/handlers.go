package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/tournevent/carrierkit/pkg/shipper"
	"go.uber.org/zap"
)

type quoteRequest struct {
	Shipment *shipper.Shipment `json:"shipment" validate:"required"`
	Carriers []string          `json:"carriers,omitempty"`
}

func (s *Server) handleCarriers(w http.ResponseWriter, r *http.Request) {
	shippers := s.registry.All()
	out := make([]carrierResponse, 0, len(shippers))
	for _, sh := range shippers {
		out = append(out, carrierToResponse(sh.Carrier()))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleCarrier(w http.ResponseWriter, r *http.Request) {
	sh, err := s.registry.Get(chi.URLParam(r, "carrier"))
	if err != nil {
		writeErrorJSON(w, http.StatusNotFound, "carrier_not_found", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, carrierToResponse(sh.Carrier()))
}

func (s *Server) handleRates(w http.ResponseWriter, r *http.Request) {
	req, ok := s.decodeQuoteRequest(w, r)
	if !ok {
		return
	}
	ctx := r.Context()

	s.logger.Ctx(ctx).Info("Quoting shipment",
		zap.String("request_id", RequestID(ctx)),
		zap.Int("package_count", len(req.Shipment.Packages)),
		zap.Strings("carriers", req.Carriers),
	)

	results, errs := s.registry.FindRatesFromCarriers(ctx, req.Shipment, req.Carriers)

	resp := ratesResponse{Rates: []rateResponse{}, Errors: []errorResponse{}}
	for _, result := range results {
		s.metrics.RecordRequest("rates", result.Carrier, "success", result.Duration.Seconds())
		s.metrics.RecordRates(result.Carrier, len(result.Rates))
		for _, rate := range result.Rates {
			resp.Rates = append(resp.Rates, rateToResponse(result.Carrier, rate))
		}
	}
	resp.Errors = s.recordErrors("rates", errs)
	writeJSON(w, statusFor(len(results), len(errs)), resp)
}

func (s *Server) handleTimings(w http.ResponseWriter, r *http.Request) {
	req, ok := s.decodeQuoteRequest(w, r)
	if !ok {
		return
	}

	results, errs := s.registry.FindTimingsFromCarriers(r.Context(), req.Shipment, req.Carriers)

	resp := timingsResponse{Timings: []timingResponse{}, Errors: []errorResponse{}}
	for _, result := range results {
		s.metrics.RecordRequest("timings", result.Carrier, "success", result.Duration.Seconds())
		for _, t := range result.Timings {
			resp.Timings = append(resp.Timings, timingToResponse(result.Carrier, t))
		}
	}
	resp.Errors = s.recordErrors("timings", errs)
	writeJSON(w, statusFor(len(results), len(errs)), resp)
}

func (s *Server) decodeQuoteRequest(w http.ResponseWriter, r *http.Request) (quoteRequest, bool) {
	var req quoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErrorJSON(w, http.StatusBadRequest, "invalid_json", "invalid json: "+err.Error())
		return req, false
	}
	if err := s.validate.Struct(req); err != nil {
		writeErrorJSON(w, http.StatusBadRequest, "invalid_request", err.Error())
		return req, false
	}
	return req, true
}

func (s *Server) recordErrors(operation string, errs []error) []errorResponse {
	out := make([]errorResponse, 0, len(errs))
	for _, err := range errs {
		e := errorToResponse(err)
		if e.Carrier != "" {
			s.metrics.RecordRequest(operation, e.Carrier, "error", durationOf(err).Seconds())
			s.metrics.RecordError(e.Carrier, e.Code)
		}
		s.logger.Warn("Carrier failed", zap.String("operation", operation), zap.Error(err))
		out = append(out, e)
	}
	return out
}

// statusFor is 200 when any carrier answered, 502 when all of them failed.
func statusFor(results, errs int) int {
	if results == 0 && errs > 0 {
		return http.StatusBadGateway
	}
	return http.StatusOK
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeErrorJSON(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, map[string]any{
		"error": errorResponse{Code: code, Message: message},
	})
}

func isCarrierError(err error) (*shipper.CarrierError, bool) {
	var ce *shipper.CarrierError
	ok := errors.As(err, &ce)
	return ce, ok
}
