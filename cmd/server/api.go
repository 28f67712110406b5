package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/Simplici0/pricedesk/internal/advisory"
	"github.com/Simplici0/pricedesk/internal/desk"
	"github.com/Simplici0/pricedesk/internal/pricing"
	"github.com/Simplici0/pricedesk/internal/settings"
)

const maxAPIBody = 1 << 20

type yearPayload struct {
	CostReductionPercent float64 `json:"cost_reduction_percent"`
	Comment              string  `json:"comment"`
}

// pricingPayload is the JSON body of POST /api/pricing. Omitted margin and FX
// fall back to the saved default assumptions.
type pricingPayload struct {
	VendorCost      float64          `json:"vendor_cost"`
	Resources       float64          `json:"resources"`
	CostPerResource float64          `json:"cost_per_resource"`
	Units           float64          `json:"units"`
	MarginPercent   *float64         `json:"margin_percent"`
	FX              *pricing.FXRates `json:"fx"`
	Years           []yearPayload    `json:"years"`
}

type dealPayload struct {
	Bundle     pricing.BundleInput `json:"bundle"`
	HurdleRate *float64            `json:"hurdle_rate"`
	FX         *pricing.FXRates    `json:"fx"`
}

type treePayload struct {
	Answers []string `json:"answers"`
}

type apiError struct {
	Error string `json:"error"`
}

func (p pricingPayload) request(d settings.Defaults) (desk.PricingRequest, error) {
	if len(p.Years) > pricing.ForecastYears {
		return desk.PricingRequest{}, fmt.Errorf("%w: at most %d forecast years", pricing.ErrInvalidInput, pricing.ForecastYears)
	}
	req := desk.PricingRequest{
		Cost: pricing.CostInput{
			VendorCost:      p.VendorCost,
			Resources:       p.Resources,
			CostPerResource: p.CostPerResource,
			Units:           p.Units,
		},
		FX:            d.FX,
		MarginPercent: d.MarginPercent,
	}
	if p.FX != nil {
		req.FX = *p.FX
	}
	if p.MarginPercent != nil {
		req.MarginPercent = *p.MarginPercent
	}
	for i, y := range p.Years {
		req.Years[i] = pricing.YearInput{CostReductionPercent: y.CostReductionPercent, Comment: y.Comment}
	}
	return req, nil
}

func (p dealPayload) request(d settings.Defaults) (desk.DealRequest, error) {
	req := desk.DealRequest{Bundle: p.Bundle, HurdleRate: d.HurdleRate, FX: d.FX}
	if p.HurdleRate != nil {
		req.HurdleRate = *p.HurdleRate
	}
	if p.FX != nil {
		req.FX = *p.FX
	}
	if p.Bundle.Complexity != "" {
		c, err := pricing.ParseComplexity(string(p.Bundle.Complexity))
		if err != nil {
			return req, err
		}
		req.Bundle.Complexity = c
	}
	return req, nil
}

func (s *server) handleAPIPricing(w http.ResponseWriter, r *http.Request) {
	var payload pricingPayload
	if !s.decodeJSON(w, r, &payload) {
		return
	}
	defaults, ok := s.apiDefaults(w, r)
	if !ok {
		return
	}

	req, err := payload.request(defaults)
	if err != nil {
		s.writeCalcError(w, err)
		return
	}
	sheet, err := desk.Price(req)
	if err != nil {
		s.writeCalcError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sheet)
}

func (s *server) handleAPIDeal(w http.ResponseWriter, r *http.Request) {
	var payload dealPayload
	if !s.decodeJSON(w, r, &payload) {
		return
	}
	defaults, ok := s.apiDefaults(w, r)
	if !ok {
		return
	}

	req, err := payload.request(defaults)
	if err != nil {
		s.writeCalcError(w, err)
		return
	}
	sheet, err := desk.Score(req)
	if err != nil {
		s.writeCalcError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sheet)
}

func (s *server) handleAPITree(w http.ResponseWriter, r *http.Request) {
	tree, err := s.trees.Tree(chi.URLParam(r, "name"))
	if err != nil {
		writeJSON(w, http.StatusNotFound, apiError{Error: err.Error()})
		return
	}

	var payload treePayload
	if !s.decodeJSON(w, r, &payload) {
		return
	}
	writeJSON(w, http.StatusOK, advisory.Evaluate(tree.Root, payload.Answers))
}

func (s *server) apiDefaults(w http.ResponseWriter, r *http.Request) (settings.Defaults, bool) {
	defaults, err := s.settings.Get(r.Context())
	if err != nil {
		s.log.Error("failed to load default assumptions", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, apiError{Error: "failed to load default assumptions"})
		return settings.Defaults{}, false
	}
	return defaults, true
}

func (s *server) decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxAPIBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		writeJSON(w, http.StatusBadRequest, apiError{Error: "invalid JSON body: " + err.Error()})
		return false
	}
	return true
}

func (s *server) writeCalcError(w http.ResponseWriter, err error) {
	if errors.Is(err, pricing.ErrInvalidInput) {
		writeJSON(w, http.StatusUnprocessableEntity, apiError{Error: err.Error()})
		return
	}
	s.log.Error("calculation failed", zap.Error(err))
	writeJSON(w, http.StatusInternalServerError, apiError{Error: "calculation failed"})
}

// writeJSON encodes v before writing the status so an encoding failure becomes a 500.
func writeJSON(w http.ResponseWriter, status int, v any) {
	body, err := json.Marshal(v)
	if err != nil {
		status = http.StatusInternalServerError
		body, _ = json.Marshal(apiError{Error: "failed to encode response"})
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(append(body, '\n'))
}
