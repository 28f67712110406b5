package main

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/Simplici0/pricedesk/internal/desk"
	"github.com/Simplici0/pricedesk/internal/report"
	"github.com/Simplici0/pricedesk/internal/scenario"
	"github.com/Simplici0/pricedesk/internal/settings"
)

type scenariosViewData struct {
	baseViewData
	Query     string
	Scenarios []scenario.ListItem
}

type scenarioViewData struct {
	baseViewData
	Scenario       scenario.Scenario
	PricingMetrics []report.Metric
	DealMetrics    []report.Metric
	Converted      []report.Amount
}

type settingsViewData struct {
	baseViewData
	Defaults settings.Defaults
}

func (s *server) handleScenariosList(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("q"))
	items, err := s.scenarios.List(r.Context(), query)
	if err != nil {
		s.log.Error("failed to list scenarios", zap.Error(err))
		http.Error(w, "failed to load scenarios", http.StatusInternalServerError)
		return
	}

	s.renderTemplate(w, http.StatusOK, "scenarios.html", scenariosViewData{
		baseViewData: baseViewData{
			ErrorMessage:   r.URL.Query().Get("error"),
			SuccessMessage: r.URL.Query().Get("success"),
		},
		Query:     query,
		Scenarios: items,
	})
}

// handleScenarioSave recomputes the posted calculator form and stores the result as a snapshot.
func (s *server) handleScenarioSave(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}

	sc := scenario.Scenario{
		Title: strings.TrimSpace(r.FormValue("title")),
		Notes: strings.TrimSpace(r.FormValue("notes")),
	}
	if sc.Title == "" {
		http.Redirect(w, r, "/scenarios?error=title+is+required", http.StatusSeeOther)
		return
	}

	switch scenario.Kind(r.FormValue("kind")) {
	case scenario.KindPricing:
		req, err := parsePricingForm(readPricingForm(r))
		if err == nil {
			var sheet desk.PricingSheet
			if sheet, err = desk.Price(req); err == nil {
				sc.Pricing = &sheet
			}
		}
		if err != nil {
			s.redirectSaveError(w, r, err)
			return
		}
	case scenario.KindDeal:
		req, err := parseDealForm(readDealForm(r))
		if err == nil {
			var sheet desk.DealSheet
			if sheet, err = desk.Score(req); err == nil {
				sc.Deal = &sheet
			}
		}
		if err != nil {
			s.redirectSaveError(w, r, err)
			return
		}
	default:
		http.Error(w, "invalid scenario kind", http.StatusBadRequest)
		return
	}

	saved, err := s.scenarios.Save(r.Context(), sc)
	if err != nil {
		s.log.Error("failed to save scenario", zap.Error(err))
		http.Error(w, "failed to save scenario", http.StatusInternalServerError)
		return
	}
	s.log.Info("scenario saved", zap.String("id", saved.ID), zap.String("kind", string(saved.Kind)))

	http.Redirect(w, r, "/scenarios/"+saved.ID, http.StatusSeeOther)
}

func (s *server) redirectSaveError(w http.ResponseWriter, r *http.Request, err error) {
	s.log.Info("scenario form rejected", zap.Error(err))
	http.Redirect(w, r, "/scenarios?error="+url.QueryEscape(err.Error()), http.StatusSeeOther)
}

func (s *server) loadScenario(w http.ResponseWriter, r *http.Request) (scenario.Scenario, bool) {
	sc, err := s.scenarios.Get(r.Context(), chi.URLParam(r, "id"))
	if errors.Is(err, scenario.ErrNotFound) {
		http.NotFound(w, r)
		return scenario.Scenario{}, false
	}
	if err != nil {
		s.log.Error("failed to load scenario", zap.Error(err))
		http.Error(w, "failed to load scenario", http.StatusInternalServerError)
		return scenario.Scenario{}, false
	}
	return sc, true
}

func (s *server) handleScenarioDetail(w http.ResponseWriter, r *http.Request) {
	sc, ok := s.loadScenario(w, r)
	if !ok {
		return
	}

	view := scenarioViewData{Scenario: sc}
	switch {
	case sc.Pricing != nil:
		view.PricingMetrics = report.PricingMetrics(sc.Pricing.Result.KPIs)
	case sc.Deal != nil:
		view.DealMetrics = report.DealMetrics(sc.Deal.Result.KPIs)
		view.Converted = report.ConvertedAmounts(sc.Deal.TRVConverted)
	}
	s.renderTemplate(w, http.StatusOK, "scenario.html", view)
}

func (s *server) handleScenarioDelete(w http.ResponseWriter, r *http.Request) {
	err := s.scenarios.Delete(r.Context(), chi.URLParam(r, "id"))
	if errors.Is(err, scenario.ErrNotFound) {
		http.NotFound(w, r)
		return
	}
	if err != nil {
		s.log.Error("failed to delete scenario", zap.Error(err))
		http.Error(w, "failed to delete scenario", http.StatusInternalServerError)
		return
	}
	http.Redirect(w, r, "/scenarios?success=Scenario+deleted", http.StatusSeeOther)
}

func (s *server) handleScenarioReportHTML(w http.ResponseWriter, r *http.Request) {
	sc, ok := s.loadScenario(w, r)
	if !ok {
		return
	}

	var buf bytes.Buffer
	var err error
	switch {
	case sc.Pricing != nil:
		err = report.WritePricingHTML(&buf, sc.Title, *sc.Pricing)
	case sc.Deal != nil:
		err = report.WriteDealHTML(&buf, sc.Title, *sc.Deal)
	}
	if err != nil {
		s.log.Error("failed to render report", zap.String("id", sc.ID), zap.Error(err))
		http.Error(w, "failed to render report", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s.html"`, reportName(sc)))
	_, _ = buf.WriteTo(w)
}

func (s *server) handleScenarioReportXLSX(w http.ResponseWriter, r *http.Request) {
	sc, ok := s.loadScenario(w, r)
	if !ok {
		return
	}

	var buf bytes.Buffer
	var err error
	switch {
	case sc.Pricing != nil:
		err = report.WritePricingXLSX(&buf, *sc.Pricing)
	case sc.Deal != nil:
		err = report.WriteDealXLSX(&buf, *sc.Deal)
	}
	if err != nil {
		s.log.Error("failed to build workbook", zap.String("id", sc.ID), zap.Error(err))
		http.Error(w, "failed to build workbook", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s.xlsx"`, reportName(sc)))
	_, _ = buf.WriteTo(w)
}

func reportName(sc scenario.Scenario) string {
	if sc.Kind == scenario.KindDeal {
		return "deal_scorecard_" + sc.CreatedAt.Format("20060102")
	}
	return "pricing_report_" + sc.CreatedAt.Format("20060102")
}

func (s *server) handleSettingsForm(w http.ResponseWriter, r *http.Request) {
	defaults, err := s.settings.Get(r.Context())
	if err != nil {
		s.log.Error("failed to load default assumptions", zap.Error(err))
		http.Error(w, "failed to load default assumptions", http.StatusInternalServerError)
		return
	}
	s.renderTemplate(w, http.StatusOK, "settings.html", settingsViewData{Defaults: defaults})
}

func (s *server) handleSettingsSubmit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}

	defaults, validationErr := readSettingsForm(r)
	if validationErr == nil {
		validationErr = defaults.Validate()
	}
	if validationErr != nil {
		s.renderTemplate(w, http.StatusBadRequest, "settings.html", settingsViewData{
			baseViewData: baseViewData{ErrorMessage: validationErr.Error()},
			Defaults:     defaults,
		})
		return
	}

	if err := s.settings.Update(r.Context(), defaults); err != nil {
		s.log.Error("failed to save default assumptions", zap.Error(err))
		http.Error(w, "failed to save default assumptions", http.StatusInternalServerError)
		return
	}

	s.renderTemplate(w, http.StatusOK, "settings.html", settingsViewData{
		baseViewData: baseViewData{SuccessMessage: "Default assumptions saved."},
		Defaults:     defaults,
	})
}
