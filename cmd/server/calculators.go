package main

import (
	"errors"
	"html/template"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/Simplici0/pricedesk/internal/advisory"
	"github.com/Simplici0/pricedesk/internal/desk"
	"github.com/Simplici0/pricedesk/internal/pricing"
	"github.com/Simplici0/pricedesk/internal/report"
)

const unitsWarning = "Please enter a number of funds greater than zero to see pricing results."

type treeLink struct {
	Name  string
	Title string
}

type homeViewData struct {
	baseViewData
	Trees []treeLink
}

type pricingViewData struct {
	baseViewData
	Form    pricingForm
	Warning string
	Sheet   *desk.PricingSheet
	Metrics []report.Metric
	// Submitted carries the posted form so the result can be saved as a scenario.
	Submitted url.Values
}

type dealViewData struct {
	baseViewData
	Form         dealForm
	Complexities []pricing.Complexity
	Sheet        *desk.DealSheet
	Metrics      []report.Metric
	Converted    []report.Amount
	Trees        []treeLink
	Submitted    url.Values
}

type treeViewData struct {
	baseViewData
	Tree    advisory.Tree
	Outcome advisory.Outcome
	Answers []string
}

type playbookViewData struct {
	baseViewData
	Playbook template.HTML
}

func (s *server) treeLinks() []treeLink {
	names := s.trees.Names()
	links := make([]treeLink, 0, len(names))
	for _, name := range names {
		t, err := s.trees.Tree(name)
		if err != nil {
			continue
		}
		links = append(links, treeLink{Name: t.Name, Title: t.Title})
	}
	return links
}

func (s *server) handlePricingForm(w http.ResponseWriter, r *http.Request) {
	defaults, err := s.settings.Get(r.Context())
	if err != nil {
		s.log.Error("failed to load default assumptions", zap.Error(err))
		http.Error(w, "failed to load default assumptions", http.StatusInternalServerError)
		return
	}
	s.renderTemplate(w, http.StatusOK, "pricing.html", pricingViewData{Form: defaultPricingForm(defaults)})
}

func (s *server) handlePricingSubmit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}

	form := readPricingForm(r)
	req, err := parsePricingForm(form)
	if err != nil {
		s.renderTemplate(w, http.StatusBadRequest, "pricing.html", pricingViewData{
			baseViewData: baseViewData{ErrorMessage: err.Error()},
			Form:         form,
		})
		return
	}
	if req.Cost.Units <= 0 {
		s.renderTemplate(w, http.StatusOK, "pricing.html", pricingViewData{Form: form, Warning: unitsWarning})
		return
	}

	sheet, err := desk.Price(req)
	if err != nil {
		s.renderCalcError(w, "pricing.html", pricingViewData{Form: form}, err)
		return
	}

	s.renderTemplate(w, http.StatusOK, "pricing.html", pricingViewData{
		Form:      form,
		Sheet:     &sheet,
		Metrics:   report.PricingMetrics(sheet.Result.KPIs),
		Submitted: r.PostForm,
	})
}

func (s *server) handleDealForm(w http.ResponseWriter, r *http.Request) {
	defaults, err := s.settings.Get(r.Context())
	if err != nil {
		s.log.Error("failed to load default assumptions", zap.Error(err))
		http.Error(w, "failed to load default assumptions", http.StatusInternalServerError)
		return
	}
	s.renderTemplate(w, http.StatusOK, "deal.html", dealViewData{
		Form:         defaultDealForm(defaults),
		Complexities: pricing.Complexities,
		Trees:        s.treeLinks(),
	})
}

func (s *server) handleDealSubmit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}

	form := readDealForm(r)
	view := dealViewData{Form: form, Complexities: pricing.Complexities, Trees: s.treeLinks()}

	req, err := parseDealForm(form)
	if err != nil {
		view.ErrorMessage = err.Error()
		s.renderTemplate(w, http.StatusBadRequest, "deal.html", view)
		return
	}

	sheet, err := desk.Score(req)
	if err != nil {
		s.renderCalcError(w, "deal.html", view, err)
		return
	}

	view.Sheet = &sheet
	view.Metrics = report.DealMetrics(sheet.Result.KPIs)
	view.Converted = report.ConvertedAmounts(sheet.TRVConverted)
	view.Submitted = r.PostForm
	s.renderTemplate(w, http.StatusOK, "deal.html", view)
}

// renderCalcError shows engine validation failures on the form and treats anything else as a server error.
func (s *server) renderCalcError(w http.ResponseWriter, page string, view any, err error) {
	if !errors.Is(err, pricing.ErrInvalidInput) {
		s.log.Error("calculation failed", zap.String("page", page), zap.Error(err))
		http.Error(w, "calculation failed", http.StatusInternalServerError)
		return
	}
	switch v := view.(type) {
	case pricingViewData:
		v.ErrorMessage = err.Error()
		view = v
	case dealViewData:
		v.ErrorMessage = err.Error()
		view = v
	}
	s.renderTemplate(w, http.StatusUnprocessableEntity, page, view)
}

func (s *server) handleTree(w http.ResponseWriter, r *http.Request) {
	tree, err := s.trees.Tree(chi.URLParam(r, "name"))
	if err != nil {
		http.NotFound(w, r)
		return
	}

	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}

	answers := r.Form["answer"]
	outcome := advisory.Evaluate(tree.Root, answers)

	// Only the answers that advanced the walk are carried into the next submit.
	kept := make([]string, len(outcome.Path))
	for i, step := range outcome.Path {
		kept[i] = step.Answer
	}

	s.renderTemplate(w, http.StatusOK, "tree.html", treeViewData{
		Tree:    tree,
		Outcome: outcome,
		Answers: kept,
	})
}

func (s *server) handlePlaybook(w http.ResponseWriter, r *http.Request) {
	playbook, err := advisory.PlaybookHTML()
	if err != nil {
		s.log.Error("failed to render playbook", zap.Error(err))
		http.Error(w, "failed to render playbook", http.StatusInternalServerError)
		return
	}
	s.renderTemplate(w, http.StatusOK, "playbook.html", playbookViewData{Playbook: playbook})
}
