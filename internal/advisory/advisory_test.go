package advisory

import (
	"errors"
	"strings"
	"testing"

	"github.com/Simplici0/pricedesk/internal/pricing"
)

func TestEvaluateVerdict_TierBoundaries(t *testing.T) {
	cases := []struct {
		name   string
		margin float64
		hurdle float64
		want   Tier
	}{
		{"margin equals hurdle", 25, 25, TierApproved},
		{"zero margin with positive hurdle", 0, 25, TierReferral},
		{"tiny loss", -0.0001, 25, TierReject},
		{"zero margin zero hurdle", 0, 0, TierApproved},
		{"negative margin beats zero hurdle", -5, 0, TierReject},
		{"comfortably above", 54.08, 25, TierApproved},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := EvaluateVerdict(tc.margin, tc.hurdle, 0, nil)
			if got.Tier != tc.want {
				t.Fatalf("tier = %s, want %s", got.Tier, tc.want)
			}
		})
	}
}

func TestEvaluateVerdict_RejectReportsBreakEvenAmount(t *testing.T) {
	v := EvaluateVerdict(-12.5, 25, -2500, nil)
	if v.Tier != TierReject {
		t.Fatalf("tier = %s, want reject", v.Tier)
	}
	if !strings.Contains(v.Message, "$2,500") {
		t.Fatalf("message %q does not quote the break-even amount", v.Message)
	}
}

func TestEvaluateVerdict_ReferralCarriesGapPlan(t *testing.T) {
	plan, err := pricing.SolveGap(60, 45000, 98000, 8, 50_000_000)
	if err != nil {
		t.Fatalf("SolveGap: %v", err)
	}

	v := EvaluateVerdict(54.08, 60, 53000, &plan)
	if v.Tier != TierReferral {
		t.Fatalf("tier = %s, want referral", v.Tier)
	}
	if len(v.RecommendedActions) != 3 {
		t.Fatalf("expected 3 recommended actions, got %v", v.RecommendedActions)
	}
	for _, want := range []string{"$14,500", "$18,125,000", "2.90 bps"} {
		if !strings.Contains(strings.Join(v.RecommendedActions, "\n"), want) {
			t.Fatalf("actions %v missing %q", v.RecommendedActions, want)
		}
	}
}

func TestParseTier(t *testing.T) {
	for _, tier := range []Tier{TierApproved, TierReferral, TierReject} {
		got, err := ParseTier(tier.String())
		if err != nil || got != tier {
			t.Fatalf("ParseTier(%q) = %v, %v", tier.String(), got, err)
		}
	}
	if _, err := ParseTier("maybe"); err == nil {
		t.Fatalf("expected error for unknown tier")
	}
}

func loadTree(t *testing.T, name string) Tree {
	t.Helper()
	catalog, err := LoadCatalog()
	if err != nil {
		t.Fatalf("LoadCatalog: %v", err)
	}
	tree, err := catalog.Tree(name)
	if err != nil {
		t.Fatalf("Tree(%q): %v", name, err)
	}
	return tree
}

func TestLoadCatalog_ShipsBothTrees(t *testing.T) {
	catalog, err := LoadCatalog()
	if err != nil {
		t.Fatalf("LoadCatalog: %v", err)
	}
	names := catalog.Names()
	if len(names) != 2 || names[0] != "deal_approval" || names[1] != "fee_pressure" {
		t.Fatalf("unexpected tree names %v", names)
	}
	if _, err := catalog.Tree("nope"); !errors.Is(err, ErrUnknownTree) {
		t.Fatalf("expected ErrUnknownTree, got %v", err)
	}
}

func TestEvaluate_ReachesVerdict(t *testing.T) {
	tree := loadTree(t, "deal_approval")

	out := Evaluate(tree.Root, []string{"Yes", "Yes", "No"})
	if out.Status != StatusDecided {
		t.Fatalf("status = %s, want decided", out.Status)
	}
	if out.Verdict.Tier != TierReject {
		t.Fatalf("tier = %s, want reject", out.Verdict.Tier)
	}
	if len(out.Path) != 3 || out.Path[2].Answer != "No" {
		t.Fatalf("unexpected path %+v", out.Path)
	}

	out = Evaluate(tree.Root, []string{"Yes", "No"})
	if out.Status != StatusDecided || out.Verdict.Tier != TierApproved {
		t.Fatalf("unexpected outcome %+v", out)
	}
}

func TestEvaluate_UnansweredStepsArePending(t *testing.T) {
	tree := loadTree(t, "deal_approval")

	cases := map[string][]string{
		"no answers":      nil,
		"placeholder":     {Unanswered},
		"empty answer":    {"Yes", ""},
		"unknown answer":  {"Maybe"},
		"partial answers": {"No", "No"},
		"late placeholder": {
			"Yes", "Yes", Unanswered,
		},
	}
	for name, answers := range cases {
		t.Run(name, func(t *testing.T) {
			out := Evaluate(tree.Root, answers)
			if out.Status != StatusPending {
				t.Fatalf("status = %s, want pending", out.Status)
			}
			if out.Question == "" || len(out.Options) == 0 {
				t.Fatalf("pending outcome should carry the open question: %+v", out)
			}
			if out.Verdict != nil {
				t.Fatalf("pending outcome should not carry a verdict")
			}
		})
	}
}

func TestEvaluate_IgnoresAnswersPastVerdict(t *testing.T) {
	tree := loadTree(t, "fee_pressure")

	out := Evaluate(tree.Root, []string{"Tighter FX spread", "Yes", "extra", "answers"})
	if out.Status != StatusDecided || out.Verdict.Tier != TierApproved {
		t.Fatalf("unexpected outcome %+v", out)
	}
	if len(out.Path) != 2 {
		t.Fatalf("path should stop at the verdict, got %+v", out.Path)
	}
}

func TestEvaluate_NilTreeIsPending(t *testing.T) {
	if out := Evaluate(nil, []string{"Yes"}); out.Status != StatusPending {
		t.Fatalf("status = %s, want pending", out.Status)
	}
}

func TestParseCatalog_RejectsMalformedTrees(t *testing.T) {
	cases := map[string]string{
		"both next and verdict": `
trees:
  - name: bad
    root:
      question: "Q?"
      answers:
        - option: "A"
          verdict: {tier: approved, message: ok}
          next:
            question: "Q2?"
            answers:
              - option: "B"
                verdict: {tier: reject, message: no}
`,
		"leaf without outcome": `
trees:
  - name: bad
    root:
      question: "Q?"
      answers:
        - option: "A"
`,
		"unknown tier": `
trees:
  - name: bad
    root:
      question: "Q?"
      answers:
        - option: "A"
          verdict: {tier: maybe, message: hmm}
`,
		"duplicate option": `
trees:
  - name: bad
    root:
      question: "Q?"
      answers:
        - option: "A"
          verdict: {tier: approved, message: ok}
        - option: "A"
          verdict: {tier: reject, message: no}
`,
	}
	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := ParseCatalog([]byte(doc)); err == nil {
				t.Fatalf("expected error")
			}
		})
	}
}

func TestPlaybookHTML_RendersGiveGetTable(t *testing.T) {
	html, err := PlaybookHTML()
	if err != nil {
		t.Fatalf("PlaybookHTML: %v", err)
	}
	for _, want := range []string{"<table>", "Tighter FX spread", "<h2>"} {
		if !strings.Contains(string(html), want) {
			t.Fatalf("rendered playbook missing %q", want)
		}
	}
}
