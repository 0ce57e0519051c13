package store

import (
	"testing"

	"github.com/go-test/deep"
)

func TestNewScenarioPageSteps(t *testing.T) {
	b := searchBuild("main", "b1")
	uc := b.UseCases[0]

	ps := NewScenarioPageSteps(uc.UseCase, uc.Scenarios[0])

	expected := []PageSteps{
		{Page: "results.jsp", Steps: []StepDescription{{0, "first"}, {1, "filtered"}, {2, "scrolled"}}},
		{Page: "detail.jsp", Steps: []StepDescription{{3, "detail"}}},
		{Page: "results.jsp", Steps: []StepDescription{{4, "back"}}},
	}

	if diff := deep.Equal(expected, ps.Pages); diff != nil {
		t.Fatalf("unexpected pages: %v", diff)
	}

	if occs := ps.Occurrences("results.jsp"); len(occs) != 2 {
		t.Fatalf("expected 2 occurrences of results.jsp, got %v", len(occs))
	}

	if occs := ps.Occurrences("missing.jsp"); len(occs) != 0 {
		t.Fatalf("expected no occurrences of missing.jsp, got %v", len(occs))
	}
}

func TestStepStatistics(t *testing.T) {
	b := searchBuild("main", "b1")
	uc := b.UseCases[0]
	ps := NewScenarioPageSteps(uc.UseCase, uc.Scenarios[0])

	tests := []struct {
		page       string
		occurrence int
		expected   StepStatistics
	}{
		{"results.jsp", 0, StepStatistics{5, 3, 3}},
		{"results.jsp", 1, StepStatistics{5, 3, 1}},
		{"detail.jsp", 0, StepStatistics{5, 3, 1}},
		{"results.jsp", 2, StepStatistics{5, 3, 0}},
		{"missing.jsp", 0, StepStatistics{5, 3, 0}},
	}

	for _, test := range tests {
		stats := ps.StepStatistics(test.page, test.occurrence)
		if diff := deep.Equal(test.expected, stats); diff != nil {
			t.Fatalf("unexpected statistics for %v/%v: %v", test.page, test.occurrence, diff)
		}
	}
}

func TestNavigation(t *testing.T) {
	b := searchBuild("main", "b1")
	uc := b.UseCases[0]
	ps := NewScenarioPageSteps(uc.UseCase, uc.Scenarios[0])

	link := func(page string, pageocc, stepocc, index int) *StepLink {
		return &StepLink{Page: page, PageOccurrence: pageocc, StepInPageOccurrence: stepocc, Index: index}
	}

	tests := []struct {
		index    int
		expected StepNavigation
	}{
		{
			index: 0,
			expected: StepNavigation{
				Step:     *link("results.jsp", 0, 0, 0),
				NextStep: link("results.jsp", 0, 1, 1),
				NextPage: link("detail.jsp", 0, 0, 3),
			},
		},
		{
			index: 1,
			expected: StepNavigation{
				Step:         *link("results.jsp", 0, 1, 1),
				PreviousStep: link("results.jsp", 0, 0, 0),
				NextStep:     link("results.jsp", 0, 2, 2),
				NextPage:     link("detail.jsp", 0, 0, 3),
			},
		},
		{
			index: 3,
			expected: StepNavigation{
				Step:         *link("detail.jsp", 0, 0, 3),
				PreviousStep: link("results.jsp", 0, 2, 2),
				NextStep:     link("results.jsp", 1, 0, 4),
				PreviousPage: link("results.jsp", 0, 0, 0),
				NextPage:     link("results.jsp", 1, 0, 4),
			},
		},
		{
			index: 4,
			expected: StepNavigation{
				Step:         *link("results.jsp", 1, 0, 4),
				PreviousStep: link("detail.jsp", 0, 0, 3),
				PreviousPage: link("detail.jsp", 0, 0, 3),
			},
		},
	}

	for _, test := range tests {
		nav, ok := ps.Navigation(test.index)
		if !ok {
			t.Fatalf("expected navigation for step %v", test.index)
		}

		if diff := deep.Equal(test.expected, nav); diff != nil {
			t.Fatalf("unexpected navigation for step %v: %v", test.index, diff)
		}
	}

	if _, ok := ps.Navigation(5); ok {
		t.Fatalf("expected no navigation for step out of range")
	}
}
