package step

import (
	"errors"
	"testing"

	"github.com/go-test/deep"
	"github.com/run-ci/docuserver/store"
)

// fakeScenarioLoader answers every call with fixed results.
type fakeScenarioLoader struct {
	scenario LoadScenarioResult
	found    LoadScenarioResult
	err      error

	findCalls int
}

func (l *fakeScenarioLoader) LoadScenario(Identifier) (LoadScenarioResult, error) {
	return l.scenario, l.err
}

func (l *fakeScenarioLoader) FindPageInRequestedUseCaseAndInAllUseCases(Identifier) (LoadScenarioResult, error) {
	l.findCalls++
	return l.found, l.err
}

func TestLoadStepFound(t *testing.T) {
	loader := NewLoader(NewStoreScenarioLoader(seedStore(t)))

	id := identifier("b1", "Search", "BasicSearch", "results.jsp", 0, 2)

	res, err := loader.LoadStep(id)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	expected := FoundStep(2, id, store.StepStatistics{
		TotalStepsInScenario:       5,
		TotalPagesInScenario:       3,
		TotalStepsInPageOccurrence: 3,
	})

	if diff := deep.Equal(expected, res); diff != nil {
		t.Fatalf("unexpected result: %v", diff)
	}
}

func TestLoadStepRedirects(t *testing.T) {
	loader := NewLoader(NewStoreScenarioLoader(seedStore(t)))

	tests := []struct {
		name      string
		requested Identifier
		expected  Identifier
	}{
		{
			name:      "renamed scenario found by labels",
			requested: identifier("b2", "Search", "BasicSearch", "results.jsp", 0, 2).WithLabels("smoke", "search"),
			expected:  identifier("b2", "Search", "BasicSearchV2", "results.jsp", 0, 0).WithLabels("smoke", "search"),
		},
		{
			name:      "scenario moved to other use case",
			requested: identifier("b3", "Search", "BasicSearch", "results.jsp", 0, 2),
			expected:  identifier("b3", "Find", "BasicSearch", "results.jsp", 0, 2),
		},
		{
			name:      "single remaining step",
			requested: identifier("b1", "Search", "BasicSearch", "detail.jsp", 0, 3),
			expected:  identifier("b1", "Search", "BasicSearch", "detail.jsp", 0, 0),
		},
		{
			name:      "step gone from scenario found by labels",
			requested: identifier("b1", "Search", "BasicSearch", "results.jsp", 0, 5).WithLabels("smoke"),
			expected:  identifier("b1", "Search", "BasicSearch", "results.jsp", 0, 0).WithLabels("smoke"),
		},
	}

	for _, test := range tests {
		res, err := loader.LoadStep(test.requested)
		if err != nil {
			t.Fatalf("%v: expected no error, got %v", test.name, err)
		}

		if res.Outcome != Redirect {
			t.Fatalf("%v: expected outcome %v, got %v", test.name, Redirect, res.Outcome)
		}

		if !res.Target.Equal(test.expected) {
			t.Fatalf("%v: expected redirect to %v, got %v", test.name, test.expected, res.Target)
		}
	}
}

func TestLoadStepNotFound(t *testing.T) {
	loader := NewLoader(NewStoreScenarioLoader(seedStore(t)))

	tests := []struct {
		name string
		id   Identifier
	}{
		{"renamed scenario without labels", identifier("b2", "Search", "BasicSearch", "results.jsp", 0, 2)},
		{"labels matching nothing", identifier("b2", "Search", "BasicSearch", "results.jsp", 0, 2).WithLabels("billing")},
		{"unknown build", identifier("b9", "Search", "BasicSearch", "results.jsp", 0, 0).WithLabels("smoke")},
		{"unknown page", identifier("b1", "Search", "BasicSearch", "missing.jsp", 0, 0).WithLabels("smoke")},
	}

	for _, test := range tests {
		res, err := loader.LoadStep(test.id)
		if err != nil {
			t.Fatalf("%v: expected no error, got %v", test.name, err)
		}

		if res.Outcome != NotFound {
			t.Fatalf("%v: expected outcome %v, got %v", test.name, NotFound, res.Outcome)
		}
	}
}

func TestLoadStepIsDeterministic(t *testing.T) {
	loader := NewLoader(NewStoreScenarioLoader(seedStore(t)))

	id := identifier("b2", "Search", "BasicSearch", "results.jsp", 0, 2).WithLabels("search")

	first, err := loader.LoadStep(id)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	for i := 0; i < 10; i++ {
		res, err := loader.LoadStep(id)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		if res.Outcome != first.Outcome || !res.Target.Equal(first.Target) {
			t.Fatalf("expected %v to %v, got %v to %v", first.Outcome, first.Target, res.Outcome, res.Target)
		}
	}
}

func TestLoadStepSkipsSearchOnScenarioRedirect(t *testing.T) {
	target := identifier("b3", "Find", "BasicSearch", "results.jsp", 0, 0)
	sl := &fakeScenarioLoader{
		scenario: LoadScenarioResult{Redirect: &target},
	}

	res, err := NewLoader(sl).LoadStep(identifier("b3", "Search", "BasicSearch", "results.jsp", 0, 0))
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if res.Outcome != Redirect || !res.Target.Equal(target) {
		t.Fatalf("expected redirect to %v, got %+v", target, res)
	}

	if sl.findCalls != 0 {
		t.Fatalf("expected no page search, got %v", sl.findCalls)
	}
}

func TestLoadStepPropagatesStoreErrors(t *testing.T) {
	boom := errors.New("connection refused")

	_, err := NewLoader(&fakeScenarioLoader{err: boom}).LoadStep(identifier("b1", "Search", "BasicSearch", "results.jsp", 0, 0))
	if err != boom {
		t.Fatalf("expected error %v, got %v", boom, err)
	}

	ps := basicSearchPageSteps()
	sl := &fakeScenarioLoader{scenario: LoadScenarioResult{PageSteps: &ps}}

	// Step not in the scenario so the search runs and fails.
	failing := &failingFind{fakeScenarioLoader: sl, err: boom}
	_, err = NewLoader(failing).LoadStep(identifier("b1", "Search", "BasicSearch", "results.jsp", 0, 5).WithLabels("smoke"))
	if err != boom {
		t.Fatalf("expected error %v, got %v", boom, err)
	}
}

// failingFind loads scenarios fine but fails searching pages.
type failingFind struct {
	*fakeScenarioLoader
	err error
}

func (l *failingFind) FindPageInRequestedUseCaseAndInAllUseCases(Identifier) (LoadScenarioResult, error) {
	return LoadScenarioResult{}, l.err
}
