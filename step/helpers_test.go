package step

import (
	"testing"

	"github.com/run-ci/docuserver/store"
)

// basicSearch is the scenario most tests resolve steps in. Its pages are
// results.jsp (steps 0-2), detail.jsp (step 3) and results.jsp again
// (step 4).
func basicSearch(name string, labels ...string) store.ScenarioDocu {
	return store.ScenarioDocu{
		Scenario: store.Scenario{Name: name, Labels: labels},
		Steps: []store.Step{
			{Page: "results.jsp", Title: "first"},
			{Page: "results.jsp", Title: "filtered"},
			{Page: "results.jsp", Title: "scrolled"},
			{Page: "detail.jsp", Title: "detail"},
			{Page: "results.jsp", Title: "back"},
		},
	}
}

func basicSearchPageSteps() store.ScenarioPageSteps {
	return store.NewScenarioPageSteps(store.UseCase{Name: "Search"}, basicSearch("BasicSearch"))
}

// seedStore saves three builds of branch main:
//   b1 has Search/BasicSearch,
//   b2 renamed it to Search/BasicSearchV2 and added Admin/Login,
//   b3 moved it to Find/BasicSearch.
func seedStore(t *testing.T) *store.Memory {
	st := store.NewMemory()

	builds := []*store.Build{
		{
			BuildIdentifier: store.BuildIdentifier{Branch: "main", Build: "b1"},
			UseCases: []store.UseCaseDocu{
				{
					UseCase:   store.UseCase{Name: "Search", Labels: []string{"search"}},
					Scenarios: []store.ScenarioDocu{basicSearch("BasicSearch", "smoke", "search")},
				},
			},
		},
		{
			BuildIdentifier: store.BuildIdentifier{Branch: "main", Build: "b2"},
			UseCases: []store.UseCaseDocu{
				{
					UseCase: store.UseCase{Name: "Admin", Labels: []string{"admin"}},
					Scenarios: []store.ScenarioDocu{
						{
							Scenario: store.Scenario{Name: "Login"},
							Steps: []store.Step{
								{Page: "login.jsp"},
								{Page: "results.jsp"},
							},
						},
					},
				},
				{
					UseCase:   store.UseCase{Name: "Search", Labels: []string{"search"}},
					Scenarios: []store.ScenarioDocu{basicSearch("BasicSearchV2", "smoke", "search")},
				},
			},
		},
		{
			BuildIdentifier: store.BuildIdentifier{Branch: "main", Build: "b3"},
			UseCases: []store.UseCaseDocu{
				{
					UseCase:   store.UseCase{Name: "Search"},
					Scenarios: []store.ScenarioDocu{basicSearch("AdvancedSearch")},
				},
				{
					UseCase:   store.UseCase{Name: "Find"},
					Scenarios: []store.ScenarioDocu{basicSearch("BasicSearch", "smoke")},
				},
			},
		},
	}

	for _, b := range builds {
		if err := st.SaveBuild(b); err != nil {
			t.Fatalf("got error saving build: %v", err)
		}
	}

	return st
}

func identifier(build, usecase, scenario, page string, pageocc, stepocc int) Identifier {
	return Identifier{
		Branch:               "main",
		Build:                build,
		UseCase:              usecase,
		Scenario:             scenario,
		Page:                 page,
		PageOccurrence:       pageocc,
		StepInPageOccurrence: stepocc,
	}
}
