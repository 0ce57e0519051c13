package store

// searchBuild returns a build with one use case and one scenario whose
// results page occurs twice.
func searchBuild(branch, build string) *Build {
	return &Build{
		BuildIdentifier: BuildIdentifier{Branch: branch, Build: build},
		Status:          "success",
		UseCases: []UseCaseDocu{
			{
				UseCase: UseCase{Name: "Search", Labels: []string{"search"}},
				Scenarios: []ScenarioDocu{
					{
						Scenario: Scenario{Name: "BasicSearch", Labels: []string{"smoke"}},
						Steps: []Step{
							{Page: "results.jsp", Title: "first"},
							{Page: "results.jsp", Title: "filtered", Labels: []string{"filtered"}},
							{Page: "results.jsp", Title: "scrolled"},
							{Page: "detail.jsp", Title: "detail"},
							{Page: "results.jsp", Title: "back"},
						},
					},
				},
			},
		},
	}
}
