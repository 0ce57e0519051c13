package store

// ScenarioPageSteps is the aggregated view of a scenario as a sequence
// of pages, each holding the steps captured on it. A page name can appear
// more than once; every appearance is a separate page occurrence.
type ScenarioPageSteps struct {
	UseCase  UseCase     `json:"usecase"`
	Scenario Scenario    `json:"scenario"`
	Pages    []PageSteps `json:"pages"`
}

// PageSteps is one occurrence of a page within a scenario.
type PageSteps struct {
	Page  string            `json:"page"`
	Steps []StepDescription `json:"steps"`
}

// StepDescription is the summary of a step within its page.
type StepDescription struct {
	Index int    `json:"index"`
	Title string `json:"title,omitempty"`
}

// StepStatistics holds counts shown next to a step.
type StepStatistics struct {
	TotalStepsInScenario       int `json:"totalNumberOfStepsInScenario"`
	TotalPagesInScenario       int `json:"totalNumberOfPagesInScenario"`
	TotalStepsInPageOccurrence int `json:"totalNumberOfStepsInPageOccurrence"`
}

// StepLink points at a step by its page coordinates and absolute index.
type StepLink struct {
	Page                 string `json:"pageName"`
	PageOccurrence       int    `json:"pageOccurrence"`
	StepInPageOccurrence int    `json:"stepInPageOccurrence"`
	Index                int    `json:"stepIndex"`
}

// StepNavigation links a step to its neighbours.
type StepNavigation struct {
	Step StepLink `json:"step"`

	PreviousStep *StepLink `json:"previousStep,omitempty"`
	NextStep     *StepLink `json:"nextStep,omitempty"`
	PreviousPage *StepLink `json:"previousPage,omitempty"`
	NextPage     *StepLink `json:"nextPage,omitempty"`
}

// NewScenarioPageSteps groups the steps of a scenario into page
// occurrences. Consecutive steps on the same page share an occurrence.
func NewScenarioPageSteps(uc UseCase, sc ScenarioDocu) ScenarioPageSteps {
	ps := ScenarioPageSteps{
		UseCase:  uc,
		Scenario: sc.Scenario,
		Pages:    []PageSteps{},
	}

	for i, st := range sc.Steps {
		n := len(ps.Pages)
		if n == 0 || ps.Pages[n-1].Page != st.Page {
			ps.Pages = append(ps.Pages, PageSteps{Page: st.Page})
			n++
		}

		ps.Pages[n-1].Steps = append(ps.Pages[n-1].Steps, StepDescription{
			Index: i,
			Title: st.Title,
		})
	}

	return ps
}

// Occurrences returns the occurrences of the page with the given name,
// in scenario order.
func (ps ScenarioPageSteps) Occurrences(page string) []PageSteps {
	occs := []PageSteps{}
	for _, p := range ps.Pages {
		if p.Page == page {
			occs = append(occs, p)
		}
	}

	return occs
}

// TotalSteps is the number of steps in the scenario.
func (ps ScenarioPageSteps) TotalSteps() int {
	total := 0
	for _, p := range ps.Pages {
		total += len(p.Steps)
	}

	return total
}

// StepStatistics returns the statistics for an occurrence of a page. An
// unknown occurrence has zero steps.
func (ps ScenarioPageSteps) StepStatistics(page string, occurrence int) StepStatistics {
	stats := StepStatistics{
		TotalStepsInScenario: ps.TotalSteps(),
		TotalPagesInScenario: len(ps.Pages),
	}

	occs := ps.Occurrences(page)
	if occurrence >= 0 && occurrence < len(occs) {
		stats.TotalStepsInPageOccurrence = len(occs[occurrence].Steps)
	}

	return stats
}

// Navigation returns the navigation links for the step at index. The
// second return value is false when the index isn't in the scenario.
func (ps ScenarioPageSteps) Navigation(index int) (StepNavigation, bool) {
	links := ps.links()

	pos := -1
	for i, l := range links {
		if l.Index == index {
			pos = i
			break
		}
	}

	if pos < 0 {
		return StepNavigation{}, false
	}

	nav := StepNavigation{Step: links[pos]}

	if pos > 0 {
		prev := links[pos-1]
		nav.PreviousStep = &prev
	}

	if pos < len(links)-1 {
		next := links[pos+1]
		nav.NextStep = &next
	}

	// Page links go to the first step of the neighbouring page occurrence.
	for i := pos - 1; i >= 0; i-- {
		if !samePageOccurrence(links[i], links[pos]) {
			for i > 0 && samePageOccurrence(links[i-1], links[i]) {
				i--
			}
			prev := links[i]
			nav.PreviousPage = &prev
			break
		}
	}

	for i := pos + 1; i < len(links); i++ {
		if !samePageOccurrence(links[i], links[pos]) {
			next := links[i]
			nav.NextPage = &next
			break
		}
	}

	return nav, true
}

func (ps ScenarioPageSteps) links() []StepLink {
	seen := map[string]int{}
	links := []StepLink{}

	for _, p := range ps.Pages {
		occ := seen[p.Page]
		seen[p.Page]++

		for i, st := range p.Steps {
			links = append(links, StepLink{
				Page:                 p.Page,
				PageOccurrence:       occ,
				StepInPageOccurrence: i,
				Index:                st.Index,
			})
		}
	}

	return links
}

func samePageOccurrence(a, b StepLink) bool {
	return a.Page == b.Page && a.PageOccurrence == b.PageOccurrence
}
