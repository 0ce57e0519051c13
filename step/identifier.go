// Package step resolves step permalinks against the documentation of a
// build. A permalink names a step by use case, scenario, page and
// occurrences. When the documentation changed since the link was handed
// out, the step is looked up again by its page and labels and the caller
// is redirected to where it moved, or told that it's gone.
package step

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/run-ci/docuserver/store"
	log "github.com/sirupsen/logrus"
)

var logger *log.Entry

func init() {
	logger = log.WithField("package", "step")
}

// Identifier names a requested step. It's a value: methods never modify
// it and the label list is copied on the way in and out.
type Identifier struct {
	Branch   string
	Build    string
	UseCase  string
	Scenario string
	Page     string

	// PageOccurrence counts previous occurrences of Page in the scenario.
	PageOccurrence int
	// StepInPageOccurrence is the position of the step within the page
	// occurrence.
	StepInPageOccurrence int

	labels []string
}

// WithLabels returns a copy of id carrying labels. Labels are only used
// to score candidates when the step has to be searched for. Each label
// goes through ParseLabels, so a label with a comma becomes several and
// the labels survive a round trip through RedirectURI unchanged.
func (id Identifier) WithLabels(labels ...string) Identifier {
	id.labels = nil
	for _, l := range labels {
		id.labels = append(id.labels, ParseLabels(l)...)
	}

	return id
}

// Labels returns a copy of the labels of the request.
func (id Identifier) Labels() []string {
	return append([]string(nil), id.labels...)
}

// WithBuild returns a copy of id pointing into another build, usually the
// alias the client asked for.
func (id Identifier) WithBuild(b store.BuildIdentifier) Identifier {
	id.Branch = b.Branch
	id.Build = b.Build
	return id
}

// BuildIdentifier returns the build part of id.
func (id Identifier) BuildIdentifier() store.BuildIdentifier {
	return store.BuildIdentifier{Branch: id.Branch, Build: id.Build}
}

// ScenarioIdentifier returns the scenario part of id.
func (id Identifier) ScenarioIdentifier() store.ScenarioIdentifier {
	return store.ScenarioIdentifier{
		BuildIdentifier: id.BuildIdentifier(),
		UseCase:         id.UseCase,
		Scenario:        id.Scenario,
	}
}

// PackedID returns the compact step id used in object indexes.
func (id Identifier) PackedID() string {
	return store.PackStepID(id.Page, id.PageOccurrence, id.StepInPageOccurrence)
}

// Equal reports whether both identifiers name the same step with the
// same labels.
func (id Identifier) Equal(o Identifier) bool {
	if id.Branch != o.Branch || id.Build != o.Build ||
		id.UseCase != o.UseCase || id.Scenario != o.Scenario ||
		id.Page != o.Page ||
		id.PageOccurrence != o.PageOccurrence ||
		id.StepInPageOccurrence != o.StepInPageOccurrence ||
		len(id.labels) != len(o.labels) {
		return false
	}

	for i := range id.labels {
		if id.labels[i] != o.labels[i] {
			return false
		}
	}

	return true
}

// RedirectURI is the URI a client is sent to when the step moved. It's
// marked as a fallback so clients can tell the user the link is stale.
func (id Identifier) RedirectURI() string {
	path := fmt.Sprintf("/rest/branch/%v/build/%v/usecase/%v/scenario/%v/pageName/%v/pageOccurrence/%v/stepInPageOccurrence/%v",
		url.PathEscape(id.Branch),
		url.PathEscape(id.Build),
		url.PathEscape(id.UseCase),
		url.PathEscape(id.Scenario),
		url.PathEscape(id.Page),
		id.PageOccurrence,
		id.StepInPageOccurrence,
	)

	q := url.Values{}
	q.Set("fallback", "true")
	if len(id.labels) > 0 {
		q.Set("labels", strings.Join(id.labels, ","))
	}

	return path + "?" + q.Encode()
}

func (id Identifier) String() string {
	return id.Branch + "/" + id.Build + "/" + id.UseCase + "/" + id.Scenario + "/" +
		id.Page + "/" + strconv.Itoa(id.PageOccurrence) + "/" + strconv.Itoa(id.StepInPageOccurrence)
}

// ParseLabels splits a comma separated label list as it's sent in the
// labels query parameter. Empty entries are dropped.
func ParseLabels(raw string) []string {
	labels := []string{}
	for _, l := range strings.Split(raw, ",") {
		l = strings.TrimSpace(l)
		if l != "" {
			labels = append(labels, l)
		}
	}

	return labels
}
