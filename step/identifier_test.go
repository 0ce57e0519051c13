package step

import (
	"net/url"
	"testing"

	"github.com/go-test/deep"
	"github.com/run-ci/docuserver/store"
)

func TestIdentifierRedirectURI(t *testing.T) {
	tests := []struct {
		id       Identifier
		expected string
	}{
		{
			id: identifier("b1", "Search", "BasicSearch", "results.jsp", 0, 2),
			expected: "/rest/branch/main/build/b1/usecase/Search/scenario/BasicSearch" +
				"/pageName/results.jsp/pageOccurrence/0/stepInPageOccurrence/2?fallback=true",
		},
		{
			id: identifier("last successful", "Search", "Basic Search", "app/results", 1, 0).
				WithLabels("smoke", "search"),
			expected: "/rest/branch/main/build/last%20successful/usecase/Search/scenario/Basic%20Search" +
				"/pageName/app%2Fresults/pageOccurrence/1/stepInPageOccurrence/0?fallback=true&labels=smoke%2Csearch",
		},
	}

	for _, test := range tests {
		uri := test.id.RedirectURI()
		if uri != test.expected {
			t.Fatalf("expected %v, got %v", test.expected, uri)
		}
	}
}

func TestIdentifierIsAValue(t *testing.T) {
	labels := []string{"smoke"}
	id := identifier("b1", "Search", "BasicSearch", "results.jsp", 0, 2).WithLabels(labels...)

	labels[0] = "changed"
	if got := id.Labels(); got[0] != "smoke" {
		t.Fatalf("expected labels to be copied in, got %v", got)
	}

	id.Labels()[0] = "changed"
	if got := id.Labels(); got[0] != "smoke" {
		t.Fatalf("expected labels to be copied out, got %v", got)
	}

	moved := id.WithBuild(store.BuildIdentifier{Branch: "dev", Build: "most recent"})
	if id.Branch != "main" || id.Build != "b1" {
		t.Fatalf("expected WithBuild to leave the original alone, got %v", id)
	}

	if moved.Branch != "dev" || moved.Build != "most recent" || moved.Page != "results.jsp" {
		t.Fatalf("unexpected identifier %v", moved)
	}
}

func TestIdentifierEqual(t *testing.T) {
	a := identifier("b1", "Search", "BasicSearch", "results.jsp", 0, 2).WithLabels("smoke")
	b := identifier("b1", "Search", "BasicSearch", "results.jsp", 0, 2).WithLabels("smoke")

	if !a.Equal(b) {
		t.Fatalf("expected %v to equal %v", a, b)
	}

	if a.Equal(b.WithLabels("search")) {
		t.Fatalf("expected identifiers with different labels to differ")
	}

	c := b
	c.StepInPageOccurrence = 1
	if a.Equal(c) {
		t.Fatalf("expected identifiers with different steps to differ")
	}
}

func TestIdentifierPackedID(t *testing.T) {
	id := identifier("b1", "Search", "BasicSearch", "results.jsp", 3, 0)
	if id.PackedID() != "results.jsp/3/0" {
		t.Fatalf("expected results.jsp/3/0, got %v", id.PackedID())
	}
}

func TestParseLabels(t *testing.T) {
	labels := ParseLabels(" smoke,,search , ")
	if len(labels) != 2 || labels[0] != "smoke" || labels[1] != "search" {
		t.Fatalf("expected [smoke search], got %v", labels)
	}

	if labels := ParseLabels(""); len(labels) != 0 {
		t.Fatalf("expected no labels, got %v", labels)
	}
}

func TestIdentifierLabelsSurviveRedirect(t *testing.T) {
	tests := []struct {
		labels   []string
		expected []string
	}{
		{labels: []string{"smoke", "search"}, expected: []string{"smoke", "search"}},
		{labels: []string{"env:prod,eu", "smoke"}, expected: []string{"env:prod", "eu", "smoke"}},
		{labels: []string{" padded ", ""}, expected: []string{"padded"}},
	}

	for _, test := range tests {
		id := identifier("b1", "Search", "BasicSearch", "results.jsp", 0, 0).WithLabels(test.labels...)
		if diff := deep.Equal(test.expected, id.Labels()); diff != nil {
			t.Fatalf("labels %q: %v", test.labels, diff)
		}

		u, err := url.Parse(id.RedirectURI())
		if err != nil {
			t.Fatalf("got error parsing redirect URI: %v", err)
		}

		if diff := deep.Equal(id.Labels(), ParseLabels(u.Query().Get("labels"))); diff != nil {
			t.Fatalf("labels %q changed through redirect: %v", test.labels, diff)
		}
	}
}
