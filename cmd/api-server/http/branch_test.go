package http

import (
	"encoding/json"
	"io/ioutil"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-test/deep"
	"github.com/run-ci/docuserver/store"
)

func decodeBody(t *testing.T, resp *http.Response, v interface{}) {
	buf, err := ioutil.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("got error reading response body: %v", err)
	}
	defer resp.Body.Close()

	err = json.Unmarshal(buf, v)
	if err != nil {
		t.Fatalf("got error unmarshaling response body: %v", err)
	}
}

func TestGetBranches(t *testing.T) {
	srv := NewServer(":9001", make(chan []byte), seedStore(t), "test")

	resp := serve(srv, httptest.NewRequest(http.MethodGet, "http://test/rest/branches", nil))
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected status %v, got %v", http.StatusOK, resp.StatusCode)
	}

	var branches []store.BranchBuilds
	decodeBody(t, resp, &branches)

	expected := []store.BranchBuilds{
		{
			Branch: "main",
			Builds: []store.BuildSummary{
				{Build: "b1", Status: "success"},
				{Build: "b2", Status: "failed"},
			},
		},
	}

	if diff := deep.Equal(expected, branches); diff != nil {
		t.Fatalf("expected %+v, got %+v: %v", expected, branches, diff)
	}
}

func TestGetBranchAliases(t *testing.T) {
	srv := NewServer(":9001", make(chan []byte), seedStore(t), "test")

	resp := serve(srv, httptest.NewRequest(http.MethodGet, "http://test/rest/branchaliases", nil))
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected status %v, got %v", http.StatusOK, resp.StatusCode)
	}

	var aliases []store.BranchAlias
	decodeBody(t, resp, &aliases)

	expected := []store.BranchAlias{{Alias: "dev", Branch: "main"}}
	if diff := deep.Equal(expected, aliases); diff != nil {
		t.Fatalf("expected %+v, got %+v: %v", expected, aliases, diff)
	}
}

func TestGetObject(t *testing.T) {
	srv := NewServer(":9001", make(chan []byte), seedStore(t), "test")

	resp := serve(srv, httptest.NewRequest(http.MethodGet,
		"http://test/rest/branch/dev/build/b1/object/page/results.jsp", nil))
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected status %v, got %v", http.StatusOK, resp.StatusCode)
	}

	var idx store.ObjectTreeNode
	decodeBody(t, resp, &idx)

	if idx.Name != "results.jsp" || idx.Type != store.ObjectTypePage {
		t.Fatalf("unexpected index root %v/%v", idx.Type, idx.Name)
	}

	if len(idx.Children) != 1 || idx.Children[0].Name != "Search" {
		t.Fatalf("expected only use case Search to reference results.jsp, got %+v", idx.Children)
	}

	// Page names with slashes arrive escaped.
	resp = serve(srv, httptest.NewRequest(http.MethodGet,
		"http://test/rest/branch/main/build/b1/object/page/shop%2Fcart", nil))
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected status %v, got %v", http.StatusOK, resp.StatusCode)
	}

	var cart store.ObjectTreeNode
	decodeBody(t, resp, &cart)

	if cart.Name != "shop/cart" || len(cart.Children) != 1 || cart.Children[0].Name != "Shop" {
		t.Fatalf("unexpected index %+v", cart)
	}
}

func TestGetObjectNotFound(t *testing.T) {
	srv := NewServer(":9001", make(chan []byte), seedStore(t), "test")

	tests := []struct {
		name string
		url  string
	}{
		{name: "missing object", url: "http://test/rest/branch/main/build/b1/object/page/missing.jsp"},
		{name: "unknown type", url: "http://test/rest/branch/main/build/b1/object/widget/results.jsp"},
		{name: "unknown build", url: "http://test/rest/branch/main/build/b9/object/page/results.jsp"},
		{name: "unknown branch", url: "http://test/rest/branch/feature/build/b1/object/page/results.jsp"},
	}

	for _, test := range tests {
		resp := serve(srv, httptest.NewRequest(http.MethodGet, test.url, nil))
		if resp.StatusCode != http.StatusNotFound {
			t.Fatalf("%v: expected status %v, got %v", test.name, http.StatusNotFound, resp.StatusCode)
		}
	}
}
