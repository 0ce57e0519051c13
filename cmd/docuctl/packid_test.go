package main

import (
	"bytes"
	"io/ioutil"
	"strings"
	"testing"
	"time"

	jwt "github.com/dgrijalva/jwt-go"
	"github.com/spf13/cobra"
)

func execute(cmd *cobra.Command, args ...string) (string, error) {
	var out bytes.Buffer

	cmd.SetOut(&out)
	cmd.SetErr(ioutil.Discard)
	cmd.SetArgs(args)

	err := cmd.Execute()
	return strings.TrimSpace(out.String()), err
}

func TestPackID(t *testing.T) {
	out, err := execute(NewPackIDCmd(), "app/results.jsp", "1", "2")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if out != "app/results.jsp/1/2" {
		t.Fatalf("expected app/results.jsp/1/2, got %v", out)
	}

	if _, err := execute(NewPackIDCmd(), "results.jsp", "first", "2"); err == nil {
		t.Fatalf("expected an error for a non numeric occurrence")
	}
}

func TestUnpackID(t *testing.T) {
	out, err := execute(NewUnpackIDCmd(), "app/results.jsp/1/2")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	expected := "page=app/results.jsp pageOccurrence=1 stepInPageOccurrence=2"
	if out != expected {
		t.Fatalf("expected %v, got %v", expected, out)
	}

	if _, err := execute(NewUnpackIDCmd(), "results.jsp/01/2"); err == nil {
		t.Fatalf("expected an error for a malformed id")
	}
}

func TestToken(t *testing.T) {
	out, err := execute(NewTokenCmd(), "--secret", "test", "--subject", "ci@test", "--ttl", "1h")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	claims := &jwt.StandardClaims{}
	_, err = jwt.ParseWithClaims(out, claims, func(*jwt.Token) (interface{}, error) {
		return []byte("test"), nil
	})
	if err != nil {
		t.Fatalf("got error parsing token: %v", err)
	}

	if claims.Subject != "ci@test" {
		t.Fatalf("expected subject ci@test, got %v", claims.Subject)
	}

	if claims.ExpiresAt <= time.Now().Unix() {
		t.Fatalf("expected token to expire in the future, got %v", claims.ExpiresAt)
	}

	if _, err := execute(NewTokenCmd(), "--secret", "test"); err == nil {
		t.Fatalf("expected an error without subject")
	}
}
