package main

import (
	"fmt"
	"os"

	"github.com/run-ci/docuserver/store"
)

func usage() {
	fmt.Println("usage: go run dev/seed-db/main.go $POSTGRES_CONNECTION_STRING $DATA_YAML_PATH")
}

func main() {
	// This is 4 because passing arguments to `go run` requires the `--` and
	// that also counts as one of the arguments in `os.Args`.
	if len(os.Args) != 4 {
		usage()
		os.Exit(1)
	}

	args := os.Args[2:]

	connstr := args[0]
	if connstr == "" {
		usage()
		return
	}

	path := args[1]
	if path == "" {
		usage()
		return
	}

	fmt.Printf("seeding %v with data from %v\n", connstr, path)

	f, err := os.Open(path)
	if err != nil {
		fmt.Printf("got error reading path: %v\n", err)
		os.Exit(1)
	}
	defer f.Close()

	fx, err := store.ReadFixture(f)
	if err != nil {
		fmt.Printf("got error loading YAML: %v\n", err)
		os.Exit(1)
	}

	st, err := store.NewPostgres(connstr)
	if err != nil {
		fmt.Printf("got error connecting to postgres: %v\n", err)
		os.Exit(1)
	}

	if err := st.Migrate(); err != nil {
		fmt.Printf("got error creating tables: %v\n", err)
		os.Exit(1)
	}

	if err := fx.Load(st); err != nil {
		fmt.Printf("got error saving builds: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("seeded %v builds and %v branch aliases\n", len(fx.Builds), len(fx.Aliases))
}
