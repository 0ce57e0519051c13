package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/run-ci/docuserver/cmd/api-server/http"
	"github.com/run-ci/docuserver/queue"
	"github.com/run-ci/docuserver/store"

	nats "github.com/nats-io/go-nats"

	"github.com/sirupsen/logrus"
)

var logger *logrus.Entry

var listenaddr, storekind, pgconnstr, fixture, natsURL, jwtsecret string

func init() {
	lvl, err := logrus.ParseLevel(os.Getenv("DOCU_LOG_LEVEL"))
	if err != nil {
		lvl = logrus.InfoLevel
	}

	logrus.SetLevel(lvl)

	logger = logrus.WithField("package", "main")

	listenaddr = os.Getenv("DOCU_LISTEN_ADDR")
	if listenaddr == "" {
		listenaddr = ":9001"
	}

	storekind = os.Getenv("DOCU_STORE")
	if storekind == "" {
		storekind = "postgres"
	}

	switch storekind {
	case "postgres":
		pgconnstr = postgresConnstr()
	case "memory":
		fixture = os.Getenv("DOCU_FIXTURE")
		if fixture == "" {
			logger.Warn("DOCU_FIXTURE not set - starting with an empty store")
		}
	default:
		logger.Fatalf("unknown DOCU_STORE %q, need postgres or memory", storekind)
	}

	natsURL = os.Getenv("DOCU_NATS_URL")
	if natsURL == "" {
		logger.Warnf("setting NATS url to %v", nats.DefaultURL)
		natsURL = nats.DefaultURL
	}

	jwtsecret = os.Getenv("DOCU_JWT_SECRET")
	if jwtsecret == "" {
		logger.Warn("DOCU_JWT_SECRET not set - defaulting to \"\" (HIGHLY INSECURE!)")
	}
}

func postgresConnstr() string {
	pguser := os.Getenv("DOCU_POSTGRES_USER")
	if pguser == "" {
		logger.Fatal("need DOCU_POSTGRES_USER")
	}

	pgpass := os.Getenv("DOCU_POSTGRES_PASS")
	if pgpass == "" {
		logger.Fatal("need DOCU_POSTGRES_PASS")
	}

	pghref := os.Getenv("DOCU_POSTGRES_HREF")
	if pghref == "" {
		logger.Fatal("need DOCU_POSTGRES_HREF")
	}

	pgdb := os.Getenv("DOCU_POSTGRES_DB")
	if pgdb == "" {
		logger.Fatal("need DOCU_POSTGRES_DB")
	}

	pgssl := os.Getenv("DOCU_POSTGRES_SSL")
	if pgssl == "" {
		logger.Info("DOCU_POSTGRES_SSL not set - defaulting to verify-full")
		pgssl = "verify-full"
	}

	return fmt.Sprintf("postgres://%v:%v@%v/%v?sslmode=%v",
		pguser, pgpass, pghref, pgdb, pgssl)
}

func openStore() (store.DocuStore, error) {
	if storekind == "postgres" {
		logger.Info("connecting to database")

		pg, err := store.NewPostgres(pgconnstr)
		if err != nil {
			return nil, err
		}

		return pg, pg.Migrate()
	}

	st := store.NewMemory()
	if fixture == "" {
		return st, nil
	}

	logger.WithField("fixture", fixture).Info("loading fixture")

	f, err := os.Open(fixture)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	fx, err := store.ReadFixture(f)
	if err != nil {
		return nil, err
	}

	return st, fx.Load(st)
}

func main() {
	logger.Info("booting server...")

	st, err := openStore()
	if err != nil {
		logger.WithField("error", err).Fatal("unable to open store")
	}

	cached := store.NewCached(st)

	logger.Info("setting up NATS connection")

	var send chan<- []byte
	bus, err := queue.NewNATS(natsURL)
	if err != nil {
		logger.WithField("error", err).Warn("unable to connect to NATS, imports won't be announced")
		send = discard()
	} else {
		send = bus.SenderOn(queue.SubjectBuildsImported)
		go evictImported(bus, cached)
	}

	srv := http.NewServer(listenaddr, send, cached, jwtsecret)

	if err := srv.ListenAndServe(); err != nil {
		logger.WithField("error", err).Fatal("shutting down server")
	}
}

// evictImported drops cached data of builds imported through any server
// sharing the bus.
func evictImported(bus *queue.NATS, cached *store.Cached) {
	recv, err := bus.ReceiverOn(queue.SubjectBuildsImported)
	if err != nil {
		logger.WithField("error", err).Warn("unable to subscribe to build imports")
		return
	}

	for msg := range recv {
		var id store.BuildIdentifier
		if err := json.Unmarshal(msg, &id); err != nil {
			logger.WithField("error", err).Warn("unable to decode build import")
			continue
		}

		cached.Evict(id)
	}
}

func discard() chan<- []byte {
	ch := make(chan []byte)

	go func() {
		for range ch {
		}
	}()

	return ch
}
