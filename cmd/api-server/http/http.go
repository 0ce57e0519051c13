package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/run-ci/docuserver/step"
	"github.com/run-ci/docuserver/store"

	jwt "github.com/dgrijalva/jwt-go"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
)

var logger *logrus.Entry

type ctxkey int

const (
	keyReqID ctxkey = iota
	keyReqSub
)

func init() {
	logger = logrus.WithField("package", "http")
}

// apiStore is a grouping of the minimum number of store
// interfaces the API needs to work.
type apiStore interface {
	ResolveAliases(branch, build string) (store.BuildIdentifier, error)
	LoadBranches() ([]store.BranchBuilds, error)
	LoadBranchAliases() ([]store.BranchAlias, error)

	LoadUseCases(store.BuildIdentifier) ([]store.UseCaseScenarios, error)
	LoadUseCase(b store.BuildIdentifier, usecase string) (store.UseCase, error)
	LoadScenario(store.ScenarioIdentifier) (store.Scenario, error)
	LoadScenarioPageSteps(store.ScenarioIdentifier) (store.ScenarioPageSteps, error)
	LoadStep(id store.ScenarioIdentifier, index int) (store.Step, error)
	LoadObjectIndex(b store.BuildIdentifier, objtype, name string) (store.ObjectTreeNode, error)

	SaveBuild(*store.Build) error
}

// Server is a net/http.Server with dependencies like
// the documentation store and the step loader.
type Server struct {
	st        apiStore
	steps     *step.Loader
	responses *step.ResponseFactory
	importch  chan<- []byte
	jwtsecret []byte

	*http.Server
}

// NewServer returns a Server with a reference to `st`, listening
// on `addr`. Imported builds are announced on `importch`.
func NewServer(addr string, importch chan<- []byte, st apiStore, jwtsecret string) *Server {
	srv := &Server{
		Server: &http.Server{
			Addr: addr,
		},

		st:        st,
		steps:     step.NewLoader(step.NewStoreScenarioLoader(st)),
		responses: step.NewResponseFactory(st),
		importch:  importch,
		jwtsecret: []byte(jwtsecret),
	}

	r := mux.NewRouter()
	// Page names may contain slashes, which clients escape.
	r.UseEncodedPath()
	srv.Handler = r

	r.Handle("/", chain(getRoot, setRequestID, logRequest)).
		Methods(http.MethodGet)

	r.Handle("/rest/branches", chain(srv.handleGetBranches, setRequestID, logRequest)).
		Methods(http.MethodGet)

	r.Handle("/rest/branchaliases", chain(srv.handleGetBranchAliases, setRequestID, logRequest)).
		Methods(http.MethodGet)

	r.Handle("/rest/branch/{branchName}/build/{buildName}", chain(
		srv.handleImportBuild,
		setRequestID,
		logRequest,
		srv.checkAuth,
	)).Methods(http.MethodPost)

	r.Handle("/rest/branch/{branchName}/build/{buildName}/usecases", chain(
		srv.handleGetUseCases,
		setRequestID,
		logRequest,
	)).Methods(http.MethodGet)

	r.Handle("/rest/branch/{branchName}/build/{buildName}/object/{objectType}/{objectName}", chain(
		srv.handleGetObject,
		setRequestID,
		logRequest,
	)).Methods(http.MethodGet)

	r.Handle("/rest/branch/{branchName}/build/{buildName}/usecase/{usecaseName}", chain(
		srv.handleGetUseCase,
		setRequestID,
		logRequest,
	)).Methods(http.MethodGet)

	r.Handle("/rest/branch/{branchName}/build/{buildName}/usecase/{usecaseName}/scenario/{scenarioName}", chain(
		srv.handleGetScenario,
		setRequestID,
		logRequest,
	)).Methods(http.MethodGet)

	r.Handle("/rest/branch/{branchName}/build/{buildName}/usecase/{usecaseName}/scenario/{scenarioName}"+
		"/pageName/{pageName}/pageOccurrence/{pageOccurrence}/stepInPageOccurrence/{stepInPageOccurrence}", chain(
		srv.handleGetStep,
		setRequestID,
		logRequest,
	)).Methods(http.MethodGet)

	return srv
}

func getRoot(rw http.ResponseWriter, req *http.Request) {
	rw.WriteHeader(http.StatusOK)
	rw.Write([]byte("docuserver"))
}

// Middleware is a function that can intercept the handling of an HTTP request
// to do something useful.
type middleware func(http.HandlerFunc) http.HandlerFunc

// Chain builds the final http.Handler from all the middlewares passed to it.
func chain(f http.HandlerFunc, mw ...middleware) http.Handler {
	// Because function calls are placed on a stack, they need to
	// be applied in reverse order from what they are passed in,
	// in order for calls to Chain() to be intuitive.
	for i := len(mw) - 1; i >= 0; i-- {
		f = mw[i](f)
	}

	return f
}

// SetRequestID sets a UUID on the request so that it can be tracked through
// logs, metrics and instrumentation.
func setRequestID(f http.HandlerFunc) http.HandlerFunc {
	return func(rw http.ResponseWriter, req *http.Request) {
		id := uuid.New().String()

		ctx := context.WithValue(req.Context(), keyReqID, id)
		logger.WithField("request_id", id).
			Debug("setting request ID")

		f(rw, req.WithContext(ctx))
	}
}

// LogRequest logs useful information about the request. It must have a
// "request_id" set on the request context.
func logRequest(f http.HandlerFunc) http.HandlerFunc {
	return func(rw http.ResponseWriter, req *http.Request) {
		reqid := req.Context().Value(keyReqID).(string)

		logger := logger.WithField("request_id", reqid)

		logger.Infof("%v %v", req.Method, req.URL)

		f(rw, req)
	}
}

func (srv *Server) checkAuth(f http.HandlerFunc) http.HandlerFunc {
	return func(rw http.ResponseWriter, req *http.Request) {
		hdrline, ok := req.Header["Authorization"]
		if !ok {
			err := errors.New("missing bearer token")

			logger.WithError(err).Error("unable to authorize request")
			writeErrResp(rw, err, http.StatusUnauthorized)
			return
		}

		hdr := strings.Split(hdrline[0], " ")

		if len(hdr) < 2 {
			err := errors.New("missing bearer token")

			logger.WithError(err).Error("unable to authorize request")
			writeErrResp(rw, err, http.StatusUnauthorized)
			return
		}

		// Tokens come in the form of "Bearer $TOKEN"
		bearer := hdr[1]

		keyfn := func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				err := errors.New("invalid signing method for bearer token")

				return nil, err
			}

			return srv.jwtsecret, nil
		}

		token, err := jwt.ParseWithClaims(bearer, &jwt.StandardClaims{}, keyfn)
		if err != nil {
			logger.WithError(err).Error("unable to authorize request")
			writeErrResp(rw, err, http.StatusUnauthorized)
			return
		}

		if claims, ok := token.Claims.(*jwt.StandardClaims); ok && token.Valid {
			if time.Now().Unix() > claims.ExpiresAt {
				err := errors.New("token expired")
				logger.WithError(err).Error("unable to authorize request")
				writeErrResp(rw, err, http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(req.Context(), keyReqSub, claims.Subject)
			logger.WithField("sub", claims.Subject).
				Debug("setting auth subject")

			f(rw, req.WithContext(ctx))
			return
		}

		err = errors.New("invalid bearer token")
		logger.WithError(err).Error("unable to authorize request")
		writeErrResp(rw, err, http.StatusUnauthorized)
	}
}

// writeErrResp writes err as a JSON error body with the given status.
func writeErrResp(rw http.ResponseWriter, err error, status int) {
	buf, merr := json.Marshal(map[string]string{
		"error": err.Error(),
	})
	if merr != nil {
		logger.WithError(merr).Error("unable to marshal error response")
	}

	rw.Header().Set("Content-Type", "application/json")
	rw.WriteHeader(status)
	rw.Write(buf)
}

// writeJSONResp marshals v and writes it with the given status.
func writeJSONResp(rw http.ResponseWriter, logger *logrus.Entry, v interface{}, status int) {
	logger.Debug("marshaling response body")

	buf, err := json.Marshal(v)
	if err != nil {
		logger.WithError(err).Error("unable to marshal response body")

		writeErrResp(rw, err, http.StatusInternalServerError)
		return
	}

	rw.Header().Set("Content-Type", "application/json")
	rw.WriteHeader(status)
	rw.Write(buf)
}

// pathVar returns the unescaped mux variable name. Missing or empty
// variables are errors.
func pathVar(req *http.Request, name string) (string, error) {
	raw, ok := mux.Vars(req)[name]
	if !ok || raw == "" {
		return "", errors.New("missing parameter '" + name + "' from request")
	}

	return url.PathUnescape(raw)
}
