package http

import (
	"encoding/json"
	"errors"
	"io/ioutil"
	"net/http"

	"github.com/run-ci/docuserver/store"
	"github.com/sirupsen/logrus"
)

// handleImportBuild saves the build in the request body, replacing a
// build with the same name, and announces the import.
func (srv *Server) handleImportBuild(rw http.ResponseWriter, req *http.Request) {
	reqID := req.Context().Value(keyReqID).(string)
	reqSub := req.Context().Value(keyReqSub).(string)
	logger := logger.WithFields(logrus.Fields{
		"request_id":      reqID,
		"request_subject": reqSub,
	})

	logger.Debug("reading request body")
	buf, err := ioutil.ReadAll(req.Body)
	if err != nil {
		logger.WithField("error", err).
			Error("unable to read request body")

		writeErrResp(rw, err, http.StatusInternalServerError)
		return
	}

	var b store.Build

	logger.Debug("checking mux vars for build")

	b.Branch, err = pathVar(req, "branchName")
	if err != nil {
		logger.WithError(err).Error("unable to complete request")

		writeErrResp(rw, err, http.StatusBadRequest)
		return
	}

	b.Build, err = pathVar(req, "buildName")
	if err != nil {
		logger.WithError(err).Error("unable to complete request")

		writeErrResp(rw, err, http.StatusBadRequest)
		return
	}

	id := b.BuildIdentifier

	logger.Debug("unmarshaling request body")
	err = json.Unmarshal(buf, &b)
	if err != nil {
		logger.WithField("error", err).
			Error("unable to unmarshal request body")

		writeErrResp(rw, err, http.StatusBadRequest)
		return
	}

	// The path names the build, not the body.
	b.BuildIdentifier = id

	logger = logger.WithFields(logrus.Fields{
		"branch": b.Branch,
		"build":  b.Build,
	})

	logger.Info("saving build")
	err = srv.st.SaveBuild(&b)
	if errors.Is(err, store.ErrInvalidBuild) {
		logger.WithError(err).Error("refusing invalid build")

		writeErrResp(rw, err, http.StatusBadRequest)
		return
	}
	if err != nil {
		logger.WithError(err).Error("unable to save build")

		writeErrResp(rw, err, http.StatusInternalServerError)
		return
	}

	msg, err := json.Marshal(b.BuildIdentifier)
	if err != nil {
		logger.WithError(err).Error("unable to marshal import event")

		writeErrResp(rw, err, http.StatusInternalServerError)
		return
	}

	select {
	case srv.importch <- msg:
		logger.Debug("announced build import")
	case <-req.Context().Done():
		logger.Warn("request done before build import was announced")
	}

	writeJSONResp(rw, logger, b.BuildIdentifier, http.StatusAccepted)
}
