// Package queue connects the server to the message bus used to announce
// imported builds.
package queue

import (
	nats "github.com/nats-io/go-nats"
	"github.com/sirupsen/logrus"
)

// SubjectBuildsImported is the subject announcing that a build was saved
// or replaced. Messages are JSON encoded store.BuildIdentifiers.
const SubjectBuildsImported = "builds.imported"

var logger *logrus.Entry

func init() {
	logger = logrus.WithField("package", "queue")
}

// NATS is a connection to a NATS server.
type NATS struct {
	conn *nats.Conn
}

// NewNATS connects to the NATS server at url.
func NewNATS(url string) (*NATS, error) {
	logger := logger.WithField("url", url)
	logger.Debug("connecting to NATS")

	conn, err := nats.Connect(url)
	if err != nil {
		logger.WithError(err).Debug("unable to connect to NATS")
		return nil, err
	}

	return &NATS{conn: conn}, nil
}

// SenderOn returns a channel whose messages are published on subject.
// Closing the channel stops the publisher.
func (q *NATS) SenderOn(subject string) chan<- []byte {
	send := make(chan []byte)

	go func() {
		logger := logger.WithField("subject", subject)

		for msg := range send {
			logger.Debug("publishing message")

			if err := q.conn.Publish(subject, msg); err != nil {
				logger.WithError(err).Error("unable to publish message")
			}
		}
	}()

	return send
}

// ReceiverOn subscribes to subject and returns a channel with the data of
// every message received.
func (q *NATS) ReceiverOn(subject string) (<-chan []byte, error) {
	msgs := make(chan *nats.Msg, 64)

	_, err := q.conn.ChanSubscribe(subject, msgs)
	if err != nil {
		return nil, err
	}

	recv := make(chan []byte)
	go func() {
		defer close(recv)

		for msg := range msgs {
			recv <- msg.Data
		}
	}()

	return recv, nil
}

// Close closes the connection.
func (q *NATS) Close() {
	q.conn.Close()
}
