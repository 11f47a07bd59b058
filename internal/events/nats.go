// Package events publishes document mutation events to NATS.
package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/nats-io/nats.go"

	"github.com/fivetwenty-io/couchbeans/internal/constants"
	"github.com/fivetwenty-io/couchbeans/pkg/couch"
)

// ErrPublisherRequired is returned by NewNATSNotifier for a nil publisher.
var ErrPublisherRequired = errors.New("NATS publisher is required")

// Publisher is the part of *nats.Conn the notifier needs.
type Publisher interface {
	Publish(subject string, data []byte) error
}

// NATSNotifier implements couch.Notifier. Each event is published as JSON
// on "<prefix>.<database>".
type NATSNotifier struct {
	publisher Publisher
	prefix    string
	conn      *nats.Conn
}

// NewNATSNotifier publishes through publisher. An empty prefix uses
// constants.DefaultNATSSubject.
func NewNATSNotifier(publisher Publisher, prefix string) (*NATSNotifier, error) {
	if publisher == nil {
		return nil, ErrPublisherRequired
	}

	if prefix == "" {
		prefix = constants.DefaultNATSSubject
	}

	return &NATSNotifier{
		publisher: publisher,
		prefix:    strings.TrimSuffix(prefix, "."),
	}, nil
}

// Connect dials the NATS server at url and returns a notifier owning the
// connection.
func Connect(url, prefix string, opts ...nats.Option) (*NATSNotifier, error) {
	opts = append([]nats.Option{nats.Name(constants.NATSClientName)}, opts...)

	conn, err := nats.Connect(url, opts...)
	if err != nil {
		return nil, fmt.Errorf("connecting to NATS: %w", err)
	}

	notifier, err := NewNATSNotifier(conn, prefix)
	if err != nil {
		conn.Close()

		return nil, err
	}

	notifier.conn = conn

	return notifier, nil
}

// Notify implements couch.Notifier.
func (n *NATSNotifier) Notify(ctx context.Context, event couch.MutationEvent) error {
	err := ctx.Err()
	if err != nil {
		return err
	}

	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encoding mutation event: %w", err)
	}

	subject := n.Subject(event.Database)

	err = n.publisher.Publish(subject, data)
	if err != nil {
		return fmt.Errorf("publishing to %s: %w", subject, err)
	}

	return nil
}

// Subject returns the subject events for database are published on.
// Characters NATS treats as separators or wildcards are replaced.
func (n *NATSNotifier) Subject(database string) string {
	token := subjectReplacer.Replace(database)
	if token == "" {
		token = "_"
	}

	return n.prefix + "." + token
}

var subjectReplacer = strings.NewReplacer(".", "_", "*", "_", ">", "_", " ", "_", "/", "_")

// Close drains the connection opened by Connect. It is a no-op for
// notifiers built with NewNATSNotifier.
func (n *NATSNotifier) Close() error {
	if n.conn == nil {
		return nil
	}

	return n.conn.Drain()
}

var _ couch.Notifier = (*NATSNotifier)(nil)
