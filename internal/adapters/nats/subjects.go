package natsadapter

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/nats-io/nats.go"
)

// Subject layout: geogrid.session.<id>.<kind>.
const (
	subjectPrefix = "geogrid.session."

	KindUpdate     = "update"
	KindClosed     = "closed"
	KindCamera     = "camera"
	KindProjection = "projection"
)

var errUndecodable = errors.New("undecodable message")

// SessionSubject returns the subject for kind messages about session id.
func SessionSubject(id, kind string) string {
	return subjectPrefix + id + "." + kind
}

// wildcard matches kind messages for every session.
func wildcard(kind string) string {
	return subjectPrefix + "*." + kind
}

// parseSubject splits a session subject into its session id and kind.
func parseSubject(subject string) (id, kind string, err error) {
	rest, ok := strings.CutPrefix(subject, subjectPrefix)
	if !ok {
		return "", "", fmt.Errorf("not a session subject: %s", subject)
	}
	id, kind, ok = strings.Cut(rest, ".")
	if !ok || id == "" || kind == "" || strings.Contains(kind, ".") {
		return "", "", fmt.Errorf("malformed session subject: %s", subject)
	}
	return id, kind, nil
}

// streams holds the JetStream streams the adapters rely on. Updates keep only
// the latest message per session so late subscribers catch up immediately.
var streams = []nats.StreamConfig{
	{
		Name:              "GEOGRID_UPDATES",
		Subjects:          []string{wildcard(KindUpdate), wildcard(KindClosed)},
		Retention:         nats.LimitsPolicy,
		MaxMsgsPerSubject: 1,
		MaxAge:            1 * time.Hour,
		Storage:           nats.MemoryStorage,
	},
	{
		Name:      "GEOGRID_COMMANDS",
		Subjects:  []string{wildcard(KindCamera), wildcard(KindProjection)},
		Retention: nats.WorkQueuePolicy,
		MaxAge:    5 * time.Minute,
		Storage:   nats.FileStorage,
	},
}

func connect(url string) (*nats.Conn, error) {
	return nats.Connect(url,
		nats.Name("geogrid"),
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
	)
}

func ensureStreams(js nats.JetStreamContext) error {
	for _, cfg := range streams {
		if _, err := js.AddStream(&cfg); err != nil {
			// Stream may already exist, update it.
			if _, err := js.UpdateStream(&cfg); err != nil {
				return fmt.Errorf("ensure stream %s: %w", cfg.Name, err)
			}
		}
	}
	return nil
}
