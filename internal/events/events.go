// Package events carries build file parsing lifecycle events from the parser
// to whoever is interested: loggers, metrics, test probes.
package events

import (
	"time"

	"github.com/google/uuid"
	"github.com/vk/buildparse/internal/record"
)

// Event is anything posted on a Bus.
type Event interface {
	isEvent()
}

// Started is posted before a build file is parsed.
type Started struct {
	ID        uuid.UUID
	BuildFile string
	At        time.Time
}

// NewStarted creates a Started event for buildFile with a fresh ID.
func NewStarted(buildFile string) *Started {
	return &Started{ID: uuid.New(), BuildFile: buildFile, At: time.Now()}
}

// Profile is a profiling payload. Nothing produces one yet.
type Profile struct {
	Data []byte
}

// Finished is posted after a build file was parsed, whether or not parsing
// succeeded. Rules holds whatever was captured before a failure.
type Finished struct {
	Started        *Started
	Rules          []*record.Record
	ProcessedBytes int64
	Profile        *Profile
	Err            error
	At             time.Time
}

// NewFinished creates the Finished event matching started.
func NewFinished(started *Started, rules []*record.Record, processedBytes int64, profile *Profile, err error) *Finished {
	return &Finished{
		Started:        started,
		Rules:          rules,
		ProcessedBytes: processedBytes,
		Profile:        profile,
		Err:            err,
		At:             time.Now(),
	}
}

// Duration is the time between the matching Started event and this one.
func (f *Finished) Duration() time.Duration {
	if f.Started == nil {
		return 0
	}
	return f.At.Sub(f.Started.At)
}

func (*Started) isEvent()  {}
func (*Finished) isEvent() {}
