// Package notify is the single user-facing notification boundary. The core
// reports one of a fixed set of kinds plus the source it concerns; how (and
// whether) a toast is presented belongs to the consumer.
package notify

import (
	"log"
	"sync"
)

// Kind classifies a user-facing notice.
type Kind string

const (
	// KindProviderUnconfigured: a data source has no API key; its section is
	// silently empty.
	KindProviderUnconfigured Kind = "provider_unconfigured"
	// KindProviderHTTPFailure: a provider returned a non-success status.
	KindProviderHTTPFailure Kind = "provider_http_failure"
	// KindProviderMalformedPayload: success status but the payload lacked the
	// expected fields.
	KindProviderMalformedPayload Kind = "provider_malformed_payload"
	// KindDuplicateRejected: an insertion was refused by the duplicate
	// detector; no state changed.
	KindDuplicateRejected Kind = "duplicate_rejected"
	// KindInvalidReorder: an out-of-range move request was clamped or
	// dropped.
	KindInvalidReorder Kind = "invalid_reorder"
)

// Sink receives notices from the core.
type Sink interface {
	Notify(kind Kind, source, detail string)
}

// LogSink writes every notice to the process log. Used when no richer
// presentation layer is attached.
type LogSink struct{}

func (LogSink) Notify(kind Kind, source, detail string) {
	log.Printf("notice [%s] %s: %s", kind, source, detail)
}

// NopSink discards all notices.
type NopSink struct{}

func (NopSink) Notify(Kind, string, string) {}

// Recorder captures notices for assertions in tests. Safe for the
// pipeline's concurrent source calls.
type Recorder struct {
	mu      sync.Mutex
	notices []Notice
}

// Notice is one captured notification.
type Notice struct {
	Kind   Kind
	Source string
	Detail string
}

func (r *Recorder) Notify(kind Kind, source, detail string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notices = append(r.notices, Notice{Kind: kind, Source: source, Detail: detail})
}

// All returns the captured notices.
func (r *Recorder) All() []Notice {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Notice, len(r.notices))
	copy(out, r.notices)
	return out
}
