// Package sse parses Server-Sent Event streams per the WHATWG HTML
// "EventSource" parsing algorithm. Grounded on
// original_source/rama-http-types/src/body/sse/event_stream.rs.
package sse

// Event is one dispatched SSE message.
type Event struct {
	// Type defaults to "message" when no "event" field was seen.
	Type string
	// Data is the joined data buffer with its trailing line feed
	// stripped, per the dispatch algorithm.
	Data string
	// ID is the last event id seen up to and including this event, or
	// "" if none has ever been set on this stream.
	ID string
	// Retry is the reconnection time in milliseconds, if a "retry"
	// field with an all-digit value was seen on this event.
	Retry *uint64
	// Comment is the most recent ":"-prefixed comment line belonging to
	// this event, if any — not part of the HTML standard proper, kept as
	// a supplemental field since some servers use it for keepalives.
	Comment string
}

const defaultEventType = "message"
