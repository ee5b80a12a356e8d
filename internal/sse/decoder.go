package sse

import (
	"bufio"
	"io"
	"strconv"
	"strings"
)

// Decoder incrementally parses an SSE byte stream into Events, applying
// the WHATWG dispatch algorithm: accumulate fields until a blank line,
// then emit.
type Decoder struct {
	r           *bufio.Reader
	strippedBOM bool
	lastEventID string

	eventType string
	dataBuf   strings.Builder
	comment   string
	retry     *uint64
	idSeen    bool
}

// NewDecoder wraps r. Pass an existing last-event-id (e.g. from the
// Last-Event-ID request header on reconnect) via SetLastEventID before the
// first Next call if the caller wants it reflected in early events' ID
// field even before a fresh "id" line arrives.
func NewDecoder(r io.Reader) *Decoder {
	return &Decoder{r: bufio.NewReader(r)}
}

// SetLastEventID seeds the decoder's last-event-id buffer.
func (d *Decoder) SetLastEventID(id string) { d.lastEventID = id }

// LastEventID returns the most recently observed "id" field value.
func (d *Decoder) LastEventID() string { return d.lastEventID }

// Next reads and dispatches the next Event, returning io.EOF once the
// underlying stream is exhausted with no further complete event pending.
func (d *Decoder) Next() (Event, error) {
	d.resetBuilder()
	for {
		line, err := d.readLine()
		if err != nil {
			if err == io.EOF {
				return Event{}, io.EOF
			}
			return Event{}, err
		}
		if line == "" {
			return d.dispatch(), nil
		}
		d.applyLine(line)
	}
}

func (d *Decoder) resetBuilder() {
	d.eventType = ""
	d.dataBuf.Reset()
	d.comment = ""
	d.retry = nil
	d.idSeen = false
}

// readLine reads one SSE line, terminated by \r\n, \r, or \n, stripping a
// leading UTF-8 BOM the first time it is encountered.
func (d *Decoder) readLine() (string, error) {
	var b strings.Builder
	for {
		c, err := d.r.ReadByte()
		if err != nil {
			if err == io.EOF && b.Len() > 0 {
				return d.stripBOM(b.String()), nil
			}
			return "", err
		}
		if c == '\n' {
			return d.stripBOM(b.String()), nil
		}
		if c == '\r' {
			next, peekErr := d.r.Peek(1)
			if peekErr == nil && len(next) == 1 && next[0] == '\n' {
				_, _ = d.r.ReadByte()
			}
			return d.stripBOM(b.String()), nil
		}
		b.WriteByte(c)
	}
}

func (d *Decoder) stripBOM(line string) string {
	if d.strippedBOM {
		return line
	}
	d.strippedBOM = true
	return strings.TrimPrefix(line, "\xEF\xBB\xBF")
}

// applyLine interprets one non-blank SSE line per field type.
func (d *Decoder) applyLine(line string) {
	if strings.HasPrefix(line, ":") {
		d.comment = line[1:]
		return
	}

	field, value, hasValue := splitField(line)
	switch field {
	case "event":
		if hasValue {
			d.eventType = value
		}
	case "data":
		d.dataBuf.WriteString(value)
		d.dataBuf.WriteByte('\n')
	case "id":
		if hasValue && !strings.ContainsRune(value, 0) {
			d.lastEventID = value
			d.idSeen = true
		}
	case "retry":
		if hasValue {
			if n, err := strconv.ParseUint(value, 10, 64); err == nil {
				d.retry = &n
			}
		}
	}
}

// splitField splits "field: value" into its name and value, stripping a
// single leading space from the value. hasValue is false only when the
// line carries no colon at all (bare field name).
func splitField(line string) (field, value string, hasValue bool) {
	idx := strings.IndexByte(line, ':')
	if idx < 0 {
		return line, "", false
	}
	field = line[:idx]
	value = line[idx+1:]
	value = strings.TrimPrefix(value, " ")
	return field, value, true
}

// dispatch finalizes the accumulated buffers into an Event, trimming the
// data buffer's final trailing line feed.
func (d *Decoder) dispatch() Event {
	data := d.dataBuf.String()
	data = strings.TrimSuffix(data, "\n")

	eventType := d.eventType
	if eventType == "" {
		eventType = defaultEventType
	}

	return Event{
		Type:    eventType,
		Data:    data,
		ID:      d.lastEventID,
		Retry:   d.retry,
		Comment: d.comment,
	}
}
