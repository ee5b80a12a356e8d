package sse

import (
	"io"
	"strings"
	"testing"
)

func TestDecoder_SimpleDataEvent(t *testing.T) {
	d := NewDecoder(strings.NewReader("data: hello\n\n"))
	ev, err := d.Next()
	if err != nil {
		t.Fatalf("Next error: %v", err)
	}
	if ev.Type != "message" || ev.Data != "hello" {
		t.Errorf("ev = %+v, want type=message data=hello", ev)
	}
}

func TestDecoder_MultiLineData(t *testing.T) {
	d := NewDecoder(strings.NewReader("data: line1\ndata: line2\n\n"))
	ev, err := d.Next()
	if err != nil {
		t.Fatalf("Next error: %v", err)
	}
	if ev.Data != "line1\nline2" {
		t.Errorf("Data = %q, want %q", ev.Data, "line1\nline2")
	}
}

func TestDecoder_CustomEventTypeAndID(t *testing.T) {
	d := NewDecoder(strings.NewReader("event: update\nid: 42\ndata: payload\n\n"))
	ev, err := d.Next()
	if err != nil {
		t.Fatalf("Next error: %v", err)
	}
	if ev.Type != "update" || ev.ID != "42" || ev.Data != "payload" {
		t.Errorf("ev = %+v", ev)
	}
	if d.LastEventID() != "42" {
		t.Errorf("LastEventID() = %q, want 42", d.LastEventID())
	}
}

func TestDecoder_RetryField(t *testing.T) {
	d := NewDecoder(strings.NewReader("retry: 3000\ndata: x\n\n"))
	ev, err := d.Next()
	if err != nil {
		t.Fatalf("Next error: %v", err)
	}
	if ev.Retry == nil || *ev.Retry != 3000 {
		t.Fatalf("Retry = %v, want 3000", ev.Retry)
	}
}

func TestDecoder_InvalidRetryIgnored(t *testing.T) {
	d := NewDecoder(strings.NewReader("retry: not-a-number\ndata: x\n\n"))
	ev, err := d.Next()
	if err != nil {
		t.Fatalf("Next error: %v", err)
	}
	if ev.Retry != nil {
		t.Errorf("Retry = %v, want nil", ev.Retry)
	}
}

func TestDecoder_CommentLineIgnoredForDispatchButRecorded(t *testing.T) {
	d := NewDecoder(strings.NewReader(": keep-alive\ndata: x\n\n"))
	ev, err := d.Next()
	if err != nil {
		t.Fatalf("Next error: %v", err)
	}
	if ev.Comment != " keep-alive" {
		t.Errorf("Comment = %q", ev.Comment)
	}
	if ev.Data != "x" {
		t.Errorf("Data = %q, want x", ev.Data)
	}
}

func TestDecoder_LastEventIDPersistsAcrossEvents(t *testing.T) {
	d := NewDecoder(strings.NewReader("id: 1\ndata: a\n\ndata: b\n\n"))
	first, err := d.Next()
	if err != nil {
		t.Fatalf("Next error: %v", err)
	}
	if first.ID != "1" {
		t.Fatalf("first.ID = %q, want 1", first.ID)
	}
	second, err := d.Next()
	if err != nil {
		t.Fatalf("Next error: %v", err)
	}
	if second.ID != "1" {
		t.Errorf("second.ID = %q, want 1 (sticky across events)", second.ID)
	}
}

func TestDecoder_BOMStrippedOnFirstLine(t *testing.T) {
	d := NewDecoder(strings.NewReader("\xEF\xBB\xBFdata: x\n\n"))
	ev, err := d.Next()
	if err != nil {
		t.Fatalf("Next error: %v", err)
	}
	if ev.Data != "x" {
		t.Errorf("Data = %q, want x (BOM stripped)", ev.Data)
	}
}

func TestDecoder_EOFAtStreamEnd(t *testing.T) {
	d := NewDecoder(strings.NewReader("data: only\n\n"))
	if _, err := d.Next(); err != nil {
		t.Fatalf("unexpected error on first event: %v", err)
	}
	if _, err := d.Next(); err != io.EOF {
		t.Errorf("Next() error = %v, want io.EOF", err)
	}
}
