package honeycomb

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"

	"github.com/honeycombio/libhoney-go/transmission"
)

// MultiSender fans each event out to every configured Sender.
type MultiSender struct {
	Senders []transmission.Sender
}

func (s *MultiSender) Add(ev *transmission.Event) {
	for _, tx := range s.Senders {
		tx.Add(ev)
	}
}

// Start starts every Sender, aborting on the first error
func (s *MultiSender) Start() error {
	if len(s.Senders) == 0 {
		return errors.New("no senders configured")
	}
	for _, tx := range s.Senders {
		if err := tx.Start(); err != nil {
			return err
		}
	}
	return nil
}

// Stop stops every Sender, aborting on the first error
func (s *MultiSender) Stop() error {
	for _, tx := range s.Senders {
		if err := tx.Stop(); err != nil {
			return err
		}
	}
	return nil
}

func (s *MultiSender) Flush() error {
	for _, tx := range s.Senders {
		if err := tx.Flush(); err != nil {
			return err
		}
	}
	return nil
}

// TxResponses returns the response channel from the first Sender only
func (s *MultiSender) TxResponses() chan transmission.Response {
	return s.Senders[0].TxResponses()
}

func (s *MultiSender) SendResponse(resp transmission.Response) bool {
	pending := false
	for _, tx := range s.Senders {
		pending = tx.SendResponse(resp) || pending
	}
	return pending
}

// TextSender writes each event as one human-readable line, for running the CLI by hand.
type TextSender struct {
	sync.Mutex

	w io.Writer

	responses chan transmission.Response
}

func (t *TextSender) Start() error {
	t.responses = make(chan transmission.Response, 100)
	return nil
}

func (t *TextSender) Stop() error { return nil }

func (t *TextSender) Flush() error { return nil }

func (t *TextSender) Add(ev *transmission.Event) {
	m := format(ev)

	t.Lock()
	defer t.Unlock()
	_, _ = t.w.Write(m)
	t.SendResponse(transmission.Response{Metadata: ev.Metadata})
}

func (t *TextSender) TxResponses() chan transmission.Response {
	return t.responses
}

func (t *TextSender) SendResponse(r transmission.Response) bool {
	select {
	case t.responses <- r:
	default:
		return true
	}
	return false
}

func format(ev *transmission.Event) []byte {
	buf := new(bytes.Buffer)
	_, _ = fmt.Fprintf(buf, "%s %s %.3fms %s",
		ev.Timestamp.Format("15:04:05"),
		shortTraceID(ev.Data["trace.trace_id"]),
		ev.Data["duration_ms"],
		ev.Data["name"],
	)

	for _, k := range sortedKeys(ev.Data) {
		if exclude(k) {
			continue
		}
		_, _ = fmt.Fprintf(buf, " %s=%v", k, ev.Data[k])
	}
	buf.WriteString("\n")
	return buf.Bytes()
}

func exclude(k string) bool {
	switch k {
	case "name", "version", "service", "duration_ms", "stack":
		return true
	}
	for _, prefix := range []string{"trace.", "meta."} {
		if strings.HasPrefix(k, prefix) {
			return true
		}
	}
	return false
}

func shortTraceID(raw interface{}) string {
	traceID, ok := raw.(string)
	if !ok || len(traceID) < 5 {
		return "unkwn"
	}
	return traceID[len(traceID)-5:]
}

func sortedKeys(m map[string]interface{}) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
