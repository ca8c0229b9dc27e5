package obs

import (
	"bytes"
	"context"
	"errors"
	"log"
	"strings"
	"testing"
)

func captureLog(t *testing.T) *bytes.Buffer {
	t.Helper()

	var buf bytes.Buffer
	prevOut, prevFlags := log.Writer(), log.Flags()
	log.SetOutput(&buf)
	log.SetFlags(0)
	t.Cleanup(func() {
		log.SetOutput(prevOut)
		log.SetFlags(prevFlags)
	})
	return &buf
}

func TestTimeLogsOperation(t *testing.T) {
	buf := captureLog(t)
	ctx := WithRequestID(context.Background(), "run-1")

	func() (err error) {
		defer Time(ctx, "catalog.load")(&err)
		return nil
	}()

	line := buf.String()
	if !strings.HasPrefix(line, "req_id=run-1 op=catalog.load dur=") {
		t.Fatalf("unexpected log line %q", line)
	}
	if strings.Contains(line, "err=") {
		t.Fatalf("successful op must not log err: %q", line)
	}
}

func TestTimeLogsError(t *testing.T) {
	buf := captureLog(t)

	func() (err error) {
		defer Time(context.Background(), "optimize")(&err)
		return errors.New("boom")
	}()

	if !strings.Contains(buf.String(), "op=optimize") || !strings.Contains(buf.String(), "err=boom") {
		t.Fatalf("unexpected log line %q", buf.String())
	}
}

func TestWithRequestIDGenerates(t *testing.T) {
	a := RequestID(WithRequestID(context.Background(), ""))
	b := RequestID(WithRequestID(context.Background(), ""))

	if a == "" || a == b {
		t.Fatalf("generated ids = %q, %q; want distinct non-empty", a, b)
	}
	if got := RequestID(context.Background()); got != "" {
		t.Fatalf("RequestID on bare context = %q", got)
	}
}
