package log

import (
	"bytes"
	"fmt"
	"io"
	"sync"
	"time"
)

// ReportLogger records every HID report handed to the BLE link, with
// optional file output. Useful for verifying what actually went over
// the air without a BLE sniffer.
type ReportLogger interface {
	Log(kind string, data []byte)
}

// reportLogger implements ReportLogger with thread-safe output.
type reportLogger struct {
	w  io.Writer
	mu sync.Mutex
}

// NewReportLogger creates a new ReportLogger. If writer is nil, returns
// a no-op logger.
func NewReportLogger(w io.Writer) ReportLogger {
	return &reportLogger{w: w}
}

// Log emits a single-line report dump with timestamp and hex bytes.
// kind names the report page ("keyboard" or "consumer").
func (r *reportLogger) Log(kind string, data []byte) {
	if r.w == nil || len(data) == 0 {
		return
	}

	var hexbuf bytes.Buffer
	const hexdigits = "0123456789abcdef"
	for i, b := range data {
		if i > 0 {
			hexbuf.WriteByte(' ')
		}
		hexbuf.WriteByte(hexdigits[b>>4])
		hexbuf.WriteByte(hexdigits[b&0x0f])
	}

	line := fmt.Sprintf("%s %s report: %d bytes, hex: %s\n",
		time.Now().Format("2006/01/02 15:04:05"),
		kind,
		len(data),
		hexbuf.String())

	r.mu.Lock()
	_, _ = r.w.Write([]byte(line))
	r.mu.Unlock()
}
