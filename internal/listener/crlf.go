package listener

import (
	"bytes"
	"io"
)

var (
	crlf = []byte("\r\n")
	cr   = []byte("\r")
	lf   = []byte("\n")
)

// lineEndings adapts a terminal connection to plain newlines. Reads turn CRLF
// and bare CR into LF; writes turn LF into CRLF.
type lineEndings struct {
	rw io.ReadWriter
}

func newLineEndings(rw io.ReadWriter) io.ReadWriter {
	return &lineEndings{rw: rw}
}

func (c *lineEndings) Read(p []byte) (int, error) {
	n, err := c.rw.Read(p)
	if n > 0 {
		// Telnet clients send CRLF, SSH without a PTY often sends a bare CR.
		data := bytes.ReplaceAll(p[:n], crlf, lf)
		data = bytes.ReplaceAll(data, cr, lf)
		n = copy(p, data)
	}
	return n, err
}

func (c *lineEndings) Write(p []byte) (int, error) {
	if _, err := c.rw.Write(bytes.ReplaceAll(p, lf, crlf)); err != nil {
		return 0, err
	}
	return len(p), nil
}
