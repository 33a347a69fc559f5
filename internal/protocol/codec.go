package protocol

import (
	"bufio"
	"encoding/json"
	"io"
	"strings"
)

// lineTerminator closes every frame in both directions.
const lineTerminator = "\r\n"

// Codec frames JSON values over a byte stream, one object per line.
// It is not safe for concurrent use; the protocol is strictly synchronous
// on a single connection anyway.
type Codec struct {
	r *bufio.Reader
	w *bufio.Writer
}

func NewCodec(rw io.ReadWriter) *Codec {
	return &Codec{r: bufio.NewReader(rw), w: bufio.NewWriter(rw)}
}

// Send marshals v and writes it as one terminated line.
func (c *Codec) Send(v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	if _, err := c.w.Write(b); err != nil {
		return err
	}
	if _, err := c.w.WriteString(lineTerminator); err != nil {
		return err
	}
	return c.w.Flush()
}

// ReadLine reads one frame and returns it stripped of the terminator and
// surrounding whitespace. An empty line means the peer went away.
func (c *Codec) ReadLine() (string, error) {
	line, err := c.r.ReadString('\n')
	if err != nil {
		// a final unterminated frame still counts
		if err == io.EOF && strings.TrimSpace(line) != "" {
			return strings.TrimSpace(line), nil
		}
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// ReadResponse reads and decodes one server response line.
func (c *Codec) ReadResponse() (*ServerResponse, error) {
	line, err := c.ReadLine()
	if err != nil {
		return nil, err
	}
	return DecodeResponse(line)
}
