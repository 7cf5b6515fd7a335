package provider

import (
	"bufio"
	"context"
	"errors"
	"io"
	"strings"
)

// errStopStream ends readEvents without an error.
var errStopStream = errors.New("stop stream")

// readEvents feeds the payload of every "data:" record of an event stream
// to onData until the stream ends, a "[DONE]" sentinel arrives or onData
// returns errStopStream. Lines without the prefix are ignored.
func readEvents(ctx context.Context, body io.Reader, onData func(data []byte) error) error {
	scanner := bufio.NewScanner(body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}
		line := scanner.Text()
		if !strings.HasPrefix(line, "data:") {
			continue
		}
		data := strings.TrimSpace(strings.TrimPrefix(line, "data:"))
		if data == "" {
			continue
		}
		if data == "[DONE]" {
			return nil
		}
		if err := onData([]byte(data)); err != nil {
			if errors.Is(err, errStopStream) {
				return nil
			}
			return err
		}
	}
	if err := scanner.Err(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		return err
	}
	return nil
}
