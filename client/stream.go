package client

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/yeremiapane/restaurant-backoffice/utils"
)

// Event is one server-sent event.
type Event struct {
	ID    string
	Event string
	Data  string
	// Retry is the reconnection delay requested by the server, zero if unset.
	Retry time.Duration
}

// OpenLiveStream opens the live order stream of one branch. The caller owns the
// returned body and must close it; cancelling ctx also tears the connection down.
func (c *Client) OpenLiveStream(ctx context.Context, creds Credentials, sucursalID int64, lastEventID string) (io.ReadCloser, error) {
	const op = "open live stream"
	req, err := c.newRequest(ctx, creds, http.MethodGet, fmt.Sprintf("/live/ordenes-dia/%d", sucursalID), nil, nil)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	req.Header.Set("Accept", "text/event-stream")
	req.Header.Set("Cache-Control", "no-cache")
	if lastEventID != "" {
		req.Header.Set("Last-Event-ID", lastEventID)
	}

	resp, err := c.Stream.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %v", op, ErrTransport, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		resp.Body.Close()
		return nil, statusError(op, resp.StatusCode, body)
	}
	return resp.Body, nil
}

const maxEventLine = 1024 * 1024

// ReadEvents parses a text/event-stream body and calls fn for every dispatched
// event until the body ends or fn returns an error. Comment lines and events
// without data are skipped, except that a bare retry field is still reported.
// An event with a line longer than maxEventLine is dropped and the stream goes on.
func ReadEvents(r io.Reader, fn func(Event) error) error {
	br := bufio.NewReaderSize(r, 64*1024)

	var (
		evt      Event
		data     []string
		skipping bool
	)
	reset := func() {
		evt = Event{}
		data = data[:0]
	}
	dispatch := func() error {
		defer reset()
		if len(data) == 0 && evt.Retry == 0 {
			return nil
		}
		evt.Data = strings.Join(data, "\n")
		return fn(evt)
	}

	for {
		line, tooLong, err := readLine(br)
		if errors.Is(err, io.EOF) {
			// An event cut off by the end of the stream is never dispatched.
			return nil
		}
		if err != nil {
			return fmt.Errorf("read live stream: %w: %v", ErrTransport, err)
		}
		if tooLong {
			utils.Error().WithField("limit", maxEventLine).WithField("event_id", evt.ID).Error("live stream line too long, dropping event")
			skipping = true
			continue
		}
		if line == "" {
			if skipping {
				skipping = false
				reset()
				continue
			}
			if err := dispatch(); err != nil {
				return err
			}
			continue
		}
		if skipping || strings.HasPrefix(line, ":") {
			continue
		}

		field, value, found := strings.Cut(line, ":")
		if found {
			value = strings.TrimPrefix(value, " ")
		}
		switch field {
		case "id":
			evt.ID = value
		case "event":
			evt.Event = value
		case "data":
			data = append(data, value)
		case "retry":
			if ms, err := strconv.Atoi(value); err == nil && ms >= 0 {
				evt.Retry = time.Duration(ms) * time.Millisecond
			}
		}
	}
}

// readLine returns the next line without its terminator. A line longer than
// maxEventLine is consumed whole and reported as tooLong with no content.
func readLine(br *bufio.Reader) (string, bool, error) {
	var (
		buf     []byte
		tooLong bool
	)
	for {
		chunk, err := br.ReadSlice('\n')
		if !tooLong {
			if len(buf)+len(chunk) > maxEventLine+2 {
				tooLong, buf = true, nil
			} else {
				buf = append(buf, chunk...)
			}
		}
		if errors.Is(err, bufio.ErrBufferFull) {
			continue
		}
		if err != nil {
			return "", tooLong, err
		}
		line := strings.TrimSuffix(strings.TrimSuffix(string(buf), "\n"), "\r")
		return line, tooLong, nil
	}
}
