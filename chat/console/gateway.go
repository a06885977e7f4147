// Package console is a chat gateway over a terminal: each input line is a
// message from a single local user.
package console

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/guilherme-santos/calbot/internal"
)

// UserID identifies the local user in the session store.
const UserID int64 = 1

type Gateway struct {
	in  io.Reader
	mu  sync.Mutex
	out io.Writer
	now func() time.Time
}

var _ internal.Gateway = (*Gateway)(nil)

func NewGateway(in io.Reader, out io.Writer) *Gateway {
	return &Gateway{in: in, out: out, now: time.Now}
}

// Receive closes the channel at end of input or when ctx is cancelled. A
// read blocked on the terminal is abandoned on cancellation.
func (g *Gateway) Receive(ctx context.Context) (<-chan internal.Message, error) {
	lines := make(chan string)
	go func() {
		defer close(lines)

		scanner := bufio.NewScanner(g.in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
	}()

	out := make(chan internal.Message)
	go func() {
		defer close(out)

		for {
			var line string
			select {
			case <-ctx.Done():
				return
			case l, ok := <-lines:
				if !ok {
					return
				}
				line = l
			}
			if line == "" {
				continue
			}

			msg := internal.Message{
				ID:         uuid.NewString(),
				UserID:     UserID,
				Text:       line,
				ReceivedAt: g.now(),
			}
			select {
			case out <- msg:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out, nil
}

func (g *Gateway) Send(_ context.Context, _ int64, text string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	_, err := fmt.Fprintf(g.out, "%s\n\n", text)
	return err
}
