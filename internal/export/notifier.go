package export

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"shiftboard/pkg/logger"
)

// Notifier shows the confirmation of a simulated export and blocks until
// it has been acknowledged.
type Notifier interface {
	Notify(ctx context.Context, message string) error
}

// NotifierFunc adapts a function to Notifier
type NotifierFunc func(ctx context.Context, message string) error

// Notify calls f
func (f NotifierFunc) Notify(ctx context.Context, message string) error {
	return f(ctx, message)
}

// LogNotifier acknowledges immediately after logging the message.
type LogNotifier struct {
	Logger *logger.Logger
}

// Notify logs message at info level
func (n LogNotifier) Notify(ctx context.Context, message string) error {
	log := n.Logger
	if log == nil {
		log = logger.Default()
	}
	log.InfoContext(ctx, "export confirmation", "text", message)
	return nil
}

// PromptNotifier prints the message and waits for the user to press enter.
// All prompts share one buffered reader, so lines typed ahead are kept for
// the following prompts.
type PromptNotifier struct {
	mu  sync.Mutex
	in  *bufio.Reader
	out io.Writer

	// pending is the read left running by a cancelled Notify
	pending chan error
}

// NewPromptNotifier reads confirmations from in and prints to out.
// Nil arguments select os.Stdin and os.Stdout.
func NewPromptNotifier(in io.Reader, out io.Writer) *PromptNotifier {
	if in == nil {
		in = os.Stdin
	}
	if out == nil {
		out = os.Stdout
	}
	return &PromptNotifier{in: bufio.NewReader(in), out: out}
}

// Notify writes message and reads one line. EOF counts as an acknowledgement.
//
// A read cannot be interrupted: when ctx is done Notify returns ctx.Err()
// but its goroutine stays blocked on the input until a line or EOF arrives.
// The next Notify waits on that same read instead of starting another one.
func (n *PromptNotifier) Notify(ctx context.Context, message string) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	if _, err := fmt.Fprintf(n.out, "%s\n\n[premi invio per confermare] ", strings.TrimSpace(message)); err != nil {
		return err
	}

	done := n.pending
	n.pending = nil
	if done == nil {
		done = make(chan error, 1)
		go func() {
			_, err := n.in.ReadString('\n')
			if err == io.EOF {
				err = nil
			}
			done <- err
		}()
	}

	select {
	case <-ctx.Done():
		n.pending = done
		return ctx.Err()
	case err := <-done:
		fmt.Fprintln(n.out)
		return err
	}
}
