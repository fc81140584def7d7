package console

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
)

// Serve reads command lines from r until EOF or ctx is done, writing each
// command's output to w. An unknown command is followed by the list of
// known ones.
func (c *Console) Serve(ctx context.Context, r io.Reader, w io.Writer) error {
	lines := make(chan string)
	errc := make(chan error, 1)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(r)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
		errc <- scanner.Err()
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case line, ok := <-lines:
			if !ok {
				select {
				case err := <-errc:
					return err
				default:
					return nil
				}
			}
			out, err := c.Exec(ctx, line)
			if errors.Is(err, ErrUnknownCommand) {
				out = append(out, "Commands: "+strings.Join(c.Commands(), " "))
			}
			for _, msg := range out {
				if _, err := fmt.Fprintln(w, msg); err != nil {
					return err
				}
			}
		}
	}
}
