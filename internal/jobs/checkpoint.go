// internal/jobs/checkpoint.go
package jobs

import (
	"bufio"
	"context"
	"fmt"
	"io"
)

// Checkpoint is the human-interaction handoff invoked after the first page of
// a job has loaded and before any extraction on it. The job pauses, the
// operator completes whatever the site demands in the live browser (login,
// cookie banner), and the checkpoint returns to resume the job. A nil
// Checkpoint skips the pause entirely.
type Checkpoint func(ctx context.Context, url string) error

// PromptCheckpoint returns a Checkpoint that announces the handoff on w and
// blocks until a line is read from r or the context is cancelled.
func PromptCheckpoint(r io.Reader, w io.Writer) Checkpoint {
	return func(ctx context.Context, url string) error {
		fmt.Fprintf(w, "\n🌐 First page loaded: %s\n", url)
		fmt.Fprintln(w, "   Complete any login or cookie prompt in the browser window,")
		fmt.Fprintln(w, "   then press Enter to continue...")

		done := make(chan error, 1)
		go func() {
			_, err := bufio.NewReader(r).ReadString('\n')
			if err == io.EOF {
				err = nil
			}
			done <- err
		}()

		select {
		case err := <-done:
			return err
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
