package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
)

// Execute implements the go-flags Commander interface for ClearCommand.
func (c *ClearCommand) Execute(args []string) error {
	if !c.Force {
		fmt.Println("\u26a0 WARNING: This will permanently delete the whole view history.")
		fmt.Println("Recommendations fall back to a random shuffle until new views are tracked.")
		fmt.Println()
		fmt.Print(`Type "CLEAR" to confirm: `)

		var in io.Reader = os.Stdin
		if c.stdin != nil {
			in = c.stdin
		}
		scanner := bufio.NewScanner(in)
		if !scanner.Scan() {
			return fmt.Errorf("aborted: no input received")
		}
		if strings.TrimSpace(scanner.Text()) != "CLEAR" {
			return fmt.Errorf("aborted: confirmation text did not match")
		}
	}

	return withEnv(c.globals, c.env, c.run)
}

func (c *ClearCommand) run(e *env) error {
	ctx := context.Background()

	raw, err := e.history.Raw(ctx)
	if err != nil {
		e.logger.Debug().Err(err).Msg("clearing unreadable history")
	}
	e.history.Clear(ctx)

	// Clear swallows backend failures, so confirm the key is really gone.
	_, ok, err := e.backend.Get(ctx, e.cfg.History.StorageKey)
	if err != nil {
		return fmt.Errorf("verify clear: %w", err)
	}
	if ok {
		return fmt.Errorf("clear failed: view history still present")
	}

	if c.globals != nil && c.globals.JSON {
		return writeJSON(map[string]any{
			"cleared": true,
			"removed": len(raw),
		})
	}

	fmt.Printf("Cleared %d views. History is empty.\n", len(raw))
	return nil
}
