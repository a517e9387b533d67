package ctl

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
)

// runMenu presents the numbered launch menu and dispatches the choice.
// Choices 1-3 block supervising the launched servers; choice 4 prints
// the self-test and returns.
func runMenu(ctx context.Context, in io.Reader, out io.Writer, app *App) error {
	fmt.Fprintln(out, "ACE-Step launcher")
	fmt.Fprintln(out, "  1) Launch web UI")
	fmt.Fprintln(out, "  2) Launch REST API")
	fmt.Fprintln(out, "  3) Launch both")
	fmt.Fprintln(out, "  4) Memory status self-test")
	fmt.Fprint(out, "Choice [1-4]: ")

	choice, err := readChoice(in)
	if err != nil {
		return err
	}
	switch choice {
	case "1":
		return app.Run(ctx, "web")
	case "2":
		return app.Run(ctx, "api")
	case "3":
		return app.Run(ctx, "both")
	case "4":
		return runStatus(out, app)
	default:
		return fmt.Errorf("invalid choice: %q", choice)
	}
}

func readChoice(in io.Reader) (string, error) {
	sc := bufio.NewScanner(in)
	if !sc.Scan() {
		if err := sc.Err(); err != nil {
			return "", err
		}
		return "", fmt.Errorf("no input")
	}
	return strings.TrimSpace(sc.Text()), nil
}
