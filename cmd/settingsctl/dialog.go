package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/smb564/21-points/internal/view"
)

// terminalDialog is the command line stand-in for a modal dialog. It only
// records how the controller resolved it.
type terminalDialog struct {
	closed    bool
	result    any
	dismissed string
}

func (d *terminalDialog) Close(result any) {
	d.closed = true
	d.result = result
}

func (d *terminalDialog) Dismiss(reason string) {
	d.dismissed = reason
}

var _ view.Dialog = (*terminalDialog)(nil)

func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// confirm asks a yes/no question; anything but y or yes is a no.
func confirm(in io.Reader, out io.Writer, question string) (bool, error) {
	fmt.Fprintf(out, "%s [y/N] ", question)
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && err != io.EOF {
		return false, err
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true, nil
	default:
		return false, nil
	}
}
