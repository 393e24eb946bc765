package cmd

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// prompter reads one line of learner input at a time.
type prompter struct {
	in  *bufio.Scanner
	out io.Writer
}

func newPrompter(in io.Reader, out io.Writer) *prompter {
	s := bufio.NewScanner(in)
	s.Buffer(make([]byte, 0, 64*1024), 1<<20)
	return &prompter{in: s, out: out}
}

// ask prints label and returns the next non-blank line. ok is false when
// input is closed.
func (p *prompter) ask(label string) (line string, ok bool) {
	for {
		fmt.Fprint(p.out, label)
		if !p.in.Scan() {
			fmt.Fprintln(p.out)
			return "", false
		}
		line = strings.TrimSpace(p.in.Text())
		if line != "" {
			return line, true
		}
	}
}

// isQuit reports whether the learner asked to stop.
func isQuit(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "quit", "exit", "done", ":q":
		return true
	}
	return false
}
