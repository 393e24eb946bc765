package cmd

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/studyagent/internal/concept"
)

func TestSplitSections(t *testing.T) {
	notes := `Some intro text.

# Arrays
Contiguous memory.

## Linked Lists
Nodes and pointers.
#
Untitled body.
# Empty
`
	got := splitSections(notes)
	require.Len(t, got, 4)
	assert.Equal(t, "Introduction", got[0].Title)
	assert.Equal(t, "Some intro text.", got[0].Content)
	assert.Equal(t, "Arrays", got[1].Title)
	assert.Equal(t, "Linked Lists", got[2].Title)
	assert.Equal(t, "Nodes and pointers.", got[2].Content)
	assert.Equal(t, "Section 4", got[3].Title)

	assert.Empty(t, splitSections("# Only a heading\n"))
}

func TestIsQuit(t *testing.T) {
	for _, s := range []string{"quit", " Done ", "EXIT", ":q"} {
		assert.True(t, isQuit(s), s)
	}
	for _, s := range []string{"", "q", "I'm done explaining"} {
		assert.False(t, isQuit(s), s)
	}
}

func TestPrompter_SkipsBlankLines(t *testing.T) {
	var out bytes.Buffer
	p := newPrompter(strings.NewReader("\n   \nhello\n"), &out)

	line, ok := p.ask("> ")
	assert.True(t, ok)
	assert.Equal(t, "hello", line)

	_, ok = p.ask("> ")
	assert.False(t, ok)
}

func TestReviewIn(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	tests := []struct {
		next time.Time
		want string
	}{
		{now, "now"},
		{now.Add(-50 * time.Hour), "overdue 2d"},
		{now.Add(90 * time.Minute), "in 2h"},
		{now.Add(72 * time.Hour), "in 3d"},
		{now.Add(73 * time.Hour), "in 4d"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, reviewIn(&concept.Concept{NextReview: tt.next}, now))
	}
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "abcd…", truncate("abcdefgh", 5))
	assert.Equal(t, "héll…", truncate("héllo wörld", 5))
}

var ansi = regexp.MustCompile(`\x1b\[[0-9;]*m`)

// cli runs the root command against a temporary database with the mock
// LLM provider, which has no canned replies, so every model call falls
// back.
type cli struct {
	t      *testing.T
	db     string
	config string
}

func newCLI(t *testing.T) *cli {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	t.Setenv("STUDYAGENT_DB", "")
	t.Setenv("STUDYAGENT_CONFIG", "")
	t.Setenv("STUDYAGENT_LLM_PROVIDER", "mock")
	t.Chdir(dir)

	cfg := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(cfg, []byte("llm:\n  retry_attempts: 0\n  breaker: false\nlog:\n  level: error\n"), 0o600))
	return &cli{t: t, db: filepath.Join(dir, "study.db"), config: cfg}
}

func (c *cli) run(stdin string, args ...string) string {
	c.t.Helper()
	var out bytes.Buffer
	rootCmd.SetArgs(append(args, "--db", c.db, "--config", c.config))
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	require.NoError(c.t, rootCmd.ExecuteContext(context.Background()), out.String())
	return ansi.ReplaceAllString(out.String(), "")
}

func (c *cli) runErr(args ...string) error {
	c.t.Helper()
	rootCmd.SetArgs(append(args, "--db", c.db, "--config", c.config))
	rootCmd.SetIn(strings.NewReader(""))
	rootCmd.SetOut(io.Discard)
	rootCmd.SetErr(io.Discard)
	return rootCmd.ExecuteContext(context.Background())
}

var idPattern = regexp.MustCompile(`[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}`)

func TestCLI_AddReviewStudy(t *testing.T) {
	c := newCLI(t)

	out := c.run("", "add", "Binary Search", "--content", "Halve a sorted range each step.")
	assert.Contains(t, out, "Added Binary Search")
	id := idPattern.FindString(out)
	require.NotEmpty(t, id)

	out = c.run("", "due")
	assert.Contains(t, out, "Binary Search")

	out = c.run("it halves the search space every time\n", "review", "--count", "3")
	assert.Contains(t, out, "What can you tell me about Binary Search?")
	assert.Contains(t, out, "Partially correct")
	assert.Contains(t, out, "Nothing due")
	assert.Contains(t, out, "Summary: 1/1 correct")

	out = c.run("", "history", id)
	assert.Contains(t, out, "practice")

	out = c.run("it works because the range is sorted\ndone\n", "study", id)
	assert.Contains(t, out, "Conversation finished: 1 replies")

	out = c.run("", "progress")
	assert.Contains(t, out, "1 concepts")

	out = c.run("", "llm", "list")
	assert.Contains(t, out, "question")

	out = c.run("", "llm", "list", "--purpose", "extract")
	assert.Contains(t, out, "No LLM events found.")

	err := c.runErr("llm", "list", "--purpose", "question-gen")
	assert.ErrorContains(t, err, `unknown purpose "question-gen"`)
}

func TestCLI_AddSectionsFromFile(t *testing.T) {
	c := newCLI(t)
	notes := filepath.Join(t.TempDir(), "notes.md")
	require.NoError(t, os.WriteFile(notes, []byte("# Stacks\nLIFO.\n# Queues\nFIFO.\n"), 0o600))

	out := c.run("", "add-sections", "Linear Structures", "--file", notes)
	assert.Contains(t, out, "with 2 sections")
	assert.Contains(t, out, "1. Stacks")
	assert.Contains(t, out, "2. Queues")

	out = c.run("", "list")
	assert.Contains(t, out, "Linear Structures")
	assert.Contains(t, out, "UNKNOWN")
}
