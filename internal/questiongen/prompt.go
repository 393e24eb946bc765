package questiongen

import (
	"fmt"
	"strings"

	"github.com/abhisek/studyagent/internal/concept"
)

const conceptGuidelines = `Question type guidelines:
- recall: test memory of facts and basic understanding
- application: test applying the idea to a new situation
- synthesis: test combining ideas into new understanding

Difficulty guidelines:
- basic: fundamental definitions
- intermediate: links between ideas and simple applications
- advanced: complex applications and analysis
- expert: creative synthesis and open problem solving`

const labeledFormat = `Format your reply as:
Question: <the question>
Expected Answer: <a short reference answer or key points>`

// buildConceptPrompt asks for a question over a whole concept.
func buildConceptPrompt(c *concept.Concept, qtype string, d concept.Difficulty) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Using the study material below about %s, write one %s question at %s difficulty.\n\n",
		c.Name, qtype, strings.ToLower(d.String()))
	b.WriteString("Study material:\n")
	b.WriteString(c.Content)
	b.WriteString("\n\n")
	b.WriteString(conceptGuidelines)
	b.WriteString("\n\n")
	b.WriteString(labeledFormat)
	b.WriteString("\n")

	return b.String()
}

// buildSectionPrompt asks for a targeted question over one notes section.
func buildSectionPrompt(s concept.Section, qtype string, d concept.Difficulty) string {
	var b strings.Builder

	fmt.Fprintf(&b, "You are writing a targeted study question about: %s\n\n", s.Title)
	b.WriteString("Notes for this section:\n")
	b.WriteString(s.Content)
	b.WriteString("\n\n")
	fmt.Fprintf(&b, "Question type: %s\n", qtype)
	fmt.Fprintf(&b, "Difficulty: %s\n\n", d)
	b.WriteString("The question must:\n")
	b.WriteString("1. Test ONE key idea from this section\n")
	fmt.Fprintf(&b, "2. Suit the %s level\n", strings.ToLower(d.String()))
	b.WriteString("3. Be answerable from the notes alone\n")
	b.WriteString("4. Avoid generic \"what can you tell me about\" phrasing\n")
	b.WriteString("5. Ask about specific facts, definitions or mechanisms\n\n")
	b.WriteString("Good targeted questions look like \"What are the main components of X?\", ")
	b.WriteString("\"How does X differ from Y?\" or \"When would you use Z instead of W?\"\n\n")
	b.WriteString(labeledFormat)
	b.WriteString("\n")

	return b.String()
}

// buildPlainPrompt asks for a bare question with no reference answer.
func buildPlainPrompt(c *concept.Concept, d concept.Difficulty) string {
	var b strings.Builder

	b.WriteString("You write study questions for active recall.\n")
	fmt.Fprintf(&b, "Write one %s question about the concept below.\n\n", strings.ToLower(d.String()))
	b.WriteString("- basic: simple factual questions (What is...? Define...)\n")
	b.WriteString("- intermediate and advanced: applying the idea (How would you use...?)\n")
	b.WriteString("- expert: analysis (Compare and contrast... What are the implications...?)\n\n")
	b.WriteString("Reply with the question text only.\n\n")
	fmt.Fprintf(&b, "Concept: %s\n", c.Name)
	fmt.Fprintf(&b, "Details: %s\n", c.Content)

	return b.String()
}
