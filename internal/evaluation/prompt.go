package evaluation

import (
	"bytes"
	"strings"
	"text/template"
)

var labeledTemplate = template.Must(template.New("evaluate").Parse(`Question: {{.Question}}
Expected Answer: {{.Expected}}
Student's Answer: {{.Answer}}

Evaluate the student's answer and provide:
1. A score (Correct/Partially Correct/Incorrect)
2. Brief feedback on what was right or wrong
3. Up to 3 hints that guide toward the correct answer if needed

Format your reply as:
Score: [Correct/Partially Correct/Incorrect]
Feedback: [your feedback]
Hints: [hint 1] | [hint 2] | [hint 3]
`))

var scoredTemplate = template.Must(template.New("score").Parse(`You evaluate student answers in an active recall session.

Decide whether the answer is correct, give a score from 0 to 100 and write
feedback on what was good and what could be improved. Be encouraging but
honest. Partial credit is fine.

Question: {{.Question}}

Expected Answer: {{.Expected}}

Student Answer: {{.Answer}}

Concept Context: {{.Context}}
`))

var weaknessTemplate = template.Must(template.New("weakness").Parse(`Identify the specific knowledge gaps or misconceptions in this student's answer.

Question Topic: {{.Topic}}
Expected Answer: {{.Expected}}
Student's Answer: {{.Answer}}

Name up to 3 weakness areas from these categories:
{{range .Areas}}- {{.Name}}
{{end}}
Reply with the weakness areas only, separated by commas.
`))

type promptData struct {
	Question string
	Expected string
	Answer   string
	Context  string
	Topic    string
	Areas    []Area
}

func render(t *template.Template, data promptData) string {
	var buf bytes.Buffer
	// Execute only fails on template bugs.
	_ = t.Execute(&buf, data)
	return strings.TrimSpace(buf.String())
}
