package tutor

import (
	"bytes"
	"strings"
	"text/template"
)

const historyWindow = 3

var transitionTemplate = template.Must(template.New("transition").Parse(`The student gave a correct answer about {{.Topic}}: "{{.Reply}}"

Recent conversation:
{{.History}}

The student has shown they understand this aspect. Write a response that:
1. Acknowledges they are correct
2. Moves on to a NEW related aspect of {{.Topic}}
3. Makes the topic change clear (e.g. "Great! Now let's explore...")
4. Asks exactly ONE question about the new aspect
5. Stays conversational and encouraging

Study Material for reference:
{{.Material}}

Respond in 2-3 sentences at most, as a tutor.
`))

var followUpTemplate = template.Must(template.New("follow-up").Parse(`The student gave a correct answer about {{.Topic}}: "{{.Reply}}"

Recent conversation:
{{.History}}

Write a brief, encouraging response that:
1. Acknowledges they are correct
2. Asks exactly ONE new follow-up question
3. Does not repeat any question already asked in the conversation

Study Material for reference:
{{.Material}}

Respond in 1-2 sentences at most, as a tutor.
`))

var hintTemplate = template.Must(template.New("hint").Parse(`The student gave an incomplete answer about {{.Topic}}: "{{.Reply}}"

Recent conversation:
{{.History}}

Write a brief, gentle hint that:
1. Focuses on ONE specific aspect they should think about
2. Uses a phrase like "think about..." or "consider..."
3. Does not repeat hints already given in the conversation
4. Is supportive but concise

Study Material for reference:
{{.Material}}

Respond in 1-2 sentences at most, as a helpful tutor.
`))

var answerTemplate = template.Must(template.New("answer").Parse(`The student is asking a question about {{.Topic}}: "{{.Reply}}"

Study Material for reference:
{{.Material}}

Conversation history:
{{.History}}

Give a helpful, clear answer to their question. Then suggest a follow-up question that:
1. Builds on what you just explained
2. Tests their understanding of it
3. Keeps the learning momentum going

Format your reply as:
Answer: [your explanation]
Follow-up: [a question to test their understanding]
`))

type promptData struct {
	Topic    string
	Reply    string
	History  string
	Material string
}

func render(t *template.Template, data promptData) string {
	var buf bytes.Buffer
	_ = t.Execute(&buf, data)
	return strings.TrimSpace(buf.String())
}

// parseAnswer extracts the Answer: and Follow-up: lines of a reply.
func parseAnswer(reply string) (answer, followUp string) {
	for _, line := range strings.Split(reply, "\n") {
		line = strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(line, "Answer:"):
			answer = strings.TrimSpace(strings.TrimPrefix(line, "Answer:"))
		case strings.HasPrefix(line, "Follow-up:"):
			followUp = strings.TrimSpace(strings.TrimPrefix(line, "Follow-up:"))
		}
	}
	return answer, followUp
}
