package models

const (
	// FallbackAnswer is what the model is instructed to reply when the
	// retrieved context does not contain the answer.
	FallbackAnswer = "I don't know based on the documents."

	ContextSeparator = "\n\n"
)

var (
	AnswerPromptTemplate = `Answer based ONLY on the context below.
If you don't know, say "` + FallbackAnswer + `"

Context:
{{.context}}

Question:
{{.question}}

Answer:
`
)
