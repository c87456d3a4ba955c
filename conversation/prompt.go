package conversation

import "strings"

// DefaultPromptTemplate is the two-slot template every generation request is
// built from. {historial} receives the rendered transcript, {pregunta} the
// new user utterance.
const DefaultPromptTemplate = "Historial: {historial}\nUsuario: {pregunta}\nRespuesta:"

// PromptBuilder substitutes a transcript and an utterance into a fixed
// template. Pure: the same inputs always yield the same prompt.
type PromptBuilder struct {
	template string
}

func NewPromptBuilder() *PromptBuilder {
	return &PromptBuilder{template: DefaultPromptTemplate}
}

// NewPromptBuilderWithTemplate uses a custom template. The template must
// contain the {historial} and {pregunta} slots.
func NewPromptBuilderWithTemplate(template string) *PromptBuilder {
	if template == "" {
		template = DefaultPromptTemplate
	}
	return &PromptBuilder{template: template}
}

// Build fills both slots. Whitespace and empty strings pass through
// unchanged; validating the utterance is the caller's job.
func (p *PromptBuilder) Build(transcript, utterance string) string {
	r := strings.NewReplacer(
		"{historial}", transcript,
		"{pregunta}", utterance,
	)
	return r.Replace(p.template)
}
