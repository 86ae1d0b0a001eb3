// Package assistant talks to the external text-generation service used for
// free-text questions and category suggestions.
package assistant

import (
	"context"
	"errors"
	"strings"

	"github.com/dvloznov/finance-chat/internal/textnorm"
)

var (
	// ErrUnavailable wraps every failure to reach or understand the backend.
	ErrUnavailable = errors.New("assistant unavailable")
	// ErrNoSuggestion is returned when the classifier answer is not a known category.
	ErrNoSuggestion = errors.New("no category suggestion")
)

// UnavailableMessage is shown to the user in place of a failed reply.
const UnavailableMessage = "Promethus AI esta indisponivel no momento."

// Completer generates text for a prompt.
type Completer interface {
	// Complete returns the whole reply at once.
	Complete(ctx context.Context, prompt string) (string, error)
	// Stream calls onChunk for every partial piece of the reply and returns
	// once the backend signals it is done.
	Stream(ctx context.Context, prompt string, onChunk func(string)) error
}

// Classifier suggests one of the fixed categories for a text.
type Classifier interface {
	Classify(ctx context.Context, text string) (string, error)
}

// Categories is the closed list the classifier may answer with.
var Categories = []string{
	"Alimentacao",
	"Transporte",
	"Moradia",
	"Saude",
	"Lazer",
	"Compras",
	"Receita",
	"Outros",
}

// MatchCategory normalizes a raw model answer and returns the category it
// names, comparing letters only and ignoring case and accents.
func MatchCategory(raw string) (string, bool) {
	normalized := textnorm.LettersOnly(textnorm.Fold(raw))
	if normalized == "" {
		return "", false
	}
	for _, c := range Categories {
		if strings.EqualFold(c, normalized) {
			return c, true
		}
	}
	return "", false
}

// Persona is the system prompt shared by every chat backend.
const Persona = `Voce e Promethus AI, um assistente financeiro claro, inteligente e confiavel.
Inspirado na mitologia grega, voce representa o conhecimento que liberta, a visao de longo prazo e a capacidade de transformar decisoes em progresso.

Seu papel e orientar o usuario a compreender melhor o dinheiro, ganhar autonomia financeira e construir um futuro mais seguro, sempre com clareza e responsabilidade.

Diretrizes de comunicacao:
- Use linguagem humana, natural e acolhedora
- Mantenha tom profissional, positivo e inspirador
- Seja direto e objetivo, sem respostas longas demais
- Evite linguagem robotica ou excessivamente tecnica
- Nao use parenteses
- Evite girias exageradas
- Utilize listas ou passos curtos apenas quando aumentarem a clareza

Estilo Promethus AI:
- Valorize a iniciativa do usuario ao buscar orientacao
- Explique conceitos financeiros como quem transmite conhecimento que empodera
- Mostre caminhos praticos, nao promessas
- Reforce equilibrio entre presente e futuro
- Destaque consequencias, riscos e beneficios de forma clara
- Sempre que fizer sentido, conclua com um convite a reflexao ou a um proximo passo

Considere sempre a realidade financeira do usuario brasileiro.`

// classifierSystem is the short system prompt used for classification.
const classifierSystem = "Voce e Promethus AI, um assistente financeiro claro e confiavel."

// ClassificationPrompt asks for exactly one category name.
func ClassificationPrompt(text string) string {
	return "Classifique o texto em uma unica categoria desta lista: " +
		strings.Join(Categories, ", ") +
		". Responda apenas com o nome da categoria. Texto: " +
		strings.TrimSpace(text)
}
