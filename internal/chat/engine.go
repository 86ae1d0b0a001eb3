package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/dvloznov/finance-chat/internal/analytics"
	"github.com/dvloznov/finance-chat/internal/assistant"
	"github.com/dvloznov/finance-chat/internal/domain"
	"github.com/dvloznov/finance-chat/internal/goals"
	"github.com/dvloznov/finance-chat/internal/money"
	"github.com/dvloznov/finance-chat/internal/parser"
	"github.com/dvloznov/finance-chat/internal/session"
)

// ErrUnknownAction is returned by HandleAction for an unsupported action kind.
var ErrUnknownAction = errors.New("unknown action")

// AudioReply acknowledges voice notes until transcription exists.
const AudioReply = "Áudio recebido! Funcionalidade de transcrição será implementada em breve."

const recentLimit = 5

var replyEndings = [...]string{
	"Seguimos com mais clareza.",
	"Passo registrado, seguimos firmes.",
	"Mais um passo para o controle.",
	"Boa decisao em manter visibilidade.",
}

// Reply is what the engine produced for one user input.
type Reply struct {
	Intent Intent `json:"intent"`
	// Messages are the assistant messages already appended to the transcript.
	Messages []domain.Message `json:"messages"`
	// Prompt is set when the input must be answered by the external
	// assistant; it already carries the financial context.
	Prompt string `json:"prompt,omitempty"`
	// Suggestion pre-fills the user's next input.
	Suggestion string `json:"suggestion,omitempty"`
}

// Forwarded reports whether the reply still needs the assistant.
func (r Reply) Forwarded() bool {
	return r.Prompt != ""
}

// Config holds the engine collaborators. Classifier and Completer may be nil.
type Config struct {
	Parser           *parser.ExpenseParser
	Classifier       assistant.Classifier
	Completer        assistant.Completer
	ClassifyTimeout  time.Duration
	AssistantTimeout time.Duration
	Log              zerolog.Logger
}

// Engine dispatches chat input over a session.
type Engine struct {
	parser           *parser.ExpenseParser
	classifier       assistant.Classifier
	completer        assistant.Completer
	classifyTimeout  time.Duration
	assistantTimeout time.Duration
	log              zerolog.Logger
}

// NewEngine creates an engine.
func NewEngine(cfg Config) *Engine {
	p := cfg.Parser
	if p == nil {
		p = parser.NewExpenseParser(nil, nil)
	}
	completer := cfg.Completer
	if completer == nil {
		completer = assistant.Unavailable{}
	}
	return &Engine{
		parser:           p,
		classifier:       cfg.Classifier,
		completer:        completer,
		classifyTimeout:  cfg.ClassifyTimeout,
		assistantTimeout: cfg.AssistantTimeout,
		log:              cfg.Log,
	}
}

// Handle records the user text and runs the first matching branch. When
// the text is neither a command nor a transaction the reply is Forwarded
// and the caller decides how to reach the assistant (Ask or a job).
func (e *Engine) Handle(ctx context.Context, sess *session.Session, text string) Reply {
	match := Route(text)
	now := sess.Now()
	sess.AppendMessages(domain.NewTextMessage(domain.RoleUser, match.Text, now))

	log := e.log.With().Str("session_id", sess.ID).Str("intent", match.Intent.String()).Logger()
	log.Debug().Msg("Routed message")

	var texts []string
	var actions map[int][]domain.Action

	switch match.Intent {
	case IntentGoalDeposit:
		texts = []string{e.deposit(sess, match.Deposit, log)}

	case IntentUndoLast:
		tx, err := sess.UndoLast()
		if err != nil {
			texts = []string{"Ainda nao ha lancamentos para desfazer."}
			break
		}
		texts = []string{fmt.Sprintf("Desfeito: %s. Valor %s.", tx.Description, money.FormatBRL(tx.Amount))}

	case IntentCorrectLast:
		if match.AmountErr != nil {
			texts = []string{"Nao identifiquei o valor para correcao."}
			break
		}
		tx, err := sess.CorrectLast(match.Amount.Float())
		if err != nil {
			texts = []string{"Ainda nao ha lancamentos para corrigir."}
			break
		}
		texts = []string{fmt.Sprintf("Corrigido: %s. Novo valor %s.", tx.Description, money.FormatBRL(tx.Amount))}

	case IntentSummary:
		t := analytics.ComputeTotals(sess.Entries())
		texts = []string{fmt.Sprintf("Resumo do momento: %s de gastos, %s de entradas, saldo %s.",
			money.FormatBRL(t.Spent), money.FormatBRL(t.Income), money.FormatBRL(t.Balance))}

	case IntentRecent:
		texts = []string{recentReport(sess.Recent(recentLimit))}

	case IntentLeaks:
		texts = []string{leakReport(analytics.DetectLeaks(sess.Entries(), now))}

	case IntentScenario:
		if match.AmountErr != nil {
			texts = []string{"Nao identifiquei o valor para o cenario."}
			break
		}
		v := match.Amount.Float()
		texts = []string{fmt.Sprintf("Cenario: reduzir %s por mes.\nEm 6 meses: %s.\nEm 12 meses: %s.",
			money.FormatBRL(v), money.FormatBRL(v*6), money.FormatBRL(v*12))}

	case IntentScenarioQuestion:
		texts = []string{"Quer que eu simule? Diga um valor, por exemplo: reduzir 200 por mes."}

	case IntentGoal:
		draft, err := goals.NewDraft(match.Text)
		if err != nil {
			texts = []string{"Entendi sua meta. Para registrar, me diga um valor. Exemplo: quero guardar 300 por mes."}
			break
		}
		sess.ProposeGoal(draft)
		texts = []string{
			"Detectei um objetivo financeiro. Quer que eu registre essa meta agora?",
			fmt.Sprintf("Meta sugerida: %s na categoria %s, valor %s.", draft.Title, draft.Category, money.FormatBRL(draft.Target)),
		}
		actions = map[int][]domain.Action{
			1: {{Label: "Lançar", Kind: domain.ActionSaveGoal, GoalID: draft.ID}},
		}

	case IntentTransaction:
		tx, err := e.parser.Parse(match.Text)
		if err != nil {
			if !errors.Is(err, parser.ErrNoMatch) {
				log.Warn().Err(err).Msg("Unexpected parse failure")
			}
			return Reply{Intent: match.Intent, Prompt: e.prompt(sess, match.Text)}
		}
		texts = e.record(ctx, sess, tx, match.Text, log)
	}

	msgs := make([]domain.Message, len(texts))
	for i, t := range texts {
		msgs[i] = domain.NewTextMessage(domain.RoleAssistant, t, now, actions[i]...)
	}
	sess.AppendMessages(msgs...)
	return Reply{Intent: match.Intent, Messages: msgs}
}

func (e *Engine) deposit(sess *session.Session, req goals.DepositRequest, log zerolog.Logger) string {
	if !req.Valid() {
		return "Nao identifiquei o valor do aporte."
	}
	value := req.Amount.Float()
	g, _, err := sess.Deposit(req.GoalName, value)
	switch {
	case errors.Is(err, goals.ErrInvalidTarget):
		return fmt.Sprintf("A meta %s nao tem um valor alvo definido. Atualize o valor da meta antes do aporte.", g.Title)
	case err != nil:
		if !errors.Is(err, session.ErrGoalNotFound) {
			log.Warn().Err(err).Msg("Deposit failed")
		}
		return "Nao encontrei uma meta para aplicar esse valor."
	}
	return fmt.Sprintf("Aporte de %s aplicado na meta %s. Progresso atualizado e registrado como gasto.", money.FormatBRL(value), g.Title)
}

// record asks the classifier for a second opinion, stores the entry and
// returns the confirmation texts.
func (e *Engine) record(ctx context.Context, sess *session.Session, tx domain.Transaction, text string, log zerolog.Logger) []string {
	var texts []string
	if suggested, ok := e.suggestCategory(ctx, text, log); ok && suggested != tx.Category {
		texts = append(texts, fmt.Sprintf("Categoria sugerida pela IA: %s.", suggested))
		tx = parser.WithCategory(tx, suggested)
	}

	stored, before := sess.Record(tx)
	log.Info().
		Str("transaction_id", stored.ID).
		Str("category", stored.Category).
		Float64("amount", stored.Amount).
		Msg("Recorded transaction")

	label := "Despesa"
	if stored.IsIncome() {
		label = "Receita"
	}
	ending := replyEndings[stored.Seq%uint64(len(replyEndings))]
	texts = append(texts,
		fmt.Sprintf("%s lancada: %s em %s. %s", label, money.FormatBRL(stored.Amount), stored.Category, ending),
		goals.ImpactNote(before, stored, sess.Goals()),
	)
	return texts
}

// suggestCategory returns the classifier's pick, if any, within the
// classification timeout.
func (e *Engine) suggestCategory(ctx context.Context, text string, log zerolog.Logger) (string, bool) {
	if e.classifier == nil {
		return "", false
	}
	req := assistant.Start(ctx, e.classifyTimeout, func(ctx context.Context) (string, error) {
		return e.classifier.Classify(ctx, text)
	})
	category, err := req.Wait()
	if err != nil {
		log.Debug().Err(err).Msg("No category suggestion")
		return "", false
	}
	return category, true
}

func (e *Engine) prompt(sess *session.Session, text string) string {
	snap := sess.Snapshot()
	return analytics.AssistantPrompt(analytics.ContextSummary(snap.Entries, snap.Goals), text)
}

// Ask sends a forwarded prompt to the assistant and appends its answer to
// the transcript. With onChunk set the answer is streamed. Any failure is
// answered with the fixed unavailable message; calls are never retried.
func (e *Engine) Ask(ctx context.Context, sess *session.Session, prompt string, onChunk func(string)) domain.Message {
	req := assistant.Start(ctx, e.assistantTimeout, func(ctx context.Context) (string, error) {
		if onChunk == nil {
			return e.completer.Complete(ctx, prompt)
		}
		var b strings.Builder
		err := e.completer.Stream(ctx, prompt, func(chunk string) {
			b.WriteString(chunk)
			onChunk(chunk)
		})
		return strings.TrimSpace(b.String()), err
	})

	text, err := req.Wait()
	text = strings.TrimSpace(text)
	if err != nil || text == "" {
		e.log.Warn().Err(err).Str("session_id", sess.ID).Msg("Assistant unavailable")
		text = assistant.UnavailableMessage
	}

	msg := domain.NewTextMessage(domain.RoleAssistant, text, sess.Now())
	sess.AppendMessages(msg)
	return msg
}

// Respond handles text and, when needed, asks the assistant right away.
func (e *Engine) Respond(ctx context.Context, sess *session.Session, text string, onChunk func(string)) Reply {
	reply := e.Handle(ctx, sess, text)
	if reply.Forwarded() {
		reply.Messages = append(reply.Messages, e.Ask(ctx, sess, reply.Prompt, onChunk))
	}
	return reply
}

// HandleAction runs a message button.
func (e *Engine) HandleAction(sess *session.Session, action domain.Action) (Reply, error) {
	now := sess.Now()
	switch action.Kind {
	case domain.ActionSaveGoal:
		g, err := sess.ConfirmDraft(action.GoalID)
		if err != nil {
			return Reply{}, fmt.Errorf("HandleAction: %w", err)
		}
		plan := goals.BuildPlan(g)
		msgs := []domain.Message{
			domain.NewTextMessage(domain.RoleAssistant,
				fmt.Sprintf("Meta registrada: %s na categoria %s de %s.", g.Title, g.Category, money.FormatBRL(g.Target)), now),
			domain.NewTextMessage(domain.RoleAssistant, plan.Text, now, plan.Action),
		}
		sess.AppendMessages(msgs...)
		e.log.Info().Str("session_id", sess.ID).Str("goal_id", g.ID).Msg("Goal confirmed")
		return Reply{Intent: IntentGoal, Messages: msgs}, nil

	case domain.ActionCancelGoal:
		if err := sess.CancelDraft(action.GoalID); err != nil {
			return Reply{}, fmt.Errorf("HandleAction: %w", err)
		}
		msg := domain.NewTextMessage(domain.RoleAssistant, "Tudo bem, a meta nao foi registrada.", now)
		sess.AppendMessages(msg)
		return Reply{Intent: IntentGoal, Messages: []domain.Message{msg}}, nil

	case domain.ActionInitGoalDeposit:
		title := ""
		for _, g := range sess.Goals() {
			if g.ID == action.GoalID {
				title = g.Title
				break
			}
		}
		return Reply{Intent: IntentGoalDeposit, Suggestion: goals.DepositSuggestion(title)}, nil

	default:
		return Reply{}, fmt.Errorf("HandleAction: %q: %w", action.Kind, ErrUnknownAction)
	}
}

// HandleAudio stores a voice note and acknowledges it.
func (e *Engine) HandleAudio(sess *session.Session, body domain.AudioBody) Reply {
	now := sess.Now()
	reply := domain.NewTextMessage(domain.RoleAssistant, AudioReply, now)
	sess.AppendMessages(domain.NewAudioMessage(domain.RoleUser, body, now), reply)
	return Reply{Messages: []domain.Message{reply}}
}

func recentReport(entries []domain.Transaction) string {
	if len(entries) == 0 {
		return "Ainda nao ha lancamentos registrados."
	}
	lines := make([]string, len(entries))
	for i, tx := range entries {
		lines[i] = fmt.Sprintf("%d. %s · %s", i+1, tx.Description, money.FormatBRL(tx.Amount))
	}
	return "Ultimos lancamentos:\n" + strings.Join(lines, "\n")
}

func leakReport(leaks []analytics.Leak) string {
	if len(leaks) == 0 {
		return "Nao encontrei vazamentos claros no ultimo mes. Se quiser, me diga categorias que deseja revisar."
	}
	lines := []string{"## Gastos invisiveis detectados"}
	for i, l := range leaks {
		lines = append(lines, fmt.Sprintf("%d. %s · %d lancamentos · media %s · total %s",
			i+1, l.Category, l.Count, money.FormatBRL(l.Avg), money.FormatBRL(l.Total)))
	}
	lines = append(lines,
		"",
		"[DICA] Teste cortar 20% por 30 dias nessas categorias e compare o resultado.",
		"[PASSO] Quer que eu crie metas de corte automaticas para essas categorias?",
	)
	return strings.Join(lines, "\n")
}
