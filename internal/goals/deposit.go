package goals

import (
	"errors"
	"math"
	"regexp"
	"strings"

	"github.com/dvloznov/finance-chat/internal/domain"
	"github.com/dvloznov/finance-chat/internal/money"
	"github.com/dvloznov/finance-chat/internal/textnorm"
)

// ErrInvalidTarget is returned when a goal has no positive target.
var ErrInvalidTarget = errors.New("goal target must be positive")

var (
	depositPattern  = regexp.MustCompile(`(?:meta|aporte|adicionar|adicione|aplicar)\s*(\d+(?:\.\d+)?(?:,\d+)?)`)
	goalNamePattern = regexp.MustCompile(`(?i)meta\s+(.+)`)
)

// DepositRequest is a parsed "aporte" command.
type DepositRequest struct {
	Amount   money.Amount
	GoalName string
}

// ParseDeposit recognizes a deposit command: a trigger word directly
// followed by a number, in a message that mentions meta, aporte or aplicar.
func ParseDeposit(text string) (DepositRequest, bool) {
	folded := textnorm.Fold(text)
	m := depositPattern.FindStringSubmatch(folded)
	if m == nil || !textnorm.ContainsAny(folded, "meta", "aporte", "aplicar") {
		return DepositRequest{}, false
	}

	req := DepositRequest{}
	if amount, err := money.ExtractAmount(m[1]); err == nil {
		req.Amount = amount
	}
	if nm := goalNamePattern.FindStringSubmatch(strings.TrimSpace(text)); nm != nil {
		req.GoalName = cleanName(strings.Replace(nm[1], m[1], "", 1))
	}
	return req, true
}

// Valid reports whether the request carries a usable positive amount.
func (r DepositRequest) Valid() bool {
	return r.Amount.Value.IsPositive()
}

// FindGoal resolves the deposit target. An empty name picks the first goal,
// otherwise the first goal whose title contains the name.
func FindGoal(goals []domain.Goal, name string) (domain.Goal, bool) {
	if len(goals) == 0 {
		return domain.Goal{}, false
	}
	if name == "" {
		return goals[0], true
	}
	needle := textnorm.Fold(name)
	for _, g := range goals {
		if strings.Contains(textnorm.Fold(g.Title), needle) {
			return g, true
		}
	}
	return domain.Goal{}, false
}

// ApplyDeposit adds value to the saved amount and recomputes progress,
// capped at 100.
func ApplyDeposit(g domain.Goal, value float64) (domain.Goal, error) {
	if g.Target <= 0 {
		return g, ErrInvalidTarget
	}
	saved := g.Saved() + value
	progress := math.Min(money.Round(saved/g.Target*100), 100)
	g.Progress = domain.ClampProgress(int(progress))
	return g, nil
}

// DepositDescription labels the expense entry recording a contribution.
func DepositDescription(g domain.Goal) string {
	return "Aporte meta: " + g.Title
}
