package compiler

import (
	"strings"

	"github.com/aretw0/automata/pkg/domain"
)

const arrow = "->"

// Parser converts raw transition text into a domain.Relation.
type Parser struct{}

// NewParser creates a new parser instance.
func NewParser() *Parser {
	return &Parser{}
}

// Parse reads one rule per line. Whitespace is insignificant and blank lines
// are skipped. The first line that does not follow the grammar of kind is
// reported as a *domain.MalformedTransitionError.
//
//	FSA: <state>,<symbol>-><state>
//	PDA: <state>,<symbol>,<stackTop>-><state>,<pushString>
func (p *Parser) Parse(kind domain.Kind, text string) (*domain.Relation, error) {
	var rules []domain.Rule

	for i, raw := range strings.Split(text, "\n") {
		original := strings.TrimSpace(raw)
		line := domain.StripSpace(original)
		if line == "" {
			continue
		}

		var (
			rule   domain.Rule
			reason string
		)
		switch kind {
		case domain.KindFSA:
			rule, reason = parseFSA(line)
		case domain.KindPDA:
			rule, reason = parsePDA(line)
		default:
			reason = "unknown automaton kind " + string(kind)
		}
		if reason != "" {
			return nil, &domain.MalformedTransitionError{Line: i + 1, Text: original, Reason: reason}
		}

		rule.Line = i + 1
		rule.Text = original
		rules = append(rules, rule)
	}

	return domain.NewRelation(kind, rules), nil
}

// Format renders a relation back to canonical text, one rule per line.
// Parsing the result yields a relation equal to r.
func Format(r *domain.Relation) string {
	rules := r.Rules()
	lines := make([]string, len(rules))
	for i, rule := range rules {
		lines[i] = rule.Canonical(r.Kind())
	}
	return strings.Join(lines, "\n")
}

func parseFSA(line string) (domain.Rule, string) {
	if strings.Count(line, arrow) != 1 {
		return domain.Rule{}, "expected exactly one '->'"
	}
	if strings.Count(line, ",") != 1 {
		return domain.Rule{}, "expected exactly one ','"
	}

	left, to, _ := strings.Cut(line, arrow)
	from, symbol, ok := strings.Cut(left, ",")
	if !ok {
		return domain.Rule{}, "expected '<state>,<symbol>' before '->'"
	}
	if from == "" || symbol == "" || to == "" {
		return domain.Rule{}, "empty field"
	}

	return domain.Rule{
		Key:    domain.Key{State: from, Input: domain.NormalizeSymbol(symbol)},
		Target: domain.Target{State: to},
	}, ""
}

func parsePDA(line string) (domain.Rule, string) {
	if strings.Count(line, arrow) != 1 {
		return domain.Rule{}, "expected exactly one '->'"
	}

	left, right, _ := strings.Cut(line, arrow)
	lhs := strings.Split(left, ",")
	if len(lhs) != 3 {
		return domain.Rule{}, "expected '<state>,<symbol>,<stackTop>' before '->'"
	}
	rhs := strings.Split(right, ",")
	if len(rhs) != 2 {
		return domain.Rule{}, "expected '<state>,<pushString>' after '->'"
	}
	if lhs[0] == "" || lhs[1] == "" || lhs[2] == "" || rhs[0] == "" {
		return domain.Rule{}, "empty field"
	}

	push := rhs[1]
	if push == "" {
		push = domain.Epsilon
	}

	return domain.Rule{
		Key: domain.Key{
			State:    lhs[0],
			Input:    domain.NormalizeSymbol(lhs[1]),
			StackTop: domain.NormalizeSymbol(lhs[2]),
		},
		Target: domain.Target{
			State: rhs[0],
			Push:  domain.NormalizeSymbol(push),
		},
	}, ""
}
