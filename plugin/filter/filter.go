// Package filter evaluates the user-supplied reply rule: a CEL
// expression over sender, subject, and body deciding whether an
// incoming email gets an auto-drafted reply.
package filter

import (
	"github.com/google/cel-go/cel"
	"github.com/pkg/errors"
)

// ReplyRule is a compiled reply-rule expression.
type ReplyRule struct {
	program cel.Program
}

// Compile builds a rule from CEL source. An empty source is the
// match-everything rule. A compile error is a startup error; rules are
// never compiled per email.
func Compile(source string) (*ReplyRule, error) {
	if source == "" {
		return &ReplyRule{}, nil
	}

	env, err := cel.NewEnv(
		cel.Variable("sender", cel.StringType),
		cel.Variable("subject", cel.StringType),
		cel.Variable("body", cel.StringType),
	)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create reply rule environment")
	}

	ast, issues := env.Compile(source)
	if issues != nil && issues.Err() != nil {
		return nil, errors.Wrapf(issues.Err(), "invalid reply rule %q", source)
	}
	if ast.OutputType() != cel.BoolType {
		return nil, errors.Errorf("reply rule %q must evaluate to a boolean", source)
	}

	program, err := env.Program(ast)
	if err != nil {
		return nil, errors.Wrap(err, "failed to build reply rule program")
	}
	return &ReplyRule{program: program}, nil
}

// Match evaluates the rule for one email. An eval error skips the
// email; the caller logs it.
func (r *ReplyRule) Match(sender, subject, body string) (bool, error) {
	if r.program == nil {
		return true, nil
	}

	out, _, err := r.program.Eval(map[string]any{
		"sender":  sender,
		"subject": subject,
		"body":    body,
	})
	if err != nil {
		return false, errors.Wrap(err, "reply rule evaluation failed")
	}

	matched, ok := out.Value().(bool)
	if !ok {
		return false, errors.Errorf("reply rule returned %T, want bool", out.Value())
	}
	return matched, nil
}
