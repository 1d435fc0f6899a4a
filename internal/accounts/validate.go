package accounts

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/cleared-dev/ledgerbook/internal/model"
)

// Violation is a single chart problem found by Validate.
type Violation struct {
	Name string
	Err  error
}

func (v Violation) Error() string {
	return fmt.Sprintf("%s: %q", v.Err, v.Name)
}

func (v Violation) Unwrap() error { return v.Err }

// ChartError aggregates every violation found in a chart.
type ChartError struct {
	Violations []Violation
}

func (e *ChartError) Error() string {
	msgs := make([]string, len(e.Violations))
	for i, v := range e.Violations {
		msgs[i] = v.Error()
	}
	return "invalid chart: " + strings.Join(msgs, "; ")
}

// Unwrap lets errors.Is match any violation's sentinel.
func (e *ChartError) Unwrap() []error {
	errs := make([]error, len(e.Violations))
	for i, v := range e.Violations {
		errs[i] = v
	}
	return errs
}

// Names returns the account names involved in violations.
func (e *ChartError) Names() []string {
	names := make([]string, len(e.Violations))
	for i, v := range e.Violations {
		names[i] = v.Name
	}
	return names
}

// Validate re-checks global name uniqueness, name syntax, special accounts
// and contra targets. It reports every violation, not just the first.
func (c *Chart) Validate() error {
	var violations []Violation
	add := func(name string, err error) {
		violations = append(violations, Violation{Name: name, Err: err})
	}

	seen := make(map[string]bool)
	check := func(name string) {
		if err := checkName(name); err != nil {
			add(name, err)
			return
		}
		if seen[name] {
			add(name, ErrDuplicateAccount)
			return
		}
		seen[name] = true
	}

	for _, cat := range Categories {
		for _, name := range *c.list(cat) {
			check(name)
		}
	}
	check(c.RetainedEarnings)
	check(c.IncomeSummary)
	check(c.Null)

	targets := make(map[string]bool)
	for _, d := range c.Contra {
		if targets[d.Target] {
			add(d.Target, fmt.Errorf("contra accounts declared twice: %w", ErrDuplicateAccount))
		}
		targets[d.Target] = true

		t, declared := c.regularType(d.Target)
		if !declared {
			add(d.Target, fmt.Errorf("contra target: %w", ErrUnknownAccount))
		} else if _, err := model.ContraOf(t); err != nil {
			add(d.Target, err)
		}
		for _, name := range d.Accounts {
			check(name)
		}
	}

	for _, name := range slices.Sorted(maps.Keys(c.Titles)) {
		if !seen[name] {
			add(name, fmt.Errorf("title: %w", ErrUnknownAccount))
		}
	}
	for _, opName := range slices.Sorted(maps.Keys(c.Operations)) {
		op := c.Operations[opName]
		for _, acct := range []string{op.Debit, op.Credit} {
			if !seen[acct] {
				add(acct, fmt.Errorf("operation %s: %w", opName, ErrUnknownAccount))
			}
		}
	}

	c.reindex()
	if len(violations) > 0 {
		return &ChartError{Violations: violations}
	}
	return nil
}

// regularType resolves a name among the regular and retained earnings
// accounts only, the valid contra targets.
func (c *Chart) regularType(name string) (model.AccountType, bool) {
	for _, cat := range Categories {
		for _, n := range *c.list(cat) {
			if n == name {
				return cat.AccountType(), true
			}
		}
	}
	if name == c.RetainedEarnings {
		return model.AccountTypeRetainedEarnings, true
	}
	return "", false
}
