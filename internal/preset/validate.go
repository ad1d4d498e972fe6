package preset

import (
	"strings"

	egvis "github.com/zontasticality/egraph-vis"
	"github.com/zontasticality/egraph-vis/internal/pattern"
)

// Validate runs every procedural check a JSON Schema can't express: root
// groundness, arity consistency across the preset's own patterns, duplicate
// rule names, illegal "?"-named structural ops, and RHS-binds-only-LHS-
// variables for every rewrite rule.
func Validate(p *Preset) error {
	if err := checkRootIsGround(p.Root); err != nil {
		return err
	}
	if err := checkArityConsistency(p); err != nil {
		return err
	}
	if err := checkDuplicateRuleNames(p.Rewrites); err != nil {
		return err
	}
	if err := checkIllegalNames(p); err != nil {
		return err
	}
	for _, rule := range p.Rewrites {
		if err := pattern.ValidateRule(rule.Name, rule.LHS, rule.RHS); err != nil {
			return egvis.Wrap(egvis.ErrPresetValidation, "rewrite rule \""+rule.Name+"\" failed validation", err)
		}
	}
	return nil
}

// checkRootIsGround rejects a root pattern containing a pattern variable:
// root must have no free variables except the leaves it's built from, and
// those leaves are expressed as nullary ops, not variables - see ingest.go.
func checkRootIsGround(root pattern.Pattern) error {
	var walk func(pattern.Pattern) error
	walk = func(p pattern.Pattern) error {
		if p.IsVariable() {
			return egvis.NewPresetValidation("root must not contain pattern variable %q; use a distinct leaf op name instead", p.Var)
		}
		for _, a := range p.Args {
			if err := walk(a); err != nil {
				return err
			}
		}
		return nil
	}
	return walk(root)
}

// checkArityConsistency rejects a preset where the same structural op name
// appears with two different arities anywhere across root and every rule's
// LHS/RHS - ambiguous for a viewer rendering op nodes uniformly.
func checkArityConsistency(p *Preset) error {
	arities := make(map[string]int)
	var walk func(pattern.Pattern) error
	walk = func(pat pattern.Pattern) error {
		if pat.IsVariable() {
			return nil
		}
		if existing, ok := arities[pat.Op]; ok && existing != len(pat.Args) {
			return egvis.NewPresetValidation("op %q used with inconsistent arity (%d and %d)", pat.Op, existing, len(pat.Args))
		}
		arities[pat.Op] = len(pat.Args)
		for _, a := range pat.Args {
			if err := walk(a); err != nil {
				return err
			}
		}
		return nil
	}
	if err := walk(p.Root); err != nil {
		return err
	}
	for _, rule := range p.Rewrites {
		if err := walk(rule.LHS); err != nil {
			return err
		}
		if err := walk(rule.RHS); err != nil {
			return err
		}
	}
	return nil
}

func checkDuplicateRuleNames(rules []pattern.Rule) error {
	seen := make(map[string]bool, len(rules))
	for _, r := range rules {
		if seen[r.Name] {
			return egvis.NewPresetValidation("duplicate rewrite rule name %q", r.Name)
		}
		seen[r.Name] = true
	}
	return nil
}

// checkIllegalNames rejects a structural op whose name starts with "?": that
// prefix is reserved for pattern variables, and a struct-form pattern
// ({"op": "?x", "args": [...]}) can smuggle one past the string-decoding
// path that would otherwise treat a bare "?x" as a variable.
func checkIllegalNames(p *Preset) error {
	var walk func(pattern.Pattern) error
	walk = func(pat pattern.Pattern) error {
		if pat.IsVariable() {
			return nil
		}
		if strings.HasPrefix(pat.Op, "?") {
			return egvis.NewPresetValidation("structural op %q must not start with %q, reserved for pattern variables", pat.Op, "?")
		}
		for _, a := range pat.Args {
			if err := walk(a); err != nil {
				return err
			}
		}
		return nil
	}
	if err := walk(p.Root); err != nil {
		return err
	}
	for _, rule := range p.Rewrites {
		if err := walk(rule.LHS); err != nil {
			return err
		}
		if err := walk(rule.RHS); err != nil {
			return err
		}
	}
	return nil
}
