package aggregate

import (
	_ "embed"
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/danielpemor/DashWeb/internal/electoral"
	"github.com/goccy/go-yaml"
)

// Behavior is how a column combines across the records of a unit.
type Behavior int

const (
	Skip Behavior = iota
	Sum
	Mean
)

func (b Behavior) String() string {
	switch b {
	case Sum:
		return "sum"
	case Mean:
		return "mean"
	}
	return "skip"
}

// Rules is the pattern table classifying numeric columns.
type Rules struct {
	SkipPrefixes []string `yaml:"skip_prefixes"`
	Skip         []string `yaml:"skip"`
	Mean         []string `yaml:"mean"`
	Sum          []string `yaml:"sum"`
}

//go:embed rules.yaml
var defaultRules []byte

// DefaultRules returns the built-in rule table.
func DefaultRules() Rules {
	r, err := ParseRules(defaultRules)
	if err != nil {
		panic(fmt.Sprintf("aggregate: embedded rules: %v", err))
	}
	return r
}

// ParseRules decodes a YAML rule table.
func ParseRules(data []byte) (Rules, error) {
	var r Rules
	if err := yaml.Unmarshal(data, &r); err != nil {
		return Rules{}, fmt.Errorf("parse aggregation rules: %w", err)
	}
	return r, nil
}

// LoadRules reads a rule table from path. An empty path yields DefaultRules.
func LoadRules(path string) (Rules, error) {
	if path == "" {
		return DefaultRules(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Rules{}, err
	}
	return ParseRules(data)
}

type compiledRules struct {
	prefixes        []string
	skip, mean, sum []*regexp.Regexp
}

func compileAll(patterns []string) ([]*regexp.Regexp, error) {
	out := make([]*regexp.Regexp, 0, len(patterns))
	for _, p := range patterns {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("rule %q: %w", p, err)
		}
		out = append(out, re)
	}
	return out, nil
}

func (r Rules) compile() (*compiledRules, error) {
	c := &compiledRules{prefixes: r.SkipPrefixes}
	var err error
	if c.skip, err = compileAll(r.Skip); err != nil {
		return nil, err
	}
	if c.mean, err = compileAll(r.Mean); err != nil {
		return nil, err
	}
	if c.sum, err = compileAll(r.Sum); err != nil {
		return nil, err
	}
	return c, nil
}

func matchAny(res []*regexp.Regexp, col string) bool {
	for _, re := range res {
		if re.MatchString(col) {
			return true
		}
	}
	return false
}

func (c *compiledRules) classify(col string) Behavior {
	if electoral.IsIDColumn(col) {
		return Skip
	}
	for _, derived := range electoral.CoalitionColumns {
		if col == derived {
			return Skip
		}
	}
	for _, p := range c.prefixes {
		if strings.HasPrefix(col, p) {
			return Skip
		}
	}
	switch {
	case matchAny(c.skip, col):
		return Skip
	case matchAny(c.mean, col):
		return Mean
	case matchAny(c.sum, col):
		return Sum
	}
	return Skip
}

// Policy is a rule table resolved against one schema: exactly one behavior per column.
type Policy struct {
	behaviors map[string]Behavior
	order     []string
}

// Compile resolves the rules for columns.
func (r Rules) Compile(columns []string) (*Policy, error) {
	c, err := r.compile()
	if err != nil {
		return nil, err
	}
	return c.policy(columns), nil
}

func (c *compiledRules) policy(columns []string) *Policy {
	p := &Policy{behaviors: make(map[string]Behavior, len(columns))}
	for _, col := range columns {
		if _, dup := p.behaviors[col]; dup {
			continue
		}
		p.behaviors[col] = c.classify(col)
		p.order = append(p.order, col)
	}
	return p
}

// Behavior returns the behavior of col; unknown columns are skipped.
func (p *Policy) Behavior(col string) Behavior {
	return p.behaviors[col]
}

// Carried lists the summed and averaged columns in schema order.
func (p *Policy) Carried() []string {
	var out []string
	for _, col := range p.order {
		if p.behaviors[col] != Skip {
			out = append(out, col)
		}
	}
	return out
}
