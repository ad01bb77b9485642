// Package apilint checks the exodash OpenAPI document against the project's
// API conventions. It walks gopkg.in/yaml.v3 nodes so findings carry line
// numbers.
package apilint

import (
	"fmt"
	"os"
	"regexp"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Severity levels for lint violations.
type Severity string

// Severity constants.
const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
	SeverityInfo    Severity = "info"
)

var sevRank = map[Severity]int{SeverityInfo: 0, SeverityWarning: 1, SeverityError: 2}

// ParseSeverity validates a severity name.
func ParseSeverity(s string) (Severity, error) {
	sev := Severity(strings.ToLower(s))
	if _, ok := sevRank[sev]; !ok {
		return "", fmt.Errorf("unknown severity %q (use: error, warning, info)", s)
	}
	return sev, nil
}

// Violation is a single lint finding.
type Violation struct {
	File     string
	Line     int
	RuleID   string
	Severity Severity
	Message  string
}

// String formats a violation in golangci-lint style.
func (v Violation) String() string {
	return fmt.Sprintf("%s:%d: %s %s: %s", v.File, v.Line, v.RuleID, v.Severity, v.Message)
}

// Rule is implemented by every lint rule.
type Rule interface {
	ID() string
	Description() string
	DefaultSeverity() Severity
	Check(ctx *LintContext) []Violation
}

var registry []Rule

// Register adds a rule to the registry. Called from init in rules.go.
func Register(r Rule) { registry = append(registry, r) }

// RegisteredRules returns a copy of the registry.
func RegisteredRules() []Rule {
	out := make([]Rule, len(registry))
	copy(out, registry)
	return out
}

// LintContext gives rules read access to the parsed document.
type LintContext struct {
	File string
	Root *yaml.Node
}

// ResolveRef reports whether a local $ref points at an existing node.
// External refs are not checked.
func (ctx *LintContext) ResolveRef(ref string) bool {
	if !strings.HasPrefix(ref, "#/") {
		return true
	}
	node := ctx.Root
	for _, p := range strings.Split(strings.TrimPrefix(ref, "#/"), "/") {
		p = strings.ReplaceAll(strings.ReplaceAll(p, "~1", "/"), "~0", "~")
		node = mapGet(node, p)
		if node == nil {
			return false
		}
	}
	return true
}

// ForEachOperation calls fn for every operation in the document.
func (ctx *LintContext) ForEachOperation(fn func(path, method string, op *yaml.Node)) {
	paths := mapGet(ctx.Root, "paths")
	if paths == nil {
		return
	}
	for i := 0; i < len(paths.Content)-1; i += 2 {
		pathKey := paths.Content[i].Value
		pathItem := paths.Content[i+1]
		for j := 0; j < len(pathItem.Content)-1; j += 2 {
			method := pathItem.Content[j].Value
			if httpMethods[method] {
				fn(pathKey, method, pathItem.Content[j+1])
			}
		}
	}
}

// Violation builds a Violation for the context's file.
func (ctx *LintContext) Violation(line int, ruleID string, sev Severity, msg string) Violation {
	return Violation{File: ctx.File, Line: line, RuleID: ruleID, Severity: sev, Message: msg}
}

// Linter holds a parsed OpenAPI document.
type Linter struct {
	file string
	root *yaml.Node
}

// New reads and parses the document at path.
func New(path string) (*Linter, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path is provided by the caller
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return Parse(path, data)
}

// Parse parses an in-memory document; name is used in violations.
func Parse(name string, data []byte) (*Linter, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse %s: %w", name, err)
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 || doc.Content[0].Kind != yaml.MappingNode {
		return nil, fmt.Errorf("%s: empty or invalid YAML document", name)
	}
	return &Linter{file: name, root: doc.Content[0]}, nil
}

// Run executes every rule at its default severity.
func (l *Linter) Run() []Violation {
	return l.RunWithConfig(nil)
}

// RunWithConfig executes every rule not turned off by cfg, which may be nil.
// Inline "apilint:ignore" comments suppress findings. Results are sorted by
// line.
func (l *Linter) RunWithConfig(cfg *Config) []Violation {
	ctx := &LintContext{File: l.file, Root: l.root}
	var vs []Violation
	for _, rule := range registry {
		sev := effectiveSeverity(cfg, rule)
		if sev == "" {
			continue
		}
		for _, v := range rule.Check(ctx) {
			v.Severity = sev
			if !isSuppressed(l.root, v.Line, rule.ID()) {
				vs = append(vs, v)
			}
		}
	}
	sort.SliceStable(vs, func(i, j int) bool { return vs[i].Line < vs[j].Line })
	return vs
}

// HasErrors reports whether any violation has error severity.
func HasErrors(vs []Violation) bool {
	for _, v := range vs {
		if v.Severity == SeverityError {
			return true
		}
	}
	return false
}

// Filter returns violations at or above minSev.
func Filter(vs []Violation, minSev Severity) []Violation {
	minRank := sevRank[minSev]
	var out []Violation
	for _, v := range vs {
		if sevRank[v.Severity] >= minRank {
			out = append(out, v)
		}
	}
	return out
}

// suppressRe matches YAML comments like "apilint:ignore OAL001 OAL004".
var suppressRe = regexp.MustCompile(`apilint:ignore\s+(OAL\d+(?:\s+OAL\d+)*)`)

// isSuppressed looks for a suppression comment on the violation line, on
// the line above, or on any mapping key enclosing the line.
func isSuppressed(root *yaml.Node, line int, ruleID string) bool {
	for _, l := range []int{line, line - 1} {
		if node := findNodeAtLine(root, l); node != nil {
			if commentSuppresses(node.LineComment, ruleID) || commentSuppresses(node.HeadComment, ruleID) {
				return true
			}
		}
	}
	return ancestorSuppresses(root, line, ruleID)
}

func ancestorSuppresses(n *yaml.Node, line int, ruleID string) bool {
	if n == nil {
		return false
	}
	if commentSuppresses(n.HeadComment, ruleID) {
		return true
	}
	if n.Kind == yaml.MappingNode {
		for i := 0; i < len(n.Content)-1; i += 2 {
			keyNode, valNode := n.Content[i], n.Content[i+1]
			if keyNode.Line <= line && containsLine(valNode, line) {
				if commentSuppresses(keyNode.LineComment, ruleID) || commentSuppresses(keyNode.HeadComment, ruleID) {
					return true
				}
				return ancestorSuppresses(valNode, line, ruleID)
			}
		}
		return false
	}
	for _, c := range n.Content {
		if containsLine(c, line) && ancestorSuppresses(c, line, ruleID) {
			return true
		}
	}
	return false
}

func containsLine(n *yaml.Node, line int) bool {
	if n == nil {
		return false
	}
	if n.Line == line {
		return true
	}
	for _, c := range n.Content {
		if containsLine(c, line) {
			return true
		}
	}
	return false
}

func findNodeAtLine(n *yaml.Node, line int) *yaml.Node {
	if n == nil {
		return nil
	}
	if n.Line == line {
		return n
	}
	for _, c := range n.Content {
		if found := findNodeAtLine(c, line); found != nil {
			return found
		}
	}
	return nil
}

func commentSuppresses(comment, ruleID string) bool {
	if comment == "" {
		return false
	}
	for _, m := range suppressRe.FindAllStringSubmatch(comment, -1) {
		for _, id := range strings.Fields(m[1]) {
			if id == ruleID {
				return true
			}
		}
	}
	return false
}

func mapGet(m *yaml.Node, key string) *yaml.Node {
	if m == nil || m.Kind != yaml.MappingNode {
		return nil
	}
	for i := 0; i < len(m.Content)-1; i += 2 {
		if m.Content[i].Value == key {
			return m.Content[i+1]
		}
	}
	return nil
}

func mapKeys(m *yaml.Node) []string {
	if m == nil || m.Kind != yaml.MappingNode {
		return nil
	}
	keys := make([]string, 0, len(m.Content)/2)
	for i := 0; i < len(m.Content)-1; i += 2 {
		keys = append(keys, m.Content[i].Value)
	}
	return keys
}

var httpMethods = map[string]bool{
	"get": true, "put": true, "post": true, "delete": true,
	"options": true, "head": true, "patch": true, "trace": true,
}

func operationID(op *yaml.Node) string {
	if n := mapGet(op, "operationId"); n != nil {
		return n.Value
	}
	return ""
}

// opLabel names an operation in messages.
func opLabel(path, method string, op *yaml.Node) string {
	if id := operationID(op); id != "" {
		return id
	}
	return strings.ToUpper(method) + " " + path
}

var (
	camelCaseRe = regexp.MustCompile(`^[a-z][a-zA-Z0-9]*$`)
	snakeCaseRe = regexp.MustCompile(`^[a-z][a-z0-9]*(_[a-z0-9]+)*$`)
	kebabCaseRe = regexp.MustCompile(`^[a-z][a-z0-9]*(-[a-z0-9]+)*$`)
	versionRe   = regexp.MustCompile(`^v[0-9]+$`)
)
