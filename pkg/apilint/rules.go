package apilint

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

func init() {
	Register(operationTagsRule{})
	Register(operationIDRule{})
	Register(refResolvesRule{})
	Register(namedSchemaRule{})
	Register(parameterNameRule{})
	Register(errorResponseRule{})
	Register(summaryRule{})
	Register(pathStyleRule{})
}

// OAL001: every operation is tagged, and only with tags declared at the top
// level.
type operationTagsRule struct{}

func (operationTagsRule) ID() string                { return "OAL001" }
func (operationTagsRule) Description() string       { return "operations carry declared tags" }
func (operationTagsRule) DefaultSeverity() Severity { return SeverityError }

func (r operationTagsRule) Check(ctx *LintContext) []Violation {
	declared := map[string]bool{}
	if tags := mapGet(ctx.Root, "tags"); tags != nil {
		for _, t := range tags.Content {
			if name := mapGet(t, "name"); name != nil {
				declared[name.Value] = true
			}
		}
	}
	var vs []Violation
	ctx.ForEachOperation(func(path, method string, op *yaml.Node) {
		tags := mapGet(op, "tags")
		if tags == nil || len(tags.Content) == 0 {
			vs = append(vs, ctx.Violation(op.Line, r.ID(), r.DefaultSeverity(),
				fmt.Sprintf("operation %q is missing 'tags'", opLabel(path, method, op))))
			return
		}
		for _, t := range tags.Content {
			if !declared[t.Value] {
				vs = append(vs, ctx.Violation(t.Line, r.ID(), r.DefaultSeverity(),
					fmt.Sprintf("operation %q uses undeclared tag %q", opLabel(path, method, op), t.Value)))
			}
		}
	})
	return vs
}

// OAL002: operationId is present, unique and lowerCamelCase.
type operationIDRule struct{}

func (operationIDRule) ID() string                { return "OAL002" }
func (operationIDRule) Description() string       { return "operationId present, unique, lowerCamelCase" }
func (operationIDRule) DefaultSeverity() Severity { return SeverityError }

func (r operationIDRule) Check(ctx *LintContext) []Violation {
	var vs []Violation
	seen := map[string]int{}
	ctx.ForEachOperation(func(path, method string, op *yaml.Node) {
		idNode := mapGet(op, "operationId")
		switch {
		case idNode == nil:
			vs = append(vs, ctx.Violation(op.Line, r.ID(), r.DefaultSeverity(),
				fmt.Sprintf("operation %s %s is missing 'operationId'", strings.ToUpper(method), path)))
		case seen[idNode.Value] != 0:
			vs = append(vs, ctx.Violation(idNode.Line, r.ID(), r.DefaultSeverity(),
				fmt.Sprintf("duplicate operationId %q (first seen at line %d)", idNode.Value, seen[idNode.Value])))
		case !camelCaseRe.MatchString(idNode.Value):
			seen[idNode.Value] = idNode.Line
			vs = append(vs, ctx.Violation(idNode.Line, r.ID(), r.DefaultSeverity(),
				fmt.Sprintf("operationId %q is not lowerCamelCase", idNode.Value)))
		default:
			seen[idNode.Value] = idNode.Line
		}
	})
	return vs
}

// OAL003: every local $ref resolves.
type refResolvesRule struct{}

func (refResolvesRule) ID() string                { return "OAL003" }
func (refResolvesRule) Description() string       { return "local $ref targets exist" }
func (refResolvesRule) DefaultSeverity() Severity { return SeverityError }

func (r refResolvesRule) Check(ctx *LintContext) []Violation {
	var vs []Violation
	var walk func(n *yaml.Node)
	walk = func(n *yaml.Node) {
		if n == nil {
			return
		}
		if n.Kind == yaml.MappingNode {
			for i := 0; i < len(n.Content)-1; i += 2 {
				if n.Content[i].Value == "$ref" && !ctx.ResolveRef(n.Content[i+1].Value) {
					vs = append(vs, ctx.Violation(n.Content[i+1].Line, r.ID(), r.DefaultSeverity(),
						fmt.Sprintf("$ref %q does not resolve", n.Content[i+1].Value)))
				}
			}
		}
		for _, c := range n.Content {
			walk(c)
		}
	}
	walk(ctx.Root)
	return vs
}

// OAL004: JSON request and response bodies reference named schemas.
type namedSchemaRule struct{}

func (namedSchemaRule) ID() string                { return "OAL004" }
func (namedSchemaRule) Description() string       { return "JSON bodies use $ref schemas" }
func (namedSchemaRule) DefaultSeverity() Severity { return SeverityWarning }

func (r namedSchemaRule) Check(ctx *LintContext) []Violation {
	var vs []Violation
	check := func(label, where string, body *yaml.Node) {
		schema := mapGet(mapGet(mapGet(body, "content"), "application/json"), "schema")
		if schema != nil && mapGet(schema, "$ref") == nil {
			vs = append(vs, ctx.Violation(schema.Line, r.ID(), r.DefaultSeverity(),
				fmt.Sprintf("operation %q %s uses an inline schema instead of $ref", label, where)))
		}
	}
	ctx.ForEachOperation(func(path, method string, op *yaml.Node) {
		label := opLabel(path, method, op)
		check(label, "request body", mapGet(op, "requestBody"))
		responses := mapGet(op, "responses")
		for _, code := range mapKeys(responses) {
			check(label, "response "+code, mapGet(responses, code))
		}
	})
	return vs
}

// OAL005: parameter names are snake_case.
type parameterNameRule struct{}

func (parameterNameRule) ID() string                { return "OAL005" }
func (parameterNameRule) Description() string       { return "parameter names are snake_case" }
func (parameterNameRule) DefaultSeverity() Severity { return SeverityWarning }

func (r parameterNameRule) Check(ctx *LintContext) []Violation {
	var vs []Violation
	check := func(param *yaml.Node) {
		name := mapGet(param, "name")
		if name != nil && !snakeCaseRe.MatchString(name.Value) {
			vs = append(vs, ctx.Violation(name.Line, r.ID(), r.DefaultSeverity(),
				fmt.Sprintf("parameter %q is not snake_case", name.Value)))
		}
	}
	params := mapGet(mapGet(ctx.Root, "components"), "parameters")
	for _, key := range mapKeys(params) {
		check(mapGet(params, key))
	}
	ctx.ForEachOperation(func(_, _ string, op *yaml.Node) {
		if list := mapGet(op, "parameters"); list != nil {
			for _, p := range list.Content {
				check(p)
			}
		}
	})
	return vs
}

// OAL006: 4xx and 5xx responses use the shared Error response or schema.
type errorResponseRule struct{}

func (errorResponseRule) ID() string                { return "OAL006" }
func (errorResponseRule) Description() string       { return "error responses use the Error shape" }
func (errorResponseRule) DefaultSeverity() Severity { return SeverityError }

func (r errorResponseRule) Check(ctx *LintContext) []Violation {
	var vs []Violation
	ctx.ForEachOperation(func(path, method string, op *yaml.Node) {
		responses := mapGet(op, "responses")
		for _, code := range mapKeys(responses) {
			if len(code) != 3 || (code[0] != '4' && code[0] != '5') {
				continue
			}
			resp := mapGet(responses, code)
			if isErrorRef(resp) || isErrorRef(mapGet(mapGet(mapGet(resp, "content"), "application/json"), "schema")) {
				continue
			}
			vs = append(vs, ctx.Violation(resp.Line, r.ID(), r.DefaultSeverity(),
				fmt.Sprintf("operation %q response %s does not use the Error shape", opLabel(path, method, op), code)))
		}
	})
	return vs
}

func isErrorRef(n *yaml.Node) bool {
	ref := mapGet(n, "$ref")
	return ref != nil && (ref.Value == "#/components/responses/Error" || ref.Value == "#/components/schemas/Error")
}

// OAL007: every operation has a summary.
type summaryRule struct{}

func (summaryRule) ID() string                { return "OAL007" }
func (summaryRule) Description() string       { return "operations have a summary" }
func (summaryRule) DefaultSeverity() Severity { return SeverityWarning }

func (r summaryRule) Check(ctx *LintContext) []Violation {
	var vs []Violation
	ctx.ForEachOperation(func(path, method string, op *yaml.Node) {
		if s := mapGet(op, "summary"); s == nil || strings.TrimSpace(s.Value) == "" {
			vs = append(vs, ctx.Violation(op.Line, r.ID(), r.DefaultSeverity(),
				fmt.Sprintf("operation %q has no summary", opLabel(path, method, op))))
		}
	})
	return vs
}

// OAL008: paths start with a version segment and use kebab-case segments.
type pathStyleRule struct{}

func (pathStyleRule) ID() string                { return "OAL008" }
func (pathStyleRule) Description() string       { return "versioned kebab-case paths" }
func (pathStyleRule) DefaultSeverity() Severity { return SeverityWarning }

func (r pathStyleRule) Check(ctx *LintContext) []Violation {
	var vs []Violation
	paths := mapGet(ctx.Root, "paths")
	if paths == nil {
		return nil
	}
	for i := 0; i < len(paths.Content)-1; i += 2 {
		key := paths.Content[i]
		segments := strings.Split(strings.Trim(key.Value, "/"), "/")
		if !versionRe.MatchString(segments[0]) {
			vs = append(vs, ctx.Violation(key.Line, r.ID(), r.DefaultSeverity(),
				fmt.Sprintf("path %q does not start with a version segment", key.Value)))
			continue
		}
		if strings.HasSuffix(key.Value, "/") {
			vs = append(vs, ctx.Violation(key.Line, r.ID(), r.DefaultSeverity(),
				fmt.Sprintf("path %q has a trailing slash", key.Value)))
		}
		for _, seg := range segments[1:] {
			if strings.HasPrefix(seg, "{") && strings.HasSuffix(seg, "}") {
				continue
			}
			if !kebabCaseRe.MatchString(seg) {
				vs = append(vs, ctx.Violation(key.Line, r.ID(), r.DefaultSeverity(),
					fmt.Sprintf("path %q segment %q is not kebab-case", key.Value, seg)))
			}
		}
	}
	return vs
}
