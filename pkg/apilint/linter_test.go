package apilint

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustLint(t *testing.T, content string) []Violation {
	t.Helper()
	l, err := Parse("openapi.yaml", []byte(content))
	require.NoError(t, err)
	return l.Run()
}

func mustLintWithConfig(t *testing.T, content string, cfg *Config) []Violation {
	t.Helper()
	l, err := Parse("openapi.yaml", []byte(content))
	require.NoError(t, err)
	return l.RunWithConfig(cfg)
}

func findRule(vs []Violation, ruleID string) []Violation {
	var out []Violation
	for _, v := range vs {
		if v.RuleID == ruleID {
			out = append(out, v)
		}
	}
	return out
}

const specHeader = `openapi: "3.0.3"
info:
  title: Test
  version: "1.0"
tags:
  - name: Planets
components:
  responses:
    Error:
      description: Error
      content:
        application/json:
          schema:
            $ref: '#/components/schemas/Error'
  schemas:
    Error:
      type: object
    PlanetTable:
      type: object
`

const cleanSpec = specHeader + `paths:
  /v1/planets:
    get:
      operationId: listPlanets
      summary: List planets
      tags: [Planets]
      parameters:
        - name: min_mass
          in: query
          schema:
            type: number
      responses:
        '200':
          description: OK
          content:
            application/json:
              schema:
                $ref: '#/components/schemas/PlanetTable'
        '400':
          $ref: '#/components/responses/Error'
`

func TestCleanSpecHasNoViolations(t *testing.T) {
	assert.Empty(t, mustLint(t, cleanSpec))
}

func TestProjectSpecHasNoViolations(t *testing.T) {
	l, err := New(filepath.Join("..", "..", "internal", "api", "openapi.yaml"))
	require.NoError(t, err)
	assert.Empty(t, l.Run())
}

func TestOperationTags(t *testing.T) {
	vs := mustLint(t, specHeader+`paths:
  /v1/planets:
    get:
      operationId: listPlanets
      summary: List planets
      responses:
        '200':
          description: OK
  /v1/hosts:
    get:
      operationId: listHosts
      summary: List hosts
      tags: [Stars]
      responses:
        '200':
          description: OK
`)
	got := findRule(vs, "OAL001")
	require.Len(t, got, 2)
	assert.Contains(t, got[0].Message, `"listPlanets" is missing 'tags'`)
	assert.Contains(t, got[1].Message, `undeclared tag "Stars"`)
	assert.True(t, HasErrors(vs))
}

func TestOperationIDs(t *testing.T) {
	vs := mustLint(t, specHeader+`paths:
  /v1/a:
    get:
      operationId: listPlanets
      summary: A
      tags: [Planets]
      responses:
        '200':
          description: OK
  /v1/b:
    get:
      operationId: listPlanets
      summary: B
      tags: [Planets]
      responses:
        '200':
          description: OK
  /v1/c:
    get:
      operationId: List_Hosts
      summary: C
      tags: [Planets]
      responses:
        '200':
          description: OK
  /v1/d:
    get:
      summary: D
      tags: [Planets]
      responses:
        '200':
          description: OK
`)
	got := findRule(vs, "OAL002")
	require.Len(t, got, 3)
	assert.Contains(t, got[0].Message, "duplicate operationId")
	assert.Contains(t, got[1].Message, "not lowerCamelCase")
	assert.Contains(t, got[2].Message, "GET /v1/d is missing 'operationId'")
}

func TestRefResolves(t *testing.T) {
	vs := mustLint(t, specHeader+`paths:
  /v1/planets:
    get:
      operationId: listPlanets
      summary: List planets
      tags: [Planets]
      responses:
        '200':
          description: OK
          content:
            application/json:
              schema:
                $ref: '#/components/schemas/Missing'
`)
	got := findRule(vs, "OAL003")
	require.Len(t, got, 1)
	assert.Contains(t, got[0].Message, "#/components/schemas/Missing")
}

func TestNamedSchemas(t *testing.T) {
	vs := mustLint(t, specHeader+`paths:
  /v1/query:
    post:
      operationId: querySnapshot
      summary: Query
      tags: [Planets]
      requestBody:
        content:
          application/json:
            schema:
              type: object
      responses:
        '200':
          description: OK
          content:
            application/json:
              schema:
                type: object
`)
	got := findRule(vs, "OAL004")
	require.Len(t, got, 2)
	assert.Contains(t, got[0].Message, "request body")
	assert.Contains(t, got[1].Message, "response 200")
	assert.Equal(t, SeverityWarning, got[0].Severity)
	assert.False(t, HasErrors(vs))
}

func TestParameterNames(t *testing.T) {
	vs := mustLint(t, specHeader+`  parameters:
    Limit:
      name: maxRows
      in: query
      schema:
        type: integer
paths:
  /v1/planets:
    get:
      operationId: listPlanets
      summary: List planets
      tags: [Planets]
      parameters:
        - name: minMass
          in: query
          schema:
            type: number
        - $ref: '#/components/parameters/Limit'
      responses:
        '200':
          description: OK
`)
	got := findRule(vs, "OAL005")
	require.Len(t, got, 2)
	assert.Contains(t, got[0].Message, `"maxRows"`)
	assert.Contains(t, got[1].Message, `"minMass"`)
}

func TestErrorResponses(t *testing.T) {
	vs := mustLint(t, specHeader+`paths:
  /v1/planets:
    get:
      operationId: listPlanets
      summary: List planets
      tags: [Planets]
      responses:
        '200':
          description: OK
        '404':
          description: Not found
        '502':
          description: Upstream
          content:
            application/json:
              schema:
                $ref: '#/components/schemas/Error'
        default:
          description: Anything else
`)
	got := findRule(vs, "OAL006")
	require.Len(t, got, 1)
	assert.Contains(t, got[0].Message, "response 404")
}

func TestSummaryAndPathStyle(t *testing.T) {
	vs := mustLint(t, specHeader+`paths:
  /planets:
    get:
      operationId: listPlanets
      tags: [Planets]
      responses:
        '200':
          description: OK
  /v1/planet_table/:
    get:
      operationId: planetTable
      summary: Table
      tags: [Planets]
      responses:
        '200':
          description: OK
`)
	assert.Len(t, findRule(vs, "OAL007"), 1)
	got := findRule(vs, "OAL008")
	require.Len(t, got, 3)
	assert.Contains(t, got[0].Message, "version segment")
	assert.Contains(t, got[1].Message, "trailing slash")
	assert.Contains(t, got[2].Message, `"planet_table" is not kebab-case`)
}

func TestInlineSuppression(t *testing.T) {
	vs := mustLint(t, specHeader+`paths:
  /v1/planets:
    get:
      operationId: listPlanets
      summary: List planets
      tags: [Planets]
      responses:
        '200':
          description: OK
          content:
            application/json:
              # apilint:ignore OAL004
              schema:
                type: object
`)
	assert.Empty(t, findRule(vs, "OAL004"))
}

func TestConfigOverrides(t *testing.T) {
	spec := specHeader + `paths:
  /v1/planets:
    get:
      operationId: listPlanets
      tags: [Planets]
      responses:
        '200':
          description: OK
          content:
            application/json:
              schema:
                type: object
`
	vs := mustLintWithConfig(t, spec, &Config{Rules: map[string]string{
		"OAL004": "off",
		"OAL007": "error",
	}})
	assert.Empty(t, findRule(vs, "OAL004"))
	got := findRule(vs, "OAL007")
	require.Len(t, got, 1)
	assert.Equal(t, SeverityError, got[0].Severity)
	assert.Len(t, Filter(vs, SeverityError), 1)
}

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "good.yaml")
	require.NoError(t, os.WriteFile(good, []byte("rules:\n  OAL004: off\n  OAL007: error\n"), 0o600))
	cfg, err := LoadConfig(good)
	require.NoError(t, err)
	assert.Equal(t, "off", cfg.Rules["OAL004"])

	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("rules:\n  OAL004: fatal\n"), 0o600))
	_, err = LoadConfig(bad)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown severity")
}

func TestParseRejectsEmptyDocument(t *testing.T) {
	_, err := Parse("empty.yaml", []byte(""))
	require.Error(t, err)
	_, err = Parse("list.yaml", []byte("- a\n- b\n"))
	require.Error(t, err)
}

func TestRegisteredRules(t *testing.T) {
	rules := RegisteredRules()
	require.Len(t, rules, 8)
	seen := map[string]bool{}
	for _, r := range rules {
		assert.NotEmpty(t, r.Description())
		assert.False(t, seen[r.ID()], "duplicate rule %s", r.ID())
		seen[r.ID()] = true
	}
}
