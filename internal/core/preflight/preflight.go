// Package preflight evaluates external tool versions against the minimums the
// harness needs. Version strings are collected by the shell; evaluation here
// is pure.
package preflight

import (
	"fmt"
	"regexp"

	"github.com/Masterminds/semver/v3"
)

// =============================================================================
// Requirements
// =============================================================================

// Requirement pins the acceptable version range of one external tool.
type Requirement struct {
	Tool       string
	Constraint string
}

// DefaultRequirements returns the tool minimums the harness is tested with.
func DefaultRequirements() []Requirement {
	return []Requirement{
		{Tool: "kind", Constraint: ">= 0.20.0"},
		{Tool: "kubectl", Constraint: ">= 1.27.0"},
		{Tool: "helm", Constraint: ">= 3.12.0"},
	}
}

// =============================================================================
// Results
// =============================================================================

// Result is the evaluation outcome for one tool.
type Result struct {
	Tool      string `json:"tool"`
	Version   string `json:"version,omitempty"`
	Satisfied bool   `json:"satisfied"`
	Missing   bool   `json:"missing,omitempty"`
	Detail    string `json:"detail,omitempty"`
}

// Failed filters results down to the unsatisfied ones.
func Failed(results []Result) []Result {
	var failed []Result
	for _, r := range results {
		if !r.Satisfied {
			failed = append(failed, r)
		}
	}
	return failed
}

// =============================================================================
// Version Extraction
// =============================================================================

// versionPattern matches the first semver-shaped token in tool output, with
// or without the leading v. kind prints "kind version 0.23.0", kubectl prints
// "Client Version: v1.30.2", helm prints `version.BuildInfo{Version:"v3.15.1"...`.
var versionPattern = regexp.MustCompile(`v?(\d+\.\d+\.\d+(?:-[0-9A-Za-z.\-]+)?)`)

// ExtractVersion pulls the first semantic version out of version-command output.
func ExtractVersion(output string) (string, error) {
	m := versionPattern.FindStringSubmatch(output)
	if m == nil {
		return "", fmt.Errorf("no version found in %q", output)
	}
	return m[1], nil
}

// =============================================================================
// Evaluation
// =============================================================================

// Evaluate checks collected tool versions against requirements. versions maps
// tool name to raw version-command output; tools absent from the map are
// reported missing. The result slice is ordered like the requirements.
func Evaluate(reqs []Requirement, versions map[string]string) []Result {
	results := make([]Result, 0, len(reqs))

	for _, req := range reqs {
		raw, ok := versions[req.Tool]
		if !ok || raw == "" {
			results = append(results, Result{
				Tool:    req.Tool,
				Missing: true,
				Detail:  "not found on PATH",
			})
			continue
		}

		results = append(results, evaluateOne(req, raw))
	}

	return results
}

func evaluateOne(req Requirement, raw string) Result {
	version, err := ExtractVersion(raw)
	if err != nil {
		return Result{Tool: req.Tool, Detail: err.Error()}
	}

	constraint, err := semver.NewConstraint(req.Constraint)
	if err != nil {
		return Result{Tool: req.Tool, Version: version, Detail: fmt.Sprintf("bad constraint %q: %v", req.Constraint, err)}
	}

	parsed, err := semver.NewVersion(version)
	if err != nil {
		return Result{Tool: req.Tool, Version: version, Detail: fmt.Sprintf("unparseable version: %v", err)}
	}

	result := Result{Tool: req.Tool, Version: version, Satisfied: constraint.Check(parsed)}
	if !result.Satisfied {
		result.Detail = fmt.Sprintf("have %s, need %s", version, req.Constraint)
	}
	return result
}
