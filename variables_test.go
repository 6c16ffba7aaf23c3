package pipeline

import (
	"reflect"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
)

func TestExtractVariables(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{name: "repeats collapse", text: "result is {{x}} and {{y}} and {{x}}", want: []string{"x", "y"}},
		{name: "no vars", text: "no vars here", want: []string{}},
		{name: "empty", text: "", want: []string{}},
		{name: "inner whitespace", text: "{{  amount }} {{\trate\n}}", want: []string{"amount", "rate"}},
		{name: "dollar and underscore", text: "{{$price}} {{_tmp1}}", want: []string{"$price", "_tmp1"}},
		{name: "leading digit rejected", text: "{{1abc}}", want: []string{}},
		{name: "dotted path rejected", text: "{{user.name}}", want: []string{}},
		{name: "single braces", text: "{x} {{ y }", want: []string{}},
		{name: "triple braces", text: "{{{z}}}", want: []string{"z"}},
		{name: "adjacent", text: "{{a}}{{b}}{{a}}", want: []string{"a", "b"}},
		{name: "case sensitive", text: "{{Input}} {{input}}", want: []string{"Input", "input"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractVariables(tt.text))
		})
	}
}

func TestExtractVariablesProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	// Strings built from template fragments hit the pattern far more often
	// than arbitrary text would.
	fragment := gen.OneGenOf(
		gen.AnyString(),
		gen.Identifier().Map(func(s string) string { return "{{" + s + "}}" }),
		gen.Identifier().Map(func(s string) string { return "{{ " + s + " }}" }),
		gen.OneConstOf("{{", "}}", " ", "{{x}}", "$"),
	)
	text := gen.SliceOf(fragment, reflect.TypeOf("")).Map(func(parts []string) string {
		out := ""
		for _, p := range parts {
			out += p
		}
		return out
	})

	properties.Property("no duplicates", prop.ForAll(
		func(s string) bool {
			seen := make(map[string]bool)
			for _, v := range ExtractVariables(s) {
				if seen[v] {
					return false
				}
				seen[v] = true
			}
			return true
		},
		text,
	))

	properties.Property("stable across calls", prop.ForAll(
		func(s string) bool {
			a, b := ExtractVariables(s), ExtractVariables(s)
			if len(a) != len(b) {
				return false
			}
			for i := range a {
				if a[i] != b[i] {
					return false
				}
			}
			return true
		},
		text,
	))

	properties.Property("every name round-trips as a reference", prop.ForAll(
		func(s string) bool {
			for _, v := range ExtractVariables(s) {
				got := ExtractVariables("{{" + v + "}}")
				if len(got) != 1 || got[0] != v {
					return false
				}
			}
			return true
		},
		text,
	))

	properties.TestingRun(t)
}
