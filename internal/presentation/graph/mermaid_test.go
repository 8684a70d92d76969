package graph

import (
	"strings"
	"testing"

	"github.com/aretw0/weaver/pkg/domain"
	"github.com/aretw0/weaver/pkg/plan"
	"github.com/stretchr/testify/assert"
)

func TestGenerateMermaid(t *testing.T) {
	p := &plan.Plan{Targets: []plan.Target{
		{Owner: "greetings", Name: "greet", Advice: []plan.Advice{{Kind: "log"}, {Kind: "retry"}}},
		{Owner: "billing-v2", Name: "charge"},
	}}

	got := GenerateMermaid(p, nil)

	expected := `graph LR
    subgraph greetings["greetings"]
        greetings_greet(("greet"))
        greetings_greet_0[["log"]]
        greetings_greet --> greetings_greet_0
        greetings_greet_1[["retry"]]
        greetings_greet_0 --> greetings_greet_1
        greetings_greet_fn["original"]
        greetings_greet_1 --> greetings_greet_fn
    end
    subgraph billing_v2["billing-v2"]
        billing_v2_charge(("charge"))
        billing_v2_charge_fn["original"]
        billing_v2_charge --> billing_v2_charge_fn
    end
`
	assert.Equal(t, expected, got)
}

func TestGenerateMermaid_Overlay(t *testing.T) {
	p := &plan.Plan{Targets: []plan.Target{{Owner: "greetings", Name: "greet"}}}
	greet := domain.TargetID{Owner: "greetings", Name: "greet"}

	got := GenerateMermaid(p, &Overlay{Bound: []domain.TargetID{greet, greet}})

	assert.Contains(t, got, "classDef bound")
	assert.Equal(t, 1, strings.Count(got, "class greetings_greet bound;"))

	assert.NotContains(t, GenerateMermaid(p, &Overlay{}), "classDef")
}

func TestSanitizeMermaidID(t *testing.T) {
	assert.Equal(t, "a_b_c_d_e_f", sanitizeMermaidID(`a.b-c/d\e f`))
}
