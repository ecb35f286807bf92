package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParsePlan(t *testing.T) {
	assert.Equal(t, PlanFree, ParsePlan("free"))
	assert.Equal(t, PlanPro, ParsePlan("pro"))

	// Anything unrecognized degrades to free.
	assert.Equal(t, PlanFree, ParsePlan(""))
	assert.Equal(t, PlanFree, ParsePlan("PRO"))
	assert.Equal(t, PlanFree, ParsePlan("enterprise"))
}
