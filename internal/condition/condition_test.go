package condition

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type status int

func (s status) String() string { return "Completed" }

func TestAndKeepsOrderAndRepeats(t *testing.T) {
	c := Eq("name", "P").And(Eq("team_id", 7)).And(Eq("name", "Q"))
	assert.Equal(t, "name=P&team_id=7&name=Q", c.Query())
	assert.Equal(t, []string{"P", "Q"}, c.Values()["name"])
}

func TestAndIsAssociative(t *testing.T) {
	c1, c2, c3 := Eq("a", 1), Eq("b", "x y"), Eq("c", true)
	left := c1.And(c2).And(c3)
	right := c1.And(c2.And(c3))
	assert.Equal(t, left.Query(), right.Query())
	assert.Equal(t, "a=1&b=x+y&c=true", left.Query())
}

func TestAndDoesNotMutateOperands(t *testing.T) {
	base := Eq("team_id", 1)
	_ = base.And(Eq("name", "a"))
	_ = base.And(Eq("name", "b"))
	assert.Equal(t, "team_id=1", base.Query())
	assert.Len(t, base.Pairs(), 1)
}

func TestZeroCondition(t *testing.T) {
	var c Condition
	assert.True(t, c.IsZero())
	assert.Equal(t, "", c.Query())
	assert.Equal(t, "x=1", c.And(Eq("x", 1)).Query())
}

func TestEnumsRenderNumerically(t *testing.T) {
	assert.Equal(t, "annotation_status=5", Eq("annotation_status", status(5)).Query())
}

func TestFromMapSortsKeys(t *testing.T) {
	c := FromMap(map[string]any{"team_id": 3, "name": "P", "project_id": 9})
	assert.Equal(t, "name=P&project_id=9&team_id=3", c.Query())
}

func TestGet(t *testing.T) {
	c := Eq("name", "P").And(Eq("team_id", 3))
	v, ok := c.Get("team_id")
	assert.True(t, ok)
	assert.Equal(t, 3, v)
	_, ok = c.Get("missing")
	assert.False(t, ok)
}
