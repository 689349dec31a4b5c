package meta

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/ajitpratap0/tables/pkg/json"
)

func TestSetAndGetPaths(t *testing.T) {
	m := New().
		Set("column.0.name", "x").
		Set("column.1.name", "y").
		Set("title", "demo")

	name, ok := m.String("column.1.name")
	require.True(t, ok)
	assert.Equal(t, "y", name)

	_, ok = m.String("column.1")
	assert.False(t, ok, "a node is not a string leaf")

	child, ok := m.Child("column.0")
	require.True(t, ok)
	assert.Equal(t, []string{"name"}, child.Keys())

	assert.Equal(t, []string{"column", "title"}, m.Keys())
}

func TestSetKeepsPositionOnOverwrite(t *testing.T) {
	m := New().Set("a", "1").Set("b", "2").Set("a", "3")

	assert.Equal(t, []string{"a", "b"}, m.Keys())
	v, _ := m.String("a")
	assert.Equal(t, "3", v)
}

func TestLeafReplacedByNode(t *testing.T) {
	m := New().Set("a", "leaf").Set("a.b", "nested")

	_, ok := m.String("a")
	assert.False(t, ok)
	v, ok := m.String("a.b")
	require.True(t, ok)
	assert.Equal(t, "nested", v)
}

func TestIndexedKeepsInsertionOrder(t *testing.T) {
	m := New().
		Set("column.2.name", "c").
		Set("column.0.name", "a").
		Set("column.1.name", "b")

	items := m.Indexed("column")
	require.Len(t, items, 3)
	assert.Equal(t, "2", items[0].Key)
	assert.Equal(t, "0", items[1].Key)
	assert.Equal(t, "1", items[2].Key)
	assert.True(t, items[0].IsNode())

	assert.Nil(t, m.Indexed("missing"))
}

func TestNilMetaReads(t *testing.T) {
	var m *Meta
	assert.True(t, m.IsEmpty())
	assert.Nil(t, m.Keys())
	_, ok := m.String("a")
	assert.False(t, ok)
	assert.True(t, m.Equal(New()))
	assert.True(t, m.Clone().IsEmpty())
}

func TestCloneIsDeep(t *testing.T) {
	m := New().Set("unit.name", "m")
	c := m.Clone()
	c.Set("unit.name", "km")

	v, _ := m.String("unit.name")
	assert.Equal(t, "m", v)
	assert.False(t, m.Equal(c))
}

func TestRemove(t *testing.T) {
	m := New().Set("a", "1").Set("b.c", "2").Set("d", "3")
	m.Remove("b.c")
	m.Remove("missing.path")
	m.Remove("a")

	assert.Equal(t, []string{"b", "d"}, m.Keys())
	child, _ := m.Child("b")
	assert.True(t, child.IsEmpty())
}

func TestJSONPreservesOrder(t *testing.T) {
	m := New().
		Set("z", "1").
		Set("a.inner", "tab\there").
		SetMeta("empty", New())

	data, err := json.Marshal(m)
	require.NoError(t, err)
	assert.Equal(t, `{"z":"1","a":{"inner":"tab\there"},"empty":{}}`, string(data))

	decoded := New()
	require.NoError(t, json.Unmarshal(data, decoded))
	assert.True(t, m.Equal(decoded))
}

func TestJSONScalarsBecomeText(t *testing.T) {
	decoded := New()
	require.NoError(t, json.Unmarshal([]byte(`{"n":1.5,"b":true,"skip":null}`), decoded))

	n, _ := decoded.String("n")
	b, _ := decoded.String("b")
	assert.Equal(t, "1.5", n)
	assert.Equal(t, "true", b)
	assert.Equal(t, []string{"n", "b"}, decoded.Keys())
}

func TestJSONRejectsArrays(t *testing.T) {
	decoded := New()
	assert.Error(t, json.Unmarshal([]byte(`{"a":[1,2]}`), decoded))
}

func TestYAMLRoundTrip(t *testing.T) {
	m := New().Set("unit", "seconds").Set("axis.label", "time").Set("axis.min", "0")

	data, err := yaml.Marshal(m)
	require.NoError(t, err)

	decoded := New()
	require.NoError(t, yaml.Unmarshal(data, decoded))
	assert.True(t, m.Equal(decoded))
	assert.Equal(t, []string{"unit", "axis"}, decoded.Keys())
}
