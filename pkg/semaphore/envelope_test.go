package semaphore

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnvelope_JSON(t *testing.T) {
	t.Run("Deve serializar o envelope vazio como objeto vazio", func(t *testing.T) {
		data, err := json.Marshal(Envelope{})
		require.NoError(t, err)
		assert.JSONEq(t, `{}`, string(data))
		assert.True(t, Envelope{}.IsEmpty())
	})

	t.Run("Deve serializar todas as categorias mesmo vazias", func(t *testing.T) {
		data, err := json.Marshal(Shape(nil))
		require.NoError(t, err)
		assert.JSONEq(t, `{"result":{
			"tags":{"subject":[],"organisation":[],"person":[],"event":[],"place":[],"object":[]},
			"broader":{"subject":[]}
		}}`, string(data))
	})

	t.Run("Deve serializar parent ausente como null", func(t *testing.T) {
		b := &Buckets{}
		b.Append(CategoryPlace, newTag("Ottawa", "pl-1", SchemePlace, nil))
		b.Append(CategorySubject, newTag("C", "g2", SchemeMediaTopic, strPtr("g1")))

		data, err := json.Marshal(Shape(b))
		require.NoError(t, err)

		var decoded map[string]any
		require.NoError(t, json.Unmarshal(data, &decoded))
		tags := decoded["result"].(map[string]any)["tags"].(map[string]any)

		place := tags["place"].([]any)[0].(map[string]any)
		assert.Contains(t, place, "parent")
		assert.Nil(t, place["parent"])
		assert.Equal(t, "http://cv.cp.org/Places/", place["scheme"])
		assert.Equal(t, map[string]any{"source_name": "source_id"}, place["altids"])

		subject := tags["subject"].([]any)[0].(map[string]any)
		assert.Equal(t, "g1", subject["parent"])
	})
}

func TestBuckets_AddUnique(t *testing.T) {
	b := &Buckets{}
	tag := newTag("Jane", "p-1", SchemePerson, nil)

	assert.True(t, b.AddUnique(CategoryPerson, tag))
	assert.False(t, b.AddUnique(CategoryPerson, tag))
	assert.False(t, b.AddUnique(CategoryPerson, newTag("Sem qcode", "", SchemePerson, nil)))
	assert.True(t, b.AddUnique(CategoryOrganisation, tag), "dedup é por categoria")

	other := tag
	other.Parent = strPtr("p-0")
	assert.True(t, b.AddUnique(CategoryPerson, other), "parent diferente não é duplicata")
	assert.Equal(t, 3, b.Len())
}
