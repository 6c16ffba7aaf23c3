package pipeline

import (
	"fmt"
	"reflect"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAllocator_Next(t *testing.T) {
	a := NewAllocator()

	id, err := a.Next(NodeTypeInput)
	require.NoError(t, err)
	assert.Equal(t, "customInput-1", id)

	id, err = a.Next(NodeTypeLLM)
	require.NoError(t, err)
	assert.Equal(t, "llm-1", id)

	id, err = a.Next(NodeTypeInput)
	require.NoError(t, err)
	assert.Equal(t, "customInput-2", id)
}

func TestAllocator_InvalidType(t *testing.T) {
	a := NewAllocator()
	_, err := a.Next("widget")
	assert.ErrorIs(t, err, ErrInvalidArgument)

	// A failed call does not disturb other counters.
	id, err := a.Next(NodeTypeText)
	require.NoError(t, err)
	assert.Equal(t, "text-1", id)
}

func TestAllocator_SessionsAreIndependent(t *testing.T) {
	a, b := NewAllocator(), NewAllocator()
	idA, _ := a.Next(NodeTypeMath)
	idB, _ := b.Next(NodeTypeMath)
	assert.Equal(t, idA, idB)
}

func TestAllocator_Reserve(t *testing.T) {
	a := NewAllocator()
	a.Reserve("text-7")
	a.Reserve("text-3")         // lower, ignored
	a.Reserve("not-an-id")      // unknown type
	a.Reserve("customOutput-x") // not a number
	a.Reserve("customOutput-0") // not positive

	id, err := a.Next(NodeTypeText)
	require.NoError(t, err)
	assert.Equal(t, "text-8", id)

	id, err = a.Next(NodeTypeOutput)
	require.NoError(t, err)
	assert.Equal(t, "customOutput-1", id)
}

func TestAllocator_Concurrent(t *testing.T) {
	a := NewAllocator()
	const workers, per = 8, 50
	ids := make(chan string, workers*per)
	done := make(chan struct{})
	for w := 0; w < workers; w++ {
		go func() {
			for i := 0; i < per; i++ {
				id, _ := a.Next(NodeTypeInput)
				ids <- id
			}
			done <- struct{}{}
		}()
	}
	for w := 0; w < workers; w++ {
		<-done
	}
	close(ids)

	seen := make(map[string]bool)
	for id := range ids {
		assert.False(t, seen[id], "duplicate %s", id)
		seen[id] = true
	}
	assert.Len(t, seen, workers*per)
	assert.True(t, seen[fmt.Sprintf("customInput-%d", workers*per)])
}

func TestAllocatorProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 50
	properties := gopter.NewProperties(parameters)

	typeGen := gen.OneConstOf(NodeTypeInput, NodeTypeOutput, NodeTypeText, NodeTypeMath, NodeTypeLLM)

	properties.Property("ids strictly increase per type and never repeat", prop.ForAll(
		func(seq []NodeType) bool {
			a := NewAllocator()
			last := make(map[NodeType]int)
			seen := make(map[string]bool)
			for _, typ := range seq {
				id, err := a.Next(typ)
				if err != nil || seen[id] {
					return false
				}
				seen[id] = true
				var n int
				if _, err := fmt.Sscanf(id[len(typ)+1:], "%d", &n); err != nil {
					return false
				}
				if n != last[typ]+1 {
					return false
				}
				last[typ] = n
			}
			return true
		},
		gen.SliceOf(typeGen, reflect.TypeOf(NodeTypeInput)),
	))

	properties.TestingRun(t)
}
