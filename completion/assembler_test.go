package completion

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAssembler_ConcatenatesArgumentFragments(t *testing.T) {
	a := NewAssembler(nil)

	a.Add([]ToolCallDelta{{
		Index: 0, ID: "call_1", Type: "function",
		Function: FunctionDelta{Name: "get_delivery_date", Arguments: `{"order_id":`},
	}})
	a.Add([]ToolCallDelta{{
		Index:    0,
		Function: FunctionDelta{Arguments: `"ORD-1"}`},
	}})

	calls := a.Finalize()
	require.Len(t, calls, 1)
	assert.Equal(t, "call_1", calls[0].ID)
	assert.Equal(t, "get_delivery_date", calls[0].Name)
	assert.Equal(t, `{"order_id":"ORD-1"}`, calls[0].Arguments)
}

func TestAssembler_FirstWriterWinsForIDAndName(t *testing.T) {
	a := NewAssembler(nil)

	a.Add([]ToolCallDelta{{Index: 0, ID: "call_1", Function: FunctionDelta{Name: "first"}}})
	a.Add([]ToolCallDelta{{Index: 0, ID: "call_other", Function: FunctionDelta{Name: "second"}}})

	calls := a.Finalize()
	require.Len(t, calls, 1)
	assert.Equal(t, "call_1", calls[0].ID)
	assert.Equal(t, "first", calls[0].Name)
}

func TestAssembler_DropsIncompleteCalls(t *testing.T) {
	a := NewAssembler(nil)

	// Index 0 never receives a name, index 1 never receives an id.
	a.Add([]ToolCallDelta{
		{Index: 0, ID: "call_1", Function: FunctionDelta{Arguments: `{}`}},
		{Index: 1, Function: FunctionDelta{Name: "orphan", Arguments: `{}`}},
		{Index: 2, ID: "call_3", Function: FunctionDelta{Name: "ok", Arguments: `{}`}},
	})

	calls := a.Finalize()
	require.Len(t, calls, 1)
	assert.Equal(t, "call_3", calls[0].ID)
	assert.True(t, a.Observed())
}

func TestAssembler_OrdersByIndex(t *testing.T) {
	a := NewAssembler(nil)

	a.Add([]ToolCallDelta{
		{Index: 2, ID: "c", Function: FunctionDelta{Name: "third"}},
		{Index: 0, ID: "a", Function: FunctionDelta{Name: "first"}},
		{Index: 1, ID: "b", Function: FunctionDelta{Name: "second"}},
	})

	calls := a.Finalize()
	require.Len(t, calls, 3)
	assert.Equal(t, []string{"first", "second", "third"}, []string{calls[0].Name, calls[1].Name, calls[2].Name})
}

func TestAssembler_EmptyStream(t *testing.T) {
	a := NewAssembler(nil)

	assert.False(t, a.Observed())
	assert.Empty(t, a.Finalize())
}
