package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNameFromPrompt(t *testing.T) {
	assert.Equal(t, "Plan me a seven d...", NameFromPrompt("Plan me a seven day trip to Japan"))
	assert.Equal(t, "exactly twenty chars", NameFromPrompt("exactly twenty chars"))
	assert.Equal(t, "short", NameFromPrompt("short"))
	// multi-byte characters count once each
	assert.Equal(t, "東京東京東京東京東京東京東京東京東...", NameFromPrompt("東京東京東京東京東京東京東京東京東京東京東京"))
}

func TestSessionsKeepInsertionOrder(t *testing.T) {
	a, b, c := &Session{ID: "a"}, &Session{ID: "b"}, &Session{ID: "c"}
	sessions := NewSessions(c, a, b)

	assert.Equal(t, []string{"c", "a", "b"}, sessions.IDs())

	sessions.Put(&Session{ID: "a", Conversation: []Message{NewUserMessage("hi")}})
	assert.Equal(t, []string{"c", "a", "b"}, sessions.IDs(), "replacing keeps position")

	require.True(t, sessions.Delete("a"))
	assert.False(t, sessions.Delete("a"))
	assert.Equal(t, []string{"c", "b"}, sessions.IDs())
	assert.Equal(t, "c", sessions.First().ID)
	assert.Equal(t, "b", sessions.Last().ID)
}

func TestSessionsJSONPreservesOrder(t *testing.T) {
	name := "Trip"
	sessions := NewSessions(
		&Session{ID: "z", Conversation: []Message{}},
		&Session{ID: "a", Name: &name, Conversation: []Message{NewUserMessage("hello")}},
		&Session{ID: "m", Conversation: []Message{}},
	)

	data, err := json.Marshal(sessions)
	require.NoError(t, err)

	var decoded Sessions
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, []string{"z", "a", "m"}, decoded.IDs())

	again, err := json.Marshal(&decoded)
	require.NoError(t, err)
	assert.JSONEq(t, string(data), string(again))

	got, ok := decoded.Get("a")
	require.True(t, ok)
	require.NotNil(t, got.Name)
	assert.Equal(t, "Trip", *got.Name)
	assert.Len(t, got.Conversation, 1)
}

func TestSessionsUnmarshalRejectsGarbage(t *testing.T) {
	var s Sessions
	assert.Error(t, json.Unmarshal([]byte(`[1,2,3]`), &s))
	assert.Error(t, json.Unmarshal([]byte(`{"a":{"id":"b","conversation":[]}}`), &s))
	assert.Error(t, json.Unmarshal([]byte(`{"a":`), &s))
}

func TestSessionCloneIsDeep(t *testing.T) {
	name := "n"
	original := &Session{ID: "s", Name: &name, Conversation: []Message{{
		ID: "m", Type: MessageTypeModel, State: MessageStateSuccess, WordsToBold: []string{"Tokyo"},
	}}}

	clone := original.Clone()
	*clone.Name = "changed"
	clone.Conversation[0].WordsToBold[0] = "Kyoto"
	clone.Conversation = append(clone.Conversation, NewUserMessage("x"))

	assert.Equal(t, "n", *original.Name)
	assert.Equal(t, "Tokyo", original.Conversation[0].WordsToBold[0])
	assert.Len(t, original.Conversation, 1)
}

func TestPendingMessage(t *testing.T) {
	session := NewSession()
	assert.Equal(t, -1, session.PendingMessage())

	session.Conversation = append(session.Conversation, NewUserMessage("q"), NewPendingMessage())
	assert.Equal(t, 1, session.PendingMessage())
	assert.Equal(t, "New session", session.DisplayName())
}

func TestSummariesNewestFirst(t *testing.T) {
	state := &State{
		Sessions:         NewSessions(&Session{ID: "old"}, &Session{ID: "new"}),
		CurrentSessionID: "old",
	}

	summaries := Summaries(state)
	require.Len(t, summaries, 2)
	assert.Equal(t, "new", summaries[0].ID)
	assert.True(t, summaries[1].Current)
}

func TestPromptResponseCartItems(t *testing.T) {
	resp := &PromptResponse{CartItemsList: []PromptCartItem{{ASIN: "B000", Qty: 2}}}
	assert.Equal(t, []CartItem{{SKU: "B000", Quantity: 2}}, resp.CartItems())
	assert.Nil(t, (&PromptResponse{}).CartItems())
}
