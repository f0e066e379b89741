package agent

import "testing"

func TestWindow(t *testing.T) {
	turns := []Turn{
		{Role: "user", Content: "dropped by the limit"},
		{Role: "user", Content: "i am rahul"},
		{Role: "assistant", Content: "Hi Rahul!"},
		{Role: "human", Content: "  "},
		{Role: "bot", Content: "anything else?"},
		{Role: "narrator", Content: "find me tea"},
	}

	got := Window(turns, HistoryLimit)
	want := []Turn{
		{Role: RoleUser, Content: "i am rahul"},
		{Role: RoleModel, Content: "Hi Rahul!"},
		{Role: RoleModel, Content: "anything else?"},
		{Role: RoleUser, Content: "find me tea"},
	}
	if len(got) != len(want) {
		t.Fatalf("expected %d turns, got %d: %+v", len(want), len(got), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("turn %d: expected %+v, got %+v", i, want[i], got[i])
		}
	}
}

func TestWindow_NoLimit(t *testing.T) {
	turns := []Turn{{Role: "ai", Content: "a"}, {Role: "user", Content: "b"}}
	if got := Window(turns, 0); len(got) != 2 || got[0].Role != RoleModel {
		t.Fatalf("unexpected window: %+v", got)
	}
	if got := Window(nil, HistoryLimit); len(got) != 0 {
		t.Fatalf("expected empty window, got %+v", got)
	}
}
