package app

import (
	"errors"
	"strconv"
	"testing"

	"bingosink/internal/domain"
)

func newTestUniformGenerator(n int) domain.Generator {
	catalogJSON := `{"game":"testgame","goals":{`
	for i := 0; i < n; i++ {
		if i > 0 {
			catalogJSON += ","
		}
		catalogJSON += `"g` + strconv.Itoa(i) + `":{"name":"Goal ` + strconv.Itoa(i) + `"}`
	}
	catalogJSON += `}}`

	catalog, err := domain.ParseCatalog([]byte(catalogJSON))
	if err != nil {
		panic(err)
	}
	return domain.NewUniformGenerator("uniform", catalog)
}

func testBoard(t *testing.T) domain.Variant {
	t.Helper()
	gen := newTestUniformGenerator(30)
	board, err := domain.NewNonLockout(gen, "room-test-seed")
	if err != nil {
		t.Fatalf("build board: %v", err)
	}
	return board
}

type fakeTransport struct {
	sent []map[string]any
	fail bool
}

func (f *fakeTransport) Send(msg map[string]any) error {
	if f.fail {
		return errors.New("fake send failure")
	}
	f.sent = append(f.sent, msg)
	return nil
}

func TestAddUserAndRejoin(t *testing.T) {
	room := NewRoom("room", "testgame", "uniform", "Non-Lockout", "seed", testBoard(t))

	transport := &fakeTransport{}
	u := room.AddUser("alice", transport)
	if u.ID == "" {
		t.Fatalf("expected non-empty user id")
	}

	room.Disconnect(u.ID)
	if u.Transport != nil {
		t.Fatalf("expected transport cleared after disconnect")
	}

	reconnected := &fakeTransport{}
	got, ok := room.Rejoin(u.ID, reconnected)
	if !ok || got.ID != u.ID {
		t.Fatalf("rejoin failed: ok=%v got=%v", ok, got)
	}
}

func TestRejoinUnknownUser(t *testing.T) {
	room := NewRoom("room", "testgame", "uniform", "Non-Lockout", "seed", testBoard(t))
	if _, ok := room.Rejoin("nope", &fakeTransport{}); ok {
		t.Fatalf("expected rejoin of unknown user to fail")
	}
}

func TestJoinTeamAndLeaveTeam(t *testing.T) {
	room := NewRoom("room", "testgame", "uniform", "Non-Lockout", "seed", testBoard(t))
	u := room.AddUser("alice", &fakeTransport{})
	team := room.CreateTeam("Red", "#ff0000")

	if _, _, err := room.JoinTeam(u.ID, team.ID); err != nil {
		t.Fatalf("join team: %v", err)
	}
	if u.TeamID != team.ID {
		t.Fatalf("user team = %q, want %q", u.TeamID, team.ID)
	}
	if len(team.Members) != 1 || team.Members[0] != u.ID {
		t.Fatalf("team members = %v", team.Members)
	}

	if err := room.LeaveTeam(u.ID); err != nil {
		t.Fatalf("leave team: %v", err)
	}
	if u.TeamID != "" {
		t.Fatalf("expected user to have no team after leaving")
	}
	if len(team.Members) != 0 {
		t.Fatalf("expected team empty after leave, got %v", team.Members)
	}
}

func TestJoinTeamUnknownTeam(t *testing.T) {
	room := NewRoom("room", "testgame", "uniform", "Non-Lockout", "seed", testBoard(t))
	u := room.AddUser("alice", &fakeTransport{})

	if _, _, err := room.JoinTeam(u.ID, "missing"); !errors.Is(err, ErrUnknownTeam) {
		t.Fatalf("join team error = %v, want %v", err, ErrUnknownTeam)
	}
}

func TestMarkRequiresTeam(t *testing.T) {
	room := NewRoom("room", "testgame", "uniform", "Non-Lockout", "seed", testBoard(t))
	u := room.AddUser("alice", &fakeTransport{})

	if err := room.Mark(u.ID, 0); !errors.Is(err, ErrNoTeam) {
		t.Fatalf("mark error = %v, want %v", err, ErrNoTeam)
	}
}

func TestMarkAndUnmarkRoundtrip(t *testing.T) {
	room := NewRoom("room", "testgame", "uniform", "Non-Lockout", "seed", testBoard(t))
	u := room.AddUser("alice", &fakeTransport{})
	team := room.CreateTeam("Red", "#ff0000")
	if _, _, err := room.JoinTeam(u.ID, team.ID); err != nil {
		t.Fatalf("join team: %v", err)
	}

	if err := room.Mark(u.ID, 3); err != nil {
		t.Fatalf("mark: %v", err)
	}
	if err := room.Mark(u.ID, 3); !errors.Is(err, ErrMarkRejected) {
		t.Fatalf("double mark error = %v, want %v", err, ErrMarkRejected)
	}
	if err := room.Unmark(u.ID, 3); err != nil {
		t.Fatalf("unmark: %v", err)
	}
	if err := room.Unmark(u.ID, 3); !errors.Is(err, ErrUnmarkRejected) {
		t.Fatalf("double unmark error = %v, want %v", err, ErrUnmarkRejected)
	}
}

func TestSpectateCyclesThroughLevels(t *testing.T) {
	room := NewRoom("room", "testgame", "uniform", "Non-Lockout", "seed", testBoard(t))
	u := room.AddUser("alice", &fakeTransport{})

	u1, err := room.Spectate(u.ID)
	if err != nil {
		t.Fatalf("spectate: %v", err)
	}
	if u1.Spectate != 1 || u1.TeamID != SpectatorsTeamID {
		t.Fatalf("after first spectate: level=%d team=%q", u1.Spectate, u1.TeamID)
	}

	u2, err := room.Spectate(u.ID)
	if err != nil {
		t.Fatalf("spectate: %v", err)
	}
	if u2.Spectate != 2 {
		t.Fatalf("after second spectate: level=%d, want 2", u2.Spectate)
	}

	u3, err := room.Spectate(u.ID)
	if err != nil {
		t.Fatalf("spectate: %v", err)
	}
	if u3.Spectate != 2 {
		t.Fatalf("spectate level should saturate at 2, got %d", u3.Spectate)
	}
}

func TestRemoveUserClearsTeamMembership(t *testing.T) {
	room := NewRoom("room", "testgame", "uniform", "Non-Lockout", "seed", testBoard(t))
	u := room.AddUser("alice", &fakeTransport{})
	team := room.CreateTeam("Red", "#ff0000")
	if _, _, err := room.JoinTeam(u.ID, team.ID); err != nil {
		t.Fatalf("join team: %v", err)
	}

	if !room.RemoveUser(u.ID) {
		t.Fatalf("expected RemoveUser to succeed")
	}
	if len(team.Members) != 0 {
		t.Fatalf("expected team members cleared, got %v", team.Members)
	}
	if _, ok := room.Users[u.ID]; ok {
		t.Fatalf("expected user removed from room")
	}
}

func TestDeliverDetachesOnSendFailure(t *testing.T) {
	room := NewRoom("room", "testgame", "uniform", "Non-Lockout", "seed", testBoard(t))
	failing := &fakeTransport{fail: true}
	u := room.AddUser("alice", failing)

	room.Deliver([]Event{{
		Kind:       EventRosterUpdate,
		Payload:    map[string]any{"verb": "ROSTER_UPDATE"},
		Recipients: []string{u.ID},
	}})

	if u.Transport != nil {
		t.Fatalf("expected transport detached after send failure")
	}
}

func TestAlertBoardChangesRespectsSpectateLevel(t *testing.T) {
	room := NewRoom("room", "testgame", "uniform", "Non-Lockout", "seed", testBoard(t))
	u := room.AddUser("alice", &fakeTransport{})
	if _, err := room.Spectate(u.ID); err != nil {
		t.Fatalf("spectate: %v", err)
	}

	events := room.AlertBoardChanges()
	if len(events) != 1 {
		t.Fatalf("expected one board-update event, got %d", len(events))
	}
	view, ok := events[0].Payload["board"].(map[string]any)
	if !ok {
		t.Fatalf("expected board payload to be a view map")
	}
	if view["type"] != "Non-Lockout" {
		t.Fatalf("view type = %v, want Non-Lockout", view["type"])
	}
}
