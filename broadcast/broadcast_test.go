package broadcast

import (
	"encoding/json"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wfunc/landlord/models"
	"github.com/wfunc/landlord/network"
	"github.com/wfunc/landlord/room"
	"github.com/wfunc/landlord/session"
	"github.com/wfunc/landlord/state"
	"github.com/wfunc/landlord/table"
)

type sent struct {
	msgID uint16
	data  []byte
}

// MockConnection 记录发送的消息
type MockConnection struct {
	mu   sync.Mutex
	sent []sent
}

func (m *MockConnection) Send(msgID uint16, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, sent{msgID, data})
	return nil
}
func (m *MockConnection) Close() error                         { return nil }
func (m *MockConnection) RemoteAddr() net.Addr                 { return &net.TCPAddr{} }
func (m *MockConnection) SetHeartbeat(interval time.Duration)  {}
func (m *MockConnection) ReadPacket() (*network.Packet, error) { return nil, nil }

func (m *MockConnection) ids() []uint16 {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]uint16, len(m.sent))
	for i, s := range m.sent {
		out[i] = s.msgID
	}
	return out
}

func setup() (*TableBroadcaster, *room.Manager, *session.Manager) {
	rooms := room.NewRoomManager()
	sessions := session.NewManager()
	return NewTableBroadcaster(rooms, sessions), rooms, sessions
}

func TestSeatedPlayerReceivesEvents(t *testing.T) {
	b, rooms, sessions := setup()
	aliceConn := &MockConnection{}
	bobConn := &MockConnection{}
	sessions.Add(session.NewSession("s1", "alice", aliceConn))
	sessions.Add(session.NewSession("s2", "bob", bobConn))

	b.Notify(table.SeatFilled{TableID: 1, Player: "alice", Seat: 0, Wager: 10, Pot: 10})
	b.Notify(table.SeatFilled{TableID: 1, Player: "bob", Seat: 1, Wager: 10, Pot: 20})

	assert.Equal(t, []uint16{network.MsgTypeSeatFilled, network.MsgTypeSeatFilled}, aliceConn.ids())
	assert.Equal(t, []uint16{network.MsgTypeSeatFilled}, bobConn.ids())

	var got table.SeatFilled
	require.NoError(t, json.Unmarshal(aliceConn.sent[1].data, &got))
	assert.Equal(t, uint64(20), got.Pot)

	r, ok := rooms.GetRoom(1)
	require.True(t, ok)
	assert.Len(t, r.GetSessions(), 2)
}

func TestWatcherAndPhaseTracking(t *testing.T) {
	b, rooms, sessions := setup()
	conn := &MockConnection{}
	watcher := session.NewSession("w", "spectator", conn)
	sessions.Add(watcher)
	b.Watch(3, watcher)

	b.Notify(table.GameStarted{TableID: 3, Pot: 30})
	r, _ := rooms.GetRoom(3)
	assert.Equal(t, state.Bidding, r.GetPhase())

	b.Notify(table.LandlordElected{TableID: 3, LandlordIndex: 1, HighestBid: 2})
	assert.Equal(t, state.Playing, r.GetPhase())

	b.Notify(table.GameEnded{TableID: 3, WinnerIndex: 1})
	_, ok := rooms.GetRoom(3)
	assert.False(t, ok, "room is released after the game ends")

	assert.Equal(t, []uint16{
		network.MsgTypeGameStarted,
		network.MsgTypeLandlordElected,
		network.MsgTypeGameEnded,
	}, conn.ids())
}

func TestLeaveStopsDelivery(t *testing.T) {
	b, _, sessions := setup()
	conn := &MockConnection{}
	s := session.NewSession("w", "spectator", conn)
	sessions.Add(s)
	b.Watch(5, s)
	b.Leave(s.ID)

	b.Notify(table.CardsPlayed{TableID: 5, PlayerIndex: 0, NextTurn: 1})
	assert.Empty(t, conn.ids())
}

func TestBroadcastToRoomUnknown(t *testing.T) {
	b, _, _ := setup()
	assert.ErrorIs(t, b.BroadcastToRoom(42, network.MsgTypeTableState, nil), ErrRoomNotFound)
}

func TestBroadcastToIdentities(t *testing.T) {
	b, _, sessions := setup()
	a1, a2, c := &MockConnection{}, &MockConnection{}, &MockConnection{}
	sessions.Add(session.NewSession("a1", "alice", a1))
	sessions.Add(session.NewSession("a2", "alice", a2))
	sessions.Add(session.NewSession("c", "carol", c))

	require.NoError(t, b.BroadcastToIdentities([]models.Identity{"alice"}, network.MsgTypeGameEnded, nil))
	assert.Len(t, a1.ids(), 1)
	assert.Len(t, a2.ids(), 1)
	assert.Empty(t, c.ids())
}

func TestGameEndedReachesAbsentBeneficiary(t *testing.T) {
	b, _, sessions := setup()
	player, vault := &MockConnection{}, &MockConnection{}
	sessions.Add(session.NewSession("p", "alice", player))
	sessions.Add(session.NewSession("v", "alice-vault", vault))

	b.Notify(table.SeatFilled{TableID: 9, Player: "alice", Seat: 0, Wager: 10, Pot: 10})
	b.Notify(table.GameEnded{TableID: 9, WinnerIndex: 0, WinnerPlayer: "alice", WinnerBeneficiary: "alice-vault"})

	assert.Equal(t, []uint16{network.MsgTypeSeatFilled, network.MsgTypeGameEnded}, player.ids())
	assert.Equal(t, []uint16{network.MsgTypeGameEnded}, vault.ids())
}

func TestGameEndedNotDuplicatedForSeatedBeneficiary(t *testing.T) {
	b, _, sessions := setup()
	conn := &MockConnection{}
	sessions.Add(session.NewSession("p", "alice", conn))

	b.Notify(table.SeatFilled{TableID: 9, Player: "alice", Seat: 0, Wager: 10, Pot: 10})
	b.Notify(table.GameEnded{TableID: 9, WinnerIndex: 0, WinnerPlayer: "alice", WinnerBeneficiary: "alice"})

	assert.Equal(t, []uint16{network.MsgTypeSeatFilled, network.MsgTypeGameEnded}, conn.ids())
}

func TestEventMsgID(t *testing.T) {
	for _, kind := range []table.EventKind{
		table.EventSeatFilled,
		table.EventGameStarted,
		table.EventLandlordElected,
		table.EventCardsPlayed,
		table.EventGameEnded,
	} {
		_, ok := EventMsgID(kind)
		assert.True(t, ok, kind)
	}
	_, ok := EventMsgID("bogus")
	assert.False(t, ok)
}
