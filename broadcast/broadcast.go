// broadcast/broadcast.go
package broadcast

import (
	"encoding/json"
	"errors"

	"github.com/wfunc/landlord/logger"
	"github.com/wfunc/landlord/models"
	"github.com/wfunc/landlord/network"
	"github.com/wfunc/landlord/room"
	"github.com/wfunc/landlord/session"
	"github.com/wfunc/landlord/state"
	"github.com/wfunc/landlord/table"
)

var (
	ErrRoomNotFound = errors.New("room not found")
)

// 广播接口
type Broadcaster interface {
	BroadcastToRoom(tableID uint64, msgID uint16, data []byte) error
	BroadcastToIdentities(ids []models.Identity, msgID uint16, data []byte) error
}

// TableBroadcaster 把牌桌事件推送给房间内的连接
type TableBroadcaster struct {
	roomManager    *room.Manager
	sessionManager *session.Manager
}

func NewTableBroadcaster(roomManager *room.Manager, sessionManager *session.Manager) *TableBroadcaster {
	return &TableBroadcaster{
		roomManager:    roomManager,
		sessionManager: sessionManager,
	}
}

var (
	_ Broadcaster      = (*TableBroadcaster)(nil)
	_ room.Broadcaster = (*TableBroadcaster)(nil)
	_ table.EventSink  = (*TableBroadcaster)(nil)
)

// EventMsgID 事件对应的推送消息ID
func EventMsgID(kind table.EventKind) (uint16, bool) {
	switch kind {
	case table.EventSeatFilled:
		return network.MsgTypeSeatFilled, true
	case table.EventGameStarted:
		return network.MsgTypeGameStarted, true
	case table.EventLandlordElected:
		return network.MsgTypeLandlordElected, true
	case table.EventCardsPlayed:
		return network.MsgTypeCardsPlayed, true
	case table.EventGameEnded:
		return network.MsgTypeGameEnded, true
	}
	return 0, false
}

// Watch 订阅牌桌
func (b *TableBroadcaster) Watch(tableID uint64, s *session.Session) {
	b.roomManager.GetOrCreateRoom(tableID, b).AddSession(s)
}

// Leave 连接断开
func (b *TableBroadcaster) Leave(sessionID string) {
	b.roomManager.Leave(sessionID)
}

// Notify 实现 table.EventSink
func (b *TableBroadcaster) Notify(ev table.Event) {
	msgID, ok := EventMsgID(ev.Kind())
	if !ok {
		logger.Log.Warnw("unknown table event", "kind", ev.Kind(), "table", ev.Table())
		return
	}
	data, err := json.Marshal(ev)
	if err != nil {
		logger.Log.Errorw("encode table event", "kind", ev.Kind(), "error", err)
		return
	}

	r := b.roomManager.GetOrCreateRoom(ev.Table(), b)
	switch e := ev.(type) {
	case table.SeatFilled:
		// 入座玩家自动订阅
		for _, s := range b.sessionManager.GetByIdentity(e.Player) {
			r.AddSession(s)
		}
	case table.GameStarted:
		r.SetPhase(state.Bidding)
	case table.LandlordElected:
		r.SetPhase(state.Playing)
	case table.GameEnded:
		r.SetPhase(state.Ended)
	}

	if err := r.Broadcast(msgID, data); err != nil {
		logger.Log.Warnw("broadcast table event", "table", ev.Table(), "error", err)
	}
	if e, ok := ev.(table.GameEnded); ok {
		// 受益人不在桌上时单独通知
		if !watching(r, e.WinnerBeneficiary) {
			_ = b.BroadcastToIdentities([]models.Identity{e.WinnerBeneficiary}, msgID, data)
		}
		b.roomManager.RemoveRoom(ev.Table())
	}
}

func watching(r *room.Room, id models.Identity) bool {
	for _, s := range r.GetSessions() {
		if s.Identity == id {
			return true
		}
	}
	return false
}

func (b *TableBroadcaster) BroadcastToRoom(tableID uint64, msgID uint16, data []byte) error {
	r, exists := b.roomManager.GetRoom(tableID)
	if !exists {
		return ErrRoomNotFound
	}

	// Get a thread-safe copy of the sessions
	for _, s := range r.GetSessions() {
		if err := s.Send(msgID, data); err != nil {
			logger.Log.Debugw("send to session failed", "session", s.ID, "error", err)
			continue
		}
	}
	return nil
}

func (b *TableBroadcaster) BroadcastToIdentities(ids []models.Identity, msgID uint16, data []byte) error {
	for _, id := range ids {
		for _, s := range b.sessionManager.GetByIdentity(id) {
			if err := s.Send(msgID, data); err != nil {
				logger.Log.Debugw("send to session failed", "session", s.ID, "error", err)
			}
		}
	}
	return nil
}

