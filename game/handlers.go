package game

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

type Handler struct {
	registry *Registry
	upgrader websocket.Upgrader
}

func NewHandler(registry *Registry) *Handler {
	return &Handler{
		registry: registry,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
}

func (h *Handler) RegisterRoutes(r *gin.Engine) {
	games := r.Group("/games")
	games.POST("", h.CreateGameHandler)
	games.GET("/:code", h.GameStatusHandler)

	r.GET("/ws", h.WebsocketHandler)
}

// CreateGameHandler is the synchronous create surface: it allocates the
// session and hands back the room code plus the host's identity, which the
// host then binds over the websocket with a reconnect message.
func (h *Handler) CreateGameHandler(ctx *gin.Context) {
	var payload createGamePayload
	if err := ctx.ShouldBindJSON(&payload); err != nil {
		ctx.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid-payload"})
		return
	}
	if !validPlayerName(payload.PlayerName) || !validPlayerCount(payload.PlayerCount) {
		ctx.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid-payload"})
		return
	}

	session, host := h.registry.CreateSession(payload.PlayerName, payload.PlayerCount)
	ctx.JSON(http.StatusCreated, gin.H{"roomCode": session.Code(), "playerId": host.Id()})
}

// GameStatusHandler is the existence/status check used before joining.
func (h *Handler) GameStatusHandler(ctx *gin.Context) {
	code := strings.ToUpper(ctx.Param("code"))
	session, ok := h.registry.LookupByCode(code)
	if !validRoomCode(code) || !ok {
		ctx.JSON(http.StatusOK, gin.H{"exists": false})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"exists":      true,
		"playerCount": session.NumPlayers(),
		"maxPlayers":  session.MaxPlayers(),
		"phase":       session.Phase(),
	})
}

func (h *Handler) WebsocketHandler(ctx *gin.Context) {
	socket, err := h.upgrader.Upgrade(ctx.Writer, ctx.Request, nil)
	if err != nil {
		slog.Error("ws upgrade failed", "ip", ctx.ClientIP(), "err", err)
		return
	}

	conn := newPlayerConn(NewWebsocketConnection(socket))
	go conn.WritePump()
	h.serveConnection(conn)
}

// serveConnection is the per-connection read loop. The first accepted
// message must bind the connection to a player identity (create_game,
// join_game or reconnect); everything after that is dispatched against the
// bound session.
func (h *Handler) serveConnection(conn *playerConn) {
	var session *Session
	var playerId string

	defer func() {
		conn.release("")
		if session != nil {
			h.handleDisconnect(session, playerId, conn)
		}
	}()

	for {
		data, err := conn.socket.Read()
		if err != nil {
			return
		}
		if !conn.Allow() {
			continue
		}

		var msg ClientMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			conn.Enqueue(errorEvent("malformed message", "INVALID_PAYLOAD").marshal())
			continue
		}

		if session == nil {
			session, playerId = h.bindConnection(conn, msg)
			continue
		}

		if left := h.dispatch(conn, session, playerId, msg); left {
			session = nil
			playerId = ""
			return
		}
	}
}

func (h *Handler) bindConnection(conn *playerConn, msg ClientMessage) (*Session, string) {
	switch msg.Type {
	case "create_game":
		var payload createGamePayload
		if err := json.Unmarshal(msg.Data, &payload); err != nil ||
			!validPlayerName(payload.PlayerName) || !validPlayerCount(payload.PlayerCount) {
			conn.Enqueue(errorEvent("invalid create payload", "INVALID_PAYLOAD").marshal())
			return nil, ""
		}

		session, host := h.registry.CreateSession(payload.PlayerName, payload.PlayerCount)
		if err := session.attach(host.Id(), conn); err != nil {
			h.sendError(conn, err)
			return nil, ""
		}
		conn.Enqueue(gameCreatedEvent(session.Code(), host.Id()).marshal())
		conn.Enqueue(gameJoinedEvent(session.Snapshot(host.Id()), host.Id()).marshal())
		return session, host.Id()

	case "join_game":
		var payload joinGamePayload
		if err := json.Unmarshal(msg.Data, &payload); err != nil || !validPlayerName(payload.PlayerName) {
			conn.Enqueue(errorEvent("invalid join payload", "INVALID_PAYLOAD").marshal())
			return nil, ""
		}
		code := strings.ToUpper(payload.RoomCode)
		if !validRoomCode(code) {
			conn.Enqueue(errorEvent("invalid join payload", "INVALID_PAYLOAD").marshal())
			return nil, ""
		}

		session, player, err := h.registry.JoinSession(code, payload.PlayerName)
		if err != nil {
			h.sendError(conn, err)
			return nil, ""
		}
		if err := session.attach(player.Id(), conn); err != nil {
			h.sendError(conn, err)
			return nil, ""
		}
		conn.Enqueue(gameJoinedEvent(session.Snapshot(player.Id()), player.Id()).marshal())
		if ps, ok := session.PublicPlayerState(player.Id()); ok {
			session.broadcast(playerJoinedEvent(ps))
		}
		session.broadcastState()
		slog.Info("player joined", "room", code, "player", payload.PlayerName)
		return session, player.Id()

	case "reconnect":
		var payload reconnectPayload
		if err := json.Unmarshal(msg.Data, &payload); err != nil {
			conn.Enqueue(errorEvent("invalid reconnect payload", "INVALID_PAYLOAD").marshal())
			return nil, ""
		}

		session, ok := h.registry.LookupByCode(strings.ToUpper(payload.RoomCode))
		if !ok {
			h.sendError(conn, ErrGameNotFound)
			return nil, ""
		}
		if err := session.attach(payload.PlayerId, conn); err != nil {
			h.sendError(conn, err)
			return nil, ""
		}
		conn.Enqueue(gameJoinedEvent(session.Snapshot(payload.PlayerId), payload.PlayerId).marshal())
		session.broadcastState()
		return session, payload.PlayerId

	default:
		conn.Enqueue(errorEvent("connection not bound to a game", "INVALID_PAYLOAD").marshal())
		return nil, ""
	}
}

func (h *Handler) dispatch(conn *playerConn, session *Session, playerId string, msg ClientMessage) (left bool) {
	switch msg.Type {
	case "leave_game":
		if s, res, err := h.registry.LeaveSession(playerId); err == nil && !res.Empty {
			s.broadcast(playerLeftEvent(res.PlayerId))
			s.broadcastState()
		}
		return true

	case "player_ready":
		ready, err := session.ToggleReady(playerId)
		if err != nil {
			h.sendError(conn, err)
			return false
		}
		session.broadcast(playerReadyChangedEvent(playerId, ready))
		session.broadcastState()

	case "start_game":
		if err := session.StartGame(playerId); err != nil {
			h.sendError(conn, err)
			return false
		}
		session.broadcast(phaseChangedEvent(PhaseSetup))
		for _, a := range session.assignments() {
			session.sendTo(a.playerId, roleAssignedEvent(a.role, a.servantKingId))
			session.sendTo(a.playerId, roomAssignmentEvent(a.room))
		}
		session.broadcastSnapshot(gameStartedEvent)
		slog.Info("game started", "room", session.Code())

	case "player_role_ready":
		_, started, err := session.ToggleRoleReady(playerId)
		if err != nil {
			h.sendError(conn, err)
			return false
		}
		session.broadcastState()
		if started {
			h.announcePlaying(session)
		}

	case "confirm_room":
		var payload confirmRoomPayload
		if err := json.Unmarshal(msg.Data, &payload); err != nil {
			conn.Enqueue(errorEvent("invalid payload", "INVALID_PAYLOAD").marshal())
			return false
		}
		started, err := session.ConfirmRoom(playerId, payload.Room)
		if err != nil {
			h.sendError(conn, err)
			return false
		}
		if room, ok := session.PlayerRoom(playerId); ok {
			session.broadcast(roomConfirmedEvent(playerId, room))
		}
		session.broadcastState()
		if started {
			h.announcePlaying(session)
		}

	case "point_at_player":
		var payload targetPayload
		if err := json.Unmarshal(msg.Data, &payload); err != nil {
			conn.Enqueue(errorEvent("invalid payload", "INVALID_PAYLOAD").marshal())
			return false
		}
		res, err := session.UpdatePointing(playerId, payload.TargetId)
		if err != nil {
			h.sendError(conn, err)
			return false
		}
		session.broadcast(pointingChangedEvent(playerId, payload.TargetId))
		if res != nil {
			session.broadcast(leaderElectedEvent(*res))
		}
		session.broadcastState()

	case "declare_leader":
		res, err := session.DeclareLeader(playerId)
		if err != nil {
			h.sendError(conn, err)
			return false
		}
		session.broadcast(leaderElectedEvent(*res))
		session.broadcastState()

	case "send_player":
		var payload targetPayload
		if err := json.Unmarshal(msg.Data, &payload); err != nil {
			conn.Enqueue(errorEvent("invalid payload", "INVALID_PAYLOAD").marshal())
			return false
		}
		move, err := session.SendPlayer(playerId, payload.TargetId)
		if err != nil {
			h.sendError(conn, err)
			return false
		}
		session.broadcast(playerSentEvent(*move))
		session.broadcastState()

	case "gatekeeper_send":
		var payload targetPayload
		if err := json.Unmarshal(msg.Data, &payload); err != nil {
			conn.Enqueue(errorEvent("invalid payload", "INVALID_PAYLOAD").marshal())
			return false
		}
		move, err := session.GatekeeperSend(playerId, payload.TargetId)
		if err != nil {
			h.sendError(conn, err)
			return false
		}
		session.broadcast(playerSentEvent(*move))
		session.broadcastState()

	case "swordsmith_confirm":
		var payload swordsmithConfirmPayload
		if err := json.Unmarshal(msg.Data, &payload); err != nil {
			conn.Enqueue(errorEvent("invalid payload", "INVALID_PAYLOAD").marshal())
			return false
		}
		if err := session.SwordsmithConfirm(playerId, payload.AssassinId); err != nil {
			h.sendError(conn, err)
			return false
		}
		session.sendTo(payload.AssassinId, swordsmithConfirmedEvent(payload.AssassinId))

	case "declare_victory":
		var payload declareVictoryPayload
		if err := json.Unmarshal(msg.Data, &payload); err != nil {
			conn.Enqueue(errorEvent("invalid payload", "INVALID_PAYLOAD").marshal())
			return false
		}
		if err := session.DeclareVictory(playerId, payload.Winner); err != nil {
			h.sendError(conn, err)
			return false
		}
		session.broadcast(phaseChangedEvent(PhaseEnded))
		session.broadcast(gameEndedEvent(Victory{Winner: payload.Winner}))
		session.broadcastState()

	case "restart_game":
		if err := session.Restart(playerId); err != nil {
			h.sendError(conn, err)
			return false
		}
		session.broadcast(phaseChangedEvent(PhaseLobby))
		session.broadcastState()

	case "request_state":
		conn.Enqueue(stateUpdateEvent(session.Snapshot(playerId)).marshal())

	default:
		conn.Enqueue(errorEvent("unknown message type", "INVALID_PAYLOAD").marshal())
	}
	return false
}

// announcePlaying fans out the setup → playing transition.
func (h *Handler) announcePlaying(session *Session) {
	session.broadcast(phaseChangedEvent(PhasePlaying))
	session.broadcastState()
	slog.Info("game playing", "room", session.Code())
}

// handleDisconnect runs when a bound connection drops without an explicit
// leave. It is a no-op for a connection the player has already replaced by
// reconnecting. In the lobby the player is simply removed; once roles are
// dealt the identity survives for a reconnect.
func (h *Handler) handleDisconnect(session *Session, playerId string, conn *playerConn) {
	if !session.detach(playerId, conn) {
		return
	}
	if session.Phase() == PhaseLobby {
		if s, res, err := h.registry.LeaveSession(playerId); err == nil && !res.Empty {
			s.broadcast(playerLeftEvent(res.PlayerId))
			s.broadcastState()
		}
		return
	}
	session.broadcastState()
}

func (h *Handler) sendError(conn *playerConn, err error) {
	conn.Enqueue(errorEvent(err.Error(), ErrorCode(err)).marshal())
}
