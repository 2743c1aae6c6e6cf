package server

import (
	"encoding/json"
	"net/http"
	stdrpc "net/rpc"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/wfunc/taparena/broadcast"
	"github.com/wfunc/taparena/config"
	"github.com/wfunc/taparena/logger"
	"github.com/wfunc/taparena/models"
	"github.com/wfunc/taparena/monitor"
	"github.com/wfunc/taparena/network"
	"github.com/wfunc/taparena/persistence"
	"github.com/wfunc/taparena/room"
	taparena_rpc "github.com/wfunc/taparena/rpc"
	"github.com/wfunc/taparena/services"
	"github.com/wfunc/taparena/session"
	"github.com/wfunc/taparena/timer"
)

type GameServer struct {
	cfg            *config.Config
	upgrader       websocket.Upgrader
	roomManager    *room.Manager
	sessionManager *session.Manager
	roundService   *services.RoundService
	timers         *timer.Manager
	mon            *monitor.Monitor
	rpcServer      *taparena_rpc.Server
	shutdownChan   chan struct{}
}

func NewGameServer(cfg *config.Config, store persistence.Store) *GameServer {
	s := &GameServer{
		cfg:            cfg,
		sessionManager: session.NewManager(),
		timers:         timer.NewManager(),
		mon:            monitor.NewMonitor("taparena"),
		shutdownChan:   make(chan struct{}),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true // 允许所有跨域请求
			},
		},
	}

	// 初始化广播器与房间管理器
	broadcaster := broadcast.NewRoomBroadcaster(s.sessionManager)
	s.roomManager = room.NewManager(s.timers, broadcaster, cfg.Game.RoundSeconds)

	// 初始化战绩服务
	s.roundService = services.NewRoundService(store)
	s.roomManager.SetRoundSink(&countingSink{service: s.roundService, mon: s.mon})

	// 初始化RPC服务器
	rpcServer, err := taparena_rpc.NewServer(cfg.Server.RPCAddress)
	if err != nil {
		logger.Log.Fatalf("Failed to create RPC server: %v", err)
	}
	s.rpcServer = rpcServer

	adminService := taparena_rpc.NewAdminService(s.roomManager, s.sessionManager, s.roundService)
	stdrpc.Register(adminService)

	return s
}

func (s *GameServer) Start() error {
	go s.rpcServer.Start()
	go s.reapIdleSessions()
	s.mon.StartServer(s.cfg.Server.MetricsAddress)

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWebSocket)
	mux.Handle("/", http.FileServer(http.Dir(s.cfg.Server.StaticDir)))

	logger.Log.Infof("Game server listening on %s", s.cfg.Server.HTTPAddress)
	return http.ListenAndServe(s.cfg.Server.HTTPAddress, mux)
}

func (s *GameServer) Shutdown() {
	close(s.shutdownChan)
	s.rpcServer.Stop()
	s.timers.Stop()
}

func (s *GameServer) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Log.Infof("Failed to upgrade connection: %v", err)
		return
	}
	s.handleConnection(conn)
}

func (s *GameServer) handleConnection(conn *websocket.Conn) {
	wsConn := network.NewWSConnection(conn)
	if timeout := s.cfg.Game.SessionTimeout; timeout > 0 {
		// Transport-level backstop: a socket that goes fully silent
		// fails its read before the reaper gets to it.
		wsConn.SetHeartbeat(timeout)
	}
	sess := session.NewSession(uuid.New().String(), wsConn)
	s.sessionManager.Add(sess)
	s.mon.IncOnlinePlayers()

	logger.Log.Infof("New connection from %s, session ID: %s", wsConn.RemoteAddr(), sess.GetID())

	defer func() {
		logger.Log.Infof("Connection closed from %s, session ID: %s", wsConn.RemoteAddr(), sess.GetID())
		// Prune membership first so departure broadcasts skip this
		// session, then forget the connection.
		s.roomManager.Leave(sess.GetID())
		s.sessionManager.Remove(sess.GetID())
		s.mon.DecOnlinePlayers()
		s.mon.SetActiveRooms(s.roomManager.RoomCount())
		wsConn.Close()
	}()

	for {
		select {
		case <-s.shutdownChan:
			return
		default:
			event, err := wsConn.ReadEvent()
			if err != nil {
				return
			}
			s.handleEvent(sess, event)
		}
	}
}

func (s *GameServer) handleEvent(sess *session.Session, event *network.Event) {
	start := time.Now()
	sess.Touch()
	s.mon.IncEventsReceived()
	defer func() {
		s.mon.ObserveEventLatency(time.Since(start))
	}()

	switch event.Type {
	case network.EventPing:
		sess.Touch()
	case network.EventCreateGame:
		s.handleCreateGame(sess, event)
	case network.EventJoinGame:
		s.handleJoinGame(sess, event)
	case network.EventSetReady:
		s.roomManager.ToggleReady(sess.GetID())
	case network.EventTap:
		if s.roomManager.Tap(sess.GetID()) {
			s.mon.IncTaps()
		}
	case network.EventGoAgain:
		s.roomManager.Restart(sess.GetID())
	case network.EventLeaveGame:
		s.roomManager.Leave(sess.GetID())
		s.mon.SetActiveRooms(s.roomManager.RoomCount())
	default:
		logger.Log.Infof("Unknown event type: %s", event.Type)
	}
}

func (s *GameServer) handleCreateGame(sess *session.Session, event *network.Event) {
	var req network.CreateGameRequest
	if event.Payload != nil {
		if err := json.Unmarshal(event.Payload, &req); err != nil {
			return
		}
	}

	sess.Set("name", req.Name)
	s.roomManager.CreateRoom(sess.GetID(), req.Name)
	s.mon.SetActiveRooms(s.roomManager.RoomCount())
}

func (s *GameServer) handleJoinGame(sess *session.Session, event *network.Event) {
	var req network.JoinGameRequest
	if event.Payload != nil {
		if err := json.Unmarshal(event.Payload, &req); err != nil {
			return
		}
	}

	if err := s.roomManager.JoinRoom(sess.GetID(), req.GameID, req.Name); err != nil {
		sess.Send(network.EventError, network.ErrorPayload{Message: err.Error()})
		return
	}

	sess.Set("name", req.Name)
	s.mon.SetActiveRooms(s.roomManager.RoomCount())
}

// reapIdleSessions closes connections that have gone silent for longer
// than the configured session timeout. Closing the socket fails the read
// loop, which runs the normal disconnect path.
func (s *GameServer) reapIdleSessions() {
	timeout := s.cfg.Game.SessionTimeout
	if timeout <= 0 {
		return
	}
	ticker := time.NewTicker(timeout / 2)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			for _, sess := range s.sessionManager.IdleSince(time.Now().Add(-timeout)) {
				logger.Log.Infof("Closing idle session %s", sess.GetID())
				sess.Close()
			}
		case <-s.shutdownChan:
			return
		}
	}
}

// countingSink wraps the round service so finished rounds show up in the
// metrics without coupling services to monitor.
type countingSink struct {
	service *services.RoundService
	mon     *monitor.Monitor
}

func (s *countingSink) RoundFinished(record models.RoundRecord) {
	s.mon.IncRoundsFinished()
	s.service.RoundFinished(record)
}
