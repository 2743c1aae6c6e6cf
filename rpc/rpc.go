package rpc

import (
	"net"
	"net/rpc"

	"github.com/wfunc/taparena/logger"
	"github.com/wfunc/taparena/models"
	"github.com/wfunc/taparena/room"
	"github.com/wfunc/taparena/services"
	"github.com/wfunc/taparena/session"
)

// Server manages the RPC listener.
type Server struct {
	listener net.Listener
	address  string
}

// NewServer creates a new RPC server.
func NewServer(addr string) (*Server, error) {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}
	return &Server{
		listener: listener,
		address:  addr,
	}, nil
}

// Start begins listening for RPC requests.
func (s *Server) Start() {
	logger.Log.Infof("RPC server listening on %s", s.address)
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			if _, ok := err.(*net.OpError); ok {
				logger.Log.Info("RPC server listener closed.")
				return
			}
			logger.Log.Errorf("RPC server accept error: %v", err)
			continue
		}
		go rpc.ServeConn(conn)
	}
}

// Stop closes the RPC listener.
func (s *Server) Stop() {
	if s.listener != nil {
		logger.Log.Info("Stopping RPC server.")
		s.listener.Close()
	}
}

// AdminService exposes operational queries over net/rpc. It must follow
// the net/rpc signature rules: exported methods, exported argument types,
// pointer reply, error return.
type AdminService struct {
	roomManager    *room.Manager
	sessionManager *session.Manager
	roundService   *services.RoundService
}

func NewAdminService(rm *room.Manager, sm *session.Manager, rs *services.RoundService) *AdminService {
	return &AdminService{
		roomManager:    rm,
		sessionManager: sm,
		roundService:   rs,
	}
}

type StatsArgs struct{}

type StatsReply struct {
	ActiveRooms   int
	OnlinePlayers int
}

func (a *AdminService) GetStats(args *StatsArgs, reply *StatsReply) error {
	reply.ActiveRooms = a.roomManager.RoomCount()
	reply.OnlinePlayers = a.sessionManager.Count()
	return nil
}

type TopScoresArgs struct {
	Limit int
}

type TopScoresReply struct {
	Scores []models.TopScore
}

func (a *AdminService) GetTopScores(args *TopScoresArgs, reply *TopScoresReply) error {
	scores, err := a.roundService.TopScores(args.Limit)
	if err != nil {
		return err
	}
	reply.Scores = scores
	return nil
}

type RecentRoundsArgs struct {
	Limit int
}

type RecentRoundsReply struct {
	Rounds []models.RoundRecord
}

func (a *AdminService) GetRecentRounds(args *RecentRoundsArgs, reply *RecentRoundsReply) error {
	rounds, err := a.roundService.RecentRounds(args.Limit)
	if err != nil {
		return err
	}
	reply.Rounds = rounds
	return nil
}
