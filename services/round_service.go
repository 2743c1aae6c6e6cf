// services/round_service.go
package services

import (
	"github.com/wfunc/taparena/logger"
	"github.com/wfunc/taparena/models"
	"github.com/wfunc/taparena/persistence"
)

// RoundService 记录完成的对局并提供战绩查询
type RoundService struct {
	store persistence.Store
}

func NewRoundService(store persistence.Store) *RoundService {
	return &RoundService{store: store}
}

// RoundFinished implements room.RoundSink. The room manager calls it on
// its own goroutine, so a slow database never stalls a tick.
func (s *RoundService) RoundFinished(record models.RoundRecord) {
	if err := s.store.SaveRound(record); err != nil {
		logger.Log.Errorf("Failed to save round for room %s: %v", record.RoomID, err)
		return
	}
	logger.Log.Infof("Recorded round for room %s (%d players)", record.RoomID, len(record.Players))
}

// RecentRounds 查询最近的对局
func (s *RoundService) RecentRounds(limit int) ([]models.RoundRecord, error) {
	if limit <= 0 {
		limit = 10
	}
	return s.store.LoadRecentRounds(limit)
}

// TopScores 查询历史最高手速
func (s *RoundService) TopScores(limit int) ([]models.TopScore, error) {
	if limit <= 0 {
		limit = 10
	}
	return s.store.TopScores(limit)
}
