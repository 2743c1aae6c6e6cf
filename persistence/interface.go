// persistence/interface.go
package persistence

import (
	"github.com/wfunc/taparena/models"
)

// Store 历史战绩存储接口
//
// Only finished-round history lives here. Live room state is in-memory
// only and dies with the process.
type Store interface {
	SaveRound(record models.RoundRecord) error
	LoadRecentRounds(limit int) ([]models.RoundRecord, error)
	TopScores(limit int) ([]models.TopScore, error)
	Close() error
}

// Noop discards everything. Used when no database is configured.
type Noop struct{}

func (Noop) SaveRound(models.RoundRecord) error { return nil }

func (Noop) LoadRecentRounds(int) ([]models.RoundRecord, error) { return nil, nil }

func (Noop) TopScores(int) ([]models.TopScore, error) { return nil, nil }

func (Noop) Close() error { return nil }
