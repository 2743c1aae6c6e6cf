// persistence/postgresql.go
package persistence

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	// PostgreSQL 驱动
	_ "github.com/lib/pq"

	"github.com/wfunc/taparena/models"
)

// PostgreSQL 基于database/sql的实现，不依赖ORM
type PostgreSQL struct {
	db *sql.DB
}

// NewPostgreSQL 创建 PostgreSQL 数据库连接
func NewPostgreSQL(host string, port int, user, password, dbname string) (*PostgreSQL, error) {
	connStr := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		host, port, user, password, dbname)

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(5 * time.Minute)

	p := &PostgreSQL{db: db}
	if err := p.createTables(); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *PostgreSQL) createTables() error {
	_, err := p.db.Exec(`
        CREATE TABLE IF NOT EXISTS rounds (
            id BIGSERIAL PRIMARY KEY,
            room_id TEXT NOT NULL,
            duration INT NOT NULL,
            players JSONB NOT NULL,
            finished_at TIMESTAMPTZ NOT NULL,
            created_at TIMESTAMPTZ NOT NULL DEFAULT now()
        );
        CREATE INDEX IF NOT EXISTS idx_rounds_room_id ON rounds (room_id);
        CREATE INDEX IF NOT EXISTS idx_rounds_finished_at ON rounds (finished_at DESC);
    `)
	return err
}

// SaveRound 保存一局游戏记录
func (p *PostgreSQL) SaveRound(record models.RoundRecord) error {
	players, err := json.Marshal(record.Players)
	if err != nil {
		return err
	}

	_, err = p.db.Exec(
		`INSERT INTO rounds (room_id, duration, players, finished_at) VALUES ($1, $2, $3, $4)`,
		record.RoomID, record.Duration, players, record.FinishedAt,
	)
	return err
}

// LoadRecentRounds 加载最近的对局记录
func (p *PostgreSQL) LoadRecentRounds(limit int) ([]models.RoundRecord, error) {
	rows, err := p.db.Query(
		`SELECT room_id, duration, players, finished_at FROM rounds ORDER BY finished_at DESC LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []models.RoundRecord
	for rows.Next() {
		var record models.RoundRecord
		var players []byte
		if err := rows.Scan(&record.RoomID, &record.Duration, &players, &record.FinishedAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(players, &record.Players); err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	return records, rows.Err()
}

// TopScores 查询历史最高手速
func (p *PostgreSQL) TopScores(limit int) ([]models.TopScore, error) {
	rows, err := p.db.Query(
		`
        SELECT
            player->>'name' AS name,
            MAX((player->>'taps')::int) AS taps
        FROM rounds, jsonb_array_elements(players) AS player
        GROUP BY player->>'name'
        ORDER BY taps DESC
        LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var scores []models.TopScore
	for rows.Next() {
		var score models.TopScore
		if err := rows.Scan(&score.Name, &score.Taps); err != nil {
			return nil, err
		}
		scores = append(scores, score)
	}
	return scores, rows.Err()
}

// Close 关闭数据库连接
func (p *PostgreSQL) Close() error {
	return p.db.Close()
}
