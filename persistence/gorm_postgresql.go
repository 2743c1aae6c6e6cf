// persistence/gorm_postgresql.go
package persistence

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/wfunc/taparena/models"
)

// GormPostgreSQL 使用GORM的PostgreSQL实现
type GormPostgreSQL struct {
	db *gorm.DB
}

// RoundModel 对局记录表
type RoundModel struct {
	ID         uint   `gorm:"primaryKey"`
	RoomID     string `gorm:"index;not null"`
	Duration   int    `gorm:"not null"`
	Players    string `gorm:"type:jsonb;not null"`
	FinishedAt time.Time
	CreatedAt  time.Time
}

func (RoundModel) TableName() string { return "rounds" }

// NewGormPostgreSQL 创建GORM PostgreSQL数据库连接
func NewGormPostgreSQL(host string, port int, user, password, dbname string) (*GormPostgreSQL, error) {
	dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		host, port, user, password, dbname)

	gormLogger := logger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		logger.Config{
			SlowThreshold: time.Second,
			LogLevel:      logger.Silent,
			Colorful:      false,
		},
	)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: gormLogger,
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}

	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)

	if err := db.AutoMigrate(&RoundModel{}); err != nil {
		return nil, err
	}

	return &GormPostgreSQL{db: db}, nil
}

// SaveRound 保存一局游戏记录
func (p *GormPostgreSQL) SaveRound(record models.RoundRecord) error {
	players, err := json.Marshal(record.Players)
	if err != nil {
		return err
	}

	row := RoundModel{
		RoomID:     record.RoomID,
		Duration:   record.Duration,
		Players:    string(players),
		FinishedAt: record.FinishedAt,
	}
	return p.db.Create(&row).Error
}

// LoadRecentRounds 加载最近的对局记录
func (p *GormPostgreSQL) LoadRecentRounds(limit int) ([]models.RoundRecord, error) {
	var rows []RoundModel
	if err := p.db.Order("finished_at desc").Limit(limit).Find(&rows).Error; err != nil {
		return nil, err
	}

	records := make([]models.RoundRecord, 0, len(rows))
	for _, row := range rows {
		record := models.RoundRecord{
			RoomID:     row.RoomID,
			Duration:   row.Duration,
			FinishedAt: row.FinishedAt,
		}
		if err := json.Unmarshal([]byte(row.Players), &record.Players); err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	return records, nil
}

// TopScores 查询历史最高手速
func (p *GormPostgreSQL) TopScores(limit int) ([]models.TopScore, error) {
	var scores []models.TopScore

	err := p.db.Raw(
		`
        SELECT
            player->>'name' AS name,
            MAX((player->>'taps')::int) AS taps
        FROM rounds, jsonb_array_elements(players::jsonb) AS player
        GROUP BY player->>'name'
        ORDER BY taps DESC
        LIMIT ?`,
		limit,
	).Scan(&scores).Error

	return scores, err
}

// Close 关闭数据库连接
func (p *GormPostgreSQL) Close() error {
	sqlDB, err := p.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
