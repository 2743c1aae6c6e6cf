// models/models.go
package models

import (
	"time"
)

// PlayerResult 单局玩家结果
type PlayerResult struct {
	PlayerID string `json:"player_id"`
	Name     string `json:"name"`
	Taps     int    `json:"taps"`
	Winner   bool   `json:"winner"`
}

// RoundRecord 一局游戏的最终记录
type RoundRecord struct {
	RoomID     string         `json:"room_id"`
	Duration   int            `json:"duration"` // round length in seconds
	Players    []PlayerResult `json:"players"`
	FinishedAt time.Time      `json:"finished_at"`
}

// TopScore 排行榜条目
type TopScore struct {
	Name string `json:"name"`
	Taps int    `json:"taps"`
}
