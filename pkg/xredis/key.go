package xredis

import "fmt"

// Redis 字段常量
const (
	PlayerUIDField           = "uid"
	PlayerNameField          = "name"
	PlayerTokensField        = "tokens"
	PlayerTicketsField       = "tickets"
	PlayerTokensSpentField   = "tokens_spent"
	PlayerTicketsEarnedField = "tickets_earned"
	PlayerSessionCountField  = "session_count"
	PlayerPassExpiryField    = "pass_expiry"
	PlayerJoinedAtField      = "joined_at"
	PlayerRatingsField       = "ratings"
)

// 战绩哈希字段
const (
	RecordGameField   = "game_key"
	RecordWinnerField = "winner"
	RecordRoundsField = "rounds"
	RecordSavedField  = "saved_at"
)

func PlayerKey(uid int64) string {
	return fmt.Sprintf("minigame:player:%d", uid)
}

// RecordKey 整局战绩
func RecordKey(id string) string {
	return fmt.Sprintf("minigame:record:%s", id)
}

// RecordIndexKey 按游戏类型的战绩索引 (list, 新的在前)
func RecordIndexKey(gameKey string) string {
	return fmt.Sprintf("minigame:records:%s", gameKey)
}

// RoundKey 单回合事件
func RoundKey(id string, round int) string {
	return fmt.Sprintf("minigame:record:%s:round:%d", id, round)
}

// RoundPlayerKey 单回合单玩家事件
func RoundPlayerKey(id string, round int, uid int64) string {
	return fmt.Sprintf("minigame:record:%s:round:%d:player:%d", id, round, uid)
}

// ResultKey 单玩家整局结果
func ResultKey(id string, uid int64) string {
	return fmt.Sprintf("minigame:record:%s:result:%d", id, uid)
}
