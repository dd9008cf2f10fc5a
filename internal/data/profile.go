package data

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/yola1107/kratos/v2/library/xgo"

	"minigame/internal/biz/player"
	. "minigame/pkg/xredis"
)

var allProfileFields = []string{
	PlayerUIDField,
	PlayerNameField,
	PlayerTokensField,
	PlayerTicketsField,
	PlayerTokensSpentField,
	PlayerTicketsEarnedField,
	PlayerSessionCountField,
	PlayerPassExpiryField,
	PlayerJoinedAtField,
	PlayerRatingsField,
}

func (r *dataRepo) SaveProfile(ctx context.Context, p *player.Profile) error {
	return r.data.redis.HMSet(ctx, PlayerKey(p.UID), ToRedisMap(p)).Err()
}

// LoadProfile 拉取玩家存档, 没有存档返回 nil
func (r *dataRepo) LoadProfile(ctx context.Context, uid int64) (*player.Profile, error) {
	key := PlayerKey(uid)

	v, err := r.data.redis.Exists(ctx, key).Result()
	if err != nil {
		return nil, err
	}
	if v == 0 {
		return nil, nil
	}

	values, err := r.data.redis.HMGet(ctx, key, allProfileFields...).Result()
	if err != nil {
		return nil, err
	}
	return FromRedisData(uid, AddList(allProfileFields, values)), nil
}

func AddList(keys []string, values []any) map[string]string {
	p := map[string]string{}
	for i, v := range values {
		if v == nil {
			continue
		}
		p[keys[i]] = fmt.Sprintf("%v", v)
	}
	return p
}

func FromRedisData(uid int64, data map[string]string) *player.Profile {
	p := &player.Profile{}

	p.UID = uid
	p.Name = data[PlayerNameField]
	p.Tokens = xgo.StrToInt64(data[PlayerTokensField])
	p.Tickets = xgo.StrToInt64(data[PlayerTicketsField])
	p.TokensSpent = xgo.StrToInt64(data[PlayerTokensSpentField])
	p.TicketsEarned = xgo.StrToInt64(data[PlayerTicketsEarnedField])
	p.SessionCount = xgo.StrToInt32(data[PlayerSessionCountField])
	p.PassExpiry = xgo.StrToInt64(data[PlayerPassExpiryField])
	p.JoinedAt = xgo.StrToInt64(data[PlayerJoinedAtField])

	p.Ratings = map[string]float64{}
	if s := data[PlayerRatingsField]; s != "" {
		_ = json.Unmarshal([]byte(s), &p.Ratings)
	}
	return p
}

// ToRedisMap 转为 Redis hash 的 map[string]string
func ToRedisMap(p *player.Profile) map[string]string {
	ratings, _ := json.Marshal(p.Ratings)
	m := make(map[string]string)
	m[PlayerUIDField] = xgo.Int64ToStr(p.UID)
	m[PlayerNameField] = p.Name
	m[PlayerTokensField] = xgo.Int64ToStr(p.Tokens)
	m[PlayerTicketsField] = xgo.Int64ToStr(p.Tickets)
	m[PlayerTokensSpentField] = xgo.Int64ToStr(p.TokensSpent)
	m[PlayerTicketsEarnedField] = xgo.Int64ToStr(p.TicketsEarned)
	m[PlayerSessionCountField] = xgo.Int32ToStr(p.SessionCount)
	m[PlayerPassExpiryField] = xgo.Int64ToStr(p.PassExpiry)
	m[PlayerJoinedAtField] = xgo.Int64ToStr(p.JoinedAt)
	m[PlayerRatingsField] = string(ratings)
	return m
}
