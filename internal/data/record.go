package data

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/yola1107/kratos/v2/library/xgo"

	"minigame/internal/biz/stats"
	. "minigame/pkg/xredis"
)

// hash 待写入的一张哈希
type hash struct {
	key    string
	fields map[string]string
}

// SaveGameRecord 整局战绩落库: 一局一哈希 + 每回合/每玩家各一哈希,
// 键用 uuid 铸造。台账在工作循环上已定稿, 这里先拍平快照再交给异步池。
func (r *dataRepo) SaveGameRecord(rec *stats.GameRecord) error {
	id := uuid.NewString()
	hashes := flattenRecord(id, rec)
	gameKey := rec.GameKey()

	return r.data.pool.Submit(func() {
		ctx := context.Background()
		for _, h := range hashes {
			if err := r.data.redis.HMSet(ctx, h.key, h.fields).Err(); err != nil {
				r.log.Errorf("save record %s: %s: %v", id, h.key, err)
				return
			}
		}
		if err := r.data.redis.LPush(ctx, RecordIndexKey(gameKey), id).Err(); err != nil {
			r.log.Errorf("index record %s: %v", id, err)
		}
	})
}

func flattenRecord(id string, rec *stats.GameRecord) []*hash {
	rounds := rec.Rounds()
	out := []*hash{{
		key: RecordKey(id),
		fields: map[string]string{
			RecordGameField:   rec.GameKey(),
			RecordWinnerField: rec.Winner(),
			RecordRoundsField: xgo.Int64ToStr(int64(len(rounds))),
			RecordSavedField:  xgo.Int64ToStr(time.Now().Unix()),
		},
	}}

	for i, round := range rounds {
		out = append(out, &hash{key: RoundKey(id, i), fields: recordFields(round.Record)})

		for _, pr := range round.Players() {
			f := recordFields(pr.Record)
			f["uid"] = xgo.Int64ToStr(pr.UID)
			f["name"] = pr.Name
			f["team"] = pr.Team
			out = append(out, &hash{key: RoundPlayerKey(id, i, pr.UID), fields: f})
		}
	}

	for _, res := range rec.Results() {
		out = append(out, &hash{
			key: ResultKey(id, res.UID),
			fields: map[string]string{
				"name":          res.Name,
				"starting_team": res.StartingTeam,
				"current_team":  res.CurrentTeam,
				"rating_delta":  xgo.Float64ToStr(res.RatingDelta),
			},
		})
	}
	return out
}

// recordFields 事件台账拍平成 hash 字段, 保留首次写入顺序无关的键值对
func recordFields(r *stats.Record) map[string]string {
	m := make(map[string]string, r.Len())
	for _, field := range r.Fields() {
		v, _ := r.Get(field)
		m[field] = fmt.Sprintf("%v", v)
	}
	return m
}
