package data

import (
	"github.com/google/wire"
	"github.com/panjf2000/ants/v2"
	"github.com/redis/go-redis/v9"
	kredis "github.com/yola1107/kratos/v2/library/db/redis"
	"github.com/yola1107/kratos/v2/log"

	"minigame/internal/biz"
	"minigame/internal/conf"
)

// ProviderSet is data providers.
var ProviderSet = wire.NewSet(NewData, NewDataRepo, NewRedis)

const persistPoolSize = 64

type dataRepo struct {
	data *Data
	log  *log.Helper
}

// NewDataRepo .
func NewDataRepo(data *Data, logger log.Logger) biz.DataRepo {
	return &dataRepo{
		data: data,
		log:  log.NewHelper(logger),
	}
}

// Data .
type Data struct {
	redis *redis.Client
	pool  *ants.Pool // 战绩落库走异步池, 不阻塞对局
}

// NewData .
func NewData(c *conf.Data, logger log.Logger, redis *redis.Client) (*Data, func(), error) {
	pool, err := ants.NewPool(persistPoolSize)
	if err != nil {
		return nil, nil, err
	}

	cleanup := func() {
		log.Info("closing the data resources")
		pool.Release()
		if redis != nil {
			_ = redis.Close()
		}
	}
	return &Data{redis: redis, pool: pool}, cleanup, nil
}

func NewRedis(c *conf.Data) *redis.Client {
	rdb := kredis.NewClient(
		kredis.WithAddress(c.Redis.Addr),
		kredis.WithPassword(c.Redis.Password),
		kredis.WithDB(int(c.Redis.DB)),
	)
	return rdb
}
