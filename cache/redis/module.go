package redis

import (
	"go.uber.org/fx"
)

// Module provides the Redis client.
var Module = fx.Module("redis",
	fx.Provide(NewClient),
)
