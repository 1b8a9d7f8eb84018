package bootstrap

import (
	"garage-reservation/cmd/bootstrap/components"

	"go.uber.org/fx"
)

var Module = fx.Options(
	ConfigModule,
	DBModule,
	RedisModule,
	JWTModule,
	ReconcilerModule,
	components.RepositoryModule,
	components.UseCaseModule,
	components.HandlerModule,
)
