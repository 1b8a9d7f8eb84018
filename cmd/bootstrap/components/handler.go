package components

import (
	"garage-reservation/internal/handler"
	"garage-reservation/internal/handler/api"
	"garage-reservation/internal/handler/middleware"

	"go.uber.org/fx"
)

var HandlerModule = fx.Module("handler",
	fx.Provide(
		api.NewAuthHandler,
		api.NewBookingHandler,
		api.NewGarageHandler,
		api.NewAnalyticsHandler,
		middleware.NewAuthMiddleware,
		NewHandlers,
	),
	fx.Invoke(handler.NewRouter),
)

func NewHandlers(auth *api.AuthHandler, booking *api.BookingHandler, garage *api.GarageHandler, analytics *api.AnalyticsHandler) handler.Handlers {
	return handler.Handlers{
		Auth:      auth,
		Booking:   booking,
		Garage:    garage,
		Analytics: analytics,
	}
}
