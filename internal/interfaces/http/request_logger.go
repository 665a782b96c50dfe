package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/jhoicas/solterito-inventario/pkg/logger"
)

// RequestObserver recibe la duración de cada petición (Prometheus).
type RequestObserver interface {
	ObserveRequest(method, path string, status int, d time.Duration)
}

// RequestLogger registra cada petición con zerolog y, si hay observer, sus métricas.
// Se usa la ruta registrada (no la URL) para no disparar la cardinalidad.
func RequestLogger(log *logger.Logger, obs RequestObserver) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()
		if err != nil {
			// deja que el ErrorHandler fije el status antes de registrar
			if herr := c.App().ErrorHandler(c, err); herr != nil {
				_ = c.SendStatus(fiber.StatusInternalServerError)
			}
		}
		d := time.Since(start)
		status := c.Response().StatusCode()

		path := c.Route().Path
		if obs != nil {
			obs.ObserveRequest(c.Method(), path, status, d)
		}

		var ev *zerolog.Event
		if status >= fiber.StatusInternalServerError {
			ev = log.Error()
		} else {
			ev = log.Info()
		}
		ev.Str("method", c.Method()).
			Str("path", c.Path()).
			Str("route", path).
			Int("status", status).
			Dur("duration", d).
			Str("ip", c.IP()).
			Msg("request")
		return nil
	}
}
