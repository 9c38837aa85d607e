package httphandler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func (h *HttpHandler) Mount(router fiber.Router) error {
	r := router.Group("/v1/importer")

	r.Get("/status", h.GetStatus)
	r.Get("/record-file", h.GetCurrentRecordFile)

	if h.gatherer != nil {
		router.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(h.gatherer, promhttp.HandlerOpts{})))
	}
	return nil
}
