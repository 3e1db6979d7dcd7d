package controllers

import (
	"net/http"
	"time"

	"github.com/shashiranjanraj/commandes/pkg/ctx"
)

// Health answers liveness probes.
func Health(x *ctx.Context) {
	x.JSON(http.StatusOK, map[string]string{
		"status":    "OK",
		"message":   "API Commandes opérationnelle",
		"timestamp": time.Now().UTC().Format(time.RFC3339Nano),
	})
}
