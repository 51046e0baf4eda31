package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

type Pinger interface {
	Ping(ctx context.Context) error
}

// BrokerStatus reports whether the optional event broker is connected.
type BrokerStatus interface {
	Connected() bool
}

type HealthHandler struct {
	appName   string
	env       string
	index     Pinger
	broker    BrokerStatus
	startedAt time.Time
}

type dependencyStatus struct {
	OK      bool   `json:"ok"`
	Message string `json:"message,omitempty"`
}

// NewHealthHandler builds the health check. broker may be nil when events are disabled.
func NewHealthHandler(appName, env string, index Pinger, broker BrokerStatus, startedAt time.Time) *HealthHandler {
	return &HealthHandler{
		appName:   appName,
		env:       env,
		index:     index,
		broker:    broker,
		startedAt: startedAt,
	}
}

func (h *HealthHandler) Check(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	deps := gin.H{"index": h.checkIndex(ctx)}
	allOK := deps["index"].(dependencyStatus).OK
	if h.broker != nil {
		rmq := h.checkBroker()
		deps["rabbitmq"] = rmq
		allOK = allOK && rmq.OK
	}

	statusCode := http.StatusOK
	if !allOK {
		statusCode = http.StatusServiceUnavailable
	}
	c.JSON(statusCode, gin.H{
		"app":          h.appName,
		"env":          h.env,
		"uptime_sec":   int(time.Since(h.startedAt).Seconds()),
		"dependencies": deps,
	})
}

func (h *HealthHandler) checkIndex(ctx context.Context) dependencyStatus {
	if err := h.index.Ping(ctx); err != nil {
		return dependencyStatus{OK: false, Message: err.Error()}
	}
	return dependencyStatus{OK: true}
}

func (h *HealthHandler) checkBroker() dependencyStatus {
	if !h.broker.Connected() {
		return dependencyStatus{OK: false, Message: "connection closed"}
	}
	return dependencyStatus{OK: true}
}
