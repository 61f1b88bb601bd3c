package app

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
)

type Health struct {
	Mode            Mode     `json:"mode"`
	Status          []string `json:"status"`
	SyncedHeight    uint64   `json:"synced_height,omitempty"`
	FinalizedHeight uint64   `json:"finalized_height,omitempty"`
	LatestHeight    uint64   `json:"latest_height,omitempty"`
	Subscribers     int      `json:"subscribers,omitempty"`
	InFlightTxs     uint64   `json:"in_flight_txs,omitempty"`
}

// Monitor serves prometheus metrics and the node health over HTTP.
type Monitor struct {
	srv    *http.Server
	router *mux.Router
	health func() *Health
	logger logrus.FieldLogger
}

func NewMonitor(port int64, health func() *Health, logger logrus.FieldLogger) *Monitor {
	r := mux.NewRouter()
	m := &Monitor{
		srv: &http.Server{
			Handler:           r,
			Addr:              fmt.Sprintf("0.0.0.0:%d", port),
			WriteTimeout:      15 * time.Second,
			ReadTimeout:       15 * time.Second,
			ReadHeaderTimeout: 15 * time.Second,
		},
		router: r,
		health: health,
		logger: logger,
	}
	r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)
	r.HandleFunc("/health", m.healthHandler).Methods(http.MethodGet)
	return m
}

func (m *Monitor) Handler() http.Handler {
	return m.router
}

func (m *Monitor) Start() error {
	lis, err := net.Listen("tcp", m.srv.Addr)
	if err != nil {
		return errors.Wrapf(err, "listen monitor on %s", m.srv.Addr)
	}
	go func() {
		m.logger.WithField("addr", lis.Addr().String()).Info("Monitor started")
		if err := m.srv.Serve(lis); err != nil && err != http.ErrServerClosed {
			m.logger.WithError(err).Error("Monitor stopped")
		}
	}()
	return nil
}

func (m *Monitor) Stop() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := m.srv.Shutdown(ctx); err != nil {
		m.logger.WithError(err).Warn("Shutdown monitor")
	}
}

func (m *Monitor) healthHandler(w http.ResponseWriter, _ *http.Request) {
	body, err := json.Marshal(m.health())
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(err.Error()))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}
