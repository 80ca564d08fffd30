package web

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/vadiminshakov/momentum/internal/domain"
)

// handleTradeStream pushes ledger entries as server-sent events. All existing
// entries are sent first, then new ones as they are appended.
func (s *Server) handleTradeStream(c echo.Context) error {
	w := c.Response()
	r := c.Request()

	w.Header().Set(echo.HeaderContentType, "text/event-stream")
	w.Header().Set(echo.HeaderCacheControl, "no-cache")
	w.Header().Set(echo.HeaderConnection, "keep-alive")

	// send a comment heartbeat so proxies keep the connection
	heartbeat := time.NewTicker(heartbeatInterval)
	defer heartbeat.Stop()

	pollTicker := time.NewTicker(s.pollInterval)
	defer pollTicker.Stop()

	lastIndex := uint64(0)
	writeTrades := func(records []domain.LedgerRecord) error {
		for _, record := range records {
			payload, err := json.Marshal(newTradeView(record.Entry))
			if err != nil {
				return err
			}
			fmt.Fprintf(w, "event: trade\n")
			fmt.Fprintf(w, "data: %s\n\n", payload)
			w.Flush()
			lastIndex = record.Index
		}
		return nil
	}

	initial, err := s.deps.Ledger.EntriesAfter(lastIndex)
	if err != nil {
		s.l.Error("trade stream initial load", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, errorResponse{Error: "failed to load trades"})
	}

	w.WriteHeader(http.StatusOK)
	w.Flush()
	if err := writeTrades(initial); err != nil {
		return err
	}

	for {
		select {
		case <-r.Context().Done():
			return nil
		case <-heartbeat.C:
			fmt.Fprintf(w, ": ping\n\n")
			w.Flush()
		case <-pollTicker.C:
			records, err := s.deps.Ledger.EntriesAfter(lastIndex)
			if err == nil {
				err = writeTrades(records)
			}
			if err != nil {
				s.l.Warn("trade stream poll", zap.Error(err))
			}
		}
	}
}
