package adapters

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"backoffice/pkg/events"
	"backoffice/pkg/logger"
)

func newObservedConsumer(threshold int) (*StockAlertConsumer, *observer.ObservedLogs) {
	core, logs := observer.New(zapcore.DebugLevel)
	return &StockAlertConsumer{
		threshold: threshold,
		log:       &logger.Logger{Logger: zap.New(core)},
	}, logs
}

func stockMessage(t *testing.T, available int) []byte {
	t.Helper()
	event := events.NewStockReconciledEvent(events.StockPayload{
		ProductID:         "p1",
		ProductName:       "Kurta",
		TotalQuantity:     10,
		ConsumedQuantity:  10 - available,
		AvailableQuantity: available,
		Oversold:          available < 0,
	}, "trace-1")
	body, err := json.Marshal(event)
	require.NoError(t, err)
	return body
}

func TestHandleMessage_Alerts(t *testing.T) {
	tests := []struct {
		name      string
		available int
		level     zapcore.Level
		message   string
	}{
		{"oversold", -2, zapcore.WarnLevel, "stock alert: product oversold"},
		{"low stock", 3, zapcore.WarnLevel, "stock alert: low stock"},
		{"at threshold", 5, zapcore.WarnLevel, "stock alert: low stock"},
		{"healthy", 8, zapcore.DebugLevel, "stock level ok"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, logs := newObservedConsumer(5)

			err := c.HandleMessage(context.Background(), stockMessage(t, tt.available))

			require.NoError(t, err)
			require.Equal(t, 1, logs.Len())
			entry := logs.All()[0]
			assert.Equal(t, tt.level, entry.Level)
			assert.Equal(t, tt.message, entry.Message)
			assert.Equal(t, int64(tt.available), entry.ContextMap()["available_quantity"])
		})
	}
}

func TestHandleMessage_InvalidJSON(t *testing.T) {
	c, logs := newObservedConsumer(5)

	err := c.HandleMessage(context.Background(), []byte("{not json"))

	assert.Error(t, err)
	assert.Equal(t, 1, logs.FilterLevelExact(zapcore.ErrorLevel).Len())
}
