package worker

// alert_worker.go
// Processes low-stock alert jobs from QueueAlerts and notifies the
// back office by email.

import (
	"context"
	"encoding/json"
	"fmt"

	"retailpos/internal/infra"

	"github.com/rs/zerolog/log"
)

// AlertJobPayload is the job envelope sent to QueueAlerts.
type AlertJobPayload struct {
	ProductID string `json:"product_id"`
	Product   string `json:"product"`
	Stock     int    `json:"stock"`
	MinStock  int    `json:"min_stock"`
}

type AlertWorker struct {
	mailer     *infra.Mailer
	breaker    *infra.CircuitBreaker
	alertEmail string
	storeName  string
}

func NewAlertWorker(mailer *infra.Mailer, breaker *infra.CircuitBreaker, alertEmail, storeName string) *AlertWorker {
	return &AlertWorker{mailer: mailer, breaker: breaker, alertEmail: alertEmail, storeName: storeName}
}

// Process sends a low-stock notification for one product.
func (w *AlertWorker) Process(_ context.Context, raw json.RawMessage) error {
	var payload AlertJobPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		log.Error().Err(err).Msg("alert_worker: invalid payload")
		return nil // malformed jobs are not retryable
	}
	if w.alertEmail == "" {
		log.Warn().Str("product", payload.Product).Msg("alert_worker: no alert email configured — skipping")
		return nil
	}

	subject := fmt.Sprintf("%s — low stock: %s", w.storeName, payload.Product)
	body := fmt.Sprintf(
		"Product %s is at %d units (reorder threshold %d).\nProduct ID: %s",
		payload.Product, payload.Stock, payload.MinStock, payload.ProductID,
	)

	sendErr := w.breaker.Execute(func() error {
		return w.mailer.Send(w.alertEmail, subject, body, "")
	})
	if sendErr != nil {
		return fmt.Errorf("alert_worker: send: %w", sendErr)
	}

	log.Info().Str("product", payload.Product).Int("stock", payload.Stock).Msg("alert_worker: alert sent")
	return nil
}
