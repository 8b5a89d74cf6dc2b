package worker

// receipt_worker.go
// Processes receipt jobs from QueueReceipt: generates the PDF ticket for a
// committed sale and mails it to the customer. SMTP goes through the circuit
// breaker so a dead relay fails fast instead of stalling the pool.

import (
	"context"
	"encoding/json"
	"fmt"

	"retailpos/internal/infra"
	"retailpos/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// ReceiptJobPayload is the job envelope sent to QueueReceipt.
type ReceiptJobPayload struct {
	SaleID      string `json:"sale_id"`
	ClientEmail string `json:"client_email"`
}

type ReceiptWorker struct {
	saleRepo       repository.SaleRepository
	mailer         *infra.Mailer
	breaker        *infra.CircuitBreaker
	pdfStoragePath string
	storeName      string
}

func NewReceiptWorker(
	saleRepo repository.SaleRepository,
	mailer *infra.Mailer,
	breaker *infra.CircuitBreaker,
	pdfStoragePath string,
	storeName string,
) *ReceiptWorker {
	return &ReceiptWorker{
		saleRepo:       saleRepo,
		mailer:         mailer,
		breaker:        breaker,
		pdfStoragePath: pdfStoragePath,
		storeName:      storeName,
	}
}

// Process handles a single receipt job:
//  1. Fetch the sale (with items) from DB
//  2. Generate the PDF ticket
//  3. Send it via SMTP through the circuit breaker
func (w *ReceiptWorker) Process(ctx context.Context, raw json.RawMessage) error {
	var payload ReceiptJobPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		log.Error().Err(err).Msg("receipt_worker: invalid payload")
		return nil // malformed jobs are not retryable
	}

	saleID, err := uuid.Parse(payload.SaleID)
	if err != nil {
		log.Error().Str("sale_id", payload.SaleID).Msg("receipt_worker: invalid sale_id")
		return nil
	}

	sale, err := w.saleRepo.FindByID(ctx, saleID)
	if err != nil {
		return fmt.Errorf("receipt_worker: sale %s not found: %w", payload.SaleID, err)
	}

	pdfPath, err := infra.GenerateTicketPDF(sale, w.storeName, w.pdfStoragePath)
	if err != nil {
		return fmt.Errorf("receipt_worker: PDF generation: %w", err)
	}
	log.Info().Str("pdf", pdfPath).Str("sale_id", payload.SaleID).Msg("receipt_worker: PDF generated")

	if payload.ClientEmail == "" {
		return nil
	}

	subject := fmt.Sprintf("%s — Receipt #%d", w.storeName, sale.TicketNumber)
	body := fmt.Sprintf("Attached you will find your purchase receipt.\nTotal: $%s", sale.Total.StringFixed(2))

	sendErr := w.breaker.Execute(func() error {
		return w.mailer.Send(payload.ClientEmail, subject, body, pdfPath)
	})
	if sendErr != nil {
		return fmt.Errorf("receipt_worker: send to %s: %w", payload.ClientEmail, sendErr)
	}

	log.Info().Str("to", payload.ClientEmail).Msg("receipt_worker: receipt sent")
	return nil
}
