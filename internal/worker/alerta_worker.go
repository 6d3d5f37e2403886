package worker

// alerta_worker.go
// Processes low-stock jobs from QueueAlertasStock by e-mailing the warehouse.

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog/log"
)

// AlertaStockPayload is the job payload sent to QueueAlertasStock.
type AlertaStockPayload struct {
	ProductoID  string `json:"producto_id"`
	Nombre      string `json:"nombre"`
	Cantidad    int    `json:"cantidad"`
	StockMinimo int    `json:"stock_minimo"`
}

// MailSender is satisfied by *infra.Mailer.
type MailSender interface {
	Send(to, subject, body string) error
}

// AlertaStockWorker e-mails a low-stock notice to a fixed recipient.
type AlertaStockWorker struct {
	mailer MailSender
	to     string
}

func NewAlertaStockWorker(mailer MailSender, to string) *AlertaStockWorker {
	return &AlertaStockWorker{mailer: mailer, to: to}
}

// Process returns an error only for failures worth retrying.
func (w *AlertaStockWorker) Process(_ context.Context, raw json.RawMessage) error {
	var p AlertaStockPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		log.Error().Err(err).Msg("alerta_worker: invalid payload")
		return nil
	}
	if w.to == "" {
		log.Warn().Str("producto", p.Nombre).Msg("alerta_worker: ALERT_EMAIL empty, skipping")
		return nil
	}

	subject := fmt.Sprintf("Stock bajo: %s", p.Nombre)
	body := fmt.Sprintf(
		"El producto %s (%s) quedo con %d unidades en almacen.\nStock minimo configurado: %d.\n",
		p.Nombre, p.ProductoID, p.Cantidad, p.StockMinimo,
	)
	if err := w.mailer.Send(w.to, subject, body); err != nil {
		return fmt.Errorf("alerta_worker: send: %w", err)
	}
	log.Info().Str("to", w.to).Str("producto", p.Nombre).Msg("alerta_worker: alerta enviada")
	return nil
}
