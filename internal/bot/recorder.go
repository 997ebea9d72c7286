package bot

import "memeindex-bot/internal/models"

// Recorder is notified of every outbound call the bot makes.
type Recorder interface {
	RecordDelivery(d models.Delivery)
}

// Recorders fans a delivery out to several recorders.
type Recorders []Recorder

func (rs Recorders) RecordDelivery(d models.Delivery) {
	for _, r := range rs {
		r.RecordDelivery(d)
	}
}

type nopRecorder struct{}

func (nopRecorder) RecordDelivery(models.Delivery) {}
