package storage

import "github.com/gosha-popular/fstock-bot/models"

// SnapshotStore persists and reads back per-retailer filtered price snapshots.
type SnapshotStore interface {
	WriteSnapshot(queryDir, retailer string, records []models.PriceRecord) error
	SnapshotPrices(queryDir string) ([][]float64, error)
}

// HistoryReader is the read side of the history store, enough for rendering
// reports over existing series.
type HistoryReader interface {
	Keys() ([]string, error)
	Rows(key string) (Series, error)
}

// SubscriberStore is the registry of report recipients.
type SubscriberStore interface {
	AddUser(id int64, username string) error
	Users() ([]models.User, error)
	AddChannel(id int64, title string) error
	ActiveChannels() ([]models.Channel, error)
	DeactivateChannel(id int64) error
	Close() error
}
