// Package history is a local, read-only cache of the user's orders, fed by
// checkout and by pushed status events. It lets the order list render
// without a round trip and keeps working offline; the backend remains the
// authority.
package history

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormlogger "gorm.io/gorm/logger"

	"github.com/slicemaster/storefront/internal/order"
	"github.com/slicemaster/storefront/pkg/collection"
)

// Record is the persisted shape of one cached order. Lines are kept as a
// JSON blob; nothing ever queries into them.
type Record struct {
	ID            string `gorm:"primaryKey"`
	Status        string
	Total         float64
	AddressID     string
	PaymentMethod string
	EstimatedTime string
	LinesJSON     string
	PlacedAt      time.Time
	UpdatedAt     time.Time
}

// TableName keeps the sqlite schema stable.
func (Record) TableName() string { return "orders" }

// Store is the sqlite-backed order cache.
type Store struct {
	db *gorm.DB
}

// Open opens (and migrates) the cache at dsn. Use ":memory:" in tests.
func Open(dsn string) (*Store, error) {
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("history: open %s: %w", dsn, err)
	}
	if err := db.AutoMigrate(&Record{}); err != nil {
		return nil, fmt.Errorf("history: migrate: %w", err)
	}
	return &Store{db: db}, nil
}

// Record upserts one order into the cache.
func (s *Store) Record(o order.Order) error {
	lines, err := json.Marshal(o.Lines)
	if err != nil {
		return fmt.Errorf("history: marshal lines: %w", err)
	}

	rec := Record{
		ID:            o.ID,
		Status:        string(o.Status),
		Total:         o.Total,
		AddressID:     o.AddressID,
		PaymentMethod: o.PaymentMethod,
		EstimatedTime: o.EstimatedTime,
		LinesJSON:     string(lines),
		PlacedAt:      o.CreatedAt,
		UpdatedAt:     time.Now(),
	}
	if rec.PlacedAt.IsZero() {
		rec.PlacedAt = time.Now()
	}

	return s.db.Clauses(clause.OnConflict{UpdateAll: true}).Create(&rec).Error
}

// UpdateStatus moves a cached order to a new status. Unknown ids are
// ignored; a pushed event can outrun the checkout write.
func (s *Store) UpdateStatus(orderID string, st order.Status) error {
	res := s.db.Model(&Record{}).Where("id = ?", orderID).
		Updates(map[string]interface{}{"status": string(st), "updated_at": time.Now()})
	return res.Error
}

// List returns the cached orders, most recent first.
func (s *Store) List() ([]order.Order, error) {
	var recs []Record
	if err := s.db.Order("placed_at desc").Find(&recs).Error; err != nil {
		return nil, err
	}
	return collection.Map(recs, toOrder), nil
}

// Get returns one cached order by id.
func (s *Store) Get(orderID string) (order.Order, bool, error) {
	var rec Record
	err := s.db.First(&rec, "id = ?", orderID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return order.Order{}, false, nil
	}
	if err != nil {
		return order.Order{}, false, err
	}
	return toOrder(rec), true, nil
}

func toOrder(rec Record) order.Order {
	var lines []order.Line
	_ = json.Unmarshal([]byte(rec.LinesJSON), &lines)
	return order.Order{
		ID:            rec.ID,
		Lines:         lines,
		Status:        order.Status(rec.Status),
		Total:         rec.Total,
		AddressID:     rec.AddressID,
		PaymentMethod: rec.PaymentMethod,
		EstimatedTime: rec.EstimatedTime,
		CreatedAt:     rec.PlacedAt,
	}
}
