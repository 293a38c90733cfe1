package store

import (
	"fmt"
	"strings"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	_ "github.com/ncruces/go-sqlite3/embed"
	"github.com/ncruces/go-sqlite3/gormlite"
)

// Notice is one archived EFRSB publication. GUID is the registry identity;
// re-saving the same GUID updates the row instead of duplicating it.
type Notice struct {
	gorm.Model

	GUID string `gorm:"uniqueIndex"`

	DebtorINN  string `gorm:"index"`
	DebtorName string

	Type string

	PublishedAt time.Time

	Payload datatypes.JSONMap
}

type Store struct {
	db *gorm.DB
}

func New(path string) (*Store, error) {
	db, err := gorm.Open(gormlite.Open(path), &gorm.Config{})

	if err != nil {
		return nil, err
	}

	if err := db.AutoMigrate(&Notice{}); err != nil {
		return nil, err
	}

	return &Store{db: db}, nil
}

func (s *Store) Save(notices ...Notice) error {
	if len(notices) == 0 {
		return nil
	}

	result := s.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "guid"}},

		UpdateAll: true,
	}).Create(&notices)

	return result.Error
}

func (s *Store) List(limit, offset int) ([]Notice, error) {
	if limit <= 0 {
		limit = 100
	}

	var notices []Notice

	result := s.db.Order("published_at desc").Limit(limit).Offset(offset).Find(&notices)

	return notices, result.Error
}

func (s *Store) ByINN(inn string, limit, offset int) ([]Notice, error) {
	if limit <= 0 {
		limit = 100
	}

	var notices []Notice

	result := s.db.Where("debtor_inn = ?", inn).Order("published_at desc").Limit(limit).Offset(offset).Find(&notices)

	return notices, result.Error
}

func (s *Store) Count() (int64, error) {
	var count int64

	result := s.db.Model(&Notice{}).Count(&count)

	return count, result.Error
}

func (s *Store) Close() error {
	db, err := s.db.DB()

	if err != nil {
		return err
	}

	return db.Close()
}

// FromPayload maps one notice object from an API response onto the archive
// model. Field names vary between schema revisions, so lookups are tolerant.
func FromPayload(payload map[string]any) Notice {
	n := Notice{
		Payload: datatypes.JSONMap(payload),
	}

	n.GUID = stringField(payload, "guid", "id", "number")
	n.DebtorINN = stringField(payload, "inn", "debtorInn", "debtor_inn")
	n.DebtorName = stringField(payload, "debtorName", "debtor_name", "name")
	n.Type = stringField(payload, "type", "messageType", "message_type")

	if raw := stringField(payload, "datePublish", "publishDate", "published", "date"); raw != "" {
		for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02"} {
			if ts, err := time.Parse(layout, raw); err == nil {
				n.PublishedAt = ts
				break
			}
		}
	}

	if n.GUID == "" {
		// responses without a registry id still get a stable row identity
		n.GUID = fmt.Sprintf("%s-%s-%d", n.DebtorINN, n.Type, n.PublishedAt.Unix())
	}

	return n
}

func stringField(payload map[string]any, names ...string) string {
	for _, name := range names {
		for k, v := range payload {
			if !strings.EqualFold(k, name) {
				continue
			}

			if s, ok := v.(string); ok && s != "" {
				return s
			}
		}
	}

	return ""
}
