package store

import (
	"context"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/vishalnagda1/outlook-mail-responder/internal/profile"
)

const (
	settingCacheSize = 64
	settingCacheTTL  = 10 * time.Minute
)

// Store provides database access to all raw objects.
type Store struct {
	profile *profile.Profile
	driver  Driver

	settingCache *expirable.LRU[SettingKey, *Setting]
}

// New creates a new instance of Store.
func New(driver Driver, profile *profile.Profile) *Store {
	return &Store{
		driver:       driver,
		profile:      profile,
		settingCache: expirable.NewLRU[SettingKey, *Setting](settingCacheSize, nil, settingCacheTTL),
	}
}

func (s *Store) GetDriver() Driver {
	return s.driver
}

func (s *Store) Close() error {
	return s.driver.Close()
}

// UpsertSetting writes a setting and refreshes the cache.
func (s *Store) UpsertSetting(ctx context.Context, upsert *Setting) (*Setting, error) {
	setting, err := s.driver.UpsertSetting(ctx, upsert)
	if err != nil {
		return nil, err
	}
	s.settingCache.Add(setting.Name, setting)
	return setting, nil
}

// GetSetting returns one setting, from cache when fresh. A missing
// setting returns (nil, nil).
func (s *Store) GetSetting(ctx context.Context, find *FindSetting) (*Setting, error) {
	if find.Name != nil {
		if cached, ok := s.settingCache.Get(*find.Name); ok {
			return cached, nil
		}
	}
	setting, err := s.driver.GetSetting(ctx, find)
	if err != nil {
		return nil, err
	}
	if setting != nil {
		s.settingCache.Add(setting.Name, setting)
	}
	return setting, nil
}

// GetSettingValue returns the value of a named setting, or fallback
// when unset.
func (s *Store) GetSettingValue(ctx context.Context, name SettingKey, fallback string) (string, error) {
	setting, err := s.GetSetting(ctx, &FindSetting{Name: &name})
	if err != nil {
		return "", err
	}
	if setting == nil {
		return fallback, nil
	}
	return setting.Value, nil
}

func (s *Store) ListSettings(ctx context.Context, find *FindSetting) ([]*Setting, error) {
	return s.driver.ListSettings(ctx, find)
}

func (s *Store) DeleteSetting(ctx context.Context, delete *DeleteSetting) error {
	if err := s.driver.DeleteSetting(ctx, delete); err != nil {
		return err
	}
	s.settingCache.Remove(delete.Name)
	return nil
}

func (s *Store) CreateEmailLog(ctx context.Context, create *EmailLog) (*EmailLog, error) {
	return s.driver.CreateEmailLog(ctx, create)
}

func (s *Store) ListEmailLogs(ctx context.Context, find *FindEmailLog) ([]*EmailLog, error) {
	return s.driver.ListEmailLogs(ctx, find)
}

func (s *Store) DeleteEmailLog(ctx context.Context, delete *DeleteEmailLog) error {
	return s.driver.DeleteEmailLog(ctx, delete)
}

// HasProcessed reports whether an email from the given source was
// already handled by a previous sweep.
func (s *Store) HasProcessed(ctx context.Context, source, messageID string) (bool, error) {
	limit := 1
	logs, err := s.driver.ListEmailLogs(ctx, &FindEmailLog{
		Source:    &source,
		MessageID: &messageID,
		Limit:     &limit,
	})
	if err != nil {
		return false, err
	}
	return len(logs) > 0, nil
}
