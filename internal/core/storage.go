package core

import (
	"context"
	"time"
)

type TurnRepository interface {
	AddTurn(ctx context.Context, turn Turn) (int64, error)
	NearestUserTurns(ctx context.Context, vector []float32, excludeID int64, k int) ([]Turn, error)
	RecentTurns(ctx context.Context, limit int, excludeID int64) ([]Turn, error)
	DeleteTurnsBefore(ctx context.Context, before time.Time) (int64, error)
}

type KnowledgeRepository interface {
	AddFragments(ctx context.Context, fragments []KnowledgeFragment) error
	NearestFragments(ctx context.Context, vector []float32, k int) ([]KnowledgeFragment, error)
	DocumentFragments(ctx context.Context, documentID string) ([]KnowledgeFragment, error)
	DeleteFragmentsBefore(ctx context.Context, before time.Time) (int64, error)
}

type MarketRepository interface {
	AddPriceSample(ctx context.Context, sample PriceSample) error
	RecentPriceSamples(ctx context.Context, symbol string, limit int) ([]PriceSample, error)
	DeletePriceSamplesBefore(ctx context.Context, before time.Time) (int64, error)
	GetOrCreateSetting(ctx context.Context, defaults AlertSetting) (AlertSetting, error)
	UpdateSetting(ctx context.Context, setting AlertSetting) error
	MarkAlerted(ctx context.Context, settingID int64, at time.Time) error
}
