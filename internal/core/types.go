package core

import (
	"errors"
	"time"
)

const (
	DashName      = "TuskDash"
	DashUserAgent = "TuskDash/0.1"
	DashVersion   = "0.1.0"
)

// ErrUnavailable is returned by collaborators whose credentials are not configured.
var ErrUnavailable = errors.New("dependency unavailable")

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAssistant
}

type Turn struct {
	ID        int64     `json:"id"`
	Role      Role      `json:"role"`
	Text      string    `json:"text"`
	Embedding []float32 `json:"-"`
	Distance  float64   `json:"-"`
	CreatedAt time.Time `json:"timestamp"`
}

type KnowledgeFragment struct {
	ID         int64     `json:"id"`
	DocumentID string    `json:"document_id"`
	Filename   string    `json:"filename"`
	Index      int       `json:"index"`
	Text       string    `json:"text"`
	TokenCount int       `json:"token_count"`
	Embedding  []float32 `json:"-"`
	Distance   float64   `json:"-"`
	CreatedAt  time.Time `json:"created_at"`
}

type PriceSample struct {
	ID        int64     `json:"id"`
	Symbol    string    `json:"symbol"`
	Price     float64   `json:"price"`
	CreatedAt time.Time `json:"created_at"`
}

type AlertSetting struct {
	ID               int64      `json:"id"`
	Symbol           string     `json:"symbol"`
	ThresholdPercent float64    `json:"threshold"`
	Active           bool       `json:"is_active"`
	LastAlertAt      *time.Time `json:"last_alert_at,omitempty"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

// Embedding is the outcome of a best-effort embedding call.
// A zero value is unavailable, which is distinct from an available empty vector.
type Embedding struct {
	Vector    []float32
	Available bool
}

func NewEmbedding(vec []float32) Embedding {
	return Embedding{Vector: vec, Available: true}
}

func UnavailableEmbedding() Embedding {
	return Embedding{}
}

// EmbedPurpose selects the retrieval task the vector is produced for.
type EmbedPurpose string

const (
	PurposeQuery    EmbedPurpose = "RETRIEVAL_QUERY"
	PurposeDocument EmbedPurpose = "RETRIEVAL_DOCUMENT"
)

// PromptTurn is one history entry in the model client's own role vocabulary.
type PromptTurn struct {
	Role string
	Text string
}

const (
	PromptRoleUser  = "user"
	PromptRoleModel = "model"
)

type PromptBundle struct {
	Model       string
	System      string
	History     []PromptTurn
	UserMessage string
}

// Reply is the outcome of a generation call. Failed replies carry a user-safe Text.
type Reply struct {
	Text   string
	Model  string
	Failed bool
	Reason string
}

type Candle struct {
	Time   time.Time
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume float64
}

type Series struct {
	Symbol        string
	PreviousClose float64
	Candles       []Candle
}

func (s Series) Empty() bool {
	return len(s.Candles) == 0
}

type Direction string

const (
	DirectionUp   Direction = "up"
	DirectionDown Direction = "down"
)

type Alert struct {
	Symbol        string
	Direction     Direction
	Price         float64
	Reference     float64
	ChangePercent string
	Threshold     float64
	At            time.Time
}
