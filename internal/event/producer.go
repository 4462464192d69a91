package event

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/trace"

	"github.com/akshansh2332/driftclic-aesthetic-studio/internal/domain"
	"github.com/akshansh2332/driftclic-aesthetic-studio/internal/store"
	pkgkafka "github.com/akshansh2332/driftclic-aesthetic-studio/pkg/kafka"
	"github.com/akshansh2332/driftclic-aesthetic-studio/pkg/logger"
)

// Event types for storefront domain events.
const (
	TypeCartUpdated     = "storefront.cart.updated"
	TypeCartCleared     = "storefront.cart.cleared"
	TypeWishlistUpdated = "storefront.wishlist.updated"
)

// Kafka topics the events are published to.
var (
	TopicCartUpdated     = pkgkafka.Topic("storefront", "cart.updated")
	TopicCartCleared     = pkgkafka.Topic("storefront", "cart.cleared")
	TopicWishlistUpdated = pkgkafka.Topic("storefront", "wishlist.updated")
)

// AggregateTypeSession is the aggregate every storefront event belongs to.
const AggregateTypeSession = "session"

// SourceStorefront identifies events originating from this service.
const SourceStorefront = "storefront-service"

// MetadataTraceID is the metadata key holding the trace id of the request
// that caused the event.
const MetadataTraceID = "trace_id"

// CartUpdatedData is the payload for a cart.updated event.
type CartUpdatedData struct {
	SessionID   string          `json:"session_id"`
	Op          string          `json:"op"`
	Lines       []CartLineData  `json:"lines"`
	ItemCount   int             `json:"item_count"`
	TotalAmount decimal.Decimal `json:"total_amount"`
}

// CartLineData is the line payload within cart events.
type CartLineData struct {
	ProductID string          `json:"product_id"`
	Name      string          `json:"name"`
	Size      string          `json:"size"`
	Color     string          `json:"color"`
	Price     decimal.Decimal `json:"price"`
	Quantity  int             `json:"quantity"`
}

// CartClearedData is the payload for a cart.cleared event.
type CartClearedData struct {
	SessionID string `json:"session_id"`
}

// WishlistUpdatedData is the payload for a wishlist.updated event.
type WishlistUpdatedData struct {
	SessionID  string   `json:"session_id"`
	Op         string   `json:"op"`
	ProductIDs []string `json:"product_ids"`
}

// Publisher delivers an event to a topic. *pkgkafka.Producer satisfies it.
type Publisher interface {
	Publish(ctx context.Context, topic string, event *pkgkafka.Event) error
}

// Producer publishes storefront domain events.
type Producer struct {
	publisher Publisher
	logger    *slog.Logger
}

// NewProducer creates a new event producer for the storefront service.
func NewProducer(publisher Publisher, logger *slog.Logger) *Producer {
	return &Producer{
		publisher: publisher,
		logger:    logger,
	}
}

// HandleChange publishes the event matching a store change. Panel
// visibility changes carry no domain meaning and are not published.
func (p *Producer) HandleChange(ctx context.Context, c store.Change) error {
	switch {
	case c.Op == store.OpClearCart:
		return p.PublishCartCleared(ctx, c.Snapshot)
	case c.Op.AffectsCart():
		return p.PublishCartUpdated(ctx, c.Op, c.Snapshot)
	case c.Op.AffectsWishlist():
		return p.PublishWishlistUpdated(ctx, c.Op, c.Snapshot)
	}
	return nil
}

// PublishCartUpdated publishes a cart.updated event.
func (p *Producer) PublishCartUpdated(ctx context.Context, op store.Op, s domain.Session) error {
	lines := make([]CartLineData, len(s.Lines))
	for i, l := range s.Lines {
		lines[i] = CartLineData{
			ProductID: l.ID,
			Name:      l.Name,
			Size:      l.SelectedSize,
			Color:     l.SelectedColor,
			Price:     l.Price,
			Quantity:  l.Quantity,
		}
	}

	data := CartUpdatedData{
		SessionID:   s.ID,
		Op:          string(op),
		Lines:       lines,
		ItemCount:   s.ItemCount(),
		TotalAmount: s.TotalAmount(),
	}

	if err := p.publish(ctx, TopicCartUpdated, TypeCartUpdated, s, data); err != nil {
		return err
	}

	p.logger.DebugContext(ctx, "published cart.updated event",
		slog.String("session_id", s.ID),
		slog.Int("item_count", data.ItemCount),
	)
	return nil
}

// PublishCartCleared publishes a cart.cleared event.
func (p *Producer) PublishCartCleared(ctx context.Context, s domain.Session) error {
	if err := p.publish(ctx, TopicCartCleared, TypeCartCleared, s, CartClearedData{SessionID: s.ID}); err != nil {
		return err
	}

	p.logger.DebugContext(ctx, "published cart.cleared event",
		slog.String("session_id", s.ID),
	)
	return nil
}

// PublishWishlistUpdated publishes a wishlist.updated event.
func (p *Producer) PublishWishlistUpdated(ctx context.Context, op store.Op, s domain.Session) error {
	data := WishlistUpdatedData{
		SessionID:  s.ID,
		Op:         string(op),
		ProductIDs: s.Wishlist,
	}
	if data.ProductIDs == nil {
		data.ProductIDs = []string{}
	}

	if err := p.publish(ctx, TopicWishlistUpdated, TypeWishlistUpdated, s, data); err != nil {
		return err
	}

	p.logger.DebugContext(ctx, "published wishlist.updated event",
		slog.String("session_id", s.ID),
		slog.Int("wishlist_size", len(data.ProductIDs)),
	)
	return nil
}

func (p *Producer) publish(ctx context.Context, topic, eventType string, s domain.Session, data any) error {
	event, err := pkgkafka.NewEvent(eventType, s.ID, AggregateTypeSession, SourceStorefront, data)
	if err != nil {
		return fmt.Errorf("create %s event: %w", eventType, err)
	}
	event.WithVersion(s.Version)
	if id := logger.CorrelationIDFromContext(ctx); id != "" {
		event.WithCorrelationID(id)
	}
	if sc := trace.SpanContextFromContext(ctx); sc.IsValid() {
		event.WithMetadata(MetadataTraceID, sc.TraceID().String())
	}

	if err := p.publisher.Publish(ctx, topic, event); err != nil {
		return fmt.Errorf("publish %s event: %w", eventType, err)
	}
	return nil
}
