package mongo

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	domainbooking "staybeyond/internal/domain/booking"
	"staybeyond/internal/domain/catalog"
	"staybeyond/internal/domain/shared/money"
)

var ErrDuplicateTransportBooking = errors.New("a transport booking with this id already exists")

// TransportBookingRepository persists transport bookings in the
// "transport_bookings" collection.
type TransportBookingRepository struct {
	col *mongo.Collection
}

func NewTransportBookingRepository(db *mongo.Database) *TransportBookingRepository {
	col := db.Collection("transport_bookings")
	idx := mongo.IndexModel{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "created_at", Value: -1}}}
	_, _ = col.Indexes().CreateOne(context.Background(), idx)
	return &TransportBookingRepository{col: col}
}

func (r *TransportBookingRepository) Insert(ctx context.Context, b *domainbooking.TransportBooking) error {
	_, err := r.col.InsertOne(ctx, newTransportDocument(b))
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicateTransportBooking
		}
		return err
	}
	return nil
}

func (r *TransportBookingRepository) ListByUser(ctx context.Context, userID string) ([]*domainbooking.TransportBooking, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := r.col.Find(ctx, bson.M{"user_id": userID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var out []*domainbooking.TransportBooking
	for cursor.Next(ctx) {
		var doc transportDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, err
		}
		out = append(out, doc.toRecord())
	}
	return out, cursor.Err()
}

type transportDocument struct {
	ID            string        `bson:"_id"`
	UserID        string        `bson:"user_id"`
	TransportID   string        `bson:"transport_id"`
	TransportName string        `bson:"transport_name"`
	TransportType string        `bson:"transport_type"`
	Image         string        `bson:"image"`
	Origin        string        `bson:"origin"`
	Destination   string        `bson:"destination"`
	Departure     int64         `bson:"departure_date"`
	Passengers    int           `bson:"passengers"`
	Total         moneyDocument `bson:"total"`
	CreatedAt     int64         `bson:"created_at"`
}

func newTransportDocument(b *domainbooking.TransportBooking) transportDocument {
	return transportDocument{
		ID:            string(b.ID),
		UserID:        b.UserID,
		TransportID:   string(b.TransportID),
		TransportName: b.TransportName,
		TransportType: string(b.TransportType),
		Image:         b.Image,
		Origin:        b.Origin,
		Destination:   b.Destination,
		Departure:     b.Departure.UnixMilli(),
		Passengers:    b.Passengers,
		Total:         moneyDocument{Amount: b.Total.Amount, Currency: b.Total.Currency},
		CreatedAt:     b.CreatedAt.UnixMilli(),
	}
}

func (d transportDocument) toRecord() *domainbooking.TransportBooking {
	return &domainbooking.TransportBooking{
		ID:            domainbooking.TransportBookingID(d.ID),
		UserID:        d.UserID,
		TransportID:   catalog.TransportID(d.TransportID),
		TransportName: d.TransportName,
		TransportType: catalog.TransportType(d.TransportType),
		Image:         d.Image,
		Origin:        d.Origin,
		Destination:   d.Destination,
		Departure:     timestampToTime(d.Departure),
		Passengers:    d.Passengers,
		Total:         money.Money{Amount: d.Total.Amount, Currency: d.Total.Currency},
		CreatedAt:     timestampToTime(d.CreatedAt),
	}
}

var _ domainbooking.TransportRepository = (*TransportBookingRepository)(nil)
