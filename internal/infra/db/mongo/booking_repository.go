package mongo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	domainbooking "staybeyond/internal/domain/booking"
	"staybeyond/internal/domain/catalog"
	domainrange "staybeyond/internal/domain/shared/daterange"
	"staybeyond/internal/domain/shared/money"
)

var ErrDuplicateBooking = errors.New("a booking with this id already exists")

// BookingRepository persists stay bookings in the "bookings" collection.
// Rows are insert-only.
type BookingRepository struct {
	col *mongo.Collection
}

func NewBookingRepository(db *mongo.Database) *BookingRepository {
	col := db.Collection("bookings")
	idx := mongo.IndexModel{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "created_at", Value: -1}}}
	_, _ = col.Indexes().CreateOne(context.Background(), idx)
	return &BookingRepository{col: col}
}

func (r *BookingRepository) Insert(ctx context.Context, b *domainbooking.Booking) error {
	_, err := r.col.InsertOne(ctx, newBookingDocument(b))
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicateBooking
		}
		return err
	}
	return nil
}

func (r *BookingRepository) ListByUser(ctx context.Context, userID string) ([]*domainbooking.Booking, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := r.col.Find(ctx, bson.M{"user_id": userID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var out []*domainbooking.Booking
	for cursor.Next(ctx) {
		var doc bookingDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, err
		}
		out = append(out, doc.toRecord())
	}
	return out, cursor.Err()
}

type moneyDocument struct {
	Amount   int64  `bson:"amount"`
	Currency string `bson:"currency"`
}

type bookingDocument struct {
	ID            string        `bson:"_id"`
	UserID        string        `bson:"user_id"`
	StayID        string        `bson:"stay_id"`
	StayName      string        `bson:"stay_name"`
	StayLocation  string        `bson:"stay_location"`
	StayImage     string        `bson:"stay_image"`
	CheckIn       int64         `bson:"checkin_date"`
	CheckOut      int64         `bson:"checkout_date"`
	Guests        int           `bson:"guests"`
	Total         moneyDocument `bson:"total"`
	PaymentID     string        `bson:"payment_id"`
	PaymentMethod string        `bson:"payment_method"`
	PaymentStatus string        `bson:"payment_status"`
	CreatedAt     int64         `bson:"created_at"`
}

func newBookingDocument(b *domainbooking.Booking) bookingDocument {
	return bookingDocument{
		ID:            string(b.ID),
		UserID:        b.UserID,
		StayID:        string(b.StayID),
		StayName:      b.StayName,
		StayLocation:  b.StayLocation,
		StayImage:     b.StayImage,
		CheckIn:       b.Range.CheckIn.UnixMilli(),
		CheckOut:      b.Range.CheckOut.UnixMilli(),
		Guests:        b.Guests,
		Total:         moneyDocument{Amount: b.Total.Amount, Currency: b.Total.Currency},
		PaymentID:     b.PaymentID,
		PaymentMethod: string(b.PaymentMethod),
		PaymentStatus: string(b.PaymentStatus),
		CreatedAt:     b.CreatedAt.UnixMilli(),
	}
}

func (d bookingDocument) toRecord() *domainbooking.Booking {
	return &domainbooking.Booking{
		ID:           domainbooking.BookingID(d.ID),
		UserID:       d.UserID,
		StayID:       catalog.StayID(d.StayID),
		StayName:     d.StayName,
		StayLocation: d.StayLocation,
		StayImage:    d.StayImage,
		Range: domainrange.DateRange{
			CheckIn:  timestampToTime(d.CheckIn),
			CheckOut: timestampToTime(d.CheckOut),
		},
		Guests:        d.Guests,
		Total:         money.Money{Amount: d.Total.Amount, Currency: d.Total.Currency},
		PaymentID:     d.PaymentID,
		PaymentMethod: domainbooking.PaymentMethod(d.PaymentMethod),
		PaymentStatus: domainbooking.PaymentStatus(d.PaymentStatus),
		CreatedAt:     timestampToTime(d.CreatedAt),
	}
}

func timestampToTime(ms int64) time.Time {
	return time.UnixMilli(ms).UTC()
}

var _ domainbooking.Repository = (*BookingRepository)(nil)
