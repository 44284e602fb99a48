package db

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/Oscar-GGV/ATOMreservations/reservation/model"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const reservationCollection = "reservations"

type reservationDocument struct {
	Id          string `bson:"_id"`
	HotelId     string `bson:"hotelId"`
	CustomerRef string `bson:"customerRef"`
	RoomType    string `bson:"roomType"`
	CheckIn     string `bson:"checkIn"`
	CheckOut    string `bson:"checkOut"`
	Status      string `bson:"status"`
}

type ReservationMongoDao struct {
	client     *mongo.Client
	collection *mongo.Collection
	hotelId    string
}

func NewReservationMongoDao(uri string, database string, hotelId string) (*ReservationMongoDao, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("while connecting to MongoDB: %w", err)
	}

	if err = verifyConnection(client); err != nil {
		return nil, err
	}
	log.Println("Connected to MongoDB")

	return &ReservationMongoDao{
		client:     client,
		collection: client.Database(database).Collection(reservationCollection),
		hotelId:    hotelId,
	}, nil
}

// verifyConnection pings the server and disconnects the client when it is unreachable.
func verifyConnection(client *mongo.Client) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx, nil); err != nil {
		if disconnectErr := client.Disconnect(context.Background()); disconnectErr != nil {
			log.Printf("Could not disconnect from MongoDB: %v\n", disconnectErr)
		}
		return fmt.Errorf("while testing MongoDB connection: %w", err)
	}
	return nil
}

func (dao *ReservationMongoDao) SaveReservation(reservation model.Reservation) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, err := dao.collection.InsertOne(ctx, toDocument(dao.hotelId, reservation))
	if mongo.IsDuplicateKeyError(err) {
		return fmt.Errorf("%w: %v is already stored", model.ErrInvalidReservation, reservation.Id)
	}
	return err
}

func (dao *ReservationMongoDao) MarkCancelled(reservation model.Reservation) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	filter := bson.D{
		{Key: "_id", Value: documentId(dao.hotelId, reservation.Id)},
		{Key: "status", Value: string(model.ACTIVE)},
	}
	update := bson.D{{Key: "$set", Value: bson.D{{Key: "status", Value: string(model.CANCELLED)}}}}

	result, err := dao.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("%w: %v is not active in storage", model.ErrReservationNotFound, reservation.Id)
	}
	return nil
}

func (dao *ReservationMongoDao) LoadReservations() ([]model.Reservation, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	cursor, err := dao.collection.Find(ctx, bson.D{{Key: "hotelId", Value: dao.hotelId}})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var reservations []model.Reservation
	for cursor.Next(ctx) {
		var document reservationDocument
		if err = cursor.Decode(&document); err != nil {
			return nil, err
		}
		reservation, err := fromDocument(document)
		if err != nil {
			return nil, err
		}
		reservations = append(reservations, reservation)
	}

	return reservations, cursor.Err()
}

func (dao *ReservationMongoDao) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return dao.client.Disconnect(ctx)
}

func documentId(hotelId string, id model.ReservationId) string {
	return hotelId + "/" + id.String()
}

func toDocument(hotelId string, reservation model.Reservation) reservationDocument {
	return reservationDocument{
		Id:          documentId(hotelId, reservation.Id),
		HotelId:     hotelId,
		CustomerRef: string(reservation.CustomerRef),
		RoomType:    reservation.RoomType,
		CheckIn:     reservation.CheckIn.String(),
		CheckOut:    reservation.CheckOut.String(),
		Status:      string(reservation.Status),
	}
}

func fromDocument(document reservationDocument) (model.Reservation, error) {
	id, found := strings.CutPrefix(document.Id, document.HotelId+"/")
	if !found || id == "" {
		return model.Reservation{}, fmt.Errorf("%w: malformed document id %v", model.ErrInvalidReservation, document.Id)
	}

	checkIn, err := model.ParseCalendarDate(document.CheckIn)
	if err != nil {
		return model.Reservation{}, err
	}
	checkOut, err := model.ParseCalendarDate(document.CheckOut)
	if err != nil {
		return model.Reservation{}, err
	}

	return model.Reservation{
		Id:          model.ReservationId(id),
		CustomerRef: model.CustomerRef(document.CustomerRef),
		RoomType:    document.RoomType,
		CheckIn:     checkIn,
		CheckOut:    checkOut,
		Status:      model.ReservationStatus(document.Status),
	}, nil
}
