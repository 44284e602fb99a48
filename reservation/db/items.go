package db

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/Oscar-GGV/ATOMreservations/reservation/model"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// Every item of a hotel lives under the same partition key, the hotel id.
const (
	ReservationTableName = "ReservationTable"

	reservationSkPrefix = "Reservation#"
	roomTypeSkPrefix    = "RoomType#"
	statsSk             = "Info"
	lockSk              = "Lock"

	nullInstanceId = "NULL"
)

func reservationKey(hotelId string, id model.ReservationId) map[string]types.AttributeValue {
	return key(hotelId, reservationSkPrefix+id.String())
}

func key(hotelId string, sk string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"PK": &types.AttributeValueMemberS{Value: hotelId},
		"SK": &types.AttributeValueMemberS{Value: sk},
	}
}

func BuildReservationItem(hotelId string, reservation model.Reservation) (map[string]types.AttributeValue, error) {
	state, err := json.Marshal(reservation)
	if err != nil {
		return nil, err
	}

	item := reservationKey(hotelId, reservation.Id)
	item["status"] = &types.AttributeValueMemberS{Value: string(reservation.Status)}
	item["room_type"] = &types.AttributeValueMemberS{Value: reservation.RoomType}
	item["current_state"] = &types.AttributeValueMemberS{Value: string(state)}
	return item, nil
}

func BuildRoomTypeItem(hotelId string, roomType model.RoomType) (map[string]types.AttributeValue, error) {
	state, err := json.Marshal(roomType)
	if err != nil {
		return nil, err
	}

	item := key(hotelId, roomTypeSkPrefix+roomType.Name)
	item["total_units"] = &types.AttributeValueMemberN{Value: strconv.Itoa(roomType.TotalUnits)}
	item["current_state"] = &types.AttributeValueMemberS{Value: string(state)}
	return item, nil
}

func BuildStatsItem(hotelId string) map[string]types.AttributeValue {
	item := key(hotelId, statsSk)
	item["reservations"] = &types.AttributeValueMemberN{Value: "0"}
	item["failed_reservations"] = &types.AttributeValueMemberN{Value: "0"}
	item["cancellations"] = &types.AttributeValueMemberN{Value: "0"}
	return item
}

func BuildLockItem(hotelId string) map[string]types.AttributeValue {
	item := key(hotelId, lockSk)
	item["locked_instance_id"] = &types.AttributeValueMemberS{Value: nullInstanceId}
	return item
}

func reservationFromItem(item map[string]types.AttributeValue) (model.Reservation, error) {
	var reservation model.Reservation
	err := unmarshalState(item, &reservation)
	if err != nil {
		return model.Reservation{}, err
	}

	// status is updated in place on cancellation, it wins over the serialized state
	if status, ok := item["status"].(*types.AttributeValueMemberS); ok {
		reservation.Status = model.ReservationStatus(status.Value)
	}
	return reservation, nil
}

func roomTypeFromItem(item map[string]types.AttributeValue) (model.RoomType, error) {
	var roomType model.RoomType
	err := unmarshalState(item, &roomType)
	return roomType, err
}

func unmarshalState(item map[string]types.AttributeValue, target any) error {
	state, ok := item["current_state"].(*types.AttributeValueMemberS)
	if !ok {
		return fmt.Errorf("item %v has no current_state", item["SK"])
	}
	return json.Unmarshal([]byte(state.Value), target)
}

func numberAttribute(item map[string]types.AttributeValue, name string) (int, error) {
	attribute, ok := item[name]
	if !ok {
		return 0, nil
	}
	number, ok := attribute.(*types.AttributeValueMemberN)
	if !ok {
		return 0, fmt.Errorf("attribute %v is not a number", name)
	}
	return strconv.Atoi(number.Value)
}
