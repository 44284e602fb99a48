package catalog

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/Oscar-GGV/ATOMreservations/reservation/model"
	"github.com/Oscar-GGV/ATOMreservations/utils"
)

// RoomCatalog is read-only after construction and safe for concurrent use.
type RoomCatalog struct {
	roomTypes map[string]model.RoomType
	order     []string
}

func NewRoomCatalog(roomTypes []model.RoomType) (*RoomCatalog, error) {
	names := utils.NewMapSet[string]()
	catalog := &RoomCatalog{roomTypes: make(map[string]model.RoomType, len(roomTypes))}

	for _, roomType := range roomTypes {
		if err := roomType.Validate(); err != nil {
			return nil, err
		}
		if names.Contains(roomType.Name) {
			return nil, fmt.Errorf("%w: duplicated room type %v", model.ErrInvalidRoomType, roomType.Name)
		}
		names.Add(roomType.Name)
		catalog.roomTypes[roomType.Name] = roomType
		catalog.order = append(catalog.order, roomType.Name)
	}

	return catalog, nil
}

func NewDefaultRoomCatalog() *RoomCatalog {
	catalog, err := NewRoomCatalog(DefaultRoomTypes())
	if err != nil {
		panic(err)
	}
	return catalog
}

// DefaultRoomTypes is the stock hotel inventory.
func DefaultRoomTypes() []model.RoomType {
	return []model.RoomType{
		{Name: "Single Room", TotalUnits: 5, MaxGuests: 2, PricePerNight: 100, Beds: 1},
		{Name: "Double Room", TotalUnits: 10, MaxGuests: 4, PricePerNight: 150, Beds: 2},
		{Name: "Family Room", TotalUnits: 6, MaxGuests: 6, PricePerNight: 200, Beds: 3},
		{Name: "VIP Suite", TotalUnits: 3, MaxGuests: 3, PricePerNight: 300, Beds: 1},
	}
}

func LoadFromDao(dao model.CatalogDao) (*RoomCatalog, error) {
	roomTypes, err := dao.LoadRoomTypes()
	if err != nil {
		return nil, err
	}
	return NewRoomCatalog(roomTypes)
}

// LoadFromFile reads a JSON array of room types.
func LoadFromFile(filePath string) (*RoomCatalog, error) {
	b, err := os.ReadFile(filePath)
	if err != nil {
		return nil, err
	}

	var roomTypes []model.RoomType
	if err = json.Unmarshal(b, &roomTypes); err != nil {
		return nil, fmt.Errorf("cannot deserialize catalog %v: %w", filePath, err)
	}

	return NewRoomCatalog(roomTypes)
}

func (c *RoomCatalog) Get(name string) (model.RoomType, error) {
	roomType, ok := c.roomTypes[name]
	if !ok {
		return model.RoomType{}, fmt.Errorf("%w: '%v'", model.ErrUnknownRoomType, name)
	}
	return roomType, nil
}

func (c *RoomCatalog) TotalUnitsOf(name string) (int, error) {
	roomType, err := c.Get(name)
	if err != nil {
		return 0, err
	}
	return roomType.TotalUnits, nil
}

// ListTypes keeps the room types able to host at least minGuests, in catalog order.
func (c *RoomCatalog) ListTypes(minGuests int) []model.RoomType {
	var roomTypes []model.RoomType
	for _, name := range c.order {
		roomType := c.roomTypes[name]
		if roomType.MaxGuests >= minGuests {
			roomTypes = append(roomTypes, roomType)
		}
	}
	return roomTypes
}

func (c *RoomCatalog) Names() []string {
	names := make([]string, len(c.order))
	copy(names, c.order)
	return names
}

func (c *RoomCatalog) Size() int {
	return len(c.order)
}
