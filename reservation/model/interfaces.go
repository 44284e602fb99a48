package model

type CatalogDao interface {
	LoadRoomTypes() ([]RoomType, error)
}

type ReservationDao interface {
	SaveReservation(reservation Reservation) error
	MarkCancelled(reservation Reservation) error
	// LoadReservations returns every stored reservation, cancelled ones
	// included, so that a restored registry never reissues an id.
	LoadReservations() ([]Reservation, error)
}

type StatsDao interface {
	IncrementReservations() error
	IncrementFailedReservations() error
	IncrementCancellations() error
}

type HotelLockDao interface {
	Lock() error
	Unlock() error
}

type EventPublisher interface {
	Publish(event any) error
}
