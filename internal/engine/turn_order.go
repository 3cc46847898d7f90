package engine

type Seat string

const (
	SeatFirst  Seat = "first"
	SeatSecond Seat = "second"
)

// BanOrder is one ban per seat, coin-flip winner first.
var BanOrder = []Seat{
	SeatFirst,
	SeatSecond,
}
