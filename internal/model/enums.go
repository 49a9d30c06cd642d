package model

import "strings"

// RecordStatus marks clients, routes, units and authorized users as usable or not.
type RecordStatus string

const (
	StatusActive   RecordStatus = "Active"
	StatusInactive RecordStatus = "Inactive"
)

// RequesterType says whether an authorized user may book rides, ride in them, or both.
type RequesterType string

const (
	RequesterTypeRequester RequesterType = "Requester"
	RequesterTypeRider     RequesterType = "Rider"
	RequesterTypeBoth      RequesterType = "Both"
)

// FareType selects how a ride is priced.
type FareType string

const (
	FareTypeFree     FareType = "Free"
	FareTypeDistance FareType = "Distance"
	FareTypeRoute    FareType = "Route"
)

// RideStatus is the lifecycle state of a ride. It only moves Scheduled -> Completed.
type RideStatus string

const (
	RideStatusScheduled RideStatus = "Scheduled"
	RideStatusCompleted RideStatus = "Completed"
)

// Accepted spellings per enum: canonical name, the Portuguese label used by
// the legacy screens, and the legacy numeric code.
var (
	recordStatusAliases = map[string]RecordStatus{
		"active": StatusActive, "ativo": StatusActive, "1": StatusActive,
		"inactive": StatusInactive, "inativo": StatusInactive, "2": StatusInactive,
	}
	requesterTypeAliases = map[string]RequesterType{
		"requester": RequesterTypeRequester, "solicitante": RequesterTypeRequester, "1": RequesterTypeRequester,
		"rider": RequesterTypeRider, "usuario": RequesterTypeRider, "2": RequesterTypeRider,
		"both": RequesterTypeBoth, "ambos": RequesterTypeBoth, "3": RequesterTypeBoth,
	}
	fareTypeAliases = map[string]FareType{
		"free": FareTypeFree, "livre": FareTypeFree, "1": FareTypeFree,
		"distance": FareTypeDistance, "km": FareTypeDistance, "2": FareTypeDistance,
		"route": FareTypeRoute, "trecho": FareTypeRoute, "3": FareTypeRoute,
	}
	rideStatusAliases = map[string]RideStatus{
		"scheduled": RideStatusScheduled, "agendado": RideStatusScheduled, "1": RideStatusScheduled,
		"completed": RideStatusCompleted, "realizado": RideStatusCompleted, "2": RideStatusCompleted,
	}
)

func parseEnum[T ~string](raw string, aliases map[string]T) T {
	return aliases[strings.ToLower(strings.TrimSpace(raw))]
}

// ParseRecordStatus returns "" when raw is not a known spelling.
func ParseRecordStatus(raw string) RecordStatus { return parseEnum(raw, recordStatusAliases) }

// ParseRequesterType returns "" when raw is not a known spelling.
func ParseRequesterType(raw string) RequesterType { return parseEnum(raw, requesterTypeAliases) }

// ParseFareType returns "" when raw is not a known spelling.
func ParseFareType(raw string) FareType { return parseEnum(raw, fareTypeAliases) }

// ParseRideStatus returns "" when raw is not a known spelling.
func ParseRideStatus(raw string) RideStatus { return parseEnum(raw, rideStatusAliases) }

// CanRequest reports whether the type may book rides.
func (t RequesterType) CanRequest() bool {
	return t == RequesterTypeRequester || t == RequesterTypeBoth
}

// CanRide reports whether the type may be the passenger of a ride.
func (t RequesterType) CanRide() bool {
	return t == RequesterTypeRider || t == RequesterTypeBoth
}

// Label is the Portuguese text used on receipts.
func (f FareType) Label() string {
	switch f {
	case FareTypeFree:
		return "Livre"
	case FareTypeDistance:
		return "KM"
	case FareTypeRoute:
		return "Trecho"
	}
	return string(f)
}
