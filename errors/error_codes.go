package errors

import "strconv"

// ERR is the numeric error code carried by every *Error. Codes are grouped in
// ranges of ten so GetErrorCategory can classify them.
type ERR int32

//nolint:revive,stylecheck // upper case names match the codes logged by operators
const (
	ERR_UNKNOWN          ERR = 0
	ERR_INVALID_ARGUMENT ERR = 1
	ERR_NOT_FOUND        ERR = 3
	ERR_PROCESSING       ERR = 4
	ERR_CONFIGURATION    ERR = 5
	ERR_CONTEXT_CANCELED ERR = 7

	ERR_BLOCK_NOT_FOUND ERR = 10
	ERR_BLOCK_INVALID   ERR = 11

	ERR_SERVICE_UNAVAILABLE ERR = 50
	ERR_SERVICE_ERROR       ERR = 52

	ERR_STORAGE_UNAVAILABLE ERR = 60
	ERR_STORAGE_NOT_STARTED ERR = 61
	ERR_STORAGE_ERROR       ERR = 62

	ERR_DATA_CORRUPT ERR = 70
	ERR_CONSERVATION ERR = 71

	ERR_NETWORK_ERROR              ERR = 110
	ERR_NETWORK_TIMEOUT            ERR = 111
	ERR_NETWORK_CONNECTION_REFUSED ERR = 112
	ERR_NETWORK_INVALID_RESPONSE   ERR = 113
)

var ERR_name = map[int32]string{
	0:   "UNKNOWN",
	1:   "INVALID_ARGUMENT",
	3:   "NOT_FOUND",
	4:   "PROCESSING",
	5:   "CONFIGURATION",
	7:   "CONTEXT_CANCELED",
	10:  "BLOCK_NOT_FOUND",
	11:  "BLOCK_INVALID",
	50:  "SERVICE_UNAVAILABLE",
	52:  "SERVICE_ERROR",
	60:  "STORAGE_UNAVAILABLE",
	61:  "STORAGE_NOT_STARTED",
	62:  "STORAGE_ERROR",
	70:  "DATA_CORRUPT",
	71:  "CONSERVATION",
	110: "NETWORK_ERROR",
	111: "NETWORK_TIMEOUT",
	112: "NETWORK_CONNECTION_REFUSED",
	113: "NETWORK_INVALID_RESPONSE",
}

func (x ERR) String() string {
	if name, ok := ERR_name[int32(x)]; ok {
		return name
	}

	return strconv.Itoa(int(x))
}
