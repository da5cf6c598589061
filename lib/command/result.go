package command

import (
	"strconv"
	"strings"
)

// Result is the typed outcome of a successfully executed command.
// The concrete types mirror the RESP reply kinds without carrying any
// wire encoding; String renders a human-readable form for the REPL.
type Result interface {
	String() string
}

// --------------------------------------------------------------------------
// Result types
// --------------------------------------------------------------------------

// OkResult is the generic success reply (SET, SELECT, FLUSHDB, ...)
type OkResult struct{}

func (r *OkResult) String() string { return "OK" }

// theOkResult is shared since OkResult carries no state
var theOkResult = new(OkResult)

// MakeOk returns the shared OK result
func MakeOk() *OkResult {
	return theOkResult
}

// StatusResult is a simple status string reply (PING)
type StatusResult struct {
	Status string
}

func (r *StatusResult) String() string { return r.Status }

func MakeStatus(status string) *StatusResult {
	return &StatusResult{Status: status}
}

// IntResult is an integer reply (DEL, EXISTS, INCR, EXPIRE, TTL, DBSIZE)
type IntResult struct {
	Value int64
}

func (r *IntResult) String() string { return strconv.FormatInt(r.Value, 10) }

func MakeInt(value int64) *IntResult {
	return &IntResult{Value: value}
}

// BulkResult is a byte-string reply (GET)
type BulkResult struct {
	Value []byte
}

func (r *BulkResult) String() string { return string(r.Value) }

func MakeBulk(value []byte) *BulkResult {
	return &BulkResult{Value: value}
}

// NullResult is the not-found reply (GET on a missing key)
type NullResult struct{}

func (r *NullResult) String() string { return "(nil)" }

var theNullResult = new(NullResult)

// MakeNull returns the shared null result
func MakeNull() *NullResult {
	return theNullResult
}

// MultiBulkResult is a sequence-of-byte-strings reply (KEYS)
type MultiBulkResult struct {
	Values [][]byte
}

func (r *MultiBulkResult) String() string {
	if len(r.Values) == 0 {
		return "(empty)"
	}
	var sb strings.Builder
	for i, v := range r.Values {
		if i > 0 {
			sb.WriteByte('\n')
		}
		sb.WriteString(strconv.Itoa(i + 1))
		sb.WriteString(") ")
		sb.Write(v)
	}
	return sb.String()
}

func MakeMultiBulk(values [][]byte) *MultiBulkResult {
	return &MultiBulkResult{Values: values}
}

// MakeKeys builds a MultiBulkResult from a key list
func MakeKeys(keys []string) *MultiBulkResult {
	values := make([][]byte, len(keys))
	for i, k := range keys {
		values[i] = []byte(k)
	}
	return &MultiBulkResult{Values: values}
}
