package mysqlerr

import (
	"sort"
	"strconv"
)

// Kind identifies a recognised MySQL failure. Its value is the vendor error code.
type Kind int

const (
	DuplicateEntry    Kind = 1062
	TableAccessDenied Kind = 1142
	LockWaitTimeout   Kind = 1205
	LockDeadlock      Kind = 1213
	QueryInterrupted  Kind = 1317
	RowIsReferenced   Kind = 1451
	NoReferencedRow   Kind = 1452
)

type kindInfo struct {
	name string
	// warning kinds are expected in normal operation and are reported as o11y warnings
	warning bool
}

var registry = map[int]kindInfo{
	int(DuplicateEntry):    {name: "DuplicateEntry", warning: true},
	int(TableAccessDenied): {name: "TableAccessDenied"},
	int(LockWaitTimeout):   {name: "LockWaitTimeout"},
	int(LockDeadlock):      {name: "LockDeadlock"},
	int(QueryInterrupted):  {name: "QueryInterrupted", warning: true},
	int(RowIsReferenced):   {name: "RowIsReferenced"},
	int(NoReferencedRow):   {name: "NoReferencedRow"},
}

// Classify returns the Kind registered for the vendor code. Unknown codes report false.
func Classify(code int) (Kind, bool) {
	if _, ok := registry[code]; !ok {
		return 0, false
	}
	return Kind(code), true
}

// Kinds returns every registered Kind ordered by code.
func Kinds() []Kind {
	kinds := make([]Kind, 0, len(registry))
	for code := range registry {
		kinds = append(kinds, Kind(code))
	}
	sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })
	return kinds
}

func (k Kind) Code() int {
	return int(k)
}

func (k Kind) String() string {
	if info, ok := registry[int(k)]; ok {
		return info.name
	}
	return "Kind(" + strconv.Itoa(int(k)) + ")"
}

// Error allows a Kind to be the target of errors.Is.
func (k Kind) Error() string {
	return k.String()
}

func (k Kind) warning() bool {
	return registry[int(k)].warning
}
