package syncshadow

import (
	"strconv"
	"sync"
)

// ShopPoint is the name of the protocol's critical section.
const ShopPoint = "shop"

// TicketPoint returns the name of client id's hand-off.
func TicketPoint(id int) string {
	return "ticket:" + strconv.Itoa(id)
}

// SyncShadow maps sync point names to their SyncVar.
//
// Implementation:
//   - sync.Map, entries created lazily on first access
//   - Never freed during a run; one run has one "shop" point and at most
//     one ticket point per client
//
// Thread Safety: All methods are safe for concurrent calls.
type SyncShadow struct {
	vars sync.Map
}

// NewSyncShadow creates an empty shadow.
func NewSyncShadow() *SyncShadow {
	return &SyncShadow{}
}

// GetOrCreate returns the SyncVar for point, creating it if needed.
func (s *SyncShadow) GetOrCreate(point string) *SyncVar {
	if val, ok := s.vars.Load(point); ok {
		return val.(*SyncVar)
	}
	val, _ := s.vars.LoadOrStore(point, &SyncVar{})
	return val.(*SyncVar)
}

// Lookup returns the SyncVar for point, or nil if it was never touched.
func (s *SyncShadow) Lookup(point string) *SyncVar {
	if val, ok := s.vars.Load(point); ok {
		return val.(*SyncVar)
	}
	return nil
}
