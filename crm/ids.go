// ABOUTME: Monotonic generator for prefixed entity IDs
// ABOUTME: IDs look like cli-1718000000000 and never repeat within a process
package crm

import (
	"fmt"
	"sync"
	"time"
)

// ID prefixes per entity.
const (
	PrefixClient      = "cli"
	PrefixLead        = "lead"
	PrefixProduct     = "prod"
	PrefixOpportunity = "opp"
	PrefixTask        = "task"
	PrefixTicket      = "tic"
	PrefixSalesperson = "sales"
	PrefixInteraction = "int"
	PrefixTemplate    = "tmpl"
)

// IDGenerator mints prefix-<epoch-ms> IDs. Two IDs requested in the same
// millisecond get consecutive timestamps.
type IDGenerator struct {
	mu   sync.Mutex
	last int64
	now  func() time.Time
}

func NewIDGenerator(now func() time.Time) *IDGenerator {
	if now == nil {
		now = time.Now
	}
	return &IDGenerator{now: now}
}

func (g *IDGenerator) New(prefix string) string {
	g.mu.Lock()
	defer g.mu.Unlock()

	ms := g.now().UnixMilli()
	if ms <= g.last {
		ms = g.last + 1
	}
	g.last = ms
	return fmt.Sprintf("%s-%d", prefix, ms)
}

// ClosingTaskID is the ID of the task mirroring an opportunity.
func ClosingTaskID(opportunityID string) string {
	return "task-opp-" + opportunityID
}
