package task

// ResourceAllocation represents an allocation of a resource (person,
// equipment, cost bucket) to a task.
type ResourceAllocation struct {
	ResourceID      string   `json:"resource_id"`
	Role            *string  `json:"role,omitempty"`
	AllocationUnits float64  `json:"allocation_units"`
	CostRate        *float64 `json:"cost_rate,omitempty"`
	Notes           *string  `json:"notes,omitempty"`
}

// NewResourceAllocation builds a minimal allocation with no role, cost
// rate, or notes set.
func NewResourceAllocation(resourceID string, allocationUnits float64) ResourceAllocation {
	return ResourceAllocation{ResourceID: resourceID, AllocationUnits: allocationUnits}
}
