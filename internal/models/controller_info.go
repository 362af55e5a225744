package models

import "time"

// ControllerInfo contains metadata about the controller node
type ControllerInfo struct {
	ID        string    `json:"id"`
	Location  string    `json:"location"`
	Source    string    `json:"source"` // sensor source backing this node, e.g. "dht11"
	Version   string    `json:"version"`
	StartTime time.Time `json:"start_time"`
}

// Uptime returns the duration since the controller started
func (c *ControllerInfo) Uptime() time.Duration {
	return time.Since(c.StartTime)
}

// NewControllerInfo creates a new ControllerInfo with the current time as start time
func NewControllerInfo(id, location, source, version string) *ControllerInfo {
	return &ControllerInfo{
		ID:        id,
		Location:  location,
		Source:    source,
		Version:   version,
		StartTime: time.Now(),
	}
}
