package topic

import "strconv"

// Topics published by the host system and routed to the dashboard.
const (
	// Application state
	AppState      Topic = "app.state"
	AppModeChange Topic = "app.mode-change"

	// Robot trajectory
	TrajectoryStart Topic = "robot.trajectory.start"
	TrajectoryStop  Topic = "robot.trajectory.stop"
	TrajectoryBreak Topic = "robot.trajectory.break"
	TrajectoryPoint Topic = "robot.trajectory.point"
	TrajectoryImage Topic = "robot.trajectory.image"

	// Vision feed (routed to the same trajectory image surface)
	VisionLatestImage Topic = "vision.latest-image"
)

// CellWeight returns the weight topic for a glue cell.
//
// Example: CellWeight(2) -> "glue.cell.2.weight"
func CellWeight(cellID int) Topic {
	return cellTopic(cellID, "weight")
}

// CellState returns the state topic for a glue cell.
func CellState(cellID int) Topic {
	return cellTopic(cellID, "state")
}

// CellGlueType returns the glue-type topic for a glue cell.
func CellGlueType(cellID int) Topic {
	return cellTopic(cellID, "glue-type")
}

func cellTopic(cellID int, leaf string) Topic {
	return Topic("glue.cell." + strconv.Itoa(cellID) + Separator + leaf)
}

// Catalog is the closed set of topics known to the process.
// It is built once at startup for a configured cell count and is immutable
// afterwards. Producers and subscribers must reference catalog members;
// anything else is an unknown topic and surfaces immediately as an error.
type Catalog struct {
	cells   int
	members map[Topic]struct{}
	ordered []Topic
}

// NewCatalog builds the closed topic set for cellCount glue cells.
// Cell ids are 1-based, matching the physical cell labels.
func NewCatalog(cellCount int) *Catalog {
	c := &Catalog{
		cells:   cellCount,
		members: make(map[Topic]struct{}),
	}

	for i := 1; i <= cellCount; i++ {
		c.add(CellWeight(i))
		c.add(CellState(i))
		c.add(CellGlueType(i))
	}

	c.add(AppState)
	c.add(AppModeChange)
	c.add(TrajectoryStart)
	c.add(TrajectoryStop)
	c.add(TrajectoryBreak)
	c.add(TrajectoryPoint)
	c.add(TrajectoryImage)
	c.add(VisionLatestImage)

	return c
}

func (c *Catalog) add(t Topic) {
	if _, ok := c.members[t]; ok {
		return
	}
	c.members[t] = struct{}{}
	c.ordered = append(c.ordered, t)
}

// Cells returns the cell count the catalog was built for.
func (c *Catalog) Cells() int {
	return c.cells
}

// Contains returns true if t is a member of the closed set.
func (c *Catalog) Contains(t Topic) bool {
	_, ok := c.members[t]
	return ok
}

// MatchesAny returns true if at least one catalog topic matches the given
// pattern. Exact members always match themselves; wildcard patterns match
// if any member would be delivered under them.
func (c *Catalog) MatchesAny(pattern Topic) bool {
	if c.Contains(pattern) {
		return true
	}
	if !pattern.IsWildcard() {
		return false
	}
	for _, t := range c.ordered {
		if t.Matches(pattern) {
			return true
		}
	}
	return false
}

// Topics returns all catalog members in registration order.
// The returned slice is a copy.
func (c *Catalog) Topics() []Topic {
	out := make([]Topic, len(c.ordered))
	copy(out, c.ordered)
	return out
}

// Size returns the number of catalog members.
func (c *Catalog) Size() int {
	return len(c.ordered)
}
