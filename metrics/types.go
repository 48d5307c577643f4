package metrics

// Policy defines how successive values of one statistic combine over time.
type Policy int

const (
	PolicyNone Policy = iota // No specific policy specified
	PolicySet                // Instantaneous value - last value wins
	PolicySum                // Monotonic sum of all increments
	PolicyMax                // Maximum value observed
)

func (p Policy) String() string {
	switch p {
	case PolicySet:
		return "set"
	case PolicySum:
		return "sum"
	case PolicyMax:
		return "max"
	}
	return "none"
}

// Value represents a metric value as a float64.
type Value float64

// Dimension represents metric dimensions as key-value pairs, such as
// server name or region. They become constant labels on every collector.
type Dimension map[string]string

// StatDef names one aggregate statistic exported by the bridge.
type StatDef struct {
	Name   string
	Policy Policy
	Help   string
}

const (
	StatTotalConnections  = "total_connections"
	StatActiveSessions    = "active_sessions"
	StatPacketsRouted     = "packets_routed"
	StatTranslationErrors = "translation_errors"
	StatPeakSessions      = "peak_sessions"
)

// Stats lists the aggregate statistics in export order.
var Stats = []StatDef{
	{Name: StatTotalConnections, Policy: PolicySum, Help: "Sessions registered since start."},
	{Name: StatActiveSessions, Policy: PolicySet, Help: "Sessions currently registered."},
	{Name: StatPeakSessions, Policy: PolicyMax, Help: "Largest number of concurrent sessions."},
	{Name: StatPacketsRouted, Policy: PolicySum, Help: "Route calls since start."},
	{Name: StatTranslationErrors, Policy: PolicySum, Help: "Packets dropped because translation failed."},
}
