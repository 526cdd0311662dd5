package ports

// Policy sizes the inter-unit channels. Command channels always block when
// full; status channels always drop the newest report.
type Policy struct {
	CommandDepth int `yaml:"command_depth"`
	StatusDepth  int `yaml:"status_depth"`
}
