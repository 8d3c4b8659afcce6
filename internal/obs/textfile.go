package obs

import (
	"strings"

	"github.com/prometheus/client_golang/prometheus"
)

// FlushTextfile writes the gathered metrics in the node_exporter textfile format.
// An empty path disables the flush.
func FlushTextfile(path string, g prometheus.Gatherer) error {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil
	}
	if g == nil {
		g = prometheus.DefaultGatherer
	}
	return prometheus.WriteToTextfile(path, g)
}
