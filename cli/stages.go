package cli

import (
	"fmt"
	"os"

	"github.com/tebeka/atexit"
	"go.uber.org/zap"

	"github.com/lncensor/lncensor/asn"
	"github.com/lncensor/lncensor/config"
	"github.com/lncensor/lncensor/topology"
)

// LoadGraph reads the graph file of c.
func LoadGraph(c config.Common, logger *zap.Logger) (*topology.Graph, error) {
	src, err := topology.ParseSource(c.GraphSource)
	if err != nil {
		return nil, err
	}

	g, err := topology.LoadFile(c.GraphFile, src)
	if err != nil {
		return nil, err
	}

	logger.Info("graph loaded",
		zap.String("file", c.GraphFile),
		zap.Stringer("source", src),
		zap.Int("nodes", g.NumNodes()),
		zap.Int("channels", g.NumChannels()))

	return g, nil
}

// MapGraph attributes the nodes of g to ASes using the dataset of c.
func MapGraph(
	g *topology.Graph,
	c config.Common,
	logger *zap.Logger,
) (*asn.Mapping, error) {
	resolver, err := asn.OpenResolver(c.ASNDatabase)
	if err != nil {
		return nil, err
	}

	defer func() {
		if err := resolver.Close(); err != nil {
			logger.Warn("AS dataset not closed", zap.Error(err))
		}
	}()

	m := asn.NewMapper(resolver, logger).Map(g)

	noAddr := m.NodesWithoutAddress()
	share := 0.0
	if g.NumNodes() > 0 {
		share = 100 * float64(noAddr) / float64(g.NumNodes())
	}

	logger.Info("nodes mapped to ASes",
		zap.String("dataset", c.ASNDatabase),
		zap.Int("systems", len(m.Systems())),
		zap.Int("nodes_without_address", noAddr),
		zap.String("share_without_address", fmt.Sprintf("%.2f%%", share)))

	return m, nil
}

// Exit ends the process, running the registered exit handlers. A non-nil
// err is printed and yields exit code 1.
func Exit(err error) {
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		atexit.Exit(1)
	}

	atexit.Exit(0)
}
