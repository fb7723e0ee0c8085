package snowflake

import (
	"fmt"
	"os"
	"strconv"
	"sync"

	"github.com/bwmarrin/snowflake"
)

/* ========================================================================
 * Snowflake ID Generator
 * ========================================================================
 * 64-bit, roughly time-ordered row IDs without a central allocator.
 * Layout: 1 sign bit, 41-bit millisecond timestamp, 10-bit node ID,
 * 12-bit per-millisecond sequence.
 *
 * Environment:
 *   SNOWFLAKE_NODE_ID: node ID (0-1023). Multi-instance deployments
 *   must give every instance a distinct value.
 * ======================================================================== */

const (
	// MaxNodeID is the largest valid node ID (10 bits).
	MaxNodeID = 1023
	// DefaultNodeID is used when the environment variable is unset.
	DefaultNodeID = 0
	// EnvNodeID names the environment variable holding the node ID.
	EnvNodeID = "SNOWFLAKE_NODE_ID"
)

var (
	globalNode *snowflake.Node
	once       sync.Once
)

// Generator produces snowflake IDs for a fixed node.
type Generator struct {
	node *snowflake.Node
}

// NewGenerator creates a generator for the given node ID. Most callers
// should use the package-level Generate instead.
func NewGenerator(nodeID int64) (*Generator, error) {
	if nodeID < 0 || nodeID > MaxNodeID {
		return nil, &ConfigError{
			Field:   "nodeID",
			Value:   nodeID,
			Message: "nodeID must be between 0 and 1023",
		}
	}

	node, err := snowflake.NewNode(nodeID)
	if err != nil {
		return nil, err
	}

	return &Generator{node: node}, nil
}

// MustNewGenerator creates a generator or panics.
func MustNewGenerator(nodeID int64) *Generator {
	gen, err := NewGenerator(nodeID)
	if err != nil {
		panic(err)
	}
	return gen
}

// Generate returns a new snowflake ID.
func (g *Generator) Generate() int64 {
	return g.node.Generate().Int64()
}

// GenerateString returns a new snowflake ID as a string.
func (g *Generator) GenerateString() string {
	return g.node.Generate().String()
}

func initNode() error {
	nodeID, err := getEnvNodeID()
	if err != nil {
		return err
	}

	node, err := snowflake.NewNode(nodeID)
	if err != nil {
		return &ConfigError{
			Field:   "nodeID",
			Value:   nodeID,
			Message: err.Error(),
		}
	}

	globalNode = node
	return nil
}

// Generate returns a new snowflake ID using the process-wide node.
// The node ID comes from SNOWFLAKE_NODE_ID, default 0.
func Generate() int64 {
	once.Do(func() {
		if err := initNode(); err != nil {
			panic(err.Error())
		}
	})

	return globalNode.Generate().Int64()
}

// GenerateString returns a new snowflake ID as a string.
func GenerateString() string {
	return snowflake.ID(Generate()).String()
}

// Parse splits a snowflake ID into its millisecond timestamp and node ID.
func Parse(id int64) (timestamp int64, nodeID int64) {
	sid := snowflake.ID(id)
	return sid.Time(), sid.Node()
}

func getEnvNodeID() (int64, error) {
	val := os.Getenv(EnvNodeID)
	if val == "" {
		return DefaultNodeID, nil
	}

	id, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%s=%q: invalid integer", EnvNodeID, val)
	}

	if id < 0 || id > MaxNodeID {
		return 0, &ConfigError{
			Field:   EnvNodeID,
			Value:   id,
			Message: "nodeID must be between 0 and 1023",
		}
	}

	return id, nil
}

// ConfigError reports an invalid node configuration.
type ConfigError struct {
	Field   string
	Value   int64
	Message string
}

func (e *ConfigError) Error() string {
	return e.Field + "=" + strconv.FormatInt(e.Value, 10) + ": " + e.Message
}
