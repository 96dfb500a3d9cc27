// Package connectors provides implementations of the Connector interface
// for document sources. The filesystem connector reads and watches a local
// folder of study material.
package connectors
