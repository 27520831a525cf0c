// Package tool defines the callable-capability contract offered to the
// model: the Tool interface, a schema-validating FunctionTool adapter, an
// insertion-ordered Registry, and demo tools for the order-support scenario.
package tool
