// Package errors provides structured error handling with machine-readable
// codes.
package errors

// Code is a machine-readable error code.
type Code string

const (
	// CodeUnknown represents an unknown error.
	CodeUnknown Code = "UNKNOWN"

	// Progression errors
	CodeInvalidObjective Code = "PROGRESSION_INVALID_OBJECTIVE"
	CodeInvalidRuleGraph Code = "PROGRESSION_INVALID_RULE_GRAPH"
	CodeIncompatibleShim Code = "PROGRESSION_INCOMPATIBLE_SHIM"
	CodeUnknownMission   Code = "PROGRESSION_UNKNOWN_MISSION"

	// Session setup errors
	CodeSetupMalformed         Code = "SETUP_MALFORMED_PAYLOAD"
	CodeSetupSchemaUnsupported Code = "SETUP_SCHEMA_UNSUPPORTED"

	// Storage errors
	CodeNotFound       Code = "NOT_FOUND"
	CodeStorageFailure Code = "STORAGE_FAILURE"

	// Gateway errors
	CodeGatewayDisconnected Code = "GATEWAY_DISCONNECTED"
	CodeGatewayBadFrame     Code = "GATEWAY_BAD_FRAME"
)
