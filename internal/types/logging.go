package types

type LogLevel string

const (
	LogLevelDebug LogLevel = "debug"
	LogLevelInfo  LogLevel = "info"
	LogLevelWarn  LogLevel = "warn"
	LogLevelError LogLevel = "error"
)

type DeploymentMode string

const (
	DeploymentModeLocal DeploymentMode = "local"
	DeploymentModeAPI   DeploymentMode = "api"
)
