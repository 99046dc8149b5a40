package config

// Version is reported by `doubledyn version`. Release builds override it
// with -ldflags "-X github.com/funvibe/doubledyn/internal/config.Version=...".
var Version = "0.1.0-dev"

const SourceFileExt = ".dd"

// Config file names, searched in this order.
const (
	ConfigFileName    = "doubledyn.yaml"
	ConfigFileNameAlt = "doubledyn.yml"
)

// Defaults for omitted configuration fields.
const (
	DefaultOutput      = "{name}_dispatch.go"
	DefaultPanicPrefix = "doubledyn"
)

// OutputNamePlaceholder is replaced by the spec file name without extension.
const OutputNamePlaceholder = "{name}"

// GoPackageEnv is set by `go generate` to the package of the file holding
// the directive.
const GoPackageEnv = "GOPACKAGE"
