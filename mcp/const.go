package mcp

// Protocol version
const (
	ProtocolVersion = "2025-11-25"
)

// Server identity advertised in initialize responses.
const (
	ServerName    = "xano-mcp-go"
	ServerVersion = "0.1.0"
)

// Method names handled by every transport.
const (
	MethodInitialize    = "initialize"
	MethodInitialized   = "notifications/initialized"
	MethodPing          = "ping"
	MethodToolsList     = "tools/list"
	MethodToolsCall     = "tools/call"
	MethodResourcesList = "resources/list"
	MethodResourcesRead = "resources/read"
)

// SupportedProtocolVersions lists every protocol revision the server accepts.
var SupportedProtocolVersions = map[string]struct{}{
	"2024-11-05":    {},
	"2025-03-26":    {},
	"2025-06-18":    {},
	ProtocolVersion: {},
}

// IsSupportedProtocolVersion reports whether version can be negotiated.
func IsSupportedProtocolVersion(version string) bool {
	if version == "" {
		return false
	}
	_, ok := SupportedProtocolVersions[version]
	return ok
}
