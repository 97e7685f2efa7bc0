package constants

// ============================================================================
// CONFIGURATION
// ============================================================================

// Configuration Files
const (
	ConfigFileName  = "flowviz.config.json"
	DefaultDataDir  = ".flowviz"
	DefaultBlobDir  = ".flowviz/diagrams"
	DefaultSQLiteDB = ".flowviz/flowviz.db"
)

// Storage Drivers
const (
	StorageDriverMemory   = "memory"
	StorageDriverSQLite   = "sqlite"
	StorageDriverPostgres = "postgres"
)

// Blob Drivers
const (
	BlobDriverFilesystem = "filesystem"
	BlobDriverS3         = "s3"
)

// Event Drivers
const (
	EventDriverMemory = "memory"
	EventDriverNATS   = "nats"
)

// Tracing Exporters
const (
	TracingExporterStdout = "stdout"
	TracingExporterOTLP   = "otlp"
	DefaultServiceName    = "flowviz"
)

// Environment Variables
const (
	EnvDebug         = "FLOWVIZ_DEBUG"
	EnvStorageDriver = "FLOWVIZ_STORAGE_DRIVER"
	EnvStorageDSN    = "FLOWVIZ_STORAGE_DSN"
	EnvHTTPPort      = "FLOWVIZ_HTTP_PORT"
)

// ============================================================================
// RENDERING
// ============================================================================

// Notations
const (
	NotationMermaid  = "mermaid"
	NotationPlantUML = "plantuml"
)

// Document formats
const (
	FormatAuto = "auto"
	FormatXML  = "xml"
	FormatYAML = "yaml"
)

// ComponentTag prefixes every error logged by the converter.
const ComponentTag = "flowviz"

// Conversion error identifiers
const (
	ErrNoRenderableContent   = "no-renderable-content-found"
	ErrUnknownRenderAsPrefix = "unknown-renderAs-"
	ErrCyclicGraph           = "cyclic flow graph at step %q"
	ErrDocumentParse         = "%s parse error: %v"
	ErrUnsupportedFormat     = "unsupported document format: %s"
)

// ============================================================================
// CLI COMMANDS & DESCRIPTIONS
// ============================================================================

// Command names
const (
	CmdRender = "render"
	CmdServe  = "serve"
	CmdMCP    = "mcp"
)

// Command descriptions
const (
	DescRootCommand = "Convert flow definitions into Mermaid or PlantUML diagrams"
	DescRender      = "Render a flow document as a diagram"
	DescServe       = "Start the flowviz HTTP server"
	DescMCPCommands = "MCP server commands"
	DescMCPServe    = "Start MCP server for flowviz tools"
)

// CLI Messages
const (
	MsgDiagramWritten = "Diagram written to %s"
	MsgDiagramURL     = "Published diagram at %s"
	MsgServerStarting = "Starting flowviz server on %s"
	MsgMCPStarting    = "Starting flowviz MCP server (%s)"
)

// CLI exit codes per error class
const (
	ExitParseError          = 1
	ExitNoRenderableContent = 2
	ExitUnsupportedNotation = 3
	ExitCyclicGraph         = 4
	ExitWriteFailure        = 5
)

// ============================================================================
// HTTP & API
// ============================================================================

// HTTP Methods
const (
	HTTPMethodGET    = "GET"
	HTTPMethodPOST   = "POST"
	HTTPMethodDELETE = "DELETE"
)

// HTTP Paths
const (
	HTTPPathRoot        = "/"
	HTTPPathHealth      = "/healthz"
	HTTPPathMetrics     = "/metrics"
	HTTPPathRender      = "/render"
	HTTPPathRenders     = "/renders"
	HTTPPathRendersByID = "/renders/{id}"
	HTTPPathStyles      = "/styles"
	HTTPPathNotations   = "/notations"
	HTTPPathMCP         = "/mcp"
)

// Content Types
const (
	ContentTypeJSON     = "application/json"
	ContentTypeText     = "text/plain"
	ContentTypeMarkdown = "text/markdown"
)

// HTTP Headers
const (
	HeaderContentType = "Content-Type"
	HeaderRequestID   = "X-Request-Id"
)

// HTTP Defaults
const (
	DefaultHTTPHost = "localhost"
	DefaultHTTPPort = 8080
	DefaultMCPAddr  = "localhost:3001"
)

// HTTP Response Messages
const (
	ResponseInvalidRequestBody = "invalid request body"
	ResponseInvalidRenderID    = "invalid render ID"
	ResponseRenderNotFound     = "render not found"
	ResponseMissingDocument    = "missing document"
	HealthCheckResponse        = "OK"
)

// Logging Messages
const (
	LogFailedWriteHealthCheck = "Failed to write health check response: %v"
	LogFailedEncodeJSON       = "Failed to encode JSON response: %v"
	LogRenderFailed           = "render failed"
	LogRenderStored           = "render stored"
	LogPublishFailed          = "publishing diagram %s failed: %w"
	LogEventFailed            = "publishing render event failed"
)

// Interface IDs
const (
	InterfaceIDRender        = "render"
	InterfaceIDGetRender     = "getRender"
	InterfaceIDListRenders   = "listRenders"
	InterfaceIDDeleteRender  = "deleteRender"
	InterfaceIDListStyles    = "listStyles"
	InterfaceIDListNotations = "listNotations"
)

// Interface descriptions
const (
	InterfaceDescRender        = "Render a flow document as Mermaid or PlantUML"
	InterfaceDescGetRender     = "Get a stored render by ID"
	InterfaceDescListRenders   = "List stored renders"
	InterfaceDescDeleteRender  = "Delete a stored render"
	InterfaceDescListStyles    = "List the style table"
	InterfaceDescListNotations = "List supported notations"
	InterfaceDescHealthCheck   = "Health check endpoint"
	InterfaceDescMetrics       = "Prometheus metrics endpoint"
)

// ============================================================================
// EVENTS & METRICS
// ============================================================================

// Event topics
const (
	EventTopicRendered = "diagram.rendered"
)

// Render outcomes
const (
	OutcomeSuccess = "success"
	OutcomeError   = "error"
)

// ============================================================================
// OUTPUT FORMATTING
// ============================================================================

// JSON formatting
const (
	JSONIndent = "  "
)

// File permissions
const (
	FilePermission = 0644
	DirPermission  = 0755
)

// Diagram file extensions per notation
const (
	ExtMermaid  = ".md"
	ExtPlantUML = ".puml"
)
