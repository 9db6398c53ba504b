package shared

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/slighter12/xano-mcp-go/config"
	"github.com/slighter12/xano-mcp-go/dispatch"
	"github.com/slighter12/xano-mcp-go/logger"
	"github.com/slighter12/xano-mcp-go/mcp"
	"github.com/slighter12/xano-mcp-go/mcp/jsonrpc"
	"github.com/slighter12/xano-mcp-go/tools"
	"github.com/slighter12/xano-mcp-go/tools/types"
)

const pageSize = 50

// Resource URIs served by resources/read.
const (
	ServerInfoURI  = "xano://server/info"
	ToolCatalogURI = "xano://tools/catalog"
)

const serverInstructions = "Tools for the Xano Metadata API. Start with xano_list_instances, " +
	"then xano_list_databases to find workspace IDs before working with tables."

// Handler answers MCP requests for one configured server. It is shared by
// every transport and safe for concurrent use.
type Handler struct {
	toolManager *tools.Manager
	dispatcher  *dispatch.Dispatcher
	config      *config.Config
}

// NewHandler creates a handler over the registered tools.
func NewHandler(toolManager *tools.Manager, cfg *config.Config) *Handler {
	return &Handler{
		toolManager: toolManager,
		dispatcher:  dispatch.New(toolManager, cfg),
		config:      cfg,
	}
}

// ToolManager returns the registry the handler serves.
func (h *Handler) ToolManager() *tools.Manager {
	return h.toolManager
}

// Handle answers one request. Notifications yield a nil response.
func (h *Handler) Handle(ctx context.Context, msg jsonrpc.Request) *jsonrpc.Response {
	switch msg.Method {
	case mcp.MethodInitialize:
		response, _ := h.Initialize(msg)
		return response
	case mcp.MethodInitialized, "initialized":
		if msg.ID != nil {
			return jsonrpc.InvalidRequest(msg.ID)
		}
		logger.Debug("Client initialized")
		return nil
	default:
		return DispatchStandardMethod(ctx, msg, h.toolManager, h.dispatcher, h.ReadResource)
	}
}

// Initialize answers an initialize request and returns the negotiated
// protocol version.
func (h *Handler) Initialize(msg jsonrpc.Request) (*jsonrpc.Response, string) {
	version := NegotiateProtocolVersion(msg.Params)
	logger.Debug("Handling initialize", "request_id", msg.ID, "protocol_version", version)
	return jsonrpc.NewResponse(msg.ID, mcp.InitializeResult{
		ProtocolVersion: version,
		Capabilities:    ServerCapabilities(),
		ServerInfo:      mcp.ServerInfo{Name: mcp.ServerName, Version: mcp.ServerVersion},
		Instructions:    serverInstructions,
	}), version
}

// ReadResource returns the content of a server resource.
func (h *Handler) ReadResource(uri string) (any, error) {
	switch uri {
	case ServerInfoURI:
		return map[string]any{
			"name":                  mcp.ServerName,
			"version":               mcp.ServerVersion,
			"protocolVersion":       mcp.ProtocolVersion,
			"transport":             h.config.Transport,
			"tools":                 h.toolManager.Len(),
			"global_api":            h.config.Xano.GlobalAPI,
			"instance_url_template": h.config.Xano.InstanceURLTemplate,
			"unknown_arguments":     h.config.Dispatch.UnknownArguments,
		}, nil
	case ToolCatalogURI:
		names := make([]string, 0, h.toolManager.Len())
		for _, tool := range h.toolManager.ListTools() {
			names = append(names, tool.Name())
		}
		return map[string]any{"tools": names}, nil
	default:
		return nil, fmt.Errorf("unknown resource: %s", uri)
	}
}

func BuildToolsListResponse(msg jsonrpc.Request, tools []mcp.Tool) *jsonrpc.Response {
	sortedTools := append([]mcp.Tool(nil), tools...)
	sort.Slice(sortedTools, func(i, j int) bool {
		return sortedTools[i].Name < sortedTools[j].Name
	})

	start, err := ParseCursor(msg.Params, len(sortedTools))
	if err != nil {
		return jsonrpc.NewErrorResponse(msg.ID, jsonrpc.ErrInvalidParams, err.Error(), nil)
	}
	end := min(start+pageSize, len(sortedTools))

	result := map[string]any{
		"tools": sortedTools[start:end],
	}
	if end < len(sortedTools) {
		result["nextCursor"] = strconv.Itoa(end)
	}
	return jsonrpc.NewResponse(msg.ID, result)
}

func BuildResourcesListResponse(msg jsonrpc.Request) *jsonrpc.Response {
	resources := defaultResources()
	start, err := ParseCursor(msg.Params, len(resources))
	if err != nil {
		return jsonrpc.NewErrorResponse(msg.ID, jsonrpc.ErrInvalidParams, err.Error(), nil)
	}
	end := min(start+pageSize, len(resources))

	result := map[string]any{
		"resources": resources[start:end],
	}
	if end < len(resources) {
		result["nextCursor"] = strconv.Itoa(end)
	}
	return jsonrpc.NewResponse(msg.ID, result)
}

func BuildResourcesReadResponse(msg jsonrpc.Request, readResource func(string) (any, error)) *jsonrpc.Response {
	var params struct {
		URI string `json:"uri"`
	}
	if err := json.Unmarshal(msg.Params, &params); err != nil {
		return jsonrpc.NewErrorResponse(msg.ID, jsonrpc.ErrInvalidParams, "Invalid resources/read payload", nil)
	}
	if params.URI == "" {
		return jsonrpc.NewErrorResponse(msg.ID, jsonrpc.ErrInvalidParams, "Resource URI is required", nil)
	}

	result, err := readResource(params.URI)
	if err != nil {
		return jsonrpc.NewErrorResponse(msg.ID, jsonrpc.ErrInvalidParams, err.Error(), map[string]any{"uri": params.URI})
	}
	resultJSON, err := json.Marshal(result)
	if err != nil {
		return jsonrpc.NewErrorResponse(msg.ID, jsonrpc.ErrInternalError, "Failed to encode resource result", nil)
	}

	return jsonrpc.NewResponse(msg.ID, map[string]any{
		"contents": []map[string]any{
			{
				"uri":      params.URI,
				"mimeType": "application/json",
				"text":     string(resultJSON),
			},
		},
	})
}

func BuildPingResponse(msg jsonrpc.Request) *jsonrpc.Response {
	return jsonrpc.NewResponse(msg.ID, map[string]any{})
}

// DispatchStandardMethod handles shared non-initialize JSON-RPC methods for all transports.
func DispatchStandardMethod(ctx context.Context, msg jsonrpc.Request, toolManager *tools.Manager, dispatcher *dispatch.Dispatcher, readResource func(string) (any, error)) *jsonrpc.Response {
	switch msg.Method {
	case mcp.MethodToolsList:
		return BuildToolsListResponse(msg, toolManager.GetTools())
	case mcp.MethodResourcesList:
		return BuildResourcesListResponse(msg)
	case mcp.MethodResourcesRead:
		return BuildResourcesReadResponse(msg, readResource)
	case mcp.MethodToolsCall:
		return BuildToolCallResponse(ctx, msg, dispatcher)
	case mcp.MethodPing:
		return BuildPingResponse(msg)
	default:
		if msg.ID != nil {
			return jsonrpc.MethodNotFound(msg.ID, msg.Method)
		}
		return nil
	}
}

func BuildToolCallResponse(ctx context.Context, msg jsonrpc.Request, dispatcher *dispatch.Dispatcher) *jsonrpc.Response {
	var toolCall struct {
		Name      string         `json:"name"`
		Arguments map[string]any `json:"arguments"`
	}
	// Numbers stay json.Number so large integer IDs keep every digit.
	decoder := json.NewDecoder(bytes.NewReader(msg.Params))
	decoder.UseNumber()
	if err := decoder.Decode(&toolCall); err != nil {
		return jsonrpc.NewErrorResponse(msg.ID, jsonrpc.ErrInvalidParams, "Invalid tool call payload", nil)
	}

	toolName := strings.TrimSpace(toolCall.Name)
	if toolName == "" {
		return jsonrpc.NewErrorResponse(msg.ID, jsonrpc.ErrInvalidParams, "Tool name is required", nil)
	}

	result := dispatcher.Dispatch(ctx, toolName, toolCall.Arguments)
	if result.OK() {
		return jsonrpc.NewResponse(msg.ID, BuildToolSuccessResult(result.Payload))
	}
	if result.Error.Kind == types.KindUnknownTool {
		return jsonrpc.NewErrorResponse(msg.ID, jsonrpc.ErrInvalidParams, result.Error.Message, result.Error.Fields())
	}
	return jsonrpc.NewResponse(msg.ID, BuildToolErrorResult(result.Error))
}

// BuildToolSuccessResult wraps a payload as tool output. Payloads that are
// not JSON objects are placed under "result" in the structured content.
func BuildToolSuccessResult(payload any) mcp.CallToolResult {
	raw, err := json.Marshal(payload)
	if err != nil {
		return BuildToolErrorResult(&dispatch.Error{
			Kind:    types.KindInternal,
			Message: fmt.Sprintf("encode tool result: %v", err),
		})
	}

	var structured any = json.RawMessage(raw)
	if trimmed := bytes.TrimSpace(raw); len(trimmed) == 0 || trimmed[0] != '{' {
		structured = map[string]any{"result": json.RawMessage(raw)}
	}
	return mcp.CallToolResult{
		Content:           []mcp.Content{{Type: "text", Text: string(raw)}},
		StructuredContent: structured,
	}
}

// BuildToolErrorResult reports a failed call inside a successful response.
func BuildToolErrorResult(toolErr *dispatch.Error) mcp.CallToolResult {
	structured := map[string]any{"error": toolErr.Fields()}
	text, err := json.Marshal(structured)
	if err != nil {
		text = []byte(toolErr.Error())
	}
	return mcp.CallToolResult{
		Content:           []mcp.Content{{Type: "text", Text: string(text)}},
		StructuredContent: structured,
		IsError:           true,
	}
}

func ServerCapabilities() map[string]any {
	return map[string]any{
		"tools":     map[string]any{"listChanged": false},
		"resources": map[string]any{},
	}
}

// NegotiateProtocolVersion echoes a supported requested version and falls
// back to the latest one otherwise.
func NegotiateProtocolVersion(paramsRaw json.RawMessage) string {
	var params struct {
		ProtocolVersion string `json:"protocolVersion"`
	}
	if err := json.Unmarshal(paramsRaw, &params); err != nil {
		return mcp.ProtocolVersion
	}
	if mcp.IsSupportedProtocolVersion(params.ProtocolVersion) {
		return params.ProtocolVersion
	}
	return mcp.ProtocolVersion
}

func ParseCursor(paramsRaw json.RawMessage, total int) (int, error) {
	if len(paramsRaw) == 0 {
		return 0, nil
	}

	var params struct {
		Cursor string `json:"cursor"`
	}
	if err := json.Unmarshal(paramsRaw, &params); err != nil {
		return 0, fmt.Errorf("invalid params payload")
	}
	if strings.TrimSpace(params.Cursor) == "" {
		return 0, nil
	}

	offset, err := strconv.Atoi(params.Cursor)
	if err != nil {
		return 0, fmt.Errorf("invalid cursor value")
	}
	if offset < 0 || offset > total {
		return 0, fmt.Errorf("invalid cursor value")
	}
	return offset, nil
}

func defaultResources() []mcp.Resource {
	return []mcp.Resource{
		{
			URI:         ServerInfoURI,
			Name:        "Server Info",
			Description: "Server version and Metadata API endpoints",
			MimeType:    "application/json",
		},
		{
			URI:         ToolCatalogURI,
			Name:        "Tool Catalog",
			Description: "Names of every registered tool",
			MimeType:    "application/json",
		},
	}
}

// ParseJSONRPCFrame validates and parses one JSON-RPC message frame.
// Batches are rejected. It returns the request to handle, or a prebuilt
// error response, or neither when the frame was a client response that
// needs no answer.
func ParseJSONRPCFrame(frame []byte) (*jsonrpc.Request, *jsonrpc.Response, error) {
	trimmed := bytes.TrimSpace(frame)
	if len(trimmed) == 0 {
		return nil, nil, fmt.Errorf("empty message")
	}

	if trimmed[0] == '[' {
		return nil, jsonrpc.InvalidRequest(nil), nil
	}

	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &envelope); err != nil {
		return nil, jsonrpc.ParseError(), nil
	}

	requestID, hasID, validID := parseIDFromEnvelope(envelope)
	if !validID {
		return nil, jsonrpc.InvalidRequest(nil), nil
	}

	var msg jsonrpc.Request
	if err := json.Unmarshal(trimmed, &msg); err != nil {
		return nil, jsonrpc.InvalidRequest(requestID), nil
	}
	msg.ID = requestID

	if msg.Method == "" {
		_, hasResult := envelope["result"]
		_, hasErr := envelope["error"]
		if hasResult || hasErr {
			if msg.JSONRPC != jsonrpc.Version || !hasID || (hasResult && hasErr) {
				return nil, jsonrpc.InvalidRequest(nil), nil
			}
			return nil, nil, nil
		}
		return nil, jsonrpc.InvalidRequest(requestID), nil
	}

	if msg.JSONRPC != jsonrpc.Version {
		return nil, jsonrpc.InvalidRequest(requestID), nil
	}
	if rawParams, ok := envelope["params"]; ok && !isValidParamsValue(rawParams) {
		return nil, jsonrpc.InvalidRequest(requestID), nil
	}
	if msg.Method == mcp.MethodInitialize && msg.ID == nil {
		return nil, jsonrpc.InvalidRequest(nil), nil
	}

	return &msg, nil, nil
}

func parseIDFromEnvelope(envelope map[string]json.RawMessage) (any, bool, bool) {
	rawID, exists := envelope["id"]
	if !exists {
		return nil, false, true
	}
	trimmed := bytes.TrimSpace(rawID)
	if len(trimmed) == 0 {
		return nil, true, false
	}

	var id any
	decoder := json.NewDecoder(bytes.NewReader(trimmed))
	decoder.UseNumber()
	if err := decoder.Decode(&id); err != nil {
		return nil, true, false
	}
	if !isValidJSONRPCID(id) {
		return nil, true, false
	}
	return id, true, true
}

func isValidJSONRPCID(id any) bool {
	switch v := id.(type) {
	case string:
		return true
	case json.Number:
		return isJSONInteger(v.String())
	default:
		return false
	}
}

func isValidParamsValue(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return false
	}
	return trimmed[0] == '{'
}

func isJSONInteger(value string) bool {
	if value == "" || strings.ContainsAny(value, ".eE") {
		return false
	}
	if _, err := strconv.ParseInt(value, 10, 64); err == nil {
		return true
	}
	if strings.HasPrefix(value, "-") {
		return false
	}
	_, err := strconv.ParseUint(value, 10, 64)
	return err == nil
}
