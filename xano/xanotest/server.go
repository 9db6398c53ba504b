// Package xanotest provides an in-memory fake of the Xano Metadata API for
// tests.
package xanotest

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sort"
	"strconv"
	"sync"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/slighter12/xano-mcp-go/config"
	"github.com/slighter12/xano-mcp-go/xano"
)

// Token is the bearer token the fake accepts.
const Token = "xano-test-token-0123456789"

// Instance is the instance name the fake serves.
const Instance = "x1-test"

// Recorded is one request received by the fake.
type Recorded struct {
	Method      string
	Path        string
	RawPath     string
	Query       string
	ContentType string
	Body        []byte
}

type failure struct {
	status int
	body   string
}

// Server is a fake Metadata API backed by memory.
type Server struct {
	*httptest.Server

	mu       sync.Mutex
	requests []Recorded
	fail     *failure
	tables   map[string][]any
	schemas  map[string][]any
	indexes  map[string][]any
	records  map[string][]map[string]any
	files    map[string][]map[string]any
	history  map[string][]any
	nextID   map[string]int64
}

// New starts a fake server that is closed when t finishes.
func New(t testing.TB) *Server {
	t.Helper()
	s := &Server{
		tables:  map[string][]any{},
		schemas: map[string][]any{},
		indexes: map[string][]any{},
		records: map[string][]map[string]any{},
		files:   map[string][]map[string]any{},
		history: map[string][]any{},
		nextID:  map[string]int64{},
	}
	s.Server = httptest.NewServer(s.router())
	t.Cleanup(s.Close)
	return s
}

// Config returns a valid configuration pointing at the fake.
func (s *Server) Config() *config.Config {
	cfg := config.NewConfig()
	cfg.Xano.APIToken = Token
	cfg.Xano.GlobalAPI = s.URL + "/global"
	cfg.Xano.InstanceURLTemplate = s.URL + "/i/" + config.InstancePlaceholder + "/meta"
	cfg.Xano.TimeoutSeconds = 5
	cfg.Logging.Path = ""
	return cfg
}

// Client returns an API client wired to the fake.
func (s *Server) Client() *xano.Client {
	return xano.New(s.Config(), xano.WithHTTPClient(s.Server.Client()))
}

// Requests returns a copy of every request received so far.
func (s *Server) Requests() []Recorded {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Recorded(nil), s.requests...)
}

// RequestCount returns the number of requests received so far.
func (s *Server) RequestCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.requests)
}

// LastRequest returns the most recent request.
func (s *Server) LastRequest() (Recorded, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.requests) == 0 {
		return Recorded{}, false
	}
	return s.requests[len(s.requests)-1], true
}

// Fail makes every following request answer with status and body.
func (s *Server) Fail(status int, body string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fail = &failure{status: status, body: body}
}

// Recover undoes Fail.
func (s *Server) Recover() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fail = nil
}

// SetTables replaces the table listing of a workspace. The listing is
// returned verbatim.
func (s *Server) SetTables(workspace string, tables ...any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tables[workspace] = tables
}

// SetSchema replaces the schema of a table.
func (s *Server) SetSchema(workspace, table string, fields ...any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.schemas[tableKey(workspace, table)] = fields
}

// Records returns the stored records of a table.
func (s *Server) Records(workspace, table string) []map[string]any {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]map[string]any(nil), s.records[tableKey(workspace, table)]...)
}

func tableKey(workspace, table string) string {
	return workspace + "/" + table
}

func (s *Server) router() *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(s.record, s.authorize)

	g := e.Group("/global")
	g.GET("/auth/me", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]any{
			"id":    1,
			"name":  "Test Account",
			"email": "owner@example.com",
			"instances": []any{
				map[string]any{"name": Instance, "display": "X1"},
			},
		})
	})
	g.GET("/instance", func(c echo.Context) error {
		return c.JSON(http.StatusOK, []any{map[string]any{"name": Instance}})
	})

	i := e.Group("/i/:instance/meta")
	i.GET("/workspace", func(c echo.Context) error {
		return c.JSON(http.StatusOK, []any{map[string]any{"id": 1, "name": "main"}})
	})
	i.GET("/workspace/:ws", func(c echo.Context) error {
		id, _ := strconv.Atoi(c.Param("ws"))
		return c.JSON(http.StatusOK, map[string]any{"id": id, "name": "main", "branch": "v1"})
	})

	w := i.Group("/workspace/:ws")
	w.GET("/table", s.listTables)
	w.POST("/table", s.createTable)
	w.GET("/table/:t", s.echoTable)
	w.DELETE("/table/:t", s.ok)
	w.PUT("/table/:t/meta", s.echoTable)
	w.DELETE("/table/:t/truncate", s.truncate)

	w.GET("/table/:t/schema", s.getSchema)
	w.PUT("/table/:t/schema", s.replaceSchema)
	w.POST("/table/:t/schema/rename", s.ok)
	w.POST("/table/:t/schema/type/:type", s.addField)
	w.GET("/table/:t/schema/:field", s.getField)
	w.DELETE("/table/:t/schema/:field", s.ok)

	w.GET("/table/:t/index", s.listIndexes)
	w.POST("/table/:t/index/:kind", s.createIndex)
	w.DELETE("/table/:t/index/:id", s.ok)

	w.GET("/table/:t/content", s.browse)
	w.POST("/table/:t/content", s.createRecord)
	w.POST("/table/:t/content/search", s.search)
	w.POST("/table/:t/content/bulk", s.bulkCreate)
	w.POST("/table/:t/content/bulk/patch", s.bulkPatch)
	w.POST("/table/:t/content/bulk/delete", s.bulkDelete)
	w.GET("/table/:t/content/:id", s.getRecord)
	w.PUT("/table/:t/content/:id", s.updateRecord)
	w.DELETE("/table/:t/content/:id", s.deleteRecord)

	w.GET("/file", s.listFiles)
	w.POST("/file", s.uploadFile)
	w.DELETE("/file/bulk_delete", s.ok)
	w.DELETE("/file/:id", s.ok)

	w.GET("/request_history", s.browseHistory)
	w.POST("/request_history/search", s.browseHistory)

	w.POST("/export", s.export("workspace.tar.gz"))
	w.POST("/export-schema", s.export("schema.tar.gz"))
	w.POST("/import", s.empty)
	w.POST("/import-schema", s.empty)

	return e
}

func (s *Server) record(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		req := c.Request()
		var body []byte
		if req.Body != nil {
			body, _ = io.ReadAll(req.Body)
			req.Body = io.NopCloser(bytes.NewReader(body))
		}
		s.mu.Lock()
		s.requests = append(s.requests, Recorded{
			Method:      req.Method,
			Path:        req.URL.Path,
			RawPath:     req.URL.EscapedPath(),
			Query:       req.URL.RawQuery,
			ContentType: req.Header.Get("Content-Type"),
			Body:        body,
		})
		fail := s.fail
		s.mu.Unlock()

		if fail != nil {
			return c.Blob(fail.status, echo.MIMEApplicationJSON, []byte(fail.body))
		}
		return next(c)
	}
}

func (s *Server) authorize(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if c.Request().Header.Get("Authorization") != "Bearer "+Token {
			return c.JSON(http.StatusUnauthorized, map[string]any{
				"code":    "ERROR_CODE_UNAUTHORIZED",
				"message": "Invalid token.",
			})
		}
		return next(c)
	}
}

func (s *Server) ok(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]any{"success": true})
}

func (s *Server) empty(c echo.Context) error {
	return c.NoContent(http.StatusOK)
}

func notFound(c echo.Context, what string) error {
	return c.JSON(http.StatusNotFound, map[string]any{
		"code":    "ERROR_CODE_NOT_FOUND",
		"message": fmt.Sprintf("%s not found", what),
	})
}

func badInput(c echo.Context, err error) error {
	return c.JSON(http.StatusBadRequest, map[string]any{
		"code":    "ERROR_CODE_INPUT_ERROR",
		"message": err.Error(),
	})
}

func decode(c echo.Context, v any) error {
	if err := json.NewDecoder(c.Request().Body).Decode(v); err != nil && err != io.EOF {
		return err
	}
	return nil
}

func (s *Server) listTables(c echo.Context) error {
	s.mu.Lock()
	tables, ok := s.tables[c.Param("ws")]
	s.mu.Unlock()
	if !ok {
		tables = []any{}
	}
	return c.JSON(http.StatusOK, tables)
}

func (s *Server) createTable(c echo.Context) error {
	var body map[string]any
	if err := decode(c, &body); err != nil {
		return badInput(c, err)
	}
	if body == nil {
		body = map[string]any{}
	}
	s.mu.Lock()
	id := s.allocate("tables/" + c.Param("ws"))
	s.mu.Unlock()
	body["id"] = id
	return c.JSON(http.StatusOK, body)
}

func (s *Server) echoTable(c echo.Context) error {
	out := map[string]any{"id": c.Param("t")}
	if c.Request().Method == http.MethodPut {
		var body map[string]any
		if err := decode(c, &body); err != nil {
			return badInput(c, err)
		}
		for k, v := range body {
			out[k] = v
		}
	}
	return c.JSON(http.StatusOK, out)
}

func (s *Server) truncate(c echo.Context) error {
	s.mu.Lock()
	delete(s.records, tableKey(c.Param("ws"), c.Param("t")))
	s.mu.Unlock()
	return s.ok(c)
}

func (s *Server) getSchema(c echo.Context) error {
	s.mu.Lock()
	fields := s.schemas[tableKey(c.Param("ws"), c.Param("t"))]
	s.mu.Unlock()
	if fields == nil {
		fields = []any{map[string]any{"name": "id", "type": "int"}}
	}
	return c.JSON(http.StatusOK, fields)
}

func (s *Server) replaceSchema(c echo.Context) error {
	var body struct {
		Schema []any `json:"schema"`
	}
	if err := decode(c, &body); err != nil {
		return badInput(c, err)
	}
	s.SetSchema(c.Param("ws"), c.Param("t"), body.Schema...)
	return c.JSON(http.StatusOK, body.Schema)
}

func (s *Server) getField(c echo.Context) error {
	s.mu.Lock()
	fields := s.schemas[tableKey(c.Param("ws"), c.Param("t"))]
	s.mu.Unlock()
	for _, f := range fields {
		if m, ok := f.(map[string]any); ok && m["name"] == c.Param("field") {
			return c.JSON(http.StatusOK, m)
		}
	}
	return notFound(c, "field")
}

func (s *Server) addField(c echo.Context) error {
	var body map[string]any
	if err := decode(c, &body); err != nil {
		return badInput(c, err)
	}
	body["type"] = c.Param("type")
	s.mu.Lock()
	key := tableKey(c.Param("ws"), c.Param("t"))
	s.schemas[key] = append(s.schemas[key], body)
	fields := append([]any(nil), s.schemas[key]...)
	s.mu.Unlock()
	return c.JSON(http.StatusOK, fields)
}

func (s *Server) listIndexes(c echo.Context) error {
	s.mu.Lock()
	indexes := s.indexes[tableKey(c.Param("ws"), c.Param("t"))]
	s.mu.Unlock()
	if indexes == nil {
		indexes = []any{}
	}
	return c.JSON(http.StatusOK, indexes)
}

func (s *Server) createIndex(c echo.Context) error {
	var body map[string]any
	if err := decode(c, &body); err != nil {
		return badInput(c, err)
	}
	key := tableKey(c.Param("ws"), c.Param("t"))
	s.mu.Lock()
	body["id"] = s.allocate("index/" + key)
	body["type"] = c.Param("kind")
	s.indexes[key] = append(s.indexes[key], body)
	s.mu.Unlock()
	return c.JSON(http.StatusOK, body)
}

// allocate returns the next id of a sequence. Callers hold s.mu.
func (s *Server) allocate(sequence string) int64 {
	s.nextID[sequence]++
	return s.nextID[sequence]
}

func (s *Server) insertLocked(key string, record map[string]any, allowID bool) map[string]any {
	stored := make(map[string]any, len(record)+1)
	for k, v := range record {
		stored[k] = v
	}
	if _, has := stored["id"]; !allowID || !has {
		stored["id"] = s.allocate("records/" + key)
	}
	s.records[key] = append(s.records[key], stored)
	return stored
}

func page(c echo.Context, defaultPerPage int) (int, int) {
	p, _ := strconv.Atoi(c.QueryParam("page"))
	pp, _ := strconv.Atoi(c.QueryParam("per_page"))
	if p <= 0 {
		p = 1
	}
	if pp <= 0 {
		pp = defaultPerPage
	}
	return p, pp
}

func paged(items []map[string]any, p, perPage int) map[string]any {
	start := (p - 1) * perPage
	if start > len(items) {
		start = len(items)
	}
	end := start + perPage
	if end > len(items) {
		end = len(items)
	}
	var next any
	if end < len(items) {
		next = p + 1
	}
	window := append([]map[string]any{}, items[start:end]...)
	return map[string]any{
		"items":      window,
		"curPage":    p,
		"nextPage":   next,
		"itemsTotal": len(items),
	}
}

func (s *Server) browse(c echo.Context) error {
	p, perPage := page(c, 50)
	return c.JSON(http.StatusOK, paged(s.Records(c.Param("ws"), c.Param("t")), p, perPage))
}

func (s *Server) search(c echo.Context) error {
	var body struct {
		Page    int               `json:"page"`
		PerPage int               `json:"per_page"`
		Search  []map[string]any  `json:"search"`
		Sort    map[string]string `json:"sort"`
	}
	if err := decode(c, &body); err != nil {
		return badInput(c, err)
	}
	var matched []map[string]any
	for _, rec := range s.Records(c.Param("ws"), c.Param("t")) {
		if matches(rec, body.Search) {
			matched = append(matched, rec)
		}
	}
	for field, order := range body.Sort {
		sort.SliceStable(matched, func(a, b int) bool {
			less := fmt.Sprint(matched[a][field]) < fmt.Sprint(matched[b][field])
			if order == "desc" {
				return !less
			}
			return less
		})
	}
	if body.Page <= 0 {
		body.Page = 1
	}
	if body.PerPage <= 0 {
		body.PerPage = 50
	}
	if matched == nil {
		matched = []map[string]any{}
	}
	return c.JSON(http.StatusOK, paged(matched, body.Page, body.PerPage))
}

// matches applies equality conditions, each a map of field to value.
func matches(rec map[string]any, conditions []map[string]any) bool {
	for _, cond := range conditions {
		for field, want := range cond {
			if fmt.Sprint(rec[field]) != fmt.Sprint(want) {
				return false
			}
		}
	}
	return true
}

func (s *Server) findLocked(key, id string) int {
	for i, rec := range s.records[key] {
		if fmt.Sprint(rec["id"]) == id {
			return i
		}
	}
	return -1
}

func (s *Server) getRecord(c echo.Context) error {
	key := tableKey(c.Param("ws"), c.Param("t"))
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.findLocked(key, c.Param("id"))
	if i < 0 {
		return notFound(c, "record")
	}
	return c.JSON(http.StatusOK, s.records[key][i])
}

func (s *Server) createRecord(c echo.Context) error {
	var body map[string]any
	if err := decode(c, &body); err != nil {
		return badInput(c, err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return c.JSON(http.StatusOK, s.insertLocked(tableKey(c.Param("ws"), c.Param("t")), body, false))
}

func (s *Server) updateRecord(c echo.Context) error {
	var body map[string]any
	if err := decode(c, &body); err != nil {
		return badInput(c, err)
	}
	key := tableKey(c.Param("ws"), c.Param("t"))
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.findLocked(key, c.Param("id"))
	if i < 0 {
		return notFound(c, "record")
	}
	for k, v := range body {
		if k != "id" {
			s.records[key][i][k] = v
		}
	}
	return c.JSON(http.StatusOK, s.records[key][i])
}

func (s *Server) deleteRecord(c echo.Context) error {
	key := tableKey(c.Param("ws"), c.Param("t"))
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.findLocked(key, c.Param("id"))
	if i < 0 {
		return notFound(c, "record")
	}
	s.records[key] = append(s.records[key][:i], s.records[key][i+1:]...)
	return s.ok(c)
}

func (s *Server) bulkCreate(c echo.Context) error {
	var body struct {
		Items        []map[string]any `json:"items"`
		AllowIDField bool             `json:"allow_id_field"`
	}
	if err := decode(c, &body); err != nil {
		return badInput(c, err)
	}
	key := tableKey(c.Param("ws"), c.Param("t"))
	s.mu.Lock()
	ids := make([]any, 0, len(body.Items))
	for _, item := range body.Items {
		ids = append(ids, s.insertLocked(key, item, body.AllowIDField)["id"])
	}
	s.mu.Unlock()
	return c.JSON(http.StatusOK, ids)
}

func (s *Server) bulkPatch(c echo.Context) error {
	var body struct {
		Items []struct {
			RowID   any            `json:"row_id"`
			Updates map[string]any `json:"updates"`
		} `json:"items"`
	}
	if err := decode(c, &body); err != nil {
		return badInput(c, err)
	}
	key := tableKey(c.Param("ws"), c.Param("t"))
	s.mu.Lock()
	defer s.mu.Unlock()
	updated := []any{}
	for _, item := range body.Items {
		id := fmt.Sprint(item.RowID)
		i := s.findLocked(key, id)
		if i < 0 {
			continue
		}
		for k, v := range item.Updates {
			s.records[key][i][k] = v
		}
		updated = append(updated, s.records[key][i]["id"])
	}
	return c.JSON(http.StatusOK, map[string]any{"update_count": len(updated), "updated_ids": updated})
}

func (s *Server) bulkDelete(c echo.Context) error {
	var body struct {
		RowIDs []any `json:"row_ids"`
	}
	if err := decode(c, &body); err != nil {
		return badInput(c, err)
	}
	key := tableKey(c.Param("ws"), c.Param("t"))
	s.mu.Lock()
	defer s.mu.Unlock()
	deleted := 0
	for _, rowID := range body.RowIDs {
		if i := s.findLocked(key, fmt.Sprint(rowID)); i >= 0 {
			s.records[key] = append(s.records[key][:i], s.records[key][i+1:]...)
			deleted++
		}
	}
	return c.JSON(http.StatusOK, map[string]any{"delete_count": deleted})
}

func (s *Server) listFiles(c echo.Context) error {
	p, perPage := page(c, 50)
	s.mu.Lock()
	files := append([]map[string]any(nil), s.files[c.Param("ws")]...)
	s.mu.Unlock()
	return c.JSON(http.StatusOK, paged(files, p, perPage))
}

func (s *Server) uploadFile(c echo.Context) error {
	header, err := c.FormFile("content")
	if err != nil {
		return badInput(c, err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	file := map[string]any{
		"id":     s.allocate("files/" + c.Param("ws")),
		"name":   header.Filename,
		"size":   header.Size,
		"type":   c.FormValue("type"),
		"access": c.FormValue("access"),
	}
	s.files[c.Param("ws")] = append(s.files[c.Param("ws")], file)
	return c.JSON(http.StatusOK, file)
}

// AddHistory appends entries to the request log of a workspace.
func (s *Server) AddHistory(workspace string, entries ...any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.history[workspace] = append(s.history[workspace], entries...)
}

func (s *Server) browseHistory(c echo.Context) error {
	s.mu.Lock()
	entries := append([]any(nil), s.history[c.Param("ws")]...)
	s.mu.Unlock()
	if entries == nil {
		entries = []any{}
	}
	return c.JSON(http.StatusOK, map[string]any{"items": entries})
}

// ExportContent is the archive body the fake returns for exports.
var ExportContent = []byte("fake-archive-bytes")

func (s *Server) export(filename string) echo.HandlerFunc {
	return func(c echo.Context) error {
		c.Response().Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
		return c.Blob(http.StatusOK, "application/gzip", ExportContent)
	}
}

// DecodeBody unmarshals the body of a recorded request.
func (r Recorded) DecodeBody(v any) error {
	return json.Unmarshal(r.Body, v)
}
