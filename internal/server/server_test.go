package server

import (
	"context"
	"encoding/base64"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/mj1618/desktop-harness/internal/model"
	"github.com/mj1618/desktop-harness/internal/output"
	"github.com/mj1618/desktop-harness/internal/platform/sim"
	"github.com/mj1618/desktop-harness/internal/scenario"
)

const testScene = `
name: panel
timing: aggressive
window: {bounds: [0, 0, 300, 200]}
scene:
  - role: button
    id: go
    text: Go
    bounds: [10, 10, 80, 30]
    on_click: {target: "#status", set_text: clicked}
  - {role: input, id: name, bounds: [10, 50, 150, 30]}
  - {role: label, id: status, text: idle, bounds: [10, 100, 150, 20]}
`

func newTestServer(t *testing.T, ttl time.Duration) *Server {
	t.Helper()
	script, err := scenario.Parse([]byte(testScene))
	require.NoError(t, err)
	tk := sim.New(sim.WithPulseInterval(2 * time.Millisecond))
	t.Cleanup(tk.Stop)
	session, err := scenario.Setup(context.Background(), scenario.Env{Toolkit: tk, Injector: tk, Actions: tk}, script)
	require.NoError(t, err)
	t.Cleanup(func() { _ = session.Close() })
	return New(session, Config{CacheTTL: ttl}, nil)
}

func call(t *testing.T, handler func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error), args map[string]interface{}) *mcp.CallToolResult {
	t.Helper()
	var req mcp.CallToolRequest
	req.Params.Arguments = args
	res, err := handler(context.Background(), req)
	require.NoError(t, err)
	require.NotNil(t, res)
	return res
}

func text(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	require.NotEmpty(t, res.Content)
	tc, ok := res.Content[0].(mcp.TextContent)
	require.True(t, ok, "expected text content, got %T", res.Content[0])
	return tc.Text
}

func readScene(t *testing.T, s *Server, args map[string]interface{}) output.ReadResult {
	t.Helper()
	res := call(t, s.handleRead, args)
	require.False(t, res.IsError, text(t, res))
	var out output.ReadResult
	require.NoError(t, yaml.Unmarshal([]byte(text(t, res)), &out))
	return out
}

func statusText(t *testing.T, s *Server) string {
	t.Helper()
	out := readScene(t, s, map[string]interface{}{"selector": "#status"})
	require.Len(t, out.Elements, 1)
	return out.Elements[0].Text
}

func TestParams(t *testing.T) {
	params := map[string]interface{}{
		"s":    "x",
		"n":    float64(3),
		"ns":   "7",
		"f":    float64(1.5),
		"b":    true,
		"bs":   "true",
		"num":  float64(42),
		"null": nil,
	}
	assert.Equal(t, "x", StringParam(params, "s", ""))
	assert.Equal(t, "42", StringParam(params, "num", ""))
	assert.Equal(t, "d", StringParam(params, "null", "d"))
	assert.Equal(t, "d", StringParam(params, "missing", "d"))
	assert.Equal(t, 3, IntParam(params, "n", 0))
	assert.Equal(t, 7, IntParam(params, "ns", 0))
	assert.Equal(t, 9, IntParam(params, "s", 9))
	assert.Equal(t, 1.5, FloatParam(params, "f", 0))
	assert.True(t, BoolParam(params, "b", false))
	assert.True(t, BoolParam(params, "bs", false))
	assert.False(t, BoolParam(params, "missing", false))

	assert.Nil(t, optString(params, "missing"))
	require.NotNil(t, optBool(params, "b"))
	assert.Nil(t, offsetParam(params))
	assert.Equal(t, []float64{0, 4}, offsetParam(map[string]interface{}{"dy": float64(4)}))
}

func TestRoleSet(t *testing.T) {
	assert.Nil(t, roleSet(""))
	set := roleSet("Button, input")
	assert.True(t, set["btn"])
	assert.True(t, set["input"])
	assert.True(t, roleSet("interactive")["chk"])
}

func TestReadFilters(t *testing.T) {
	s := newTestServer(t, 0)

	all := readScene(t, s, nil)
	assert.Equal(t, "panel", all.Window)
	assert.Len(t, all.Elements, 4, "root group plus three widgets")

	buttons := readScene(t, s, map[string]interface{}{"role": "btn"})
	require.Len(t, buttons.Elements, 1)
	assert.Equal(t, "go", buttons.Elements[0].ID)

	byText := readScene(t, s, map[string]interface{}{"text": "IDL"})
	require.Len(t, byText.Elements, 1)
	assert.Equal(t, "status", byText.Elements[0].ID)

	res := call(t, s.handleRead, map[string]interface{}{"selector": "#nope"})
	assert.True(t, res.IsError)
}

func TestClickRunsAction(t *testing.T) {
	s := newTestServer(t, 0)
	res := call(t, s.handleClick, map[string]interface{}{"target": "#go"})
	require.False(t, res.IsError, text(t, res))
	assert.Contains(t, text(t, res), "ok: true")
	assert.Equal(t, "clicked", statusText(t, s))

	res = call(t, s.handleClick, map[string]interface{}{"target": "#missing"})
	assert.True(t, res.IsError)
	assert.Contains(t, text(t, res), "ok: false")
}

func TestStepReportsSceneChanges(t *testing.T) {
	s := newTestServer(t, 0)
	res := call(t, s.handleWrite, map[string]interface{}{"target": "#name", "text": "bob"})
	require.False(t, res.IsError, text(t, res))

	var resp struct {
		OK      bool            `yaml:"ok"`
		Changes model.SceneDiff `yaml:"changes"`
	}
	require.NoError(t, yaml.Unmarshal([]byte(text(t, res)), &resp))
	assert.True(t, resp.OK)
	require.Len(t, resp.Changes.Changed, 1)
	change := resp.Changes.Changed[0]
	assert.Equal(t, "#name", change.Key)
	assert.Equal(t, model.FieldChange{"", "bob"}, change.Fields["t"])
	assert.Equal(t, model.FieldChange{"false", "true"}, change.Fields["f"])
}

func TestFind(t *testing.T) {
	s := newTestServer(t, 0)
	assert.True(t, call(t, s.handleFind, nil).IsError)

	res := call(t, s.handleFind, map[string]interface{}{"text": "go", "exact": true})
	require.False(t, res.IsError, text(t, res))
	var out output.ReadResult
	require.NoError(t, yaml.Unmarshal([]byte(text(t, res)), &out))
	require.Len(t, out.Elements, 1)
	assert.Equal(t, "go", out.Elements[0].ID)
	assert.Equal(t, "group > btn", out.Elements[0].Path)

	res = call(t, s.handleFind, map[string]interface{}{"role": "Button,input"})
	require.NoError(t, yaml.Unmarshal([]byte(text(t, res)), &out))
	assert.Len(t, out.Elements, 2)
}

func TestWriteAndExpect(t *testing.T) {
	s := newTestServer(t, 0)
	res := call(t, s.handleWrite, map[string]interface{}{"target": "#name", "text": "bob"})
	require.False(t, res.IsError, text(t, res))

	res = call(t, s.handleExpect, map[string]interface{}{"target": "#name", "has_text": "bob", "focused": true})
	assert.False(t, res.IsError, text(t, res))

	res = call(t, s.handleExpect, map[string]interface{}{"target": "#name", "has_text": "alice", "timeout": float64(30)})
	assert.True(t, res.IsError)
}

func TestTypeAndStep(t *testing.T) {
	s := newTestServer(t, 0)
	res := call(t, s.handleType, nil)
	assert.True(t, res.IsError)

	res = call(t, s.handleStep, map[string]interface{}{"yaml": "click: '#name'"})
	require.False(t, res.IsError, text(t, res))
	res = call(t, s.handleType, map[string]interface{}{"keys": "shift a"})
	require.False(t, res.IsError, text(t, res))
	res = call(t, s.handleType, map[string]interface{}{"combo": "ctrl+a"})
	require.False(t, res.IsError, text(t, res))

	res = call(t, s.handleStep, map[string]interface{}{"yaml": "hover: '#go'"})
	assert.True(t, res.IsError)
}

func TestMoveAndDragValidation(t *testing.T) {
	s := newTestServer(t, 0)
	assert.True(t, call(t, s.handleMove, nil).IsError)
	assert.True(t, call(t, s.handleDrag, map[string]interface{}{"target": "#go"}).IsError)

	res := call(t, s.handleMove, map[string]interface{}{"target": "#status", "motion": "horizontal-first"})
	assert.False(t, res.IsError, text(t, res))
	res = call(t, s.handleDrag, map[string]interface{}{"target": "#status", "dx": float64(5), "dy": float64(5)})
	assert.False(t, res.IsError, text(t, res))
	res = call(t, s.handleScroll, map[string]interface{}{"target": "#status", "direction": "up", "amount": float64(2)})
	assert.False(t, res.IsError, text(t, res))
}

func TestCacheInvalidatedByActions(t *testing.T) {
	s := newTestServer(t, time.Hour)
	before := readScene(t, s, map[string]interface{}{"text": "idle"})
	require.Len(t, before.Elements, 1)

	res := call(t, s.handleClick, map[string]interface{}{"target": "#go"})
	require.False(t, res.IsError, text(t, res))

	after := readScene(t, s, map[string]interface{}{"text": "clicked"})
	assert.Len(t, after.Elements, 1)
}

func TestSceneCacheTTL(t *testing.T) {
	s := newTestServer(t, time.Minute)
	c := s.cache
	now := time.Now()
	c.now = func() time.Time { return now }

	_, first, err := c.Read(s.session.Bridge, s.session.Robot.Scene())
	require.NoError(t, err)
	c.mu.Lock()
	c.elements = nil
	c.mu.Unlock()
	_, cached, err := c.Read(s.session.Bridge, s.session.Robot.Scene())
	require.NoError(t, err)
	assert.Empty(t, cached, "within the TTL the cached value is served")

	now = now.Add(2 * time.Minute)
	_, fresh, err := c.Read(s.session.Bridge, s.session.Robot.Scene())
	require.NoError(t, err)
	assert.Len(t, fresh, len(first))
}

func TestScreenshot(t *testing.T) {
	s := newTestServer(t, 0)
	res := call(t, s.handleScreenshot, map[string]interface{}{"labels": "coords"})
	require.False(t, res.IsError)
	require.Len(t, res.Content, 1)
	img, ok := res.Content[0].(mcp.ImageContent)
	require.True(t, ok)
	assert.Equal(t, "image/png", img.MIMEType)
	data, err := base64.StdEncoding.DecodeString(img.Data)
	require.NoError(t, err)
	assert.Equal(t, "\x89PNG", string(data[:4]))
}

func TestToolsRegistered(t *testing.T) {
	s := newTestServer(t, 0)
	tools := s.MCP().ListTools()
	for _, name := range []string{"read", "find", "click", "move", "drag", "type", "write", "scroll", "expect", "step", "screenshot"} {
		assert.Contains(t, tools, name)
	}
}
