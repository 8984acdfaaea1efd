package server

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"image/png"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"gopkg.in/yaml.v3"

	"github.com/mj1618/desktop-harness/internal/async"
	"github.com/mj1618/desktop-harness/internal/diag"
	"github.com/mj1618/desktop-harness/internal/model"
	"github.com/mj1618/desktop-harness/internal/output"
	"github.com/mj1618/desktop-harness/internal/query"
	"github.com/mj1618/desktop-harness/internal/scenario"
)

// stepResponse is a step result plus the scene changes the step caused.
type stepResponse struct {
	scenario.StepResult `yaml:",inline"`
	Changes             *model.SceneDiff `yaml:"changes,omitempty"`
}

// resultToText serializes a step response to YAML for MCP response.
func resultToText(resp stepResponse) string {
	b, err := yaml.Marshal(resp)
	if err != nil {
		return fmt.Sprintf("ok: %v\nstep: %s\nerror: %s", resp.OK, resp.Step, resp.Error)
	}
	return string(b)
}

// freshScene drops the cache and reads the scene again.
func (s *Server) freshScene() []model.FlatElement {
	s.cache.Invalidate()
	_, elements, err := s.cache.Read(s.session.Bridge, s.session.Robot.Scene())
	if err != nil {
		s.logger.Debug("scene read failed", "error", err)
		return nil
	}
	return elements
}

// runStep executes step under the server lock and reports how the scene
// changed. The cache is refreshed from the post-step read.
func (s *Server) runStep(ctx context.Context, step scenario.Step) (*mcp.CallToolResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	before := s.freshScene()
	result, err := s.session.Do(ctx, step)
	resp := stepResponse{StepResult: result}
	if diff := model.DiffScene(before, s.freshScene()); !diff.Empty() {
		resp.Changes = &diff
	}
	if err != nil {
		s.logger.Warn("tool step failed", "step", result.Step)
		return mcp.NewToolResultError(resultToText(resp)), nil
	}
	return mcp.NewToolResultText(resultToText(resp)), nil
}

func offsetParam(params map[string]interface{}) []float64 {
	_, hasX := params["dx"]
	_, hasY := params["dy"]
	if !hasX && !hasY {
		return nil
	}
	return []float64{FloatParam(params, "dx", 0), FloatParam(params, "dy", 0)}
}

func (s *Server) handleRead(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	params := request.GetArguments()
	selector := StringParam(params, "selector", "")
	text := strings.ToLower(StringParam(params, "text", ""))
	roles := roleSet(StringParam(params, "role", ""))

	s.mu.Lock()
	defer s.mu.Unlock()

	var (
		window   string
		elements []model.FlatElement
		err      error
	)
	if selector != "" {
		elements, err = s.readSelector(selector)
	} else {
		window, elements, err = s.cache.Read(s.session.Bridge, s.session.Robot.Scene())
	}
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	filtered := elements[:0:0]
	for _, el := range elements {
		if text != "" && !strings.Contains(strings.ToLower(el.Text), text) {
			continue
		}
		if roles != nil && !roles[el.Role] {
			continue
		}
		filtered = append(filtered, el)
	}

	result := output.ReadResult{Window: window, TS: time.Now().Unix(), Elements: filtered}
	b, err := yaml.Marshal(result)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(string(b)), nil
}

// roleSet parses a comma separated role list. Widget type names and
// meta-roles like "interactive" are expanded to role codes.
func roleSet(list string) map[string]bool {
	if list == "" {
		return nil
	}
	names := strings.Split(list, ",")
	for i := range names {
		names[i] = strings.TrimSpace(names[i])
	}
	set := make(map[string]bool)
	for _, r := range model.ExpandRoles(names) {
		if code, ok := model.RoleMap[r]; ok {
			r = code
		}
		set[r] = true
	}
	return set
}

// readSelector flattens the subtrees of the nodes matching selector.
func (s *Server) readSelector(selector string) ([]model.FlatElement, error) {
	b := s.session.Bridge
	scene := s.session.Robot.Scene()
	return async.CallOnUI(b, b.Profile().ConditionWait, func() ([]model.FlatElement, error) {
		q := query.FromScene(scene).Lookup(selector)
		if err := q.Err(); err != nil {
			return nil, err
		}
		return model.FlattenNodes(q.QueryAll()), nil
	})
}

func (s *Server) handleFind(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	params := request.GetArguments()
	text := StringParam(params, "text", "")
	exact := BoolParam(params, "exact", false)
	var roles []string
	for _, r := range strings.Split(StringParam(params, "role", ""), ",") {
		if r = strings.TrimSpace(r); r != "" {
			if code, ok := model.RoleMap[r]; ok {
				r = code
			}
			roles = append(roles, r)
		}
	}
	if text == "" && len(roles) == 0 {
		return mcp.NewToolResultError("find needs text or role"), nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	b := s.session.Bridge
	scene := s.session.Robot.Scene()
	found, err := async.CallOnUI(b, b.Profile().ConditionWait, func() ([]model.FlatElement, error) {
		roots := query.Roots(scene)
		var nodes []*model.Node
		if text != "" {
			nodes = model.FindByText(roots, text, roles, exact)
		} else {
			nodes = model.FilterByRoles(roots, roles)
		}
		out := make([]model.FlatElement, 0, len(nodes))
		for _, n := range nodes {
			el := model.FlattenNodes([]*model.Node{n})[0]
			el.Path = nodePath(n)
			out = append(out, el)
		}
		return out, nil
	})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	data, err := yaml.Marshal(output.ReadResult{TS: time.Now().Unix(), Elements: found})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

// nodePath renders n's ancestry the way FlattenNodes does.
func nodePath(n *model.Node) string {
	ancestors := n.Ancestors()
	parts := make([]string, 0, len(ancestors)+1)
	for i := len(ancestors) - 1; i >= 0; i-- {
		parts = append(parts, ancestors[i].Role)
	}
	return strings.Join(append(parts, n.Role), " > ")
}

func (s *Server) handleClick(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	params := request.GetArguments()
	kind := scenario.KindClick
	if BoolParam(params, "double", false) {
		kind = scenario.KindDoubleClick
	}
	return s.runStep(ctx, scenario.Step{
		Kind:   kind,
		Target: StringParam(params, "target", ""),
		Pos:    StringParam(params, "pos", ""),
		Button: StringParam(params, "button", ""),
	})
}

func (s *Server) handleMove(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	params := request.GetArguments()
	step := scenario.Step{
		Kind:   scenario.KindMove,
		Target: StringParam(params, "target", ""),
		Pos:    StringParam(params, "pos", ""),
		Motion: StringParam(params, "motion", ""),
		Offset: offsetParam(params),
	}
	if step.Target == "" && step.Offset == nil {
		return mcp.NewToolResultError("move needs target or dx/dy"), nil
	}
	return s.runStep(ctx, step)
}

func (s *Server) handleDrag(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	params := request.GetArguments()
	step := scenario.Step{
		Kind:   scenario.KindDrag,
		Target: StringParam(params, "target", ""),
		To:     StringParam(params, "to", ""),
		Button: StringParam(params, "button", ""),
	}
	if step.To == "" {
		step.Offset = offsetParam(params)
		if step.Offset == nil {
			return mcp.NewToolResultError("drag needs to or dx/dy"), nil
		}
	}
	return s.runStep(ctx, step)
}

func (s *Server) handleType(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	params := request.GetArguments()
	if combo := StringParam(params, "combo", ""); combo != "" {
		return s.runStep(ctx, scenario.Step{Kind: scenario.KindPush, Combo: combo})
	}
	keys := strings.Fields(StringParam(params, "keys", ""))
	if len(keys) == 0 {
		return mcp.NewToolResultError("type needs keys or combo"), nil
	}
	return s.runStep(ctx, scenario.Step{
		Kind:  scenario.KindType,
		Keys:  keys,
		Times: IntParam(params, "times", 1),
	})
}

func (s *Server) handleWrite(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	params := request.GetArguments()
	return s.runStep(ctx, scenario.Step{
		Kind:   scenario.KindWrite,
		Target: StringParam(params, "target", ""),
		Text:   StringParam(params, "text", ""),
	})
}

func (s *Server) handleScroll(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	params := request.GetArguments()
	return s.runStep(ctx, scenario.Step{
		Kind:      scenario.KindScroll,
		Target:    StringParam(params, "target", ""),
		Direction: StringParam(params, "direction", ""),
		Amount:    IntParam(params, "amount", 1),
	})
}

func (s *Server) handleExpect(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	params := request.GetArguments()
	step := scenario.Step{
		Kind:   scenario.KindExpect,
		Target: StringParam(params, "target", ""),
		Expectation: scenario.Expectation{
			HasText:  optString(params, "has_text"),
			Contains: optString(params, "contains"),
			Visible:  optBool(params, "visible"),
			Enabled:  optBool(params, "enabled"),
			Focused:  optBool(params, "focused"),
		},
	}
	if ms := IntParam(params, "timeout", 0); ms > 0 {
		step.Kind = scenario.KindWait
		step.Timeout = time.Duration(ms) * time.Millisecond
	}
	return s.runStep(ctx, step)
}

func (s *Server) handleStep(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	doc := StringParam(request.GetArguments(), "yaml", "")
	step, err := scenario.ParseStep([]byte(doc))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return s.runStep(ctx, step)
}

func (s *Server) handleScreenshot(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	mode := diag.LabelIDs
	if StringParam(request.GetArguments(), "labels", "ids") == "coords" {
		mode = diag.LabelCoords
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	r := s.session.Robot
	img, err := diag.CaptureAnnotated(s.session.Bridge, r.Injector(), r.Scene(), mode)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("png encode: %v", err)), nil
	}

	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.ImageContent{
				Type:     "image",
				Data:     base64.StdEncoding.EncodeToString(buf.Bytes()),
				MIMEType: "image/png",
			},
		},
	}, nil
}
